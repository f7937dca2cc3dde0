package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/cory-johannsen/verdict/internal/game/entity"
)

// Config tunes one enemy's behavior.
type Config struct {
	// DetectionRadius is how far away a target is noticed.
	DetectionRadius float64
	// AttackRange is the distance at which chasing stops and attacking starts.
	AttackRange float64
	ChaseSpeed  float64
	RoamSpeed   float64
	// RoamChangeInterval is how often a new roam heading is drawn.
	RoamChangeInterval time.Duration
	// AttackInterval is the minimum time between two attacks.
	AttackInterval time.Duration
	// TurnRate scales the damped turn toward the desired heading.
	TurnRate float64
	// LeashRadius bounds roaming around the spawn point; 0 disables the leash.
	LeashRadius float64
	// RescanInterval is how often the target list is refreshed.
	RescanInterval time.Duration
	// TargetTag is the tag of entities worth chasing.
	TargetTag string
}

// DefaultConfig returns the stock enemy tuning.
func DefaultConfig() Config {
	return Config{
		DetectionRadius:    6,
		AttackRange:        1.5,
		ChaseSpeed:         3,
		RoamSpeed:          1.5,
		RoamChangeInterval: 4 * time.Second,
		AttackInterval:     1500 * time.Millisecond,
		TurnRate:           10,
		LeashRadius:        10,
		RescanInterval:     time.Second,
		TargetTag:          "player",
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []string
	if c.DetectionRadius <= 0 {
		errs = append(errs, fmt.Sprintf("detection radius must be > 0, got %v", c.DetectionRadius))
	}
	if c.AttackRange < 0 || c.AttackRange > c.DetectionRadius {
		errs = append(errs, fmt.Sprintf("attack range must be in [0, detection radius], got %v", c.AttackRange))
	}
	if c.ChaseSpeed < 0 || c.RoamSpeed < 0 {
		errs = append(errs, "speeds must be >= 0")
	}
	if c.RoamChangeInterval <= 0 {
		errs = append(errs, fmt.Sprintf("roam change interval must be > 0, got %s", c.RoamChangeInterval))
	}
	if c.AttackInterval < 0 {
		errs = append(errs, fmt.Sprintf("attack interval must be >= 0, got %s", c.AttackInterval))
	}
	if c.TurnRate <= 0 {
		errs = append(errs, fmt.Sprintf("turn rate must be > 0, got %v", c.TurnRate))
	}
	if c.LeashRadius < 0 {
		errs = append(errs, fmt.Sprintf("leash radius must be >= 0, got %v", c.LeashRadius))
	}
	if c.TargetTag == "" {
		errs = append(errs, "target tag must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("ai.Config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// WithTuning returns c overridden by every non-zero field of t.
//
// Postcondition: A nil t returns c unchanged; malformed durations are errors.
func (c Config) WithTuning(t *entity.AITuning) (Config, error) {
	if t == nil {
		return c, nil
	}
	if t.DetectionRadius > 0 {
		c.DetectionRadius = t.DetectionRadius
	}
	if t.AttackRange > 0 {
		c.AttackRange = t.AttackRange
	}
	if t.ChaseSpeed > 0 {
		c.ChaseSpeed = t.ChaseSpeed
	}
	if t.RoamSpeed > 0 {
		c.RoamSpeed = t.RoamSpeed
	}
	if t.TurnRate > 0 {
		c.TurnRate = t.TurnRate
	}
	if t.LeashRadius > 0 {
		c.LeashRadius = t.LeashRadius
	}
	if t.TargetTag != "" {
		c.TargetTag = t.TargetTag
	}
	if t.RoamChangeInterval != "" {
		d, err := time.ParseDuration(t.RoamChangeInterval)
		if err != nil {
			return c, fmt.Errorf("ai.Config.WithTuning: roam_change_interval: %w", err)
		}
		c.RoamChangeInterval = d
	}
	if t.AttackInterval != "" {
		d, err := time.ParseDuration(t.AttackInterval)
		if err != nil {
			return c, fmt.Errorf("ai.Config.WithTuning: attack_interval: %w", err)
		}
		c.AttackInterval = d
	}
	return c, nil
}
