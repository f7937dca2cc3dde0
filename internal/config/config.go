// Package config provides Viper-based configuration loading for the simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/verdict/internal/game/ai"
	"github.com/cory-johannsen/verdict/internal/game/combat"
	"github.com/cory-johannsen/verdict/internal/game/geom"
	"github.com/cory-johannsen/verdict/internal/game/outcome"
	"github.com/cory-johannsen/verdict/internal/game/presenter"
	"github.com/cory-johannsen/verdict/internal/game/prompt"
	"github.com/cory-johannsen/verdict/internal/game/world"
	"github.com/cory-johannsen/verdict/internal/gameserver"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds the tick loop settings.
type SimulationConfig struct {
	// TickRate is the number of simulation ticks per simulated second.
	TickRate int `mapstructure:"tick_rate"`
	// MaxTicks stops the run after this many ticks; 0 runs until the campaign ends.
	MaxTicks int `mapstructure:"max_ticks"`
	// Seed makes random rolls reproducible; 0 draws from crypto/rand.
	Seed uint64 `mapstructure:"seed"`
	// Realtime paces ticks against the wall clock instead of running flat out.
	Realtime bool `mapstructure:"realtime"`
}

// TickInterval returns the simulated duration of one tick.
//
// Precondition: TickRate > 0.
func (s SimulationConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// PilotConfig tunes the scripted player that stands in for live input.
type PilotConfig struct {
	Speed            float64       `mapstructure:"speed"`
	AttackInterval   time.Duration `mapstructure:"attack_interval"`
	Skill            string        `mapstructure:"skill"`
	SkillEvery       int           `mapstructure:"skill_every"`
	ApproachDistance float64       `mapstructure:"approach_distance"`
}

// CombatConfig tunes attack volumes.
type CombatConfig struct {
	IntentLifetime time.Duration `mapstructure:"intent_lifetime"`
	IntentRadius   float64       `mapstructure:"intent_radius"`
}

// AIConfig holds the enemy behavior defaults; templates may override them.
type AIConfig struct {
	DetectionRadius    float64       `mapstructure:"detection_radius"`
	AttackRange        float64       `mapstructure:"attack_range"`
	ChaseSpeed         float64       `mapstructure:"chase_speed"`
	RoamSpeed          float64       `mapstructure:"roam_speed"`
	RoamChangeInterval time.Duration `mapstructure:"roam_change_interval"`
	AttackInterval     time.Duration `mapstructure:"attack_interval"`
	TurnRate           float64       `mapstructure:"turn_rate"`
	LeashRadius        float64       `mapstructure:"leash_radius"`
	RescanInterval     time.Duration `mapstructure:"rescan_interval"`
	TargetTag          string        `mapstructure:"target_tag"`
}

// MeterConfig holds the meter values a new campaign starts from.
type MeterConfig struct {
	InitialRed   int `mapstructure:"initial_red"`
	InitialWhite int `mapstructure:"initial_white"`
}

// PromptConfig tunes the execute/spare confirmation prompts.
type PromptConfig struct {
	// VisibilityDistance is how close the player must be for a prompt to show.
	VisibilityDistance float64 `mapstructure:"visibility_distance"`
	AnchorX            float64 `mapstructure:"anchor_x"`
	AnchorY            float64 `mapstructure:"anchor_y"`
	AnchorZ            float64 `mapstructure:"anchor_z"`
}

// AnimationConfig names the trigger fired for each presentation event.
type AnimationConfig struct {
	Sense  string `mapstructure:"sense"`
	Roam   string `mapstructure:"roam"`
	Attack string `mapstructure:"attack"`
	GetHit string `mapstructure:"get_hit"`
	Defeat string `mapstructure:"defeat"`
}

// ContentConfig locates the YAML and Lua content.
type ContentConfig struct {
	TemplatesDir     string `mapstructure:"templates_dir"`
	LevelsDir        string `mapstructure:"levels_dir"`
	StartLevel       string `mapstructure:"start_level"`
	DeciderScriptDir string `mapstructure:"decider_script_dir"`
	// ScriptInstructionLimit caps instructions per Lua call; 0 uses the scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Pilot      PilotConfig      `mapstructure:"pilot"`
	Combat     CombatConfig     `mapstructure:"combat"`
	AI         AIConfig         `mapstructure:"ai"`
	Meter      MeterConfig      `mapstructure:"meter"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	Animation  AnimationConfig  `mapstructure:"animation"`
	Content    ContentConfig    `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Pilots().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.World().AI.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateMeter(c.Meter); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Prompt.VisibilityDistance <= 0 {
		errs = append(errs, fmt.Sprintf("prompt.visibility_distance must be > 0, got %v", c.Prompt.VisibilityDistance))
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickRate < 1 || s.TickRate > 1000 {
		errs = append(errs, fmt.Sprintf("simulation.tick_rate must be 1-1000, got %d", s.TickRate))
	}
	if s.MaxTicks < 0 {
		errs = append(errs, fmt.Sprintf("simulation.max_ticks must be >= 0, got %d", s.MaxTicks))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.IntentLifetime <= 0 {
		errs = append(errs, "combat.intent_lifetime must be > 0")
	}
	if c.IntentRadius <= 0 {
		errs = append(errs, fmt.Sprintf("combat.intent_radius must be > 0, got %v", c.IntentRadius))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateMeter(m MeterConfig) error {
	var errs []string
	if m.InitialRed < 0 || m.InitialRed > 200 {
		errs = append(errs, fmt.Sprintf("meter.initial_red must be 0-200, got %d", m.InitialRed))
	}
	if m.InitialWhite < 0 {
		errs = append(errs, fmt.Sprintf("meter.initial_white must be >= 0, got %d", m.InitialWhite))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.TemplatesDir == "" {
		errs = append(errs, "content.templates_dir must not be empty")
	}
	if c.LevelsDir == "" {
		errs = append(errs, "content.levels_dir must not be empty")
	}
	if c.StartLevel == "" {
		errs = append(errs, "content.start_level must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, "content.script_instruction_limit must be >= 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// World converts the gameplay sections into the world's tuning.
func (c Config) World() world.Config {
	return world.Config{
		Combat: combat.Config{
			IntentLifetime: c.Combat.IntentLifetime,
			IntentRadius:   c.Combat.IntentRadius,
		},
		AI: ai.Config{
			DetectionRadius:    c.AI.DetectionRadius,
			AttackRange:        c.AI.AttackRange,
			ChaseSpeed:         c.AI.ChaseSpeed,
			RoamSpeed:          c.AI.RoamSpeed,
			RoamChangeInterval: c.AI.RoamChangeInterval,
			AttackInterval:     c.AI.AttackInterval,
			TurnRate:           c.AI.TurnRate,
			LeashRadius:        c.AI.LeashRadius,
			RescanInterval:     c.AI.RescanInterval,
			TargetTag:          c.AI.TargetTag,
		},
		Triggers: presenter.Triggers{
			Sense:  c.Animation.Sense,
			Roam:   c.Animation.Roam,
			Attack: c.Animation.Attack,
			GetHit: c.Animation.GetHit,
			Defeat: c.Animation.Defeat,
		},
	}
}

// Outcome converts the meter section into the mediator's tuning.
func (c Config) Outcome() outcome.Config {
	return outcome.Config{InitialRed: c.Meter.InitialRed, InitialWhite: c.Meter.InitialWhite}
}

// Prompts converts the prompt section into the prompt queue's tuning.
func (c Config) Prompts() prompt.Config {
	return prompt.Config{
		VisibilityDistance: c.Prompt.VisibilityDistance,
		AnchorOffset:       geom.Vec3{X: c.Prompt.AnchorX, Y: c.Prompt.AnchorY, Z: c.Prompt.AnchorZ},
	}
}

// Pilots converts the pilot section into the scripted player's tuning.
func (c Config) Pilots() gameserver.PilotConfig {
	return gameserver.PilotConfig{
		Speed:            c.Pilot.Speed,
		AttackInterval:   c.Pilot.AttackInterval,
		Skill:            c.Pilot.Skill,
		SkillEvery:       c.Pilot.SkillEvery,
		ApproachDistance: c.Pilot.ApproachDistance,
	}
}

// Runner converts the simulation section into the loop's settings.
func (c Config) Runner() gameserver.RunnerConfig {
	return gameserver.RunnerConfig{
		TickInterval: c.Simulation.TickInterval(),
		MaxTicks:     c.Simulation.MaxTicks,
		Realtime:     c.Simulation.Realtime,
	}
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with VERDICT_ prefix
	v.SetEnvPrefix("VERDICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the stock value for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.tick_rate", 50)
	v.SetDefault("simulation.max_ticks", 0)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.realtime", false)

	v.SetDefault("pilot.speed", 4.0)
	v.SetDefault("pilot.attack_interval", "500ms")
	v.SetDefault("pilot.skill", "")
	v.SetDefault("pilot.skill_every", 0)
	v.SetDefault("pilot.approach_distance", 2.0)

	v.SetDefault("combat.intent_lifetime", "100ms")
	v.SetDefault("combat.intent_radius", 0.75)

	v.SetDefault("ai.detection_radius", 6.0)
	v.SetDefault("ai.attack_range", 1.5)
	v.SetDefault("ai.chase_speed", 3.0)
	v.SetDefault("ai.roam_speed", 1.5)
	v.SetDefault("ai.roam_change_interval", "4s")
	v.SetDefault("ai.attack_interval", "1500ms")
	v.SetDefault("ai.turn_rate", 10.0)
	v.SetDefault("ai.leash_radius", 10.0)
	v.SetDefault("ai.rescan_interval", "1s")
	v.SetDefault("ai.target_tag", "player")

	v.SetDefault("meter.initial_red", 100)
	v.SetDefault("meter.initial_white", 100)

	v.SetDefault("prompt.visibility_distance", 8.0)
	v.SetDefault("prompt.anchor_x", 1.0)
	v.SetDefault("prompt.anchor_y", 1.5)
	v.SetDefault("prompt.anchor_z", 0.0)

	v.SetDefault("animation.sense", "sense")
	v.SetDefault("animation.roam", "WalkFWD")
	v.SetDefault("animation.attack", "attack")
	v.SetDefault("animation.get_hit", "gethit")
	v.SetDefault("animation.defeat", "kill")

	v.SetDefault("content.templates_dir", "content/templates")
	v.SetDefault("content.levels_dir", "content/levels")
	v.SetDefault("content.start_level", "crossroads")
	v.SetDefault("content.decider_script_dir", "content/scripts/decider")
	v.SetDefault("content.script_instruction_limit", 0)
}
