// Package combat implements damage resolution, transient attack volumes, and
// the per-entity combat controller.
package combat

import (
	"time"

	"github.com/cory-johannsen/verdict/internal/game/geom"
)

// Config holds the tuning for attack volumes.
type Config struct {
	// IntentLifetime is how long an attack volume stays live after spawning.
	IntentLifetime time.Duration
	// IntentRadius is the overlap radius of an attack volume.
	IntentRadius float64
}

// DefaultConfig returns the stock tuning: a 100ms volume with a 0.75 radius.
func DefaultConfig() Config {
	return Config{
		IntentLifetime: 100 * time.Millisecond,
		IntentRadius:   0.75,
	}
}

// Pose is a position and facing in world space.
type Pose struct {
	Position geom.Vec3
	Yaw      float64
}

// ResolveAttack returns the damage a raw attack deals after the defender's defense.
// Damage floors at zero: an attack weaker than the defense deals nothing.
//
// Postcondition: Returns max(0, rawAttackPower - defenderDefense).
func ResolveAttack(rawAttackPower, defenderDefense int) int {
	return max(0, rawAttackPower-defenderDefense)
}

// ScaledDamage returns attackPower scaled by multiplier, rounded half away from zero.
//
// Precondition: multiplier > 0.
// Postcondition: Returns >= 0 when attackPower >= 0.
func ScaledDamage(attackPower int, multiplier float64) int {
	v := float64(attackPower) * multiplier
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
