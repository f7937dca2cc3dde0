package combat

import (
	"time"

	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/geom"
)

// AttackIntent is one in-flight attack volume owned by an attacker.
//
// Invariant: an intent resolves against at most one target, and never against
// its owner or anything in the owner's hierarchy.
type AttackIntent struct {
	// ID uniquely identifies this intent.
	ID string
	// OwnerID is the attacking entity's ID.
	OwnerID string
	// Damage is the raw attack value before the defender's defense.
	Damage int
	// Skill names the skill that produced this intent; empty for a basic attack.
	Skill  string
	Pose   Pose
	Radius float64
	// Remaining is the lifetime left before the intent expires.
	Remaining time.Duration
	// HitTargetID is the entity this intent resolved against, if any.
	HitTargetID string

	owner *entity.Entity
	spent bool
	fresh bool
}

// Spent reports whether the intent has already resolved against a target.
func (a *AttackIntent) Spent() bool { return a.spent }

// Expired reports whether the intent's lifetime has run out.
func (a *AttackIntent) Expired() bool { return a.Remaining <= 0 }

// Active reports whether the intent can still hit something.
func (a *AttackIntent) Active() bool { return !a.spent && !a.Expired() }

// CanHit reports whether target is a valid victim for this intent right now:
// a live combat participant outside the owner's hierarchy whose volume overlaps.
// A depleted target awaiting its outcome is skipped so the hit can land on a
// live one.
func (a *AttackIntent) CanHit(target *entity.Entity) bool {
	if !a.Active() || target == nil {
		return false
	}
	if target.ID == a.OwnerID || target.IsSelfOrDescendantOf(a.owner) {
		return false
	}
	if !target.Alive() {
		return false
	}
	return geom.Distance(a.Pose.Position, target.Position) <= a.Radius+target.Radius
}
