// Package vital implements an entity's health state and its zero-health notification.
package vital

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/verdict/internal/game/signal"
)

// ErrInvalidMaxHealth is returned by New when maxHealth is not positive.
var ErrInvalidMaxHealth = errors.New("vital: max health must be > 0")

// ZeroHealth is emitted the first time health reaches zero in a life.
type ZeroHealth struct {
	// OwnerID identifies the entity whose health reached zero.
	OwnerID string
}

// Vital tracks current and maximum health for one entity.
//
// Invariant: 0 <= current <= max at all times.
// Invariant: ZeroHealth is emitted at most once between revives.
type Vital struct {
	ownerID   string
	max       int
	current   int
	zeroFired bool
	removed   bool

	zeroHealth signal.Signal[ZeroHealth]
}

// New creates a Vital at full health.
//
// Precondition: maxHealth > 0.
// Postcondition: Current() == maxHealth, or ErrInvalidMaxHealth.
func New(ownerID string, maxHealth int) (*Vital, error) {
	if maxHealth <= 0 {
		return nil, fmt.Errorf("%w (owner %q, got %d)", ErrInvalidMaxHealth, ownerID, maxHealth)
	}
	return &Vital{ownerID: ownerID, max: maxHealth, current: maxHealth}, nil
}

// ApplyHealthDelta subtracts delta from current health and clamps the result
// into [0, max]. A positive delta is damage, a negative delta heals.
//
// Postcondition: 0 <= Current() <= Max(). If the result is 0 and ZeroHealth has
// not fired this life, it fires exactly once.
func (v *Vital) ApplyHealthDelta(delta int) {
	next := v.current - delta
	// Guard against wraparound for extreme deltas.
	if delta > 0 && next > v.current {
		next = 0
	} else if delta < 0 && next < v.current {
		next = v.max
	}
	v.current = max(0, min(v.max, next))

	if v.current == 0 && !v.zeroFired {
		v.zeroFired = true
		v.zeroHealth.Emit(ZeroHealth{OwnerID: v.ownerID})
	}
}

// ResetForRevive restores full health and re-arms the zero-health notification.
// Only the outcome mediator's spare path calls this.
func (v *Vital) ResetForRevive() {
	v.current = v.max
	v.zeroFired = false
}

// FinalizeDefeat marks the owner for removal from the simulation.
// Only the outcome mediator's execute path calls this.
func (v *Vital) FinalizeDefeat() {
	v.removed = true
}

// OnZeroHealth subscribes fn to the zero-health notification.
//
// Postcondition: returns a cancel function that unsubscribes fn.
func (v *Vital) OnZeroHealth(fn func(ZeroHealth)) (cancel func()) {
	return v.zeroHealth.Subscribe(fn)
}

// OwnerID returns the owning entity's ID.
func (v *Vital) OwnerID() string { return v.ownerID }

// Current returns current health.
func (v *Vital) Current() int { return v.current }

// Max returns maximum health.
func (v *Vital) Max() int { return v.max }

// IsDepleted reports whether current health is zero.
func (v *Vital) IsDepleted() bool { return v.current <= 0 }

// HasFiredZeroEvent reports whether ZeroHealth has fired in the current life.
func (v *Vital) HasFiredZeroEvent() bool { return v.zeroFired }

// Removed reports whether FinalizeDefeat has been called.
func (v *Vital) Removed() bool { return v.removed }

// Fraction returns current/max in [0, 1].
func (v *Vital) Fraction() float64 {
	return float64(v.current) / float64(v.max)
}
