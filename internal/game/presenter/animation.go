// Package presenter adapts simulation events and state to presentation
// collaborators: animation triggers and read-only HUD views.
package presenter

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/verdict/internal/game/ai"
	"github.com/cory-johannsen/verdict/internal/game/combat"
	"github.com/cory-johannsen/verdict/internal/game/vital"
)

// Animator plays named one-shot animation triggers.
type Animator interface {
	SetTrigger(name string)
}

// Triggers names the animation trigger fired for each event.
type Triggers struct {
	Sense  string
	Roam   string
	Attack string
	GetHit string
	Defeat string
}

// DefaultTriggers returns the stock trigger names.
func DefaultTriggers() Triggers {
	return Triggers{
		Sense:  "sense",
		Roam:   "WalkFWD",
		Attack: "attack",
		GetHit: "gethit",
		Defeat: "kill",
	}
}

// AnimationBridge forwards one entity's AI, combat, and health events to an Animator.
type AnimationBridge struct {
	animator Animator
	triggers Triggers
	logger   *zap.Logger
	cancels  []func()
}

// NewAnimationBridge creates a bridge. A nil animator is logged once and
// every trigger becomes a no-op.
//
// Precondition: logger must be non-nil.
func NewAnimationBridge(animator Animator, triggers Triggers, logger *zap.Logger) *AnimationBridge {
	if animator == nil {
		logger.Warn("no animator bound; animation triggers are disabled")
	}
	return &AnimationBridge{animator: animator, triggers: triggers, logger: logger}
}

// BindAI maps chase starts to Sense and roam starts to Roam.
func (b *AnimationBridge) BindAI(c *ai.Controller) {
	if c == nil {
		return
	}
	b.cancels = append(b.cancels,
		c.OnStartChase(func(ai.ChaseEvent) { b.fire(b.triggers.Sense) }),
		c.OnStartRoam(func(ai.RoamEvent) { b.fire(b.triggers.Roam) }),
	)
}

// BindCombat maps attacks to Attack and incoming hits to GetHit.
func (b *AnimationBridge) BindCombat(c *combat.Controller) {
	if c == nil {
		return
	}
	b.cancels = append(b.cancels,
		c.OnAttack(func(combat.AttackEvent) { b.fire(b.triggers.Attack) }),
		c.OnTakeDamage(func(combat.DamageEvent) { b.fire(b.triggers.GetHit) }),
	)
}

// BindVital maps reaching zero health to Defeat.
func (b *AnimationBridge) BindVital(v *vital.Vital) {
	if v == nil {
		return
	}
	b.cancels = append(b.cancels, v.OnZeroHealth(func(vital.ZeroHealth) { b.fire(b.triggers.Defeat) }))
}

// Close unsubscribes from every bound source.
func (b *AnimationBridge) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

func (b *AnimationBridge) fire(trigger string) {
	if b.animator == nil || trigger == "" {
		return
	}
	b.animator.SetTrigger(trigger)
}

// LogAnimator is an Animator that records triggers to a logger at debug level.
type LogAnimator struct {
	Logger *zap.Logger
}

// SetTrigger logs name.
func (a LogAnimator) SetTrigger(name string) {
	a.Logger.Debug("animation trigger", zap.String("trigger", name))
}
