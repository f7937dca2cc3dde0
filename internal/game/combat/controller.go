package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/signal"
)

// AttackEvent is emitted when a controller starts an attack.
type AttackEvent struct {
	IntentID string
	// Skill is empty for a basic attack.
	Skill string
}

// DamageEvent is emitted when a controller's entity takes a hit.
type DamageEvent struct {
	Amount int
	// SourceID is the attacker's entity ID; empty for environmental damage.
	SourceID string
}

// HitEvent is emitted on the attacker when one of its volumes lands.
type HitEvent struct {
	IntentID string
	TargetID string
	Damage   int
}

// Controller is one entity's combat surface: it starts attacks and receives hits.
type Controller struct {
	entity *entity.Entity
	system *System
	logger *zap.Logger

	attacks signal.Signal[AttackEvent]
	damage  signal.Signal[DamageEvent]
	hits    signal.Signal[HitEvent]
}

// Entity returns the controlled entity.
func (c *Controller) Entity() *entity.Entity { return c.entity }

// Attack spawns a basic attack volume Reach units in front of the entity
// carrying its full attack power.
//
// Postcondition: Returns the new intent and emits OnAttack, or returns nil
// and logs when the entity has no valid hitbox placement.
func (c *Controller) Attack() *AttackIntent {
	return c.strike("", c.entity.Reach, c.entity.AttackPower)
}

// UseSkill spawns an attack volume for the named skill with damage
// round(AttackPower * multiplier).
//
// Postcondition: Returns the new intent, or nil with a warning when the
// entity has no such skill.
func (c *Controller) UseSkill(name string) *AttackIntent {
	sk, ok := c.entity.Skill(name)
	if !ok {
		c.logger.Warn("unknown skill", zap.String("skill", name))
		return nil
	}
	reach := c.entity.Reach
	if sk.Reach > 0 {
		reach = sk.Reach
	}
	return c.strike(sk.Name, reach, ScaledDamage(c.entity.AttackPower, sk.DamageMultiplier))
}

func (c *Controller) strike(skill string, reach float64, damage int) *AttackIntent {
	if reach < 0 {
		c.logger.Warn("attack skipped: hitbox placement missing", zap.Float64("reach", reach))
		return nil
	}
	if !c.entity.CanTakeDamage() {
		return nil
	}
	pose := Pose{Position: c.entity.PointAhead(reach), Yaw: c.entity.Yaw}
	intent := c.system.newIntent(c.entity, pose, damage, skill)
	c.attacks.Emit(AttackEvent{IntentID: intent.ID, Skill: skill})
	c.system.launch(intent)
	return intent
}

// TakeDamage applies raw attack power to the entity through the resolver.
//
// Postcondition: Returns the damage applied after defense.
func (c *Controller) TakeDamage(raw int) int {
	return c.system.Apply(c.entity, raw, "")
}

// OnAttack subscribes fn to attack starts.
func (c *Controller) OnAttack(fn func(AttackEvent)) (cancel func()) {
	return c.attacks.Subscribe(fn)
}

// OnTakeDamage subscribes fn to incoming hits.
func (c *Controller) OnTakeDamage(fn func(DamageEvent)) (cancel func()) {
	return c.damage.Subscribe(fn)
}

// OnHit subscribes fn to this entity's landed hits.
func (c *Controller) OnHit(fn func(HitEvent)) (cancel func()) {
	return c.hits.Subscribe(fn)
}
