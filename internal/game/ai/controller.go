// Package ai implements the enemy behavior state machine: roam until a target
// is detected, chase it, and attack once in range.
package ai

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/verdict/internal/game/combat"
	"github.com/cory-johannsen/verdict/internal/game/dice"
	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/geom"
	"github.com/cory-johannsen/verdict/internal/game/signal"
)

// State names one behavior mode.
type State string

const (
	StateRoam   State = "roam"
	StateChase  State = "chase"
	StateAttack State = "attack"
)

// minMoveSq is the squared direction length below which movement is skipped.
const minMoveSq = 0.001

// Attacker starts an attack on behalf of the controlled entity.
// *combat.Controller satisfies it.
type Attacker interface {
	Attack() *combat.AttackIntent
}

// ChaseEvent is emitted when the controller starts chasing.
type ChaseEvent struct {
	TargetID string
}

// RoamEvent is emitted when the controller returns to roaming.
type RoamEvent struct{}

// Controller decides each tick whether its entity roams, chases, or attacks.
//
// Invariant: the FSM only transitions when the desired state differs from the
// current one, so OnStartChase and OnStartRoam fire once per transition.
type Controller struct {
	self     *entity.Entity
	attacker Attacker
	cfg      Config
	src      dice.Source
	logger   *zap.Logger
	machine  *fsm.FSM

	home       geom.Vec3
	roamDir    geom.Vec3
	roamTimer  time.Duration
	clock      time.Duration
	lastAttack time.Duration
	attacked   bool
	inRange    bool
	target     *entity.Entity
	disabled   bool

	startChase signal.Signal[ChaseEvent]
	startRoam  signal.Signal[RoamEvent]
}

// New creates a controller for self starting in the roam state with a fresh heading.
//
// Precondition: self must be a combatant; cfg must be valid; src and logger
// must be non-nil. attacker may be nil: a warning is logged once and attacks are skipped.
// Postcondition: Returns a controller in StateRoam homed at self's position, or an error.
func New(self *entity.Entity, attacker Attacker, cfg Config, src dice.Source, logger *zap.Logger) (*Controller, error) {
	if self == nil || !self.Kind.Combatant() {
		return nil, fmt.Errorf("ai.New: self must be a combatant entity")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ai.New %q: %w", self.Name, err)
	}
	if src == nil {
		return nil, fmt.Errorf("ai.New %q: random source must not be nil", self.Name)
	}
	c := &Controller{
		self:      self,
		attacker:  attacker,
		cfg:       cfg,
		src:       src,
		logger:    logger.With(zap.String("entity", self.Name), zap.String("entity_id", self.ID)),
		home:      self.Position,
		roamTimer: cfg.RoamChangeInterval,
	}
	if attacker == nil {
		c.logger.Warn("no combat controller bound; attacks will be skipped")
	}
	c.machine = fsm.NewFSM(
		string(StateRoam),
		fsm.Events{
			{Name: string(StateRoam), Src: []string{string(StateChase), string(StateAttack)}, Dst: string(StateRoam)},
			{Name: string(StateChase), Src: []string{string(StateRoam), string(StateAttack)}, Dst: string(StateChase)},
			{Name: string(StateAttack), Src: []string{string(StateRoam), string(StateChase)}, Dst: string(StateAttack)},
		},
		fsm.Callbacks{
			"enter_" + string(StateChase): func(_ context.Context, e *fsm.Event) {
				c.logger.Debug("start chase", zap.String("from", e.Src))
				id := ""
				if c.target != nil {
					id = c.target.ID
				}
				c.startChase.Emit(ChaseEvent{TargetID: id})
			},
			"enter_" + string(StateRoam): func(_ context.Context, e *fsm.Event) {
				c.logger.Debug("start roam", zap.String("from", e.Src))
				c.startRoam.Emit(RoamEvent{})
			},
		},
	)
	c.pickRoamDirection()
	return c, nil
}

// Entity returns the controlled entity.
func (c *Controller) Entity() *entity.Entity { return c.self }

// State returns the current behavior mode.
func (c *Controller) State() State { return State(c.machine.Current()) }

// Config returns the controller's tuning.
func (c *Controller) Config() Config { return c.cfg }

// InMeleeRange reports whether the last tick found the target inside attack range.
func (c *Controller) InMeleeRange() bool { return c.inRange }

// Target returns the entity chosen on the last tick, or nil.
func (c *Controller) Target() *entity.Entity { return c.target }

// RoamDirection returns the current horizontal roam heading.
func (c *Controller) RoamDirection() geom.Vec3 { return c.roamDir }

// Disable stops the controller permanently; Tick becomes a no-op.
func (c *Controller) Disable() { c.disabled = true }

// Disabled reports whether Disable has been called.
func (c *Controller) Disabled() bool { return c.disabled }

// OnStartChase subscribes fn to transitions into the chase state.
func (c *Controller) OnStartChase(fn func(ChaseEvent)) (cancel func()) {
	return c.startChase.Subscribe(fn)
}

// OnStartRoam subscribes fn to transitions into the roam state.
func (c *Controller) OnStartRoam(fn func(RoamEvent)) (cancel func()) {
	return c.startRoam.Subscribe(fn)
}

// Tick advances the controller by dt against candidates.
//
// The nearest live candidate carrying the target tag within DetectionRadius is
// the target. No target roams; a target outside AttackRange is chased; a
// target inside AttackRange is attacked at most once per AttackInterval.
//
// Postcondition: A controller whose entity is depleted, removed, or disabled
// does nothing.
func (c *Controller) Tick(dt time.Duration, candidates []*entity.Entity) {
	if c.disabled || !c.self.Alive() {
		return
	}
	c.clock += dt

	target, dist := c.nearest(candidates)
	c.target = target
	c.inRange = target != nil && dist <= c.cfg.AttackRange

	switch {
	case target == nil:
		c.transition(StateRoam)
		c.roam(dt)
	case !c.inRange:
		c.transition(StateChase)
		c.chase(dt, target, dist)
	default:
		c.transition(StateAttack)
		c.attack(dt, target)
	}
}

func (c *Controller) nearest(candidates []*entity.Entity) (*entity.Entity, float64) {
	var best *entity.Entity
	bestDist := math.Inf(1)
	for _, cand := range candidates {
		if cand == nil || cand == c.self || cand.Tag != c.cfg.TargetTag || !cand.Alive() {
			continue
		}
		d := geom.Distance(c.self.Position, cand.Position)
		if d <= c.cfg.DetectionRadius && d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best, bestDist
}

func (c *Controller) transition(to State) {
	if c.State() == to {
		return
	}
	if err := c.machine.Event(context.Background(), string(to)); err != nil {
		c.logger.Error("state transition failed", zap.String("to", string(to)), zap.Error(err))
	}
}

func (c *Controller) roam(dt time.Duration) {
	c.roamTimer -= dt
	if c.roamTimer <= 0 {
		c.roamTimer = c.cfg.RoamChangeInterval
		c.pickRoamDirection()
	}
	if c.cfg.LeashRadius > 0 {
		out := c.self.Position.Sub(c.home).Flat()
		if out.Len() > c.cfg.LeashRadius && out.Dot(c.roamDir) > 0 {
			c.roamDir = c.roamDir.Scale(-1)
		}
	}
	c.move(c.roamDir, c.cfg.RoamSpeed, dt, math.Inf(1))
}

func (c *Controller) pickRoamDirection() {
	c.roamDir = geom.DirectionFromAngle(dice.Angle(c.src))
}

func (c *Controller) chase(dt time.Duration, target *entity.Entity, dist float64) {
	dir := target.Position.Sub(c.self.Position)
	// Stop at the edge of attack range instead of walking through the target.
	c.move(dir, c.cfg.ChaseSpeed, dt, math.Max(0, dist-c.cfg.AttackRange))
}

func (c *Controller) attack(dt time.Duration, target *entity.Entity) {
	c.face(target.Position.Sub(c.self.Position), dt)
	if c.attacked && c.clock-c.lastAttack < c.cfg.AttackInterval {
		return
	}
	if c.attacker == nil {
		return
	}
	c.attacker.Attack()
	c.lastAttack = c.clock
	c.attacked = true
}

// move turns toward dir and translates along it by at most maxStep.
func (c *Controller) move(dir geom.Vec3, speed float64, dt time.Duration, maxStep float64) {
	flat := dir.Flat()
	if flat.Dot(flat) < minMoveSq {
		return
	}
	c.face(flat, dt)
	step := math.Min(speed*dt.Seconds(), maxStep)
	c.self.Position = c.self.Position.Add(flat.Normalize().Scale(step))
}

func (c *Controller) face(dir geom.Vec3, dt time.Duration) {
	flat := dir.Flat()
	if flat.Dot(flat) < minMoveSq {
		return
	}
	c.self.Yaw = geom.DampYaw(c.self.Yaw, geom.YawOf(flat), dt.Seconds(), c.cfg.TurnRate)
}
