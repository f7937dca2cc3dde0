package combat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/verdict/internal/game/entity"
)

// CandidateFunc returns the entities an attack volume may overlap this instant.
type CandidateFunc func() []*entity.Entity

// System owns the per-entity combat controllers and every live attack volume.
// It is driven by the single simulation goroutine and holds no locks.
type System struct {
	cfg        Config
	candidates CandidateFunc
	logger     *zap.Logger

	controllers map[string]*Controller
	intents     []*AttackIntent
}

// NewSystem creates a combat system.
//
// Precondition: logger must be non-nil. candidates may be nil, in which case
// attack volumes never find a target.
// Postcondition: Returns a System with no controllers and no live intents.
func NewSystem(cfg Config, candidates CandidateFunc, logger *zap.Logger) *System {
	if candidates == nil {
		candidates = func() []*entity.Entity { return nil }
	}
	return &System{
		cfg:         cfg,
		candidates:  candidates,
		logger:      logger,
		controllers: make(map[string]*Controller),
	}
}

// Attach creates the combat controller for e.
//
// Precondition: e must be a combatant not already attached.
// Postcondition: Returns the controller, or an error.
func (s *System) Attach(e *entity.Entity) (*Controller, error) {
	if e == nil {
		return nil, fmt.Errorf("combat.System.Attach: entity must not be nil")
	}
	if !e.Kind.Combatant() {
		return nil, fmt.Errorf("combat.System.Attach: %s %q cannot fight", e.Kind, e.Name)
	}
	if _, ok := s.controllers[e.ID]; ok {
		return nil, fmt.Errorf("combat.System.Attach: %q already attached", e.ID)
	}
	c := &Controller{entity: e, system: s, logger: s.logger.With(zap.String("entity", e.Name), zap.String("entity_id", e.ID))}
	s.controllers[e.ID] = c
	return c, nil
}

// Detach drops the controller for id. Unknown ids are ignored.
func (s *System) Detach(id string) {
	if c, ok := s.controllers[id]; ok {
		c.attacks.Clear()
		c.damage.Clear()
		c.hits.Clear()
		delete(s.controllers, id)
	}
}

// Controller returns the controller attached to id.
func (s *System) Controller(id string) (*Controller, bool) {
	c, ok := s.controllers[id]
	return c, ok
}

// Apply resolves raw attack power against target's defense and applies the
// result to target's health.
//
// Postcondition: Returns the damage applied. Targets that cannot take damage
// are untouched and 0 is returned. The target's OnTakeDamage fires after the
// health change.
func (s *System) Apply(target *entity.Entity, raw int, sourceID string) int {
	if target == nil || !target.CanTakeDamage() {
		return 0
	}
	dmg := ResolveAttack(raw, target.Defense)
	target.Vital.ApplyHealthDelta(dmg)
	if c, ok := s.controllers[target.ID]; ok {
		c.damage.Emit(DamageEvent{Amount: dmg, SourceID: sourceID})
	}
	return dmg
}

// Spawn creates an attack volume owned by attacker at pose carrying damage,
// and resolves it immediately against whatever it already overlaps.
//
// Precondition: attacker must be non-nil.
// Postcondition: Returns the intent; it may already be spent.
func (s *System) Spawn(attacker *entity.Entity, pose Pose, damage int, skill string) *AttackIntent {
	intent := s.newIntent(attacker, pose, damage, skill)
	s.launch(intent)
	return intent
}

func (s *System) newIntent(attacker *entity.Entity, pose Pose, damage int, skill string) *AttackIntent {
	return &AttackIntent{
		ID:        uuid.NewString(),
		OwnerID:   attacker.ID,
		Damage:    damage,
		Skill:     skill,
		Pose:      pose,
		Radius:    s.cfg.IntentRadius,
		Remaining: s.cfg.IntentLifetime,
		owner:     attacker,
		fresh:     true,
	}
}

// launch resolves intent against current overlaps and keeps it if still active.
func (s *System) launch(intent *AttackIntent) {
	s.resolve(intent)
	if intent.Active() {
		s.intents = append(s.intents, intent)
	}
}

// Tick ages every live volume by dt, resolves the ones still active, and
// drops the ones that are spent or expired. A volume spawned since the last
// Tick is not aged on its first Tick.
func (s *System) Tick(dt time.Duration) {
	live := s.intents[:0]
	for _, intent := range s.intents {
		if intent.fresh {
			intent.fresh = false
		} else {
			intent.Remaining -= dt
		}
		s.resolve(intent)
		if intent.Active() {
			live = append(live, intent)
		}
	}
	clear(s.intents[len(live):])
	s.intents = live
}

// Intents returns the live attack volumes in spawn order.
func (s *System) Intents() []*AttackIntent {
	return append([]*AttackIntent(nil), s.intents...)
}

func (s *System) resolve(intent *AttackIntent) {
	if !intent.Active() {
		return
	}
	for _, target := range s.candidates() {
		if !intent.CanHit(target) {
			continue
		}
		intent.spent = true
		intent.HitTargetID = target.ID
		applied := s.Apply(target, intent.Damage, intent.OwnerID)
		s.logger.Debug("attack landed",
			zap.String("intent_id", intent.ID),
			zap.String("attacker_id", intent.OwnerID),
			zap.String("target", target.Name),
			zap.Int("raw", intent.Damage),
			zap.Int("applied", applied),
			zap.Int("target_health", target.Vital.Current()),
		)
		if owner, ok := s.controllers[intent.OwnerID]; ok {
			owner.hits.Emit(HitEvent{IntentID: intent.ID, TargetID: target.ID, Damage: applied})
		}
		return
	}
}
