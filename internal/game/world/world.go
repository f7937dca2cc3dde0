package world

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/verdict/internal/game/ai"
	"github.com/cory-johannsen/verdict/internal/game/combat"
	"github.com/cory-johannsen/verdict/internal/game/dice"
	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/geom"
	"github.com/cory-johannsen/verdict/internal/game/outcome"
	"github.com/cory-johannsen/verdict/internal/game/presenter"
	"github.com/cory-johannsen/verdict/internal/game/prompt"
	"github.com/cory-johannsen/verdict/internal/game/vital"
)

// Config holds the tuning World hands to the systems it builds.
type Config struct {
	Combat   combat.Config
	AI       ai.Config
	Triggers presenter.Triggers
}

// DefaultConfig returns the stock tuning for every subsystem.
func DefaultConfig() Config {
	return Config{
		Combat:   combat.DefaultConfig(),
		AI:       ai.DefaultConfig(),
		Triggers: presenter.DefaultTriggers(),
	}
}

// AnimatorFunc returns the animator for a newly spawned entity; nil disables
// animation for that entity.
type AnimatorFunc func(e *entity.Entity) presenter.Animator

// World owns one loaded level and steps every system in a fixed order.
//
// World is not safe for concurrent use; it belongs to the simulation goroutine.
type World struct {
	cfg       Config
	mediator  *outcome.Mediator
	prompts   *prompt.Queue
	src       dice.Source
	animators AnimatorFunc
	logger    *zap.Logger

	level      *Level
	entities   *entity.Manager
	combat     *combat.System
	brains     *ai.Registry
	perception *ai.Perception
	bridges    map[string]*presenter.AnimationBridge
	player     *entity.Entity
	playerCtl  *combat.Controller
	resolved   map[string]bool
	cancels    []func()
	over       bool

	ticks   int
	elapsed time.Duration
}

// New creates an empty World.
//
// Precondition: mediator, src and logger must be non-nil. prompts may be nil
// when no confirmation UI is present. animators may be nil.
// Postcondition: Returns a World with no level loaded, or an error.
func New(cfg Config, mediator *outcome.Mediator, prompts *prompt.Queue, src dice.Source, animators AnimatorFunc, logger *zap.Logger) (*World, error) {
	if mediator == nil {
		return nil, fmt.Errorf("world.New: mediator must not be nil")
	}
	if src == nil {
		return nil, fmt.Errorf("world.New: random source must not be nil")
	}
	if err := cfg.AI.Validate(); err != nil {
		return nil, fmt.Errorf("world.New: %w", err)
	}
	w := &World{
		cfg:       cfg,
		mediator:  mediator,
		prompts:   prompts,
		src:       src,
		animators: animators,
		logger:    logger,
	}
	w.reset()
	return w, nil
}

func (w *World) reset() {
	w.entities = entity.NewManager()
	w.combat = combat.NewSystem(w.cfg.Combat, w.entities.All, w.logger)
	w.brains = ai.NewRegistry()
	w.perception = ai.NewPerception(w.entities.WithTag, w.cfg.AI.RescanInterval)
	w.bridges = make(map[string]*presenter.AnimationBridge)
	w.resolved = make(map[string]bool)
	w.player = nil
	w.playerCtl = nil
	w.over = false
	w.ticks = 0
	w.elapsed = 0
}

// LoadLevel replaces the current level with level, spawning its entities
// from templates.
//
// Precondition: level must be valid; templates must contain every template
// the level names, the player's with KindPlayer and every enemy's with KindEnemy.
// Postcondition: The player is bound to the mediator and every enemy has an
// AI controller, a combat controller, and a mediator registration; or an
// error is returned and the world is left empty.
func (w *World) LoadLevel(level *Level, templates map[string]*entity.Template) error {
	w.Unload()
	if level == nil {
		return fmt.Errorf("world.World.LoadLevel: level must not be nil")
	}
	if err := level.Validate(); err != nil {
		return fmt.Errorf("world.World.LoadLevel: %w", err)
	}
	if err := w.spawnPlayer(level.Player, templates); err != nil {
		w.Unload()
		return fmt.Errorf("world.World.LoadLevel %q: %w", level.ID, err)
	}
	for i, s := range level.Enemies {
		if err := w.spawnEnemy(s, templates); err != nil {
			w.Unload()
			return fmt.Errorf("world.World.LoadLevel %q: enemy %d: %w", level.ID, i, err)
		}
	}
	if err := w.mediator.ActivateLevel(w.player); err != nil {
		w.Unload()
		return fmt.Errorf("world.World.LoadLevel %q: %w", level.ID, err)
	}
	w.cancels = append(w.cancels,
		w.player.Vital.OnZeroHealth(func(vital.ZeroHealth) {
			w.over = true
			w.logger.Info("player defeated", zap.String("level", w.level.ID))
		}),
		w.mediator.OnResolved(func(r outcome.Resolution) {
			w.resolved[r.Request.Target.ID] = true
		}),
	)
	w.level = level
	w.perception.Invalidate()
	w.logger.Info("level loaded",
		zap.String("level", level.ID),
		zap.String("name", level.Name),
		zap.Int("enemies", len(level.Enemies)),
	)
	return nil
}

func lookup(templates map[string]*entity.Template, id string, want entity.Kind) (*entity.Template, error) {
	tmpl, ok := templates[id]
	if !ok {
		return nil, fmt.Errorf("template %q not found", id)
	}
	if tmpl.Kind != want {
		return nil, fmt.Errorf("template %q is a %s, want %s", id, tmpl.Kind, want)
	}
	return tmpl, nil
}

func (w *World) spawnPlayer(s Spawn, templates map[string]*entity.Template) error {
	tmpl, err := lookup(templates, s.Template, entity.KindPlayer)
	if err != nil {
		return fmt.Errorf("player: %w", err)
	}
	p, err := w.entities.Spawn(tmpl, s.Position)
	if err != nil {
		return err
	}
	p.Yaw = s.Yaw
	ctl, err := w.combat.Attach(p)
	if err != nil {
		return err
	}
	w.player, w.playerCtl = p, ctl
	w.bind(p, nil, ctl)
	return nil
}

func (w *World) spawnEnemy(s Spawn, templates map[string]*entity.Template) error {
	tmpl, err := lookup(templates, s.Template, entity.KindEnemy)
	if err != nil {
		return err
	}
	cfg, err := w.cfg.AI.WithTuning(tmpl.AI)
	if err != nil {
		return fmt.Errorf("template %q: %w", tmpl.ID, err)
	}
	if s.LeashRadius > 0 {
		cfg.LeashRadius = s.LeashRadius
	}
	e, err := w.entities.Spawn(tmpl, s.Position)
	if err != nil {
		return err
	}
	e.Yaw = s.Yaw
	ctl, err := w.combat.Attach(e)
	if err != nil {
		return err
	}
	brain, err := ai.New(e, ctl, cfg, w.src, w.logger)
	if err != nil {
		return err
	}
	if err := w.brains.Register(brain); err != nil {
		return err
	}
	if err := w.mediator.RegisterEntity(e); err != nil {
		return err
	}
	w.bind(e, brain, ctl)
	return nil
}

func (w *World) bind(e *entity.Entity, brain *ai.Controller, ctl *combat.Controller) {
	if w.animators == nil {
		return
	}
	b := presenter.NewAnimationBridge(w.animators(e), w.cfg.Triggers,
		w.logger.With(zap.String("entity", e.Name), zap.String("entity_id", e.ID)))
	b.BindAI(brain)
	b.BindCombat(ctl)
	b.BindVital(e.Vital)
	w.bridges[e.ID] = b
}

// Unload tears down the current level. Pending requests for its enemies are
// cancelled; the meter values already persisted are kept.
func (w *World) Unload() {
	for _, cancel := range w.cancels {
		cancel()
	}
	w.cancels = nil
	if w.entities != nil {
		for _, e := range w.entities.All() {
			w.drop(e)
		}
	}
	if w.level != nil {
		w.logger.Info("level unloaded", zap.String("level", w.level.ID))
	}
	w.level = nil
	w.reset()
}

// drop removes e from every system.
func (w *World) drop(e *entity.Entity) {
	_ = w.entities.Remove(e.ID)
	w.combat.Detach(e.ID)
	w.brains.Remove(e.ID)
	if w.mediator.Registered(e.ID) {
		_ = w.mediator.Unregister(e.ID)
	}
	if b, ok := w.bridges[e.ID]; ok {
		b.Close()
		delete(w.bridges, e.ID)
	}
}

// Tick advances the level by dt: every AI controller in spawn order, then
// attack volumes, then removal of finalized entities, then prompt placement.
//
// Candidate membership comes from the last perception scan; positions are
// read live, so the player is seen where it stood before the tick and a
// controller targeting other AI-moved entities sees moves made earlier in
// the same tick.
//
// A panic inside one controller's update is recovered and logged, and that
// controller is disabled; the others keep updating.
func (w *World) Tick(dt time.Duration) {
	if w.level == nil {
		return
	}
	w.ticks++
	w.elapsed += dt
	w.perception.Advance(dt)

	for _, brain := range w.brains.All() {
		candidates := w.perception.Candidates(brain.Config().TargetTag)
		w.tickBrain(brain, dt, candidates)
	}
	w.combat.Tick(dt)
	w.sweep()
	if w.prompts != nil && w.player != nil {
		w.prompts.Update(w.player.Position)
	}
}

func (w *World) tickBrain(brain *ai.Controller, dt time.Duration, candidates []*entity.Entity) {
	defer func() {
		if r := recover(); r != nil {
			brain.Disable()
			w.logger.Error("entity update panicked; controller disabled",
				zap.String("entity", brain.Entity().Name),
				zap.String("entity_id", brain.Entity().ID),
				zap.Any("panic", r),
			)
		}
	}()
	brain.Tick(dt, candidates)
}

// sweep removes every entity the mediator has finalized.
func (w *World) sweep() {
	removed := false
	for _, e := range w.entities.All() {
		if e.Vital == nil || !e.Vital.Removed() {
			continue
		}
		w.drop(e)
		removed = true
		w.logger.Info("entity removed", zap.String("entity", e.Name), zap.String("entity_id", e.ID))
	}
	if removed {
		w.perception.Invalidate()
	}
}

// PlayerAttack starts the player's basic attack.
//
// Postcondition: Returns nil when no level is loaded or the player cannot attack.
func (w *World) PlayerAttack() *combat.AttackIntent {
	if w.playerCtl == nil || !w.player.Alive() {
		return nil
	}
	return w.playerCtl.Attack()
}

// PlayerSkill starts the named player skill.
//
// Postcondition: Returns nil when no level is loaded, the player cannot
// attack, or the skill is unknown.
func (w *World) PlayerSkill(name string) *combat.AttackIntent {
	if w.playerCtl == nil || !w.player.Alive() {
		return nil
	}
	return w.playerCtl.UseSkill(name)
}

// MovePlayer places the player at pos facing yaw.
func (w *World) MovePlayer(pos geom.Vec3, yaw float64) {
	if w.player == nil || !w.player.Alive() {
		return
	}
	w.player.Position = pos
	w.player.Yaw = yaw
}

// Level returns the loaded level, or nil.
func (w *World) Level() *Level { return w.level }

// Player returns the loaded level's player, or nil.
func (w *World) Player() *entity.Entity { return w.player }

// Entities returns every live entity in spawn order.
func (w *World) Entities() []*entity.Entity { return w.entities.All() }

// Enemies returns the live enemies in spawn order.
func (w *World) Enemies() []*entity.Entity {
	out := []*entity.Entity{}
	for _, e := range w.entities.All() {
		if e.Kind == entity.KindEnemy {
			out = append(out, e)
		}
	}
	return out
}

// Brain returns the AI controller for the enemy with id.
func (w *World) Brain(id string) (*ai.Controller, bool) { return w.brains.ControllerFor(id) }

// Combat returns the combat controller for the entity with id.
func (w *World) Combat(id string) (*combat.Controller, bool) { return w.combat.Controller(id) }

// HUD returns the display snapshot for every live entity in spawn order.
func (w *World) HUD() []presenter.HUD {
	all := w.entities.All()
	out := make([]presenter.HUD, 0, len(all))
	for _, e := range all {
		out = append(out, presenter.Snapshot(e))
	}
	return out
}

// Cleared reports whether every remaining enemy has had its fate decided and
// nothing is pending.
func (w *World) Cleared() bool {
	if w.level == nil || len(w.mediator.Pending()) > 0 {
		return false
	}
	for _, e := range w.Enemies() {
		if !w.resolved[e.ID] {
			return false
		}
	}
	return true
}

// Over reports whether the player has been defeated on this level.
func (w *World) Over() bool { return w.over }

// Ticks returns the number of ticks since the level loaded.
func (w *World) Ticks() int { return w.ticks }

// Elapsed returns the simulated time since the level loaded.
func (w *World) Elapsed() time.Duration { return w.elapsed }
