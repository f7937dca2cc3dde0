// Package gameserver hosts the simulation loop: it steps the world at a fixed
// rate, feeds it scripted player input, and walks the level campaign.
package gameserver

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/meter"
	"github.com/cory-johannsen/verdict/internal/game/prompt"
	"github.com/cory-johannsen/verdict/internal/game/world"
)

// Decider answers visible execution prompts. *prompt.LuaDecider satisfies it.
type Decider interface {
	Decide(q *prompt.Queue, player *entity.Entity) int
}

// DeciderFunc adapts a function into a Decider.
type DeciderFunc func(q *prompt.Queue, player *entity.Entity) int

// Decide calls f.
func (f DeciderFunc) Decide(q *prompt.Queue, player *entity.Entity) int { return f(q, player) }

// RunnerConfig holds the loop settings.
type RunnerConfig struct {
	// TickInterval is the simulated duration of one step.
	TickInterval time.Duration
	// MaxTicks ends the run after this many steps; 0 runs until the campaign ends.
	MaxTicks int
	// Realtime paces steps with a ticker instead of running flat out.
	Realtime bool
}

// Result summarizes a run.
type Result struct {
	Ticks         int
	Level         string
	LevelsCleared int
	Decisions     int
	// Completed is true when the last level of the campaign was cleared.
	Completed bool
	// Defeated is true when the player fell.
	Defeated bool
	Meter    meter.Snapshot
}

// Runner drives one campaign. Start runs the loop on the calling goroutine;
// Stop may be called from any goroutine.
type Runner struct {
	cfg       RunnerConfig
	world     *world.World
	campaign  *world.Campaign
	templates map[string]*entity.Template
	prompts   *prompt.Queue
	decider   Decider
	pilot     *Pilot
	logger    *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
	mu       sync.Mutex
	stopped  bool
	// done is non-nil once Start has begun and is closed when it returns.
	done   chan struct{}
	result Result
}

// NewRunner creates a runner.
//
// Precondition: w, campaign, templates, pilot and logger must be non-nil;
// cfg.TickInterval > 0. prompts and decider may be nil, in which case
// defeated enemies wait forever and MaxTicks bounds the run.
// Postcondition: Returns a Runner ready to Start, or an error.
func NewRunner(cfg RunnerConfig, w *world.World, campaign *world.Campaign, templates map[string]*entity.Template,
	prompts *prompt.Queue, decider Decider, pilot *Pilot, logger *zap.Logger) (*Runner, error) {
	if w == nil || campaign == nil || pilot == nil {
		return nil, fmt.Errorf("gameserver.NewRunner: world, campaign and pilot must not be nil")
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("gameserver.NewRunner: tick interval must be > 0, got %s", cfg.TickInterval)
	}
	if cfg.MaxTicks < 0 {
		return nil, fmt.Errorf("gameserver.NewRunner: max ticks must be >= 0, got %d", cfg.MaxTicks)
	}
	if decider == nil || prompts == nil {
		logger.Warn("no decider bound; defeated enemies will wait for a decision that never comes")
	}
	return &Runner{
		cfg:       cfg,
		world:     w,
		campaign:  campaign,
		templates: templates,
		prompts:   prompts,
		decider:   decider,
		pilot:     pilot,
		logger:    logger,
		stop:      make(chan struct{}),
	}, nil
}

// Begin loads the campaign's first level.
func (r *Runner) Begin() error {
	start := r.campaign.Start()
	if err := r.world.LoadLevel(start, r.templates); err != nil {
		return fmt.Errorf("gameserver.Runner.Begin: %w", err)
	}
	r.record(func(res *Result) { res.Level = start.ID })
	return nil
}

// Step advances the simulation by one tick.
//
// Postcondition: Returns done=true once the campaign is complete, the player
// is defeated, or MaxTicks is reached.
func (r *Runner) Step() (done bool, err error) {
	dt := r.cfg.TickInterval
	r.pilot.Step(r.world, dt)
	r.world.Tick(dt)

	decisions := 0
	if r.decider != nil && r.prompts != nil {
		decisions = r.decider.Decide(r.prompts, r.world.Player())
	}

	r.mu.Lock()
	r.result.Ticks++
	r.result.Decisions += decisions
	ticks := r.result.Ticks
	r.mu.Unlock()
	r.snapshotMeter()

	switch {
	case r.world.Over():
		r.record(func(res *Result) { res.Defeated = true })
		r.logger.Info("run ended: player defeated", zap.Int("ticks", ticks))
		return true, nil
	case r.world.Cleared():
		if done, err := r.advance(); done || err != nil {
			return done, err
		}
	}
	if r.cfg.MaxTicks > 0 && ticks >= r.cfg.MaxTicks {
		r.logger.Info("run ended: tick limit reached", zap.Int("ticks", ticks))
		return true, nil
	}
	return false, nil
}

// advance loads the next level after a clear.
func (r *Runner) advance() (done bool, err error) {
	cleared := r.world.Level()
	r.record(func(res *Result) { res.LevelsCleared++ })
	p := r.world.Player()
	r.logger.Info("level cleared",
		zap.String("level", cleared.ID),
		zap.Int("red", p.Meter.Red()),
		zap.Int("white", p.Meter.White()),
		zap.Duration("elapsed", r.world.Elapsed()),
	)
	next, ok := r.campaign.Next(cleared.ID)
	if !ok {
		r.record(func(res *Result) { res.Completed = true })
		r.logger.Info("run ended: campaign complete")
		return true, nil
	}
	if err := r.world.LoadLevel(next, r.templates); err != nil {
		return true, fmt.Errorf("gameserver.Runner: loading level %q: %w", next.ID, err)
	}
	r.record(func(res *Result) { res.Level = next.ID })
	return false, nil
}

// Start loads the first level and steps until the run ends or Stop is called.
//
// Postcondition: Returns nil without touching the world if Stop was called first.
func (r *Runner) Start() error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	done := make(chan struct{})
	r.done = done
	r.mu.Unlock()
	defer close(done)

	if err := r.Begin(); err != nil {
		return err
	}
	if r.cfg.Realtime {
		return r.loopTicker()
	}
	for {
		select {
		case <-r.stop:
			return nil
		default:
		}
		done, err := r.Step()
		if done || err != nil {
			return err
		}
	}
}

func (r *Runner) loopTicker() error {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return nil
		case <-ticker.C:
			done, err := r.Step()
			if done || err != nil {
				return err
			}
		}
	}
}

// Stop asks Start to return after the current step and blocks until it has.
// Calling Stop is idempotent.
//
// Postcondition: No step is executing and none will start once Stop returns.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.mu.Lock()
	r.stopped = true
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Result returns the run summary so far.
func (r *Runner) Result() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

func (r *Runner) record(fn func(*Result)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.result)
}

func (r *Runner) snapshotMeter() {
	p := r.world.Player()
	if p == nil || p.Meter == nil {
		return
	}
	snap := p.Meter.Snapshot()
	r.record(func(res *Result) { res.Meter = snap })
}
