package gameserver

import (
	"fmt"
	"math"
	"time"

	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/geom"
	"github.com/cory-johannsen/verdict/internal/game/world"
)

// PilotConfig tunes the scripted player.
type PilotConfig struct {
	// Speed is the player's movement speed in units per second.
	Speed float64
	// AttackInterval is the minimum time between two player attacks.
	AttackInterval time.Duration
	// Skill replaces the basic attack every SkillEvery attacks.
	Skill      string
	SkillEvery int
	// ApproachDistance is how close the player walks to a defeated enemy
	// waiting on a decision.
	ApproachDistance float64
}

// DefaultPilotConfig returns the stock pilot tuning.
func DefaultPilotConfig() PilotConfig {
	return PilotConfig{
		Speed:            4,
		AttackInterval:   500 * time.Millisecond,
		ApproachDistance: 2,
	}
}

// Validate reports the first invalid field.
func (c PilotConfig) Validate() error {
	if c.Speed <= 0 {
		return fmt.Errorf("gameserver.PilotConfig: speed must be > 0, got %v", c.Speed)
	}
	if c.AttackInterval < 0 || c.SkillEvery < 0 || c.ApproachDistance < 0 {
		return fmt.Errorf("gameserver.PilotConfig: attack interval, skill cadence and approach distance must be >= 0")
	}
	return nil
}

// Pilot stands in for the player's input: it walks to the nearest live enemy
// and attacks it, then walks to defeated enemies so their prompts show.
type Pilot struct {
	cfg      PilotConfig
	clock    time.Duration
	last     time.Duration
	attacked bool
	attacks  int
}

// NewPilot creates a pilot.
func NewPilot(cfg PilotConfig) *Pilot {
	return &Pilot{cfg: cfg}
}

// Attacks returns the number of attacks the pilot has started.
func (p *Pilot) Attacks() int { return p.attacks }

// Step issues this tick's input to w.
func (p *Pilot) Step(w *world.World, dt time.Duration) {
	p.clock += dt
	player := w.Player()
	if player == nil || !player.Alive() {
		return
	}
	target := p.pick(w, player)
	if target == nil {
		return
	}

	stand := player.Reach
	if !target.Alive() {
		stand = p.cfg.ApproachDistance
	}
	to := target.Position.Sub(player.Position).Flat()
	dist := to.Len()
	pos, yaw := player.Position, player.Yaw
	if dist > 1e-6 {
		yaw = geom.YawOf(to)
	}
	if dist > stand {
		step := math.Min(p.cfg.Speed*dt.Seconds(), dist-stand)
		pos = pos.Add(to.Normalize().Scale(step))
		dist -= step
	}
	w.MovePlayer(pos, yaw)

	if !target.Alive() || dist > stand+target.Radius {
		return
	}
	if p.attacked && p.clock-p.last < p.cfg.AttackInterval {
		return
	}
	p.attacks++
	if p.cfg.Skill != "" && p.cfg.SkillEvery > 0 && p.attacks%p.cfg.SkillEvery == 0 {
		w.PlayerSkill(p.cfg.Skill)
	} else {
		w.PlayerAttack()
	}
	p.last, p.attacked = p.clock, true
}

// pick returns the nearest live enemy, or failing that the nearest defeated
// one still on the field.
func (p *Pilot) pick(w *world.World, player *entity.Entity) *entity.Entity {
	var live, down *entity.Entity
	liveDist, downDist := math.Inf(1), math.Inf(1)
	for _, e := range w.Enemies() {
		d := geom.Distance(player.Position, e.Position)
		if e.Alive() {
			if d < liveDist {
				live, liveDist = e, d
			}
			continue
		}
		if e.CanTakeDamage() && d < downDist {
			down, downDist = e, d
		}
	}
	if live != nil {
		return live
	}
	return down
}
