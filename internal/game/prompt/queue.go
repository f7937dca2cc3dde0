// Package prompt holds the execute-or-spare confirmation prompts shown for
// defeated entities, and a scripted decider that answers them headlessly.
package prompt

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/verdict/internal/game/geom"
	"github.com/cory-johannsen/verdict/internal/game/outcome"
)

// Config tunes prompt placement and visibility.
type Config struct {
	// VisibilityDistance is the farthest the player may be from a target and
	// still see its prompt.
	VisibilityDistance float64
	// AnchorOffset places the prompt relative to its target: X to the target's
	// right, Y up, Z along its facing.
	AnchorOffset geom.Vec3
}

// DefaultConfig shows prompts within 8 units, floating up and to the right of the target.
func DefaultConfig() Config {
	return Config{
		VisibilityDistance: 8,
		AnchorOffset:       geom.Vec3{X: 1, Y: 1.5},
	}
}

// Prompt is one presented execution request.
type Prompt struct {
	Request *outcome.ExecutionRequest
	// Visible is false while the player is out of range.
	Visible bool
	// Anchor is the world position the prompt is drawn at.
	Anchor geom.Vec3
}

// Queue implements outcome.Prompter. Walking away from a target hides its
// prompt; it never cancels the request.
type Queue struct {
	cfg     Config
	logger  *zap.Logger
	prompts []*Prompt
}

// NewQueue creates an empty queue.
//
// Precondition: logger must be non-nil.
func NewQueue(cfg Config, logger *zap.Logger) *Queue {
	return &Queue{cfg: cfg, logger: logger}
}

// Present adds a visible prompt for req. Presenting the same request twice is a no-op.
func (q *Queue) Present(req *outcome.ExecutionRequest) {
	if req == nil || q.find(req.ID) >= 0 {
		return
	}
	p := &Prompt{Request: req, Visible: true}
	q.place(p)
	q.prompts = append(q.prompts, p)
	q.logger.Info("prompt presented",
		zap.String("request_id", req.ID),
		zap.String("target", req.Target.Name),
	)
}

// Dismiss removes the prompt for req. Unknown requests are ignored.
func (q *Queue) Dismiss(req *outcome.ExecutionRequest) {
	if req == nil {
		return
	}
	i := q.find(req.ID)
	if i < 0 {
		return
	}
	q.prompts = append(q.prompts[:i], q.prompts[i+1:]...)
	q.logger.Debug("prompt dismissed", zap.String("request_id", req.ID))
}

// Update re-anchors every prompt to its target and toggles visibility by the
// player's distance to the target.
func (q *Queue) Update(playerPos geom.Vec3) {
	for _, p := range q.prompts {
		q.place(p)
		visible := geom.Distance(playerPos, p.Request.Target.Position) <= q.cfg.VisibilityDistance
		if visible == p.Visible {
			continue
		}
		p.Visible = visible
		q.logger.Debug("prompt visibility changed",
			zap.String("request_id", p.Request.ID),
			zap.Bool("visible", visible),
		)
	}
}

// Visible returns the prompts the player can currently act on, oldest first.
func (q *Queue) Visible() []*Prompt {
	var out []*Prompt
	for _, p := range q.prompts {
		if p.Visible {
			out = append(out, p)
		}
	}
	return out
}

// All returns every prompt, oldest first.
func (q *Queue) All() []*Prompt {
	return append([]*Prompt(nil), q.prompts...)
}

// Len returns the number of prompts, visible or not.
func (q *Queue) Len() int { return len(q.prompts) }

func (q *Queue) place(p *Prompt) {
	t := p.Request.Target
	off := q.cfg.AnchorOffset
	p.Anchor = t.Position.
		Add(geom.Right(t.Yaw).Scale(off.X)).
		Add(geom.Vec3{Y: off.Y}).
		Add(geom.Forward(t.Yaw).Scale(off.Z))
}

func (q *Queue) find(id string) int {
	for i, p := range q.prompts {
		if p.Request.ID == id {
			return i
		}
	}
	return -1
}
