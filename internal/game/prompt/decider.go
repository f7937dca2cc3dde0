package prompt

import (
	"errors"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/outcome"
	"github.com/cory-johannsen/verdict/internal/scripting"
)

// DecideHook is the Lua global called for each visible prompt:
//
//	decide(target_name, red, white) -> "execute" | "spare" | nil
const DecideHook = "decide"

// Resolver applies a decision to a defeated entity. *outcome.Mediator satisfies it.
type Resolver interface {
	Resolve(e *entity.Entity, d outcome.Decision) error
}

// LuaDecider answers visible prompts by asking a Lua script, standing in for
// a player clicking execute or spare.
type LuaDecider struct {
	scripts  *scripting.Manager
	scope    string
	resolver Resolver
	logger   *zap.Logger
}

// NewLuaDecider creates a decider that calls DecideHook in scope.
//
// Precondition: scripts, resolver and logger must be non-nil.
func NewLuaDecider(scripts *scripting.Manager, scope string, resolver Resolver, logger *zap.Logger) *LuaDecider {
	return &LuaDecider{scripts: scripts, scope: scope, resolver: resolver, logger: logger}
}

// Decide asks the script about every visible prompt in q and applies its answers.
// A nil answer, an unknown answer, or a Lua error leaves the request pending.
//
// Postcondition: Returns the number of decisions applied.
func (d *LuaDecider) Decide(q *Queue, player *entity.Entity) int {
	red, white := 0, 0
	if player != nil && player.Meter != nil {
		red, white = player.Meter.Red(), player.Meter.White()
	}
	applied := 0
	for _, p := range q.Visible() {
		target := p.Request.Target
		ret, err := d.scripts.CallHook(d.scope, DecideHook,
			lua.LString(target.Name), lua.LNumber(red), lua.LNumber(white))
		if err != nil || ret == lua.LNil {
			continue
		}
		answer, ok := ret.(lua.LString)
		if !ok {
			d.logger.Warn("decider returned a non-string", zap.String("type", ret.Type().String()))
			continue
		}
		decision, err := outcome.ParseDecision(string(answer))
		if err != nil {
			d.logger.Warn("decider returned an unknown decision", zap.String("answer", string(answer)))
			continue
		}
		if err := d.resolver.Resolve(target, decision); err != nil {
			if !errors.Is(err, outcome.ErrNoPendingRequest) {
				d.logger.Error("applying decision failed", zap.Error(err))
			}
			continue
		}
		applied++
		if player != nil && player.Meter != nil {
			red, white = player.Meter.Red(), player.Meter.White()
		}
	}
	return applied
}
