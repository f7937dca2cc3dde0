package outcome

import (
	"fmt"

	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/meter"
)

// Decision is the external verdict on a defeated entity.
type Decision int

const (
	// DecisionExecute removes the entity and rewards red.
	DecisionExecute Decision = iota + 1
	// DecisionSpare revives the entity and rewards white.
	DecisionSpare
)

// String returns the lowercase decision name.
func (d Decision) String() string {
	switch d {
	case DecisionExecute:
		return "execute"
	case DecisionSpare:
		return "spare"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// ParseDecision converts "execute" or "spare" to a Decision.
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "execute":
		return DecisionExecute, nil
	case "spare":
		return DecisionSpare, nil
	default:
		return 0, fmt.Errorf("outcome.ParseDecision: unknown decision %q", s)
	}
}

// ExecutionRequest is an outstanding execute-or-spare choice for one defeated entity.
//
// Invariant: at most one request is pending per entity.
type ExecutionRequest struct {
	// ID uniquely identifies this request.
	ID     string
	Target *entity.Entity
}

// Resolution is emitted after a request has been decided and applied.
type Resolution struct {
	Request  *ExecutionRequest
	Decision Decision
	// Meter is the bound player's meter after the decision; zero if no player was bound.
	Meter meter.Snapshot
}

// Prompter presents and withdraws execution requests to whoever decides them.
type Prompter interface {
	Present(req *ExecutionRequest)
	Dismiss(req *ExecutionRequest)
}

// Persisted is the meter state carried from one level to the next.
type Persisted struct {
	Red   int
	White int
}

// Config holds the meter values a fresh session starts with.
type Config struct {
	InitialRed   int
	InitialWhite int
}

// DefaultConfig starts both meters at 100.
func DefaultConfig() Config {
	return Config{InitialRed: 100, InitialWhite: 100}
}
