// Package outcome resolves the execute-or-spare decision for defeated entities
// and carries the player's meter across levels.
package outcome

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/signal"
	"github.com/cory-johannsen/verdict/internal/game/vital"
)

// ErrNoPendingRequest is returned when a decision arrives for an entity with
// no outstanding execution request.
var ErrNoPendingRequest = errors.New("outcome: no pending execution request")

// ErrNotRegistered is returned for entities the mediator does not track.
var ErrNotRegistered = errors.New("outcome: entity not registered")

type registration struct {
	entity *entity.Entity
	cancel func()
}

// Mediator turns zero-health notifications into execution requests and applies
// the external decision to the defeated entity and the active player's meter.
//
// Invariant: at most one ExecutionRequest is pending per entity, and each is
// applied at most once.
type Mediator struct {
	prompter Prompter
	logger   *zap.Logger

	registered map[string]*registration
	pending    map[string]*ExecutionRequest
	order      []*ExecutionRequest

	player    *entity.Entity
	persisted Persisted

	resolved signal.Signal[Resolution]
}

// NewMediator creates a mediator for one play session.
//
// Precondition: logger must be non-nil. prompter may be nil; requests then stay
// pending until decided directly.
// Postcondition: Persisted() starts at cfg's initial values.
func NewMediator(cfg Config, prompter Prompter, logger *zap.Logger) *Mediator {
	return &Mediator{
		prompter:   prompter,
		logger:     logger,
		registered: make(map[string]*registration),
		pending:    make(map[string]*ExecutionRequest),
		persisted:  Persisted{Red: cfg.InitialRed, White: cfg.InitialWhite},
	}
}

// SetPrompter replaces the prompter used for subsequent requests.
func (m *Mediator) SetPrompter(p Prompter) { m.prompter = p }

// RegisterEntity subscribes to e's zero-health notification. Registering the
// same entity twice is a no-op.
//
// Precondition: e must be a combatant.
func (m *Mediator) RegisterEntity(e *entity.Entity) error {
	if e == nil || e.Vital == nil {
		return fmt.Errorf("outcome.Mediator.RegisterEntity: entity must be a combatant")
	}
	if _, ok := m.registered[e.ID]; ok {
		m.logger.Debug("entity already registered", zap.String("entity", e.Name), zap.String("entity_id", e.ID))
		return nil
	}
	cancel := e.Vital.OnZeroHealth(m.onZeroHealth)
	m.registered[e.ID] = &registration{entity: e, cancel: cancel}
	m.logger.Debug("entity registered", zap.String("entity", e.Name), zap.String("entity_id", e.ID))
	return nil
}

// Unregister stops tracking id and cancels any pending request for it.
//
// Postcondition: Returns ErrNotRegistered for unknown ids.
func (m *Mediator) Unregister(id string) error {
	reg, ok := m.registered[id]
	if !ok {
		return fmt.Errorf("outcome.Mediator.Unregister %q: %w", id, ErrNotRegistered)
	}
	reg.cancel()
	delete(m.registered, id)
	if req, ok := m.take(id); ok {
		m.logger.Info("execution request cancelled", zap.String("entity", reg.entity.Name), zap.String("request_id", req.ID))
		m.dismiss(req)
	}
	return nil
}

// Registered reports whether id is tracked.
func (m *Mediator) Registered(id string) bool {
	_, ok := m.registered[id]
	return ok
}

func (m *Mediator) onZeroHealth(ev vital.ZeroHealth) {
	reg, ok := m.registered[ev.OwnerID]
	if !ok {
		return
	}
	if _, dup := m.pending[ev.OwnerID]; dup {
		m.logger.Debug("execution request already pending", zap.String("entity", reg.entity.Name))
		return
	}
	req := &ExecutionRequest{ID: uuid.NewString(), Target: reg.entity}
	m.pending[ev.OwnerID] = req
	m.order = append(m.order, req)
	m.logger.Info("execution request created",
		zap.String("entity", reg.entity.Name),
		zap.String("entity_id", reg.entity.ID),
		zap.String("request_id", req.ID),
	)
	if m.prompter == nil {
		m.logger.Error("no prompter bound; execution request stays pending", zap.String("request_id", req.ID))
		return
	}
	m.prompter.Present(req)
}

// ConfirmExecute applies the execute decision to e's pending request: the
// player's meter takes the defeat delta, the new meter values are persisted,
// and e is finalized for removal.
//
// Postcondition: Returns ErrNoPendingRequest, with a warning logged and no
// state changed, when e has nothing pending.
func (m *Mediator) ConfirmExecute(e *entity.Entity) error {
	return m.Resolve(e, DecisionExecute)
}

// ConfirmSpare applies the spare decision to e's pending request: the player's
// meter takes the spare delta, the new meter values are persisted, and e is
// revived at full health.
//
// Postcondition: Returns ErrNoPendingRequest, with a warning logged and no
// state changed, when e has nothing pending.
func (m *Mediator) ConfirmSpare(e *entity.Entity) error {
	return m.Resolve(e, DecisionSpare)
}

// Resolve applies d to e's pending request.
func (m *Mediator) Resolve(e *entity.Entity, d Decision) error {
	if e == nil {
		return fmt.Errorf("outcome.Mediator.Resolve: entity must not be nil")
	}
	if d != DecisionExecute && d != DecisionSpare {
		return fmt.Errorf("outcome.Mediator.Resolve: invalid %s", d)
	}
	req, ok := m.take(e.ID)
	if !ok {
		m.logger.Warn("decision ignored: nothing pending",
			zap.String("entity", e.Name),
			zap.String("entity_id", e.ID),
			zap.Stringer("decision", d),
		)
		return fmt.Errorf("outcome.Mediator.Resolve %s %q: %w", d, e.Name, ErrNoPendingRequest)
	}

	res := Resolution{Request: req, Decision: d}
	if m.player != nil && m.player.Meter != nil {
		if d == DecisionExecute {
			m.player.Meter.OnTargetDefeated()
		} else {
			m.player.Meter.OnTargetSpared()
		}
		snap := m.player.Meter.Snapshot()
		m.persisted = Persisted{Red: snap.Red, White: snap.White}
		res.Meter = snap
	} else {
		m.logger.Warn("no active player; meter unchanged", zap.Stringer("decision", d))
	}

	if d == DecisionExecute {
		e.Vital.FinalizeDefeat()
	} else {
		e.Vital.ResetForRevive()
	}
	m.dismiss(req)
	m.logger.Info("execution request resolved",
		zap.String("entity", e.Name),
		zap.String("request_id", req.ID),
		zap.Stringer("decision", d),
		zap.Int("red", m.persisted.Red),
		zap.Int("white", m.persisted.White),
	)
	m.resolved.Emit(res)
	return nil
}

// ActivateLevel binds player as the meter owner for the current level and
// seeds its meter from the persisted values.
//
// Precondition: player must carry a Meter.
// Postcondition: player.Meter is initialized; a meter that was already
// initialized keeps its values.
func (m *Mediator) ActivateLevel(player *entity.Entity) error {
	if player == nil || player.Meter == nil {
		return fmt.Errorf("outcome.Mediator.ActivateLevel: player must carry a meter")
	}
	m.player = player
	if !player.Meter.Initialize(m.persisted.Red, m.persisted.White) {
		m.logger.Debug("player meter already initialized", zap.String("player", player.Name))
		return nil
	}
	m.logger.Info("level activated",
		zap.String("player", player.Name),
		zap.Int("red", player.Meter.Red()),
		zap.Int("white", player.Meter.White()),
	)
	return nil
}

// Player returns the currently bound player, or nil.
func (m *Mediator) Player() *entity.Entity { return m.player }

// Persisted returns the meter values carried to the next level.
func (m *Mediator) Persisted() Persisted { return m.persisted }

// Pending returns every outstanding request in creation order.
func (m *Mediator) Pending() []*ExecutionRequest {
	return append([]*ExecutionRequest(nil), m.order...)
}

// PendingFor returns the outstanding request for id.
func (m *Mediator) PendingFor(id string) (*ExecutionRequest, bool) {
	req, ok := m.pending[id]
	return req, ok
}

// OnResolved subscribes fn to applied decisions.
func (m *Mediator) OnResolved(fn func(Resolution)) (cancel func()) {
	return m.resolved.Subscribe(fn)
}

// Close drops every subscription and pending request.
func (m *Mediator) Close() {
	for id, reg := range m.registered {
		reg.cancel()
		delete(m.registered, id)
	}
	for _, req := range m.order {
		m.dismiss(req)
	}
	clear(m.pending)
	m.order = nil
	m.resolved.Clear()
	m.player = nil
}

func (m *Mediator) take(id string) (*ExecutionRequest, bool) {
	req, ok := m.pending[id]
	if !ok {
		return nil, false
	}
	delete(m.pending, id)
	for i, r := range m.order {
		if r == req {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return req, true
}

func (m *Mediator) dismiss(req *ExecutionRequest) {
	if m.prompter != nil {
		m.prompter.Dismiss(req)
	}
}
