package outcome_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/geom"
	"github.com/cory-johannsen/verdict/internal/game/meter"
	"github.com/cory-johannsen/verdict/internal/game/outcome"
)

type recordingPrompter struct {
	presented []*outcome.ExecutionRequest
	dismissed []*outcome.ExecutionRequest
}

func (p *recordingPrompter) Present(req *outcome.ExecutionRequest) {
	p.presented = append(p.presented, req)
}

func (p *recordingPrompter) Dismiss(req *outcome.ExecutionRequest) {
	p.dismissed = append(p.dismissed, req)
}

func spawn(t require.TestingT, kind entity.Kind) *entity.Entity {
	e, err := entity.New(&entity.Template{ID: kind.String(), Name: kind.String(), Kind: kind, MaxHealth: 50}, geom.Vec3{})
	require.NoError(t, err)
	return e
}

type session struct {
	m        *outcome.Mediator
	prompter *recordingPrompter
	player   *entity.Entity
	logs     *observer.ObservedLogs
}

func newSession(t require.TestingT, cfg outcome.Config) *session {
	core, logs := observer.New(zap.DebugLevel)
	p := &recordingPrompter{}
	m := outcome.NewMediator(cfg, p, zap.New(core))
	player := spawn(t, entity.KindPlayer)
	require.NoError(t, m.ActivateLevel(player))
	return &session{m: m, prompter: p, player: player, logs: logs}
}

func (s *session) defeat(t require.TestingT) *entity.Entity {
	e := spawn(t, entity.KindEnemy)
	require.NoError(t, s.m.RegisterEntity(e))
	e.Vital.ApplyHealthDelta(e.Vital.Max())
	return e
}

func TestZeroHealth_CreatesOnePendingRequest(t *testing.T) {
	s := newSession(t, outcome.DefaultConfig())
	e := spawn(t, entity.KindEnemy)
	require.NoError(t, s.m.RegisterEntity(e))
	require.NoError(t, s.m.RegisterEntity(e))

	e.Vital.ApplyHealthDelta(100)
	e.Vital.ApplyHealthDelta(10)

	req, ok := s.m.PendingFor(e.ID)
	require.True(t, ok)
	assert.Same(t, e, req.Target)
	assert.NotEmpty(t, req.ID)
	assert.Len(t, s.m.Pending(), 1)
	assert.Equal(t, []*outcome.ExecutionRequest{req}, s.prompter.presented)
}

func TestConfirmExecute_TwiceAppliesOnce(t *testing.T) {
	s := newSession(t, outcome.DefaultConfig())
	e := s.defeat(t)

	require.NoError(t, s.m.ConfirmExecute(e))
	err := s.m.ConfirmExecute(e)
	assert.ErrorIs(t, err, outcome.ErrNoPendingRequest)

	assert.Equal(t, 104, s.player.Meter.Red())
	assert.Equal(t, 95, s.player.Meter.White())
	assert.True(t, e.Vital.Removed())
	assert.Equal(t, outcome.Persisted{Red: 104, White: 95}, s.m.Persisted())
	assert.Len(t, s.prompter.dismissed, 1)
	assert.Equal(t, 1, s.logs.FilterMessage("decision ignored: nothing pending").Len())
}

func TestConfirmSpare_RevivesAndRearms(t *testing.T) {
	s := newSession(t, outcome.DefaultConfig())
	e := s.defeat(t)

	require.NoError(t, s.m.ConfirmSpare(e))
	assert.Equal(t, 95, s.player.Meter.Red())
	assert.Equal(t, 112, s.player.Meter.White())
	assert.Equal(t, e.Vital.Max(), e.Vital.Current())
	assert.False(t, e.Vital.Removed())
	_, ok := s.m.PendingFor(e.ID)
	assert.False(t, ok)

	e.Vital.ApplyHealthDelta(e.Vital.Max())
	_, ok = s.m.PendingFor(e.ID)
	assert.True(t, ok)
	assert.Len(t, s.prompter.presented, 2)
}

func TestConfirmSpare_WithoutPendingHasNoEffect(t *testing.T) {
	s := newSession(t, outcome.DefaultConfig())
	e := spawn(t, entity.KindEnemy)
	require.NoError(t, s.m.RegisterEntity(e))
	assert.ErrorIs(t, s.m.ConfirmSpare(e), outcome.ErrNoPendingRequest)
	assert.Equal(t, meter.Snapshot{Red: 100, White: 100}, s.player.Meter.Snapshot())
}

func TestMeterScenarios(t *testing.T) {
	s := newSession(t, outcome.Config{InitialRed: 198, InitialWhite: 10})
	require.NoError(t, s.m.ConfirmSpare(s.defeat(t)))
	assert.Equal(t, 193, s.player.Meter.Red())
	require.NoError(t, s.m.ConfirmExecute(s.defeat(t)))
	assert.Equal(t, 197, s.player.Meter.Red())

	s = newSession(t, outcome.Config{InitialRed: 199, InitialWhite: 10})
	require.NoError(t, s.m.ConfirmExecute(s.defeat(t)))
	assert.Equal(t, 200, s.player.Meter.Red())

	s = newSession(t, outcome.Config{InitialRed: 100, InitialWhite: 196})
	require.NoError(t, s.m.ConfirmSpare(s.defeat(t)))
	assert.Equal(t, 208, s.player.Meter.White())
	assert.Equal(t, 200, s.player.Meter.WhiteDisplay())
	for i := 0; i < 5; i++ {
		require.NoError(t, s.m.ConfirmExecute(s.defeat(t)))
	}
	assert.Equal(t, 183, s.player.Meter.White())
	assert.Equal(t, 183, s.player.Meter.WhiteDisplay())
}

func TestActivateLevel_CarriesMeterToNextPlayer(t *testing.T) {
	s := newSession(t, outcome.DefaultConfig())
	require.NoError(t, s.m.ConfirmExecute(s.defeat(t)))

	next := spawn(t, entity.KindPlayer)
	require.NoError(t, s.m.ActivateLevel(next))
	assert.Same(t, next, s.m.Player())
	assert.Equal(t, meter.Snapshot{Red: 104, White: 95}, next.Meter.Snapshot())

	require.NoError(t, s.m.ActivateLevel(next))
	assert.Equal(t, meter.Snapshot{Red: 104, White: 95}, next.Meter.Snapshot())

	assert.Error(t, s.m.ActivateLevel(spawn(t, entity.KindEnemy)))
	assert.Error(t, s.m.ActivateLevel(nil))
}

func TestMissingPrompter_RequestStaysPending(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := outcome.NewMediator(outcome.DefaultConfig(), nil, zap.New(core))
	player := spawn(t, entity.KindPlayer)
	require.NoError(t, m.ActivateLevel(player))
	e := spawn(t, entity.KindEnemy)
	require.NoError(t, m.RegisterEntity(e))

	e.Vital.ApplyHealthDelta(1000)
	assert.Equal(t, 1, logs.FilterMessage("no prompter bound; execution request stays pending").Len())
	_, ok := m.PendingFor(e.ID)
	require.True(t, ok)
	require.NoError(t, m.ConfirmExecute(e))
	assert.Equal(t, 104, player.Meter.Red())
}

func TestNoPlayer_DecisionStillApplies(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := outcome.NewMediator(outcome.DefaultConfig(), &recordingPrompter{}, zap.New(core))
	e := spawn(t, entity.KindEnemy)
	require.NoError(t, m.RegisterEntity(e))
	e.Vital.ApplyHealthDelta(1000)

	require.NoError(t, m.ConfirmExecute(e))
	assert.True(t, e.Vital.Removed())
	assert.Equal(t, outcome.Persisted{Red: 100, White: 100}, m.Persisted())
	assert.Equal(t, 1, logs.FilterMessage("no active player; meter unchanged").Len())
}

func TestUnregister_CancelsPendingRequest(t *testing.T) {
	s := newSession(t, outcome.DefaultConfig())
	e := s.defeat(t)

	require.NoError(t, s.m.Unregister(e.ID))
	assert.Empty(t, s.m.Pending())
	assert.Len(t, s.prompter.dismissed, 1)
	assert.False(t, s.m.Registered(e.ID))
	assert.ErrorIs(t, s.m.ConfirmExecute(e), outcome.ErrNoPendingRequest)
	assert.ErrorIs(t, s.m.Unregister(e.ID), outcome.ErrNotRegistered)

	e.Vital.ResetForRevive()
	e.Vital.ApplyHealthDelta(1000)
	assert.Empty(t, s.m.Pending())
}

func TestRegisterEntity_RejectsNonCombatants(t *testing.T) {
	s := newSession(t, outcome.DefaultConfig())
	assert.Error(t, s.m.RegisterEntity(nil))
	assert.Error(t, s.m.RegisterEntity(spawn(t, entity.KindProp)))
}

func TestOnResolved_ReportsDecisionAndMeter(t *testing.T) {
	s := newSession(t, outcome.DefaultConfig())
	var got []outcome.Resolution
	s.m.OnResolved(func(r outcome.Resolution) { got = append(got, r) })
	e := s.defeat(t)
	require.NoError(t, s.m.Resolve(e, outcome.DecisionSpare))

	require.Len(t, got, 1)
	assert.Equal(t, outcome.DecisionSpare, got[0].Decision)
	assert.Same(t, e, got[0].Request.Target)
	assert.Equal(t, meter.Snapshot{Red: 95, White: 112}, got[0].Meter)
	assert.Error(t, s.m.Resolve(e, outcome.Decision(9)))
}

func TestClose_DropsSubscriptionsAndRequests(t *testing.T) {
	s := newSession(t, outcome.DefaultConfig())
	pendingEnemy := s.defeat(t)
	live := spawn(t, entity.KindEnemy)
	require.NoError(t, s.m.RegisterEntity(live))

	s.m.Close()
	assert.Empty(t, s.m.Pending())
	assert.Len(t, s.prompter.dismissed, 1)
	assert.Nil(t, s.m.Player())

	live.Vital.ApplyHealthDelta(1000)
	assert.Empty(t, s.m.Pending())
	assert.ErrorIs(t, s.m.ConfirmExecute(pendingEnemy), outcome.ErrNoPendingRequest)
}

func TestParseDecision(t *testing.T) {
	d, err := outcome.ParseDecision("execute")
	require.NoError(t, err)
	assert.Equal(t, outcome.DecisionExecute, d)
	d, err = outcome.ParseDecision("spare")
	require.NoError(t, err)
	assert.Equal(t, "spare", d.String())
	_, err = outcome.ParseDecision("maybe")
	assert.Error(t, err)
}

func TestMediator_Property_EachRequestAppliesOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		red := rapid.IntRange(0, 200).Draw(rt, "red")
		white := rapid.IntRange(0, 400).Draw(rt, "white")
		s := newSession(rt, outcome.Config{InitialRed: red, InitialWhite: white})
		n := rapid.IntRange(1, 15).Draw(rt, "n")
		applied := 0
		for i := 0; i < n; i++ {
			e := s.defeat(rt)
			d := rapid.SampledFrom([]outcome.Decision{outcome.DecisionExecute, outcome.DecisionSpare}).Draw(rt, "d")
			repeats := rapid.IntRange(1, 3).Draw(rt, "repeats")
			for j := 0; j < repeats; j++ {
				if s.m.Resolve(e, d) == nil {
					applied++
				}
			}
			r := s.player.Meter.Red()
			assert.GreaterOrEqual(rt, r, 0)
			assert.LessOrEqual(rt, r, meter.DisplayCap)
			assert.GreaterOrEqual(rt, s.player.Meter.White(), 0)
		}
		assert.Equal(rt, n, applied)
		assert.Empty(rt, s.m.Pending())
	})
}
