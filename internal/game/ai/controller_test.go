package ai_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/verdict/internal/game/ai"
	"github.com/cory-johannsen/verdict/internal/game/combat"
	"github.com/cory-johannsen/verdict/internal/game/dice"
	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/geom"
)

type countingAttacker struct {
	calls int
}

func (a *countingAttacker) Attack() *combat.AttackIntent {
	a.calls++
	return &combat.AttackIntent{}
}

func newEntity(t require.TestingT, kind entity.Kind, pos geom.Vec3) *entity.Entity {
	tmpl := &entity.Template{ID: kind.String(), Name: kind.String(), Kind: kind, MaxHealth: 50, AttackPower: 10, Radius: 0.5, Reach: 1}
	if kind == entity.KindPlayer {
		tmpl.Tag = "player"
	}
	e, err := entity.New(tmpl, pos)
	require.NoError(t, err)
	return e
}

// newController builds an enemy at the origin whose first roam heading is +X.
func newController(t require.TestingT, cfg ai.Config) (*ai.Controller, *entity.Entity, *countingAttacker) {
	enemy := newEntity(t, entity.KindEnemy, geom.Vec3{})
	atk := &countingAttacker{}
	c, err := ai.New(enemy, atk, cfg, &dice.Sequence{Values: []int{0}}, zap.NewNop())
	require.NoError(t, err)
	return c, enemy, atk
}

func TestTick_NoTargetRoams(t *testing.T) {
	c, enemy, atk := newController(t, ai.DefaultConfig())
	c.Tick(time.Second, nil)
	assert.Equal(t, ai.StateRoam, c.State())
	assert.InDelta(t, 1.5, enemy.Position.X, 1e-9)
	assert.InDelta(t, 0.0, enemy.Position.Z, 1e-9)
	assert.Zero(t, atk.calls)
}

func TestTick_TargetInDetectionOutsideAttackRangeChases(t *testing.T) {
	c, enemy, atk := newController(t, ai.DefaultConfig())
	player := newEntity(t, entity.KindPlayer, geom.Vec3{Z: 5})
	var chases []ai.ChaseEvent
	c.OnStartChase(func(ev ai.ChaseEvent) { chases = append(chases, ev) })

	c.Tick(100*time.Millisecond, []*entity.Entity{player})
	assert.Equal(t, ai.StateChase, c.State())
	assert.False(t, c.InMeleeRange())
	assert.Same(t, player, c.Target())
	assert.InDelta(t, 0.3, enemy.Position.Z, 1e-9)

	c.Tick(100*time.Millisecond, []*entity.Entity{player})
	assert.Equal(t, []ai.ChaseEvent{{TargetID: player.ID}}, chases)
	assert.Zero(t, atk.calls)
}

func TestTick_TargetInsideAttackRangeAttacksOncePerInterval(t *testing.T) {
	c, _, atk := newController(t, ai.DefaultConfig())
	player := newEntity(t, entity.KindPlayer, geom.Vec3{Z: 1})
	cands := []*entity.Entity{player}

	c.Tick(100*time.Millisecond, cands)
	assert.Equal(t, ai.StateAttack, c.State())
	assert.True(t, c.InMeleeRange())
	assert.Equal(t, 1, atk.calls)

	c.Tick(100*time.Millisecond, cands)
	assert.Equal(t, 1, atk.calls)

	c.Tick(1400*time.Millisecond, cands)
	assert.Equal(t, 2, atk.calls)
}

func TestTick_OutsideDetectionKeepsRoaming(t *testing.T) {
	c, _, _ := newController(t, ai.DefaultConfig())
	player := newEntity(t, entity.KindPlayer, geom.Vec3{Z: 7})
	chased := 0
	c.OnStartChase(func(ai.ChaseEvent) { chased++ })
	c.Tick(16*time.Millisecond, []*entity.Entity{player})
	assert.Equal(t, ai.StateRoam, c.State())
	assert.Zero(t, chased)
}

func TestTick_LosingTargetReturnsToRoamOnce(t *testing.T) {
	c, _, _ := newController(t, ai.DefaultConfig())
	player := newEntity(t, entity.KindPlayer, geom.Vec3{Z: 5})
	roams := 0
	c.OnStartRoam(func(ai.RoamEvent) { roams++ })

	c.Tick(16*time.Millisecond, []*entity.Entity{player})
	require.Equal(t, ai.StateChase, c.State())
	player.Position = geom.Vec3{Z: 50}
	c.Tick(16*time.Millisecond, []*entity.Entity{player})
	c.Tick(16*time.Millisecond, []*entity.Entity{player})
	assert.Equal(t, ai.StateRoam, c.State())
	assert.Equal(t, 1, roams)
}

func TestTick_IgnoresDeadAndMistaggedCandidates(t *testing.T) {
	c, _, _ := newController(t, ai.DefaultConfig())
	dead := newEntity(t, entity.KindPlayer, geom.Vec3{Z: 2})
	dead.Vital.ApplyHealthDelta(1000)
	other := newEntity(t, entity.KindEnemy, geom.Vec3{Z: 2})

	c.Tick(16*time.Millisecond, []*entity.Entity{dead, other, nil})
	assert.Equal(t, ai.StateRoam, c.State())
	assert.Nil(t, c.Target())
}

func TestTick_PicksNearestTarget(t *testing.T) {
	c, _, _ := newController(t, ai.DefaultConfig())
	far := newEntity(t, entity.KindPlayer, geom.Vec3{Z: 5})
	near := newEntity(t, entity.KindPlayer, geom.Vec3{X: -3})
	c.Tick(16*time.Millisecond, []*entity.Entity{far, near})
	assert.Same(t, near, c.Target())
}

func TestTick_DepletedEntityDoesNothing(t *testing.T) {
	c, enemy, atk := newController(t, ai.DefaultConfig())
	player := newEntity(t, entity.KindPlayer, geom.Vec3{Z: 1})
	enemy.Vital.ApplyHealthDelta(1000)

	c.Tick(time.Second, []*entity.Entity{player})
	assert.Equal(t, geom.Vec3{}, enemy.Position)
	assert.Zero(t, atk.calls)
	assert.Equal(t, ai.StateRoam, c.State())
}

func TestTick_DisabledControllerDoesNothing(t *testing.T) {
	c, enemy, _ := newController(t, ai.DefaultConfig())
	c.Disable()
	c.Tick(time.Second, nil)
	assert.True(t, c.Disabled())
	assert.Equal(t, geom.Vec3{}, enemy.Position)
}

func TestTick_ChaseStopsAtAttackRange(t *testing.T) {
	c, enemy, _ := newController(t, ai.DefaultConfig())
	player := newEntity(t, entity.KindPlayer, geom.Vec3{Z: 2})
	c.Tick(time.Second, []*entity.Entity{player})
	assert.InDelta(t, 0.5, enemy.Position.Z, 1e-9)
}

func TestTick_TurnsGraduallyTowardTarget(t *testing.T) {
	c, enemy, _ := newController(t, ai.DefaultConfig())
	player := newEntity(t, entity.KindPlayer, geom.Vec3{X: 5})
	c.Tick(16*time.Millisecond, []*entity.Entity{player})
	assert.Greater(t, enemy.Yaw, 0.0)
	assert.Less(t, enemy.Yaw, math.Pi/2)
}

func TestRoam_HeadingChangesAfterInterval(t *testing.T) {
	enemy := newEntity(t, entity.KindEnemy, geom.Vec3{})
	c, err := ai.New(enemy, nil, ai.DefaultConfig(), &dice.Sequence{Values: []int{0, 90_000}}, zap.NewNop())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.RoamDirection().X, 1e-9)

	c.Tick(4*time.Second, nil)
	assert.InDelta(t, 0.0, c.RoamDirection().X, 1e-9)
	assert.InDelta(t, 1.0, c.RoamDirection().Z, 1e-9)
}

func TestRoam_LeashTurnsBackOutwardHeading(t *testing.T) {
	cfg := ai.DefaultConfig()
	cfg.LeashRadius = 1
	c, enemy, _ := newController(t, cfg)
	enemy.Position = geom.Vec3{X: 2}

	c.Tick(time.Second, nil)
	assert.InDelta(t, -1.0, c.RoamDirection().X, 1e-9)
	assert.InDelta(t, 0.5, enemy.Position.X, 1e-9)
}

func TestNew_MissingAttackerWarnsAndSkipsAttacks(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	enemy := newEntity(t, entity.KindEnemy, geom.Vec3{})
	c, err := ai.New(enemy, nil, ai.DefaultConfig(), &dice.Sequence{Values: []int{0}}, zap.New(core))
	require.NoError(t, err)
	player := newEntity(t, entity.KindPlayer, geom.Vec3{Z: 1})

	for i := 0; i < 5; i++ {
		c.Tick(time.Second, []*entity.Entity{player})
	}
	assert.Equal(t, ai.StateAttack, c.State())
	assert.Equal(t, 1, logs.Len())
}

func TestNew_RejectsBadInput(t *testing.T) {
	prop := newEntity(t, entity.KindProp, geom.Vec3{})
	_, err := ai.New(prop, nil, ai.DefaultConfig(), dice.NewSeededSource(1), zap.NewNop())
	assert.Error(t, err)

	enemy := newEntity(t, entity.KindEnemy, geom.Vec3{})
	bad := ai.DefaultConfig()
	bad.TurnRate = 0
	_, err = ai.New(enemy, nil, bad, dice.NewSeededSource(1), zap.NewNop())
	assert.Error(t, err)

	_, err = ai.New(enemy, nil, ai.DefaultConfig(), nil, zap.NewNop())
	assert.Error(t, err)
}

func TestTick_Property_AttacksRespectInterval(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c, _, atk := newController(rt, ai.DefaultConfig())
		player := newEntity(rt, entity.KindPlayer, geom.Vec3{Z: 1})
		steps := rapid.SliceOfN(rapid.IntRange(1, 500), 1, 50).Draw(rt, "steps_ms")
		var total time.Duration
		for _, ms := range steps {
			dt := time.Duration(ms) * time.Millisecond
			total += dt
			c.Tick(dt, []*entity.Entity{player})
		}
		limit := int(total/ai.DefaultConfig().AttackInterval) + 1
		assert.LessOrEqual(rt, atk.calls, limit)
		assert.GreaterOrEqual(rt, atk.calls, 1)
	})
}
