package entity_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/verdict/internal/game/entity"
)

const slimeYAML = `
id: slime
name: Slime
kind: enemy
tag: enemy
max_health: 100
attack_power: 20
defense: 5
radius: 0.5
reach: 1.0
ai:
  detection_radius: 6
  attack_interval: 1.5s
`

func TestLoadTemplateFromBytes_ParsesAllFields(t *testing.T) {
	tmpl, err := entity.LoadTemplateFromBytes([]byte(slimeYAML))
	require.NoError(t, err)
	assert.Equal(t, "slime", tmpl.ID)
	assert.Equal(t, entity.KindEnemy, tmpl.Kind)
	assert.Equal(t, 100, tmpl.MaxHealth)
	assert.Equal(t, 5, tmpl.Defense)
	require.NotNil(t, tmpl.AI)
	assert.Equal(t, 6.0, tmpl.AI.DetectionRadius)
	assert.Equal(t, "1.5s", tmpl.AI.AttackInterval)
}

func TestLoadTemplateFromBytes_RejectsUnknownKind(t *testing.T) {
	_, err := entity.LoadTemplateFromBytes([]byte("id: x\nname: X\nkind: dragon\nmax_health: 1\n"))
	assert.Error(t, err)
}

func TestLoadTemplateFromBytes_MissingKindIsInvalid(t *testing.T) {
	_, err := entity.LoadTemplateFromBytes([]byte("id: x\nname: X\nmax_health: 1\n"))
	assert.Error(t, err)
}

func TestTemplateValidate(t *testing.T) {
	valid := func() *entity.Template {
		return &entity.Template{ID: "p", Name: "P", Kind: entity.KindPlayer, MaxHealth: 10}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*entity.Template){
		"empty id":          func(t *entity.Template) { t.ID = "" },
		"empty name":        func(t *entity.Template) { t.Name = "" },
		"zero health":       func(t *entity.Template) { t.MaxHealth = 0 },
		"negative attack":   func(t *entity.Template) { t.AttackPower = -1 },
		"negative defense":  func(t *entity.Template) { t.Defense = -1 },
		"negative reach":    func(t *entity.Template) { t.Reach = -1 },
		"unnamed skill":     func(t *entity.Template) { t.Skills = []entity.Skill{{DamageMultiplier: 1}} },
		"zero multiplier":   func(t *entity.Template) { t.Skills = []entity.Skill{{Name: "s"}} },
		"duplicate skills":  func(t *entity.Template) { t.Skills = []entity.Skill{{Name: "s", DamageMultiplier: 1}, {Name: "s", DamageMultiplier: 2}} },
		"unknown kind zero": func(t *entity.Template) { t.Kind = entity.KindUnknown },
	}
	for name, mutate := range cases {
		tmpl := valid()
		mutate(tmpl)
		assert.Error(t, tmpl.Validate(), name)
	}
}

func TestTemplateValidate_PropNeedsNoHealth(t *testing.T) {
	tmpl := &entity.Template{ID: "door", Name: "Door", Kind: entity.KindProp}
	assert.NoError(t, tmpl.Validate())
}

func TestLoadTemplates_ReadsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slime.yaml"), []byte(slimeYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hero.yaml"), []byte("id: hero\nname: Hero\nkind: player\nmax_health: 100\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	tmpls, err := entity.LoadTemplates(dir)
	require.NoError(t, err)
	assert.Len(t, tmpls, 2)
	assert.Contains(t, tmpls, "slime")
	assert.Contains(t, tmpls, "hero")
}

func TestLoadTemplates_DuplicateIDFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(slimeYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(slimeYAML), 0644))
	_, err := entity.LoadTemplates(dir)
	assert.Error(t, err)
}

func TestLoadTemplates_MissingDir(t *testing.T) {
	_, err := entity.LoadTemplates("/nonexistent/templates")
	assert.Error(t, err)
}

func TestKind_Property_ParseRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.SampledFrom([]entity.Kind{entity.KindPlayer, entity.KindEnemy, entity.KindProp}).Draw(rt, "kind")
		parsed, err := entity.ParseKind(k.String())
		require.NoError(rt, err)
		assert.Equal(rt, k, parsed)
	})
}
