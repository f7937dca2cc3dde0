// Package entity provides entity templates, live entities, and the entity registry.
package entity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Skill is an extra attack bound to an entity, scaling its attack power.
type Skill struct {
	Name string `yaml:"name"`
	// DamageMultiplier scales AttackPower; the result is rounded to the nearest integer.
	DamageMultiplier float64 `yaml:"damage_multiplier"`
	// Reach is the hit volume's distance in front of the entity; 0 uses the entity's reach.
	Reach float64 `yaml:"reach"`
}

// AITuning overrides the configured AI defaults for one template.
// Zero fields fall back to the defaults.
type AITuning struct {
	DetectionRadius    float64 `yaml:"detection_radius"`
	AttackRange        float64 `yaml:"attack_range"`
	ChaseSpeed         float64 `yaml:"chase_speed"`
	RoamSpeed          float64 `yaml:"roam_speed"`
	RoamChangeInterval string  `yaml:"roam_change_interval"`
	AttackInterval     string  `yaml:"attack_interval"`
	TurnRate           float64 `yaml:"turn_rate"`
	LeashRadius        float64 `yaml:"leash_radius"`
	TargetTag          string  `yaml:"target_tag"`
}

// Template defines a reusable entity archetype loaded from YAML.
type Template struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Kind        Kind      `yaml:"kind"`
	Tag         string    `yaml:"tag"`
	MaxHealth   int       `yaml:"max_health"`
	AttackPower int       `yaml:"attack_power"`
	Defense     int       `yaml:"defense"`
	Radius      float64   `yaml:"radius"`
	Reach       float64   `yaml:"reach"`
	Skills      []Skill   `yaml:"skills"`
	AI          *AITuning `yaml:"ai"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Kind is known,
// combat kinds have MaxHealth >= 1, AttackPower, Defense, Radius and Reach are
// non-negative, and every skill is named with a positive multiplier.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("entity template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("entity template %q: name must not be empty", t.ID)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("entity template %q: unknown kind %d", t.ID, int(t.Kind))
	}
	if t.Kind.Combatant() && t.MaxHealth < 1 {
		return fmt.Errorf("entity template %q: max_health must be >= 1, got %d", t.ID, t.MaxHealth)
	}
	if t.AttackPower < 0 {
		return fmt.Errorf("entity template %q: attack_power must be >= 0", t.ID)
	}
	if t.Defense < 0 {
		return fmt.Errorf("entity template %q: defense must be >= 0", t.ID)
	}
	if t.Radius < 0 || t.Reach < 0 {
		return fmt.Errorf("entity template %q: radius and reach must be >= 0", t.ID)
	}
	seen := make(map[string]bool, len(t.Skills))
	for i, s := range t.Skills {
		if s.Name == "" {
			return fmt.Errorf("entity template %q: skill[%d] must have a name", t.ID, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("entity template %q: duplicate skill %q", t.ID, s.Name)
		}
		seen[s.Name] = true
		if s.DamageMultiplier <= 0 {
			return fmt.Errorf("entity template %q: skill %q damage_multiplier must be > 0", t.ID, s.Name)
		}
		if s.Reach < 0 {
			return fmt.Errorf("entity template %q: skill %q reach must be >= 0", t.ID, s.Name)
		}
	}
	return nil
}

// LoadTemplateFromBytes parses a single template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the templates keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first read, parse,
// validate, or duplicate-ID failure.
func LoadTemplates(dir string) (map[string]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template dir %q: %w", dir, err)
	}

	templates := make(map[string]*Template)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := templates[tmpl.ID]; dup {
			return nil, fmt.Errorf("loading %q: duplicate template id %q", path, tmpl.ID)
		}
		templates[tmpl.ID] = tmpl
	}
	return templates, nil
}
