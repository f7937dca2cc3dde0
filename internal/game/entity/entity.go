package entity

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/verdict/internal/game/geom"
	"github.com/cory-johannsen/verdict/internal/game/meter"
	"github.com/cory-johannsen/verdict/internal/game/vital"
)

// Entity is a live participant in the simulation.
//
// Invariant: Vital is non-nil iff Kind.Combatant(); Meter is non-nil iff Kind == KindPlayer.
type Entity struct {
	// ID uniquely identifies this entity for its lifetime.
	ID string
	// TemplateID is the source template's ID; empty for parts.
	TemplateID string
	// Name is copied from the template for display and logging.
	Name string
	// Tag classifies the entity for target discovery ("player", "enemy", ...).
	Tag  string
	Kind Kind
	// Parent is the owning entity in the ownership hierarchy; nil for roots.
	Parent *Entity

	Position geom.Vec3
	// Yaw is the facing angle in radians; 0 faces +Z.
	Yaw float64
	// Radius is the overlap radius used for hit detection.
	Radius float64
	// Reach is how far in front of the entity its attack volume spawns.
	Reach float64

	AttackPower int
	Defense     int
	Skills      []Skill
	AI          *AITuning

	Vital *vital.Vital
	Meter *meter.Meter
}

// New creates a live entity from tmpl at pos.
//
// Precondition: tmpl must be non-nil and valid.
// Postcondition: Returns an entity with a fresh UUID, full health for combat
// kinds, and an uninitialized Meter for players; or an error.
func New(tmpl *Template, pos geom.Vec3) (*Entity, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("entity.New: tmpl must not be nil")
	}
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("entity.New: %w", err)
	}

	e := &Entity{
		ID:          uuid.NewString(),
		TemplateID:  tmpl.ID,
		Name:        tmpl.Name,
		Tag:         tmpl.Tag,
		Kind:        tmpl.Kind,
		Position:    pos,
		Radius:      tmpl.Radius,
		Reach:       tmpl.Reach,
		AttackPower: tmpl.AttackPower,
		Defense:     tmpl.Defense,
		Skills:      append([]Skill(nil), tmpl.Skills...),
		AI:          tmpl.AI,
	}
	if e.Tag == "" {
		e.Tag = tmpl.Kind.String()
	}
	if tmpl.Kind.Combatant() {
		v, err := vital.New(e.ID, tmpl.MaxHealth)
		if err != nil {
			return nil, fmt.Errorf("entity.New %q: %w", tmpl.ID, err)
		}
		e.Vital = v
	}
	if tmpl.Kind == KindPlayer {
		e.Meter = meter.New()
	}
	return e, nil
}

// NewPart creates a non-combat child of parent, such as a weapon volume that
// travels with its owner.
//
// Precondition: parent must be non-nil.
func NewPart(parent *Entity, name string, offset geom.Vec3, radius float64) *Entity {
	return &Entity{
		ID:       uuid.NewString(),
		Name:     name,
		Tag:      KindProp.String(),
		Kind:     KindProp,
		Parent:   parent,
		Position: parent.Position.Add(offset),
		Radius:   radius,
	}
}

// Root returns the top of e's ownership hierarchy.
func (e *Entity) Root() *Entity {
	r := e
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// IsSelfOrDescendantOf reports whether e is owner or sits below owner in the
// ownership hierarchy.
func (e *Entity) IsSelfOrDescendantOf(owner *Entity) bool {
	if owner == nil {
		return false
	}
	for n := e; n != nil; n = n.Parent {
		if n == owner || n.ID == owner.ID {
			return true
		}
	}
	return false
}

// CanTakeDamage reports whether e participates in combat right now.
// Dispatch is on the closed Kind set; props never do.
func (e *Entity) CanTakeDamage() bool {
	switch e.Kind {
	case KindPlayer, KindEnemy:
		return e.Vital != nil && !e.Vital.Removed()
	default:
		return false
	}
}

// Alive reports whether e is a combatant with health above zero that has not been removed.
func (e *Entity) Alive() bool {
	return e.CanTakeDamage() && !e.Vital.IsDepleted()
}

// Forward returns e's horizontal facing direction.
func (e *Entity) Forward() geom.Vec3 {
	return geom.Forward(e.Yaw)
}

// PointAhead returns the point dist units in front of e at e's height.
func (e *Entity) PointAhead(dist float64) geom.Vec3 {
	return e.Position.Add(e.Forward().Scale(dist))
}

// Skill returns the named skill.
//
// Postcondition: Returns (skill, true) if found, or (Skill{}, false) otherwise.
func (e *Entity) Skill(name string) (Skill, bool) {
	for _, s := range e.Skills {
		if s.Name == name {
			return s, true
		}
	}
	return Skill{}, false
}

// HealthDescription returns a coarse health label for logs and prompts.
//
// Postcondition: Returns a non-empty string.
func (e *Entity) HealthDescription() string {
	if e.Vital == nil {
		return "inanimate"
	}
	if e.Vital.IsDepleted() {
		return "defeated"
	}
	pct := e.Vital.Fraction()
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
