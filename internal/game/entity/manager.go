package entity

import (
	"fmt"

	"github.com/cory-johannsen/verdict/internal/game/geom"
)

// Manager tracks all live entities by ID, preserving spawn order so that
// iteration is deterministic from tick to tick.
//
// Manager is not safe for concurrent use; it belongs to the simulation goroutine.
type Manager struct {
	byID  map[string]*Entity
	order []*Entity
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{byID: make(map[string]*Entity)}
}

// Spawn creates an entity from tmpl at pos and registers it.
//
// Precondition: tmpl must be non-nil.
// Postcondition: Returns the new registered entity, or an error.
func (m *Manager) Spawn(tmpl *Template, pos geom.Vec3) (*Entity, error) {
	e, err := New(tmpl, pos)
	if err != nil {
		return nil, fmt.Errorf("entity.Manager.Spawn: %w", err)
	}
	if err := m.Add(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Add registers an existing entity.
//
// Precondition: e must be non-nil with a non-empty ID.
// Postcondition: Returns an error if an entity with the same ID is registered.
func (m *Manager) Add(e *Entity) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("entity.Manager.Add: entity must be non-nil with an ID")
	}
	if _, exists := m.byID[e.ID]; exists {
		return fmt.Errorf("entity.Manager.Add: entity %q already registered", e.ID)
	}
	m.byID[e.ID] = e
	m.order = append(m.order, e)
	return nil
}

// Remove deletes an entity by ID.
//
// Postcondition: Returns an error if the entity is not found.
func (m *Manager) Remove(id string) error {
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("entity %q not found", id)
	}
	delete(m.byID, id)
	for i, e := range m.order {
		if e.ID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the entity with the given ID.
//
// Postcondition: Returns (e, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(id string) (*Entity, bool) {
	e, ok := m.byID[id]
	return e, ok
}

// All returns a snapshot of every entity in spawn order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) All() []*Entity {
	out := make([]*Entity, len(m.order))
	copy(out, m.order)
	return out
}

// WithTag returns a snapshot of entities whose Tag equals tag, in spawn order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) WithTag(tag string) []*Entity {
	out := []*Entity{}
	for _, e := range m.order {
		if e.Tag == tag {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of registered entities.
func (m *Manager) Len() int { return len(m.order) }
