package ai

import "fmt"

// Registry indexes Controllers by entity ID in registration order.
//
// Invariant: each entity ID is registered at most once.
type Registry struct {
	byID  map[string]*Controller
	order []*Controller
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Controller)}
}

// Register stores c under its entity's ID.
//
// Precondition: c must not be nil.
// Postcondition: returns error on entity ID collision.
func (r *Registry) Register(c *Controller) error {
	id := c.Entity().ID
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("ai.Registry: controller for %q already registered", id)
	}
	r.byID[id] = c
	r.order = append(r.order, c)
	return nil
}

// ControllerFor returns the Controller for entityID, or false if not registered.
func (r *Registry) ControllerFor(entityID string) (*Controller, bool) {
	c, ok := r.byID[entityID]
	return c, ok
}

// Remove drops the controller for entityID. Unknown IDs are ignored.
func (r *Registry) Remove(entityID string) {
	c, ok := r.byID[entityID]
	if !ok {
		return
	}
	delete(r.byID, entityID)
	for i, o := range r.order {
		if o == c {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// All returns every controller in registration order.
func (r *Registry) All() []*Controller {
	return append([]*Controller(nil), r.order...)
}

// Len returns the number of registered controllers.
func (r *Registry) Len() int { return len(r.order) }
