// Package world loads levels and drives one simulation step across every
// entity: AI, attack volumes, removals, and prompt visibility.
package world

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/verdict/internal/game/geom"
)

// Spawn places one entity from a template.
type Spawn struct {
	Template string
	Position geom.Vec3
	Yaw      float64
	// LeashRadius overrides the AI leash for this spawn; 0 keeps the template's.
	LeashRadius float64
}

// Level describes one playable area.
type Level struct {
	ID      string
	Name    string
	Player  Spawn
	Enemies []Spawn
	// Next is the ID of the level that follows this one; empty ends the campaign.
	Next string
}

// Validate checks that l is internally consistent.
//
// Postcondition: Returns nil if valid, or an error joining every violation.
func (l *Level) Validate() error {
	var errs []string
	if l.ID == "" {
		errs = append(errs, "level ID must not be empty")
	}
	if l.Player.Template == "" {
		errs = append(errs, "player template must not be empty")
	}
	for i, s := range l.Enemies {
		if s.Template == "" {
			errs = append(errs, fmt.Sprintf("enemy %d: template must not be empty", i))
		}
		if s.LeashRadius < 0 {
			errs = append(errs, fmt.Sprintf("enemy %d: leash radius must be >= 0", i))
		}
	}
	if l.Next == l.ID && l.ID != "" {
		errs = append(errs, "level must not lead to itself")
	}
	if len(errs) > 0 {
		return fmt.Errorf("level %q: %s", l.ID, strings.Join(errs, "; "))
	}
	return nil
}
