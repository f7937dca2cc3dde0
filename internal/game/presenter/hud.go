package presenter

import (
	"github.com/cory-johannsen/verdict/internal/game/entity"
)

// HealthBar is a read-only view of an entity's health.
type HealthBar struct {
	Current  int
	Max      int
	Fraction float64
}

// HUD is a read-only snapshot of what the player-facing bars show for one entity.
type HUD struct {
	Name   string
	Health HealthBar
	// HasMeter is true only for players; Red and White are display values.
	HasMeter bool
	Red      int
	White    int
}

// Snapshot reads e's bars.
//
// Precondition: e must be non-nil.
// Postcondition: Red and White are within [0, meter.DisplayCap].
func Snapshot(e *entity.Entity) HUD {
	h := HUD{Name: e.Name}
	if e.Vital != nil {
		h.Health = HealthBar{Current: e.Vital.Current(), Max: e.Vital.Max(), Fraction: e.Vital.Fraction()}
	}
	if e.Meter != nil {
		h.HasMeter = true
		h.Red = e.Meter.RedDisplay()
		h.White = e.Meter.WhiteDisplay()
	}
	return h
}
