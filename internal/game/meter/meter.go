// Package meter implements the player's two progression values, red and white.
//
// Red is hard-clamped to [0, DisplayCap]. White is floored at zero but has no
// upper bound: overflow above DisplayCap is retained and only the display view
// is capped.
package meter

const (
	// DisplayCap is the maximum value either bar can display, and red's hard cap.
	DisplayCap = 200

	// DefeatRedGain is added to red when the player executes a target.
	DefeatRedGain = 4
	// DefeatWhiteLoss is removed from white when the player executes a target.
	DefeatWhiteLoss = 5
	// SpareRedLoss is removed from red when the player spares a target.
	SpareRedLoss = 5
	// SpareWhiteGain is added to white when the player spares a target.
	SpareWhiteGain = 12
)

// Snapshot is a copy of the raw meter values.
type Snapshot struct {
	Red   int
	White int
}

// Meter holds the red and white values for one player instance.
//
// Invariant: 0 <= red <= DisplayCap; white >= 0.
type Meter struct {
	red         int
	white       int
	initialized bool
}

// New returns an uninitialized Meter with both values at zero.
func New() *Meter {
	return &Meter{}
}

// Initialize sets the starting values once per player instance. red is clamped
// into [0, DisplayCap] and white is floored at 0.
//
// Postcondition: returns true on the first call; every later call is a no-op
// returning false.
func (m *Meter) Initialize(redInit, whiteInit int) bool {
	if m.initialized {
		return false
	}
	m.initialized = true
	m.red = clamp(redInit, 0, DisplayCap)
	m.white = max(0, whiteInit)
	return true
}

// Initialized reports whether Initialize has been called.
func (m *Meter) Initialized() bool { return m.initialized }

// OnTargetDefeated applies the execute outcome: red += 4 (capped), white -= 5 (floored).
func (m *Meter) OnTargetDefeated() {
	m.red = min(DisplayCap, m.red+DefeatRedGain)
	m.white = max(0, m.white-DefeatWhiteLoss)
}

// OnTargetSpared applies the spare outcome: red -= 5 (floored), white += 12 (uncapped).
func (m *Meter) OnTargetSpared() {
	m.red = max(0, m.red-SpareRedLoss)
	m.white += SpareWhiteGain
}

// Red returns the raw red value.
func (m *Meter) Red() int { return m.red }

// White returns the raw white value, which may exceed DisplayCap.
func (m *Meter) White() int { return m.white }

// RedDisplay returns red clamped to [0, DisplayCap].
func (m *Meter) RedDisplay() int { return clamp(m.red, 0, DisplayCap) }

// WhiteDisplay returns white capped at DisplayCap.
func (m *Meter) WhiteDisplay() int { return min(DisplayCap, m.white) }

// Snapshot returns the raw values.
func (m *Meter) Snapshot() Snapshot {
	return Snapshot{Red: m.red, White: m.white}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
