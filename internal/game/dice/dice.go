// Package dice provides the randomness abstraction used by the simulation.
package dice

// Source is the randomness provider for gameplay decisions such as roam headings.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Angle draws a uniform heading in degrees in [0, 360) with millidegree resolution.
//
// Precondition: src must be non-nil.
// Postcondition: 0 <= result < 360.
func Angle(src Source) float64 {
	return float64(src.Intn(360_000)) / 1000
}
