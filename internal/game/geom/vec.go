// Package geom provides the small amount of vector math the simulation needs.
//
// The world is Y-up. All movement and facing happen in the horizontal XZ plane;
// a yaw of 0 faces +Z.
package geom

import "math"

// Vec3 is a position or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v*s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Flat returns v projected onto the horizontal plane (Y zeroed).
func (v Vec3) Flat() Vec3 { return Vec3{X: v.X, Z: v.Z} }

// Normalize returns v scaled to unit length. A near-zero vector is returned
// unchanged as the zero vector.
//
// Postcondition: result.Len() is 1 or 0.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-9 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Distance returns the full 3D distance between a and b.
func Distance(a, b Vec3) float64 { return b.Sub(a).Len() }

// FlatDistance returns the distance between a and b ignoring height.
func FlatDistance(a, b Vec3) float64 { return b.Sub(a).Flat().Len() }

// DirectionFromAngle returns the unit horizontal vector for an angle measured
// in degrees from +X toward +Z.
func DirectionFromAngle(deg float64) Vec3 {
	rad := deg * math.Pi / 180
	return Vec3{X: math.Cos(rad), Z: math.Sin(rad)}
}
