package geom

import "math"

// Forward returns the unit horizontal facing vector for yaw (radians).
func Forward(yaw float64) Vec3 {
	return Vec3{X: math.Sin(yaw), Z: math.Cos(yaw)}
}

// Right returns the unit horizontal vector to the right of yaw's facing.
func Right(yaw float64) Vec3 {
	return Vec3{X: math.Cos(yaw), Z: -math.Sin(yaw)}
}

// YawOf returns the yaw that faces along dir. The vertical component is ignored.
//
// Precondition: dir must have a non-zero horizontal component for a meaningful result.
func YawOf(dir Vec3) float64 {
	return math.Atan2(dir.X, dir.Z)
}

// WrapAngle maps a into (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// DampYaw turns current toward target along the shortest arc by the fraction
// min(1, dt*rate) of the remaining angle, mirroring a per-frame slerp.
//
// Precondition: dt >= 0; rate >= 0.
// Postcondition: the returned yaw never overshoots target; with dt*rate >= 1 it
// equals target (wrapped).
func DampYaw(current, target, dt, rate float64) float64 {
	t := dt * rate
	if t <= 0 {
		return current
	}
	if t > 1 {
		t = 1
	}
	diff := WrapAngle(target - current)
	return WrapAngle(current + diff*t)
}
