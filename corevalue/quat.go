package corevalue

import "math"

// Quat is a float32 quaternion in (x, y, z, w) order.
type Quat struct{ X, Y, Z, W float32 }

// IdentityQuat is the zero-rotation quaternion.
func IdentityQuat() Quat { return Quat{0, 0, 0, 1} }

// Mul composes two rotations: a.Mul(b) applies b first, then a.
func (a Quat) Mul(b Quat) Quat {
	return Quat{
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
	}
}

// RotateVec3 applies the rotation to a vector.
func (q Quat) RotateVec3(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	s := q.W
	return u.Scale(2 * u.Dot(v)).
		Add(v.Scale(s*s - u.Dot(u))).
		Add(u.Cross(v).Scale(2 * s))
}

// Normalized returns the unit quaternion, or the identity if degenerate.
func (q Quat) Normalized() Quat {
	n := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if n == 0 {
		return IdentityQuat()
	}
	inv := 1 / n
	return Quat{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// Angle is a radian-valued scalar. It converts to and from plain float32
// as a direct radian reinterpretation, with Degrees/Radians constructors
// and accessors for the degree-space edges.
type Angle float32

func Radians(r float32) Angle { return Angle(r) }
func Degrees(d float32) Angle { return Angle(d * math.Pi / 180) }
func (a Angle) Radians() float32 { return float32(a) }
func (a Angle) Degrees() float32 { return float32(a) * 180 / math.Pi }
