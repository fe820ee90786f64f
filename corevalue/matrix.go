package corevalue

// Mat3 is a row-major 3x3 matrix, used for the linear part of a Transform
// when no translation is required (normal/direction transforms).
type Mat3 [3][3]float32

// Mat4 is a row-major 4x4 matrix, the dense form Transform.Matrix() expands to.
type Mat4 [4][4]float32

// IdentityMat4 returns the 4x4 identity matrix.
func IdentityMat4() Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		m[i][i] = 1
	}
	return m
}

// Mul multiplies two row-major matrices: a.Mul(b) applies b first.
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[r][k] * b[k][c]
			}
			out[r][c] = sum
		}
	}
	return out
}

// MulVec4 applies the matrix to a homogeneous column vector.
func (a Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		X: a[0][0]*v.X + a[0][1]*v.Y + a[0][2]*v.Z + a[0][3]*v.W,
		Y: a[1][0]*v.X + a[1][1]*v.Y + a[1][2]*v.Z + a[1][3]*v.W,
		Z: a[2][0]*v.X + a[2][1]*v.Y + a[2][2]*v.Z + a[2][3]*v.W,
		W: a[3][0]*v.X + a[3][1]*v.Y + a[3][2]*v.Z + a[3][3]*v.W,
	}
}

// Mat3FromQuat extracts the rotation matrix from a unit quaternion.
func Mat3FromQuat(q Quat) Mat3 {
	q = q.Normalized()
	x, y, z, w := q.X, q.Y, q.Z, q.W
	return Mat3{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
}
