package corevalue

// Transform is the local-space placement a GameObject carries: position,
// rotation, non-uniform scale, and a single uniform-scale multiplier kept
// separate so it round-trips through the wire format without folding into
// Scale.
type Transform struct {
	Position     Vec3
	Rotation     Quat
	Scale        Vec3
	UniformScale float32
}

// IdentityTransform returns the no-op placement.
func IdentityTransform() Transform {
	return Transform{Rotation: IdentityQuat(), Scale: Vec3{1, 1, 1}, UniformScale: 1}
}

// Matrix expands the transform to a dense 4x4 matrix: scale, then rotate,
// then translate.
func (t Transform) Matrix() Mat4 {
	rot := Mat3FromQuat(t.Rotation)
	s := t.UniformScale
	if s == 0 {
		s = 1
	}
	sx, sy, sz := t.Scale.X*s, t.Scale.Y*s, t.Scale.Z*s

	var m Mat4
	for r := 0; r < 3; r++ {
		m[r][0] = rot[r][0] * sx
		m[r][1] = rot[r][1] * sy
		m[r][2] = rot[r][2] * sz
	}
	m[0][3] = t.Position.X
	m[1][3] = t.Position.Y
	m[2][3] = t.Position.Z
	m[3][3] = 1
	return m
}

// Compose returns parent * local for the given parent and local transforms:
// global = parent_global . local, the law the world's transform recompute
// walks the hierarchy with.
func Compose(parentGlobal, local Transform) Transform {
	return Transform{
		Position:     parentGlobal.Position.Add(parentGlobal.Rotation.RotateVec3(local.Position.Scale(effectiveScale(parentGlobal)))),
		Rotation:     parentGlobal.Rotation.Mul(local.Rotation),
		Scale:        Vec3{parentGlobal.Scale.X * local.Scale.X, parentGlobal.Scale.Y * local.Scale.Y, parentGlobal.Scale.Z * local.Scale.Z},
		UniformScale: effectiveScale(parentGlobal) * effectiveScale(local),
	}
}

func effectiveScale(t Transform) float32 {
	if t.UniformScale == 0 {
		return 1
	}
	return t.UniformScale
}
