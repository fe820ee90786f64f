package stream

import "github.com/lixenwraith/enginecore/corevalue"

func ReadVec2(r Reader) (corevalue.Vec2, error) {
	x, err := ReadF32(r)
	if err != nil {
		return corevalue.Vec2{}, err
	}
	y, err := ReadF32(r)
	if err != nil {
		return corevalue.Vec2{}, err
	}
	return corevalue.Vec2{X: x, Y: y}, nil
}

func WriteVec2(w Writer, v corevalue.Vec2) error {
	if err := WriteF32(w, v.X); err != nil {
		return err
	}
	return WriteF32(w, v.Y)
}

func ReadVec3(r Reader) (corevalue.Vec3, error) {
	x, err := ReadF32(r)
	if err != nil {
		return corevalue.Vec3{}, err
	}
	y, err := ReadF32(r)
	if err != nil {
		return corevalue.Vec3{}, err
	}
	z, err := ReadF32(r)
	if err != nil {
		return corevalue.Vec3{}, err
	}
	return corevalue.Vec3{X: x, Y: y, Z: z}, nil
}

func WriteVec3(w Writer, v corevalue.Vec3) error {
	if err := WriteF32(w, v.X); err != nil {
		return err
	}
	if err := WriteF32(w, v.Y); err != nil {
		return err
	}
	return WriteF32(w, v.Z)
}

func ReadVec4(r Reader) (corevalue.Vec4, error) {
	x, err := ReadF32(r)
	if err != nil {
		return corevalue.Vec4{}, err
	}
	y, err := ReadF32(r)
	if err != nil {
		return corevalue.Vec4{}, err
	}
	z, err := ReadF32(r)
	if err != nil {
		return corevalue.Vec4{}, err
	}
	w4, err := ReadF32(r)
	if err != nil {
		return corevalue.Vec4{}, err
	}
	return corevalue.Vec4{X: x, Y: y, Z: z, W: w4}, nil
}

func WriteVec4(w Writer, v corevalue.Vec4) error {
	if err := WriteF32(w, v.X); err != nil {
		return err
	}
	if err := WriteF32(w, v.Y); err != nil {
		return err
	}
	if err := WriteF32(w, v.Z); err != nil {
		return err
	}
	return WriteF32(w, v.W)
}

func ReadQuat(r Reader) (corevalue.Quat, error) {
	v, err := ReadVec4(r)
	if err != nil {
		return corevalue.Quat{}, err
	}
	return corevalue.Quat{X: v.X, Y: v.Y, Z: v.Z, W: v.W}, nil
}

func WriteQuat(w Writer, q corevalue.Quat) error {
	return WriteVec4(w, corevalue.Vec4{X: q.X, Y: q.Y, Z: q.Z, W: q.W})
}

func ReadMat4(r Reader) (corevalue.Mat4, error) {
	var m corevalue.Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			f, err := ReadF32(r)
			if err != nil {
				return corevalue.Mat4{}, err
			}
			m[row][col] = f
		}
	}
	return m, nil
}

func WriteMat4(w Writer, m corevalue.Mat4) error {
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if err := WriteF32(w, m[row][col]); err != nil {
				return err
			}
		}
	}
	return nil
}

func ReadMat3(r Reader) (corevalue.Mat3, error) {
	var m corevalue.Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			f, err := ReadF32(r)
			if err != nil {
				return corevalue.Mat3{}, err
			}
			m[row][col] = f
		}
	}
	return m, nil
}

func WriteMat3(w Writer, m corevalue.Mat3) error {
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if err := WriteF32(w, m[row][col]); err != nil {
				return err
			}
		}
	}
	return nil
}

func ReadTransform(r Reader) (corevalue.Transform, error) {
	pos, err := ReadVec3(r)
	if err != nil {
		return corevalue.Transform{}, err
	}
	rot, err := ReadQuat(r)
	if err != nil {
		return corevalue.Transform{}, err
	}
	scale, err := ReadVec3(r)
	if err != nil {
		return corevalue.Transform{}, err
	}
	uscale, err := ReadF32(r)
	if err != nil {
		return corevalue.Transform{}, err
	}
	return corevalue.Transform{Position: pos, Rotation: rot, Scale: scale, UniformScale: uscale}, nil
}

func WriteTransform(w Writer, t corevalue.Transform) error {
	if err := WriteVec3(w, t.Position); err != nil {
		return err
	}
	if err := WriteQuat(w, t.Rotation); err != nil {
		return err
	}
	if err := WriteVec3(w, t.Scale); err != nil {
		return err
	}
	return WriteF32(w, t.UniformScale)
}
