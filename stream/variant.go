package stream

import (
	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/hashedstring"
	"github.com/lixenwraith/enginecore/variant"
	"github.com/pkg/errors"
)

// ErrUnknownVariantType is returned when decoding a tag byte this build
// does not recognize; the caller typically treats it the same way the
// graph reader treats an unknown component type: skip by length.
var ErrUnknownVariantType = errors.New("stream: unknown variant type tag")

// WriteVariant encodes a tag byte followed by the tag's payload. It is
// exhaustive over variant.Type except the container-of-pointer forms
// (TypedPointer), which have no portable wire representation and are
// expected to be resolved to a concrete value before serialization.
func WriteVariant(w Writer, ctx *DedupWriteContext, v variant.Variant) error {
	if err := WriteU8(w, uint8(v.Type())); err != nil {
		return err
	}
	switch v.Type() {
	case variant.TypeBool:
		b := variant.MustGet[bool](v)
		var u uint8
		if b {
			u = 1
		}
		return WriteU8(w, u)
	case variant.TypeInt8:
		return WriteU8(w, uint8(variant.MustGet[int8](v)))
	case variant.TypeInt16:
		return WriteU16(w, uint16(variant.MustGet[int16](v)))
	case variant.TypeInt32:
		return WriteU32(w, uint32(variant.MustGet[int32](v)))
	case variant.TypeInt64:
		return WriteU64(w, uint64(variant.MustGet[int64](v)))
	case variant.TypeUInt8:
		return WriteU8(w, variant.MustGet[uint8](v))
	case variant.TypeUInt16:
		return WriteU16(w, variant.MustGet[uint16](v))
	case variant.TypeUInt32:
		return WriteU32(w, variant.MustGet[uint32](v))
	case variant.TypeUInt64:
		return WriteU64(w, variant.MustGet[uint64](v))
	case variant.TypeFloat:
		return WriteF32(w, variant.MustGet[float32](v))
	case variant.TypeDouble:
		return WriteF64(w, variant.MustGet[float64](v))
	case variant.TypeColor:
		c := variant.MustGet[corevalue.Color](v)
		return WriteVec4(w, corevalue.Vec4{X: c.R, Y: c.G, Z: c.B, W: c.A})
	case variant.TypeColorGamma:
		c := variant.MustGet[corevalue.ColorGamma](v)
		return w.WriteBytes([]byte{c.R, c.G, c.B, c.A})
	case variant.TypeVec2:
		return WriteVec2(w, variant.MustGet[corevalue.Vec2](v))
	case variant.TypeVec3:
		return WriteVec3(w, variant.MustGet[corevalue.Vec3](v))
	case variant.TypeVec4:
		return WriteVec4(w, variant.MustGet[corevalue.Vec4](v))
	case variant.TypeVec2I:
		p := variant.MustGet[corevalue.Vec2I](v)
		if err := WriteU32(w, uint32(p.X)); err != nil {
			return err
		}
		return WriteU32(w, uint32(p.Y))
	case variant.TypeVec3I:
		p := variant.MustGet[corevalue.Vec3I](v)
		for _, c := range []int32{p.X, p.Y, p.Z} {
			if err := WriteU32(w, uint32(c)); err != nil {
				return err
			}
		}
		return nil
	case variant.TypeVec4I:
		p := variant.MustGet[corevalue.Vec4I](v)
		for _, c := range []int32{p.X, p.Y, p.Z, p.W} {
			if err := WriteU32(w, uint32(c)); err != nil {
				return err
			}
		}
		return nil
	case variant.TypeQuat:
		return WriteQuat(w, variant.MustGet[corevalue.Quat](v))
	case variant.TypeMat3:
		return WriteMat3(w, variant.MustGet[corevalue.Mat3](v))
	case variant.TypeMat4:
		return WriteMat4(w, variant.MustGet[corevalue.Mat4](v))
	case variant.TypeTransform:
		return WriteTransform(w, variant.MustGet[corevalue.Transform](v))
	case variant.TypeString, variant.TypeStringView:
		return writeDedupString(w, ctx, variant.MustGet[string](v))
	case variant.TypeDataBuffer:
		return WriteDataBuffer(w, variant.MustGet[[]byte](v))
	case variant.TypeTime:
		return WriteTime(w, variant.MustGet[corevalue.Time](v))
	case variant.TypeUuid:
		return WriteUuid(w, variant.MustGet[corevalue.Uuid](v))
	case variant.TypeAngle:
		return WriteF32(w, variant.MustGet[corevalue.Angle](v).Radians())
	case variant.TypeHashedString:
		h := variant.MustGet[hashedstring.HashedString](v)
		return writeDedupString(w, ctx, h.String())
	case variant.TypeTempHashedString:
		h := variant.MustGet[hashedstring.TempHashedString](v)
		return WriteU64(w, h.Hash())
	case variant.TypeVariantArray:
		arr := variant.MustGet[variant.VariantArray](v)
		if err := WriteU32(w, uint32(len(arr))); err != nil {
			return err
		}
		for _, elem := range arr {
			if err := WriteVariant(w, ctx, elem); err != nil {
				return err
			}
		}
		return nil
	case variant.TypeVariantMap:
		m := variant.MustGet[variant.VariantMap](v)
		if err := WriteU32(w, uint32(len(m))); err != nil {
			return err
		}
		for k, val := range m {
			if err := writeDedupString(w, ctx, k); err != nil {
				return err
			}
			if err := WriteVariant(w, ctx, val); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Wrapf(ErrUnknownVariantType, "tag %s", v.Type())
}

// ReadVariant decodes a tag byte and its payload. An unrecognized tag
// returns ErrUnknownVariantType without consuming further bytes: callers
// serializing heterogeneous component blocks do not hit this path because
// the block length lets them skip unknown component types wholesale
// instead of per-property.
func ReadVariant(r Reader, ctx *DedupReadContext) (variant.Variant, error) {
	tagByte, err := ReadU8(r)
	if err != nil {
		return variant.Nil, err
	}
	tag := variant.Type(tagByte)
	switch tag {
	case variant.TypeBool:
		u, err := ReadU8(r)
		return variant.FromBool(u != 0), err
	case variant.TypeInt8:
		u, err := ReadU8(r)
		return variant.FromInt8(int8(u)), err
	case variant.TypeInt16:
		u, err := ReadU16(r)
		return variant.FromInt16(int16(u)), err
	case variant.TypeInt32:
		u, err := ReadU32(r)
		return variant.FromInt32(int32(u)), err
	case variant.TypeInt64:
		u, err := ReadU64(r)
		return variant.FromInt64(int64(u)), err
	case variant.TypeUInt8:
		u, err := ReadU8(r)
		return variant.FromUInt8(u), err
	case variant.TypeUInt16:
		u, err := ReadU16(r)
		return variant.FromUInt16(u), err
	case variant.TypeUInt32:
		u, err := ReadU32(r)
		return variant.FromUInt32(u), err
	case variant.TypeUInt64:
		u, err := ReadU64(r)
		return variant.FromUInt64(u), err
	case variant.TypeFloat:
		f, err := ReadF32(r)
		return variant.FromFloat(f), err
	case variant.TypeDouble:
		f, err := ReadF64(r)
		return variant.FromDouble(f), err
	case variant.TypeColor:
		v, err := ReadVec4(r)
		return variant.FromColor(corevalue.Color{R: v.X, G: v.Y, B: v.Z, A: v.W}), err
	case variant.TypeColorGamma:
		var buf [4]byte
		if _, err := r.ReadBytes(buf[:]); err != nil {
			return variant.Nil, err
		}
		return variant.FromColorGamma(corevalue.ColorGamma{R: buf[0], G: buf[1], B: buf[2], A: buf[3]}), nil
	case variant.TypeVec2:
		v, err := ReadVec2(r)
		return variant.FromVec2(v), err
	case variant.TypeVec3:
		v, err := ReadVec3(r)
		return variant.FromVec3(v), err
	case variant.TypeVec4:
		v, err := ReadVec4(r)
		return variant.FromVec4(v), err
	case variant.TypeVec2I:
		x, err := ReadU32(r)
		if err != nil {
			return variant.Nil, err
		}
		y, err := ReadU32(r)
		if err != nil {
			return variant.Nil, err
		}
		return variant.FromVec2I(corevalue.Vec2I{X: int32(x), Y: int32(y)}), nil
	case variant.TypeVec3I:
		vals := [3]int32{}
		for i := range vals {
			u, err := ReadU32(r)
			if err != nil {
				return variant.Nil, err
			}
			vals[i] = int32(u)
		}
		return variant.FromVec3I(corevalue.Vec3I{X: vals[0], Y: vals[1], Z: vals[2]}), nil
	case variant.TypeVec4I:
		vals := [4]int32{}
		for i := range vals {
			u, err := ReadU32(r)
			if err != nil {
				return variant.Nil, err
			}
			vals[i] = int32(u)
		}
		return variant.FromVec4I(corevalue.Vec4I{X: vals[0], Y: vals[1], Z: vals[2], W: vals[3]}), nil
	case variant.TypeQuat:
		q, err := ReadQuat(r)
		return variant.FromQuat(q), err
	case variant.TypeMat3:
		m, err := ReadMat3(r)
		return variant.FromMat3(m), err
	case variant.TypeMat4:
		m, err := ReadMat4(r)
		return variant.FromMat4(m), err
	case variant.TypeTransform:
		t, err := ReadTransform(r)
		return variant.FromTransform(t), err
	case variant.TypeString:
		s, err := readDedupString(r, ctx)
		return variant.FromString(s), err
	case variant.TypeStringView:
		s, err := readDedupString(r, ctx)
		return variant.FromStringView(s), err
	case variant.TypeDataBuffer:
		b, err := ReadDataBuffer(r)
		return variant.FromDataBuffer(b), err
	case variant.TypeTime:
		t, err := ReadTime(r)
		return variant.FromTime(t), err
	case variant.TypeUuid:
		u, err := ReadUuid(r)
		return variant.FromUuid(u), err
	case variant.TypeAngle:
		f, err := ReadF32(r)
		return variant.FromAngle(corevalue.Radians(f)), err
	case variant.TypeHashedString:
		s, err := readDedupString(r, ctx)
		if err != nil {
			return variant.Nil, err
		}
		return variant.FromHashedString(hashedstring.Make(s)), nil
	case variant.TypeTempHashedString:
		h, err := ReadU64(r)
		return variant.FromTempHashedString(hashedstring.TempFromHash(h)), err
	case variant.TypeVariantArray:
		n, err := ReadU32(r)
		if err != nil {
			return variant.Nil, err
		}
		arr := make(variant.VariantArray, 0, n)
		for i := uint32(0); i < n; i++ {
			elem, err := ReadVariant(r, ctx)
			if err != nil {
				return variant.Nil, err
			}
			arr = append(arr, elem)
		}
		return variant.FromArray(arr), nil
	case variant.TypeVariantMap:
		n, err := ReadU32(r)
		if err != nil {
			return variant.Nil, err
		}
		m := make(variant.VariantMap, n)
		for i := uint32(0); i < n; i++ {
			key, err := readDedupString(r, ctx)
			if err != nil {
				return variant.Nil, err
			}
			val, err := ReadVariant(r, ctx)
			if err != nil {
				return variant.Nil, err
			}
			m[key] = val
		}
		return variant.FromMap(m), nil
	}
	return variant.Nil, errors.Wrapf(ErrUnknownVariantType, "tag byte %d", tagByte)
}
