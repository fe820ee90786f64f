package variant

import (
	"bytes"
	"fmt"

	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/hashedstring"
	"github.com/pkg/errors"
)

// ErrIncompatibleType is returned by ConvertTo when the conversion matrix
// has no entry for the (source, target) pair.
var ErrIncompatibleType = errors.New("variant: incompatible type")

// ErrWrongType is returned by Get when the stored tag does not match the
// requested Go type.
var ErrWrongType = errors.New("variant: wrong type")

// Variant is a tagged union: the tag and the payload are always kept
// consistent by construction, so reading as the wrong type is a checked
// failure rather than undefined behavior.
type Variant struct {
	tag     Type
	payload any
}

// Nil is the zero Variant, tag Invalid.
var Nil = Variant{}

func (v Variant) Type() Type   { return v.tag }
func (v Variant) IsValid() bool { return v.tag != Invalid }

// Equal reports whether two variants share a tag and an equal payload.
// Container payloads (VariantArray, VariantMap) are not comparable with
// Go's ==, so this compares them element-by-element instead of relying
// on struct equality.
func (v Variant) Equal(other Variant) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case TypeVariantArray:
		a, b := v.payload.(VariantArray), other.payload.(VariantArray)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case TypeVariantMap:
		a, b := v.payload.(VariantMap), other.payload.(VariantMap)
		if len(a) != len(b) {
			return false
		}
		for k, av := range a {
			bv, ok := b[k]
			if !ok || !av.Equal(bv) {
				return false
			}
		}
		return true
	case TypeDataBuffer:
		return bytes.Equal(v.payload.([]byte), other.payload.([]byte))
	default:
		return v.payload == other.payload
	}
}

func (v Variant) String() string {
	if v.tag == Invalid {
		return "<invalid>"
	}
	return fmt.Sprintf("%s(%v)", v.tag, v.payload)
}

// Is reports whether the variant currently holds a value of type T.
func Is[T any](v Variant) bool {
	_, ok := v.payload.(T)
	return ok
}

// Get returns the stored value as T, failing if the tag does not match.
func Get[T any](v Variant) (T, error) {
	val, ok := v.payload.(T)
	if !ok {
		var zero T
		return zero, errors.Wrapf(ErrWrongType, "requested %T, stored %s", zero, v.tag)
	}
	return val, nil
}

// MustGet panics on a type mismatch. Reserved for call sites that already
// checked Type() or Is[T] and want to avoid the error-handling boilerplate.
func MustGet[T any](v Variant) T {
	val, err := Get[T](v)
	if err != nil {
		panic(err)
	}
	return val
}

// Constructors. Each pins the tag so later reads never have to infer it
// from the payload's dynamic type.

func FromBool(b bool) Variant      { return Variant{TypeBool, b} }
func FromInt8(i int8) Variant      { return Variant{TypeInt8, i} }
func FromInt16(i int16) Variant    { return Variant{TypeInt16, i} }
func FromInt32(i int32) Variant    { return Variant{TypeInt32, i} }
func FromInt64(i int64) Variant    { return Variant{TypeInt64, i} }
func FromUInt8(u uint8) Variant    { return Variant{TypeUInt8, u} }
func FromUInt16(u uint16) Variant  { return Variant{TypeUInt16, u} }
func FromUInt32(u uint32) Variant  { return Variant{TypeUInt32, u} }
func FromUInt64(u uint64) Variant  { return Variant{TypeUInt64, u} }
func FromFloat(f float32) Variant  { return Variant{TypeFloat, f} }
func FromDouble(f float64) Variant { return Variant{TypeDouble, f} }

func FromColor(c corevalue.Color) Variant           { return Variant{TypeColor, c} }
func FromColorGamma(c corevalue.ColorGamma) Variant { return Variant{TypeColorGamma, c} }
func FromVec2(v corevalue.Vec2) Variant             { return Variant{TypeVec2, v} }
func FromVec3(v corevalue.Vec3) Variant             { return Variant{TypeVec3, v} }
func FromVec4(v corevalue.Vec4) Variant             { return Variant{TypeVec4, v} }
func FromVec2I(v corevalue.Vec2I) Variant           { return Variant{TypeVec2I, v} }
func FromVec3I(v corevalue.Vec3I) Variant           { return Variant{TypeVec3I, v} }
func FromVec4I(v corevalue.Vec4I) Variant           { return Variant{TypeVec4I, v} }
func FromQuat(q corevalue.Quat) Variant             { return Variant{TypeQuat, q} }
func FromMat3(m corevalue.Mat3) Variant             { return Variant{TypeMat3, m} }
func FromMat4(m corevalue.Mat4) Variant             { return Variant{TypeMat4, m} }
func FromTransform(t corevalue.Transform) Variant   { return Variant{TypeTransform, t} }
func FromAngle(a corevalue.Angle) Variant           { return Variant{TypeAngle, a} }
func FromTime(t corevalue.Time) Variant             { return Variant{TypeTime, t} }
func FromUuid(u corevalue.Uuid) Variant             { return Variant{TypeUuid, u} }

func FromString(s string) Variant     { return Variant{TypeString, s} }
func FromStringView(s string) Variant { return Variant{TypeStringView, s} }
func FromDataBuffer(b []byte) Variant { return Variant{TypeDataBuffer, b} }

func FromHashedString(h hashedstring.HashedString) Variant {
	return Variant{TypeHashedString, h}
}
func FromTempHashedString(h hashedstring.TempHashedString) Variant {
	return Variant{TypeTempHashedString, h}
}

func FromArray(a VariantArray) Variant { return Variant{TypeVariantArray, a} }
func FromMap(m VariantMap) Variant     { return Variant{TypeVariantMap, m} }

// TypedPointer carries a raw, non-owning handle to externally-managed
// data alongside the RTTI name of its pointee, used when reflection must
// cross into code the variant system does not itself own.
type TypedPointer struct {
	TypeName string
	Value    any
}

// TypedObject is an owned, reflectable value whose concrete type is
// identified by name rather than by a Go type switch case.
type TypedObject struct {
	TypeName string
	Value    any
}

func FromTypedPointer(p TypedPointer) Variant { return Variant{TypeTypedPointer, p} }
func FromTypedObject(o TypedObject) Variant   { return Variant{TypeTypedObject, o} }
