package variant

import "github.com/lixenwraith/enginecore/corevalue"

// Visitor receives exactly one call per DispatchTo invocation, picked by
// the variant's tag. The serializer implements this interface once and
// reuses it for every encodable tag instead of a type switch per call site.
type Visitor interface {
	VisitBool(bool)
	VisitInt8(int8)
	VisitInt16(int16)
	VisitInt32(int32)
	VisitInt64(int64)
	VisitUInt8(uint8)
	VisitUInt16(uint16)
	VisitUInt32(uint32)
	VisitUInt64(uint64)
	VisitFloat(float32)
	VisitDouble(float64)
	VisitColor(corevalue.Color)
	VisitColorGamma(corevalue.ColorGamma)
	VisitVec2(corevalue.Vec2)
	VisitVec3(corevalue.Vec3)
	VisitVec4(corevalue.Vec4)
	VisitVec2I(corevalue.Vec2I)
	VisitVec3I(corevalue.Vec3I)
	VisitVec4I(corevalue.Vec4I)
	VisitQuat(corevalue.Quat)
	VisitMat3(corevalue.Mat3)
	VisitMat4(corevalue.Mat4)
	VisitTransform(corevalue.Transform)
	VisitString(string)
	VisitDataBuffer([]byte)
	VisitTime(corevalue.Time)
	VisitUuid(corevalue.Uuid)
	VisitAngle(corevalue.Angle)
	VisitArray(VariantArray)
	VisitMap(VariantMap)
	VisitInvalid()
}

// DispatchTo invokes the single Visitor method matching the variant's
// current tag. Tags with no visitor method (StringView, HashedString,
// TempHashedString, TypedPointer, TypedObject) are normalized to their
// nearest encodable form first; callers needing the raw form should read
// the variant directly instead of dispatching.
func (v Variant) DispatchTo(visitor Visitor) {
	switch v.tag {
	case TypeBool:
		visitor.VisitBool(MustGet[bool](v))
	case TypeInt8:
		visitor.VisitInt8(MustGet[int8](v))
	case TypeInt16:
		visitor.VisitInt16(MustGet[int16](v))
	case TypeInt32:
		visitor.VisitInt32(MustGet[int32](v))
	case TypeInt64:
		visitor.VisitInt64(MustGet[int64](v))
	case TypeUInt8:
		visitor.VisitUInt8(MustGet[uint8](v))
	case TypeUInt16:
		visitor.VisitUInt16(MustGet[uint16](v))
	case TypeUInt32:
		visitor.VisitUInt32(MustGet[uint32](v))
	case TypeUInt64:
		visitor.VisitUInt64(MustGet[uint64](v))
	case TypeFloat:
		visitor.VisitFloat(MustGet[float32](v))
	case TypeDouble:
		visitor.VisitDouble(MustGet[float64](v))
	case TypeColor:
		visitor.VisitColor(MustGet[corevalue.Color](v))
	case TypeColorGamma:
		visitor.VisitColorGamma(MustGet[corevalue.ColorGamma](v))
	case TypeVec2:
		visitor.VisitVec2(MustGet[corevalue.Vec2](v))
	case TypeVec3:
		visitor.VisitVec3(MustGet[corevalue.Vec3](v))
	case TypeVec4:
		visitor.VisitVec4(MustGet[corevalue.Vec4](v))
	case TypeVec2I:
		visitor.VisitVec2I(MustGet[corevalue.Vec2I](v))
	case TypeVec3I:
		visitor.VisitVec3I(MustGet[corevalue.Vec3I](v))
	case TypeVec4I:
		visitor.VisitVec4I(MustGet[corevalue.Vec4I](v))
	case TypeQuat:
		visitor.VisitQuat(MustGet[corevalue.Quat](v))
	case TypeMat3:
		visitor.VisitMat3(MustGet[corevalue.Mat3](v))
	case TypeMat4:
		visitor.VisitMat4(MustGet[corevalue.Mat4](v))
	case TypeTransform:
		visitor.VisitTransform(MustGet[corevalue.Transform](v))
	case TypeString, TypeStringView:
		visitor.VisitString(MustGet[string](v))
	case TypeDataBuffer:
		visitor.VisitDataBuffer(MustGet[[]byte](v))
	case TypeTime:
		visitor.VisitTime(MustGet[corevalue.Time](v))
	case TypeUuid:
		visitor.VisitUuid(MustGet[corevalue.Uuid](v))
	case TypeAngle:
		visitor.VisitAngle(MustGet[corevalue.Angle](v))
	case TypeHashedString:
		h, _ := v.ConvertTo(TypeString)
		visitor.VisitString(MustGet[string](h))
	case TypeVariantArray:
		visitor.VisitArray(MustGet[VariantArray](v))
	case TypeVariantMap:
		visitor.VisitMap(MustGet[VariantMap](v))
	default:
		visitor.VisitInvalid()
	}
}
