// Package variant implements the tagged-union value type that the
// reflection, serialization, and scripting-adjacent surfaces of the core
// all exchange data through. A Variant always knows its own type tag;
// reading it as the wrong type is a checked failure, never a silent
// reinterpretation.
package variant

import "fmt"

// Type is the closed set of tags a Variant can carry.
type Type uint8

const (
	Invalid Type = iota
	TypeBool
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUInt8
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeFloat
	TypeDouble
	TypeColor
	TypeColorGamma
	TypeVec2
	TypeVec3
	TypeVec4
	TypeVec2I
	TypeVec3I
	TypeVec4I
	TypeQuat
	TypeMat3
	TypeMat4
	TypeTransform
	TypeString
	TypeStringView
	TypeDataBuffer
	TypeTime
	TypeUuid
	TypeAngle
	TypeHashedString
	TypeTempHashedString
	TypeVariantArray
	TypeVariantMap
	TypeTypedPointer
	TypeTypedObject
	typeCount
)

var typeNames = [typeCount]string{
	Invalid:              "Invalid",
	TypeBool:             "Bool",
	TypeInt8:             "Int8",
	TypeInt16:            "Int16",
	TypeInt32:            "Int32",
	TypeInt64:            "Int64",
	TypeUInt8:            "UInt8",
	TypeUInt16:           "UInt16",
	TypeUInt32:           "UInt32",
	TypeUInt64:           "UInt64",
	TypeFloat:            "Float",
	TypeDouble:           "Double",
	TypeColor:            "Color",
	TypeColorGamma:       "ColorGamma",
	TypeVec2:             "Vec2",
	TypeVec3:             "Vec3",
	TypeVec4:             "Vec4",
	TypeVec2I:            "Vec2I",
	TypeVec3I:            "Vec3I",
	TypeVec4I:            "Vec4I",
	TypeQuat:             "Quat",
	TypeMat3:             "Mat3",
	TypeMat4:             "Mat4",
	TypeTransform:        "Transform",
	TypeString:           "String",
	TypeStringView:       "StringView",
	TypeDataBuffer:       "DataBuffer",
	TypeTime:             "Time",
	TypeUuid:             "Uuid",
	TypeAngle:            "Angle",
	TypeHashedString:     "HashedString",
	TypeTempHashedString: "TempHashedString",
	TypeVariantArray:     "VariantArray",
	TypeVariantMap:       "VariantMap",
	TypeTypedPointer:     "TypedPointer",
	TypeTypedObject:      "TypedObject",
}

func (t Type) String() string {
	if t >= typeCount {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeNames[t]
}

func (t Type) isInteger() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64:
		return true
	}
	return false
}

func (t Type) isSignedInteger() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	}
	return false
}

func (t Type) isFloat() bool {
	return t == TypeFloat || t == TypeDouble
}

func (t Type) isNumeric() bool {
	return t.isInteger() || t.isFloat() || t == TypeBool || t == TypeAngle
}
