package rtti

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownEnumerant is returned when decoding an enum or bitflag name
// that the EnumDescriptor does not recognize.
var ErrUnknownEnumerant = errors.New("rtti: unknown enumerant")

// EnumDescriptor maps between an enum (or bitflag) type's integer values
// and their fully-qualified names ("TypeName::ValueName"), the wire form
// enums and bitflags serialize as.
type EnumDescriptor struct {
	TypeName string
	ByName   map[string]int64
	ByValue  map[int64]string
}

// NewEnumDescriptor builds a descriptor from name->value pairs.
func NewEnumDescriptor(typeName string, values map[string]int64) *EnumDescriptor {
	e := &EnumDescriptor{TypeName: typeName, ByName: map[string]int64{}, ByValue: map[int64]string{}}
	for name, val := range values {
		e.ByName[name] = val
		e.ByValue[val] = name
	}
	return e
}

func (e *EnumDescriptor) qualify(name string) string {
	return e.TypeName + "::" + name
}

// EncodeEnum renders value as its fully-qualified name.
func (e *EnumDescriptor) EncodeEnum(value int64) (string, error) {
	name, ok := e.ByValue[value]
	if !ok {
		return "", errors.Wrapf(ErrUnknownEnumerant, "%s value %d", e.TypeName, value)
	}
	return e.qualify(name), nil
}

// DecodeEnum parses a fully-qualified enum name back to its value.
// Unknown names fail outright: an enum holds exactly one value, so there
// is no partial result to salvage.
func (e *EnumDescriptor) DecodeEnum(qualified string) (int64, error) {
	name := e.unqualify(qualified)
	val, ok := e.ByName[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownEnumerant, "%s", qualified)
	}
	return val, nil
}

func (e *EnumDescriptor) unqualify(qualified string) string {
	if idx := strings.Index(qualified, "::"); idx >= 0 {
		return qualified[idx+2:]
	}
	return qualified
}

// EncodeBitflags renders a bitflag value as its set members joined by "|".
// A value of zero with no registered zero-valued member renders as the
// empty string.
func (e *EnumDescriptor) EncodeBitflags(value int64) string {
	var parts []string
	for val, name := range e.ByValue {
		if val != 0 && value&val == val {
			parts = append(parts, e.qualify(name))
		}
	}
	return strings.Join(parts, "|")
}

// DecodeBitflags parses a "|"-joined bitflag string. Recognized bits are
// OR'd into the result; any unrecognized member name is reported in
// unknown, and the recognized bits are still returned rather than
// discarded (a partial bitfield is preserved with a warning, not rejected
// outright).
func (e *EnumDescriptor) DecodeBitflags(joined string) (value int64, unknown []string) {
	if joined == "" {
		return 0, nil
	}
	for _, part := range strings.Split(joined, "|") {
		name := e.unqualify(strings.TrimSpace(part))
		if val, ok := e.ByName[name]; ok {
			value |= val
		} else {
			unknown = append(unknown, fmt.Sprintf("%s::%s", e.TypeName, name))
		}
	}
	return value, unknown
}
