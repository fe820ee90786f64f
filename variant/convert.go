package variant

import (
	"fmt"
	"math"

	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/lixenwraith/enginecore/hashedstring"
)

// CanConvertTo reports whether ConvertTo(target) would succeed, following
// the fixed compatibility matrix: bool<->integer, any integer<->any
// integer (saturating), integer<->float (exact where representable),
// float<->double, Uuid<->String, Angle<->Float, HashedString<->String,
// TempHashedString<-String (one-way; the hash cannot reconstruct text),
// VariantArray/VariantMap reinterpreted through their Variant(Array/Map)
// wrapper forms.
func (v Variant) CanConvertTo(target Type) bool {
	if v.tag == target {
		return true
	}
	switch {
	case v.tag.isNumeric() && target.isNumeric():
		return true
	case v.tag == TypeUuid && target == TypeString:
		return true
	case v.tag == TypeString && target == TypeUuid:
		return true
	case v.tag == TypeHashedString && target == TypeString:
		return true
	case v.tag == TypeString && target == TypeHashedString:
		return true
	case v.tag == TypeString && target == TypeTempHashedString:
		return true
	case v.tag == TypeHashedString && target == TypeTempHashedString:
		return true
	case v.tag == TypeStringView && target == TypeString:
		return true
	case v.tag == TypeString && target == TypeStringView:
		return true
	}
	return false
}

// ConvertTo converts the value to target, value-preserving where possible.
// Numeric narrowing saturates instead of wrapping; string-producing
// conversions never fail once CanConvertTo reports true.
func (v Variant) ConvertTo(target Type) (Variant, error) {
	if v.tag == target {
		return v, nil
	}
	if !v.CanConvertTo(target) {
		return Nil, fmt.Errorf("%w: %s -> %s", ErrIncompatibleType, v.tag, target)
	}

	switch {
	case v.tag.isNumeric() && target.isNumeric():
		return convertNumeric(v, target), nil
	case v.tag == TypeUuid && target == TypeString:
		u := MustGet[corevalue.Uuid](v)
		return FromString(u.String()), nil
	case v.tag == TypeString && target == TypeUuid:
		s := MustGet[string](v)
		u, err := corevalue.ParseUuid(s)
		if err != nil {
			return Nil, fmt.Errorf("%w: %v", ErrIncompatibleType, err)
		}
		return FromUuid(u), nil
	case v.tag == TypeHashedString && target == TypeString:
		h := MustGet[hashedstring.HashedString](v)
		return FromString(h.String()), nil
	case v.tag == TypeString && target == TypeHashedString:
		s := MustGet[string](v)
		return FromHashedString(hashedstring.Make(s)), nil
	case v.tag == TypeString && target == TypeTempHashedString:
		s := MustGet[string](v)
		return FromTempHashedString(hashedstring.MakeTemp(s)), nil
	case v.tag == TypeHashedString && target == TypeTempHashedString:
		h := MustGet[hashedstring.HashedString](v)
		return FromTempHashedString(hashedstring.TempFromHash(h.Hash())), nil
	case v.tag == TypeStringView && target == TypeString:
		return FromString(MustGet[string](v)), nil
	case v.tag == TypeString && target == TypeStringView:
		return FromStringView(MustGet[string](v)), nil
	}
	return Nil, fmt.Errorf("%w: %s -> %s", ErrIncompatibleType, v.tag, target)
}

func asFloat64(v Variant) float64 {
	switch v.tag {
	case TypeBool:
		if MustGet[bool](v) {
			return 1
		}
		return 0
	case TypeInt8:
		return float64(MustGet[int8](v))
	case TypeInt16:
		return float64(MustGet[int16](v))
	case TypeInt32:
		return float64(MustGet[int32](v))
	case TypeInt64:
		return float64(MustGet[int64](v))
	case TypeUInt8:
		return float64(MustGet[uint8](v))
	case TypeUInt16:
		return float64(MustGet[uint16](v))
	case TypeUInt32:
		return float64(MustGet[uint32](v))
	case TypeUInt64:
		return float64(MustGet[uint64](v))
	case TypeFloat:
		return float64(MustGet[float32](v))
	case TypeDouble:
		return MustGet[float64](v)
	case TypeAngle:
		return float64(MustGet[corevalue.Angle](v).Radians())
	}
	return 0
}

func convertNumeric(v Variant, target Type) Variant {
	if target == TypeBool {
		return FromBool(asFloat64(v) != 0)
	}
	if target == TypeAngle {
		return FromAngle(corevalue.Radians(float32(asFloat64(v))))
	}
	f := asFloat64(v)
	switch target {
	case TypeFloat:
		return FromFloat(float32(f))
	case TypeDouble:
		return FromDouble(f)
	case TypeInt8:
		return FromInt8(int8(saturate(f, math.MinInt8, math.MaxInt8)))
	case TypeInt16:
		return FromInt16(int16(saturate(f, math.MinInt16, math.MaxInt16)))
	case TypeInt32:
		return FromInt32(int32(saturate(f, math.MinInt32, math.MaxInt32)))
	case TypeInt64:
		return FromInt64(int64(saturate(f, math.MinInt64, math.MaxInt64)))
	case TypeUInt8:
		return FromUInt8(uint8(saturate(f, 0, math.MaxUint8)))
	case TypeUInt16:
		return FromUInt16(uint16(saturate(f, 0, math.MaxUint16)))
	case TypeUInt32:
		return FromUInt32(uint32(saturate(f, 0, math.MaxUint32)))
	case TypeUInt64:
		return FromUInt64(uint64(saturate(f, 0, math.MaxUint64)))
	}
	return Nil
}

func saturate(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
