package value

import (
	"math"
)

// Coerce converts v to tag to according to the conversion table:
//
//   - Int, Float, Bool and EngineObjectRef are mutually convertible. Bool maps
//     to 0/1, a handle maps to 1 when non-null, Float to Int truncates toward
//     zero. Numbers never convert to EngineObjectRef.
//   - String accepts every source by stringification. String is never a
//     source for numeric or vector targets.
//   - Vectors convert between each other by truncation or zero-padding. Bool
//     and EngineObjectRef convert to all-ones/all-zeros vectors.
//   - EngineObjectRef and NodeHandle targets accept only their own tag.
//   - Generic performs no coercion of its own: a Generic target returns v
//     unchanged and a Generic source re-enters the table with the tag of
//     its payload.
func Coerce(v Value, to TypeTag) (Value, error) {
	if to == Generic {
		return v, nil
	}
	src := unbox(v)
	if src.tag == Generic {
		if src.ref == nil && to.Valid() {
			return Zero(to), nil
		}
		if to == String {
			return StringValue(src.String()), nil
		}
		return Value{}, conversionError(Generic, to.String(), src.ref)
	}
	if src.tag == to {
		return src, nil
	}
	switch to {
	case Int:
		switch src.tag {
		case Float:
			if math.IsNaN(src.f) || math.IsInf(src.f, 0) || src.f >= math.MaxInt64 || src.f < math.MinInt64 {
				return Value{}, conversionError(src.tag, to.String(), src.f)
			}
			return IntValue(int64(math.Trunc(src.f))), nil
		case Bool:
			return IntValue(boolToInt(src.b)), nil
		case EngineObjectRef:
			return IntValue(boolToInt(!IsNull(src.Object()))), nil
		}
	case Float:
		switch src.tag {
		case Int:
			return FloatValue(float64(src.i)), nil
		case Bool:
			return FloatValue(float64(boolToInt(src.b))), nil
		case EngineObjectRef:
			return FloatValue(float64(boolToInt(!IsNull(src.Object())))), nil
		}
	case Bool:
		switch src.tag {
		case Int:
			return BoolValue(src.i != 0), nil
		case Float:
			return BoolValue(src.f != 0), nil
		case EngineObjectRef:
			return BoolValue(!IsNull(src.Object())), nil
		}
	case String:
		return StringValue(src.String()), nil
	case Vector2, Vector3, Vector4:
		switch src.tag {
		case Vector2, Vector3, Vector4:
			return vectorValue(to, src.v), nil
		case Bool:
			return fillVector(to, src.b), nil
		case EngineObjectRef:
			return fillVector(to, !IsNull(src.Object())), nil
		}
	case EngineObjectRef, NodeHandle, Invalid:
	}
	return Value{}, conversionError(src.tag, to.String(), src.Interface())
}

// CheckObjectType enforces a declared object subtype on an EngineObjectRef
// value. Null handles satisfy every subtype; a more-derived handle satisfies
// a base-typed declaration.
func CheckObjectType(v Value, typeName string) error {
	if v.tag != EngineObjectRef || typeName == "" {
		return nil
	}
	o := v.Object()
	if IsNull(o) {
		return nil
	}
	if !o.ObjectType().IsNamed(typeName) {
		return conversionError(EngineObjectRef, typeName, objectName(o))
	}
	return nil
}

// unbox replaces a Generic value with its payload's natural tag when that
// payload is a supported representation.
func unbox(v Value) Value {
	if v.tag != Generic || v.ref == nil {
		return v
	}
	inner, err := FromGo(v.ref)
	if err != nil {
		return v
	}
	return inner
}

func fillVector(t TypeTag, on bool) Value {
	var c [4]float64
	if on {
		for i := 0; i < t.dimension(); i++ {
			c[i] = 1
		}
	}
	return Value{tag: t, v: c}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
