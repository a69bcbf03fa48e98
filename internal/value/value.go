package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Vec2 is a two-component vector.
type Vec2 struct{ X, Y float64 }

// Vec3 is a three-component vector.
type Vec3 struct{ X, Y, Z float64 }

// Vec4 is a four-component vector.
type Vec4 struct{ X, Y, Z, W float64 }

// Value is the tagged union used for constants and inline variable storage:
// fixed slots for primitive and vector payloads plus one boxed slot for
// object, generic and node-handle payloads. The zero Value has tag Invalid.
type Value struct {
	tag TypeTag
	i   int64
	f   float64
	b   bool
	s   string
	v   [4]float64
	// ref boxes EngineObjectRef, Generic and NodeHandle payloads.
	ref any
}

// Constructors for each concrete tag.
func IntValue(i int64) Value { return Value{tag: Int, i: i} }
func FloatValue(f float64) Value { return Value{tag: Float, f: f} }
func BoolValue(b bool) Value { return Value{tag: Bool, b: b} }
func StringValue(s string) Value { return Value{tag: String, s: s} }
func Vec2Value(v Vec2) Value { return Value{tag: Vector2, v: [4]float64{v.X, v.Y}} }
func Vec3Value(v Vec3) Value { return Value{tag: Vector3, v: [4]float64{v.X, v.Y, v.Z}} }
func Vec4Value(v Vec4) Value { return Value{tag: Vector4, v: [4]float64{v.X, v.Y, v.Z, v.W}} }
func ObjectValue(o Object) Value { return Value{tag: EngineObjectRef, ref: o} }
func HandleValue(h any) Value { return Value{tag: NodeHandle, ref: h} }

func vectorValue(t TypeTag, c [4]float64) Value {
	n := t.dimension()
	for i := n; i < 4; i++ {
		c[i] = 0
	}
	return Value{tag: t, v: c}
}

// GenericValue boxes x under the Generic tag. Reads re-enter the coercion
// table with the tag inferred from x.
func GenericValue(x any) Value {
	return Value{tag: Generic, ref: x}
}

// Zero returns the null value of tag t: 0, false, "", a zero vector or a
// null handle.
func Zero(t TypeTag) Value {
	return Value{tag: t}
}

// AssetValue is a null EngineObjectRef that remembers the stable asset
// identity its handle is resolved from.
func AssetValue(assetID string) Value {
	return Value{tag: EngineObjectRef, s: assetID}
}

// WithObject returns an EngineObjectRef value holding o while keeping v's
// asset identity.
func (v Value) WithObject(o Object) Value {
	return Value{tag: EngineObjectRef, s: v.AssetID(), ref: o}
}

// AssetID returns the asset identity of an EngineObjectRef value.
func (v Value) AssetID() string {
	if v.tag != EngineObjectRef {
		return ""
	}
	return v.s
}

// Tag returns the value's type tag.
func (v Value) Tag() TypeTag {
	return v.tag
}

// IsValid reports whether v carries a tag other than Invalid.
func (v Value) IsValid() bool {
	return v.tag != Invalid
}

// Object returns the boxed handle of an EngineObjectRef value, or nil.
func (v Value) Object() Object {
	if v.tag != EngineObjectRef {
		return nil
	}
	o, _ := v.ref.(Object)
	return o
}

// Interface returns the natural Go representation of the payload: int64,
// float64, bool, string, Vec2/3/4, Object, or the boxed generic/handle.
func (v Value) Interface() any {
	switch v.tag {
	case Int:
		return v.i
	case Float:
		return v.f
	case Bool:
		return v.b
	case String:
		return v.s
	case Vector2:
		return Vec2{v.v[0], v.v[1]}
	case Vector3:
		return Vec3{v.v[0], v.v[1], v.v[2]}
	case Vector4:
		return Vec4{v.v[0], v.v[1], v.v[2], v.v[3]}
	case EngineObjectRef:
		return v.Object()
	case Generic, NodeHandle:
		return v.ref
	default:
		return nil
	}
}

// String stringifies the payload. This is the conversion used for String
// targets, which accept every source tag.
func (v Value) String() string {
	switch v.tag {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.b)
	case String:
		return v.s
	case Vector2, Vector3, Vector4:
		parts := make([]string, v.tag.dimension())
		for i := range parts {
			parts[i] = strconv.FormatFloat(v.v[i], 'g', -1, 64)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case EngineObjectRef:
		return objectName(v.Object())
	case Generic:
		if v.ref == nil {
			return ""
		}
		if inner, err := FromGo(v.ref); err == nil && inner.tag != Generic {
			return inner.String()
		}
		return fmt.Sprint(v.ref)
	case NodeHandle:
		if v.ref == nil {
			return "null"
		}
		return fmt.Sprint(v.ref)
	default:
		return ""
	}
}

// GoString renders the value with its tag, for test failures and logs.
func (v Value) GoString() string {
	return v.tag.String() + "(" + v.String() + ")"
}

// Equal compares tag and payload. Boxed payloads compare with ==, so
// handles compare by identity.
func (v Value) Equal(o Value) bool {
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case Int:
		return v.i == o.i
	case Float:
		return v.f == o.f
	case Bool:
		return v.b == o.b
	case String:
		return v.s == o.s
	case Vector2, Vector3, Vector4:
		return v.v == o.v
	case EngineObjectRef, Generic, NodeHandle:
		return safeEqual(v.ref, o.ref)
	default:
		return true
	}
}

func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
