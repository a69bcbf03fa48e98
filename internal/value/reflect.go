package value

import (
	"context"
	"fmt"
	"reflect"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
)

// Handle is implemented by execution-engine node handles.
type Handle interface {
	NodeID() identity.Identity
}

var (
	valueType   = reflect.TypeFor[Value]()
	objectType  = reflect.TypeFor[Object]()
	handleType  = reflect.TypeFor[Handle]()
	contextType = reflect.TypeFor[context.Context]()
	vector2Type = reflect.TypeFor[Vec2]()
	vector3Type = reflect.TypeFor[Vec3]()
	vector4Type = reflect.TypeFor[Vec4]()
)

// TagOf maps a Go type to the tag a variable of that type is stored under.
// Types with no mapping yield Invalid.
func TagOf(rt reflect.Type) TypeTag {
	if rt == nil {
		return Invalid
	}
	switch rt {
	case valueType:
		return Generic
	case vector2Type:
		return Vector2
	case vector3Type:
		return Vector3
	case vector4Type:
		return Vector4
	}
	if rt.Implements(objectType) {
		return EngineObjectRef
	}
	if rt.Implements(handleType) || rt.Implements(contextType) {
		return NodeHandle
	}
	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.Bool:
		return Bool
	case reflect.String:
		return String
	case reflect.Interface:
		return Generic
	default:
		return Invalid
	}
}

// TagFor is TagOf for a type parameter.
func TagFor[T any]() TypeTag {
	return TagOf(reflect.TypeFor[T]())
}

// FromGo wraps a Go value in a Value, inferring the tag from its dynamic
// type. Unsupported payloads are boxed under Generic; nil yields a Generic
// value with no payload.
func FromGo(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{tag: Generic}, nil
	case Value:
		return t, nil
	case Vec2:
		return Vec2Value(t), nil
	case Vec3:
		return Vec3Value(t), nil
	case Vec4:
		return Vec4Value(t), nil
	case Object:
		return ObjectValue(t), nil
	case Handle:
		return HandleValue(t), nil
	case context.Context:
		return HandleValue(t), nil
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntValue(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > 1<<63-1 {
			return Value{}, conversionError(Generic, Int.String(), x)
		}
		return IntValue(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return FloatValue(rv.Float()), nil
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.String:
		return StringValue(rv.String()), nil
	default:
		return GenericValue(x), nil
	}
}

// As converts v to the Go representation T, applying Coerce when T's tag
// differs from v's tag.
func As[T any](v Value) (T, error) {
	var zero T
	rv, err := ToType(v, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	if rv.Kind() == reflect.Interface && rv.IsNil() {
		return zero, nil
	}
	out, ok := rv.Interface().(T)
	if !ok {
		return zero, conversionError(v.tag, reflect.TypeFor[T]().String(), v.Interface())
	}
	return out, nil
}

// ToType converts v to exactly rt, for example an int32 or float32 host
// method parameter, or a concrete engine object type.
func ToType(v Value, rt reflect.Type) (reflect.Value, error) {
	if rt == valueType {
		return reflect.ValueOf(v), nil
	}
	src := unbox(v)
	tag := TagOf(rt)
	switch tag {
	case Invalid:
		return reflect.Value{}, conversionError(src.tag, rt.String(), src.Interface())
	case Generic:
		natural := src.Interface()
		if natural == nil {
			return reflect.Zero(rt), nil
		}
		nv := reflect.ValueOf(natural)
		if !nv.Type().AssignableTo(rt) {
			return reflect.Value{}, conversionError(src.tag, rt.String(), natural)
		}
		return assign(rt, nv), nil
	case EngineObjectRef:
		if src.tag != EngineObjectRef {
			if src.tag == Generic && src.ref == nil {
				return reflect.Zero(rt), nil
			}
			return reflect.Value{}, conversionError(src.tag, rt.String(), src.Interface())
		}
		return boxedTo(src, src.Object(), rt)
	case NodeHandle:
		if src.tag != NodeHandle {
			if src.tag == Generic && src.ref == nil {
				return reflect.Zero(rt), nil
			}
			return reflect.Value{}, conversionError(src.tag, rt.String(), src.Interface())
		}
		return boxedTo(src, src.ref, rt)
	}

	c, err := Coerce(src, tag)
	if err != nil {
		if ce, ok := err.(*ConversionError); ok {
			ce.To = rt.String()
		}
		return reflect.Value{}, err
	}
	out := reflect.New(rt).Elem()
	switch tag {
	case Int:
		switch rt.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if c.i < 0 || out.OverflowUint(uint64(c.i)) {
				return reflect.Value{}, conversionError(src.tag, rt.String(), c.i)
			}
			out.SetUint(uint64(c.i))
		default:
			if out.OverflowInt(c.i) {
				return reflect.Value{}, conversionError(src.tag, rt.String(), c.i)
			}
			out.SetInt(c.i)
		}
	case Float:
		if out.OverflowFloat(c.f) {
			return reflect.Value{}, conversionError(src.tag, rt.String(), c.f)
		}
		out.SetFloat(c.f)
	case Bool:
		out.SetBool(c.b)
	case String:
		out.SetString(c.s)
	case Vector2, Vector3, Vector4:
		out.Set(reflect.ValueOf(c.Interface()))
	default:
		return reflect.Value{}, fmt.Errorf("value: unhandled tag %s for %s", tag, rt)
	}
	return out, nil
}

// boxedTo converts a boxed handle to rt. A null handle converts to rt's zero
// value; a non-null handle must be assignable, which makes object bindings
// subtype-covariant.
func boxedTo(src Value, payload any, rt reflect.Type) (reflect.Value, error) {
	if payload == nil {
		return reflect.Zero(rt), nil
	}
	if o, ok := payload.(Object); ok && IsNull(o) {
		return reflect.Zero(rt), nil
	}
	pv := reflect.ValueOf(payload)
	if !pv.Type().AssignableTo(rt) {
		return reflect.Value{}, conversionError(src.tag, rt.String(), payload)
	}
	return assign(rt, pv), nil
}

func assign(rt reflect.Type, v reflect.Value) reflect.Value {
	out := reflect.New(rt).Elem()
	out.Set(v)
	return out
}
