package value

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	componentType  = NewObjectType("Component", nil)
	transformType  = NewObjectType("Transform", componentType)
	rigidbodyType  = NewObjectType("Rigidbody", componentType)
	gameObjectType = NewObjectType("GameObject", nil)
)

type transform struct{ name string }

func (t *transform) ObjectType() *ObjectType { return transformType }
func (t *transform) String() string { return t.name }

type gameObject struct {
	name       string
	components []Object
	destroyed  bool
}

func (g *gameObject) ObjectType() *ObjectType { return gameObjectType }
func (g *gameObject) Alive() bool { return !g.destroyed }

func (g *gameObject) Component(t *ObjectType) (Object, bool) {
	for _, c := range g.components {
		if c.ObjectType().Is(t) {
			return c, true
		}
	}
	return nil, false
}

func TestTypeTag_String(t *testing.T) {
	t.Parallel()

	for _, tag := range Tags() {
		parsed, err := ParseTypeTag(tag.String())
		require.NoError(t, err)
		require.Equal(t, tag, parsed)
		require.True(t, tag.Valid())
	}
	require.Equal(t, "Invalid", Invalid.String())
	require.False(t, Invalid.Valid())
	require.Equal(t, "TypeTag(200)", TypeTag(200).String())

	_, err := ParseTypeTag("quaternion")
	require.Error(t, err)

	tag, err := ParseTypeTag("object")
	require.NoError(t, err)
	require.Equal(t, EngineObjectRef, tag)
}

func TestCoerce_Table(t *testing.T) {
	t.Parallel()

	tr := &transform{name: "hand"}
	tests := []struct {
		name string
		in   Value
		to   TypeTag
		want Value
	}{
		{"int to float", IntValue(5), Float, FloatValue(5)},
		{"float to int truncates", FloatValue(2.9), Int, IntValue(2)},
		{"negative float to int truncates toward zero", FloatValue(-2.9), Int, IntValue(-2)},
		{"bool to int", BoolValue(true), Int, IntValue(1)},
		{"bool to float", BoolValue(false), Float, FloatValue(0)},
		{"int to bool", IntValue(-3), Bool, BoolValue(true)},
		{"zero float to bool", FloatValue(0), Bool, BoolValue(false)},
		{"object to bool", ObjectValue(tr), Bool, BoolValue(true)},
		{"null object to int", ObjectValue(nil), Int, IntValue(0)},
		{"destroyed object to bool", ObjectValue(&gameObject{destroyed: true}), Bool, BoolValue(false)},
		{"object to float", ObjectValue(tr), Float, FloatValue(1)},
		{"int to string", IntValue(42), String, StringValue("42")},
		{"float to string", FloatValue(3.5), String, StringValue("3.5")},
		{"bool to string", BoolValue(true), String, StringValue("true")},
		{"vector to string", Vec3Value(Vec3{1, 2, 3}), String, StringValue("(1, 2, 3)")},
		{"object to string", ObjectValue(tr), String, StringValue("hand")},
		{"null object to string", ObjectValue(nil), String, StringValue("null")},
		{"vector3 to vector2", Vec3Value(Vec3{1, 2, 3}), Vector2, Vec2Value(Vec2{1, 2})},
		{"vector4 to vector2", Vec4Value(Vec4{1, 2, 3, 4}), Vector2, Vec2Value(Vec2{1, 2})},
		{"vector2 to vector3", Vec2Value(Vec2{1, 2}), Vector3, Vec3Value(Vec3{1, 2, 0})},
		{"vector2 to vector4", Vec2Value(Vec2{1, 2}), Vector4, Vec4Value(Vec4{1, 2, 0, 0})},
		{"vector4 to vector3", Vec4Value(Vec4{1, 2, 3, 4}), Vector3, Vec3Value(Vec3{1, 2, 3})},
		{"bool to vector3", BoolValue(true), Vector3, Vec3Value(Vec3{1, 1, 1})},
		{"false to vector2", BoolValue(false), Vector2, Vec2Value(Vec2{})},
		{"object to vector2", ObjectValue(tr), Vector2, Vec2Value(Vec2{1, 1})},
		{"generic int to float", GenericValue(3), Float, FloatValue(3)},
		{"empty generic to int", Zero(Generic), Int, Zero(Int)},
		{"same tag", StringValue("x"), String, StringValue("x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.in, tt.to)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "want %#v, got %#v", tt.want, got)
		})
	}
}

func TestCoerce_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Value
		to   TypeTag
	}{
		{"string is not a numeric source", StringValue("5"), Int},
		{"string is not a bool source", StringValue("true"), Bool},
		{"string is not a vector source", StringValue("1,2"), Vector2},
		{"int is not a vector source", IntValue(1), Vector2},
		{"float is not a vector source", FloatValue(1), Vector3},
		{"numbers never become objects", IntValue(1), EngineObjectRef},
		{"bool never becomes an object", BoolValue(true), EngineObjectRef},
		{"vectors are not numeric", Vec2Value(Vec2{1, 1}), Float},
		{"handles only from handles", IntValue(1), NodeHandle},
		{"unsupported generic payload", GenericValue(struct{ A int }{1}), Int},
		{"invalid target", IntValue(1), Invalid},
		{"nan to int", FloatValue(math.NaN()), Int},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(tt.in, tt.to)
			require.ErrorIs(t, err, ErrInvalidConversion)
			var ce *ConversionError
			require.True(t, errors.As(err, &ce))
			require.Equal(t, tt.to.String(), ce.To)
		})
	}
}

func TestCoerce_GenericTargetIsIdentity(t *testing.T) {
	t.Parallel()

	for _, v := range []Value{IntValue(1), StringValue("a"), Vec2Value(Vec2{1, 2}), ObjectValue(nil)} {
		got, err := Coerce(v, Generic)
		require.NoError(t, err)
		require.True(t, v.Equal(got))
	}
}

func TestCoerce_Cycle(t *testing.T) {
	t.Parallel()

	v := BoolValue(true)
	for _, tag := range []TypeTag{Int, Float, Bool} {
		var err error
		v, err = Coerce(v, tag)
		require.NoError(t, err)
	}
	require.True(t, BoolValue(true).Equal(v))

	// Float -> Int -> Float loses only the fraction.
	f, err := Coerce(FloatValue(7.75), Int)
	require.NoError(t, err)
	f, err = Coerce(f, Float)
	require.NoError(t, err)
	require.Equal(t, float64(7), f.Interface())

	// Vector3 -> Vector2 -> Vector3 zero-pads the dropped component.
	vec, err := Coerce(Vec3Value(Vec3{1, 2, 3}), Vector2)
	require.NoError(t, err)
	vec, err = Coerce(vec, Vector3)
	require.NoError(t, err)
	require.Equal(t, Vec3{1, 2, 0}, vec.Interface())
}

func TestAs_Representations(t *testing.T) {
	t.Parallel()

	i, err := As[int](IntValue(5))
	require.NoError(t, err)
	require.Equal(t, 5, i)

	i32, err := As[int32](FloatValue(-9.5))
	require.NoError(t, err)
	require.Equal(t, int32(-9), i32)

	f32, err := As[float32](FloatValue(3.5))
	require.NoError(t, err)
	require.Equal(t, float32(3.5), f32)

	s, err := As[string](Vec2Value(Vec2{1, 2}))
	require.NoError(t, err)
	require.Equal(t, "(1, 2)", s)

	v2, err := As[Vec2](Vec3Value(Vec3{1, 2, 3}))
	require.NoError(t, err)
	require.Equal(t, Vec2{1, 2}, v2)

	v3, err := As[Vec3](Vec2Value(Vec2{1, 2}))
	require.NoError(t, err)
	require.Equal(t, Vec3{1, 2, 0}, v3)

	a, err := As[any](IntValue(5))
	require.NoError(t, err)
	require.Equal(t, int64(5), a)

	raw, err := As[Value](StringValue("x"))
	require.NoError(t, err)
	require.Equal(t, StringValue("x"), raw)

	b, err := As[bool](IntValue(0))
	require.NoError(t, err)
	require.False(t, b)

	type speed float32
	sp, err := As[speed](IntValue(4))
	require.NoError(t, err)
	require.Equal(t, speed(4), sp)
}

func TestAs_Overflow(t *testing.T) {
	t.Parallel()

	_, err := As[int8](IntValue(300))
	require.ErrorIs(t, err, ErrInvalidConversion)

	_, err = As[uint](IntValue(-1))
	require.ErrorIs(t, err, ErrInvalidConversion)

	_, err = As[float32](FloatValue(1e300))
	require.ErrorIs(t, err, ErrInvalidConversion)

	f, err := As[float32](FloatValue(-2.5))
	require.NoError(t, err)
	require.Equal(t, float32(-2.5), f)

	u, err := As[uint16](IntValue(65535))
	require.NoError(t, err)
	require.Equal(t, uint16(65535), u)

	_, err = As[int](StringValue("12"))
	require.ErrorIs(t, err, ErrInvalidConversion)

	_, err = As[[]int](IntValue(1))
	require.ErrorIs(t, err, ErrInvalidConversion)
}

func TestAs_Objects(t *testing.T) {
	t.Parallel()

	tr := &transform{name: "t"}

	o, err := As[Object](ObjectValue(tr))
	require.NoError(t, err)
	require.Same(t, tr, o)

	got, err := As[*transform](ObjectValue(tr))
	require.NoError(t, err)
	require.Same(t, tr, got)

	_, err = As[*transform](ObjectValue(&gameObject{}))
	require.ErrorIs(t, err, ErrInvalidConversion)

	none, err := As[Object](ObjectValue(nil))
	require.NoError(t, err)
	require.Nil(t, none)

	_, err = As[Object](IntValue(1))
	require.ErrorIs(t, err, ErrInvalidConversion)

	present, err := As[int](ObjectValue(tr))
	require.NoError(t, err)
	require.Equal(t, 1, present)
}

func TestCheckObjectType(t *testing.T) {
	t.Parallel()

	tr := ObjectValue(&transform{})
	require.NoError(t, CheckObjectType(tr, "Transform"))
	require.NoError(t, CheckObjectType(tr, "Component"), "derived handle satisfies base type")
	require.NoError(t, CheckObjectType(tr, "Object"))
	require.NoError(t, CheckObjectType(tr, ""))
	require.ErrorIs(t, CheckObjectType(tr, "Rigidbody"), ErrInvalidConversion)
	require.NoError(t, CheckObjectType(ObjectValue(nil), "Rigidbody"), "null satisfies every subtype")
}

func TestComponent(t *testing.T) {
	t.Parallel()

	tr := &transform{name: "t"}
	g := &gameObject{name: "player", components: []Object{tr}}

	c, err := Component(g, transformType)
	require.NoError(t, err)
	require.Same(t, tr, c)

	c, err = Component(g, componentType)
	require.NoError(t, err)
	require.Same(t, tr, c)

	_, err = Component(g, rigidbodyType)
	require.ErrorIs(t, err, ErrMissingComponent)

	_, err = Component(nil, transformType)
	require.ErrorIs(t, err, ErrMissingComponent)

	_, err = Component(tr, rigidbodyType)
	require.ErrorIs(t, err, ErrMissingComponent)

	self, err := Component(tr, componentType)
	require.NoError(t, err)
	require.Same(t, tr, self)

	g.destroyed = true
	_, err = Component(g, transformType)
	require.ErrorIs(t, err, ErrMissingComponent)
}

func TestIsNull_TypedNil(t *testing.T) {
	t.Parallel()

	var tr *transform
	require.True(t, IsNull(tr))
	require.True(t, IsNull(nil))
	require.False(t, IsNull(&transform{}))
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag     TypeTag
		literal string
		want    Value
	}{
		{Int, "5", IntValue(5)},
		{Int, " -12 ", IntValue(-12)},
		{Int, "", IntValue(0)},
		{Float, "3.5", FloatValue(3.5)},
		{Float, "1e3", FloatValue(1000)},
		{Bool, "true", BoolValue(true)},
		{Bool, "False", BoolValue(false)},
		{Bool, "", BoolValue(false)},
		{String, " padded ", StringValue(" padded ")},
		{Vector2, "1,2", Vec2Value(Vec2{1, 2})},
		{Vector3, "(1, 2, 3)", Vec3Value(Vec3{1, 2, 3})},
		{Vector4, "1 2 3 4", Vec4Value(Vec4{1, 2, 3, 4})},
		{Vector3, "", Zero(Vector3)},
		{EngineObjectRef, "asset-7", AssetValue("asset-7")},
		{Generic, "", Zero(Generic)},
		{NodeHandle, "", Zero(NodeHandle)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.tag, tt.literal)
		require.NoError(t, err, "%s %q", tt.tag, tt.literal)
		require.True(t, tt.want.Equal(got), "%s %q: want %#v, got %#v", tt.tag, tt.literal, tt.want, got)
	}
	require.Equal(t, "asset-7", AssetValue("asset-7").AssetID())
}

func TestParse_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag     TypeTag
		literal string
	}{
		{Int, "abc"},
		{Int, "1.5"},
		{Float, "fast"},
		{Bool, "yes"},
		{Vector3, "1,2"},
		{Vector2, "a,b"},
		{NodeHandle, "root"},
		{Invalid, ""},
	}
	for _, tt := range tests {
		_, err := Parse(tt.tag, tt.literal)
		require.ErrorIs(t, err, ErrParseFailure, "%s %q", tt.tag, tt.literal)

		v, ok := TryParse(tt.tag, tt.literal)
		require.False(t, ok)
		require.True(t, Zero(tt.tag).Equal(v))
	}

	v, ok := TryParse(Int, "9")
	require.True(t, ok)
	require.Equal(t, int64(9), v.Interface())
}

func TestFormat_ParsesBack(t *testing.T) {
	t.Parallel()

	for _, v := range []Value{
		IntValue(-4),
		FloatValue(0.25),
		BoolValue(true),
		StringValue("hello"),
		Vec2Value(Vec2{1.5, -2}),
		Vec3Value(Vec3{1, 2, 3}),
		Vec4Value(Vec4{0, 0, 0, 1}),
		AssetValue("asset-1"),
	} {
		got, err := Parse(v.Tag(), Format(v))
		require.NoError(t, err)
		require.True(t, v.Equal(got), "%#v", v)
	}
}

func TestTagOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  reflect.Type
		want TypeTag
	}{
		{reflect.TypeFor[int](), Int},
		{reflect.TypeFor[int32](), Int},
		{reflect.TypeFor[uint8](), Int},
		{reflect.TypeFor[float32](), Float},
		{reflect.TypeFor[bool](), Bool},
		{reflect.TypeFor[string](), String},
		{reflect.TypeFor[Vec2](), Vector2},
		{reflect.TypeFor[Vec3](), Vector3},
		{reflect.TypeFor[Vec4](), Vector4},
		{reflect.TypeFor[*transform](), EngineObjectRef},
		{reflect.TypeFor[Object](), EngineObjectRef},
		{reflect.TypeFor[context.Context](), NodeHandle},
		{reflect.TypeFor[any](), Generic},
		{reflect.TypeFor[Value](), Generic},
		{reflect.TypeFor[struct{}](), Invalid},
		{reflect.TypeFor[[]int](), Invalid},
		{nil, Invalid},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, TagOf(tt.typ), "%v", tt.typ)
	}
	require.Equal(t, Float, TagFor[float64]())
}

func TestFromGo(t *testing.T) {
	t.Parallel()

	type hp int16
	tests := []struct {
		in   any
		want Value
	}{
		{hp(7), IntValue(7)},
		{uint32(3), IntValue(3)},
		{float32(0.5), FloatValue(0.5)},
		{true, BoolValue(true)},
		{"s", StringValue("s")},
		{Vec2{1, 2}, Vec2Value(Vec2{1, 2})},
		{Vec3{1, 2, 3}, Vec3Value(Vec3{1, 2, 3})},
		{Vec4{1, 2, 3, 4}, Vec4Value(Vec4{1, 2, 3, 4})},
		{IntValue(3), IntValue(3)},
	}
	for _, tt := range tests {
		got, err := FromGo(tt.in)
		require.NoError(t, err)
		require.True(t, tt.want.Equal(got), "%v", tt.in)
	}

	nilv, err := FromGo(nil)
	require.NoError(t, err)
	require.Equal(t, Generic, nilv.Tag())

	_, err = FromGo(uint64(math.MaxUint64))
	require.ErrorIs(t, err, ErrInvalidConversion)

	ctx, err := FromGo(context.Background())
	require.NoError(t, err)
	require.Equal(t, NodeHandle, ctx.Tag())
}
