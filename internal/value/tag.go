package value

import (
	"fmt"
	"strings"
)

// TypeTag is the closed set of value kinds the binding system supports.
type TypeTag uint8

const (
	// Invalid is the zero tag. No value of this tag can be stored.
	Invalid TypeTag = iota
	Int
	Float
	Bool
	String
	Vector2
	Vector3
	Vector4
	// EngineObjectRef is a handle to an engine-owned object.
	EngineObjectRef
	// Generic accepts any tag, resolved from the bound variable at runtime.
	Generic
	// NodeHandle is a handle into the execution engine.
	NodeHandle
)

var tagNames = [...]string{
	Invalid:         "Invalid",
	Int:             "Int",
	Float:           "Float",
	Bool:            "Bool",
	String:          "String",
	Vector2:         "Vector2",
	Vector3:         "Vector3",
	Vector4:         "Vector4",
	EngineObjectRef: "EngineObjectRef",
	Generic:         "Generic",
	NodeHandle:      "NodeHandle",
}

// Tags lists every valid tag, in declaration order.
func Tags() []TypeTag {
	return []TypeTag{Int, Float, Bool, String, Vector2, Vector3, Vector4, EngineObjectRef, Generic, NodeHandle}
}

func (t TypeTag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("TypeTag(%d)", uint8(t))
}

// Valid reports whether t is one of the declared tags other than Invalid.
func (t TypeTag) Valid() bool {
	return t > Invalid && t <= NodeHandle
}

// IsNumeric reports membership of the mutually convertible numeric family.
func (t TypeTag) IsNumeric() bool {
	switch t {
	case Int, Float, Bool, EngineObjectRef:
		return true
	default:
		return false
	}
}

// IsVector reports whether t is one of the vector tags.
func (t TypeTag) IsVector() bool {
	return t == Vector2 || t == Vector3 || t == Vector4
}

// dimension is the component count of a vector tag, 0 otherwise.
func (t TypeTag) dimension() int {
	switch t {
	case Vector2:
		return 2
	case Vector3:
		return 3
	case Vector4:
		return 4
	default:
		return 0
	}
}

// ParseTypeTag decodes a tag name. Matching is case-insensitive and accepts
// a few aliases used by older documents ("Object", "UnityObject", "Integer").
func ParseTypeTag(s string) (TypeTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return Int, nil
	case "float", "single", "double":
		return Float, nil
	case "bool", "boolean":
		return Bool, nil
	case "string":
		return String, nil
	case "vector2":
		return Vector2, nil
	case "vector3":
		return Vector3, nil
	case "vector4":
		return Vector4, nil
	case "engineobjectref", "object", "unityobject":
		return EngineObjectRef, nil
	case "generic":
		return Generic, nil
	case "nodehandle", "node":
		return NodeHandle, nil
	default:
		return Invalid, fmt.Errorf("unknown type tag %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t TypeTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TypeTag) UnmarshalText(data []byte) error {
	parsed, err := ParseTypeTag(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
