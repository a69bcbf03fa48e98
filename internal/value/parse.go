package value

import (
	"errors"
	"strconv"
	"strings"
)

// Parse converts a descriptor default literal into a value of tag t. It runs
// once, when a descriptor is materialized; reads never parse.
//
// Accepted literals: decimal for Int and Float, "true"/"false" for Bool, the
// raw text for String, and for vectors the components separated by commas
// and/or spaces, optionally in parentheses: "1,2", "(1, 2, 3)", "1 2 3 4".
// An empty literal yields the tag's null value. For EngineObjectRef the
// literal is the asset identity of the referenced object.
func Parse(t TypeTag, literal string) (Value, error) {
	trimmed := strings.TrimSpace(literal)
	switch t {
	case Int:
		if trimmed == "" {
			return Zero(Int), nil
		}
		i, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return Value{}, &ParseError{Tag: t, Literal: literal, Err: unwrapNumErr(err)}
		}
		return IntValue(i), nil
	case Float:
		if trimmed == "" {
			return Zero(Float), nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Value{}, &ParseError{Tag: t, Literal: literal, Err: unwrapNumErr(err)}
		}
		return FloatValue(f), nil
	case Bool:
		switch strings.ToLower(trimmed) {
		case "", "false":
			return BoolValue(false), nil
		case "true":
			return BoolValue(true), nil
		default:
			return Value{}, &ParseError{Tag: t, Literal: literal}
		}
	case String:
		return StringValue(literal), nil
	case Vector2, Vector3, Vector4:
		return parseVector(t, literal, trimmed)
	case EngineObjectRef:
		return AssetValue(trimmed), nil
	case Generic:
		if trimmed == "" {
			return Zero(Generic), nil
		}
		return GenericValue(literal), nil
	case NodeHandle:
		if trimmed != "" {
			return Value{}, &ParseError{Tag: t, Literal: literal, Err: errors.New("node handles have no literal form")}
		}
		return Zero(NodeHandle), nil
	default:
		return Value{}, &ParseError{Tag: t, Literal: literal, Err: errors.New("invalid tag")}
	}
}

// TryParse is Parse without the error: on failure it returns the tag's null
// value and false, so a partially broken document stays usable.
func TryParse(t TypeTag, literal string) (Value, bool) {
	v, err := Parse(t, literal)
	if err != nil {
		return Zero(t), false
	}
	return v, true
}

// Format renders v as a literal accepted by Parse for v's tag.
func Format(v Value) string {
	switch v.tag {
	case EngineObjectRef:
		return v.AssetID()
	case Vector2, Vector3, Vector4:
		parts := make([]string, v.tag.dimension())
		for i := range parts {
			parts[i] = strconv.FormatFloat(v.v[i], 'g', -1, 64)
		}
		return strings.Join(parts, ",")
	case NodeHandle, Invalid:
		return ""
	default:
		return v.String()
	}
}

func parseVector(t TypeTag, literal, trimmed string) (Value, error) {
	if trimmed == "" {
		return Zero(t), nil
	}
	trimmed = strings.TrimPrefix(trimmed, "(")
	trimmed = strings.TrimSuffix(trimmed, ")")
	fields := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != t.dimension() {
		return Value{}, &ParseError{Tag: t, Literal: literal, Err: errors.New("wrong component count")}
	}
	var c [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Value{}, &ParseError{Tag: t, Literal: literal, Err: unwrapNumErr(err)}
		}
		c[i] = n
	}
	return Value{tag: t, v: c}, nil
}

func unwrapNumErr(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}
