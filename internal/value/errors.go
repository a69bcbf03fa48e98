package value

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConversion is matched by every *ConversionError.
	ErrInvalidConversion = errors.New("invalid conversion")
	// ErrParseFailure is matched by every *ParseError.
	ErrParseFailure = errors.New("parse failure")
	// ErrMissingComponent is returned by Component when the container has
	// no component of the requested type.
	ErrMissingComponent = errors.New("missing component")
)

// ConversionError reports a coercion between an incompatible source tag and
// target representation. Callers propagate it rather than substituting a
// default.
type ConversionError struct {
	From  TypeTag
	To    string
	Value any
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("invalid conversion from %s to %s (value: %v)", e.From, e.To, e.Value)
}

// Is makes errors.Is(err, ErrInvalidConversion) hold.
func (e *ConversionError) Is(target error) bool {
	return target == ErrInvalidConversion
}

func conversionError(from TypeTag, to string, v any) error {
	return &ConversionError{From: from, To: to, Value: v}
}

// ParseError reports a malformed default literal.
type ParseError struct {
	Tag     TypeTag
	Literal string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %q as %s: %v", e.Literal, e.Tag, e.Err)
	}
	return fmt.Sprintf("cannot parse %q as %s", e.Literal, e.Tag)
}

// Is makes errors.Is(err, ErrParseFailure) hold.
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailure
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
