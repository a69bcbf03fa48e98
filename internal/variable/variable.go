package variable

import (
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
)

// Variable is a runtime storage cell.
type Variable interface {
	ID() identity.Identity
	Name() string
	Type() value.TypeTag
	// ObjectType is the declared object subtype name, if any.
	ObjectType() string
	// Load returns the current value under the cell's own tag.
	Load() (value.Value, error)
	// Store coerces v to the cell's tag and stores it.
	Store(v value.Value) error
}

// Get reads v as T, coercing when T's tag differs from the cell's tag.
func Get[T any](v Variable) (T, error) {
	raw, err := v.Load()
	if err != nil {
		var zero T
		return zero, err
	}
	return value.As[T](raw)
}

// Set writes x into v, coercing it to the cell's tag.
func Set[T any](v Variable, x T) error {
	in, err := value.FromGo(x)
	if err != nil {
		return err
	}
	return v.Store(in)
}
