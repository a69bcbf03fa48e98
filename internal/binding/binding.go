// Package binding implements node fields that are either a constant payload
// embedded in the graph or a reference, by identity, to a variable.
package binding

import (
	"errors"
	"fmt"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
)

var (
	// ErrUnresolvedReference is returned when writing through a reference
	// whose target is absent, or using a reference that was never resolved.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrReadOnlyConstant is returned when writing to a constant binding.
	ErrReadOnlyConstant = errors.New("read-only constant")
)

// State is the resolution state of a binding.
type State uint8

const (
	Constant State = iota
	Unresolved
	Resolved
	Dangling
)

func (s State) String() string {
	switch s {
	case Constant:
		return "constant"
	case Unresolved:
		return "unresolved"
	case Resolved:
		return "resolved"
	case Dangling:
		return "dangling"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Resolver finds variables by identity. *scope.Context implements it.
type Resolver interface {
	Lookup(id identity.Identity) (variable.Variable, bool)
}

// Binding is a typed node field. When Reference is empty the binding is a
// constant and Constant holds its payload; otherwise it reads and writes the
// referenced variable once resolved.
type Binding struct {
	// Tag is the declared tag. Generic bindings take the tag of whatever
	// they reference.
	Tag       value.TypeTag
	Reference identity.Identity
	Constant  value.Value

	refTag   value.TypeTag
	variable variable.Variable
	resolved bool
}

// NewConstant returns a constant binding holding v coerced to tag.
func NewConstant(tag value.TypeTag, v value.Value) (*Binding, error) {
	c, err := value.Coerce(v, tag)
	if err != nil {
		return nil, err
	}
	return &Binding{Tag: tag, Constant: c}, nil
}

// NewLiteral returns a constant binding parsed from a literal.
func NewLiteral(tag value.TypeTag, literal string) (*Binding, error) {
	v, err := value.Parse(tag, literal)
	if err != nil {
		return nil, err
	}
	return &Binding{Tag: tag, Constant: v}, nil
}

// NewReference returns a binding referencing the variable id.
func NewReference(tag value.TypeTag, id identity.Identity) *Binding {
	return &Binding{Tag: tag, Reference: id, Constant: value.Zero(tag)}
}

// IsConstant reports whether the binding holds a constant. Exactly one of
// IsConstant and HasReference is true.
func (b *Binding) IsConstant() bool {
	return b.Reference.IsEmpty()
}

// HasReference reports whether the binding references a variable.
func (b *Binding) HasReference() bool {
	return !b.Reference.IsEmpty()
}

// SetReference points the binding at d, or turns it back into a constant
// when d is nil. Any cached resolution is dropped.
func (b *Binding) SetReference(d *variable.Descriptor) {
	b.variable = nil
	b.resolved = false
	if d == nil {
		b.Reference = identity.Empty
		b.refTag = value.Invalid
		return
	}
	b.Reference = d.ID
	b.refTag = d.Type
}

// Resolve looks the reference up in r on the first call and caches the
// result, hit or miss. Later calls return the cached variable without
// consulting r. Constant bindings resolve to nothing.
func (b *Binding) Resolve(r Resolver) (variable.Variable, bool) {
	if b.IsConstant() {
		return nil, false
	}
	if !b.resolved {
		b.resolved = true
		if r != nil {
			if v, ok := r.Lookup(b.Reference); ok {
				b.variable = v
			}
		}
	}
	return b.variable, b.variable != nil
}

// Variable returns the resolved variable, if any.
func (b *Binding) Variable() (variable.Variable, bool) {
	return b.variable, b.variable != nil
}

// State reports where the binding is in its lifecycle.
func (b *Binding) State() State {
	switch {
	case b.IsConstant():
		return Constant
	case !b.resolved:
		return Unresolved
	case b.variable != nil:
		return Resolved
	default:
		return Dangling
	}
}

// EffectiveTag is the tag values are read under: the declared tag, or for
// Generic bindings the tag of the referenced variable.
func (b *Binding) EffectiveTag() value.TypeTag {
	if b.Tag != value.Generic || b.IsConstant() {
		return b.Tag
	}
	if b.variable != nil {
		return b.variable.Type()
	}
	if b.refTag.Valid() {
		return b.refTag
	}
	return b.Tag
}

// Clone returns an unresolved copy for a new tree instance.
func (b *Binding) Clone() *Binding {
	return &Binding{Tag: b.Tag, Reference: b.Reference, Constant: b.Constant, refTag: b.refTag}
}

// checkDrift fails when a typed binding references a variable of another
// type, for example after the variable's type was edited.
func (b *Binding) checkDrift() error {
	v := b.variable
	if b.Tag == value.Generic || v.Type() == value.Generic || v.Type() == b.Tag {
		return nil
	}
	return &value.ConversionError{From: v.Type(), To: b.Tag.String(), Value: v.Name()}
}

// Value returns the binding's current value. Dangling references read as the
// null value of the effective tag.
func (b *Binding) Value() (value.Value, error) {
	switch b.State() {
	case Constant:
		return b.Constant, nil
	case Unresolved:
		return value.Value{}, fmt.Errorf("%w: %s", ErrUnresolvedReference, b.Reference.Short())
	case Dangling:
		return value.Zero(b.EffectiveTag()), nil
	}
	if err := b.checkDrift(); err != nil {
		return value.Value{}, err
	}
	return b.variable.Load()
}

// Store writes v through the reference.
func (b *Binding) Store(v value.Value) error {
	switch b.State() {
	case Constant:
		return ErrReadOnlyConstant
	case Unresolved, Dangling:
		return fmt.Errorf("%w: %s", ErrUnresolvedReference, b.Reference.Short())
	}
	if err := b.checkDrift(); err != nil {
		return err
	}
	return b.variable.Store(v)
}

func (b *Binding) String() string {
	switch b.State() {
	case Constant:
		return fmt.Sprintf("%s %s", b.Tag, b.Constant)
	case Resolved:
		return fmt.Sprintf("%s -> %s", b.Tag, b.variable.Name())
	default:
		return fmt.Sprintf("%s -> %s (%s)", b.Tag, b.Reference.Short(), b.State())
	}
}

// Read returns the binding's value as T.
func Read[T any](b *Binding) (T, error) {
	if b.State() == Resolved {
		if err := b.checkDrift(); err != nil {
			var zero T
			return zero, err
		}
		return variable.Get[T](b.variable)
	}
	v, err := b.Value()
	if err != nil {
		var zero T
		return zero, err
	}
	return value.As[T](v)
}

// Write stores x through the binding.
func Write[T any](b *Binding, x T) error {
	v, err := value.FromGo(x)
	if err != nil {
		return err
	}
	return b.Store(v)
}
