package variable

import (
	"fmt"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
)

// Option configures cell construction.
type Option func(*options)

type options struct {
	assets value.AssetResolver
}

// WithAssets sets the resolver used to re-resolve object handles that are
// missing or were unloaded.
func WithAssets(r value.AssetResolver) Option {
	return func(o *options) {
		o.assets = r
	}
}

// Inline is a tree-owned cell holding its value in a value.Value union.
type Inline struct {
	desc   Descriptor
	val    value.Value
	assets value.AssetResolver
}

var _ Variable = (*Inline)(nil)

// NewInline materializes desc, parsing its default literal.
func NewInline(desc Descriptor, opts ...Option) (*Inline, error) {
	v, err := value.Parse(desc.Type, desc.Default)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", desc.Name, err)
	}
	return NewInlineValue(desc, v, opts...), nil
}

// NewInlineValue materializes desc with an explicit initial value. It is
// the fallback for descriptors whose default literal failed to parse.
func NewInlineValue(desc Descriptor, v value.Value, opts ...Option) *Inline {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !v.IsValid() {
		v = value.Zero(desc.Type)
	}
	return &Inline{desc: desc, val: v, assets: o.assets}
}

func (c *Inline) ID() identity.Identity { return c.desc.ID }
func (c *Inline) Name() string { return c.desc.Name }
func (c *Inline) Type() value.TypeTag { return c.desc.Type }
func (c *Inline) ObjectType() string { return c.desc.ObjectType }
func (c *Inline) Descriptor() Descriptor { return c.desc }

// Load returns the stored value. A null object handle that remembers an
// asset identity is re-resolved, and the result is kept.
func (c *Inline) Load() (value.Value, error) {
	if c.val.Tag() == value.EngineObjectRef && value.IsNull(c.val.Object()) &&
		c.val.AssetID() != "" && c.assets != nil {
		if o, ok := c.assets.ResolveAsset(c.val.AssetID()); ok {
			c.val = c.val.WithObject(o)
		}
	}
	return c.val, nil
}

// Store coerces v to the cell's tag. Generic cells keep v as given.
func (c *Inline) Store(v value.Value) error {
	if c.desc.Type == value.Generic {
		c.val = v
		return nil
	}
	out, err := value.Coerce(v, c.desc.Type)
	if err != nil {
		return fmt.Errorf("store %q: %w", c.desc.Name, err)
	}
	if err := value.CheckObjectType(out, c.desc.ObjectType); err != nil {
		return fmt.Errorf("store %q: %w", c.desc.Name, err)
	}
	c.val = out
	return nil
}
