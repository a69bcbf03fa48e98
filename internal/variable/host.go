package variable

import (
	"fmt"
	"reflect"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
)

// Host is a cell whose value lives in a member of an external host object.
// The accessor is resolved when the cell is created; reads and writes go
// straight to the host with no reflection lookup.
type Host struct {
	desc Descriptor
	host any
	acc  *Accessor
}

var _ Variable = (*Host)(nil)

// NewHost binds desc to the member desc.HostPath of host. Members are found
// through the host's own MemberResolver if it has one, else through reg,
// reflecting the host type on first use. The cell's tag is taken from the
// member's declared type, not from desc.Type.
func NewHost(desc Descriptor, host any, reg *HostRegistry) (*Host, error) {
	if host == nil {
		return nil, fmt.Errorf("variable %q: %w", desc.Name, ErrNoHost)
	}
	acc, err := resolveMember(host, desc.HostPath, reg)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", desc.Name, err)
	}
	desc.Type = acc.Tag()
	if desc.Type == value.Invalid {
		return nil, fmt.Errorf("variable %q: member %s has unsupported type %s", desc.Name, desc.HostPath, acc.Type)
	}
	if desc.ID.IsEmpty() {
		desc.ID = identity.FromSeed(HostSeed(reflect.TypeOf(host), desc.HostPath))
	}
	return &Host{desc: desc, host: host, acc: acc}, nil
}

func resolveMember(host any, path string, reg *HostRegistry) (*Accessor, error) {
	if r, ok := host.(MemberResolver); ok {
		acc, err := r.ResolveMember(path)
		if err != nil {
			return nil, err
		}
		if acc != nil {
			return acc, nil
		}
	}
	if reg == nil {
		reg = NewHostRegistry()
	}
	rt := reflect.TypeOf(host)
	reg.Reflect(rt)
	acc, ok := reg.Lookup(rt, path)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMember, rt, path)
	}
	return acc, nil
}

func (c *Host) ID() identity.Identity { return c.desc.ID }
func (c *Host) Name() string { return c.desc.Name }
func (c *Host) Type() value.TypeTag { return c.desc.Type }
func (c *Host) ObjectType() string { return c.desc.ObjectType }
func (c *Host) Descriptor() Descriptor { return c.desc }
func (c *Host) Accessor() *Accessor { return c.acc }

// Load reads the member from the host.
func (c *Host) Load() (value.Value, error) {
	x, err := c.acc.Get(c.host)
	if err != nil {
		return value.Value{}, fmt.Errorf("load %q: %w", c.desc.Name, err)
	}
	v, err := value.FromGo(x)
	if err != nil {
		return value.Value{}, fmt.Errorf("load %q: %w", c.desc.Name, err)
	}
	if c.desc.Type != value.Generic && v.Tag() != c.desc.Type {
		return value.Coerce(v, c.desc.Type)
	}
	return v, nil
}

// Store converts v to the member's declared type and writes it to the host.
func (c *Host) Store(v value.Value) error {
	if !c.acc.Writable() {
		return fmt.Errorf("store %q: %w: %s %s", c.desc.Name, ErrReadOnlyMember, c.acc.Kind, c.acc.Name)
	}
	rv, err := value.ToType(v, c.acc.Type)
	if err != nil {
		return fmt.Errorf("store %q: %w", c.desc.Name, err)
	}
	var x any
	if rv.IsValid() {
		x = rv.Interface()
	}
	if err := c.acc.Set(c.host, x); err != nil {
		return fmt.Errorf("store %q: %w", c.desc.Name, err)
	}
	return nil
}
