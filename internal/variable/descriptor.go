// Package variable implements variable descriptors and the runtime storage
// cells they materialize into: inline tagged-union cells owned by a tree, and
// cells reflected from a member of an external host object.
//
// Cells are not safe for concurrent use. Static and global cells are shared
// between tree instances; the host serializes access to them.
package variable

import (
	"fmt"
	"strings"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
)

// ScopeFlags select the namespace a descriptor materializes into, and whether
// its value is reflected from the host.
type ScopeFlags uint8

const (
	Standard ScopeFlags = 1 << iota
	Static
	Global
	FromHost
)

var flagNames = []struct {
	flag ScopeFlags
	name string
}{
	{Standard, "standard"},
	{Static, "static"},
	{Global, "global"},
	{FromHost, "host"},
}

// Has reports whether every bit of x is set.
func (f ScopeFlags) Has(x ScopeFlags) bool {
	return f&x == x
}

func (f ScopeFlags) String() string {
	var parts []string
	for _, n := range flagNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "standard"
	}
	return strings.Join(parts, "|")
}

// ParseScopeFlags decodes flag names as produced by String. Names are
// case-insensitive; "fromhost" is accepted for "host".
func ParseScopeFlags(names ...string) (ScopeFlags, error) {
	var f ScopeFlags
	for _, name := range names {
		for _, part := range strings.Split(name, "|") {
			switch strings.ToLower(strings.TrimSpace(part)) {
			case "":
			case "standard", "local":
				f |= Standard
			case "static":
				f |= Static
			case "global":
				f |= Global
			case "host", "fromhost":
				f |= FromHost
			default:
				return 0, fmt.Errorf("unknown scope flag %q", part)
			}
		}
	}
	return f, nil
}

// Descriptor is the design-time declaration of one variable.
type Descriptor struct {
	ID      identity.Identity
	Name    string
	Type    value.TypeTag
	Default string
	Flags   ScopeFlags
	// HostPath names the host member a FromHost variable reflects.
	HostPath string
	// ObjectType is the declared object subtype for EngineObjectRef and
	// Generic variables, by type name.
	ObjectType string
}

// IsHost reports whether the variable is reflected from a host member.
func (d *Descriptor) IsHost() bool {
	return d.Flags.Has(FromHost)
}

// Validate checks the invariants of a descriptor placed in a table: a
// non-empty identity, a valid tag, and a default literal that parses as that
// tag. Host-reflected descriptors have no default and need a host path.
func (d *Descriptor) Validate() error {
	if d.ID.IsEmpty() {
		return fmt.Errorf("%w: variable %q has an empty identity", ErrInvalidDescriptor, d.Name)
	}
	if d.IsHost() {
		if d.HostPath == "" {
			return fmt.Errorf("%w: host variable %q has no host path", ErrInvalidDescriptor, d.Name)
		}
		return nil
	}
	if !d.Type.Valid() {
		return fmt.Errorf("%w: variable %q has type %s", ErrInvalidDescriptor, d.Name, d.Type)
	}
	if _, err := value.Parse(d.Type, d.Default); err != nil {
		return fmt.Errorf("variable %q default: %w", d.Name, err)
	}
	return nil
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", d.Type, d.Name, d.Flags, d.ID.Short())
}
