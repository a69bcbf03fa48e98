// Package identity provides the stable 128-bit identifiers used to address
// behavior-tree nodes and variables independently of their position, name or
// array index.
package identity

import (
	"github.com/google/uuid"
)

// Identity is an opaque, serializable 128-bit identifier. The zero value is
// Empty, which means "unbound".
//
// An Identity is generated once when the entity it names is created and is
// never regenerated while that entity persists, so it survives renames and
// reorders.
type Identity uuid.UUID

// Empty is the distinguished "unbound" identity.
var Empty Identity

// seedNamespace scopes FromSeed so that seeded identities cannot collide with
// name-based UUIDs produced by unrelated software.
var seedNamespace = uuid.MustParse("6f1c9a52-3d0b-4f4e-9a57-2b8e5c1d7a90")

// New returns a fresh random identity.
func New() Identity {
	return Identity(uuid.New())
}

// FromSeed derives an identity deterministically from seed. The same seed
// always yields the same identity, across processes and reloads. It is used
// to re-derive ids for host-reflected variables from their host path.
func FromSeed(seed string) Identity {
	return Identity(uuid.NewSHA1(seedNamespace, []byte(seed)))
}

// Parse decodes the canonical textual form of an identity. The empty string
// decodes to Empty.
func Parse(s string) (Identity, error) {
	if s == "" {
		return Empty, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return Empty, err
	}
	return Identity(u), nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and package-level constants.
func MustParse(s string) Identity {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsEmpty reports whether id is the unbound sentinel.
func (id Identity) IsEmpty() bool {
	return id == Empty
}

// String returns the canonical UUID text form, or "" for Empty.
func (id Identity) String() string {
	if id.IsEmpty() {
		return ""
	}
	return uuid.UUID(id).String()
}

// Short returns the first eight hex digits, for diagnostics.
func (id Identity) Short() string {
	s := id.String()
	if len(s) < 8 {
		return "<empty>"
	}
	return s[:8]
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
