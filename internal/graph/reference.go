// Package graph provides identity-addressed references between behavior-tree
// nodes: single references, ordered and weighted reference lists, an arena
// indexing nodes by identity, and reachability over them.
//
// The storage is a general directed graph. Nothing here enforces the tree
// shape the editor presents; traversals tolerate cycles.
package graph

import (
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
)

// Index answers whether a node with the given identity exists.
type Index interface {
	Contains(id identity.Identity) bool
}

// Reference points at another node by identity. The zero value points
// nowhere.
type Reference struct {
	Target identity.Identity
}

// To returns a reference to id.
func To(id identity.Identity) Reference {
	return Reference{Target: id}
}

// IsEmpty reports whether the reference is unset.
func (r Reference) IsEmpty() bool {
	return r.Target.IsEmpty()
}

// Resolve returns the target if it is set and present in idx. An empty or
// dangling reference resolves to nothing; this is not an error.
func (r Reference) Resolve(idx Index) (identity.Identity, bool) {
	if r.Target.IsEmpty() || idx == nil || !idx.Contains(r.Target) {
		return identity.Empty, false
	}
	return r.Target, true
}

func (r Reference) String() string {
	return r.Target.Short()
}

// MarshalText encodes the target identity.
func (r Reference) MarshalText() ([]byte, error) {
	return r.Target.MarshalText()
}

// UnmarshalText decodes a target identity; empty text is an unset reference.
func (r *Reference) UnmarshalText(data []byte) error {
	return r.Target.UnmarshalText(data)
}
