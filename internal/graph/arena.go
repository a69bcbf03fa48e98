package graph

import (
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
)

// Arena stores nodes in insertion order, indexed by identity.
type Arena[N any] struct {
	nodes []N
	ids   []identity.Identity
	index map[identity.Identity]int
}

// NewArena returns an empty arena.
func NewArena[N any]() *Arena[N] {
	return &Arena[N]{index: make(map[identity.Identity]int)}
}

// Add stores n under id, replacing any node already stored under it. Empty
// identities are rejected.
func (a *Arena[N]) Add(id identity.Identity, n N) bool {
	if id.IsEmpty() {
		return false
	}
	if a.index == nil {
		a.index = make(map[identity.Identity]int)
	}
	if i, ok := a.index[id]; ok {
		a.nodes[i] = n
		return true
	}
	a.index[id] = len(a.nodes)
	a.nodes = append(a.nodes, n)
	a.ids = append(a.ids, id)
	return true
}

// Get returns the node stored under id.
func (a *Arena[N]) Get(id identity.Identity) (N, bool) {
	i, ok := a.index[id]
	if !ok {
		var zero N
		return zero, false
	}
	return a.nodes[i], true
}

// Contains implements Index.
func (a *Arena[N]) Contains(id identity.Identity) bool {
	_, ok := a.index[id]
	return ok
}

// Resolve returns the node ref points at, if any.
func (a *Arena[N]) Resolve(ref Reference) (N, bool) {
	if ref.IsEmpty() {
		var zero N
		return zero, false
	}
	return a.Get(ref.Target)
}

// Len returns the number of stored nodes.
func (a *Arena[N]) Len() int {
	return len(a.nodes)
}

// IDs returns node identities in insertion order.
func (a *Arena[N]) IDs() []identity.Identity {
	out := make([]identity.Identity, len(a.ids))
	copy(out, a.ids)
	return out
}

// All calls yield for each node in insertion order until it returns false.
func (a *Arena[N]) All(yield func(identity.Identity, N) bool) {
	for i, n := range a.nodes {
		if !yield(a.ids[i], n) {
			return
		}
	}
}
