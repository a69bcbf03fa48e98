package graph

import (
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
)

// Edges returns the outgoing references of a node: children, weighted
// branches and services alike. ok is false when the node does not exist.
type Edges func(id identity.Identity) (out []identity.Identity, ok bool)

// Reachable walks depth-first from root and returns every existing node
// reached, in visit order. Each node is visited once, so cycles terminate.
// An empty or absent root yields nothing.
func Reachable(root identity.Identity, edges Edges) []identity.Identity {
	if root.IsEmpty() {
		return nil
	}
	visited := make(map[identity.Identity]struct{})
	var order []identity.Identity
	stack := []identity.Identity{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id.IsEmpty() {
			continue
		}
		if _, seen := visited[id]; seen {
			continue
		}
		out, ok := edges(id)
		if !ok {
			continue
		}
		visited[id] = struct{}{}
		order = append(order, id)
		// push in reverse so the first child is visited first
		for i := len(out) - 1; i >= 0; i-- {
			if _, seen := visited[out[i]]; !seen {
				stack = append(stack, out[i])
			}
		}
	}
	return order
}

// Orphans returns the ids, in the given order, that are absent from reached.
func Orphans(all []identity.Identity, reached []identity.Identity) []identity.Identity {
	seen := make(map[identity.Identity]struct{}, len(reached))
	for _, id := range reached {
		seen[id] = struct{}{}
	}
	var out []identity.Identity
	for _, id := range all {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
