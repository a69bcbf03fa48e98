package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(names ...string) []identity.Identity {
	out := make([]identity.Identity, len(names))
	for i, n := range names {
		out[i] = identity.FromSeed(n)
	}
	return out
}

func TestReferenceResolve(t *testing.T) {
	t.Parallel()
	arena := NewArena[string]()
	a := identity.FromSeed("a")
	require.True(t, arena.Add(a, "node a"))
	require.False(t, arena.Add(identity.Empty, "nothing"))

	got, ok := To(a).Resolve(arena)
	assert.True(t, ok)
	assert.Equal(t, a, got)

	_, ok = To(identity.FromSeed("missing")).Resolve(arena)
	assert.False(t, ok)
	_, ok = Reference{}.Resolve(arena)
	assert.False(t, ok)
	_, ok = To(a).Resolve(nil)
	assert.False(t, ok)

	n, ok := arena.Resolve(To(a))
	assert.True(t, ok)
	assert.Equal(t, "node a", n)
	_, ok = arena.Resolve(Reference{})
	assert.False(t, ok)
}

func TestArenaReplace(t *testing.T) {
	t.Parallel()
	var arena Arena[int]
	x := ids("x", "y")
	arena.Add(x[0], 1)
	arena.Add(x[1], 2)
	arena.Add(x[0], 3)
	assert.Equal(t, 2, arena.Len())
	assert.Equal(t, x, arena.IDs())
	v, _ := arena.Get(x[0])
	assert.Equal(t, 3, v)
}

func TestListOps(t *testing.T) {
	t.Parallel()
	x := ids("a", "b", "c")
	l := NewList(x...)
	l.Add(x[0])
	assert.Equal(t, 0, l.IndexOf(x[0]))

	require.True(t, l.Remove(x[0]))
	assert.Equal(t, []identity.Identity{x[1], x[2], x[0]}, l.Targets())

	l.Insert(0, x[2])
	l.Insert(99, x[1])
	assert.Equal(t, []identity.Identity{x[2], x[1], x[2], x[0], x[1]}, l.Targets())

	require.True(t, l.Move(0, 3))
	assert.Equal(t, []identity.Identity{x[1], x[2], x[0], x[2], x[1]}, l.Targets())
	assert.False(t, l.Move(0, 5))
	assert.False(t, l.Remove(identity.FromSeed("z")))
}

func TestWeightedList(t *testing.T) {
	t.Parallel()
	x := ids("a", "b", "c")
	var l WeightedList
	l.Add(x[0])
	l.AddWeighted(x[1], 5)
	l.Add(x[2])
	l.Add(x[1])
	assert.Equal(t, DefaultWeight, l.At(0).Weight)
	assert.Equal(t, 8, l.TotalWeight())

	require.True(t, l.Move(1, 2))
	assert.Equal(t, x[1], l.At(2).Target)
	assert.Equal(t, 5, l.At(2).Weight)

	// first match wins
	require.True(t, l.Remove(x[1]))
	want := []Weighted{
		{Reference: To(x[0]), Weight: 1},
		{Reference: To(x[2]), Weight: 1},
		{Reference: To(x[1]), Weight: 1},
	}
	if diff := cmp.Diff(want, l.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	require.True(t, l.SetWeight(x[2], 0))
	assert.Equal(t, 2, l.TotalWeight())
}

func TestReachable(t *testing.T) {
	t.Parallel()
	x := ids("root", "a", "b", "c", "svc", "orphan")
	missing := identity.FromSeed("missing")
	edges := map[identity.Identity][]identity.Identity{
		x[0]: {x[1], x[2], x[4]},
		x[1]: {x[3], x[0], missing},
		x[2]: {x[1]},
		x[3]: {x[3]},
		x[4]: nil,
		x[5]: {x[0]},
	}
	lookup := func(id identity.Identity) ([]identity.Identity, bool) {
		out, ok := edges[id]
		return out, ok
	}
	got := Reachable(x[0], lookup)
	assert.Equal(t, []identity.Identity{x[0], x[1], x[3], x[2], x[4]}, got)
	assert.Equal(t, []identity.Identity{x[5]}, Orphans(x, got))

	assert.Empty(t, Reachable(identity.Empty, lookup))
	assert.Empty(t, Reachable(missing, lookup))
}
