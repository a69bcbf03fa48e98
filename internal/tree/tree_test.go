package tree

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/binding"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/graph"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/scope"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	docID  = identity.FromSeed("doc")
	rootID = identity.FromSeed("root")
	leafID = identity.FromSeed("leaf")
	loneID = identity.FromSeed("lone")
	hpID   = identity.FromSeed("hp")
)

type pawn struct {
	Speed float64
}

func hpDescriptor(flags variable.ScopeFlags) variable.Descriptor {
	return variable.Descriptor{ID: hpID, Name: "hp", Type: value.Int, Default: "0", Flags: flags}
}

func testDocument(flags variable.ScopeFlags) *Document {
	root := &Node{ID: rootID, Name: "root", Kind: "sequence"}
	root.Children.Add(leafID)
	leaf := &Node{ID: leafID, Name: "leaf", Kind: "set", Parent: graph.To(rootID)}
	leaf.Bindings = []Field{
		{Name: "target", Binding: binding.NewReference(value.Int, hpID)},
		{Name: "value", Binding: mustLiteral(value.Int, "10")},
	}
	lone := &Node{ID: loneID, Name: "lone", Kind: "succeed"}
	return &Document{
		ID:        docID,
		Name:      "test",
		Head:      rootID,
		Variables: []variable.Descriptor{hpDescriptor(flags)},
		Nodes:     []*Node{root, leaf, lone},
	}
}

func mustLiteral(tag value.TypeTag, lit string) *binding.Binding {
	b, err := binding.NewLiteral(tag, lit)
	if err != nil {
		panic(err)
	}
	return b
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func TestInstantiate(t *testing.T) {
	t.Parallel()
	tr, err := Instantiate(testDocument(variable.Standard), nil, nil, quiet())
	require.NoError(t, err)
	assert.Empty(t, tr.Diagnostics())

	head, ok := tr.Head()
	require.True(t, ok)
	assert.Equal(t, "root", head.Name)
	assert.Equal(t, []identity.Identity{rootID, leafID}, tr.Reachable())
	assert.Equal(t, []identity.Identity{loneID}, tr.Orphans())
	_, ok = tr.Node(loneID)
	assert.False(t, ok)

	target, ok := tr.Binding(leafID, "target")
	require.True(t, ok)
	assert.Equal(t, binding.Resolved, target.State())
	require.NoError(t, binding.Write(target, 4))

	v, ok := tr.LookupVariable(scope.Local, hpID)
	require.True(t, ok)
	n, err := variable.Get[int](v)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, ok = tr.LookupVariable(scope.Static, hpID)
	assert.False(t, ok)
}

func TestInstancesDoNotShareBindings(t *testing.T) {
	t.Parallel()
	doc := testDocument(variable.Standard)
	a, err := Instantiate(doc, nil, nil, quiet())
	require.NoError(t, err)
	b, err := Instantiate(doc, nil, nil, quiet())
	require.NoError(t, err)

	ba, _ := a.Binding(leafID, "target")
	bb, _ := b.Binding(leafID, "target")
	assert.NotSame(t, ba, bb)
	require.NoError(t, binding.Write(ba, 10))
	n, err := binding.Read[int](bb)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// the design-time binding is never resolved
	design, _ := doc.Lookup(leafID)
	f, _ := design.Field("target")
	assert.Equal(t, binding.Unresolved, f.State())
}

func TestStaticVariableShared(t *testing.T) {
	t.Parallel()
	doc := testDocument(variable.Static)
	shared := scope.NewShared()
	a, err := Instantiate(doc, nil, shared, quiet())
	require.NoError(t, err)
	b, err := Instantiate(doc, nil, shared, quiet())
	require.NoError(t, err)

	ba, _ := a.Binding(leafID, "target")
	require.NoError(t, binding.Write(ba, 10))

	bb, _ := b.Binding(leafID, "target")
	n, err := binding.Read[int](bb)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	va, _ := a.VariableByName("hp")
	vb, _ := b.VariableByName("hp")
	assert.Same(t, va, vb)

	// another shared context has its own static table
	c, err := Instantiate(doc, nil, scope.NewShared(), quiet())
	require.NoError(t, err)
	bc, _ := c.Binding(leafID, "target")
	n, err = binding.Read[int](bc)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGlobals(t *testing.T) {
	t.Parallel()
	doc := testDocument(variable.Standard)
	doc.Variables = nil
	doc.Globals = []variable.Descriptor{hpDescriptor(0)}
	shared := scope.NewShared()
	a, err := Instantiate(doc, nil, shared, quiet())
	require.NoError(t, err)

	other := &Document{ID: identity.FromSeed("other"), Globals: []variable.Descriptor{hpDescriptor(0)}}
	b, _ := Instantiate(other, nil, shared, quiet())

	va, ok := a.LookupVariable(scope.Global, hpID)
	require.True(t, ok)
	vb, ok := b.LookupVariable(scope.Global, hpID)
	require.True(t, ok)
	assert.Same(t, va, vb)
}

func TestHostVariable(t *testing.T) {
	t.Parallel()
	doc := testDocument(variable.Standard)
	speedID := identity.FromSeed("speed")
	doc.Variables = append(doc.Variables, variable.Descriptor{ID: speedID, Name: "speed", Flags: variable.FromHost | variable.Static, HostPath: "Speed"})
	leaf := doc.Nodes[1]
	leaf.Bindings = append(leaf.Bindings, Field{Name: "speed", Binding: binding.NewReference(value.Float, speedID)})

	host := &pawn{Speed: 3.5}
	tr, err := Instantiate(doc, host, nil, quiet())
	require.NoError(t, err)

	_, ok := tr.LookupVariable(scope.Local, speedID)
	assert.True(t, ok)
	b, _ := tr.Binding(leafID, "speed")
	f, err := binding.Read[float64](b)
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)
	require.NoError(t, binding.Write(b, 4.0))
	assert.Equal(t, 4.0, host.Speed)
}

func TestHostVariablesOption(t *testing.T) {
	t.Parallel()
	doc := testDocument(variable.Standard)
	host := &pawn{Speed: 2}
	tr, err := Instantiate(doc, host, nil, quiet(), WithHostVariables())
	require.NoError(t, err)
	v, ok := tr.VariableByName("Speed")
	require.True(t, ok)
	f, err := variable.Get[float64](v)
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)
}

func TestDiagnosticsDoNotStopMaterialization(t *testing.T) {
	t.Parallel()
	doc := testDocument(variable.Standard)
	missing := identity.FromSeed("missing")
	doc.Nodes[0].Children.Add(missing)
	leaf := doc.Nodes[1]
	leaf.Bindings = append(leaf.Bindings,
		Field{Name: "broken", Binding: binding.NewReference(value.Int, missing)},
		Field{Name: "drift", Binding: binding.NewReference(value.Float, hpID)},
	)
	doc.Variables = append(doc.Variables,
		variable.Descriptor{ID: identity.FromSeed("bad"), Name: "bad", Type: value.Int, Default: "x"},
		variable.Descriptor{ID: identity.FromSeed("host"), Name: "host", Flags: variable.FromHost, HostPath: "Speed"},
		variable.Descriptor{Name: "anonymous", Type: value.Int},
	)

	tr, err := Instantiate(doc, nil, nil, quiet())
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 4)
	assert.ErrorIs(t, err, binding.ErrUnresolvedReference)
	assert.ErrorIs(t, err, value.ErrInvalidConversion)
	assert.ErrorIs(t, err, variable.ErrNoHost)
	assert.ErrorIs(t, err, variable.ErrInvalidDescriptor)

	diags := tr.Diagnostics()
	assert.True(t, diags.HasErrors())
	warnings := 0
	for _, d := range diags {
		if d.Severity == Warning {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)

	// the rest of the tree still works
	bad, ok := tr.VariableByName("bad")
	require.True(t, ok)
	n, err := variable.Get[int](bad)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	broken, _ := tr.Binding(leafID, "broken")
	assert.Equal(t, binding.Dangling, broken.State())
	n, err = binding.Read[int](broken)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	target, _ := tr.Binding(leafID, "target")
	require.NoError(t, binding.Write(target, 1))
}

func TestHeadProblems(t *testing.T) {
	t.Parallel()
	doc := testDocument(variable.Standard)
	doc.Head = identity.Empty
	tr, err := Instantiate(doc, nil, nil, quiet())
	require.NoError(t, err)
	_, ok := tr.Head()
	assert.False(t, ok)
	assert.Len(t, tr.Diagnostics(), 1)
	assert.Len(t, tr.Orphans(), 3)

	doc.Head = identity.FromSeed("nowhere")
	tr, err = Instantiate(doc, nil, nil, quiet())
	require.NoError(t, err)
	assert.ErrorIs(t, tr.Diagnostics()[0], ErrDanglingReference)
	assert.Empty(t, tr.Reachable())
}

func TestCycleTolerated(t *testing.T) {
	t.Parallel()
	doc := testDocument(variable.Standard)
	doc.Nodes[1].Children.Add(rootID)
	doc.Nodes[1].Services.Add(leafID)
	tr, err := Instantiate(doc, nil, nil, quiet())
	require.NoError(t, err)
	assert.Equal(t, []identity.Identity{rootID, leafID}, tr.Reachable())
}
