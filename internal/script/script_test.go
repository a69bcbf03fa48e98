package script

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/document"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
	"github.com/stretchr/testify/assert"
	testifyrequire "github.com/stretchr/testify/require"
)

const guard = `
name: guard
head: root
variables:
  - {name: hp, type: int, default: "10"}
  - {name: waypoint, type: vector3, default: "1,2,3"}
  - {name: speed, host: speed}
  - {name: greeting, host: greet}
globals:
  - {name: alarm, type: bool, default: "false"}
nodes:
  - {id: root, kind: succeed}
`

func instantiate(t *testing.T, host any) *tree.ResolvedTree {
	t.Helper()
	doc, err := document.Parse([]byte(guard))
	testifyrequire.NoError(t, err)
	tr, err := tree.Instantiate(doc, host, nil,
		tree.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	testifyrequire.NoError(t, err)
	testifyrequire.False(t, tr.Diagnostics().HasErrors(), tr.Diagnostics().Err())
	return tr
}

func jsHost(t *testing.T, vm *goja.Runtime) *goja.Object {
	t.Helper()
	v, err := vm.RunString(`({speed: 3.5, greet() { return "hi " + this.speed; }})`)
	testifyrequire.NoError(t, err)
	return v.ToObject(vm)
}

func TestExpose(t *testing.T) {
	t.Parallel()
	vm := goja.New()
	host := jsHost(t, vm)
	tr := instantiate(t, NewObject(vm, host))
	testifyrequire.NoError(t, vm.Set("vars", Expose(vm, tr)))

	out, err := vm.RunString(`
		vars.set("hp", vars.get("hp") + 1);
		vars.set("speed", 7);
		[vars.has("hp"), vars.has("missing"), vars.get("missing") === undefined, vars.get("waypoint").y === 2, vars.names().join(",")]
	`)
	testifyrequire.NoError(t, err)
	assert.Equal(t, []any{true, false, true, true, "alarm,greeting,hp,speed,waypoint"}, out.Export())

	hp, ok := tr.VariableByName("hp")
	testifyrequire.True(t, ok)
	got, err := hp.Load()
	testifyrequire.NoError(t, err)
	assert.Equal(t, value.IntValue(11), got)
	assert.InDelta(t, 7.0, host.Get("speed").ToFloat(), 0)
}

func TestExposeThrows(t *testing.T) {
	t.Parallel()
	vm := goja.New()
	tr := instantiate(t, NewObject(vm, jsHost(t, vm)))
	testifyrequire.NoError(t, vm.Set("vars", Expose(vm, tr)))

	_, err := vm.RunString(`vars.set("missing", 1)`)
	var exc *goja.Exception
	testifyrequire.ErrorAs(t, err, &exc)
	assert.Contains(t, exc.Error(), `no variable "missing"`)

	_, err = vm.RunString(`vars.set("greeting", "x")`)
	testifyrequire.ErrorAs(t, err, &exc)
	assert.Contains(t, exc.Error(), variable.ErrReadOnlyMember.Error())
}

func TestModuleLoader(t *testing.T) {
	t.Parallel()
	vm := goja.New()
	tr := instantiate(t, NewObject(vm, jsHost(t, vm)))

	registry := require.NewRegistry()
	Register(registry, tr)
	registry.Enable(vm)

	out, err := vm.RunString(`
		const vars = require("aethiumian:variables");
		vars.set("alarm", true);
		vars.get("alarm") && vars.get("greeting") === "hi 3.5"
	`)
	testifyrequire.NoError(t, err)
	assert.Equal(t, true, out.Export())
}

func TestObjectResolveMember(t *testing.T) {
	t.Parallel()
	vm := goja.New()
	v, err := vm.RunString(`({count: 2, name: "bob", on: true, list: [1], tick() { return this.count * 2; }})`)
	testifyrequire.NoError(t, err)
	obj := NewObject(vm, v.ToObject(vm))

	for _, tc := range []struct {
		member string
		tag    value.TypeTag
		kind   variable.MemberKind
	}{
		{"count", value.Float, variable.Property},
		{"name", value.String, variable.Property},
		{"on", value.Bool, variable.Property},
		{"list", value.Generic, variable.Property},
		{"tick", value.Generic, variable.Method},
	} {
		acc, err := obj.ResolveMember(tc.member)
		testifyrequire.NoError(t, err, tc.member)
		assert.Equal(t, tc.tag, acc.Tag(), tc.member)
		assert.Equal(t, tc.kind, acc.Kind, tc.member)
	}

	_, err = obj.ResolveMember("nope")
	assert.True(t, errors.Is(err, variable.ErrUnknownMember))

	cell, err := variable.NewHost(variable.Descriptor{Name: "count", HostPath: "count", Flags: variable.FromHost}, obj, nil)
	testifyrequire.NoError(t, err)
	testifyrequire.NoError(t, cell.Store(value.FloatValue(4)))
	got, err := cell.Load()
	testifyrequire.NoError(t, err)
	assert.Equal(t, value.FloatValue(4), got)

	tick, err := variable.NewHost(variable.Descriptor{Name: "tick", HostPath: "tick", Flags: variable.FromHost}, obj, nil)
	testifyrequire.NoError(t, err)
	got, err = tick.Load()
	testifyrequire.NoError(t, err)
	assert.EqualValues(t, 8, got.Interface())
}
