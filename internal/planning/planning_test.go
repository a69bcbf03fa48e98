package planning

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	bt "github.com/joeycumines/go-behaviortree"
	pabt "github.com/joeycumines/go-pabt"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/document"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const house = `
name: house
variables:
  - {name: door, type: bool, default: "false"}
  - {name: inside, type: bool, default: "false"}
  - {name: keys, type: int, default: "0"}
`

func instance(t *testing.T) *tree.ResolvedTree {
	t.Helper()
	doc, err := document.Parse([]byte(house))
	require.NoError(t, err)
	tr, _ := tree.Instantiate(doc, nil, nil, tree.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	return tr
}

func TestStateVariable(t *testing.T) {
	t.Parallel()
	tr := instance(t)
	s := NewState(tr)

	v, err := s.Variable("keys")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	door, _ := tr.VariableByName("door")
	v, err = s.Variable(door.ID())
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = s.Variable("missing")
	assert.Error(t, err)
	_, err = s.Variable(nil)
	assert.Error(t, err)
	_, err = s.Variable(3.5)
	assert.Error(t, err)
}

func TestConditions(t *testing.T) {
	t.Parallel()
	eq := Equals("keys", 2)
	assert.Equal(t, "keys", eq.Key())
	assert.True(t, eq.Match(int64(2)))
	assert.True(t, eq.Match(2.9))
	assert.False(t, eq.Match(int64(3)))
	assert.False(t, eq.Match(value.Vec2{}))

	ex := Expr("keys", "value >= 2")
	assert.True(t, ex.Match(int64(3)))
	assert.False(t, ex.Match(int64(1)))
	assert.False(t, Expr("keys", "value >").Match(int64(1)))
}

func TestPlanReachesGoal(t *testing.T) {
	t.Parallel()
	tr := instance(t)
	s := NewState(tr)
	s.RegisterAction("open", SetAction(tr, "open", "door", value.BoolValue(true)))
	s.RegisterAction("enter", SetAction(tr, "enter", "inside", value.BoolValue(true),
		pabt.IConditions{Equals("door", true)}))
	s.RegisterAction("unrelated", SetAction(tr, "unrelated", "keys", value.IntValue(1)))

	relevant, err := s.Actions(Equals("inside", true))
	require.NoError(t, err)
	require.Len(t, relevant, 1)
	assert.Equal(t, "enter", relevant[0].(*Action).Name)

	node, err := Plan(s, Goal([]pabt.Condition{Equals("inside", true)}))
	require.NoError(t, err)
	var st bt.Status
	for i := 0; i < 10 && st != bt.Success; i++ {
		st, err = node.Tick()
		require.NoError(t, err)
	}
	assert.Equal(t, bt.Success, st)

	inside, _ := tr.VariableByName("inside")
	ok, err := variable.Get[bool](inside)
	require.NoError(t, err)
	assert.True(t, ok)
	keys, _ := tr.VariableByName("keys")
	n, _ := variable.Get[int](keys)
	assert.Equal(t, 0, n)
}

func TestActionGenerator(t *testing.T) {
	t.Parallel()
	tr := instance(t)
	s := NewState(tr)
	s.RegisterAction("fallback", SetAction(tr, "fallback", "keys", value.IntValue(5)))
	s.SetActionGenerator(func(failed pabt.Condition) ([]pabt.IAction, error) {
		if failed.Key() == "keys" {
			return []pabt.IAction{SetAction(tr, "generated", "keys", value.IntValue(2))}, nil
		}
		return nil, errors.New("no generator for key")
	})

	got, err := s.Actions(Equals("keys", 2))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "generated", got[0].(*Action).Name)

	got, err = s.Actions(Equals("keys", 5))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Actions(Equals("door", true))
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := s.Actions(nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSetActionErrors(t *testing.T) {
	t.Parallel()
	tr := instance(t)
	_, err := SetAction(tr, "bad", "nowhere", value.IntValue(1)).Node().Tick()
	assert.Error(t, err)
	_, err = SetAction(tr, "bad", "keys", value.Vec2Value(value.Vec2{})).Node().Tick()
	assert.ErrorIs(t, err, value.ErrInvalidConversion)
	assert.Panics(t, func() { NewAction("nil", nil, nil, nil) })
}

const chores = `
name: chores
head: root
variables:
  - {name: door, type: bool, default: "false"}
  - {name: keys, type: int, default: "0"}
nodes:
  - id: root
    kind: sequence
    children: [open, grab, copy]
  - id: open
    name: open door
    kind: set
    bindings:
      - {name: target, type: bool, ref: door}
      - {name: value, type: bool, value: "true"}
  - id: grab
    name: grab
    kind: set
    bindings:
      - {name: target, type: int, ref: keys}
      - {name: value, type: int, value: "2"}
  - id: copy
    kind: set
    bindings:
      - {name: target, type: int, ref: keys}
      - {name: value, type: int, ref: keys}
`

func TestSetNodeActions(t *testing.T) {
	t.Parallel()
	doc, err := document.Parse([]byte(chores))
	require.NoError(t, err)
	tr, err := tree.Instantiate(doc, nil, nil, tree.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)

	s := NewState(tr)
	require.Equal(t, 2, s.RegisterSetNodes())
	names := make([]string, 0)
	for _, a := range s.Registry().All() {
		names = append(names, a.(*Action).Name)
	}
	assert.ElementsMatch(t, []string{"open door", "grab"}, names)

	node, err := Plan(s, Goal([]pabt.Condition{Equals("keys", 2), Equals("door", true)}))
	require.NoError(t, err)
	var st bt.Status
	for i := 0; i < 10 && st != bt.Success; i++ {
		st, err = node.Tick()
		require.NoError(t, err)
	}
	assert.Equal(t, bt.Success, st)

	door, _ := tr.VariableByName("door")
	open, err := variable.Get[bool](door)
	require.NoError(t, err)
	assert.True(t, open)
}
