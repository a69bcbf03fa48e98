package planning

import (
	"fmt"
	"sort"

	bt "github.com/joeycumines/go-behaviortree"
	pabt "github.com/joeycumines/go-pabt"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/behavior"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
)

// ActionRegistry holds named actions. All returns them sorted by name so
// plans are deterministic.
type ActionRegistry struct {
	actions map[string]pabt.IAction
}

// NewActionRegistry returns an empty registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{actions: make(map[string]pabt.IAction)}
}

// Register adds or replaces the action called name.
func (r *ActionRegistry) Register(name string, action pabt.IAction) {
	r.actions[name] = action
}

// Get returns the action called name, or nil.
func (r *ActionRegistry) Get(name string) pabt.IAction {
	return r.actions[name]
}

// All returns every action ordered by name.
func (r *ActionRegistry) All() []pabt.IAction {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]pabt.IAction, 0, len(names))
	for _, name := range names {
		out = append(out, r.actions[name])
	}
	return out
}

// Condition tests the value of one variable.
type Condition struct {
	key   string
	match func(any) bool
}

var _ pabt.Condition = (*Condition)(nil)

// Key implements pabt.Condition.
func (c *Condition) Key() any { return c.key }

// Match implements pabt.Condition.
func (c *Condition) Match(v any) bool {
	if c.match == nil {
		return false
	}
	return c.match(v)
}

// Equals matches when the variable equals want after coercion to want's tag.
func Equals(name string, want any) *Condition {
	w, err := value.FromGo(want)
	return &Condition{key: name, match: func(got any) bool {
		if err != nil {
			return false
		}
		g, gerr := value.FromGo(got)
		if gerr != nil {
			return false
		}
		g, gerr = value.Coerce(g, w.Tag())
		return gerr == nil && g.Equal(w)
	}}
}

// Expr matches when source evaluates to true with the variable's value bound
// to "value".
func Expr(name, source string) *Condition {
	return &Condition{key: name, match: func(got any) bool {
		ok, err := behavior.Programs.Evaluate(source, map[string]any{"value": got})
		return err == nil && ok
	}}
}

// Effect records that an action sets a variable to a value.
type Effect struct {
	key   string
	value any
}

var _ pabt.Effect = (*Effect)(nil)

// Key implements pabt.Effect.
func (e *Effect) Key() any { return e.key }

// Value implements pabt.Effect.
func (e *Effect) Value() any { return e.value }

// Action is a planning action backed by a behavior tree node.
type Action struct {
	Name       string
	conditions []pabt.IConditions
	effects    pabt.Effects
	node       bt.Node
}

var _ pabt.IAction = (*Action)(nil)

// NewAction returns an action. node must not be nil.
func NewAction(name string, conditions []pabt.IConditions, effects pabt.Effects, node bt.Node) *Action {
	if node == nil {
		panic(fmt.Sprintf("planning.NewAction: nil node (action=%s)", name))
	}
	return &Action{Name: name, conditions: conditions, effects: effects, node: node}
}

// Conditions implements pabt.IAction.
func (a *Action) Conditions() []pabt.IConditions { return a.conditions }

// Effects implements pabt.IAction.
func (a *Action) Effects() pabt.Effects { return a.effects }

// Node implements pabt.IAction.
func (a *Action) Node() bt.Node { return a.node }

// SetAction returns an action that stores v into the variable named target,
// with the matching effect. Each precondition group is ANDed; groups are
// alternatives.
func SetAction(t *tree.ResolvedTree, name, target string, v value.Value, pre ...pabt.IConditions) *Action {
	effects := pabt.Effects{&Effect{key: target, value: v.Interface()}}
	node := bt.New(func([]bt.Node) (bt.Status, error) {
		variable, ok := t.VariableByName(target)
		if !ok {
			return bt.Failure, fmt.Errorf("action %s: no variable %q", name, target)
		}
		if err := variable.Store(v); err != nil {
			return bt.Failure, fmt.Errorf("action %s: %w", name, err)
		}
		return bt.Success, nil
	})
	return NewAction(name, pre, effects, node)
}

// Goal builds a goal from alternatives, each a group of ANDed conditions.
func Goal(groups ...[]pabt.Condition) []pabt.IConditions {
	out := make([]pabt.IConditions, len(groups))
	for i, g := range groups {
		out[i] = pabt.IConditions(g)
	}
	return out
}

// Plan creates a go-pabt plan for goal and returns its root node.
func Plan(s *State, goal []pabt.IConditions) (bt.Node, error) {
	plan, err := pabt.INew(s, goal)
	if err != nil {
		return nil, err
	}
	return plan.Node(), nil
}
