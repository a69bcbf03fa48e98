// Package behavior compiles tree instances into go-behaviortree nodes and
// runs them. Every value a node consumes is read through its bindings, and
// every value it produces is written through them.
package behavior

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"reflect"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/binding"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
)

// Node kinds understood by Compile.
const (
	KindSequence    = "sequence"
	KindSelector    = "selector"
	KindProbability = "probability"
	KindInverter    = "inverter"
	KindCondition   = "condition"
	KindSet         = "set"
	KindCall        = "call"
	KindSucceed     = "succeed"
	KindFail        = "fail"
)

// Field names read by the built-in kinds.
const (
	FieldTarget = "target"
	FieldValue  = "value"
	FieldResult = "result"
)

var (
	// ErrCycle is returned when a node is its own ancestor.
	ErrCycle = errors.New("cycle in behavior tree")
	// ErrUnknownKind is returned for node kinds with no compiler.
	ErrUnknownKind = errors.New("unknown node kind")
	// ErrMissingField is returned when a node lacks a field its kind needs.
	ErrMissingField = errors.New("missing field")
	// ErrUnknownMethod is returned when a call node names no method.
	ErrUnknownMethod = errors.New("unknown method")
)

// Option configures Compile.
type Option func(*compiler)

// WithSeed seeds the generator probability nodes draw from.
func WithSeed(seed uint64) Option {
	return func(c *compiler) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithMethod registers fn under name for call nodes. Registered methods take
// precedence over methods of the host.
func WithMethod(name string, fn any) Option {
	return func(c *compiler) {
		c.methods[name] = fn
	}
}

// WithPrograms sets the expression cache. The default is Programs.
func WithPrograms(p *ProgramCache) Option {
	return func(c *compiler) {
		c.programs = p
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *compiler) {
		c.logger = l
	}
}

// WithContext sets the context injected into call parameters.
func WithContext(ctx context.Context) Option {
	return func(c *compiler) {
		c.ctx = ctx
	}
}

type compiler struct {
	tree     *tree.ResolvedTree
	rng      *rand.Rand
	methods  map[string]any
	programs *ProgramCache
	logger   *slog.Logger
	ctx      context.Context
	onPath   map[identity.Identity]bool
}

// Compile turns the instance's head into a behavior tree node.
func Compile(t *tree.ResolvedTree, opts ...Option) (bt.Node, error) {
	c := &compiler{
		tree:     t,
		methods:  make(map[string]any),
		programs: Programs,
		logger:   slog.Default(),
		ctx:      context.Background(),
		onPath:   make(map[identity.Identity]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		WithSeed(rand.Uint64())(c)
	}
	head, ok := t.Head()
	if !ok {
		return nil, errors.New("tree has no head")
	}
	return c.compile(head)
}

func (c *compiler) compile(n *tree.Node) (bt.Node, error) {
	if c.onPath[n.ID] {
		return nil, fmt.Errorf("%w: node %s (%s)", ErrCycle, n.Name, n.ID.Short())
	}
	c.onPath[n.ID] = true
	defer delete(c.onPath, n.ID)

	node, err := c.compileKind(n)
	if err != nil {
		return nil, err
	}
	if n.Services.Len() == 0 {
		return node, nil
	}
	services, err := c.nodes(n.Services.Targets())
	if err != nil {
		return nil, err
	}
	return withServices(services, node), nil
}

func (c *compiler) nodes(ids []identity.Identity) ([]bt.Node, error) {
	out := make([]bt.Node, 0, len(ids))
	for _, id := range ids {
		child, ok := c.tree.Node(id)
		if !ok {
			c.logger.Debug("[Behavior] skipping missing node", "id", id.Short())
			continue
		}
		node, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func (c *compiler) compileKind(n *tree.Node) (bt.Node, error) {
	switch n.Kind {
	case KindSequence, KindSelector, KindInverter:
		children, err := c.nodes(n.Children.Targets())
		if err != nil {
			return nil, err
		}
		switch n.Kind {
		case KindSequence:
			return bt.New(bt.Sequence, children...), nil
		case KindSelector:
			return bt.New(bt.Selector, children...), nil
		default:
			return bt.New(bt.Not(bt.Sequence), children...), nil
		}
	case KindProbability:
		return c.probability(n)
	case KindCondition:
		return c.condition(n)
	case KindSet:
		return c.set(n)
	case KindCall:
		return c.call(n)
	case KindSucceed:
		return bt.New(func([]bt.Node) (bt.Status, error) { return bt.Success, nil }), nil
	case KindFail:
		return bt.New(func([]bt.Node) (bt.Status, error) { return bt.Failure, nil }), nil
	}
	return nil, fmt.Errorf("%w %q at node %s", ErrUnknownKind, n.Kind, n.Name)
}

// withServices ticks each service before the owner on every tick. Service
// statuses are ignored; service errors abort the tick.
func withServices(services []bt.Node, owner bt.Node) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		for _, s := range services {
			if _, err := s.Tick(); err != nil {
				return bt.Failure, err
			}
		}
		return owner.Tick()
	})
}

// probability picks one branch by weight and ticks it until it stops
// running, then picks again on the next tick.
func (c *compiler) probability(n *tree.Node) (bt.Node, error) {
	entries := n.Branches.Entries()
	var (
		branches []bt.Node
		weights  []int
	)
	for _, e := range entries {
		child, ok := c.tree.Resolve(e.Reference)
		if !ok || e.Weight <= 0 {
			continue
		}
		node, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		branches = append(branches, node)
		weights = append(weights, e.Weight)
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	current := -1
	rng := c.rng
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if total == 0 {
			return bt.Failure, nil
		}
		if current < 0 {
			r := rng.IntN(total)
			for i, w := range weights {
				if r < w {
					current = i
					break
				}
				r -= w
			}
		}
		st, err := branches[current].Tick()
		if err != nil || st != bt.Running {
			current = -1
		}
		return st, err
	}), nil
}

func (c *compiler) condition(n *tree.Node) (bt.Node, error) {
	if n.Expression == "" {
		b, ok := n.Field(FieldValue)
		if !ok {
			return nil, fmt.Errorf("%w %q at condition %s", ErrMissingField, FieldValue, n.Name)
		}
		return bt.New(func([]bt.Node) (bt.Status, error) {
			ok, err := binding.Read[bool](b)
			if err != nil {
				return bt.Failure, fmt.Errorf("condition %s: %w", n.Name, err)
			}
			return status(ok), nil
		}), nil
	}
	if _, err := c.programs.Compile(n.Expression); err != nil {
		return nil, fmt.Errorf("condition %s: %w", n.Name, err)
	}
	programs := c.programs
	return bt.New(func([]bt.Node) (bt.Status, error) {
		env, err := Environment(c.tree)
		if err != nil {
			return bt.Failure, fmt.Errorf("condition %s: %w", n.Name, err)
		}
		ok, err := programs.Evaluate(n.Expression, env)
		if err != nil {
			return bt.Failure, fmt.Errorf("condition %s: %w", n.Name, err)
		}
		return status(ok), nil
	}), nil
}

func (c *compiler) set(n *tree.Node) (bt.Node, error) {
	target, ok := n.Field(FieldTarget)
	if !ok {
		return nil, fmt.Errorf("%w %q at set %s", ErrMissingField, FieldTarget, n.Name)
	}
	src, ok := n.Field(FieldValue)
	if !ok {
		return nil, fmt.Errorf("%w %q at set %s", ErrMissingField, FieldValue, n.Name)
	}
	return bt.New(func([]bt.Node) (bt.Status, error) {
		v, err := src.Value()
		if err != nil {
			return bt.Failure, fmt.Errorf("set %s: %w", n.Name, err)
		}
		if err := target.Store(v); err != nil {
			return bt.Failure, fmt.Errorf("set %s: %w", n.Name, err)
		}
		return bt.Success, nil
	}), nil
}

// handle is the execution handle injected into NodeHandle parameters.
type handle struct {
	id identity.Identity
}

func (h *handle) NodeID() identity.Identity { return h.id }

func (c *compiler) method(name string) (any, bool) {
	if fn, ok := c.methods[name]; ok {
		return fn, true
	}
	host := c.tree.Host()
	if host == nil {
		return nil, false
	}
	m := reflect.ValueOf(host).MethodByName(name)
	if !m.IsValid() {
		return nil, false
	}
	return m.Interface(), true
}

func (c *compiler) call(n *tree.Node) (bt.Node, error) {
	fn, ok := c.method(n.Method)
	if !ok {
		return nil, fmt.Errorf("%w %q at call %s", ErrUnknownMethod, n.Method, n.Name)
	}
	ft := reflect.TypeOf(fn)
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("call %s: method %q is %s, not a function", n.Name, n.Method, ft)
	}
	if ft.NumIn() != len(n.Parameters) {
		return nil, fmt.Errorf("call %s: %s takes %d arguments, node has %d parameters", n.Name, n.Method, ft.NumIn(), len(n.Parameters))
	}
	params := make([]*binding.Parameter, len(n.Parameters))
	for i, p := range n.Parameters {
		params[i] = p
		if p.Type == nil {
			p.Type = ft.In(i)
		}
	}
	result, _ := n.Field(FieldResult)
	cc := binding.CallContext{Handle: &handle{id: n.ID}, Ctx: c.ctx}
	return bt.New(func([]bt.Node) (bt.Status, error) {
		out, err := binding.Call(fn, params, cc)
		if err != nil {
			return bt.Failure, fmt.Errorf("call %s: %w", n.Name, err)
		}
		if result != nil {
			if err := result.Store(out); err != nil {
				return bt.Failure, fmt.Errorf("call %s: %w", n.Name, err)
			}
			return bt.Success, nil
		}
		if out.Tag() == value.Bool {
			ok, _ := value.As[bool](out)
			return status(ok), nil
		}
		return bt.Success, nil
	}), nil
}

func status(ok bool) bt.Status {
	if ok {
		return bt.Success
	}
	return bt.Failure
}

// Environment returns the instance's variables by name, as their natural Go
// values. Local names shadow static ones, which shadow globals.
func Environment(t *tree.ResolvedTree) (map[string]any, error) {
	s := t.Scope()
	env := make(map[string]any)
	for _, vars := range [][]variable.Variable{s.Global.Variables(), s.Static.Variables(), s.Local.Variables()} {
		for _, v := range vars {
			val, err := v.Load()
			if err != nil {
				return nil, err
			}
			env[v.Name()] = val.Interface()
		}
	}
	return env, nil
}
