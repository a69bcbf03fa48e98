package tree

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/binding"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/graph"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/scope"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
)

// ErrDanglingReference is wrapped by diagnostics for node references whose
// target is not in the document.
var ErrDanglingReference = errors.New("dangling node reference")

// Option configures Instantiate.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	assets        value.AssetResolver
	registry      *variable.HostRegistry
	hostVariables bool
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithAssets sets the resolver for object variables holding an asset id.
func WithAssets(r value.AssetResolver) Option {
	return func(o *options) {
		o.assets = r
	}
}

// WithHostRegistry sets the accessor table used for host variables.
func WithHostRegistry(r *variable.HostRegistry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithHostVariables also materializes a local variable for every member of
// the host not already declared by the document.
func WithHostVariables() Option {
	return func(o *options) {
		o.hostVariables = true
	}
}

// ResolvedTree is one live instance of a document.
type ResolvedTree struct {
	doc       *Document
	host      any
	scope     *scope.Context
	nodes     *graph.Arena[*Node]
	reachable []identity.Identity
	diags     Diagnostics
}

// Instantiate builds a tree instance of doc bound to host. Static variables
// are shared through shared with other instances of the same document,
// global variables with every instance; a nil shared gives the instance
// private static and global tables.
//
// A tree is always returned. The error, if any, is a *multierror.Error of
// the error-level diagnostics.
func Instantiate(doc *Document, host any, shared *scope.Shared, opts ...Option) (*ResolvedTree, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = variable.NewHostRegistry()
	}
	if shared == nil {
		shared = scope.NewShared()
	}
	t := &ResolvedTree{
		doc:   doc,
		host:  host,
		scope: scope.NewContext(shared, doc.ID),
		nodes: graph.NewArena[*Node](),
	}

	for _, d := range doc.Variables {
		t.materialize(d, scope.For(d.Flags), &o)
	}
	for _, d := range doc.Globals {
		if d.IsHost() {
			t.diagnose(Error, identity.Empty, d.Name, errors.New("host variable cannot be global"))
			continue
		}
		t.materialize(d, scope.Global, &o)
	}
	if o.hostVariables && host != nil {
		for _, d := range variable.Reflected(o.registry, reflect.TypeOf(host)) {
			if _, ok := t.scope.Local.Lookup(d.ID); ok {
				continue
			}
			if _, ok := t.scope.Local.LookupName(d.Name); ok {
				continue
			}
			t.materialize(d, scope.Local, &o)
		}
	}

	t.link(&o)

	for _, d := range t.diags {
		o.logger.Warn("[Tree] "+d.Error(), "document", doc.Name, "severity", d.Severity.String())
	}
	o.logger.Debug("[Tree] instantiated",
		"document", doc.Name,
		"local", t.scope.Local.Len(),
		"static", t.scope.Static.Len(),
		"global", t.scope.Global.Len(),
		"nodes", len(t.reachable),
		"diagnostics", len(t.diags))
	return t, t.diags.Err()
}

func (t *ResolvedTree) diagnose(sev Severity, node identity.Identity, subject string, err error) {
	t.diags = append(t.diags, Diagnostic{Severity: sev, Node: node, Subject: subject, Err: err})
}

// materialize creates the cell for d in namespace ns. Shared namespaces
// keep a cell another instance already created.
func (t *ResolvedTree) materialize(d variable.Descriptor, ns scope.Namespace, o *options) {
	subject := "variable " + d.Name
	if err := d.Validate(); err != nil && !errors.Is(err, value.ErrParseFailure) {
		t.diagnose(Error, identity.Empty, subject, err)
		return
	}
	table := t.scope.Table(ns)
	if ns != scope.Local && table.Contains(d.ID) {
		return
	}

	var cell variable.Variable
	if d.IsHost() {
		if t.host == nil {
			t.diagnose(Error, identity.Empty, subject, variable.ErrNoHost)
			return
		}
		h, err := variable.NewHost(d, t.host, o.registry)
		if err != nil {
			t.diagnose(Error, identity.Empty, subject, err)
			return
		}
		cell = h
	} else {
		inline, err := variable.NewInline(d, variable.WithAssets(o.assets))
		if err != nil {
			t.diagnose(Warning, identity.Empty, subject, err)
			fallback, _ := value.TryParse(d.Type, d.Default)
			inline = variable.NewInlineValue(d, fallback, variable.WithAssets(o.assets))
		}
		cell = inline
	}
	if err := table.Add(cell); err != nil {
		t.diagnose(Error, identity.Empty, subject, err)
	}
}

// link copies every node reachable from the head into the instance and
// resolves its bindings.
func (t *ResolvedTree) link(o *options) {
	doc := t.doc
	if doc.Head.IsEmpty() {
		t.diagnose(Warning, identity.Empty, "head", errors.New("head not set"))
		return
	}
	if _, ok := doc.Lookup(doc.Head); !ok {
		t.diagnose(Warning, identity.Empty, "head", fmt.Errorf("%w: %s", ErrDanglingReference, doc.Head.Short()))
		return
	}
	design := graph.NewArena[*Node]()
	for _, n := range doc.Nodes {
		if !design.Add(n.ID, n) {
			t.diagnose(Error, identity.Empty, "node "+n.Name, errors.New("node has an empty identity"))
		}
	}
	t.reachable = graph.Reachable(doc.Head, func(id identity.Identity) ([]identity.Identity, bool) {
		n, ok := design.Get(id)
		if !ok {
			return nil, false
		}
		return n.Edges(), true
	})

	for _, id := range t.reachable {
		src, _ := design.Get(id)
		n := src.clone()
		t.nodes.Add(id, n)
		for _, target := range n.Edges() {
			if _, ok := graph.To(target).Resolve(design); !ok {
				t.diagnose(Warning, id, "reference", fmt.Errorf("%w: %s", ErrDanglingReference, target.Short()))
			}
		}
		for _, f := range n.Bindings {
			t.resolve(id, "field "+f.Name, f.Binding)
		}
		for _, p := range n.Parameters {
			t.resolve(id, "parameter "+p.Name, &p.Binding)
		}
	}
}

func (t *ResolvedTree) resolve(node identity.Identity, subject string, b *binding.Binding) {
	if b.IsConstant() {
		return
	}
	v, ok := b.Resolve(t.scope)
	if !ok {
		t.diagnose(Error, node, subject, fmt.Errorf("%w: %s", binding.ErrUnresolvedReference, b.Reference.Short()))
		return
	}
	if b.Tag != value.Generic && v.Type() != value.Generic && v.Type() != b.Tag {
		t.diagnose(Error, node, subject, &value.ConversionError{From: v.Type(), To: b.Tag.String(), Value: v.Name()})
	}
}

// Document returns the definition the tree was built from.
func (t *ResolvedTree) Document() *Document {
	return t.doc
}

// Host returns the host instance.
func (t *ResolvedTree) Host() any {
	return t.host
}

// Scope returns the instance's tables.
func (t *ResolvedTree) Scope() *scope.Context {
	return t.scope
}

// Node returns the instance node with identity id. Only nodes reachable
// from the head are materialized.
func (t *ResolvedTree) Node(id identity.Identity) (*Node, bool) {
	return t.nodes.Get(id)
}

// Head returns the root node, if set and present.
func (t *ResolvedTree) Head() (*Node, bool) {
	return t.nodes.Get(t.doc.Head)
}

// Resolve follows ref within the instance.
func (t *ResolvedTree) Resolve(ref graph.Reference) (*Node, bool) {
	return t.nodes.Resolve(ref)
}

// Reachable returns the materialized node ids in depth-first order from the
// head.
func (t *ResolvedTree) Reachable() []identity.Identity {
	out := make([]identity.Identity, len(t.reachable))
	copy(out, t.reachable)
	return out
}

// Orphans returns the document nodes not reachable from the head.
func (t *ResolvedTree) Orphans() []identity.Identity {
	return graph.Orphans(t.doc.NodeIDs(), t.reachable)
}

// Binding returns the named field binding of a node.
func (t *ResolvedTree) Binding(node identity.Identity, field string) (*binding.Binding, bool) {
	n, ok := t.nodes.Get(node)
	if !ok {
		return nil, false
	}
	return n.Field(field)
}

// LookupVariable returns the variable id in namespace ns.
func (t *ResolvedTree) LookupVariable(ns scope.Namespace, id identity.Identity) (variable.Variable, bool) {
	return t.scope.Table(ns).Lookup(id)
}

// Variable finds id in local, static, then global scope.
func (t *ResolvedTree) Variable(id identity.Identity) (variable.Variable, bool) {
	return t.scope.Lookup(id)
}

// VariableByName finds a variable by name in local, static, then global
// scope.
func (t *ResolvedTree) VariableByName(name string) (variable.Variable, bool) {
	return t.scope.LookupName(name)
}

// Diagnostics returns the problems found while instantiating.
func (t *ResolvedTree) Diagnostics() Diagnostics {
	return t.diags
}
