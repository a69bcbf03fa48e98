// Package tree materializes a design-time behavior-tree document into a
// tree instance: variables are created in their scope tables, bindings of
// every node reachable from the head are resolved, and problems are reported
// as diagnostics instead of preventing materialization.
package tree

import (
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/binding"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/graph"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
)

// Document is the design-time tree definition as read from the graph store.
type Document struct {
	// ID identifies the document definition. Instances of one definition
	// share its static table.
	ID        identity.Identity
	Name      string
	Head      identity.Identity
	Variables []variable.Descriptor
	// Globals are materialized into the global table regardless of flags.
	Globals []variable.Descriptor
	Nodes   []*Node
}

// Field is a named binding of a node.
type Field struct {
	Name    string
	Binding *binding.Binding
}

// Node is a node record. Children, Branches and Services reference other
// nodes of the same document.
type Node struct {
	ID     identity.Identity
	Name   string
	Kind   string
	Parent graph.Reference

	Children graph.List
	Branches graph.WeightedList
	Services graph.List

	Bindings   []Field
	Parameters []*binding.Parameter

	// Expression is the condition source of condition nodes.
	Expression string
	// Method is the host method invoked by call nodes.
	Method string
}

// Field returns the binding named name.
func (n *Node) Field(name string) (*binding.Binding, bool) {
	for _, f := range n.Bindings {
		if f.Name == name {
			return f.Binding, true
		}
	}
	return nil, false
}

// Parameter returns the parameter named name.
func (n *Node) Parameter(name string) (*binding.Parameter, bool) {
	for _, p := range n.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Edges returns every outgoing reference: children, then branches, then
// services.
func (n *Node) Edges() []identity.Identity {
	out := n.Children.Targets()
	out = append(out, n.Branches.Targets()...)
	return append(out, n.Services.Targets()...)
}

// clone copies the node with fresh, unresolved bindings.
func (n *Node) clone() *Node {
	c := *n
	c.Bindings = make([]Field, len(n.Bindings))
	for i, f := range n.Bindings {
		c.Bindings[i] = Field{Name: f.Name, Binding: f.Binding.Clone()}
	}
	c.Parameters = make([]*binding.Parameter, len(n.Parameters))
	for i, p := range n.Parameters {
		c.Parameters[i] = p.Clone()
	}
	return &c
}

// Lookup returns the document node with identity id.
func (d *Document) Lookup(id identity.Identity) (*Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// NodeIDs returns node identities in document order.
func (d *Document) NodeIDs() []identity.Identity {
	out := make([]identity.Identity, len(d.Nodes))
	for i, n := range d.Nodes {
		out[i] = n.ID
	}
	return out
}
