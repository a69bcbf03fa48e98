// Package document reads behavior-tree documents from the graph store's
// YAML format. JSON documents are accepted as well.
//
// Identities are written as UUIDs. Any other non-empty string is taken as a
// seed, so hand-written documents can use readable keys ("root", "hp") and
// still get stable identities. Binding references may also name a variable.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/binding"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/graph"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
	"gopkg.in/yaml.v3"
)

type file struct {
	ID        string           `yaml:"id"`
	Name      string           `yaml:"name"`
	Head      string           `yaml:"head"`
	Variables []variableRecord `yaml:"variables"`
	Globals   []variableRecord `yaml:"globals"`
	Nodes     []nodeRecord     `yaml:"nodes"`
}

type variableRecord struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	Type       value.TypeTag `yaml:"type"`
	Default    string        `yaml:"default"`
	Scope      words         `yaml:"scope"`
	Host       string        `yaml:"host"`
	ObjectType string        `yaml:"objectType"`
}

type nodeRecord struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Kind       string         `yaml:"kind"`
	Parent     string         `yaml:"parent"`
	Children   []string       `yaml:"children"`
	Branches   []branchRecord `yaml:"branches"`
	Services   []string       `yaml:"services"`
	Bindings   []fieldRecord  `yaml:"bindings"`
	Parameters []fieldRecord  `yaml:"parameters"`
	Expression string         `yaml:"expression"`
	Method     string         `yaml:"method"`
}

type branchRecord struct {
	Target string `yaml:"target"`
	Weight *int   `yaml:"weight"`
}

type fieldRecord struct {
	Name  string        `yaml:"name"`
	Type  value.TypeTag `yaml:"type"`
	Value string        `yaml:"value"`
	Ref   string        `yaml:"ref"`
}

// words accepts either a scalar or a sequence of scalars.
type words []string

func (w *words) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value != "" {
			*w = strings.Fields(strings.ReplaceAll(n.Value, ",", " "))
		}
		return nil
	case yaml.SequenceNode:
		var s []string
		if err := n.Decode(&s); err != nil {
			return err
		}
		*w = s
		return nil
	}
	return fmt.Errorf("line %d: expected a scalar or a sequence", n.Line)
}

// Key converts a document key to an identity: UUIDs parse as themselves and
// anything else is used as a seed. The empty key is the empty identity.
func Key(s string) identity.Identity {
	s = strings.TrimSpace(s)
	if s == "" {
		return identity.Empty
	}
	if id, err := identity.Parse(s); err == nil {
		return id
	}
	return identity.FromSeed(s)
}

// Load reads the document at path.
func Load(path string) (*tree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	return doc, nil
}

// Decode reads a document from r.
func Decode(r io.Reader) (*tree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return Parse(data)
}

// Parse decodes a document. Unknown fields are rejected.
func Parse(data []byte) (*tree.Document, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	return f.build()
}

func (f *file) build() (*tree.Document, error) {
	doc := &tree.Document{
		ID:   Key(f.ID),
		Name: f.Name,
		Head: Key(f.Head),
	}
	if doc.ID.IsEmpty() {
		doc.ID = identity.FromSeed("document:" + f.Name)
	}
	byName := make(map[string]variable.Descriptor)
	byID := make(map[identity.Identity]variable.Descriptor)
	var err error
	if doc.Variables, err = descriptors(f.Variables, 0); err != nil {
		return nil, err
	}
	if doc.Globals, err = descriptors(f.Globals, variable.Global); err != nil {
		return nil, err
	}
	for _, list := range [][]variable.Descriptor{doc.Globals, doc.Variables} {
		for _, d := range list {
			byName[d.Name] = d
			byID[d.ID] = d
		}
	}
	lookup := func(ref string) (variable.Descriptor, identity.Identity) {
		if d, ok := byName[ref]; ok {
			return d, d.ID
		}
		id := Key(ref)
		d, ok := byID[id]
		if !ok {
			return variable.Descriptor{}, id
		}
		return d, id
	}

	seen := make(map[identity.Identity]bool)
	for i, rec := range f.Nodes {
		n, err := rec.node(lookup)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, rec.Name, err)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("node %d (%s): duplicate id %s", i, rec.Name, rec.ID)
		}
		seen[n.ID] = true
		doc.Nodes = append(doc.Nodes, n)
	}
	return doc, nil
}

func descriptors(recs []variableRecord, extra variable.ScopeFlags) ([]variable.Descriptor, error) {
	out := make([]variable.Descriptor, 0, len(recs))
	for i, r := range recs {
		flags, err := variable.ParseScopeFlags(r.Scope...)
		if err != nil {
			return nil, fmt.Errorf("variable %d (%s): %w", i, r.Name, err)
		}
		if r.Host != "" {
			flags |= variable.FromHost
		}
		d := variable.Descriptor{
			ID:         Key(r.ID),
			Name:       r.Name,
			Type:       r.Type,
			Default:    r.Default,
			Flags:      flags | extra,
			HostPath:   r.Host,
			ObjectType: r.ObjectType,
		}
		if d.ID.IsEmpty() && d.Name != "" {
			d.ID = identity.FromSeed(d.Name)
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *nodeRecord) node(lookup func(string) (variable.Descriptor, identity.Identity)) (*tree.Node, error) {
	n := &tree.Node{
		ID:         Key(r.ID),
		Name:       r.Name,
		Kind:       r.Kind,
		Parent:     graph.To(Key(r.Parent)),
		Expression: r.Expression,
		Method:     r.Method,
	}
	if n.ID.IsEmpty() {
		if r.Name == "" {
			return nil, errors.New("node has neither id nor name")
		}
		n.ID = identity.FromSeed(r.Name)
	}
	if n.Name == "" {
		if _, err := identity.Parse(strings.TrimSpace(r.ID)); err != nil {
			n.Name = strings.TrimSpace(r.ID)
		}
	}
	for _, c := range r.Children {
		n.Children.Add(Key(c))
	}
	for _, b := range r.Branches {
		if b.Weight == nil {
			n.Branches.Add(Key(b.Target))
		} else {
			n.Branches.AddWeighted(Key(b.Target), *b.Weight)
		}
	}
	for _, s := range r.Services {
		n.Services.Add(Key(s))
	}
	for _, fr := range r.Bindings {
		b, err := fr.binding(lookup)
		if err != nil {
			return nil, err
		}
		n.Bindings = append(n.Bindings, tree.Field{Name: fr.Name, Binding: b})
	}
	for _, fr := range r.Parameters {
		b, err := fr.binding(lookup)
		if err != nil {
			return nil, err
		}
		n.Parameters = append(n.Parameters, &binding.Parameter{Binding: *b, Name: fr.Name})
	}
	return n, nil
}

func (r *fieldRecord) binding(lookup func(string) (variable.Descriptor, identity.Identity)) (*binding.Binding, error) {
	if r.Name == "" {
		return nil, errors.New("binding has no name")
	}
	if r.Ref != "" {
		if r.Value != "" {
			return nil, fmt.Errorf("binding %s has both value and ref", r.Name)
		}
		d, id := lookup(r.Ref)
		tag := r.Type
		if tag == value.Invalid {
			tag = value.Generic
		}
		if d.ID.IsEmpty() {
			return binding.NewReference(tag, id), nil
		}
		b := &binding.Binding{Tag: tag}
		b.SetReference(&d)
		return b, nil
	}
	if r.Type == value.Invalid {
		return nil, fmt.Errorf("binding %s has no type", r.Name)
	}
	b, err := binding.NewLiteral(r.Type, r.Value)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", r.Name, err)
	}
	return b, nil
}
