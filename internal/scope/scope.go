// Package scope holds the variable tables a tree instance resolves against:
// a local table per instance, a static table per document definition, and
// one global table per process context.
//
// Tables are not safe for concurrent use. Static and global tables are shared
// between instances, and the host serializes access to them.
package scope

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
)

// ErrDuplicateVariable is returned when a table already holds a variable
// with the same identity.
var ErrDuplicateVariable = errors.New("duplicate variable")

// Namespace names one of the three tables.
type Namespace uint8

const (
	Local Namespace = iota
	Static
	Global
)

func (n Namespace) String() string {
	switch n {
	case Local:
		return "local"
	case Static:
		return "static"
	case Global:
		return "global"
	default:
		return fmt.Sprintf("Namespace(%d)", uint8(n))
	}
}

// ParseNamespace decodes a namespace name as produced by String.
func ParseNamespace(s string) (Namespace, error) {
	switch s {
	case "local", "":
		return Local, nil
	case "static":
		return Static, nil
	case "global":
		return Global, nil
	}
	return 0, fmt.Errorf("unknown namespace %q", s)
}

// For maps descriptor flags to the single namespace the descriptor is
// materialized into. Global wins over Static. Host-reflected variables are
// bound to one host instance and always live in the local table.
func For(flags variable.ScopeFlags) Namespace {
	if flags.Has(variable.FromHost) {
		if flags.Has(variable.Static) || flags.Has(variable.Global) {
			slog.Warn("[Scope] host variable cannot be shared; placing it in the local table", "flags", flags.String())
		}
		return Local
	}
	switch {
	case flags.Has(variable.Global):
		return Global
	case flags.Has(variable.Static):
		return Static
	default:
		return Local
	}
}

// Table is one namespace's variables, indexed by identity and by name, kept
// in insertion order.
type Table struct {
	order  []variable.Variable
	byID   map[identity.Identity]variable.Variable
	byName map[string]variable.Variable
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		byID:   make(map[identity.Identity]variable.Variable),
		byName: make(map[string]variable.Variable),
	}
}

func (t *Table) ensureInit() {
	if t.byID == nil {
		t.byID = make(map[identity.Identity]variable.Variable)
		t.byName = make(map[string]variable.Variable)
	}
}

// Add inserts v. A variable with the same identity must not already exist.
// When names collide, the first variable keeps the name.
func (t *Table) Add(v variable.Variable) error {
	t.ensureInit()
	if _, ok := t.byID[v.ID()]; ok {
		return fmt.Errorf("%w: %s (%s)", ErrDuplicateVariable, v.Name(), v.ID().Short())
	}
	t.byID[v.ID()] = v
	if _, ok := t.byName[v.Name()]; !ok && v.Name() != "" {
		t.byName[v.Name()] = v
	}
	t.order = append(t.order, v)
	return nil
}

// Lookup returns the variable with identity id.
func (t *Table) Lookup(id identity.Identity) (variable.Variable, bool) {
	if t == nil || id.IsEmpty() {
		return nil, false
	}
	v, ok := t.byID[id]
	return v, ok
}

// LookupName returns the first variable added under name.
func (t *Table) LookupName(name string) (variable.Variable, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.byName[name]
	return v, ok
}

// Contains reports whether a variable with identity id exists.
func (t *Table) Contains(id identity.Identity) bool {
	_, ok := t.Lookup(id)
	return ok
}

// Len returns the number of variables.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Variables returns the variables in insertion order.
func (t *Table) Variables() []variable.Variable {
	if t == nil {
		return nil
	}
	out := make([]variable.Variable, len(t.order))
	copy(out, t.order)
	return out
}

// Shared owns the tables that outlive a single tree instance: the global
// table and one static table per document definition.
type Shared struct {
	global  *Table
	statics map[identity.Identity]*Table
}

// NewShared returns an empty shared context.
func NewShared() *Shared {
	return &Shared{global: NewTable(), statics: make(map[identity.Identity]*Table)}
}

// Global returns the process-wide table.
func (s *Shared) Global() *Table {
	return s.global
}

// StaticFor returns the static table of the document definition docID,
// creating it on first use.
func (s *Shared) StaticFor(docID identity.Identity) *Table {
	t, ok := s.statics[docID]
	if !ok {
		t = NewTable()
		s.statics[docID] = t
	}
	return t
}

// Context is the resolution scope of one tree instance.
type Context struct {
	Local  *Table
	Static *Table
	Global *Table
}

// NewContext returns a context with a fresh local table and the shared
// tables for docID.
func NewContext(shared *Shared, docID identity.Identity) *Context {
	return &Context{
		Local:  NewTable(),
		Static: shared.StaticFor(docID),
		Global: shared.Global(),
	}
}

// Table returns the table for ns.
func (c *Context) Table(ns Namespace) *Table {
	switch ns {
	case Static:
		return c.Static
	case Global:
		return c.Global
	default:
		return c.Local
	}
}

// Lookup finds id searching local, then static, then global. The first
// match wins.
func (c *Context) Lookup(id identity.Identity) (variable.Variable, bool) {
	for _, t := range [...]*Table{c.Local, c.Static, c.Global} {
		if v, ok := t.Lookup(id); ok {
			return v, true
		}
	}
	return nil, false
}

// LookupName finds a variable by name in the same order as Lookup.
func (c *Context) LookupName(name string) (variable.Variable, bool) {
	for _, t := range [...]*Table{c.Local, c.Static, c.Global} {
		if v, ok := t.LookupName(name); ok {
			return v, true
		}
	}
	return nil, false
}

// In returns the namespace a variable was found in by Lookup.
func (c *Context) In(id identity.Identity) (Namespace, bool) {
	for _, ns := range [...]Namespace{Local, Static, Global} {
		if c.Table(ns).Contains(id) {
			return ns, true
		}
	}
	return 0, false
}
