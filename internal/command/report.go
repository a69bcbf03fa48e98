package command

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/scope"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
	"gopkg.in/yaml.v3"
)

// report is the serializable view of a tree instance.
type report struct {
	Document    string             `yaml:"document"`
	ID          string             `yaml:"id"`
	Head        string             `yaml:"head,omitempty"`
	Variables   []variableReport   `yaml:"variables"`
	Nodes       []nodeReport       `yaml:"nodes,omitempty"`
	Orphans     []string           `yaml:"orphans,omitempty"`
	Diagnostics []diagnosticReport `yaml:"diagnostics,omitempty"`
}

type variableReport struct {
	Scope string `yaml:"scope"`
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Host  string `yaml:"host,omitempty"`
	Value string `yaml:"value"`
	ID    string `yaml:"id"`
}

type nodeReport struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Depth    int      `yaml:"-"`
	Role     string   `yaml:"role,omitempty"`
	Bindings []string `yaml:"bindings,omitempty"`
}

type diagnosticReport struct {
	Severity string `yaml:"severity"`
	Message  string `yaml:"message"`
}

func newReport(t *tree.ResolvedTree) report {
	doc := t.Document()
	r := report{
		Document:  doc.Name,
		ID:        doc.ID.String(),
		Variables: variableReports(t),
	}
	if head, ok := t.Head(); ok {
		r.Head = nodeName(head)
		seen := make(map[identity.Identity]bool)
		r.Nodes = nodeReports(t, head, 0, "", seen, r.Nodes)
	}
	for _, id := range t.Orphans() {
		name := id.Short()
		if n, ok := doc.Lookup(id); ok {
			name = nodeName(n)
		}
		r.Orphans = append(r.Orphans, name)
	}
	for _, d := range t.Diagnostics() {
		r.Diagnostics = append(r.Diagnostics, diagnosticReport{Severity: d.Severity.String(), Message: d.Error()})
	}
	return r
}

func variableReports(t *tree.ResolvedTree) []variableReport {
	var out []variableReport
	for _, ns := range []scope.Namespace{scope.Local, scope.Static, scope.Global} {
		for _, v := range t.Scope().Table(ns).Variables() {
			vr := variableReport{
				Scope: ns.String(),
				Name:  v.Name(),
				Type:  v.Type().String(),
				ID:    v.ID().Short(),
			}
			if h, ok := v.(*variable.Host); ok {
				vr.Host = h.Descriptor().HostPath
			}
			if x, err := v.Load(); err != nil {
				vr.Value = "<" + err.Error() + ">"
			} else {
				vr.Value = value.Format(x)
			}
			out = append(out, vr)
		}
	}
	return out
}

func nodeReports(t *tree.ResolvedTree, n *tree.Node, depth int, role string, seen map[identity.Identity]bool, out []nodeReport) []nodeReport {
	nr := nodeReport{Name: nodeName(n), Kind: n.Kind, Depth: depth, Role: role}
	for _, f := range n.Bindings {
		nr.Bindings = append(nr.Bindings, f.Name+"="+f.Binding.String())
	}
	for _, p := range n.Parameters {
		nr.Bindings = append(nr.Bindings, p.Name+"="+p.Binding.String())
	}
	out = append(out, nr)
	if seen[n.ID] {
		return out
	}
	seen[n.ID] = true

	visit := func(id identity.Identity, role string) {
		if child, ok := t.Node(id); ok {
			out = nodeReports(t, child, depth+1, role, seen, out)
		}
	}
	for _, id := range n.Services.Targets() {
		visit(id, "service")
	}
	for _, id := range n.Children.Targets() {
		visit(id, "")
	}
	for _, w := range n.Branches.Entries() {
		visit(w.Target, fmt.Sprintf("weight %d", w.Weight))
	}
	return out
}

func nodeName(n *tree.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// writeText renders r for a terminal.
func (r report) writeText(w io.Writer, st styles) {
	_, _ = fmt.Fprintf(w, "%s %s\n", st.render(st.title, r.Document), st.render(st.muted, r.ID))
	if r.Head != "" {
		_, _ = fmt.Fprintf(w, "head: %s\n", r.Head)
	}

	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, st.render(st.title, "Variables"))
	r.writeVariables(w)

	if len(r.Nodes) > 0 {
		_, _ = fmt.Fprintln(w, "")
		_, _ = fmt.Fprintln(w, st.render(st.title, "Nodes"))
		for _, n := range r.Nodes {
			line := strings.Repeat("  ", n.Depth+1) + n.Name + " " + st.render(st.muted, "["+n.Kind+"]")
			if n.Role != "" {
				line += " " + st.render(st.muted, "("+n.Role+")")
			}
			if len(n.Bindings) > 0 {
				line += " " + strings.Join(n.Bindings, " ")
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}

	if len(r.Orphans) > 0 {
		_, _ = fmt.Fprintln(w, "")
		_, _ = fmt.Fprintln(w, st.render(st.title, "Unreachable"))
		for _, name := range r.Orphans {
			_, _ = fmt.Fprintln(w, "  "+st.render(st.muted, name))
		}
	}

	if len(r.Diagnostics) > 0 {
		_, _ = fmt.Fprintln(w, "")
		_, _ = fmt.Fprintln(w, st.render(st.title, "Diagnostics"))
		for _, d := range r.Diagnostics {
			style := st.warning
			if d.Severity == tree.Error.String() {
				style = st.error
			}
			_, _ = fmt.Fprintf(w, "  %s %s\n", st.render(style, d.Severity+":"), d.Message)
		}
	}
}

func (r report) writeVariables(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  SCOPE\tNAME\tTYPE\tVALUE\tHOST\tID")
	for _, v := range r.Variables {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n", v.Scope, v.Name, v.Type, v.Value, v.Host, v.ID)
	}
	_ = tw.Flush()
}

// writeYAML renders r as a YAML document.
func (r report) writeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
