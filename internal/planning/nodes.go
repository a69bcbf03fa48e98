package planning

import (
	"log/slog"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/behavior"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
)

// SetNodeActions turns every reachable set node of t whose value is a
// constant into an unconditional action named after the node. Nodes whose
// target is unresolved or whose value is a reference are skipped.
func SetNodeActions(t *tree.ResolvedTree) []*Action {
	var out []*Action
	for _, id := range t.Reachable() {
		n, ok := t.Node(id)
		if !ok || n.Kind != behavior.KindSet {
			continue
		}
		target, ok := n.Field(behavior.FieldTarget)
		if !ok {
			continue
		}
		src, ok := n.Field(behavior.FieldValue)
		if !ok || !src.IsConstant() {
			continue
		}
		dst, ok := target.Variable()
		if !ok {
			continue
		}
		v, err := src.Value()
		if err != nil {
			slog.Debug("[Planning] skipped set node", "node", n.Name, "error", err)
			continue
		}
		name := n.Name
		if name == "" {
			name = n.ID.Short()
		}
		out = append(out, SetAction(t, name, dst.Name(), v))
	}
	return out
}

// RegisterSetNodes registers SetNodeActions(t) for the state's tree and
// returns how many were added.
func (s *State) RegisterSetNodes() int {
	actions := SetNodeActions(s.tree)
	for _, a := range actions {
		s.RegisterAction(a.Name, a)
	}
	return len(actions)
}
