// Package planning runs go-pabt over the variables of a tree instance.
// Condition and effect keys are variable names; values are the natural Go
// representation of variable values.
package planning

import (
	"fmt"
	"log/slog"

	pabt "github.com/joeycumines/go-pabt"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
)

var _ pabt.IState = (*State)(nil)

// ActionGenerator produces actions for a failed condition on demand. When it
// returns any actions, the registry is not consulted.
type ActionGenerator func(failed pabt.Condition) ([]pabt.IAction, error)

// State is the planning state of one tree instance.
type State struct {
	tree      *tree.ResolvedTree
	actions   *ActionRegistry
	generator ActionGenerator
}

// NewState returns a state reading t's variables.
func NewState(t *tree.ResolvedTree) *State {
	return &State{tree: t, actions: NewActionRegistry()}
}

// SetActionGenerator installs gen.
func (s *State) SetActionGenerator(gen ActionGenerator) {
	s.generator = gen
}

// RegisterAction adds action under name.
func (s *State) RegisterAction(name string, action pabt.IAction) {
	s.actions.Register(name, action)
}

// Registry returns the registered actions.
func (s *State) Registry() *ActionRegistry {
	return s.actions
}

func (s *State) lookup(key any) (variable.Variable, error) {
	var (
		v  variable.Variable
		ok bool
	)
	switch k := key.(type) {
	case nil:
		return nil, fmt.Errorf("variable key cannot be nil")
	case string:
		v, ok = s.tree.VariableByName(k)
	case identity.Identity:
		v, ok = s.tree.Variable(k)
	case fmt.Stringer:
		v, ok = s.tree.VariableByName(k.String())
	default:
		return nil, fmt.Errorf("unsupported key type: %T", key)
	}
	if !ok {
		return nil, fmt.Errorf("no variable %v", key)
	}
	return v, nil
}

// Variable implements pabt.IState. Keys are variable names or identities.
func (s *State) Variable(key any) (any, error) {
	v, err := s.lookup(key)
	if err != nil {
		return nil, err
	}
	val, err := v.Load()
	if err != nil {
		return nil, err
	}
	return val.Interface(), nil
}

// Actions implements pabt.IState, returning the actions with an effect that
// satisfies failed.
func (s *State) Actions(failed pabt.Condition) ([]pabt.IAction, error) {
	registered := s.actions.All()
	if failed == nil {
		return registered, nil
	}
	var relevant []pabt.IAction
	handled := false
	if s.generator != nil {
		generated, err := s.generator(failed)
		if err != nil {
			slog.Debug("[Planning] action generator failed", "key", failed.Key(), "error", err)
		} else {
			for _, a := range generated {
				if hasRelevantEffect(a, failed) {
					relevant = append(relevant, a)
				}
			}
			handled = len(generated) > 0
		}
	}
	if !handled {
		for _, a := range registered {
			if hasRelevantEffect(a, failed) {
				relevant = append(relevant, a)
			}
		}
	}
	slog.Debug("[Planning] actions", "key", failed.Key(), "relevant", len(relevant))
	return relevant, nil
}

func hasRelevantEffect(a pabt.IAction, failed pabt.Condition) bool {
	key := failed.Key()
	for _, e := range a.Effects() {
		if e != nil && e.Key() == key && failed.Match(e.Value()) {
			return true
		}
	}
	return false
}
