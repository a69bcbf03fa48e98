package binding

import (
	"context"
	"fmt"
	"reflect"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// CallContext carries what a reflected call may inject into its arguments.
type CallContext struct {
	// Handle is the calling node's execution handle.
	Handle value.Handle
	// Ctx is the cancellation context of the call. Nil means
	// context.Background.
	Ctx context.Context
}

func (cc CallContext) context() context.Context {
	if cc.Ctx == nil {
		return context.Background()
	}
	return cc.Ctx
}

// Parameter is a binding feeding one argument of a reflected method call.
type Parameter struct {
	Binding
	Name string
	// Type is the exact Go type of the method parameter.
	Type reflect.Type
}

// NewParameter returns a parameter for an argument of type rt, tagged by
// rt's mapping.
func NewParameter(name string, rt reflect.Type) *Parameter {
	tag := value.TagOf(rt)
	return &Parameter{
		Binding: Binding{Tag: tag, Constant: value.Zero(tag)},
		Name:    name,
		Type:    rt,
	}
}

// Clone returns an unresolved copy for a new tree instance.
func (p *Parameter) Clone() *Parameter {
	return &Parameter{Binding: *p.Binding.Clone(), Name: p.Name, Type: p.Type}
}

// Argument materializes the parameter as a value of exactly p.Type.
// context.Context parameters receive the call's context, and other
// NodeHandle parameters the caller's handle; neither reads the binding.
func (p *Parameter) Argument(cc CallContext) (reflect.Value, error) {
	if p.Type == nil {
		return reflect.Value{}, fmt.Errorf("parameter %q has no type", p.Name)
	}
	if p.Type == contextType {
		return reflect.ValueOf(cc.context()), nil
	}
	if p.Tag == value.NodeHandle {
		if cc.Handle == nil {
			return reflect.Zero(p.Type), nil
		}
		hv := reflect.ValueOf(cc.Handle)
		if !hv.Type().AssignableTo(p.Type) {
			return reflect.Value{}, &value.ConversionError{From: value.NodeHandle, To: p.Type.String(), Value: cc.Handle}
		}
		out := reflect.New(p.Type).Elem()
		out.Set(hv)
		return out, nil
	}
	v, err := p.Value()
	if err != nil {
		return reflect.Value{}, fmt.Errorf("parameter %q: %w", p.Name, err)
	}
	out, err := value.ToType(v, p.Type)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("parameter %q: %w", p.Name, err)
	}
	return out, nil
}

// Call materializes params and invokes fn with them. A trailing error result
// is returned as the error; the first other result, if any, is returned as a
// value.
func Call(fn any, params []*Parameter, cc CallContext) (value.Value, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return value.Value{}, fmt.Errorf("call: %T is not a function", fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() || ft.NumIn() != len(params) {
		return value.Value{}, fmt.Errorf("call: %s takes %d arguments, have %d", ft, ft.NumIn(), len(params))
	}
	args := make([]reflect.Value, len(params))
	for i, p := range params {
		if p.Type != ft.In(i) {
			return value.Value{}, fmt.Errorf("call: parameter %q is %s, function wants %s", p.Name, p.Type, ft.In(i))
		}
		a, err := p.Argument(cc)
		if err != nil {
			return value.Value{}, fmt.Errorf("call: %w", err)
		}
		args[i] = a
	}
	out := fv.Call(args)
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if !out[n-1].IsNil() {
			return value.Value{}, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return value.GenericValue(nil), nil
	}
	return value.FromGo(out[0].Interface())
}

// Parameters derives one parameter per argument of fn, named arg0, arg1 and
// so on.
func Parameters(fn any) ([]*Parameter, error) {
	ft := reflect.TypeOf(fn)
	if ft == nil || ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("parameters: %T is not a function", fn)
	}
	out := make([]*Parameter, ft.NumIn())
	for i := range out {
		out[i] = NewParameter(fmt.Sprintf("arg%d", i), ft.In(i))
	}
	return out, nil
}
