// Package script connects tree instances to goja: scripts can read and write
// a tree's variables, and JavaScript objects can host reflected variables.
package script

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/variable"
)

// ModuleName is the name scripts require to reach the variables of the tree
// they run for.
const ModuleName = "aethiumian:variables"

// Expose returns an object with get, set, has and names over the variables
// of t, looked up by name in local, static, then global scope.
func Expose(vm *goja.Runtime, t *tree.ResolvedTree) *goja.Object {
	obj := vm.NewObject()
	_ = obj.Set("get", func(name string) goja.Value {
		v, ok := t.VariableByName(name)
		if !ok {
			return goja.Undefined()
		}
		val, err := v.Load()
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return toJS(vm, val)
	})
	_ = obj.Set("set", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		v, ok := t.VariableByName(name)
		if !ok {
			panic(vm.NewGoError(fmt.Errorf("no variable %q", name)))
		}
		in, err := value.FromGo(call.Argument(1).Export())
		if err == nil {
			err = v.Store(in)
		}
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return goja.Undefined()
	})
	_ = obj.Set("has", func(name string) bool {
		_, ok := t.VariableByName(name)
		return ok
	})
	_ = obj.Set("names", func() []any {
		names := Names(t)
		out := make([]any, len(names))
		for i, n := range names {
			out[i] = n
		}
		return out
	})
	return obj
}

// Names returns the distinct variable names visible to t, sorted.
func Names(t *tree.ResolvedTree) []string {
	s := t.Scope()
	seen := make(map[string]bool)
	var out []string
	for _, vars := range [][]variable.Variable{s.Local.Variables(), s.Static.Variables(), s.Global.Variables()} {
		for _, v := range vars {
			if !seen[v.Name()] {
				seen[v.Name()] = true
				out = append(out, v.Name())
			}
		}
	}
	sort.Strings(out)
	return out
}

func toJS(vm *goja.Runtime, v value.Value) goja.Value {
	switch v.Tag() {
	case value.Vector2, value.Vector3, value.Vector4:
		x, _ := value.As[value.Vec4](v)
		obj := vm.NewObject()
		_ = obj.Set("x", x.X)
		_ = obj.Set("y", x.Y)
		if v.Tag() != value.Vector2 {
			_ = obj.Set("z", x.Z)
		}
		if v.Tag() == value.Vector4 {
			_ = obj.Set("w", x.W)
		}
		return obj
	}
	return vm.ToValue(v.Interface())
}

// ModuleLoader returns a loader exporting Expose(t) for the require registry.
func ModuleLoader(t *tree.ResolvedTree) require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		exports := module.Get("exports").(*goja.Object)
		api := Expose(vm, t)
		for _, k := range api.Keys() {
			_ = exports.Set(k, api.Get(k))
		}
	}
}

// Register makes ModuleName available to scripts using registry.
func Register(registry *require.Registry, t *tree.ResolvedTree) {
	registry.RegisterNativeModule(ModuleName, ModuleLoader(t))
}

var (
	floatType = reflect.TypeFor[float64]()
	anyType   = reflect.TypeFor[any]()
)

// Object is a JavaScript object used as a variable host. Properties are
// writable members; functions are read-only members returning their result.
type Object struct {
	vm  *goja.Runtime
	obj *goja.Object
}

var _ variable.MemberResolver = (*Object)(nil)

// NewObject wraps obj.
func NewObject(vm *goja.Runtime, obj *goja.Object) *Object {
	return &Object{vm: vm, obj: obj}
}

// ResolveMember implements variable.MemberResolver. The member type is taken
// from the property's current value: numbers are float64, booleans and
// strings keep their types, anything else is Generic.
func (o *Object) ResolveMember(path string) (*variable.Accessor, error) {
	current := o.obj.Get(path)
	if current == nil || goja.IsUndefined(current) {
		return nil, fmt.Errorf("%w: %s", variable.ErrUnknownMember, path)
	}
	if fn, ok := goja.AssertFunction(current); ok {
		return &variable.Accessor{
			Name: path,
			Kind: variable.Method,
			Type: anyType,
			Get: func(any) (any, error) {
				out, err := fn(o.obj)
				if err != nil {
					return nil, err
				}
				return out.Export(), nil
			},
		}, nil
	}

	rt := anyType
	switch current.ExportType() {
	case reflect.TypeFor[int64](), floatType:
		rt = floatType
	case reflect.TypeFor[bool](), reflect.TypeFor[string]():
		rt = current.ExportType()
	}
	return &variable.Accessor{
		Name: path,
		Kind: variable.Property,
		Type: rt,
		Get: func(any) (any, error) {
			v := o.obj.Get(path)
			if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
				return reflect.Zero(rt).Interface(), nil
			}
			if rt == floatType {
				return v.ToFloat(), nil
			}
			return v.Export(), nil
		},
		Set: func(_ any, x any) error {
			return o.obj.Set(path, x)
		},
	}, nil
}
