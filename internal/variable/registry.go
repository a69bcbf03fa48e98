package variable

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
)

// MemberKind classifies how a host member is accessed.
type MemberKind uint8

const (
	// Field is a struct field, readable and writable.
	Field MemberKind = iota
	// Property is a getter, optionally paired with a setter.
	Property
	// Method is a zero-argument method returning a value. Never writable.
	Method
)

func (k MemberKind) String() string {
	switch k {
	case Field:
		return "field"
	case Property:
		return "property"
	case Method:
		return "method"
	default:
		return fmt.Sprintf("MemberKind(%d)", uint8(k))
	}
}

// Accessor reads, and optionally writes, one member of a host object.
type Accessor struct {
	Name string
	Kind MemberKind
	// Type is the member's declared result type. Its tag is the tag of
	// variables reflecting the member.
	Type reflect.Type
	// Get returns the member's current value.
	Get func(host any) (any, error)
	// Set assigns x, which is already of Type. Nil for read-only members.
	Set func(host any, x any) error
}

// Tag maps the member's declared type to a TypeTag.
func (a *Accessor) Tag() value.TypeTag {
	return value.TagOf(a.Type)
}

// Writable reports whether the member has a setter.
func (a *Accessor) Writable() bool {
	return a.Set != nil
}

// MemberResolver is implemented by hosts that describe their own members,
// for hosts whose shape is only known at load time.
type MemberResolver interface {
	ResolveMember(path string) (*Accessor, error)
}

// HostRegistry is the accessor table keyed by (host type, member name). It is
// built once at startup so reads never re-reflect.
type HostRegistry struct {
	types     map[reflect.Type]map[string]*Accessor
	reflected map[reflect.Type]bool
}

// NewHostRegistry returns an empty registry.
func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		types:     make(map[reflect.Type]map[string]*Accessor),
		reflected: make(map[reflect.Type]bool),
	}
}

// Register adds or replaces the accessor for hostType.a.Name.
func (r *HostRegistry) Register(hostType reflect.Type, a *Accessor) {
	members := r.types[hostType]
	if members == nil {
		members = make(map[string]*Accessor)
		r.types[hostType] = members
	}
	members[a.Name] = a
}

// Lookup returns the accessor registered for hostType and name.
func (r *HostRegistry) Lookup(hostType reflect.Type, name string) (*Accessor, bool) {
	a, ok := r.types[hostType][name]
	return a, ok
}

// Members returns hostType's accessors sorted by name.
func (r *HostRegistry) Members(hostType reflect.Type) []*Accessor {
	members := r.types[hostType]
	out := make([]*Accessor, 0, len(members))
	for _, a := range members {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterMember registers a typed member of host type H. A nil set makes the
// member read-only.
func RegisterMember[H any, V any](r *HostRegistry, name string, get func(H) V, set func(H, V)) {
	a := &Accessor{
		Name: name,
		Kind: Property,
		Type: reflect.TypeFor[V](),
		Get: func(host any) (any, error) {
			h, ok := host.(H)
			if !ok {
				return nil, fmt.Errorf("host %T is not %s", host, reflect.TypeFor[H]())
			}
			return get(h), nil
		},
	}
	if set != nil {
		a.Set = func(host any, x any) error {
			h, ok := host.(H)
			if !ok {
				return fmt.Errorf("host %T is not %s", host, reflect.TypeFor[H]())
			}
			v, _ := x.(V)
			set(h, v)
			return nil
		}
	}
	r.Register(reflect.TypeFor[H](), a)
}

var errorType = reflect.TypeFor[error]()

// Reflect registers accessors for hostType using reflection, once:
//
//   - exported struct fields (hostType must be a pointer for them to be
//     writable)
//   - X() / SetX(v) method pairs as writable properties
//   - other exported zero-argument methods returning one value, or a value
//     and an error, as read-only methods
//
// Members whose type maps to no TypeTag are skipped. Explicit registrations
// are not overwritten. Later calls for the same type do nothing. Reflect
// returns the number of members added.
func (r *HostRegistry) Reflect(hostType reflect.Type) int {
	if r.reflected[hostType] {
		return 0
	}
	r.reflected[hostType] = true
	added := 0
	add := func(a *Accessor) {
		if _, exists := r.Lookup(hostType, a.Name); exists {
			return
		}
		if a.Tag() == value.Invalid {
			return
		}
		r.Register(hostType, a)
		added++
	}

	structType := hostType
	pointer := hostType.Kind() == reflect.Pointer
	if pointer {
		structType = hostType.Elem()
	}
	if structType.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(structType) {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			add(fieldAccessor(f, pointer))
		}
	}

	setters := make(map[string]reflect.Method)
	for i := 0; i < hostType.NumMethod(); i++ {
		m := hostType.Method(i)
		if name, ok := strings.CutPrefix(m.Name, "Set"); ok && name != "" &&
			m.Type.NumIn() == 2 && (m.Type.NumOut() == 0 || (m.Type.NumOut() == 1 && m.Type.Out(0) == errorType)) {
			setters[name] = m
		}
	}
	for i := 0; i < hostType.NumMethod(); i++ {
		m := hostType.Method(i)
		if m.Type.NumIn() != 1 {
			continue
		}
		switch {
		case m.Type.NumOut() == 1 && m.Type.Out(0) != errorType:
		case m.Type.NumOut() == 2 && m.Type.Out(1) == errorType:
		default:
			continue
		}
		a := methodAccessor(m)
		if s, ok := setters[m.Name]; ok && s.Type.In(1) == a.Type {
			a.Kind = Property
			a.Set = setterFunc(s)
		}
		add(a)
	}

	slog.Debug("[Variable] reflected host type", "type", hostType.String(), "members", added)
	return added
}

func fieldAccessor(f reflect.StructField, pointer bool) *Accessor {
	index := f.Index
	a := &Accessor{
		Name: f.Name,
		Kind: Field,
		Type: f.Type,
		Get: func(host any) (any, error) {
			rv := reflect.ValueOf(host)
			if rv.Kind() == reflect.Pointer {
				if rv.IsNil() {
					return nil, ErrNoHost
				}
				rv = rv.Elem()
			}
			return rv.FieldByIndex(index).Interface(), nil
		},
	}
	if pointer {
		a.Set = func(host any, x any) error {
			rv := reflect.ValueOf(host)
			if rv.Kind() != reflect.Pointer || rv.IsNil() {
				return ErrNoHost
			}
			field := rv.Elem().FieldByIndex(index)
			if x == nil {
				field.SetZero()
				return nil
			}
			field.Set(reflect.ValueOf(x))
			return nil
		}
	}
	return a
}

func methodAccessor(m reflect.Method) *Accessor {
	fn := m.Func
	withErr := m.Type.NumOut() == 2
	return &Accessor{
		Name: m.Name,
		Kind: Method,
		Type: m.Type.Out(0),
		Get: func(host any) (any, error) {
			out := fn.Call([]reflect.Value{reflect.ValueOf(host)})
			if withErr && !out[1].IsNil() {
				return nil, out[1].Interface().(error)
			}
			return out[0].Interface(), nil
		},
	}
}

func setterFunc(m reflect.Method) func(host any, x any) error {
	fn := m.Func
	argType := m.Type.In(1)
	return func(host any, x any) error {
		arg := reflect.Zero(argType)
		if x != nil {
			arg = reflect.ValueOf(x)
		}
		out := fn.Call([]reflect.Value{reflect.ValueOf(host), arg})
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}
}

// HostSeed is the seed used to derive the identity of a variable reflecting
// member of hostType.
func HostSeed(hostType reflect.Type, member string) string {
	return hostType.String() + "." + member
}

// Reflected derives FromHost descriptors for every member of hostType known
// to r, reflecting the type first. Identities are
// seeded from the host path so reloads yield the same ids.
func Reflected(r *HostRegistry, hostType reflect.Type) []Descriptor {
	r.Reflect(hostType)
	members := r.Members(hostType)
	out := make([]Descriptor, 0, len(members))
	for _, a := range members {
		out = append(out, Descriptor{
			ID:       identity.FromSeed(HostSeed(hostType, a.Name)),
			Name:     a.Name,
			Type:     a.Tag(),
			Flags:    FromHost,
			HostPath: a.Name,
		})
	}
	return out
}
