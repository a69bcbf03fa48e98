package value

import (
	"fmt"
	"reflect"
)

// ObjectType describes an engine object class. Types form a single-inheritance
// chain through Base; a handle of a derived type satisfies a binding declared
// against any of its ancestors.
type ObjectType struct {
	name string
	base *ObjectType
}

// RootObject is the ancestor of every engine object type.
var RootObject = &ObjectType{name: "Object"}

// NewObjectType declares a type. A nil base means RootObject.
func NewObjectType(name string, base *ObjectType) *ObjectType {
	if base == nil {
		base = RootObject
	}
	return &ObjectType{name: name, base: base}
}

// Name returns the declared type name.
func (t *ObjectType) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Base returns the parent type, nil for RootObject.
func (t *ObjectType) Base() *ObjectType {
	if t == nil {
		return nil
	}
	return t.base
}

// Is reports whether t is other or derives from it. A nil other accepts
// every type.
func (t *ObjectType) Is(other *ObjectType) bool {
	if other == nil {
		return true
	}
	for c := t; c != nil; c = c.base {
		if c == other {
			return true
		}
	}
	return false
}

// IsNamed is Is keyed by type name, for descriptors that only carry the
// declared subtype as a string. An empty name accepts every type.
func (t *ObjectType) IsNamed(name string) bool {
	if name == "" {
		return true
	}
	for c := t; c != nil; c = c.base {
		if c.name == name {
			return true
		}
	}
	return false
}

func (t *ObjectType) String() string {
	return t.Name()
}

// Object is a handle to an engine-owned object.
type Object interface {
	ObjectType() *ObjectType
}

// Container is an Object that owns components, looked up by type.
type Container interface {
	Object
	Component(t *ObjectType) (Object, bool)
}

// AssetResolver re-resolves a handle from its stable asset identity, used
// when a stored handle is missing or was unloaded.
type AssetResolver interface {
	ResolveAsset(assetID string) (Object, bool)
}

// AssetResolverFunc adapts a function to AssetResolver.
type AssetResolverFunc func(assetID string) (Object, bool)

func (f AssetResolverFunc) ResolveAsset(assetID string) (Object, bool) {
	return f(assetID)
}

// IsNull reports whether o is absent. Objects that implement
// interface{ Alive() bool } are null once destroyed.
func IsNull(o Object) bool {
	if o == nil {
		return true
	}
	if rv := reflect.ValueOf(o); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return true
	}
	if a, ok := o.(interface{ Alive() bool }); ok {
		return !a.Alive()
	}
	return false
}

// Component narrows a container handle to one of its components. This is an
// explicit lookup, never part of the implicit coercion path.
func Component(o Object, t *ObjectType) (Object, error) {
	if IsNull(o) {
		return nil, fmt.Errorf("component %s of null object: %w", t.Name(), ErrMissingComponent)
	}
	if o.ObjectType().Is(t) {
		return o, nil
	}
	c, ok := o.(Container)
	if !ok {
		return nil, fmt.Errorf("%s is not a container of %s: %w", o.ObjectType().Name(), t.Name(), ErrMissingComponent)
	}
	comp, ok := c.Component(t)
	if !ok || IsNull(comp) {
		return nil, fmt.Errorf("%s has no %s component: %w", o.ObjectType().Name(), t.Name(), ErrMissingComponent)
	}
	return comp, nil
}

// objectName stringifies a handle: fmt.Stringer if implemented, else the
// type name; "null" for absent handles.
func objectName(o Object) string {
	if IsNull(o) {
		return "null"
	}
	if s, ok := o.(fmt.Stringer); ok {
		return s.String()
	}
	return o.ObjectType().Name()
}
