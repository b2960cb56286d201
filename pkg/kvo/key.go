package kvo

import (
	"fmt"
	"reflect"
)

// KeyID identifies one property of one owner type.
// It is comparable and used as the registry's map key.
type KeyID struct {
	// Owner is the owner type (not a pointer type).
	Owner reflect.Type

	// Name is the property name, unique within Owner.
	Name string
}

// String returns "Owner.Name".
func (id KeyID) String() string {
	if id.Owner == nil {
		return id.Name
	}
	owner := id.Owner.Name()
	if owner == "" {
		owner = id.Owner.String()
	}
	return owner + "." + id.Name
}

// Key is a typed property key for owner type O with value type T.
type Key[O, T any] struct {
	id        KeyID
	valueType reflect.Type
	get       func(*O) T
}

// NewKey creates a key for the property name of owner type O, read by get.
// It panics if name is empty or get is nil; keys are meant to be built at
// package initialization.
func NewKey[O, T any](name string, get func(*O) T) Key[O, T] {
	if name == "" {
		panic("kvo: key name must not be empty")
	}
	if get == nil {
		panic(fmt.Sprintf("kvo: key %q has a nil getter", name))
	}
	return Key[O, T]{
		id:        KeyID{Owner: reflect.TypeFor[O](), Name: name},
		valueType: reflect.TypeFor[T](),
		get:       get,
	}
}

// ID returns the comparable identity of the key.
func (k Key[O, T]) ID() KeyID {
	return k.id
}

// Name returns the property name.
func (k Key[O, T]) Name() string {
	return k.id.Name
}

// ValueType returns the property's value type.
func (k Key[O, T]) ValueType() reflect.Type {
	return k.valueType
}

// Get reads the property from owner.
func (k Key[O, T]) Get(owner *O) T {
	return k.get(owner)
}

// String returns "Owner.name".
func (k Key[O, T]) String() string {
	return k.id.String()
}
