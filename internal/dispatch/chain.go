// Package dispatch resolves the ordered sequence of type keys a
// published value must be delivered under, and holds the type-erased
// handler records those keys map to.
package dispatch

import (
	"reflect"
	"sync"
)

// Root terminates a declared dispatch lineage. It is both the default
// ancestor for a type with no further supertype and the sentinel that
// stops chain resolution.
type Root struct{}

func (Root) parentChain() []reflect.Type { return nil }

// Ancestor is implemented by any type that declares a dispatch lineage
// by embedding Chain[Self, Parent] for some Parent. It is exported so
// other packages can name it as a type-parameter constraint when they
// wrap Chain in their own public embeddable type; its single method is
// unexported, so outside this package it is satisfied only through
// that embedding. Root, which ends every chain, implements it directly.
type Ancestor interface {
	parentChain() []reflect.Type
}

// Chain is embedded (directly, or via a wrapper type in another
// package) by an event type to declare that it sits below Parent in a
// dispatch lineage. An event with no further ancestor embeds
// Chain[Self, Root]. Self must also embed Parent itself as an ordinary
// field, so static-dispatch erasure can reach the promoted ancestor
// value by field name.
type Chain[Self any, Parent Ancestor] struct{}

func (Chain[Self, Parent]) parentChain() []reflect.Type {
	self := reflect.TypeFor[Self]()
	var p Parent
	return append([]reflect.Type{self}, p.parentChain()...)
}

var chainCache sync.Map // reflect.Type -> []reflect.Type

// Resolve returns the ordered chain of type keys a value of static
// type E must be delivered under: E's declared lineage, most-derived
// first, if E declares one, or the single-element chain [E] otherwise.
// The result is memoized per E so repeated publishes of the same type
// don't re-walk the chain.
func Resolve[E any]() []reflect.Type {
	t := reflect.TypeFor[E]()
	if cached, ok := chainCache.Load(t); ok {
		return cached.([]reflect.Type)
	}

	chain := computeChain[E](t)
	chainCache.Store(t, chain)
	return chain
}

func computeChain[E any](t reflect.Type) []reflect.Type {
	var zero E
	c, ok := any(zero).(Ancestor)
	if !ok {
		return []reflect.Type{t}
	}
	ancestors := c.parentChain()
	if len(ancestors) > 0 && ancestors[0] == t {
		return ancestors
	}
	return append([]reflect.Type{t}, ancestors...)
}

// Declares reports whether E declares a dispatch lineage (i.e. embeds
// Chain[E, Parent] for some Parent). Subscribe uses this, once per
// subscribed type, to choose between static and dynamic erasure.
func Declares[E any]() bool {
	var zero E
	_, ok := any(zero).(Ancestor)
	return ok
}
