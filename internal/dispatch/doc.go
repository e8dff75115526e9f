// Package dispatch provides the polymorphic-delivery building blocks
// the event bus is built from: a way for an event type to declare an
// ordered ancestor chain (Chain), a resolver that turns a published
// type into the chain it must be delivered under (Resolve), the
// type-erased handler shapes that deliver without or with a runtime
// check (Record), and the multi-map those records live in (Table).
//
// Nothing in this package is safe for concurrent mutation on its own;
// callers are expected to hold a Table inside a leftright.Cell.
package dispatch
