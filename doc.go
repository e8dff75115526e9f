// Package eventbus is an in-process, type-safe publish/subscribe bus.
//
// It is built on two ideas. First, a Left-Right concurrency cell
// (internal/leftright) holds the subscriber table: Publish reads it
// wait-free, Subscribe and Unsubscribe write it under a lock that
// never blocks a concurrent Publish. Second, an event type can opt
// into a declared dispatch chain by embedding Chained[Self, Parent]:
// publishing a value then delivers to handlers registered for the
// value's own type and for every declared ancestor, most-derived
// first.
//
// # Quick start
//
//	type Base struct {
//	    eventbus.Chained[Base, eventbus.Root]
//	    ID string
//	}
//
//	type Derived struct {
//	    eventbus.Chained[Derived, Base]
//	    Base
//	    Detail string
//	}
//
//	bus := eventbus.New()
//	defer bus.Close()
//
//	cookie := eventbus.Subscribe(bus, func(b Base) {
//	    fmt.Println("base handler saw", b.ID)
//	})
//	defer bus.Unsubscribe(cookie)
//
//	eventbus.Publish(bus, Derived{Base: Base{ID: "1"}, Detail: "x"})
//
// A type that does not embed Chained is delivered only to handlers
// registered for its own exact type — ordinary Go struct inheritance
// via embedding confers no polymorphic delivery by itself.
//
// # Fx module
//
//	import "go.uber.org/fx"
//
//	app := fx.New(
//	    eventbus.Module,
//	    fx.Invoke(func(bus *eventbus.Bus) {
//	        eventbus.Subscribe(bus, func(b Base) { /* ... */ })
//	    }),
//	)
//
// # Concurrency
//
// Publish is wait-free with respect to the bus itself (a handler is
// user code and may block). Subscribe and Unsubscribe serialize
// against each other and against Close, but never block Publish.
// Subscribing or unsubscribing from within a handler that is itself
// running inside Publish deadlocks: the write waits for the
// in-progress read to depart, and that read will not depart until the
// handler returns. Publishing from within a handler is supported.
package eventbus
