package eventbus

import "sync"

// ScopedSubscription ties a subscription's lifetime to the lifetime of
// whatever holds it: construct it with NewScopedSubscription where you
// would otherwise call Subscribe and keep a defer to its Close, and
// unsubscription happens exactly once even if Close is called more
// than once or from more than one goroutine.
//
// The zero value is safe to Close (a no-op); ScopedSubscription is not
// meant to be copied after its first use, since each copy carries its
// own copy of the sync.Once and the copies then no longer agree on
// whether the subscription has been released — always pass it by
// pointer once constructed.
type ScopedSubscription[E any] struct {
	bus    *Bus
	cookie Cookie
	once   sync.Once
}

// NewScopedSubscription subscribes h on b and returns a
// ScopedSubscription owning the resulting registration.
func NewScopedSubscription[E any](b *Bus, h func(E)) *ScopedSubscription[E] {
	return &ScopedSubscription[E]{
		bus:    b,
		cookie: Subscribe(b, h),
	}
}

// Close unsubscribes, if it has not already done so. Safe to call any
// number of times and on a zero-value ScopedSubscription.
func (s *ScopedSubscription[E]) Close() {
	s.once.Do(func() {
		if s.bus != nil {
			s.bus.Unsubscribe(s.cookie)
		}
	})
}

// Reset releases whatever subscription s currently holds, then takes
// ownership of a new one on b for h in its place — the Go stand-in
// for an assignment operator that tears down the old subscription
// before installing the new one. Like the operation it stands in
// for, it is not safe to call concurrently with itself or with Close
// on the same ScopedSubscription.
func (s *ScopedSubscription[E]) Reset(b *Bus, h func(E)) {
	s.Close()
	s.bus = b
	s.cookie = Subscribe(b, h)
	s.once = sync.Once{}
}
