package leftright

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// RegistryKind selects the ReaderRegistry implementation a Cell uses.
type RegistryKind int

const (
	// SingleCounter is the default: one atomic counter per side.
	SingleCounter RegistryKind = iota
	// Sharded spreads readers across several counters to cut
	// contention; pick it when many goroutines call Observe at once.
	Sharded
)

type valueSlot[T any] struct {
	v T
	pad64
}

// Cell holds two copies of a value of type T and lets any number of
// goroutines Observe the active copy without ever blocking, while
// Modify serializes with other writers and swaps in a new active copy
// once readers of the stale one have drained.
//
// The zero value is NOT ready to use; construct with New.
type Cell[T any] struct {
	registries [2]registry
	current    atomic.Int32 // index into registries new readers attach to
	active     atomic.Int32 // 0 selects copies[0], 1 selects copies[1]
	copies     [2]valueSlot[T]
	writeMu    sync.Mutex

	// yields counts how many spin-yield iterations Modify has spent
	// draining a registry since the last successful drain, reset on
	// every Modify call. Exposed for callers that want to surface a
	// slow-writer warning without this package depending on a logger.
	yields atomic.Int64
}

// New constructs a Cell whose two copies both start as the zero value
// of T, using the given registry kind. shards is only consulted when
// kind is Sharded and must be a power of two.
func New[T any](kind RegistryKind, shards int) *Cell[T] {
	c := &Cell[T]{}
	for i := range c.registries {
		switch kind {
		case Sharded:
			c.registries[i] = newShardedRegistry(shards)
		default:
			c.registries[i] = newCounterRegistry()
		}
	}
	return c
}

// Observe calls f with a pointer to the currently active copy. It
// never blocks (wait-free modulo f itself) and is safe to call from
// any number of goroutines concurrently, including from within another
// Observe on the same goroutine (nested/reentrant calls balance their
// own arrive/depart pairs).
//
// f must not call Modify on this same Cell, directly or transitively:
// Modify's drain phase waits for every arrived reader to depart, and a
// goroutine cannot depart a read it is itself blocked inside. Doing so
// deadlocks rather than panics — detecting it reliably would mean
// resolving the calling goroutine's identity on every Observe, which
// this package deliberately avoids paying for on its wait-free path.
func (c *Cell[T]) Observe(f func(*T)) {
	token := goroutineToken()

	idx := c.current.Load()
	reg := c.registries[idx]
	reg.arrive(token)
	defer reg.depart(token)

	active := c.active.Load()
	f(&c.copies[active].v)
}

// Modify applies f to the inactive copy, publishes it as active, waits
// for readers of the previously-active copy to drain, and then applies
// f to that copy too, so both copies converge on the same state. It
// blocks against other Modify callers but never blocks a concurrent
// Observe. f must be pure and repeatable: calling it twice with
// equivalent starting state must produce equivalent ending state, and
// f must not panic.
func (c *Cell[T]) Modify(f func(*T)) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	activeIdx := c.active.Load()
	inactiveIdx := 1 - activeIdx

	f(&c.copies[inactiveIdx].v)

	c.active.Store(inactiveIdx)

	cur := c.current.Load()
	next := 1 - cur
	c.drain(c.registries[next])
	c.current.Store(next)
	c.drain(c.registries[cur])

	f(&c.copies[activeIdx].v)
}

func (c *Cell[T]) drain(r registry) {
	c.yields.Store(0)
	for !r.empty() {
		runtime.Gosched()
		c.yields.Add(1)
	}
}

// YieldCount reports how many scheduler yields the most recently
// completed (or currently in-flight) drain phase of Modify has spent.
// It resets to zero at the start of each drain phase; callers use it
// as a cheap proxy for "a reader is starving writers," not as an exact
// measurement.
func (c *Cell[T]) YieldCount() int64 {
	return c.yields.Load()
}
