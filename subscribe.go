package eventbus

import (
	"reflect"

	"github.com/mmcshane/eventbus/internal/dispatch"
	"github.com/mmcshane/eventbus/internal/obslog"
)

// Subscribe registers h to be called whenever a value of type E, or a
// value of any type that declares E as an ancestor via Chained, is
// published on b. It returns a Cookie identifying this registration,
// which Unsubscribe needs to remove it again.
//
// Subscribing on a closed bus is a no-op: the returned Cookie is valid
// to pass to Unsubscribe (which will then also be a no-op) but is
// never actually delivered to.
func Subscribe[E any](b *Bus, h func(E)) Cookie {
	rec := dispatch.NewRecord[E](h)
	typ := reflect.TypeFor[E]()

	// Asked once, outside Modify: Modify applies its function to both
	// copies, and both must be built with the same hint.
	hint := b.pool.Hint()

	var inserted bool
	b.table.Modify(func(t *dispatch.Table) {
		if b.closed.Load() {
			return
		}
		t.InsertHinted(typ, rec, hint)
		inserted = true
	})

	cookie := Cookie{id: rec.Identity(), typ: typ}
	if inserted {
		b.log.Debug("subscribed", "bus", b.id, "type", typ)
		if b.metrics != nil {
			b.metrics.ObserveSubscribe(typ)
		}
	}
	obslog.YieldWarning(b.log, b.table.YieldCount(), b.yieldWarnThreshold, "bus", b.id, "op", "subscribe")
	return cookie
}

// Unsubscribe removes the registration identified by c. It is
// idempotent: calling it twice, or with a Cookie from a bus that has
// since been closed or never held a matching registration, is a safe
// no-op.
func (b *Bus) Unsubscribe(c Cookie) {
	if c.typ == nil {
		return
	}

	var removed bool
	var freed int
	b.table.Modify(func(t *dispatch.Table) {
		removed, freed = t.RemoveHinted(c.typ, c.id)
	})
	// Released once, after Modify has applied the removal to both copies.
	if freed > 0 {
		b.pool.Release(freed)
	}

	if removed {
		b.log.Debug("unsubscribed", "bus", b.id, "type", c.typ)
		if b.metrics != nil {
			b.metrics.ObserveUnsubscribe(c.typ)
		}
	}
	obslog.YieldWarning(b.log, b.table.YieldCount(), b.yieldWarnThreshold, "bus", b.id, "op", "unsubscribe")
}

// Publish delivers event to every handler subscribed to type E and to
// every ancestor type E declares via Chained, most-derived type first.
// Publish never panics because of bus-internal state; a handler that
// panics is the caller's problem, exactly as an ordinary direct call
// to that handler would be.
//
// Publish is wait-free with respect to the bus. It is safe to call
// from within a handler running on another Publish (nested reads
// balance their own accounting), but a handler must not call Subscribe
// or Unsubscribe on the same bus — see the package doc for why that
// deadlocks instead of erroring.
func Publish[E any](b *Bus, event E) {
	chain := dispatch.Resolve[E]()
	published := reflect.TypeFor[E]()

	if b.metrics != nil {
		b.metrics.ObservePublish(published)
	}

	var skipped []reflect.Type
	b.table.Observe(func(t *dispatch.Table) {
		for _, typ := range chain {
			for _, rec := range t.Lookup(typ) {
				if !rec.Deliver(event) {
					if b.metrics != nil {
						b.metrics.ObserveDispatchSkipped(typ)
					}
					skipped = append(skipped, typ)
				}
			}
		}
	})

	// Deferred until after Observe returns: the skip itself is just an
	// append to this goroutine's own slice, cheap enough not to
	// threaten Observe's wait-free path, but a slog call is not, so
	// the actual logging happens once we're back outside the read.
	if len(skipped) > 0 {
		obslog.ChainLogger(b.log, chain).Debug("dispatch skipped for a chain element",
			"bus", b.id, "published", published, "skipped", skipped)
	}
}
