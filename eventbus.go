package eventbus

import (
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mmcshane/eventbus/internal/dispatch"
	"github.com/mmcshane/eventbus/internal/leftright"
	"github.com/mmcshane/eventbus/internal/obslog"
	"github.com/mmcshane/eventbus/internal/obsmetrics"
)

// CacheLineSize is the padding width the bus's internal Left-Right
// cell uses to keep independently contended reader counters off each
// other's cache lines.
const CacheLineSize = leftright.CacheLineSize

// Root terminates a declared dispatch lineage. It is the default
// Parent for an event with no further ancestor.
type Root = dispatch.Root

// Chained is embedded by an event type to declare that it sits below
// Parent in a dispatch lineage. An event with no further ancestor
// embeds Chained[Self, eventbus.Root]. Self must also embed Parent
// itself as an ordinary field — not just Chained[Self, Parent] — so
// that a handler registered for Parent can reach the promoted
// ancestor value when a more-derived value is published. See the
// package doc for a worked example.
type Chained[Self any, Parent dispatch.Ancestor] struct {
	dispatch.Chain[Self, Parent]
}

// Cookie identifies one subscription. It is the only thing Unsubscribe
// needs and is safe to copy, compare, and store.
type Cookie struct {
	id  uintptr
	typ reflect.Type
}

// Bus is an in-process, type-safe publish/subscribe event bus.
//
// The zero value is not ready to use; construct with New.
type Bus struct {
	id      string
	table   *leftright.Cell[dispatch.Table]
	log     *slog.Logger
	pool    RecordPool
	metrics *obsmetrics.Collector

	closed             atomic.Bool
	yieldWarnThreshold int64
}

// New constructs a ready-to-use Bus.
func New(opts ...Option) *Bus {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	log := o.logger
	if log == nil {
		log = defaultLogger()
	}

	pool := o.pool
	if pool == nil {
		pool = newSyncRecordPool()
	}

	b := &Bus{
		id:                 uuid.NewString(),
		table:              leftright.New[dispatch.Table](o.registryKind, o.shards),
		log:                log,
		pool:               pool,
		metrics:            o.metrics,
		yieldWarnThreshold: o.yieldWarnThreshold,
	}

	// seed both copies with a usable, non-nil table.
	b.table.Modify(func(t *dispatch.Table) {
		if *t == nil {
			*t = dispatch.NewTable()
		}
	})

	b.log.Debug("bus created", "bus", b.id)
	return b
}

// Close tears down the bus: the subscriber table is emptied and any
// later Subscribe or Unsubscribe becomes a no-op. Publish after Close
// simply delivers to nothing; it is not an error.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	b.table.Modify(func(t *dispatch.Table) {
		*t = dispatch.NewTable()
	})
	b.log.Debug("bus closed", "bus", b.id)
	return nil
}

func defaultLogger() *slog.Logger {
	return obslog.Logger("eventbus")
}
