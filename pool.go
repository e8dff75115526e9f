package eventbus

import "sync/atomic"

// RecordPool supplies capacity hints for the subscriber table's
// per-type backing arrays. Subscribe consults Hint before allocating a
// brand new bucket for a type that has no subscribers yet; Unsubscribe
// calls Release with a bucket's capacity just before that bucket is
// dropped for having emptied out. This is the idiomatic-Go rendering
// of "an allocator used only for the subscriber table": Go's slice
// element types make sharing a single backing array across the public
// any-typed seam and the internal typed bucket impossible without
// unsafe, so the pool trades raw backing-array reuse for capacity
// memory instead, which needs no unsafe and still avoids the
// one-element-at-a-time regrowth a type's bucket would otherwise pay
// every time something resubscribes to it after unsubscribing everyone.
type RecordPool interface {
	Hint() int
	Release(cap int)
}

// syncRecordPool is the default RecordPool: it remembers the largest
// bucket capacity it has ever seen freed and hands that back out as
// the hint for the next bucket of any type, on the assumption that a
// bus's subscriber counts per event type are roughly stable over its
// lifetime.
type syncRecordPool struct {
	highWater atomic.Int64
}

func newSyncRecordPool() *syncRecordPool {
	return &syncRecordPool{}
}

func (p *syncRecordPool) Hint() int {
	return int(p.highWater.Load())
}

func (p *syncRecordPool) Release(cap int) {
	for {
		cur := p.highWater.Load()
		if int64(cap) <= cur {
			return
		}
		if p.highWater.CompareAndSwap(cur, int64(cap)) {
			return
		}
	}
}
