// Package leftright implements the Left-Right concurrency-control
// scheme: two copies of a value, wait-free population-oblivious
// readers, and a single blocking writer that serializes with other
// writers but never blocks a reader.
package leftright

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is the padding width applied to independently
// contended counters and to the two copies held by a Cell, so that
// a reader bumping one counter never bounces a writer's cache line.
const CacheLineSize = 64

// registry accounts for readers currently inside a read section.
// arrive and depart must be paired by the caller, passing the same
// token to both so a sharded implementation drains the shard it grew.
// empty is queried only by a writer holding the write lock.
type registry interface {
	arrive(token uint64)
	depart(token uint64)
	empty() bool
}

// pad64 appends CacheLineSize bytes to a struct. Embed it after the
// payload so the payloads of two adjacent instances never share a
// cache line.
type pad64 struct {
	_ [CacheLineSize]byte
}

type counterShard struct {
	n atomic.Int64
	pad64
}

// counterRegistry is a single atomic counter. Every arrive/depart
// contends on one cache line; it is the correct, simple baseline.
type counterRegistry struct {
	shard counterShard
}

func newCounterRegistry() *counterRegistry { return &counterRegistry{} }

func (r *counterRegistry) arrive(uint64)   { r.shard.n.Add(1) }
func (r *counterRegistry) depart(uint64)   { r.shard.n.Add(-1) }
func (r *counterRegistry) empty() bool     { return r.shard.n.Load() == 0 }

// shardedRegistry spreads arrive/depart across n cache-line-padded
// counters, keyed by a cheap hash of the calling goroutine's stack
// address. empty() must check every shard, so this variant trades
// slower drains for much lower contention under many concurrent
// readers.
type shardedRegistry struct {
	shards []counterShard
	mask   uint64
}

// newShardedRegistry builds a registry with n shards. n must be a
// power of two so shard selection is a mask, not a division.
func newShardedRegistry(n int) *shardedRegistry {
	if n <= 0 || n&(n-1) != 0 {
		panic("leftright: sharded registry size must be a power of two")
	}
	return &shardedRegistry{
		shards: make([]counterShard, n),
		mask:   uint64(n - 1),
	}
}

// goroutineToken returns a value that differs across concurrently
// running goroutines with high probability, without parsing
// runtime.Stack or otherwise depending on an undocumented goroutine-ID
// API. The address of a stack-local variable qualifies: distinct
// goroutines run on distinct stacks. Callers must compute it once per
// observe and reuse it for both arrive and depart, since the token
// only needs to be stable for that one call, not across calls.
func goroutineToken() uint64 {
	var probe byte
	return uint64(uintptr(unsafe.Pointer(&probe)))
}

// fibonacciMix spreads the low bits of a stack address (which tend to
// cluster, since stacks are bump-allocated in small frames) across the
// full word before reducing to a shard index.
func fibonacciMix(x uint64) uint64 {
	const k = 11400714819323198485 // 2^64 / golden ratio
	x *= k
	return x >> 32
}

func (r *shardedRegistry) shardFor(token uint64) *counterShard {
	return &r.shards[fibonacciMix(token)&r.mask]
}

func (r *shardedRegistry) arrive(token uint64) { r.shardFor(token).n.Add(1) }
func (r *shardedRegistry) depart(token uint64) { r.shardFor(token).n.Add(-1) }

func (r *shardedRegistry) empty() bool {
	for i := range r.shards {
		if r.shards[i].n.Load() != 0 {
			return false
		}
	}
	return true
}
