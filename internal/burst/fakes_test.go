package burst

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
)

var errBoom = errors.New("boom")

// countingAllocator records allocations and the highest number of blocks
// alive at once.
type countingAllocator struct {
	hold    time.Duration
	allocs  atomic.Int64
	bytes   atomic.Int64
	frees   atomic.Int64
	live    atomic.Int64
	maxLive atomic.Int64
	// fail makes the n-th allocation (1-based) fail when it returns true.
	fail func(n int64) bool
	// panicOn makes every allocation panic.
	panicOn bool
}

func (a *countingAllocator) Name() string { return "counting" }

func (a *countingAllocator) Alloc(size int) ([]byte, error) {
	if a.panicOn {
		panic("allocator exploded")
	}
	n := a.allocs.Add(1)
	if a.fail != nil && a.fail(n) {
		return nil, errBoom
	}
	live := a.live.Add(1)
	for {
		m := a.maxLive.Load()
		if live <= m || a.maxLive.CompareAndSwap(m, live) {
			break
		}
	}
	a.bytes.Add(int64(size))
	if a.hold > 0 {
		time.Sleep(a.hold)
	}
	return make([]byte, size), nil
}

func (a *countingAllocator) Free(b []byte) error {
	a.live.Add(-1)
	a.frees.Add(1)
	return nil
}

var _ types.Allocator = (*countingAllocator)(nil)
