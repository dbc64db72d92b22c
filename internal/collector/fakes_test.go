package collector

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
)

// scriptedInspector returns RSS values from a script, repeating the last one,
// or grows by step on every read when no script is set.
type scriptedInspector struct {
	mu     sync.Mutex
	script []uint64
	step   uint64
	reads  int
	rss    uint64
}

func (s *scriptedInspector) Name() string { return "scripted" }

func (s *scriptedInspector) ReadProcessMemory() types.MemorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if len(s.script) > 0 {
		i := min(s.reads-1, len(s.script)-1)
		return types.MemorySnapshot{RSSKiB: s.script[i], PeakRSSKiB: s.script[i]}
	}
	s.rss += s.step
	return types.MemorySnapshot{RSSKiB: s.rss}
}

func (s *scriptedInspector) ReadThreadCount() int { return 5 }

func (s *scriptedInspector) ReadSystemMemory() types.SystemMemory {
	return types.SystemMemory{TotalKiB: 100, AvailableKiB: 60, FreeKiB: 40}
}

func (s *scriptedInspector) ReadSystemLoad() types.SystemLoad {
	return types.SystemLoad{Load1: 1, Load5: 0.5, Load15: 0.25}
}

var errNoMemory = errors.New("no memory")

type fakeAllocator struct {
	hold   time.Duration
	fail   bool
	allocs atomic.Int64
	trims  atomic.Int64
}

func (a *fakeAllocator) Name() string { return "fake" }

func (a *fakeAllocator) Alloc(size int) ([]byte, error) {
	a.allocs.Add(1)
	if a.fail {
		return nil, errNoMemory
	}
	if a.hold > 0 {
		time.Sleep(a.hold)
	}
	return make([]byte, size), nil
}

func (a *fakeAllocator) Free([]byte) error { return nil }

type trimmingAllocator struct {
	fakeAllocator
}

func (a *trimmingAllocator) Trim() bool {
	a.trims.Add(1)
	return true
}

type memorySink struct {
	mu      sync.Mutex
	results []types.BurstResult
}

func (m *memorySink) Append(r types.BurstResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

// steppingTracer releases a fixed amount between consecutive reads.
type steppingTracer struct {
	reads atomic.Uint64
}

func (s *steppingTracer) Name() string { return "stepping" }

func (s *steppingTracer) Counts() types.ReleaseCounts {
	n := s.reads.Add(1)
	return types.ReleaseCounts{MunmapBytes: n * 8 * types.KiB, MadviseBytes: n * types.KiB}
}

func (s *steppingTracer) Close() error { return nil }
