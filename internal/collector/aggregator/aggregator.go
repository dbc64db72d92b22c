package aggregator

import (
	"math"
	"sync"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
)

// Verdict is advisory only: deltas within the tolerance band are treated as
// noise.
func Verdict(deltaKiB, toleranceKiB int64) string {
	if deltaKiB > toleranceKiB {
		return types.VerdictRetained
	}
	return types.VerdictNoIncrease
}

// TrialAggregator accumulates burst results using Welford's online mean and
// variance.
type TrialAggregator struct {
	mu        sync.Mutex
	tolerance int64
	w         window
}

type window struct {
	count    int
	retained int
	mean     float64
	m2       float64
	min      int64
	max      int64
	total    int64
	threads  int
	failed   int
	elapsed  time.Duration
	start    time.Time
	last     time.Time
}

func NewTrialAggregator(toleranceKiB int64) *TrialAggregator {
	return &TrialAggregator{tolerance: toleranceKiB}
}

func (ta *TrialAggregator) Update(r types.BurstResult) {
	ta.mu.Lock()
	defer ta.mu.Unlock()

	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	ta.w.count++
	if ta.w.count == 1 {
		ta.w.min, ta.w.max = r.DeltaKiB, r.DeltaKiB
		ta.w.start = ts
	} else {
		ta.w.min = min(ta.w.min, r.DeltaKiB)
		ta.w.max = max(ta.w.max, r.DeltaKiB)
	}
	if ts.Before(ta.w.start) {
		ta.w.start = ts
	}
	if ts.After(ta.w.last) {
		ta.w.last = ts
	}

	d := float64(r.DeltaKiB)
	diff := d - ta.w.mean
	ta.w.mean += diff / float64(ta.w.count)
	ta.w.m2 += diff * (d - ta.w.mean)

	ta.w.total += r.DeltaKiB
	ta.w.threads += r.Threads
	ta.w.failed += r.Failed
	ta.w.elapsed += r.Elapsed
	if r.DeltaKiB > ta.tolerance {
		ta.w.retained++
	}
}

func (ta *TrialAggregator) summary() Summary {
	s := Summary{
		Count:       ta.w.count,
		Retained:    ta.w.retained,
		Tolerance:   ta.tolerance,
		MinKiB:      ta.w.min,
		MaxKiB:      ta.w.max,
		TotalKiB:    ta.w.total,
		Threads:     ta.w.threads,
		Failed:      ta.w.failed,
		WindowStart: ta.w.start,
		WindowEnd:   ta.w.last,
	}
	if ta.w.count == 0 {
		return s
	}
	s.MeanKiB = ta.w.mean
	if ta.w.count > 1 {
		s.StdDevKiB = math.Sqrt(ta.w.m2 / float64(ta.w.count-1))
	}
	s.MeanElapsed = ta.w.elapsed / time.Duration(ta.w.count)
	return s
}

// Summary returns the current aggregate without resetting it.
func (ta *TrialAggregator) Summary() Summary {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	return ta.summary()
}

// Flush returns the aggregate and starts a new window.
func (ta *TrialAggregator) Flush() Summary {
	ta.mu.Lock()
	defer ta.mu.Unlock()

	s := ta.summary()
	ta.w = window{}
	return s
}
