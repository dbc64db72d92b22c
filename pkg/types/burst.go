package types

import "time"

// BurstConfig describes one burst. Concurrency 0 means every worker may run
// at once.
type BurstConfig struct {
	Threads         int `json:"thread_count" yaml:"threads"`
	AllocsPerThread int `json:"allocs_per_thread" yaml:"allocs_per_thread"`
	AllocSize       int `json:"alloc_size_bytes" yaml:"alloc_size"`
	Concurrency     int `json:"concurrency" yaml:"concurrency"`
}

func DefaultBurstConfig() BurstConfig {
	return BurstConfig{
		Threads:         DefaultThreadCount,
		AllocsPerThread: DefaultAllocsPerThread,
		AllocSize:       DefaultAllocSize,
	}
}

// TotalBytes is the number of bytes the burst touches.
func (c BurstConfig) TotalBytes() uint64 {
	return uint64(c.Threads) * uint64(c.AllocsPerThread) * uint64(c.AllocSize)
}

func (c BurstConfig) AllocSizeMiB() float64 {
	return float64(c.AllocSize) / float64(MiB)
}

// BurstResult is the outcome of one measured burst. Build it with
// NewBurstResult so DeltaKiB always equals FinalRSSKiB - InitialRSSKiB.
type BurstResult struct {
	InitialRSSKiB uint64        `json:"initial_rss_kib"`
	FinalRSSKiB   uint64        `json:"final_rss_kib"`
	DeltaKiB      int64         `json:"delta_kib"`
	Threads       int           `json:"thread_count"`
	Failed        int           `json:"failed"`
	Elapsed       time.Duration `json:"elapsed_ns"`
	PeakDuringKiB uint64        `json:"peak_during_kib,omitempty"`
	// UnmappedKiB and AdvisedKiB are the bytes the process gave back through
	// munmap and madvise while the burst ran, when a tracer is attached.
	UnmappedKiB uint64    `json:"unmapped_kib,omitempty"`
	AdvisedKiB  uint64    `json:"advised_kib,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewBurstResult(initial, final uint64, threads int, elapsed time.Duration) BurstResult {
	return BurstResult{
		InitialRSSKiB: initial,
		FinalRSSKiB:   final,
		DeltaKiB:      int64(final) - int64(initial),
		Threads:       threads,
		Elapsed:       elapsed,
		Timestamp:     time.Now(),
	}
}

func (r BurstResult) DeltaMiB() float64 {
	return float64(r.DeltaKiB) / 1024.0
}

type DetailedResult struct {
	PID               int           `json:"pid"`
	Config            BurstConfig   `json:"config"`
	InitialRSSKiB     uint64        `json:"initial_rss_kib"`
	AfterBurstRSSKiB  uint64        `json:"after_task_rss_kib"`
	Settled           bool          `json:"settled"`
	Settle            time.Duration `json:"settle_ns,omitempty"`
	AfterSettleRSSKiB uint64        `json:"after_sleep_rss_kib,omitempty"`
	Trimmed           bool          `json:"trimmed"`
	AfterTrimRSSKiB   uint64        `json:"after_trim_rss_kib,omitempty"`
	Failed            int           `json:"failed"`
	Elapsed           time.Duration `json:"elapsed_ns"`
}

func (d DetailedResult) BurstDeltaKiB() int64 {
	return int64(d.AfterBurstRSSKiB) - int64(d.InitialRSSKiB)
}

type SeriesConfig struct {
	Bursts          int           `yaml:"bursts"`
	ThreadsPerBurst int           `yaml:"threads_per_burst"`
	Interval        time.Duration `yaml:"interval"`
}

type SeriesResult struct {
	Bursts           []BurstResult `json:"bursts"`
	InitialRSSKiB    uint64        `json:"initial_rss_kib"`
	FinalRSSKiB      uint64        `json:"final_rss_kib"`
	ObservedDeltaKiB int64         `json:"total_observed_delta_kib"`
	ReportedDeltaKiB int64         `json:"total_burst_reported_kib"`
	Amplification    float64       `json:"memory_amplification"`
	Elapsed          time.Duration `json:"elapsed_ns"`
}

// StressConfig runs Callers concurrent measurement loops, each doing
// Iterations bursts of ThreadsPerCall workers with Pause between them.
type StressConfig struct {
	Callers        int           `yaml:"callers"`
	Iterations     int           `yaml:"iterations"`
	ThreadsPerCall int           `yaml:"threads_per_call"`
	Pause          time.Duration `yaml:"pause"`
}

func (c StressConfig) TotalSpawns() int {
	return c.Callers * c.Iterations * c.ThreadsPerCall
}

type CallerResult struct {
	ID               int           `json:"caller_id"`
	Bursts           []BurstResult `json:"bursts"`
	ReportedDeltaKiB int64         `json:"total_memory_delta_kib"`
	Elapsed          time.Duration `json:"elapsed_ns"`
}

type StressResult struct {
	Callers            []CallerResult `json:"caller_results"`
	TotalSpawns        int            `json:"total_thread_spawns"`
	InitialRSSKiB      uint64         `json:"initial_rss_kib"`
	FinalRSSKiB        uint64         `json:"final_rss_kib"`
	ObservedDeltaKiB   int64          `json:"total_memory_delta_kib"`
	ReportedDeltaKiB   int64          `json:"caller_reported_kib"`
	Elapsed            time.Duration  `json:"total_duration_ns"`
	MeanCallerElapsed  time.Duration  `json:"avg_caller_duration_ns"`
	SequentialEstimate time.Duration  `json:"theoretical_sequential_ns"`
	// Parallelism is SequentialEstimate / Elapsed; values near Callers mean
	// the callers really overlapped.
	Parallelism float64 `json:"parallelism_factor"`
}
