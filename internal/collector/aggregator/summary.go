package aggregator

import "time"

// Summary condenses repeated trials of the same burst.
type Summary struct {
	Count     int     `json:"count"`
	Retained  int     `json:"retained"`
	Tolerance int64   `json:"tolerance_kib"`
	MeanKiB   float64 `json:"mean_delta_kib"`
	StdDevKiB float64 `json:"stddev_delta_kib"`
	MinKiB    int64   `json:"min_delta_kib"`
	MaxKiB    int64   `json:"max_delta_kib"`
	TotalKiB  int64   `json:"total_delta_kib"`

	Threads     int           `json:"total_threads"`
	Failed      int           `json:"failed"`
	MeanElapsed time.Duration `json:"mean_elapsed_ns"`

	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// Verdict applies the advisory display policy of a single summary: the mean
// delta against the tolerance band.
func (s Summary) Verdict() string {
	if s.Count == 0 {
		return Verdict(0, s.Tolerance)
	}
	return Verdict(int64(s.MeanKiB), s.Tolerance)
}
