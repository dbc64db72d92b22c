package types

import "time"

type Sample struct {
	Elapsed  time.Duration  `json:"elapsed_ns"`
	Snapshot MemorySnapshot `json:"snapshot"`
	Threads  int            `json:"thread_count"`
}

// SampleSeries is an append-only, time-ordered list of samples.
type SampleSeries struct {
	samples []Sample
}

func NewSampleSeries(capacity int) *SampleSeries {
	if capacity < 0 {
		capacity = 0
	}
	return &SampleSeries{samples: make([]Sample, 0, capacity)}
}

func (s *SampleSeries) Append(sample Sample) {
	s.samples = append(s.samples, sample)
}

func (s *SampleSeries) Len() int {
	return len(s.samples)
}

func (s *SampleSeries) At(i int) Sample {
	return s.samples[i]
}

// Samples returns a copy of the series.
func (s *SampleSeries) Samples() []Sample {
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Peak returns the sample with the highest resident size.
func (s *SampleSeries) Peak() (Sample, bool) {
	if len(s.samples) == 0 {
		return Sample{}, false
	}
	peak := s.samples[0]
	for _, sm := range s.samples[1:] {
		if sm.Snapshot.RSSKiB > peak.Snapshot.RSSKiB {
			peak = sm
		}
	}
	return peak, true
}
