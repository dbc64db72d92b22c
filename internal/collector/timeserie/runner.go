package timeserie

import (
	"context"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
)

// Run streams a sample every interval until ctx is cancelled. The first
// sample is taken immediately. The channel is closed when the loop stops.
func (s *Sampler) Run(ctx context.Context, interval time.Duration) (<-chan types.Sample, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	out := make(chan types.Sample, 1)

	go func() {
		defer close(out)
		start := s.now()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		emit := func() bool {
			select {
			case out <- s.capture(start):
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !emit() {
					return
				}
			}
		}
	}()

	return out, nil
}
