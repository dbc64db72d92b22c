package timeserie

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/logutil"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"go.uber.org/zap"
)

var ErrInvalidInterval = errors.New("sampling interval must be positive")

// maxSeriesHint caps the up-front series allocation; longer runs grow it.
const maxSeriesHint = 1024

// Sampler polls an inspector. It never runs two loops against itself; each
// call owns its own series.
type Sampler struct {
	inspector types.Inspector
	logger    *zap.Logger
	now       func() time.Time
}

func NewSampler(in types.Inspector, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = logutil.GetLogger()
	}
	return &Sampler{
		inspector: in,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Sampler) capture(start time.Time) types.Sample {
	return types.Sample{
		Snapshot: s.inspector.ReadProcessMemory(),
		Threads:  s.inspector.ReadThreadCount(),
		Elapsed:  s.now().Sub(start),
	}
}

// Sample captures a snapshot every interval until duration has elapsed. A
// cancelled context stops the loop early and returns what was collected
// together with the context error.
func (s *Sampler) Sample(ctx context.Context, duration, interval time.Duration) (*types.SampleSeries, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}

	series := types.NewSampleSeries(min(int(duration/interval)+1, maxSeriesHint))
	start := s.now()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		if s.now().Sub(start) >= duration {
			break
		}

		sample := s.capture(start)
		if sample.Elapsed > duration {
			break
		}
		series.Append(sample)

		select {
		case <-ctx.Done():
			s.logger.Debug("sampling cancelled", zap.Int("samples", series.Len()))
			return series, ctx.Err()
		case <-timer.C:
		}
		timer.Reset(interval)
	}

	s.logger.Debug("sampling finished", zap.Int("samples", series.Len()), zap.Duration("duration", duration))
	return series, nil
}
