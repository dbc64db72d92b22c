package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"go.uber.org/zap"
)

var ErrInvalidSeries = errors.New("series needs at least one burst")

// RunSeries measures cfg.Bursts bursts back to back, pausing cfg.Interval
// between them, and compares the RSS growth seen across the whole series
// with the sum of the per-burst deltas.
func (p *Pipeline) RunSeries(ctx context.Context, cfg types.SeriesConfig) (types.SeriesResult, error) {
	if cfg.Bursts <= 0 {
		return types.SeriesResult{}, fmt.Errorf("%w: %d", ErrInvalidSeries, cfg.Bursts)
	}

	res := types.SeriesResult{
		Bursts:        make([]types.BurstResult, 0, cfg.Bursts),
		InitialRSSKiB: p.inspector.ReadProcessMemory().RSSKiB,
	}
	start := time.Now()

	finish := func() {
		res.FinalRSSKiB = p.inspector.ReadProcessMemory().RSSKiB
		res.ObservedDeltaKiB = int64(res.FinalRSSKiB) - int64(res.InitialRSSKiB)
		if res.ReportedDeltaKiB > 0 {
			res.Amplification = float64(res.ObservedDeltaKiB) / float64(res.ReportedDeltaKiB)
		}
		res.Elapsed = time.Since(start)
	}

	for i := 0; i < cfg.Bursts; i++ {
		if i > 0 {
			if err := sleep(ctx, cfg.Interval); err != nil {
				finish()
				return res, fmt.Errorf("series interrupted before burst %d: %w", i, err)
			}
		}

		r, err := p.MeasureBurst(ctx, cfg.ThreadsPerBurst)
		if err != nil {
			finish()
			return res, fmt.Errorf("series burst %d: %w", i, err)
		}
		res.Bursts = append(res.Bursts, r)
		res.ReportedDeltaKiB += r.DeltaKiB

		p.logger.Debug("series burst done", zap.Int("burst", i+1), zap.Int("of", cfg.Bursts), zap.Int64("delta_kib", r.DeltaKiB))
	}

	finish()
	p.logger.Info("series measured",
		zap.Int("bursts", cfg.Bursts),
		zap.Int("threads_per_burst", cfg.ThreadsPerBurst),
		zap.Int64("observed_delta_kib", res.ObservedDeltaKiB),
		zap.Int64("reported_delta_kib", res.ReportedDeltaKiB),
		zap.Float64("amplification", res.Amplification))

	return res, nil
}
