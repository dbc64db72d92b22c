package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidStress = errors.New("stress run needs at least one caller and one iteration")

// RunConcurrent starts cfg.Callers goroutines that each measure
// cfg.Iterations bursts, so bursts from different callers overlap. The first
// failing caller cancels the others.
func (p *Pipeline) RunConcurrent(ctx context.Context, cfg types.StressConfig) (types.StressResult, error) {
	if cfg.Callers <= 0 || cfg.Iterations <= 0 || cfg.ThreadsPerCall < 0 {
		return types.StressResult{}, fmt.Errorf("%w: callers=%d iterations=%d threads=%d",
			ErrInvalidStress, cfg.Callers, cfg.Iterations, cfg.ThreadsPerCall)
	}

	res := types.StressResult{
		Callers:       make([]types.CallerResult, cfg.Callers),
		TotalSpawns:   cfg.TotalSpawns(),
		InitialRSSKiB: p.inspector.ReadProcessMemory().RSSKiB,
	}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := range cfg.Callers {
		cr := &res.Callers[i]
		cr.ID = i
		cr.Bursts = make([]types.BurstResult, 0, cfg.Iterations)

		g.Go(func() error {
			began := time.Now()
			defer func() { cr.Elapsed = time.Since(began) }()

			for it := 0; it < cfg.Iterations; it++ {
				if it > 0 {
					if err := sleep(gctx, cfg.Pause); err != nil {
						return fmt.Errorf("caller %d interrupted: %w", i, err)
					}
				}
				r, err := p.MeasureBurst(gctx, cfg.ThreadsPerCall)
				if err != nil {
					return fmt.Errorf("caller %d iteration %d: %w", i, it, err)
				}
				cr.Bursts = append(cr.Bursts, r)
				cr.ReportedDeltaKiB += r.DeltaKiB
			}
			return nil
		})
	}
	err := g.Wait()

	res.FinalRSSKiB = p.inspector.ReadProcessMemory().RSSKiB
	res.ObservedDeltaKiB = int64(res.FinalRSSKiB) - int64(res.InitialRSSKiB)
	res.Elapsed = time.Since(start)

	var total time.Duration
	for _, cr := range res.Callers {
		res.ReportedDeltaKiB += cr.ReportedDeltaKiB
		total += cr.Elapsed
	}
	res.MeanCallerElapsed = total / time.Duration(cfg.Callers)
	res.SequentialEstimate = res.MeanCallerElapsed * time.Duration(cfg.Callers)
	if res.Elapsed > 0 {
		res.Parallelism = float64(res.SequentialEstimate) / float64(res.Elapsed)
	}

	if err != nil {
		return res, fmt.Errorf("stress run: %w", err)
	}

	p.logger.Info("stress run measured",
		zap.Int("callers", cfg.Callers),
		zap.Int("iterations", cfg.Iterations),
		zap.Int("threads_per_call", cfg.ThreadsPerCall),
		zap.Int("total_spawns", res.TotalSpawns),
		zap.Int64("observed_delta_kib", res.ObservedDeltaKiB),
		zap.Int64("reported_delta_kib", res.ReportedDeltaKiB),
		zap.Float64("parallelism", res.Parallelism))

	return res, nil
}
