package collector

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ALEYI17/InfraSight_arena/internal/burst"
	"github.com/ALEYI17/InfraSight_arena/internal/collector/aggregator"
	"github.com/ALEYI17/InfraSight_arena/internal/collector/timeserie"
	"github.com/ALEYI17/InfraSight_arena/pkg/logutil"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"go.uber.org/zap"
)

// Sink receives every measured burst, e.g. a results journal.
type Sink interface {
	Append(types.BurstResult) error
}

type Options struct {
	// WatchInterval > 0 samples RSS while a burst runs to record its peak.
	WatchInterval time.Duration
	// Trim calls the allocator's trim hook after the settle period of a
	// detailed pass, when the allocator has one.
	Trim         bool
	ToleranceKiB int64
	Sink         Sink
	// Tracer, when set, attributes munmap and madvise traffic to bursts.
	Tracer types.ReleaseTracer
}

// Pipeline measures bursts: snapshot, burst, snapshot.
type Pipeline struct {
	inspector  types.Inspector
	controller *burst.Controller
	sampler    *timeserie.Sampler
	trials     *aggregator.TrialAggregator
	opts       Options
	logger     *zap.Logger
	pid        int
}

func NewPipeline(in types.Inspector, ctrl *burst.Controller, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = logutil.GetLogger()
	}
	return &Pipeline{
		inspector:  in,
		controller: ctrl,
		sampler:    timeserie.NewSampler(in, logger),
		trials:     aggregator.NewTrialAggregator(opts.ToleranceKiB),
		opts:       opts,
		logger:     logger,
		pid:        os.Getpid(),
	}
}

func (p *Pipeline) Sampler() *timeserie.Sampler {
	return p.sampler
}

// Config echoes the burst parameters for a burst of the given width.
func (p *Pipeline) Config(threads int) types.BurstConfig {
	cfg := p.controller.Config()
	return types.BurstConfig{
		Threads:         threads,
		AllocsPerThread: cfg.AllocsPerThread,
		AllocSize:       cfg.AllocSize,
		Concurrency:     cfg.Concurrency,
	}
}

func (p *Pipeline) CurrentRSSKiB() uint64 {
	return p.inspector.ReadProcessMemory().RSSKiB
}

func (p *Pipeline) Snapshot() types.MemorySnapshot {
	return p.inspector.ReadProcessMemory()
}

// Trials summarizes every burst measured so far.
func (p *Pipeline) Trials() aggregator.Summary {
	return p.trials.Summary()
}

// watch samples RSS until stop is called and returns the highest value seen.
func (p *Pipeline) watch(ctx context.Context) (stop func() uint64) {
	if p.opts.WatchInterval <= 0 {
		return func() uint64 { return 0 }
	}

	wctx, cancel := context.WithCancel(ctx)
	samples, err := p.sampler.Run(wctx, p.opts.WatchInterval)
	if err != nil {
		cancel()
		return func() uint64 { return 0 }
	}

	peak := make(chan uint64, 1)
	go func() {
		var highest uint64
		for s := range samples {
			highest = max(highest, s.Snapshot.RSSKiB)
		}
		peak <- highest
	}()

	return func() uint64 {
		cancel()
		return <-peak
	}
}

// MeasureBurst runs exactly one burst between two snapshots. The final
// snapshot is only taken after every worker has returned.
func (p *Pipeline) MeasureBurst(ctx context.Context, threads int) (types.BurstResult, error) {
	start := time.Now()
	initial := p.inspector.ReadProcessMemory().RSSKiB
	var released types.ReleaseCounts
	if p.opts.Tracer != nil {
		released = p.opts.Tracer.Counts()
	}

	stop := p.watch(ctx)
	rep, err := p.controller.RunBurst(ctx, threads)
	peak := stop()
	if err != nil {
		return types.BurstResult{}, fmt.Errorf("measure burst: %w", err)
	}

	final := p.inspector.ReadProcessMemory().RSSKiB
	res := types.NewBurstResult(initial, final, threads, time.Since(start))
	res.Failed = rep.Failed
	res.PeakDuringKiB = peak
	if p.opts.Tracer != nil {
		d := p.opts.Tracer.Counts().Since(released)
		res.UnmappedKiB = d.MunmapBytes / types.KiB
		res.AdvisedKiB = d.MadviseBytes / types.KiB
	}

	p.trials.Update(res)
	if p.opts.Sink != nil {
		if err := p.opts.Sink.Append(res); err != nil {
			p.logger.Error("failed to record burst result", zap.Error(err))
		}
	}

	p.logger.Info("burst measured",
		zap.Int("threads", threads),
		zap.Uint64("initial_rss_kib", res.InitialRSSKiB),
		zap.Uint64("final_rss_kib", res.FinalRSSKiB),
		zap.Int64("delta_kib", res.DeltaKiB),
		zap.Uint64("peak_during_kib", res.PeakDuringKiB),
		zap.Uint64("unmapped_kib", res.UnmappedKiB),
		zap.Uint64("advised_kib", res.AdvisedKiB),
		zap.Int("failed", res.Failed),
		zap.Duration("elapsed", res.Elapsed),
		zap.String("verdict", aggregator.Verdict(res.DeltaKiB, p.opts.ToleranceKiB)))

	return res, nil
}
