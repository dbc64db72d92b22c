package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ALEYI17/InfraSight_arena/internal/alloc"
	"github.com/ALEYI17/InfraSight_arena/internal/burst"
	"github.com/ALEYI17/InfraSight_arena/internal/collector"
	"github.com/ALEYI17/InfraSight_arena/internal/collector/aggregator"
	"github.com/ALEYI17/InfraSight_arena/internal/config"
	"github.com/ALEYI17/InfraSight_arena/internal/inspector"
	"github.com/ALEYI17/InfraSight_arena/internal/journal"
	"github.com/ALEYI17/InfraSight_arena/internal/loaders"
	"github.com/ALEYI17/InfraSight_arena/pkg/logutil"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logutil.InitLogger()

	go func() {
		sigch := make(chan os.Signal, 1)
		signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigch
		logutil.GetLogger().Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	cfg := config.LoadConfig()
	logutil.InitLoggerWithLevel(cfg.LogLevel)
	logger := logutil.GetLogger()

	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil {
			logger.Fatal("Thread count must be an integer", zap.String("arg", os.Args[1]), zap.Error(err))
		}
		cfg.Burst.Threads = n
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	if err := execute(ctx, cfg, logger); err != nil {
		logger.Error("Arena run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("Arena run finished")
	logger.Sync()
}

// execute builds the components named by cfg and runs its mode.
func execute(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	in, err := inspector.New(cfg.Inspector)
	if err != nil {
		return fmt.Errorf("creating inspector %q: %w", cfg.Inspector, err)
	}
	logger.Info("Inspector ready", zap.String("inspector", in.Name()))

	a, err := alloc.New(cfg.Allocator)
	if errors.Is(err, alloc.ErrUnsupported) {
		logger.Warn("Allocator unsupported on this build, falling back to heap",
			zap.String("allocator", cfg.Allocator))
		a, err = alloc.New(types.AllocatorHeap)
	}
	if err != nil {
		return fmt.Errorf("creating allocator %q: %w", cfg.Allocator, err)
	}

	tracer, err := loaders.NewReleaseTracer(cfg.Tracer)
	if err != nil {
		logger.Warn("Release tracer unavailable, continuing without it",
			zap.String("tracer", cfg.Tracer), zap.Error(err))
		tracer = loaders.Noop{}
	}
	defer tracer.Close()

	opts := collector.Options{
		WatchInterval: cfg.Measure.WatchInterval,
		Trim:          cfg.Measure.Trim,
		ToleranceKiB:  cfg.Measure.ToleranceKiB,
		Tracer:        tracer,
	}
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
		opts.Sink = j
	}

	ctrl := burst.NewController(cfg.Controller(), a, logger)
	p := collector.NewPipeline(in, ctrl, opts, logger)

	logger.Info("Starting arena run",
		zap.String("mode", cfg.Mode),
		zap.String("allocator", a.Name()),
		zap.String("tracer", tracer.Name()),
		zap.Int("threads", cfg.Burst.Threads),
		zap.Int("alloc_size", cfg.Burst.AllocSize),
		zap.Int("allocs_per_thread", cfg.Burst.AllocsPerThread),
		zap.Uint64("requested_mib", p.Config(cfg.Burst.Threads).TotalBytes()/types.MiB))

	if err := run(ctx, cfg, p, logger); err != nil {
		return err
	}

	if cfg.Measure.ObserveFor > 0 {
		observe(ctx, cfg, p, logger)
	}

	if cfg.Journal.Path != "" {
		rep, err := journal.Summarize(cfg.Journal.Path, cfg.Measure.ToleranceKiB)
		if err != nil {
			return err
		}
		logSummary(logger, "Journal summary", rep.Summary, zap.Int("skipped", rep.Skipped))
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, p *collector.Pipeline, logger *zap.Logger) error {
	switch cfg.Mode {
	case config.ModeBurst:
		res, err := p.MeasureBurst(ctx, cfg.Burst.Threads)
		if err != nil {
			return err
		}
		logger.Info("Burst result",
			zap.Float64("initial_rss_mib", types.KiBToMiB(res.InitialRSSKiB)),
			zap.Float64("final_rss_mib", types.KiBToMiB(res.FinalRSSKiB)),
			zap.Float64("delta_mib", res.DeltaMiB()),
			zap.String("verdict", aggregator.Verdict(res.DeltaKiB, cfg.Measure.ToleranceKiB)))

	case config.ModeDetailed:
		res, err := p.Detailed(ctx, cfg.Burst.Threads, cfg.Measure.Settle)
		if err != nil {
			return err
		}
		fields := []zap.Field{
			zap.Int("pid", res.PID),
			zap.Uint64("initial_rss_kib", res.InitialRSSKiB),
			zap.Uint64("after_burst_rss_kib", res.AfterBurstRSSKiB),
			zap.Int64("burst_delta_kib", res.BurstDeltaKiB()),
			zap.Int("failed", res.Failed),
			zap.Duration("elapsed", res.Elapsed),
		}
		if res.Settled {
			fields = append(fields, zap.Duration("settle", res.Settle), zap.Uint64("after_settle_rss_kib", res.AfterSettleRSSKiB))
		}
		if res.Trimmed {
			fields = append(fields, zap.Uint64("after_trim_rss_kib", res.AfterTrimRSSKiB))
		}
		logger.Info("Detailed result", fields...)

	case config.ModeSeries:
		res, err := p.RunSeries(ctx, cfg.Series)
		if err != nil {
			return err
		}
		logger.Info("Series result",
			zap.Int("bursts", len(res.Bursts)),
			zap.Uint64("initial_rss_kib", res.InitialRSSKiB),
			zap.Uint64("final_rss_kib", res.FinalRSSKiB),
			zap.Int64("observed_delta_kib", res.ObservedDeltaKiB),
			zap.Int64("reported_delta_kib", res.ReportedDeltaKiB),
			zap.Float64("amplification", res.Amplification),
			zap.Duration("elapsed", res.Elapsed))
		logSummary(logger, "Series trials", p.Trials())

	case config.ModeStress:
		res, err := p.RunConcurrent(ctx, cfg.Stress)
		if err != nil {
			return err
		}
		logger.Info("Stress result",
			zap.Int("callers", len(res.Callers)),
			zap.Int("total_spawns", res.TotalSpawns),
			zap.Uint64("initial_rss_kib", res.InitialRSSKiB),
			zap.Uint64("final_rss_kib", res.FinalRSSKiB),
			zap.Int64("observed_delta_kib", res.ObservedDeltaKiB),
			zap.Int64("reported_delta_kib", res.ReportedDeltaKiB),
			zap.Duration("elapsed", res.Elapsed),
			zap.Duration("mean_caller_elapsed", res.MeanCallerElapsed),
			zap.Float64("parallelism", res.Parallelism))
		logSummary(logger, "Stress trials", p.Trials())

	case config.ModeSample:
		series, err := p.Sampler().Sample(ctx, cfg.Sample.Duration, cfg.Sample.Interval)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		for _, s := range series.Samples() {
			logger.Info("Sample",
				zap.Duration("elapsed", s.Elapsed),
				zap.Uint64("rss_kib", s.Snapshot.RSSKiB),
				zap.Uint64("vm_size_kib", s.Snapshot.VirtualKiB),
				zap.Int("threads", s.Threads))
		}

	case config.ModeStats:
		rep := p.Report()
		sys := p.SystemStats()
		logger.Info("Process stats",
			zap.Int("pid", rep.PID),
			zap.Int("threads", rep.Threads),
			zap.Any("memory", rep.Memory),
			zap.Any("config", rep.Config),
			zap.Time("timestamp", rep.Timestamp))
		logger.Info("System stats",
			zap.Float64("load1", sys.Load.Load1),
			zap.Float64("load5", sys.Load.Load5),
			zap.Float64("load15", sys.Load.Load15),
			zap.Any("memory", sys.Memory))
	}
	return nil
}

// observe keeps sampling after the run so memory released late is visible.
func observe(ctx context.Context, cfg *config.Config, p *collector.Pipeline, logger *zap.Logger) {
	series, err := p.Sampler().Sample(ctx, cfg.Measure.ObserveFor, cfg.Sample.Interval)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("Observation window failed", zap.Error(err))
		return
	}
	if series.Len() == 0 {
		return
	}
	peak, _ := series.Peak()
	last := series.At(series.Len() - 1)
	logger.Info("Observation window",
		zap.Duration("window", cfg.Measure.ObserveFor),
		zap.Int("samples", series.Len()),
		zap.Uint64("peak_rss_kib", peak.Snapshot.RSSKiB),
		zap.Uint64("last_rss_kib", last.Snapshot.RSSKiB))
}

func logSummary(logger *zap.Logger, msg string, s aggregator.Summary, extra ...zap.Field) {
	fields := []zap.Field{
		zap.Int("count", s.Count),
		zap.Int("retained", s.Retained),
		zap.Float64("mean_delta_kib", s.MeanKiB),
		zap.Float64("stddev_delta_kib", s.StdDevKiB),
		zap.Int64("min_delta_kib", s.MinKiB),
		zap.Int64("max_delta_kib", s.MaxKiB),
		zap.Duration("mean_elapsed", s.MeanElapsed),
		zap.String("verdict", s.Verdict()),
	}
	logger.Info(msg, append(fields, extra...)...)
}
