package burst

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/logutil"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxThreads stays below the Go runtime's default limit of 10000 OS
// threads, past which the process aborts.
const DefaultMaxThreads = 8000

var (
	ErrInvalidThreads = errors.New("thread count must not be negative")
	ErrThreadLimit    = errors.New("concurrency exceeds the thread budget")
)

type Config struct {
	AllocsPerThread int
	AllocSize       int
	// Concurrency bounds how many workers run at once; 0 lets all of them.
	Concurrency int
	MaxThreads  int
	// FailFast aborts the burst on the first failing worker. When false,
	// failures are collected and siblings keep running.
	FailFast   bool
	ExitThread bool
	// Timeout bounds a whole burst; 0 disables it.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		AllocsPerThread: types.DefaultAllocsPerThread,
		AllocSize:       types.DefaultAllocSize,
		MaxThreads:      DefaultMaxThreads,
		FailFast:        true,
		ExitThread:      true,
	}
}

// Report describes what happened inside one burst.
type Report struct {
	Requested   int
	Started     int
	Completed   int
	Failed      int
	Skipped     int
	Concurrency int
	Elapsed     time.Duration
	// Throttle is set, wrapping ErrThreadLimit, when the requested
	// concurrency was reduced to fit the thread budget.
	Throttle error
	// Err holds every worker failure of the burst.
	Err error
}

type Stats struct {
	Bursts         int64
	WorkersStarted int64
	WorkersFailed  int64
	LastBurst      time.Duration
}

// Controller runs bursts of workers. All state lives on the controller; two
// controllers never share counters.
type Controller struct {
	cfg         Config
	alloc       types.Allocator
	logger      *zap.Logger
	threadLimit func() int

	bursts    atomic.Int64
	started   atomic.Int64
	failed    atomic.Int64
	lastBurst atomic.Int64
}

func NewController(cfg Config, a types.Allocator, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = logutil.GetLogger()
	}
	if cfg.AllocsPerThread <= 0 {
		cfg.AllocsPerThread = types.DefaultAllocsPerThread
	}
	if cfg.AllocSize <= 0 {
		cfg.AllocSize = types.DefaultAllocSize
	}
	return &Controller{
		cfg:         cfg,
		alloc:       a,
		logger:      logger,
		threadLimit: nprocLimit,
	}
}

func (c *Controller) Config() Config {
	return c.cfg
}

func (c *Controller) Allocator() types.Allocator {
	return c.alloc
}

func (c *Controller) Stats() Stats {
	return Stats{
		Bursts:         c.bursts.Load(),
		WorkersStarted: c.started.Load(),
		WorkersFailed:  c.failed.Load(),
		LastBurst:      time.Duration(c.lastBurst.Load()),
	}
}

func (c *Controller) concurrency(threads int) (int, error) {
	n := c.cfg.Concurrency
	if n <= 0 || n > threads {
		n = threads
	}

	budget := c.cfg.MaxThreads
	if lim := c.threadLimit(); lim > 0 && (budget <= 0 || lim < budget) {
		budget = lim
	}
	if budget > 0 && n > budget {
		return budget, fmt.Errorf("%w: concurrency %d clamped to %d", ErrThreadLimit, n, budget)
	}
	return n, nil
}

// RunBurst starts threads workers and blocks until every started worker has
// returned. With FailFast the first failure is returned and unstarted
// workers are skipped; otherwise failures are only reported in Report.Err.
func (c *Controller) RunBurst(ctx context.Context, threads int) (Report, error) {
	rep := Report{Requested: threads}
	if threads < 0 {
		return rep, fmt.Errorf("%w: %d", ErrInvalidThreads, threads)
	}
	if threads == 0 {
		return rep, nil
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	conc, throttle := c.concurrency(threads)
	rep.Concurrency = conc
	rep.Throttle = throttle
	if throttle != nil {
		c.logger.Warn("burst concurrency throttled", zap.Int("requested", threads), zap.Int("concurrency", conc), zap.Error(throttle))
	}

	var (
		started   atomic.Int64
		completed atomic.Int64
		failed    atomic.Int64
		mu        sync.Mutex
		errs      error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(conc)

	start := time.Now()
	for i := 0; i < threads; i++ {
		if gctx.Err() != nil {
			break
		}
		w := Worker{
			ID:         i,
			Allocator:  c.alloc,
			Allocs:     c.cfg.AllocsPerThread,
			Size:       c.cfg.AllocSize,
			ExitThread: c.cfg.ExitThread,
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			started.Add(1)
			if err := w.Run(); err != nil {
				failed.Add(1)
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				if c.cfg.FailFast {
					return err
				}
				return nil
			}
			completed.Add(1)
			return nil
		})
	}
	waitErr := g.Wait()

	rep.Elapsed = time.Since(start)
	rep.Started = int(started.Load())
	rep.Completed = int(completed.Load())
	rep.Failed = int(failed.Load())
	rep.Skipped = threads - rep.Started
	rep.Err = errs

	c.bursts.Add(1)
	c.started.Add(int64(rep.Started))
	c.failed.Add(int64(rep.Failed))
	c.lastBurst.Store(int64(rep.Elapsed))

	c.logger.Debug("burst finished",
		zap.Int("requested", threads),
		zap.Int("started", rep.Started),
		zap.Int("completed", rep.Completed),
		zap.Int("failed", rep.Failed),
		zap.Int("skipped", rep.Skipped),
		zap.Duration("elapsed", rep.Elapsed))

	if waitErr != nil {
		return rep, fmt.Errorf("burst aborted after %d of %d workers: %w", rep.Started, threads, waitErr)
	}
	if err := ctx.Err(); err != nil && rep.Skipped > 0 {
		return rep, fmt.Errorf("burst interrupted with %d workers unstarted: %w", rep.Skipped, err)
	}
	if rep.Failed > 0 {
		c.logger.Warn("burst workers failed", zap.Int("failed", rep.Failed), zap.Error(errs))
	}
	return rep, nil
}
