package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"go.uber.org/zap"
)

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Detailed runs one burst and records RSS before it, right after it and,
// when settle > 0, again after settling. With Options.Trim it finally asks
// the allocator to release retained memory and records RSS once more.
func (p *Pipeline) Detailed(ctx context.Context, threads int, settle time.Duration) (types.DetailedResult, error) {
	res := types.DetailedResult{
		PID:           p.pid,
		Config:        p.Config(threads),
		InitialRSSKiB: p.inspector.ReadProcessMemory().RSSKiB,
	}

	rep, err := p.controller.RunBurst(ctx, threads)
	if err != nil {
		return res, fmt.Errorf("detailed burst: %w", err)
	}
	res.AfterBurstRSSKiB = p.inspector.ReadProcessMemory().RSSKiB
	res.Failed = rep.Failed
	res.Elapsed = rep.Elapsed

	if settle > 0 {
		if err := sleep(ctx, settle); err != nil {
			return res, fmt.Errorf("detailed settle: %w", err)
		}
		res.Settled = true
		res.Settle = settle
		res.AfterSettleRSSKiB = p.inspector.ReadProcessMemory().RSSKiB
	}

	if p.opts.Trim {
		if tr, ok := p.controller.Allocator().(types.Trimmer); ok {
			released := tr.Trim()
			res.Trimmed = true
			res.AfterTrimRSSKiB = p.inspector.ReadProcessMemory().RSSKiB
			p.logger.Debug("allocator trimmed", zap.Bool("released", released))
		}
	}

	p.logger.Info("detailed burst measured",
		zap.Int("pid", res.PID),
		zap.Int("threads", threads),
		zap.Uint64("initial_rss_kib", res.InitialRSSKiB),
		zap.Uint64("after_burst_rss_kib", res.AfterBurstRSSKiB),
		zap.Uint64("after_settle_rss_kib", res.AfterSettleRSSKiB),
		zap.Uint64("after_trim_rss_kib", res.AfterTrimRSSKiB))

	return res, nil
}
