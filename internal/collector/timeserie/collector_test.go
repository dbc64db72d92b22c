package timeserie

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stepInspector struct {
	reads atomic.Uint64
}

func (s *stepInspector) Name() string { return "step" }
func (s *stepInspector) ReadProcessMemory() types.MemorySnapshot {
	return types.MemorySnapshot{RSSKiB: 1000 + s.reads.Add(1)}
}
func (s *stepInspector) ReadThreadCount() int                 { return 2 }
func (s *stepInspector) ReadSystemMemory() types.SystemMemory { return types.SystemMemory{} }
func (s *stepInspector) ReadSystemLoad() types.SystemLoad     { return types.SystemLoad{} }

func TestSampleRejectsInvalidInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		in := &stepInspector{}
		s := NewSampler(in, zap.NewNop())

		series, err := s.Sample(context.Background(), time.Second, interval)
		require.ErrorIs(t, err, ErrInvalidInterval)
		require.Nil(t, series)
		require.Zero(t, in.reads.Load())
	}
}

func TestSampleSeries(t *testing.T) {
	in := &stepInspector{}
	s := NewSampler(in, zap.NewNop())

	duration, interval := 200*time.Millisecond, 20*time.Millisecond
	series, err := s.Sample(context.Background(), duration, interval)
	require.NoError(t, err)

	// timer slack can only shrink the count
	require.GreaterOrEqual(t, series.Len(), int(duration/interval)-2)
	require.LessOrEqual(t, series.Len(), int(duration/interval)+1)

	samples := series.Samples()
	for i, sm := range samples {
		require.LessOrEqual(t, sm.Elapsed, duration)
		require.Equal(t, 2, sm.Threads)
		if i > 0 {
			require.GreaterOrEqual(t, sm.Elapsed, samples[i-1].Elapsed)
			require.Greater(t, sm.Snapshot.RSSKiB, samples[i-1].Snapshot.RSSKiB)
		}
	}

	peak, ok := series.Peak()
	require.True(t, ok)
	require.Equal(t, samples[len(samples)-1], peak)
}

func TestSampleZeroDuration(t *testing.T) {
	s := NewSampler(&stepInspector{}, zap.NewNop())
	series, err := s.Sample(context.Background(), 0, time.Millisecond)
	require.NoError(t, err)
	require.Zero(t, series.Len())
}

func TestSampleCancel(t *testing.T) {
	s := NewSampler(&stepInspector{}, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	series, err := s.Sample(ctx, time.Hour, 10*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 10*time.Second)
	require.GreaterOrEqual(t, series.Len(), 1)
}

func TestSampleTinyInterval(t *testing.T) {
	s := NewSampler(&stepInspector{}, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var (
		series *types.SampleSeries
		err    error
	)
	require.NotPanics(t, func() {
		series, err = s.Sample(ctx, time.Hour, time.Nanosecond)
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.GreaterOrEqual(t, series.Len(), 1)
}

func TestRun(t *testing.T) {
	in := &stepInspector{}
	s := NewSampler(in, zap.NewNop())

	_, err := s.Run(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidInterval)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Run(ctx, 5*time.Millisecond)
	require.NoError(t, err)

	var got []types.Sample
	for sm := range ch {
		got = append(got, sm)
		if len(got) == 3 {
			cancel()
			break
		}
	}
	cancel()
	for range ch {
	}

	require.Len(t, got, 3)
	require.Less(t, got[0].Snapshot.RSSKiB, got[2].Snapshot.RSSKiB)
}
