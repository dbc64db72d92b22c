package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, types.DefaultThreadCount, cfg.Burst.Threads)
	require.Equal(t, 64*types.MiB, cfg.Burst.AllocSize)
	require.Equal(t, ModeBurst, cfg.Mode)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	content := `
mode: series
allocator: mmap
burst:
  threads: 32
  alloc_size: 1048576
  timeout: 30s
tracer: ebpf
stress:
  callers: 4
  pause: 5ms
series:
  bursts: 3
  threads_per_burst: 16
  interval: 250ms
journal:
  path: /tmp/arena.jsonl
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, ModeSeries, cfg.Mode)
	require.Equal(t, types.AllocatorMmap, cfg.Allocator)
	require.Equal(t, 32, cfg.Burst.Threads)
	require.Equal(t, types.MiB, cfg.Burst.AllocSize)
	require.Equal(t, 30*time.Second, cfg.Burst.Timeout)
	require.Equal(t, 3, cfg.Series.Bursts)
	require.Equal(t, 250*time.Millisecond, cfg.Series.Interval)
	require.Equal(t, "/tmp/arena.jsonl", cfg.Journal.Path)
	require.Equal(t, types.TracerEbpf, cfg.Tracer)
	require.Equal(t, 4, cfg.Stress.Callers)
	require.Equal(t, 5*time.Millisecond, cfg.Stress.Pause)
	require.Equal(t, 10, cfg.Stress.Iterations)

	// untouched keys keep their defaults
	require.Equal(t, types.DefaultAllocsPerThread, cfg.Burst.AllocsPerThread)
	require.True(t, cfg.Burst.FailFast)

	ctrl := cfg.Controller()
	require.Equal(t, types.MiB, ctrl.AllocSize)
	require.Equal(t, 30*time.Second, ctrl.Timeout)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("burst: [1, 2"), 0o644))
	_, err = LoadFile(bad)
	require.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("mode: forever\n"), 0o644))
	_, err = LoadFile(invalid)
	require.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ARENA_MODE":          "Detailed",
		"ARENA_TRACER":        "EBPF",
		"ARENA_THREADS":       "12",
		"ARENA_ALLOC_SIZE":    "4096",
		"ARENA_FAIL_FAST":     "false",
		"ARENA_TOLERANCE_KIB": "2048",
		"ARENA_JOURNAL":       "results.jsonl",
		"ARENA_CONCURRENCY":   "not-a-number",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	err := cfg.applyEnv(lookup)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ARENA_CONCURRENCY")

	require.Equal(t, ModeDetailed, cfg.Mode)
	require.Equal(t, types.TracerEbpf, cfg.Tracer)
	require.Equal(t, 12, cfg.Burst.Threads)
	require.Equal(t, 4096, cfg.Burst.AllocSize)
	require.False(t, cfg.Burst.FailFast)
	require.Equal(t, int64(2048), cfg.Measure.ToleranceKiB)
	require.Equal(t, "results.jsonl", cfg.Journal.Path)
	require.Zero(t, cfg.Burst.Concurrency)
}

func TestLoadConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	require.NoError(t, os.WriteFile(path, []byte("burst:\n  threads: 8\n"), 0o644))

	t.Setenv("ARENA_CONFIG", path)
	t.Setenv("ARENA_ALLOCATOR", "heap")

	cfg := LoadConfig()
	require.Equal(t, 8, cfg.Burst.Threads)
	require.Equal(t, types.AllocatorHeap, cfg.Allocator)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative threads", func(c *Config) { c.Burst.Threads = -1 }},
		{"zero alloc size", func(c *Config) { c.Burst.AllocSize = 0 }},
		{"zero allocs per thread", func(c *Config) { c.Burst.AllocsPerThread = 0 }},
		{"unknown inspector", func(c *Config) { c.Inspector = "ebpf" }},
		{"unknown allocator", func(c *Config) { c.Allocator = "jemalloc" }},
		{"no bursts", func(c *Config) { c.Series.Bursts = 0 }},
		{"unknown tracer", func(c *Config) { c.Tracer = "uprobe" }},
		{"no stress callers", func(c *Config) { c.Stress.Callers = 0 }},
		{"zero sample interval", func(c *Config) { c.Sample.Interval = 0 }},
		{"negative settle", func(c *Config) { c.Measure.Settle = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
