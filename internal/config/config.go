package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ALEYI17/InfraSight_arena/internal/burst"
	"github.com/ALEYI17/InfraSight_arena/pkg/logutil"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	ModeBurst    = "burst"
	ModeDetailed = "detailed"
	ModeSeries   = "series"
	ModeSample   = "sample"
	ModeStats    = "stats"
	ModeStress   = "stress"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Mode      string `yaml:"mode"`
	Inspector string `yaml:"inspector"`
	Allocator string `yaml:"allocator"`
	Tracer    string `yaml:"tracer"`
	LogLevel  string `yaml:"log_level"`

	Burst   BurstConfig        `yaml:"burst"`
	Measure MeasureConfig      `yaml:"measure"`
	Series  types.SeriesConfig `yaml:"series"`
	Stress  types.StressConfig `yaml:"stress"`
	Sample  SampleConfig       `yaml:"sample"`
	Journal JournalConfig      `yaml:"journal"`
}

type BurstConfig struct {
	Threads         int           `yaml:"threads"`
	AllocsPerThread int           `yaml:"allocs_per_thread"`
	AllocSize       int           `yaml:"alloc_size"`
	Concurrency     int           `yaml:"concurrency"`
	MaxThreads      int           `yaml:"max_threads"`
	FailFast        bool          `yaml:"fail_fast"`
	ExitThread      bool          `yaml:"exit_thread"`
	Timeout         time.Duration `yaml:"timeout"`
}

type MeasureConfig struct {
	Settle        time.Duration `yaml:"settle"`
	Trim          bool          `yaml:"trim"`
	WatchInterval time.Duration `yaml:"watch_interval"`
	ToleranceKiB  int64         `yaml:"tolerance_kib"`
	// ObserveFor keeps sampling after the run so late releases show up.
	ObserveFor time.Duration `yaml:"observe_for"`
}

type SampleConfig struct {
	Duration time.Duration `yaml:"duration"`
	Interval time.Duration `yaml:"interval"`
}

type JournalConfig struct {
	Path string `yaml:"path"`
}

func Default() *Config {
	return &Config{
		Mode:      ModeBurst,
		Inspector: types.InspectorAuto,
		Allocator: types.AllocatorLibc,
		Tracer:    types.TracerNone,
		LogLevel:  "info",
		Burst: BurstConfig{
			Threads:         types.DefaultThreadCount,
			AllocsPerThread: types.DefaultAllocsPerThread,
			AllocSize:       types.DefaultAllocSize,
			MaxThreads:      burst.DefaultMaxThreads,
			FailFast:        true,
			ExitThread:      true,
		},
		Measure: MeasureConfig{
			Settle:        2 * time.Second,
			Trim:          true,
			WatchInterval: 50 * time.Millisecond,
			ToleranceKiB:  1024,
		},
		Series: types.SeriesConfig{
			Bursts:          5,
			ThreadsPerBurst: 100,
			Interval:        time.Second,
		},
		Stress: types.StressConfig{
			Callers:        16,
			Iterations:     10,
			ThreadsPerCall: 100,
			Pause:          10 * time.Millisecond,
		},
		Sample: SampleConfig{
			Duration: 10 * time.Second,
			Interval: 500 * time.Millisecond,
		},
	}
}

// LoadConfig builds the runtime configuration: defaults, then the YAML file
// named by ARENA_CONFIG, then environment overrides. Problems are logged and
// the offending source is ignored.
func LoadConfig() *Config {
	logger := logutil.GetLogger()

	cfg := Default()
	if path := os.Getenv("ARENA_CONFIG"); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			logger.Warn("Ignoring config file", zap.String("path", path), zap.Error(err))
		} else {
			cfg = loaded
		}
	}

	for _, err := range multierr.Errors(cfg.applyEnv(os.LookupEnv)) {
		logger.Warn("Ignoring environment override", zap.Error(err))
	}
	return cfg
}

// LoadFile reads a YAML file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.ToLower(strings.TrimSpace(v))
		}
	}
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
	flag := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}

	str("ARENA_MODE", &c.Mode)
	str("ARENA_INSPECTOR", &c.Inspector)
	str("ARENA_ALLOCATOR", &c.Allocator)
	str("ARENA_TRACER", &c.Tracer)
	str("LOG_LEVEL", &c.LogLevel)
	if v, ok := lookup("ARENA_JOURNAL"); ok {
		c.Journal.Path = v
	}

	num("ARENA_THREADS", &c.Burst.Threads)
	num("ARENA_ALLOCS_PER_THREAD", &c.Burst.AllocsPerThread)
	num("ARENA_ALLOC_SIZE", &c.Burst.AllocSize)
	num("ARENA_CONCURRENCY", &c.Burst.Concurrency)
	num("ARENA_MAX_THREADS", &c.Burst.MaxThreads)
	flag("ARENA_FAIL_FAST", &c.Burst.FailFast)

	if v, ok := lookup("ARENA_TOLERANCE_KIB"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("ARENA_TOLERANCE_KIB: %w", err))
		} else {
			c.Measure.ToleranceKiB = n
		}
	}
	return errs
}

func (c *Config) Validate() error {
	var errs error
	invalid := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	switch c.Mode {
	case ModeBurst, ModeDetailed, ModeSeries, ModeSample, ModeStats, ModeStress:
	default:
		invalid("unknown mode %q", c.Mode)
	}
	switch c.Inspector {
	case types.InspectorAuto, types.InspectorProcfs, types.InspectorPsutil, types.InspectorNone:
	default:
		invalid("unknown inspector %q", c.Inspector)
	}
	switch c.Allocator {
	case types.AllocatorLibc, types.AllocatorMmap, types.AllocatorHeap:
	default:
		invalid("unknown allocator %q", c.Allocator)
	}

	switch c.Tracer {
	case types.TracerNone, types.TracerEbpf:
	default:
		invalid("unknown tracer %q", c.Tracer)
	}

	if c.Burst.Threads < 0 {
		invalid("threads must not be negative")
	}
	if c.Burst.AllocsPerThread < 1 {
		invalid("allocs_per_thread must be at least 1")
	}
	if c.Burst.AllocSize <= 0 {
		invalid("alloc_size must be positive")
	}
	if c.Burst.Concurrency < 0 || c.Burst.MaxThreads < 0 {
		invalid("concurrency and max_threads must not be negative")
	}
	if c.Burst.Timeout < 0 || c.Measure.Settle < 0 || c.Measure.ObserveFor < 0 {
		invalid("durations must not be negative")
	}
	if c.Measure.WatchInterval < 0 {
		invalid("watch_interval must not be negative")
	}
	if c.Series.Bursts < 1 || c.Series.ThreadsPerBurst < 0 || c.Series.Interval < 0 {
		invalid("series needs at least one burst")
	}
	if c.Stress.Callers < 1 || c.Stress.Iterations < 1 || c.Stress.ThreadsPerCall < 0 || c.Stress.Pause < 0 {
		invalid("stress needs at least one caller and one iteration")
	}
	if c.Sample.Interval <= 0 || c.Sample.Duration < 0 {
		invalid("sample interval must be positive")
	}
	return errs
}

// Controller returns the burst controller settings.
func (c *Config) Controller() burst.Config {
	return burst.Config{
		AllocsPerThread: c.Burst.AllocsPerThread,
		AllocSize:       c.Burst.AllocSize,
		Concurrency:     c.Burst.Concurrency,
		MaxThreads:      c.Burst.MaxThreads,
		FailFast:        c.Burst.FailFast,
		ExitThread:      c.Burst.ExitThread,
		Timeout:         c.Burst.Timeout,
	}
}
