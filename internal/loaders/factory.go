package loaders

import (
	"errors"
	"os"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
)

var (
	ErrUnknownTracer = errors.New("unsupported or unknown tracer")
	ErrUnsupported   = errors.New("eBPF tracing is not supported on this platform")
)

func NewReleaseTracer(kind string) (types.ReleaseTracer, error) {
	switch kind {
	case types.TracerEbpf:
		t, err := NewEbpfReleaseTracer(os.Getpid())
		if err != nil {
			return nil, err
		}
		return t, nil
	case types.TracerNone, "":
		return Noop{}, nil
	default:
		return nil, ErrUnknownTracer
	}
}

// Noop reports nothing released.
type Noop struct{}

func (Noop) Name() string                { return types.TracerNone }
func (Noop) Counts() types.ReleaseCounts { return types.ReleaseCounts{} }
func (Noop) Close() error                { return nil }
