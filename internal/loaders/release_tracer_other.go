//go:build !linux

package loaders

import "github.com/ALEYI17/InfraSight_arena/pkg/types"

type EbpfReleaseTracer struct{}

func NewEbpfReleaseTracer(int) (*EbpfReleaseTracer, error) {
	return nil, ErrUnsupported
}

func (*EbpfReleaseTracer) Name() string                { return types.TracerEbpf }
func (*EbpfReleaseTracer) Counts() types.ReleaseCounts { return types.ReleaseCounts{} }
func (*EbpfReleaseTracer) Close() error                { return nil }
