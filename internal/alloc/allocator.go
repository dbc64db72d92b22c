package alloc

import (
	"errors"
	"fmt"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
)

var (
	ErrInvalidSize      = errors.New("allocation size must be positive")
	ErrUnsupported      = errors.New("allocator not supported on this platform")
	ErrUnknownAllocator = errors.New("unsupported or unknown allocator")
	ErrOutOfMemory      = errors.New("allocation failed")
)

// touchPattern is written into every byte so pages cannot stay zero-mapped.
const touchPattern = 0xA5

// Touch writes every byte of b so the block becomes resident rather than
// merely reserved.
func Touch(b []byte) {
	for i := range b {
		b[i] = touchPattern
	}
}

func New(kind string) (types.Allocator, error) {
	switch kind {
	case types.AllocatorHeap:
		return Heap{}, nil
	case types.AllocatorMmap:
		m, err := NewMmap()
		if err != nil {
			return nil, err
		}
		return m, nil
	case types.AllocatorLibc:
		l, err := NewLibc()
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAllocator, kind)
	}
}

// Heap allocates from the Go heap. Retention then reflects the Go runtime's
// scavenger rather than a native allocator.
type Heap struct{}

func (Heap) Name() string { return types.AllocatorHeap }

func (Heap) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return make([]byte, size), nil
}

func (Heap) Free(b []byte) error {
	return nil
}
