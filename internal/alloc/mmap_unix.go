//go:build unix

package alloc

import (
	"fmt"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"golang.org/x/sys/unix"
)

// Mmap backs every block with its own anonymous private mapping, so freed
// blocks always go straight back to the kernel. It is the control case
// against which libc retention is compared.
type Mmap struct{}

func NewMmap() (Mmap, error) {
	return Mmap{}, nil
}

func (Mmap) Name() string { return types.AllocatorMmap }

func (Mmap) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %w", ErrOutOfMemory, size, err)
	}
	return b, nil
}

func (Mmap) Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
