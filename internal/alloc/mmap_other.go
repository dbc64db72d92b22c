//go:build !unix

package alloc

import "github.com/ALEYI17/InfraSight_arena/pkg/types"

type Mmap struct{}

func NewMmap() (Mmap, error) {
	return Mmap{}, ErrUnsupported
}

func (Mmap) Name() string { return types.AllocatorMmap }

func (Mmap) Alloc(size int) ([]byte, error) { return nil, ErrUnsupported }

func (Mmap) Free(b []byte) error { return ErrUnsupported }
