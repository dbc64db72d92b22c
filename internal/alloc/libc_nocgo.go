//go:build !cgo || !linux

package alloc

import "github.com/ALEYI17/InfraSight_arena/pkg/types"

type Libc struct{}

func NewLibc() (Libc, error) {
	return Libc{}, ErrUnsupported
}

func (Libc) Name() string { return types.AllocatorLibc }

func (Libc) Alloc(size int) ([]byte, error) { return nil, ErrUnsupported }

func (Libc) Free(b []byte) error { return ErrUnsupported }

func (Libc) Trim() bool { return false }
