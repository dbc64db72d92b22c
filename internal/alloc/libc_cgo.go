//go:build cgo && linux

package alloc

/*
#include <stdlib.h>
#include <malloc.h>

// C.malloc from cgo aborts the process on failure; call malloc directly so
// exhaustion comes back as NULL.
static void *arena_malloc(size_t n) { return malloc(n); }
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
)

// Libc allocates through the C library's malloc. With glibc each OS thread
// that allocates may get its own arena, which is the retention this harness
// looks for.
type Libc struct{}

func NewLibc() (Libc, error) {
	return Libc{}, nil
}

func (Libc) Name() string { return types.AllocatorLibc }

func (Libc) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	p := C.arena_malloc(C.size_t(size))
	if p == nil {
		return nil, fmt.Errorf("%w: malloc %d bytes", ErrOutOfMemory, size)
	}
	return unsafe.Slice((*byte)(p), size), nil
}

func (Libc) Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	C.free(unsafe.Pointer(unsafe.SliceData(b)))
	return nil
}

// Trim asks glibc to return free memory from every arena to the kernel.
func (Libc) Trim() bool {
	return C.malloc_trim(0) == 1
}
