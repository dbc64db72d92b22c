package alloc

import (
	"testing"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"github.com/stretchr/testify/require"
)

func requireTouched(t *testing.T, b []byte) {
	t.Helper()
	for i, v := range b {
		if v != touchPattern {
			t.Fatalf("byte %d = %#x, want %#x", i, v, touchPattern)
		}
	}
}

func TestTouch(t *testing.T) {
	b := make([]byte, 4096+7)
	Touch(b)
	requireTouched(t, b)

	require.NotPanics(t, func() { Touch(nil) })
}

func TestHeap(t *testing.T) {
	a, err := New(types.AllocatorHeap)
	require.NoError(t, err)
	require.Equal(t, types.AllocatorHeap, a.Name())

	b, err := a.Alloc(types.MiB)
	require.NoError(t, err)
	require.Len(t, b, types.MiB)
	Touch(b)
	requireTouched(t, b)
	require.NoError(t, a.Free(b))

	_, err = a.Alloc(0)
	require.ErrorIs(t, err, ErrInvalidSize)
	_, err = a.Alloc(-1)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestMmap(t *testing.T) {
	a, err := New(types.AllocatorMmap)
	if err != nil {
		require.ErrorIs(t, err, ErrUnsupported)
		t.Skip("mmap allocator needs a unix host")
	}

	b, err := a.Alloc(3*4096 + 1)
	require.NoError(t, err)
	require.Len(t, b, 3*4096+1)
	Touch(b)
	requireTouched(t, b)
	require.NoError(t, a.Free(b))
	require.NoError(t, a.Free(nil))

	_, err = a.Alloc(0)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestLibc(t *testing.T) {
	a, err := New(types.AllocatorLibc)
	if err != nil {
		require.ErrorIs(t, err, ErrUnsupported)
		t.Skip("libc allocator needs cgo on linux")
	}

	b, err := a.Alloc(types.MiB)
	require.NoError(t, err)
	Touch(b)
	requireTouched(t, b)
	require.NoError(t, a.Free(b))

	tr, ok := a.(types.Trimmer)
	require.True(t, ok)
	require.NotPanics(t, func() { tr.Trim() })
}

func TestUnknownAllocator(t *testing.T) {
	_, err := New("jemalloc")
	require.ErrorIs(t, err, ErrUnknownAllocator)
}
