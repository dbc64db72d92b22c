package types

// Allocator hands out blocks for burst workers. Free must be called with the
// exact slice returned by Alloc.
type Allocator interface {
	Name() string
	Alloc(size int) ([]byte, error)
	Free(b []byte) error
}

// Trimmer is implemented by allocators that can hand retained free memory
// back to the operating system.
type Trimmer interface {
	Trim() bool
}

// ReleaseTracer counts the bytes this process hands back to the kernel.
// Counts are cumulative since the tracer was created.
type ReleaseTracer interface {
	Name() string
	Counts() ReleaseCounts
	Close() error
}

type ReleaseCounts struct {
	MunmapBytes  uint64 `json:"munmap_bytes"`
	MadviseBytes uint64 `json:"madvise_bytes"`
}

// Since returns the bytes released after prev was taken.
func (c ReleaseCounts) Since(prev ReleaseCounts) ReleaseCounts {
	return ReleaseCounts{
		MunmapBytes:  c.MunmapBytes - prev.MunmapBytes,
		MadviseBytes: c.MadviseBytes - prev.MadviseBytes,
	}
}
