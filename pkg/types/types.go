package types

const (
	KiB = 1024
	MiB = 1024 * KiB

	DefaultThreadCount     = 1280000
	DefaultAllocsPerThread = 1
	DefaultAllocSize       = 64 * MiB

	InspectorAuto   = "auto"
	InspectorProcfs = "procfs"
	InspectorPsutil = "psutil"
	InspectorNone   = "none"

	AllocatorLibc = "libc"
	AllocatorMmap = "mmap"
	AllocatorHeap = "heap"

	TracerNone = "none"
	TracerEbpf = "ebpf"

	VerdictRetained   = "potential retention"
	VerdictNoIncrease = "no significant increase"
)
