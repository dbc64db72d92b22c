package types

// Inspector reads process and host memory telemetry. Reads never fail:
// missing or malformed sources yield zero values (and a thread count of 1).
type Inspector interface {
	Name() string
	ReadProcessMemory() MemorySnapshot
	ReadThreadCount() int
	ReadSystemMemory() SystemMemory
	ReadSystemLoad() SystemLoad
}
