package types

import "time"

// MemorySnapshot holds process memory counters in KiB captured at one instant.
type MemorySnapshot struct {
	RSSKiB         uint64 `json:"vm_rss_kb"`
	PeakRSSKiB     uint64 `json:"vm_hwm_kb"`
	VirtualKiB     uint64 `json:"vm_size_kb"`
	PeakVirtualKiB uint64 `json:"vm_peak_kb"`
	DataKiB        uint64 `json:"vm_data_kb"`
	StackKiB       uint64 `json:"vm_stk_kb"`
	ExeKiB         uint64 `json:"vm_exe_kb"`
	LibKiB         uint64 `json:"vm_lib_kb"`
}

func (s MemorySnapshot) RSSMiB() float64 {
	return KiBToMiB(s.RSSKiB)
}

func (s MemorySnapshot) PeakRSSMiB() float64 {
	return KiBToMiB(s.PeakRSSKiB)
}

func KiBToMiB(kib uint64) float64 {
	return float64(kib) / 1024.0
}

type SystemMemory struct {
	TotalKiB     uint64 `json:"system_mem_total_kb"`
	AvailableKiB uint64 `json:"system_mem_available_kb"`
	FreeKiB      uint64 `json:"system_mem_free_kb"`
}

type SystemLoad struct {
	Load1  float64 `json:"load_1min"`
	Load5  float64 `json:"load_5min"`
	Load15 float64 `json:"load_15min"`
}

type SystemStats struct {
	PID     int          `json:"pid"`
	Threads int          `json:"thread_count"`
	Load    SystemLoad   `json:"load"`
	Memory  SystemMemory `json:"memory"`
}

type StatsReport struct {
	Memory    MemorySnapshot `json:"memory"`
	PID       int            `json:"pid"`
	Threads   int            `json:"thread_count"`
	Config    BurstConfig    `json:"config"`
	Timestamp time.Time      `json:"timestamp"`
}
