package collector

import (
	"time"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
)

func (p *Pipeline) SystemStats() types.SystemStats {
	return types.SystemStats{
		PID:     p.pid,
		Threads: p.inspector.ReadThreadCount(),
		Load:    p.inspector.ReadSystemLoad(),
		Memory:  p.inspector.ReadSystemMemory(),
	}
}

// Report combines a full snapshot, the burst configuration and a timestamp.
func (p *Pipeline) Report() types.StatsReport {
	return types.StatsReport{
		Memory:    p.inspector.ReadProcessMemory(),
		PID:       p.pid,
		Threads:   p.inspector.ReadThreadCount(),
		Config:    p.Config(0),
		Timestamp: time.Now(),
	}
}
