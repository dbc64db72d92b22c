package inspector

import (
	"fmt"
	"os"

	"github.com/ALEYI17/InfraSight_arena/pkg/logutil"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// Psutil reads telemetry through gopsutil, for hosts without procfs. Fields
// gopsutil does not expose (exe, lib, peak virtual) stay zero.
type Psutil struct {
	p      *process.Process
	logger *zap.Logger
}

func NewPsutil() (*Psutil, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("psutil: creating process failed: %w", err)
	}
	return &Psutil{p: p, logger: logutil.GetLogger()}, nil
}

func (ps *Psutil) Name() string {
	return types.InspectorPsutil
}

func (ps *Psutil) ReadProcessMemory() types.MemorySnapshot {
	i, err := ps.p.MemoryInfo()
	if err != nil {
		ps.logger.Debug("psutil memory info failed", zap.Error(err))
		return types.MemorySnapshot{}
	}
	return types.MemorySnapshot{
		RSSKiB:     i.RSS / types.KiB,
		PeakRSSKiB: i.HWM / types.KiB,
		VirtualKiB: i.VMS / types.KiB,
		DataKiB:    i.Data / types.KiB,
		StackKiB:   i.Stack / types.KiB,
	}
}

func (ps *Psutil) ReadThreadCount() int {
	n, err := ps.p.NumThreads()
	if err != nil || n < 1 {
		return 1
	}
	return int(n)
}

func (ps *Psutil) ReadSystemMemory() types.SystemMemory {
	s, err := mem.VirtualMemory()
	if err != nil {
		ps.logger.Debug("psutil virtual memory failed", zap.Error(err))
		return types.SystemMemory{}
	}
	return types.SystemMemory{
		TotalKiB:     s.Total / types.KiB,
		AvailableKiB: s.Available / types.KiB,
		FreeKiB:      s.Free / types.KiB,
	}
}

func (ps *Psutil) ReadSystemLoad() types.SystemLoad {
	a, err := load.Avg()
	if err != nil {
		ps.logger.Debug("psutil load average failed", zap.Error(err))
		return types.SystemLoad{}
	}
	return types.SystemLoad{Load1: a.Load1, Load5: a.Load5, Load15: a.Load15}
}
