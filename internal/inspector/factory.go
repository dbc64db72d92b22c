package inspector

import (
	"errors"

	"github.com/ALEYI17/InfraSight_arena/pkg/logutil"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"go.uber.org/zap"
)

var ErrUnknownInspector = errors.New("unsupported or unknown inspector")

func New(kind string) (types.Inspector, error) {
	switch kind {
	case types.InspectorProcfs:
		return NewProcfs(DefaultProcRoot), nil
	case types.InspectorPsutil:
		ps, err := NewPsutil()
		if err != nil {
			return nil, err
		}
		return ps, nil
	case types.InspectorNone:
		return Unsupported{}, nil
	case types.InspectorAuto, "":
		return Detect(DefaultProcRoot), nil
	default:
		return nil, ErrUnknownInspector
	}
}

// Detect picks the best inspector available on this host: procfs, then
// gopsutil, then the zero-valued fallback.
func Detect(procRoot string) types.Inspector {
	logger := logutil.GetLogger()

	if p := NewProcfs(procRoot); p.Available() {
		return p
	}
	ps, err := NewPsutil()
	if err == nil {
		logger.Info("procfs unavailable, using psutil inspector")
		return ps
	}
	logger.Warn("no telemetry source available, readings will be zero", zap.Error(err))
	return Unsupported{}
}
