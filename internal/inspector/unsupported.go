package inspector

import "github.com/ALEYI17/InfraSight_arena/pkg/types"

// Unsupported is used on hosts without any telemetry source. Bursts still
// run; every reading is zero.
type Unsupported struct{}

func (Unsupported) Name() string                            { return types.InspectorNone }
func (Unsupported) ReadProcessMemory() types.MemorySnapshot { return types.MemorySnapshot{} }
func (Unsupported) ReadThreadCount() int                    { return 1 }
func (Unsupported) ReadSystemMemory() types.SystemMemory    { return types.SystemMemory{} }
func (Unsupported) ReadSystemLoad() types.SystemLoad        { return types.SystemLoad{} }
