package inspector

import (
	"os"
	"path/filepath"

	"github.com/ALEYI17/InfraSight_arena/pkg/logutil"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"go.uber.org/zap"
)

const DefaultProcRoot = "/proc"

// Procfs reads telemetry from a procfs mount. Root is configurable so tests
// can point it at a fake tree.
type Procfs struct {
	root   string
	pid    string
	logger *zap.Logger
}

func NewProcfs(root string) *Procfs {
	if root == "" {
		root = DefaultProcRoot
	}
	return &Procfs{
		root:   root,
		pid:    "self",
		logger: logutil.GetLogger(),
	}
}

func (p *Procfs) Name() string {
	return types.InspectorProcfs
}

func (p *Procfs) read(parts ...string) (string, bool) {
	path := filepath.Join(append([]string{p.root}, parts...)...)
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Debug("procfs read failed", zap.String("path", path), zap.Error(err))
		return "", false
	}
	return string(data), true
}

func (p *Procfs) open(parts ...string) *os.File {
	path := filepath.Join(append([]string{p.root}, parts...)...)
	f, err := os.Open(path)
	if err != nil {
		p.logger.Debug("procfs open failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	return f
}

func (p *Procfs) ReadProcessMemory() types.MemorySnapshot {
	f := p.open(p.pid, "status")
	if f == nil {
		return types.MemorySnapshot{}
	}
	defer f.Close()
	return ParseStatus(f)
}

func (p *Procfs) ReadThreadCount() int {
	stat, ok := p.read(p.pid, "stat")
	if !ok {
		return 1
	}
	return ParseStatThreads(stat)
}

func (p *Procfs) ReadSystemMemory() types.SystemMemory {
	f := p.open("meminfo")
	if f == nil {
		return types.SystemMemory{}
	}
	defer f.Close()
	return ParseMeminfo(f)
}

func (p *Procfs) ReadSystemLoad() types.SystemLoad {
	loadavg, ok := p.read("loadavg")
	if !ok {
		return types.SystemLoad{}
	}
	return ParseLoadavg(loadavg)
}

// Available reports whether the process status file can be read.
func (p *Procfs) Available() bool {
	f := p.open(p.pid, "status")
	if f == nil {
		return false
	}
	f.Close()
	return true
}
