//go:build linux

package loaders

import (
	"fmt"

	"github.com/ALEYI17/InfraSight_arena/pkg/logutil"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/asm"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/rlimit"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	slotMunmap uint32 = iota
	slotMadvise
	slotCount
)

// lenArgOffset is the offset of args[1] in a syscalls:sys_enter_* record,
// after the 8 byte common header, __syscall_nr padded to 8 and args[0].
// Both munmap and madvise take the length as their second argument.
const lenArgOffset = 24

// EbpfReleaseTracer sums the length argument of every munmap and madvise
// issued by one thread group into a two slot array map.
type EbpfReleaseTracer struct {
	counters *ebpf.Map
	progs    []*ebpf.Program
	links    []link.Link
}

func NewEbpfReleaseTracer(tgid int) (*EbpfReleaseTracer, error) {
	logger := logutil.GetLogger()
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, err
	}

	counters, err := ebpf.NewMap(&ebpf.MapSpec{
		Name:       "arena_release",
		Type:       ebpf.Array,
		KeySize:    4,
		ValueSize:  8,
		MaxEntries: slotCount,
	})
	if err != nil {
		return nil, fmt.Errorf("creating counter map: %w", err)
	}
	t := &EbpfReleaseTracer{counters: counters}

	tracepoints := []struct {
		name string
		prog string
		slot uint32
	}{
		{"sys_enter_munmap", "arena_munmap", slotMunmap},
		{"sys_enter_madvise", "arena_madvise", slotMadvise},
	}

	for _, tp := range tracepoints {
		prog, err := ebpf.NewProgram(&ebpf.ProgramSpec{
			Name:         tp.prog,
			Type:         ebpf.TracePoint,
			License:      "GPL",
			Instructions: releaseProgram(counters.FD(), tp.slot, int32(tgid)),
		})
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("loading %s: %w", tp.prog, err)
		}
		t.progs = append(t.progs, prog)

		tl, err := link.Tracepoint("syscalls", tp.name, prog, nil)
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("attaching syscalls/%s: %w", tp.name, err)
		}
		t.links = append(t.links, tl)
		logger.Info("attached tracepoint", zap.String("tracepoint", "syscalls/"+tp.name))
	}

	return t, nil
}

// releaseProgram adds args[1] to counters[slot] when the caller belongs to
// tgid.
func releaseProgram(mapFD int, slot uint32, tgid int32) asm.Instructions {
	return asm.Instructions{
		asm.Mov.Reg(asm.R6, asm.R1),
		asm.FnGetCurrentPidTgid.Call(),
		asm.RSh.Imm(asm.R0, 32),
		asm.JNE.Imm(asm.R0, tgid, "exit"),

		asm.LoadMem(asm.R7, asm.R6, lenArgOffset, asm.DWord),

		asm.StoreImm(asm.RFP, -4, int64(slot), asm.Word),
		asm.LoadMapPtr(asm.R1, mapFD),
		asm.Mov.Reg(asm.R2, asm.RFP),
		asm.Add.Imm(asm.R2, -4),
		asm.FnMapLookupElem.Call(),
		asm.JEq.Imm(asm.R0, 0, "exit"),
		asm.StoreXAdd(asm.R0, asm.R7, asm.DWord),

		asm.Mov.Imm(asm.R0, 0).WithSymbol("exit"),
		asm.Return(),
	}
}

func (t *EbpfReleaseTracer) Name() string {
	return types.TracerEbpf
}

func (t *EbpfReleaseTracer) Counts() types.ReleaseCounts {
	var c types.ReleaseCounts
	if err := t.counters.Lookup(slotMunmap, &c.MunmapBytes); err != nil {
		logutil.GetLogger().Debug("reading munmap counter", zap.Error(err))
	}
	if err := t.counters.Lookup(slotMadvise, &c.MadviseBytes); err != nil {
		logutil.GetLogger().Debug("reading madvise counter", zap.Error(err))
	}
	return c
}

func (t *EbpfReleaseTracer) Close() error {
	var err error
	for _, l := range t.links {
		err = multierr.Append(err, l.Close())
	}
	for _, p := range t.progs {
		err = multierr.Append(err, p.Close())
	}
	if t.counters != nil {
		err = multierr.Append(err, t.counters.Close())
	}
	t.links, t.progs = nil, nil
	return err
}
