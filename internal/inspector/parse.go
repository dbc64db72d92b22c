package inspector

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
)

// statThreadsField is the 1-based position of num_threads in /proc/<pid>/stat.
const statThreadsField = 20

// firstUint returns the first whitespace-delimited token of rest as an
// unsigned integer, or 0.
func firstUint(rest string) uint64 {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseStatus reads a /proc/<pid>/status document. Unknown labels are ignored
// and missing ones stay zero.
func ParseStatus(r io.Reader) types.MemorySnapshot {
	var s types.MemorySnapshot
	if r == nil {
		return s
	}

	fields := map[string]*uint64{
		"VmRSS":  &s.RSSKiB,
		"VmHWM":  &s.PeakRSSKiB,
		"VmSize": &s.VirtualKiB,
		"VmPeak": &s.PeakVirtualKiB,
		"VmData": &s.DataKiB,
		"VmStk":  &s.StackKiB,
		"VmExe":  &s.ExeKiB,
		"VmLib":  &s.LibKiB,
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		label, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		if dst, found := fields[label]; found {
			*dst = firstUint(rest)
		}
	}
	return s
}

// ParseStatThreads extracts num_threads from a /proc/<pid>/stat line. The
// command name may contain spaces and parentheses, so fields are counted
// after the last ')'.
func ParseStatThreads(stat string) int {
	idx := strings.LastIndexByte(stat, ')')
	if idx < 0 {
		return 1
	}
	// fields after the comm start at position 3 (state)
	fields := strings.Fields(stat[idx+1:])
	pos := statThreadsField - 3
	if pos >= len(fields) {
		return 1
	}
	n, err := strconv.Atoi(fields[pos])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func ParseMeminfo(r io.Reader) types.SystemMemory {
	var m types.SystemMemory
	if r == nil {
		return m
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		label, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		switch label {
		case "MemTotal":
			m.TotalKiB = firstUint(rest)
		case "MemAvailable":
			m.AvailableKiB = firstUint(rest)
		case "MemFree":
			m.FreeKiB = firstUint(rest)
		}
	}
	return m
}

func ParseLoadavg(s string) types.SystemLoad {
	var l types.SystemLoad
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return l
	}
	parse := func(v string) float64 {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	}
	l.Load1 = parse(fields[0])
	l.Load5 = parse(fields[1])
	l.Load15 = parse(fields[2])
	return l
}
