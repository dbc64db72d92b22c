package inspector

import (
	"strings"
	"testing"

	"github.com/ALEYI17/InfraSight_arena/pkg/types"
	"github.com/stretchr/testify/require"
)

const sampleStatus = `Name:	arena
Umask:	0022
State:	S (sleeping)
Pid:	4242
VmPeak:	  812344 kB
VmSize:	  812300 kB
VmLck:	       0 kB
VmHWM:	   70112 kB
VmRSS:	   12345 kB
VmData:	  700100 kB
VmStk:	     132 kB
VmExe:	    1620 kB
VmLib:	    2240 kB
Threads:	9
`

func TestParseStatus(t *testing.T) {
	s := ParseStatus(strings.NewReader(sampleStatus))
	require.Equal(t, types.MemorySnapshot{
		RSSKiB:         12345,
		PeakRSSKiB:     70112,
		VirtualKiB:     812300,
		PeakVirtualKiB: 812344,
		DataKiB:        700100,
		StackKiB:       132,
		ExeKiB:         1620,
		LibKiB:         2240,
	}, s)
}

func TestParseStatusDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.MemorySnapshot
	}{
		{name: "empty", input: "", want: types.MemorySnapshot{}},
		{name: "only rss", input: "VmRSS:   12345 kB\n", want: types.MemorySnapshot{RSSKiB: 12345}},
		{name: "missing rss", input: "VmHWM:  10 kB\nVmSize: 20 kB\n", want: types.MemorySnapshot{PeakRSSKiB: 10, VirtualKiB: 20}},
		{name: "not a number", input: "VmRSS:   lots kB\n", want: types.MemorySnapshot{}},
		{name: "negative", input: "VmRSS:   -5 kB\n", want: types.MemorySnapshot{}},
		{name: "no value", input: "VmRSS:\n", want: types.MemorySnapshot{}},
		{name: "binary garbage", input: "\x00\xff\xfe:::\n\n:VmRSS 7", want: types.MemorySnapshot{}},
		{name: "prefix label ignored", input: "VmRSSX: 99 kB\n", want: types.MemorySnapshot{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.Equal(t, tt.want, ParseStatus(strings.NewReader(tt.input)))
			})
		})
	}

	require.Equal(t, types.MemorySnapshot{}, ParseStatus(nil))
}

func TestParseStatThreads(t *testing.T) {
	tests := []struct {
		name string
		stat string
		want int
	}{
		{
			name: "plain",
			stat: "4242 (arena) S 1 4242 4242 0 -1 4194560 1234 0 0 0 10 5 0 0 20 0 17 0 12345 812300000 3086 18446744073709551615",
			want: 17,
		},
		{
			name: "comm with spaces and parens",
			stat: "4242 (my (odd) prog) R 1 4242 4242 0 -1 4194560 1234 0 0 0 10 5 0 0 20 0 3 0 12345 812300000 3086",
			want: 3,
		},
		{name: "empty", stat: "", want: 1},
		{name: "truncated", stat: "4242 (arena) S 1 4242", want: 1},
		{name: "no comm", stat: "4242 arena S 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 17 18", want: 1},
		{name: "garbage field", stat: "1 (a) S 1 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 x 0", want: 1},
		{name: "zero threads", stat: "1 (a) S 1 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 0 0", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseStatThreads(tt.stat))
		})
	}
}

func TestParseMeminfo(t *testing.T) {
	input := "MemTotal:       16316412 kB\nMemFree:         1203404 kB\nMemAvailable:    9876543 kB\nBuffers:          123 kB\n"
	require.Equal(t, types.SystemMemory{
		TotalKiB:     16316412,
		AvailableKiB: 9876543,
		FreeKiB:      1203404,
	}, ParseMeminfo(strings.NewReader(input)))

	require.Equal(t, types.SystemMemory{}, ParseMeminfo(strings.NewReader("garbage")))
	require.Equal(t, types.SystemMemory{}, ParseMeminfo(nil))
}

func TestParseLoadavg(t *testing.T) {
	require.Equal(t, types.SystemLoad{Load1: 0.52, Load5: 1.25, Load15: 2.5},
		ParseLoadavg("0.52 1.25 2.50 2/1234 5678\n"))
	require.Equal(t, types.SystemLoad{}, ParseLoadavg("0.52 1.25"))
	require.Equal(t, types.SystemLoad{Load1: 0.5, Load15: 3}, ParseLoadavg("0.5 x 3"))
}
