//go:build linux

package burst

import (
	"math"

	"golang.org/x/sys/unix"
)

// threadHeadroom keeps a margin under RLIMIT_NPROC for the runtime's own
// threads and the rest of the user's processes.
const threadHeadroom = 64

// nprocLimit returns how many extra threads this process may start before
// clone(2) would fail, or 0 when unlimited or unknown.
func nprocLimit() int {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NPROC, &rl); err != nil {
		return 0
	}
	// RLIM_INFINITY is all ones
	if rl.Cur > math.MaxInt32 {
		return 0
	}
	n := int(rl.Cur) - threadHeadroom
	if n < 1 {
		return 1
	}
	return n
}
