//go:build !linux

package burst

func nprocLimit() int {
	return 0
}
