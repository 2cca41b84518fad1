//go:build !linux && !windows

package tlog

// No portable thread id here; every goroutine shares one table entry.
func currentThreadID() uint32 {
	return 0
}
