//go:build windows

package tlog

import "golang.org/x/sys/windows"

func currentThreadID() uint32 {
	return windows.GetCurrentThreadId()
}
