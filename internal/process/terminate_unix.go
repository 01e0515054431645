//go:build !windows

// Package process stops helper processes spawned by the converter.
package process

import "syscall"

// TerminateTree sends SIGKILL to the process group led by pid, taking the
// browser's renderer and GPU helpers down with it. Non-positive PIDs are
// ignored: -0 would address the caller's own group.
func TerminateTree(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
