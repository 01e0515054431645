//go:build windows

// Package process stops helper processes spawned by the converter.
package process

import (
	"os/exec"
	"strconv"
)

// TerminateTree force-kills pid and its descendants with taskkill /T.
// Non-positive PIDs are ignored.
func TerminateTree(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- numeric PID
}
