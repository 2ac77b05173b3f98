//go:build !windows

package launcher

import (
	"errors"
	"os/exec"
	"syscall"
)

// Launched games can fork helpers (launcher scripts, anti-cheat shims,
// crash handlers), so every spawn gets its own process group and signals
// are delivered to the whole group.

// gracefulSupported: Unix processes can be asked to shut down cooperatively
// with SIGTERM; there is no closable-window notion here.
const gracefulSupported = true

func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// requestClose asks the process tree rooted at pid to exit cooperatively.
func requestClose(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGTERM)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// killTree forcibly terminates the whole process tree rooted at pid.
// An already-gone tree is not an error.
func killTree(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// processAlive probes liveness without touching os/exec internals.
func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
