//go:build windows

package launcher

import (
	"fmt"
	"os/exec"
	"strconv"
	"syscall"
)

// gracefulSupported: Windows GUI processes are closed via their top-level
// window, which os/exec gives us no handle to; skip straight to force-kill.
const gracefulSupported = false

var (
	kernel32        = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess = kernel32.NewProc("OpenProcess")
	procCloseHandle = kernel32.NewProc("CloseHandle")
)

const processQueryLimitedInformation = 0x1000

func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: 0x00000200} // CREATE_NEW_PROCESS_GROUP
}

// requestClose is not supported on Windows; the orchestrator skips the
// graceful phase when gracefulSupported is false.
func requestClose(pid int) error {
	return fmt.Errorf("cooperative close unsupported on windows")
}

// killTree terminates pid and all of its children. taskkill walks the tree
// for us, which TerminateProcess would not.
func killTree(pid int) error {
	out, err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).CombinedOutput()
	if err != nil {
		if !processAlive(pid) {
			return nil
		}
		return fmt.Errorf("taskkill pid %d: %v: %s", pid, err, out)
	}
	return nil
}

func processAlive(pid int) bool {
	h, _, _ := procOpenProcess.Call(uintptr(processQueryLimitedInformation), 0, uintptr(uint32(pid)))
	if h == 0 {
		return false
	}
	_, _, _ = procCloseHandle.Call(h)
	return true
}
