// Package pidfile enforces a single daemon instance per user via a pid file
// in the runtime directory.
package pidfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// Acquire writes the current pid to path. It fails when another live
// process already holds the file; stale files from dead processes are
// replaced silently.
func Acquire(path string) error {
	if pid, ok := readPID(path); ok && processAlive(pid) {
		return fmt.Errorf("another instance is already running (pid %d)", pid)
	}

	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

// Release removes the pid file, but only if this process still owns it.
func Release(path string) {
	if pid, ok := readPID(path); ok && pid == os.Getpid() {
		os.Remove(path)
	}
}

func readPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// processAlive probes a pid with signal 0.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || err == syscall.EPERM
}
