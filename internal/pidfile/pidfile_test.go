package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagtile.pid")

	if err := Acquire(path); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	pid, ok := readPID(path)
	if !ok || pid != os.Getpid() {
		t.Fatalf("pid file holds %d, want %d", pid, os.Getpid())
	}

	// Our own live pid blocks a second acquire.
	if err := Acquire(path); err == nil {
		t.Fatal("second acquire against a live pid should fail")
	}

	Release(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("pid file should be gone after release")
	}
}

func TestAcquireReplacesStalePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagtile.pid")
	// An absurdly high pid that no live process holds.
	os.WriteFile(path, []byte("99999999\n"), 0600)

	if err := Acquire(path); err != nil {
		t.Fatalf("Acquire over a stale pid failed: %v", err)
	}
	pid, _ := readPID(path)
	if pid != os.Getpid() {
		t.Fatalf("pid file holds %d, want %d", pid, os.Getpid())
	}
}

func TestReleaseLeavesForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagtile.pid")
	other := strconv.Itoa(os.Getpid() + 1)
	os.WriteFile(path, []byte(other+"\n"), 0600)

	Release(path)
	if _, err := os.Stat(path); err != nil {
		t.Fatal("release must not remove another process's pid file")
	}
}
