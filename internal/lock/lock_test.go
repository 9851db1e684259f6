package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "LOCK"))
	if err != nil {
		t.Fatal(err)
	}
	if got := parsePID(string(data)); got != os.Getpid() {
		t.Errorf("lock file pid = %d, want %d", got, os.Getpid())
	}

	if err := l.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "LOCK")); !os.IsNotExist(err) {
		t.Error("lock file should be removed on release")
	}

	// Reacquirable after release.
	l2, err := Acquire(dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = l2.Release()
}

func TestReleaseNilSafe(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("nil release returned %v", err)
	}
}

func TestAcquireCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "data")

	l, err := Acquire(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = l.Release() }()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestHeldErrorReportsPID(t *testing.T) {
	err := &HeldError{PID: 4242, Path: "/tmp/LOCK"}
	var held *HeldError
	if !errors.As(error(err), &held) {
		t.Fatal("errors.As failed")
	}
	if held.PID != 4242 {
		t.Errorf("pid = %d", held.PID)
	}
}

func TestParsePID(t *testing.T) {
	if got := parsePID("pid=123\ntime=2024-05-01T10:00:00Z\n"); got != 123 {
		t.Errorf("got %d, want 123", got)
	}
	if got := parsePID("garbage"); got != 0 {
		t.Errorf("got %d, want 0 for garbage", got)
	}
}
