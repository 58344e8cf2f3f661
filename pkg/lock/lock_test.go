package lock

import (
	"context"
	"testing"
	"time"

	"github.com/freefilesync/ffsync/pkg/afs/native"
	"github.com/freefilesync/ffsync/pkg/logging"
)

// TestAcquireRelease verifies that a lock can be acquired and released, and
// that the lock file is removed on release.
func TestAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	device := native.New(dir)

	handle, err := Acquire(context.Background(), device, "", logging.RootLogger)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if _, err := device.ItemType(LockFileName); err != nil {
		t.Fatalf("expected lock file to exist after acquisition: %v", err)
	}

	if err := handle.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if _, err := device.ItemType(LockFileName); err == nil {
		t.Fatal("expected lock file to be removed after release")
	}
}

// TestAcquireRefCounting verifies that two in-process acquisitions of the
// same already-held lock share ownership rather than blocking each other.
func TestAcquireRefCounting(t *testing.T) {
	dir := t.TempDir()
	device := native.New(dir)

	first, err := Acquire(context.Background(), device, "", logging.RootLogger)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer first.Release()

	// A second Acquire call from the same process against the same path
	// finds the lock file's UUID in the in-process registry and shares the
	// existing handle instead of waiting; the timeout only bounds a failure.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	second, err := Acquire(ctx, device, "", logging.RootLogger)
	if err != nil {
		t.Fatalf("expected second acquisition to share ownership: %v", err)
	}
	if second != first {
		t.Fatal("expected second acquisition to return the existing handle")
	}
	if err := second.Release(); err != nil {
		t.Fatalf("Release of shared handle failed: %v", err)
	}
}
