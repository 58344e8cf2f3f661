package synchronize

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/afs/native"
	"github.com/freefilesync/ffsync/pkg/compare"
	"github.com/freefilesync/ffsync/pkg/filter"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
	"github.com/freefilesync/ffsync/pkg/resolve"
	"github.com/freefilesync/ffsync/pkg/versioning"
)

// noopCallback never retries and collects warnings for assertions.
type noopCallback struct {
	warnings []string
}

func (c *noopCallback) HandleError(what string, err error) ErrorAction { return ErrorAbort }
func (c *noopCallback) Warn(what string)                               { c.warnings = append(c.warnings, what) }

func permanentPolicies() (DeletionPolicy, DeletionPolicy) {
	p := DeletionPolicy{Mode: DeletionPermanent}
	return p, p
}

// buildMirrored scans left/right, resolves in mirror mode, and returns the
// base folder pair ready for planning.
func buildMirrored(t *testing.T, leftDir, rightDir string) (*hierarchy.BaseFolderPair, afs.Device, afs.Device) {
	t.Helper()
	leftDevice := native.New(leftDir)
	rightDevice := native.New(rightDir)

	fc := hierarchy.FolderComparison{}
	base := fc.NewBaseFolderPair(
		afs.Path{Device: leftDevice, Rel: ""},
		afs.Path{Device: rightDevice, Rel: ""},
		true, true,
	)

	if err := compare.Folder(context.Background(), base, compare.Options{
		Variant: compare.ByTimeAndSize,
		Filter:  filter.New(nil, filter.NoSoftFilter),
	}); err != nil {
		t.Fatalf("compare.Folder failed: %v", err)
	}

	resolve.Base(base, nil, resolve.Options{
		Mode:   resolve.ModeMirror,
		Filter: filter.New(nil, filter.NoSoftFilter),
	})

	return base, leftDevice, rightDevice
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
}

func runPlan(t *testing.T, base *hierarchy.BaseFolderPair, left, right DeletionPolicy) (Phase, *noopCallback) {
	t.Helper()
	plan := Build(base)
	cb := &noopCallback{}
	exec := &Executor{
		Base:     base,
		Deleter:  NewDeleter(left, right, cb),
		Control:  NewControl(),
		Callback: cb,
		Stats:    NewStatistics(plan.TotalObjects, plan.TotalBytes),
	}
	phase, err := exec.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	return phase, cb
}

func TestMirrorCreatesMissingFileOnRight(t *testing.T) {
	leftDir, rightDir := t.TempDir(), t.TempDir()
	writeFile(t, leftDir, "a.txt", "hello")

	base, _, _ := buildMirrored(t, leftDir, rightDir)
	left, right := permanentPolicies()

	phase, _ := runPlan(t, base, left, right)
	if phase != PhaseFinishedOK {
		t.Fatalf("expected FinishedOK, got %s", phase)
	}

	got, err := os.ReadFile(filepath.Join(rightDir, "a.txt"))
	if err != nil {
		t.Fatalf("expected a.txt to be created on right: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got content %q, want %q", got, "hello")
	}
}

func TestMirrorDeletesRightOnlyFilePermanently(t *testing.T) {
	leftDir, rightDir := t.TempDir(), t.TempDir()
	writeFile(t, rightDir, "extra.txt", "gone soon")

	base, _, _ := buildMirrored(t, leftDir, rightDir)
	left, right := permanentPolicies()

	phase, _ := runPlan(t, base, left, right)
	if phase != PhaseFinishedOK {
		t.Fatalf("expected FinishedOK, got %s", phase)
	}

	if _, err := os.Stat(filepath.Join(rightDir, "extra.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected extra.txt to be permanently removed, stat err = %v", err)
	}
}

func TestMirrorOverwritesDifferingFileContent(t *testing.T) {
	leftDir, rightDir := t.TempDir(), t.TempDir()
	writeFile(t, leftDir, "doc.txt", "new content, much longer than before")
	writeFile(t, rightDir, "doc.txt", "old")
	// Ensure the two are categorized as genuinely different rather than
	// equal-by-coincidence: differing sizes already guarantee DIFFERENT.

	base, _, _ := buildMirrored(t, leftDir, rightDir)
	left, right := permanentPolicies()

	phase, _ := runPlan(t, base, left, right)
	if phase != PhaseFinishedOK {
		t.Fatalf("expected FinishedOK, got %s", phase)
	}

	got, err := os.ReadFile(filepath.Join(rightDir, "doc.txt"))
	if err != nil {
		t.Fatalf("doc.txt missing after sync: %v", err)
	}
	if string(got) != "new content, much longer than before" {
		t.Fatalf("got %q, want left's content", got)
	}
}

func TestVersioningPolicyMovesFileInsteadOfDeleting(t *testing.T) {
	leftDir, rightDir := t.TempDir(), t.TempDir()
	writeFile(t, rightDir, "extra.txt", "keep me somewhere")

	base, _, rightDevice := buildMirrored(t, leftDir, rightDir)

	versioner := versioning.New(rightDevice, "versions", versioning.StyleReplace, nil)
	leftPolicy := DeletionPolicy{Mode: DeletionPermanent}
	rightPolicy := DeletionPolicy{Mode: DeletionVersioning, Versioner: versioner}

	phase, _ := runPlan(t, base, leftPolicy, rightPolicy)
	if phase != PhaseFinishedOK {
		t.Fatalf("expected FinishedOK, got %s", phase)
	}

	if _, err := os.Stat(filepath.Join(rightDir, "extra.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected extra.txt to be gone from its original location")
	}
	got, err := os.ReadFile(filepath.Join(rightDir, "versions", "extra.txt"))
	if err != nil {
		t.Fatalf("expected extra.txt to be versioned under versions/: %v", err)
	}
	if string(got) != "keep me somewhere" {
		t.Fatalf("got %q, want original content preserved", got)
	}
}

func TestCreatesMissingFolderAndNestedFile(t *testing.T) {
	leftDir, rightDir := t.TempDir(), t.TempDir()
	if err := os.Mkdir(filepath.Join(leftDir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(leftDir, "sub"), "nested.txt", "deep")

	base, _, _ := buildMirrored(t, leftDir, rightDir)
	left, right := permanentPolicies()

	phase, _ := runPlan(t, base, left, right)
	if phase != PhaseFinishedOK {
		t.Fatalf("expected FinishedOK, got %s", phase)
	}

	got, err := os.ReadFile(filepath.Join(rightDir, "sub", "nested.txt"))
	if err != nil {
		t.Fatalf("expected nested file to be created: %v", err)
	}
	if string(got) != "deep" {
		t.Fatalf("got %q, want %q", got, "deep")
	}
}

func TestExecutorAbortsOnUnrecoverableError(t *testing.T) {
	leftDir, rightDir := t.TempDir(), t.TempDir()
	writeFile(t, leftDir, "a.txt", "hello")

	base, _, _ := buildMirrored(t, leftDir, rightDir)
	left, right := permanentPolicies()

	plan := Build(base)
	cb := &noopCallback{}
	exec := &Executor{
		Base:     base,
		Deleter:  NewDeleter(left, right, cb),
		Control:  NewControl(),
		Callback: cb,
		Stats:    NewStatistics(plan.TotalObjects, plan.TotalBytes),
	}

	// Replace the right side's root with a regular file after planning, so
	// every filesystem operation the plan issues against it fails,
	// regardless of the test process's privileges.
	if err := os.RemoveAll(rightDir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rightDir, []byte("blocker"), 0o644); err != nil {
		t.Fatal(err)
	}

	phase, err := exec.Execute(context.Background(), plan)
	if err == nil {
		t.Fatalf("expected an error, plan unexpectedly succeeded at phase %s", phase)
	}
	if phase != PhaseAborted {
		t.Fatalf("expected ABORTED, got %s", phase)
	}
}

func TestStatisticsReflectProgress(t *testing.T) {
	s := NewStatistics(10, 1000)
	s.Update(1, 100)
	snap := s.Snapshot()
	if snap.DoneObjects != 1 || snap.DoneBytes != 100 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.TotalObjects != 10 || snap.TotalBytes != 1000 {
		t.Fatalf("totals not preserved: %+v", snap)
	}
}

func TestStatisticsAdjustTotalsGrowsAndShrinks(t *testing.T) {
	s := NewStatistics(5, 500)
	s.AdjustTotals(2, 200)
	snap := s.Snapshot()
	if snap.TotalObjects != 7 || snap.TotalBytes != 700 {
		t.Fatalf("expected totals to grow, got %+v", snap)
	}
	s.AdjustTotals(-1, -100)
	snap = s.Snapshot()
	if snap.TotalObjects != 6 || snap.TotalBytes != 600 {
		t.Fatalf("expected totals to shrink, got %+v", snap)
	}
}

func TestSnapETAGranularity(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, 0},
		{3 * time.Second, 5 * time.Second},
		{70 * time.Second, 2 * time.Minute},
		{90 * time.Minute, 90 * time.Minute},
		{91*time.Minute + time.Second, 95 * time.Minute},
	}
	for _, c := range cases {
		if got := snapETA(c.in); got != c.want {
			t.Errorf("snapETA(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestControlPauseBlocksUntilResume(t *testing.T) {
	c := NewControl()
	c.Pause()

	done := make(chan error, 1)
	go func() {
		done <- c.checkSuspension(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("checkSuspension returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	c.Resume()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error after resume: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("checkSuspension did not return after Resume")
	}
}

func TestControlAbortWakesPausedWorker(t *testing.T) {
	c := NewControl()
	c.Pause()

	done := make(chan error, 1)
	go func() {
		done <- c.checkSuspension(context.Background())
	}()

	c.RequestAbort()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error after abort")
		}
	case <-time.After(time.Second):
		t.Fatal("checkSuspension did not return after RequestAbort")
	}
}
