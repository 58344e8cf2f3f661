package resolve

import (
	"testing"

	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/database"
	"github.com/freefilesync/ffsync/pkg/filter"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
)

func newBase() *hierarchy.BaseFolderPair {
	fc := hierarchy.FolderComparison{}
	return fc.NewBaseFolderPair(afs.Path{}, afs.Path{}, true, true)
}

func TestMirrorAlwaysPropagatesLeftToRight(t *testing.T) {
	base := newBase()
	left := base.Root.NewFile(&base.IDs, hierarchy.Left, "a.txt", hierarchy.FileAttributes{Size: 1}, hierarchy.FileLeftOnly)
	right := base.Root.NewFile(&base.IDs, hierarchy.Right, "b.txt", hierarchy.FileAttributes{Size: 1}, hierarchy.FileRightOnly)

	Base(base, nil, Options{Mode: ModeMirror, Filter: filter.New(nil, filter.NoSoftFilter)})

	if left.Dir.Kind != hierarchy.DirectionLeftToRight {
		t.Fatalf("expected LEFT_ONLY to propagate left to right, got %v", left.Dir)
	}
	if right.Dir.Kind != hierarchy.DirectionLeftToRight {
		t.Fatalf("expected RIGHT_ONLY to be deleted under mirror (left to right), got %v", right.Dir)
	}
}

func TestUpdateNeverDeletesOrOverwritesNewerTarget(t *testing.T) {
	base := newBase()
	rightOnly := base.Root.NewFile(&base.IDs, hierarchy.Right, "b.txt", hierarchy.FileAttributes{Size: 1}, hierarchy.FileRightOnly)
	rightNewer := base.Root.NewFile(&base.IDs, hierarchy.Left, "c.txt", hierarchy.FileAttributes{Size: 1}, hierarchy.FileRightNewer)
	rightNewer.SetSide(hierarchy.Right, "c.txt", hierarchy.FileAttributes{Size: 1})

	Base(base, nil, Options{Mode: ModeUpdate, Filter: filter.New(nil, filter.NoSoftFilter)})

	if rightOnly.Dir.Kind != hierarchy.DirectionNone {
		t.Fatalf("expected RIGHT_ONLY to be left alone under update, got %v", rightOnly.Dir)
	}
	if rightNewer.Dir.Kind != hierarchy.DirectionNone {
		t.Fatalf("expected RIGHT_NEWER to be left alone under update, got %v", rightNewer.Dir)
	}
}

func TestTwoWayPropagatesChangeFromTheOnlySideThatMoved(t *testing.T) {
	base := newBase()
	f := base.Root.NewFile(&base.IDs, hierarchy.Left, "a.txt", hierarchy.FileAttributes{Size: 20, ModTime: 500}, hierarchy.FileLeftNewer)
	f.SetSide(hierarchy.Right, "a.txt", hierarchy.FileAttributes{Size: 10, ModTime: 100})

	snapshot := &database.DirInformation{
		Files: []database.FileEntry{
			{Name: "a.txt", LeftModTime: 100, LeftSize: 10, RightModTime: 100, RightSize: 10},
		},
	}

	Base(base, snapshot, Options{Mode: ModeTwoWay, TimeTolerance: 2, Filter: filter.New(nil, filter.NoSoftFilter)})

	if f.Dir.Kind != hierarchy.DirectionLeftToRight {
		t.Fatalf("expected change on left only to propagate left to right, got %v", f.Dir)
	}
}

func TestTwoWayConflictsWhenBothSidesChanged(t *testing.T) {
	base := newBase()
	f := base.Root.NewFile(&base.IDs, hierarchy.Left, "a.txt", hierarchy.FileAttributes{Size: 20, ModTime: 500}, hierarchy.FileDifferent)
	f.SetSide(hierarchy.Right, "a.txt", hierarchy.FileAttributes{Size: 30, ModTime: 600})

	snapshot := &database.DirInformation{
		Files: []database.FileEntry{
			{Name: "a.txt", LeftModTime: 100, LeftSize: 10, RightModTime: 100, RightSize: 10},
		},
	}

	Base(base, snapshot, Options{Mode: ModeTwoWay, TimeTolerance: 2, Filter: filter.New(nil, filter.NoSoftFilter)})

	if f.Dir.Kind != hierarchy.DirectionConflict {
		t.Fatalf("expected conflict when both sides changed, got %v", f.Dir)
	}
}

func TestTwoWayConflictsWhenDatabaseEntryItselfOutOfSync(t *testing.T) {
	base := newBase()
	f := base.Root.NewFile(&base.IDs, hierarchy.Left, "a.txt", hierarchy.FileAttributes{Size: 10, ModTime: 100}, hierarchy.FileLeftNewer)
	f.SetSide(hierarchy.Right, "a.txt", hierarchy.FileAttributes{Size: 99, ModTime: 999})

	// Database claims the two sides were already different, so neither
	// recorded value can be trusted as a baseline.
	snapshot := &database.DirInformation{
		Files: []database.FileEntry{
			{Name: "a.txt", LeftModTime: 100, LeftSize: 10, RightModTime: 999, RightSize: 99},
		},
	}

	Base(base, snapshot, Options{Mode: ModeTwoWay, TimeTolerance: 2, Filter: filter.New(nil, filter.NoSoftFilter)})

	if f.Dir.Kind != hierarchy.DirectionConflict {
		t.Fatalf("expected conflict when database entry itself is not self-consistent, got %v", f.Dir)
	}
}

func TestTwoWayFallsBackToDefaultTableWithoutDatabase(t *testing.T) {
	base := newBase()
	f := base.Root.NewFile(&base.IDs, hierarchy.Left, "a.txt", hierarchy.FileAttributes{Size: 10}, hierarchy.FileLeftOnly)

	result := Base(base, nil, Options{Mode: ModeTwoWay, Filter: filter.New(nil, filter.NoSoftFilter)})

	if result.UsedDatabase {
		t.Fatalf("expected fallback when snapshot is nil")
	}
	if f.Dir.Kind != hierarchy.DirectionLeftToRight {
		t.Fatalf("expected default table to propagate LEFT_ONLY, got %v", f.Dir)
	}
}

func TestMoveDetectionLinksRenamedFile(t *testing.T) {
	base := newBase()
	newName := base.Root.NewFile(&base.IDs, hierarchy.Left, "b.txt", hierarchy.FileAttributes{Size: 10, ModTime: 100, FileID: "left-id"}, hierarchy.FileLeftOnly)
	oldName := base.Root.NewFile(&base.IDs, hierarchy.Right, "a.txt", hierarchy.FileAttributes{Size: 10, ModTime: 100, FileID: "right-id"}, hierarchy.FileRightOnly)

	snapshot := &database.DirInformation{
		Files: []database.FileEntry{
			{Name: "a.txt", LeftModTime: 100, LeftSize: 10, LeftFileID: "left-id", RightModTime: 100, RightSize: 10, RightFileID: "right-id"},
		},
	}

	result := Base(base, snapshot, Options{Mode: ModeTwoWay, TimeTolerance: 2, Filter: filter.New(nil, filter.NoSoftFilter)})

	if result.MovesDetected != 1 {
		t.Fatalf("expected one move to be detected, got %d", result.MovesDetected)
	}
	if newName.MovedPeer != oldName || oldName.MovedPeer != newName {
		t.Fatalf("expected the two halves of the rename to be linked to each other")
	}
}

func TestTempFileSweepOverridesDirectionToDelete(t *testing.T) {
	base := newBase()
	leftTemp := base.Root.NewFile(&base.IDs, hierarchy.Left, "a.txt.ffs_tmp", hierarchy.FileAttributes{Size: 10}, hierarchy.FileLeftOnly)

	Base(base, nil, Options{Mode: ModeMirror, Filter: filter.New(nil, filter.NoSoftFilter)})

	if leftTemp.Dir.Kind != hierarchy.DirectionRightToLeft {
		t.Fatalf("expected leftover temp file to be deleted on the side it exists on, got %v", leftTemp.Dir)
	}
}

func TestFilterDeactivatesExcludedItems(t *testing.T) {
	base := newBase()
	included := base.Root.NewFile(&base.IDs, hierarchy.Left, "keep.txt", hierarchy.FileAttributes{Size: 1}, hierarchy.FileLeftOnly)
	excluded := base.Root.NewFile(&base.IDs, hierarchy.Left, "skip.log", hierarchy.FileAttributes{Size: 1}, hierarchy.FileLeftOnly)

	hard := filter.NewHardFilter([]string{"*.txt"}, nil, false)
	f := filter.New(hard, filter.NoSoftFilter)

	Base(base, nil, Options{Mode: ModeMirror, Filter: f})

	if !included.Active {
		t.Fatalf("expected keep.txt to remain active")
	}
	if excluded.Active {
		t.Fatalf("expected skip.log to be filtered out")
	}
}
