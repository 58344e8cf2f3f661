package hierarchy

import "testing"

func TestNewFileAndEmpty(t *testing.T) {
	var ids IDGenerator
	var container Container

	pair := container.NewFile(&ids, Left, "a.txt", FileAttributes{Size: 10, ModTime: 100}, FileLeftOnly)
	if pair.Empty() {
		t.Fatal("freshly created one-sided pair should not be empty")
	}
	if pair.Present(Right) {
		t.Fatal("right side should not be present")
	}

	pair.RemoveSide(Left)
	if !pair.Empty() {
		t.Fatal("pair with both sides cleared should be empty")
	}
}

func TestPruneEmptyCollapsesEmptyFolders(t *testing.T) {
	var ids IDGenerator
	var root Container

	folder := root.NewFolder(&ids, Left, "sub", FolderLeftOnly)
	child := folder.Children.NewFile(&ids, Left, "a.txt", FileAttributes{Size: 1}, FileLeftOnly)

	child.RemoveSide(Left)
	folder.RemoveSide(Left)

	root.PruneEmpty()

	if len(root.Folders) != 0 {
		t.Fatalf("expected folder to be pruned, got %d remaining", len(root.Folders))
	}
}

func TestSetSyncDirRecursiveSkipsEqual(t *testing.T) {
	var ids IDGenerator
	var root Container

	changed := root.NewFile(&ids, Left, "changed.txt", FileAttributes{Size: 1}, FileLeftOnly)
	equal := root.NewFile(&ids, Left, "equal.txt", FileAttributes{Size: 1}, FileEqual)

	root.SetSyncDirRecursive(Direction{Kind: DirectionLeftToRight})

	if changed.Dir.Kind != DirectionLeftToRight {
		t.Fatal("expected non-equal pair to receive the direction")
	}
	if equal.Dir.Kind != DirectionNone {
		t.Fatal("expected equal pair to be left at NONE")
	}
}

func TestFlipSwapsSidesAndCategories(t *testing.T) {
	var ids IDGenerator
	var root Container

	pair := root.NewFile(&ids, Left, "a.txt", FileAttributes{Size: 1}, FileLeftOnly)

	root.Flip()

	if pair.Present(Left) {
		t.Fatal("expected left to be empty after flip")
	}
	if !pair.Present(Right) {
		t.Fatal("expected right to be populated after flip")
	}
	if pair.Category != FileRightOnly {
		t.Fatalf("expected category to flip to RIGHT_ONLY, got %s", pair.Category)
	}
}
