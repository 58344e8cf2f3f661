package resolve

import (
	"strings"

	"github.com/freefilesync/ffsync/pkg/database"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
)

// TempFileSuffix marks an item the sync executor is still writing; one left
// behind by a crashed or interrupted prior run is swept unconditionally
// rather than synchronized as ordinary content.
const TempFileSuffix = ".ffs_tmp"

// detectMoves links LEFT_ONLY/RIGHT_ONLY file pairs that the last-in-sync
// database's recorded per-side file ids identify as the same underlying
// file under a new name, setting MovedPeer on both halves of the pair.
// Candidates whose file id is shared by more than one pair on a side are
// excluded, since the id no longer uniquely identifies a single rename.
func detectMoves(root *hierarchy.Container, snapshot *database.DirInformation, tolerance int64) int {
	if snapshot == nil {
		return 0
	}

	leftCandidates := map[string]*hierarchy.FilePair{}
	rightCandidates := map[string]*hierarchy.FilePair{}
	collectMoveCandidates(root, leftCandidates, rightCandidates)

	var linked int
	visit := func(entry database.FileEntry) {
		if entry.LeftFileID == "" || entry.RightFileID == "" {
			return
		}
		left, lok := leftCandidates[entry.LeftFileID]
		right, rok := rightCandidates[entry.RightFileID]
		if !lok || !rok || left == nil || right == nil {
			return
		}
		if left.MovedPeer != nil || right.MovedPeer != nil {
			return
		}
		if !matchesRecordedFile(left.Attributes(hierarchy.Left), entry.LeftSize, entry.LeftModTime, tolerance) {
			return
		}
		if !matchesRecordedFile(right.Attributes(hierarchy.Right), entry.RightSize, entry.RightModTime, tolerance) {
			return
		}

		left.MovedPeer = right
		right.MovedPeer = left
		linked++
	}
	walkDBFiles(snapshot.Files, visit)
	walkDBTree(snapshot.Folders, visit)

	return linked
}

func matchesRecordedFile(attrs hierarchy.FileAttributes, size uint64, modTime int64, tolerance int64) bool {
	return uint64(attrs.Size) == size && timeTolerant(attrs.ModTime, modTime, tolerance)
}

// collectMoveCandidates gathers every LEFT_ONLY and RIGHT_ONLY file pair in
// the subtree, indexed by that side's FileID. A FileID claimed by more than
// one pair maps to nil, marking it ambiguous.
func collectMoveCandidates(c *hierarchy.Container, leftOut, rightOut map[string]*hierarchy.FilePair) {
	for _, f := range c.Files {
		switch f.Category {
		case hierarchy.FileLeftOnly:
			addCandidate(leftOut, f.Attributes(hierarchy.Left).FileID, f)
		case hierarchy.FileRightOnly:
			addCandidate(rightOut, f.Attributes(hierarchy.Right).FileID, f)
		}
	}
	for _, d := range c.Folders {
		collectMoveCandidates(&d.Children, leftOut, rightOut)
	}
}

func addCandidate(index map[string]*hierarchy.FilePair, id string, pair *hierarchy.FilePair) {
	if id == "" {
		return
	}
	if _, exists := index[id]; exists {
		index[id] = nil
		return
	}
	index[id] = pair
}

// walkDBFiles invokes visit for every file entry of one database tree level;
// it does not recurse into subfolders.
func walkDBFiles(files []database.FileEntry, visit func(database.FileEntry)) {
	for _, f := range files {
		visit(f)
	}
}

func walkDBTree(folders []database.FolderEntry, visit func(database.FileEntry)) {
	for _, folder := range folders {
		walkDBFiles(folder.Files, visit)
		walkDBTree(folder.Subfolders, visit)
	}
}

// sweepTempFiles overrides the resolved direction of any one-sided item
// whose name carries TempFileSuffix so that it is always deleted from the
// side where it currently exists, regardless of sync mode: a leftover
// ".ffs_tmp" file is debris from an interrupted prior run, never content a
// user created intentionally.
func sweepTempFiles(c *hierarchy.Container) {
	for _, f := range c.Files {
		if f.Category == hierarchy.FileLeftOnly && strings.HasSuffix(f.Name(hierarchy.Left), TempFileSuffix) {
			f.Dir = rightToLeft
			f.MovedPeer = nil
		}
		if f.Category == hierarchy.FileRightOnly && strings.HasSuffix(f.Name(hierarchy.Right), TempFileSuffix) {
			f.Dir = leftToRight
			f.MovedPeer = nil
		}
	}
	for _, d := range c.Folders {
		sweepTempFiles(&d.Children)
	}
}
