package resolve

import (
	"github.com/freefilesync/ffsync/pkg/database"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
)

// timeTolerant reports whether two modification times are equal within the
// given tolerance (in seconds), matching the leniency the compare engine
// applies for FAT-style two-second rounding.
func timeTolerant(a, b int64, toleranceSeconds int64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= toleranceSeconds
}

// resolveTwoWayLevel resolves directions for one level of the tree against
// the matching level of the last-in-sync database, then recurses into child
// folders paired by name.
func (r *resolver) resolveTwoWayLevel(c *hierarchy.Container, dbFiles []database.FileEntry, dbSymlinks []database.SymlinkEntry, dbFolders []database.FolderEntry) {
	fileIndex := make(map[string]database.FileEntry, len(dbFiles))
	for _, f := range dbFiles {
		fileIndex[f.Name] = f
	}
	symlinkIndex := make(map[string]database.SymlinkEntry, len(dbSymlinks))
	for _, s := range dbSymlinks {
		symlinkIndex[s.Name] = s
	}
	folderIndex := make(map[string]database.FolderEntry, len(dbFolders))
	for _, d := range dbFolders {
		folderIndex[d.Name] = d
	}

	for _, f := range c.Files {
		if f.Category == hierarchy.FileEqual {
			continue
		}
		f.Dir = r.resolveFileTwoWay(f, fileIndex)
	}

	for _, s := range c.Symlinks {
		if s.Category == hierarchy.SymlinkEqual {
			continue
		}
		s.Dir = r.resolveSymlinkTwoWay(s, symlinkIndex)
	}

	for _, d := range c.Folders {
		entry, found := folderIndex[folderKey(d)]
		if d.Category != hierarchy.FolderEqual {
			d.Dir = r.resolveFolderTwoWay(d, found)
		}
		if found {
			r.resolveTwoWayLevel(&d.Children, entry.Files, entry.Symlinks, entry.Subfolders)
		} else {
			// No baseline for this subtree at all: every descendant is
			// necessarily "changed on exactly one side" relative to an
			// implicit empty baseline, so the default table gives the same
			// answer the full two-way logic would.
			r.resolveDefaultLevel(&d.Children)
		}
	}
}

func folderKey(d *hierarchy.FolderPair) string {
	if d.Present(hierarchy.Left) {
		return d.Name(hierarchy.Left)
	}
	return d.Name(hierarchy.Right)
}

func fileKey(f *hierarchy.FilePair) string {
	if f.Present(hierarchy.Left) {
		return f.Name(hierarchy.Left)
	}
	return f.Name(hierarchy.Right)
}

func symlinkKey(s *hierarchy.SymlinkPair) string {
	if s.Present(hierarchy.Left) {
		return s.Name(hierarchy.Left)
	}
	return s.Name(hierarchy.Right)
}

// resolveFileTwoWay implements the four-case database-driven decision (spec
// §4.G) for a single file pair.
func (r *resolver) resolveFileTwoWay(f *hierarchy.FilePair, index map[string]database.FileEntry) hierarchy.Direction {
	tolerance := r.opts.TimeTolerance
	entry, found := index[fileKey(f)]

	changedLeft := f.Present(hierarchy.Left) != found
	changedRight := f.Present(hierarchy.Right) != found
	if found {
		if f.Present(hierarchy.Left) {
			left := f.Attributes(hierarchy.Left)
			changedLeft = !timeTolerant(left.ModTime, entry.LeftModTime, tolerance) || uint64(left.Size) != entry.LeftSize
		}
		if f.Present(hierarchy.Right) {
			right := f.Attributes(hierarchy.Right)
			changedRight = !timeTolerant(right.ModTime, entry.RightModTime, tolerance) || uint64(right.Size) != entry.RightSize
		}
	}

	if !changedLeft && !changedRight {
		return hierarchy.Conflict("neither side changed since the last synchronized state, but the items still differ")
	}
	if changedLeft && changedRight {
		return hierarchy.Conflict("both sides changed since the last synchronized state")
	}

	// Exactly one side changed. Trust the propagation only if the
	// database's own two recorded sides were themselves in sync under the
	// current comparison rules; otherwise the baseline itself is suspect.
	dbSelfConsistent := !found || (timeTolerant(entry.LeftModTime, entry.RightModTime, tolerance) && entry.LeftSize == entry.RightSize)
	if !dbSelfConsistent {
		return hierarchy.Conflict("database entry is no longer in sync under the current comparison settings")
	}
	if changedLeft {
		return leftToRight
	}
	return rightToLeft
}

func (r *resolver) resolveSymlinkTwoWay(s *hierarchy.SymlinkPair, index map[string]database.SymlinkEntry) hierarchy.Direction {
	tolerance := r.opts.TimeTolerance
	entry, found := index[symlinkKey(s)]

	changedLeft := s.Present(hierarchy.Left) != found
	changedRight := s.Present(hierarchy.Right) != found
	if found {
		if s.Present(hierarchy.Left) {
			left := s.Attributes(hierarchy.Left)
			changedLeft = !timeTolerant(left.ModTime, entry.LeftModTime, tolerance) || left.Target != entry.LeftTarget
		}
		if s.Present(hierarchy.Right) {
			right := s.Attributes(hierarchy.Right)
			changedRight = !timeTolerant(right.ModTime, entry.RightModTime, tolerance) || right.Target != entry.RightTarget
		}
	}

	if !changedLeft && !changedRight {
		return hierarchy.Conflict("neither side changed since the last synchronized state, but the items still differ")
	}
	if changedLeft && changedRight {
		return hierarchy.Conflict("both sides changed since the last synchronized state")
	}

	dbSelfConsistent := !found || (timeTolerant(entry.LeftModTime, entry.RightModTime, tolerance) && entry.LeftTarget == entry.RightTarget)
	if !dbSelfConsistent {
		return hierarchy.Conflict("database entry is no longer in sync under the current comparison settings")
	}
	if changedLeft {
		return leftToRight
	}
	return rightToLeft
}

// resolveFolderTwoWay handles folder pairs, which carry no comparable
// attributes beyond presence: a folder is "changed" on a side purely by
// appearing or disappearing relative to the database.
func (r *resolver) resolveFolderTwoWay(d *hierarchy.FolderPair, foundInDB bool) hierarchy.Direction {
	changedLeft := d.Present(hierarchy.Left) != foundInDB
	changedRight := d.Present(hierarchy.Right) != foundInDB

	if !changedLeft && !changedRight {
		return hierarchy.NoneDirection
	}
	if changedLeft && changedRight {
		return hierarchy.Conflict("both sides changed since the last synchronized state")
	}
	if changedLeft {
		return leftToRight
	}
	return rightToLeft
}
