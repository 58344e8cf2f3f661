package resolve

import "github.com/freefilesync/ffsync/pkg/hierarchy"

// categoryTable is a pure category-to-direction lookup, used by every
// resolution strategy that doesn't consult the database (default fallback,
// mirror, update, custom).
type categoryTable struct {
	file    map[hierarchy.FileCategory]hierarchy.Direction
	symlink map[hierarchy.SymlinkCategory]hierarchy.Direction
	folder  map[hierarchy.FolderCategory]hierarchy.Direction
}

func (t categoryTable) forFile(c hierarchy.FileCategory) hierarchy.Direction {
	if d, ok := t.file[c]; ok {
		return d
	}
	return hierarchy.NoneDirection
}

func (t categoryTable) forSymlink(c hierarchy.SymlinkCategory) hierarchy.Direction {
	if d, ok := t.symlink[c]; ok {
		return d
	}
	return hierarchy.NoneDirection
}

func (t categoryTable) forFolder(c hierarchy.FolderCategory) hierarchy.Direction {
	if d, ok := t.folder[c]; ok {
		return d
	}
	return hierarchy.NoneDirection
}

var leftToRight = hierarchy.Direction{Kind: hierarchy.DirectionLeftToRight}
var rightToLeft = hierarchy.Direction{Kind: hierarchy.DirectionRightToLeft}

// defaultTable is the conservative, no-database fallback: create items
// missing on either side, let a clearly newer side win, but never delete and
// never silently pick a winner for an ambiguous content difference.
var defaultTable = categoryTable{
	file: map[hierarchy.FileCategory]hierarchy.Direction{
		hierarchy.FileLeftOnly:           leftToRight,
		hierarchy.FileRightOnly:          rightToLeft,
		hierarchy.FileLeftNewer:          leftToRight,
		hierarchy.FileRightNewer:         rightToLeft,
		hierarchy.FileDifferent:          hierarchy.Conflict("no database entry to resolve conflicting change"),
		hierarchy.FileDifferentMetadata:  leftToRight,
		hierarchy.FileConflict:           hierarchy.Conflict("modification time is implausible"),
	},
	symlink: map[hierarchy.SymlinkCategory]hierarchy.Direction{
		hierarchy.SymlinkLeftOnly:          leftToRight,
		hierarchy.SymlinkRightOnly:         rightToLeft,
		hierarchy.SymlinkLeftNewer:         leftToRight,
		hierarchy.SymlinkRightNewer:        rightToLeft,
		hierarchy.SymlinkDifferent:         hierarchy.Conflict("no database entry to resolve conflicting change"),
		hierarchy.SymlinkDifferentMetadata: leftToRight,
		hierarchy.SymlinkConflict:          hierarchy.Conflict("modification time is implausible"),
	},
	folder: map[hierarchy.FolderCategory]hierarchy.Direction{
		hierarchy.FolderLeftOnly:           leftToRight,
		hierarchy.FolderRightOnly:          rightToLeft,
		hierarchy.FolderDifferentMetadata:  leftToRight,
	},
}

// mirrorTable treats right as an unconditional clone of left: every
// non-equal category propagates left to right, with no exceptions.
var mirrorTable = categoryTable{
	file: map[hierarchy.FileCategory]hierarchy.Direction{
		hierarchy.FileLeftOnly:          leftToRight,
		hierarchy.FileRightOnly:         leftToRight,
		hierarchy.FileLeftNewer:         leftToRight,
		hierarchy.FileRightNewer:        leftToRight,
		hierarchy.FileDifferent:         leftToRight,
		hierarchy.FileDifferentMetadata: leftToRight,
		hierarchy.FileConflict:          leftToRight,
	},
	symlink: map[hierarchy.SymlinkCategory]hierarchy.Direction{
		hierarchy.SymlinkLeftOnly:          leftToRight,
		hierarchy.SymlinkRightOnly:         leftToRight,
		hierarchy.SymlinkLeftNewer:         leftToRight,
		hierarchy.SymlinkRightNewer:        leftToRight,
		hierarchy.SymlinkDifferent:         leftToRight,
		hierarchy.SymlinkDifferentMetadata: leftToRight,
		hierarchy.SymlinkConflict:          leftToRight,
	},
	folder: map[hierarchy.FolderCategory]hierarchy.Direction{
		hierarchy.FolderLeftOnly:          leftToRight,
		hierarchy.FolderRightOnly:         leftToRight,
		hierarchy.FolderDifferentMetadata: leftToRight,
	},
}

// updateTable propagates left to right but never deletes or overwrites a
// newer item already on the right.
var updateTable = categoryTable{
	file: map[hierarchy.FileCategory]hierarchy.Direction{
		hierarchy.FileLeftOnly:          leftToRight,
		hierarchy.FileRightOnly:         hierarchy.NoneDirection,
		hierarchy.FileLeftNewer:         leftToRight,
		hierarchy.FileRightNewer:        hierarchy.NoneDirection,
		hierarchy.FileDifferent:         leftToRight,
		hierarchy.FileDifferentMetadata: leftToRight,
		hierarchy.FileConflict:          hierarchy.NoneDirection,
	},
	symlink: map[hierarchy.SymlinkCategory]hierarchy.Direction{
		hierarchy.SymlinkLeftOnly:          leftToRight,
		hierarchy.SymlinkRightOnly:         hierarchy.NoneDirection,
		hierarchy.SymlinkLeftNewer:         leftToRight,
		hierarchy.SymlinkRightNewer:        hierarchy.NoneDirection,
		hierarchy.SymlinkDifferent:         leftToRight,
		hierarchy.SymlinkDifferentMetadata: leftToRight,
		hierarchy.SymlinkConflict:          hierarchy.NoneDirection,
	},
	folder: map[hierarchy.FolderCategory]hierarchy.Direction{
		hierarchy.FolderLeftOnly:          leftToRight,
		hierarchy.FolderRightOnly:         hierarchy.NoneDirection,
		hierarchy.FolderDifferentMetadata: leftToRight,
	},
}
