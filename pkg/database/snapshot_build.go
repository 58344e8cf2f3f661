package database

import (
	"github.com/freefilesync/ffsync/pkg/hierarchy"
)

// BuildDirInformation walks a base folder pair's post-sync hierarchy and
// produces the DirInformation snapshot to persist as the new last-in-sync
// state (spec §4.E). For items currently categorized EQUAL it records the
// freshly observed values; for anything else, it falls back to whatever
// entry (if any) was recorded for that name in the previous snapshot, so
// that comparison drift (a user's local change the run didn't propagate, a
// skipped conflict) never erases knowledge of state that was genuinely in
// sync at an earlier run. variant names the comparison variant that
// produced the categorization, recorded so a later run can detect when
// changing between ByTimeAndSize and ByContent invalidates cached "changed"
// determinations.
func BuildDirInformation(root *hierarchy.Container, previous DirInformation, variant string, filterHard []byte) DirInformation {
	files, symlinks, folders := buildLevel(root, previous.Files, previous.Symlinks, previous.Folders)
	return DirInformation{
		ComparisonVariant: variant,
		FilterHard:        filterHard,
		Files:             files,
		Symlinks:          symlinks,
		Folders:           folders,
	}
}

func buildLevel(c *hierarchy.Container, prevFiles []FileEntry, prevSymlinks []SymlinkEntry, prevFolders []FolderEntry) ([]FileEntry, []SymlinkEntry, []FolderEntry) {
	prevFileByName := make(map[string]FileEntry, len(prevFiles))
	for _, f := range prevFiles {
		prevFileByName[f.Name] = f
	}
	prevSymlinkByName := make(map[string]SymlinkEntry, len(prevSymlinks))
	for _, s := range prevSymlinks {
		prevSymlinkByName[s.Name] = s
	}
	prevFolderByName := make(map[string]FolderEntry, len(prevFolders))
	for _, d := range prevFolders {
		prevFolderByName[d.Name] = d
	}

	files := make([]FileEntry, 0, len(c.Files))
	for _, f := range c.Files {
		if f.Empty() {
			continue
		}
		name := f.Name(hierarchy.Left)
		if name == "" {
			name = f.Name(hierarchy.Right)
		}
		if f.Category == hierarchy.FileEqual {
			left := f.Attributes(hierarchy.Left)
			right := f.Attributes(hierarchy.Right)
			files = append(files, FileEntry{
				Name:         name,
				LeftModTime:  left.ModTime,
				LeftSize:     uint64(left.Size),
				LeftFileID:   left.FileID,
				RightModTime: right.ModTime,
				RightSize:    uint64(right.Size),
				RightFileID:  right.FileID,
			})
		} else if prev, ok := prevFileByName[name]; ok {
			files = append(files, prev)
		}
	}

	symlinks := make([]SymlinkEntry, 0, len(c.Symlinks))
	for _, s := range c.Symlinks {
		if s.Empty() {
			continue
		}
		name := s.Name(hierarchy.Left)
		if name == "" {
			name = s.Name(hierarchy.Right)
		}
		if s.Category == hierarchy.SymlinkEqual {
			left := s.Attributes(hierarchy.Left)
			right := s.Attributes(hierarchy.Right)
			symlinks = append(symlinks, SymlinkEntry{
				Name:         name,
				LeftModTime:  left.ModTime,
				LeftTarget:   left.Target,
				RightModTime: right.ModTime,
				RightTarget:  right.Target,
			})
		} else if prev, ok := prevSymlinkByName[name]; ok {
			symlinks = append(symlinks, prev)
		}
	}

	folders := make([]FolderEntry, 0, len(c.Folders))
	for _, d := range c.Folders {
		if d.Empty() {
			continue
		}
		name := d.Name(hierarchy.Left)
		if name == "" {
			name = d.Name(hierarchy.Right)
		}
		prev := prevFolderByName[name]
		childFiles, childSymlinks, childFolders := buildLevel(&d.Children, prev.Files, prev.Symlinks, prev.Subfolders)
		folders = append(folders, FolderEntry{
			Name:       name,
			StrawMan:   d.Category != hierarchy.FolderEqual,
			Files:      childFiles,
			Symlinks:   childSymlinks,
			Subfolders: childFolders,
		})
	}

	return files, symlinks, folders
}
