package resolve

import (
	"github.com/freefilesync/ffsync/pkg/filter"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
)

// applyFilter sets the Active flag on every pair in the subtree according to
// f, the last resolution step before the sync executor consumes the tree.
// Each pair is filtered on its own, including the two halves of a detected
// rename; the plan builder only turns a move into a rename when both halves
// are active, and otherwise synchronizes each active half individually.
func applyFilter(root *hierarchy.Container, f filter.Filter) {
	applyFilterLevel(root, "", f)
}

func applyFilterLevel(c *hierarchy.Container, relPath string, f filter.Filter) {
	for _, file := range c.Files {
		p := joinRel(relPath, fileKey(file))
		left := file.Attributes(hierarchy.Left)
		right := file.Attributes(hierarchy.Right)
		file.Active = f.PassFileTwoSided(p, file.Present(hierarchy.Left), uint64(left.Size), left.ModTime, file.Present(hierarchy.Right), uint64(right.Size), right.ModTime)
	}
	for _, link := range c.Symlinks {
		p := joinRel(relPath, symlinkKey(link))
		left := link.Attributes(hierarchy.Left)
		right := link.Attributes(hierarchy.Right)
		link.Active = f.PassSymlinkTwoSided(p, link.Present(hierarchy.Left), left.ModTime, link.Present(hierarchy.Right), right.ModTime)
	}
	for _, d := range c.Folders {
		p := joinRel(relPath, folderKey(d))
		pass, subObjMightMatch := f.PassFolder(p)
		d.Active = pass
		if subObjMightMatch {
			applyFilterLevel(&d.Children, p, f)
		} else {
			deactivateAll(&d.Children)
		}
	}
}

func deactivateAll(c *hierarchy.Container) {
	for _, f := range c.Files {
		f.Active = false
	}
	for _, s := range c.Symlinks {
		s.Active = false
	}
	for _, d := range c.Folders {
		d.Active = false
		deactivateAll(&d.Children)
	}
}

func joinRel(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
