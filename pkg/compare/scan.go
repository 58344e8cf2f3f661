package compare

import (
	"context"
	"sort"

	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/filter"
	"github.com/freefilesync/ffsync/pkg/logging"
)

// node is one folder level of a scanned side: its children grouped by item
// type, each named and sorted so that merging two sides proceeds
// name-by-name without needing a map lookup per item.
type node struct {
	files    []afs.FileInfo
	symlinks []afs.SymlinkInfo
	folders  []folderNode
}

type folderNode struct {
	info afs.FolderInfo
	// excluded records that the folder itself failed the hard filter but
	// was still descended into because a child might independently match
	// (the doublestar mask "sub/match.txt" excludes "sub" itself while
	// still admitting "sub/match.txt"). An excluded folder is never
	// surfaced as a matched folder pair; it exists only to anchor
	// matching descendants, like a database straw-man folder entry.
	excluded bool
	children node
}

// scanSink implements afs.TraversalSink, building a node tree while applying
// the hard filter's traversal-pruning hint so that excluded subtrees are
// never descended into. Children are located by their parent's relative
// path rather than by a push/pop stack, since TraverseFolder gives no signal
// for when a folder's descendants are exhausted.
type scanSink struct {
	ctx    context.Context
	device afs.Device
	hard   *filter.HardFilter
	logger *logging.Logger
	root   node
	byPath map[afs.RelativePath]*node
}

func newScanSink(ctx context.Context, device afs.Device, hard *filter.HardFilter, logger *logging.Logger) *scanSink {
	s := &scanSink{ctx: ctx, device: device, hard: hard, logger: logger}
	s.byPath = map[afs.RelativePath]*node{"": &s.root}
	return s
}

func (s *scanSink) File(parent afs.RelativePath, info afs.FileInfo) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	rel := parent.Join(info.Name)
	if s.hard != nil && !s.hard.PassFile(string(rel)) {
		return nil
	}
	n := s.byPath[parent]
	n.files = append(n.files, info)
	return nil
}

func (s *scanSink) Symlink(parent afs.RelativePath, info afs.SymlinkInfo) (afs.SymlinkHandling, error) {
	if err := s.ctx.Err(); err != nil {
		return afs.SymlinkSkip, err
	}
	rel := parent.Join(info.Name)
	if s.hard != nil && !s.hard.PassFile(string(rel)) {
		return afs.SymlinkSkip, nil
	}
	n := s.byPath[parent]
	n.symlinks = append(n.symlinks, info)
	return afs.SymlinkSkip, nil
}

func (s *scanSink) Folder(parent afs.RelativePath, info afs.FolderInfo) (bool, error) {
	if err := s.ctx.Err(); err != nil {
		return false, err
	}
	rel := parent.Join(info.Name)
	if s.hard != nil {
		pass, subMightMatch := s.hard.PassFolder(string(rel))
		if !pass && !subMightMatch {
			return false, nil
		}
		if !pass {
			n := s.byPath[parent]
			n.folders = append(n.folders, folderNode{info: info, excluded: true})
			s.byPath[rel] = &n.folders[len(n.folders)-1].children
			return true, nil
		}
	}
	n := s.byPath[parent]
	n.folders = append(n.folders, folderNode{info: info})
	s.byPath[rel] = &n.folders[len(n.folders)-1].children
	return true, nil
}

func (s *scanSink) HandleError(path afs.RelativePath, err error) afs.RecoverableAction {
	if s.logger != nil {
		s.logger.Warnf("skipping %s: %v", path, err)
	}
	return afs.RecoverableIgnore
}

func sortNode(n *node) {
	sort.Slice(n.files, func(i, j int) bool { return n.files[i].Name < n.files[j].Name })
	sort.Slice(n.symlinks, func(i, j int) bool { return n.symlinks[i].Name < n.symlinks[j].Name })
	sort.Slice(n.folders, func(i, j int) bool { return n.folders[i].info.Name < n.folders[j].info.Name })
	for i := range n.folders {
		sortNode(&n.folders[i].children)
	}
}

// scanSide traverses device rooted at root, applying hard, and returns the
// resulting tree with every level sorted by name.
func scanSide(ctx context.Context, device afs.Device, root afs.RelativePath, hard *filter.HardFilter, logger *logging.Logger) (node, error) {
	sink := newScanSink(ctx, device, hard, logger)
	if err := device.TraverseFolder(root, sink); err != nil {
		return node{}, err
	}
	sortNode(&sink.root)
	return sink.root, nil
}
