package compare

import (
	"context"
	"time"

	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/filter"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
	"github.com/freefilesync/ffsync/pkg/logging"
	"github.com/freefilesync/ffsync/pkg/parallelism"
)

// Variant selects the comparison algorithm applied to files present on both
// sides.
type Variant int

const (
	// ByTimeAndSize compares files using modification time and size only,
	// never reading file content.
	ByTimeAndSize Variant = iota
	// ByContent compares files byte-for-byte whenever their sizes match;
	// content-equal files whose modification times differ are reported as
	// differing in metadata only.
	ByContent
)

// Options configures a comparison run.
type Options struct {
	Variant       Variant
	TimeTolerance int64
	// FutureTimestampLimit bounds how far a modification time may sit
	// beyond "now" before it is treated as a clock/filesystem anomaly and
	// classified CONFLICT instead of compared normally. Zero selects the
	// source's fixed one-year default (see CompareFileTime).
	FutureTimestampLimit time.Duration
	Filter               filter.Filter
	Logger               *logging.Logger
}

// Folder runs a full comparison of one base folder pair: traversing both
// sides (skipping a side that doesn't exist, per BaseFolderPair.Existing),
// applying the hard filter during traversal, merging same-name items in
// sorted order, and categorizing every resulting pair.
func Folder(ctx context.Context, base *hierarchy.BaseFolderPair, opts Options) error {
	var trees [2]node
	work := &sideScanWork{ctx: ctx, base: base, opts: opts, trees: &trees}
	array := parallelism.NewSIMDWorkerArray(2)
	err := array.Do(work)
	array.Terminate()
	if err != nil {
		return err
	}
	leftTree, rightTree := trees[hierarchy.Left], trees[hierarchy.Right]

	m := &merger{
		ctx:         ctx,
		opts:        opts,
		ids:         &base.IDs,
		now:         time.Now(),
		leftDevice:  base.Paths[hierarchy.Left].Device,
		rightDevice: base.Paths[hierarchy.Right].Device,
	}
	m.mergeLevel(&base.Root, "", leftTree, rightTree)
	base.Root.PruneEmpty()
	return nil
}

// sideScanWork drives the two sides' directory scans across a SIMD worker
// array's Goroutines, so that a slow remote side (SFTP round trips) doesn't
// serialize behind the other.
type sideScanWork struct {
	ctx   context.Context
	base  *hierarchy.BaseFolderPair
	opts  Options
	trees *[2]node
}

func (w *sideScanWork) Do(index, size int) error {
	if index >= 2 || !w.base.Existing[index] {
		return nil
	}
	tree, err := scanSide(w.ctx, w.base.Paths[index].Device, w.base.Paths[index].Rel, w.opts.Filter.Hard, w.opts.Logger)
	if err != nil {
		return err
	}
	w.trees[index] = tree
	return nil
}

type merger struct {
	ctx         context.Context
	opts        Options
	ids         *hierarchy.IDGenerator
	now         time.Time
	leftDevice  afs.Device
	rightDevice afs.Device
}

// mergeLevel merges one folder level of both sides' scanned trees into
// container, in the files-then-symlinks-then-folders order the rest of the
// pipeline depends on. relPath is the path of this level relative to the
// base folder pair, used to locate file content for byte comparison.
func (m *merger) mergeLevel(container *hierarchy.Container, relPath afs.RelativePath, left, right node) {
	m.mergeFiles(container, relPath, left.files, right.files)
	m.mergeSymlinks(container, left.symlinks, right.symlinks)
	m.mergeFolders(container, relPath, left.folders, right.folders)
}

func (m *merger) mergeFiles(container *hierarchy.Container, relPath afs.RelativePath, left, right []afs.FileInfo) {
	i, j := 0, 0
	for i < len(left) || j < len(right) {
		switch {
		case j >= len(right) || (i < len(left) && left[i].Name < right[j].Name):
			attrs := hierarchy.FileAttributes{Size: left[i].Size, ModTime: left[i].ModTime, FileID: string(left[i].FileID)}
			pair := container.NewFile(m.ids, hierarchy.Left, left[i].Name, attrs, hierarchy.FileLeftOnly)
			pair.Active = true
			i++
		case i >= len(left) || left[i].Name > right[j].Name:
			attrs := hierarchy.FileAttributes{Size: right[j].Size, ModTime: right[j].ModTime, FileID: string(right[j].FileID)}
			pair := container.NewFile(m.ids, hierarchy.Right, right[j].Name, attrs, hierarchy.FileRightOnly)
			pair.Active = true
			j++
		default:
			leftAttrs := hierarchy.FileAttributes{Size: left[i].Size, ModTime: left[i].ModTime, FileID: string(left[i].FileID)}
			rightAttrs := hierarchy.FileAttributes{Size: right[j].Size, ModTime: right[j].ModTime, FileID: string(right[j].FileID)}
			pair := container.NewFile(m.ids, hierarchy.Left, left[i].Name, leftAttrs, hierarchy.FileEqual)
			pair.SetSide(hierarchy.Right, right[j].Name, rightAttrs)
			pair.Category = m.categorizeFile(relPath.Join(left[i].Name), leftAttrs, rightAttrs)
			pair.Active = true
			i++
			j++
		}
	}
}

// categorizeFile classifies a file present on both sides using the
// configured variant.
func (m *merger) categorizeFile(rel afs.RelativePath, left, right hierarchy.FileAttributes) hierarchy.FileCategory {
	if m.opts.Variant == ByContent {
		if left.Size != right.Size {
			return hierarchy.FileDifferent
		}
		equal, err := m.filesHaveSameContent(rel)
		if err != nil {
			return hierarchy.FileConflict
		}
		if !equal {
			return hierarchy.FileDifferent
		}
		if CompareFileTimeWithLimit(left.ModTime, right.ModTime, m.opts.TimeTolerance, m.now, m.opts.FutureTimestampLimit) == TimeEqual {
			return hierarchy.FileEqual
		}
		return hierarchy.FileDifferentMetadata
	}

	if left.Size != right.Size {
		return hierarchy.FileDifferent
	}

	switch CompareFileTimeWithLimit(left.ModTime, right.ModTime, m.opts.TimeTolerance, m.now, m.opts.FutureTimestampLimit) {
	case TimeEqual:
		return hierarchy.FileEqual
	case TimeLeftNewer:
		return hierarchy.FileLeftNewer
	case TimeRightNewer:
		return hierarchy.FileRightNewer
	default:
		// An invalid (implausible) timestamp on either side can't be
		// trusted to order the pair, so it's surfaced as a conflict
		// rather than guessed at.
		return hierarchy.FileConflict
	}
}

func (m *merger) mergeSymlinks(container *hierarchy.Container, left, right []afs.SymlinkInfo) {
	i, j := 0, 0
	for i < len(left) || j < len(right) {
		switch {
		case j >= len(right) || (i < len(left) && left[i].Name < right[j].Name):
			attrs := hierarchy.SymlinkAttributes{ModTime: left[i].ModTime, Target: left[i].Target}
			pair := container.NewSymlink(m.ids, hierarchy.Left, left[i].Name, attrs, hierarchy.SymlinkLeftOnly)
			pair.Active = true
			i++
		case i >= len(left) || left[i].Name > right[j].Name:
			attrs := hierarchy.SymlinkAttributes{ModTime: right[j].ModTime, Target: right[j].Target}
			pair := container.NewSymlink(m.ids, hierarchy.Right, right[j].Name, attrs, hierarchy.SymlinkRightOnly)
			pair.Active = true
			j++
		default:
			leftAttrs := hierarchy.SymlinkAttributes{ModTime: left[i].ModTime, Target: left[i].Target}
			rightAttrs := hierarchy.SymlinkAttributes{ModTime: right[j].ModTime, Target: right[j].Target}
			pair := container.NewSymlink(m.ids, hierarchy.Left, left[i].Name, leftAttrs, hierarchy.SymlinkEqual)
			pair.SetSide(hierarchy.Right, right[j].Name, rightAttrs)
			pair.Category = m.categorizeSymlink(leftAttrs, rightAttrs)
			pair.Active = true
			i++
			j++
		}
	}
}

func (m *merger) categorizeSymlink(left, right hierarchy.SymlinkAttributes) hierarchy.SymlinkCategory {
	if left.Target != right.Target {
		return hierarchy.SymlinkDifferent
	}
	switch CompareFileTimeWithLimit(left.ModTime, right.ModTime, m.opts.TimeTolerance, m.now, m.opts.FutureTimestampLimit) {
	case TimeEqual:
		return hierarchy.SymlinkEqual
	case TimeLeftNewer:
		return hierarchy.SymlinkLeftNewer
	case TimeRightNewer:
		return hierarchy.SymlinkRightNewer
	default:
		return hierarchy.SymlinkConflict
	}
}

func (m *merger) mergeFolders(container *hierarchy.Container, relPath afs.RelativePath, left, right []folderNode) {
	i, j := 0, 0
	for i < len(left) || j < len(right) {
		switch {
		case j >= len(right) || (i < len(left) && left[i].info.Name < right[j].info.Name):
			m.emitFolder(container, relPath, hierarchy.Left, left[i])
			i++
		case i >= len(left) || left[i].info.Name > right[j].info.Name:
			m.emitFolder(container, relPath, hierarchy.Right, right[j])
			j++
		default:
			category := hierarchy.FolderEqual
			pair := container.NewFolder(m.ids, hierarchy.Left, left[i].info.Name, category)
			pair.SetSide(hierarchy.Right, right[j].info.Name)
			pair.Active = !left[i].excluded && !right[j].excluded
			childPath := relPath.Join(left[i].info.Name)
			m.mergeLevel(&pair.Children, childPath, left[i].children, right[j].children)
			i++
			j++
		}
	}
}

func (m *merger) emitFolder(container *hierarchy.Container, relPath afs.RelativePath, side hierarchy.Side, fn folderNode) {
	category := hierarchy.FolderLeftOnly
	if side == hierarchy.Right {
		category = hierarchy.FolderRightOnly
	}
	pair := container.NewFolder(m.ids, side, fn.info.Name, category)
	pair.Active = !fn.excluded
	childPath := relPath.Join(fn.info.Name)
	var empty node
	if side == hierarchy.Left {
		m.mergeLevel(&pair.Children, childPath, fn.children, empty)
	} else {
		m.mergeLevel(&pair.Children, childPath, empty, fn.children)
	}
}
