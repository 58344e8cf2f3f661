// Package resolve implements the direction resolver (spec §4.G): it turns
// the categorized pairs a comparison run produced into per-item sync
// directions, using the last-in-sync database when available (two-way mode)
// or a pure category-to-direction lookup table otherwise (mirror, update,
// custom one-way modes). It also performs move detection and the orphaned
// ".ffs_tmp" sweep, and applies the configured filter to set each pair's
// active flag. Grounded on the recursive three-way reconciliation walk in
// the teacher's pkg/synchronization/core/reconcile.go, adapted from a
// three-way (ancestor/alpha/beta) merge to FreeFileSync's two-way
// database-driven model.
package resolve

import (
	"github.com/freefilesync/ffsync/pkg/database"
	"github.com/freefilesync/ffsync/pkg/filter"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
	"github.com/freefilesync/ffsync/pkg/logging"
)

// Mode selects the direction-resolution strategy for a base folder pair.
type Mode int

const (
	// ModeTwoWay resolves directions from the last-in-sync database,
	// falling back to ModeDefault when no usable database is available.
	ModeTwoWay Mode = iota
	// ModeMirror treats the right side as an unconditional clone of the
	// left: every non-equal item is propagated left to right.
	ModeMirror
	// ModeUpdate propagates left to right but never deletes or overwrites
	// a newer item on the right.
	ModeUpdate
	// ModeCustom applies a caller-supplied per-category direction table.
	ModeCustom
)

// CustomTable is a per-category direction lookup used by ModeCustom. Nil
// maps are treated as empty (every category resolves to DirectionNone).
type CustomTable struct {
	File    map[hierarchy.FileCategory]hierarchy.Direction
	Symlink map[hierarchy.SymlinkCategory]hierarchy.Direction
	Folder  map[hierarchy.FolderCategory]hierarchy.Direction
}

// Options configures a resolution run.
type Options struct {
	Mode Mode
	// Custom supplies the per-category table when Mode == ModeCustom.
	Custom CustomTable
	// TimeTolerance is the modification-time tolerance (in seconds) used
	// both for re-deriving "has this side changed since last sync" and for
	// move-detection candidate matching. It should match the value used by
	// the compare engine that produced the categorization being resolved.
	TimeTolerance int64
	// Filter is applied after direction assignment to set each pair's
	// Active flag.
	Filter filter.Filter
	Logger *logging.Logger
}

// Result summarizes the outcome of resolving one base folder pair, primarily
// so callers can decide whether to persist a warning.
type Result struct {
	// UsedDatabase reports whether two-way resolution actually found and
	// used a last-in-sync database, as opposed to falling back to the
	// default table.
	UsedDatabase bool
	// FallbackReason explains why the default table was used instead of
	// the database, if UsedDatabase is false and Mode == ModeTwoWay.
	FallbackReason string
	// MovesDetected counts the file pairs linked as renames.
	MovesDetected int
}

// Base resolves directions for every pair in base's hierarchy, then performs
// move detection, the temp-file sweep, and filter application. snapshot is
// the last-in-sync database content for this base folder pair (nil if
// unavailable), used only when opts.Mode == ModeTwoWay.
func Base(base *hierarchy.BaseFolderPair, snapshot *database.DirInformation, opts Options) Result {
	var result Result

	resolver := &resolver{opts: opts}

	switch opts.Mode {
	case ModeTwoWay:
		if snapshot != nil {
			resolver.snapshot = snapshot
			result.UsedDatabase = true
			resolver.resolveTwoWayLevel(&base.Root, snapshot.Files, snapshot.Symlinks, snapshot.Folders)
		} else {
			result.FallbackReason = "no last-in-sync database available"
			resolver.resolveDefaultLevel(&base.Root)
		}
	case ModeMirror:
		resolver.resolveTableLevel(&base.Root, mirrorTable)
	case ModeUpdate:
		resolver.resolveTableLevel(&base.Root, updateTable)
	case ModeCustom:
		resolver.resolveTableLevel(&base.Root, categoryTable{
			file:    opts.Custom.File,
			symlink: opts.Custom.Symlink,
			folder:  opts.Custom.Folder,
		})
	}

	result.MovesDetected = detectMoves(&base.Root, snapshot, opts.TimeTolerance)
	sweepTempFiles(&base.Root)
	applyFilter(&base.Root, opts.Filter)

	return result
}

type resolver struct {
	opts     Options
	snapshot *database.DirInformation
}

// resolveDefaultLevel applies the default (no-database) lookup table
// recursively, used both as the ModeTwoWay fallback and available directly
// for callers that want the conservative "never delete" first-run policy.
func (r *resolver) resolveDefaultLevel(c *hierarchy.Container) {
	r.resolveTableLevel(c, defaultTable)
}

func (r *resolver) resolveTableLevel(c *hierarchy.Container, table categoryTable) {
	for _, f := range c.Files {
		if f.Category != hierarchy.FileEqual {
			f.Dir = table.forFile(f.Category)
		}
	}
	for _, s := range c.Symlinks {
		if s.Category != hierarchy.SymlinkEqual {
			s.Dir = table.forSymlink(s.Category)
		}
	}
	for _, d := range c.Folders {
		if d.Category != hierarchy.FolderEqual {
			d.Dir = table.forFolder(d.Category)
		}
		r.resolveTableLevel(&d.Children, table)
	}
}
