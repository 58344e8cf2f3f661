package synchronize

import (
	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
)

// OpKind identifies the kind of filesystem action one Operation performs.
type OpKind int

const (
	OpCreateFolder OpKind = iota
	OpDeleteFolder
	OpCopyFile
	OpDeleteFile
	OpCreateSymlink
	OpDeleteSymlink
	// OpMoveFile performs a same-device rename in place of a copy+delete pair,
	// used when move detection has linked two one-sided file pairs (spec §8
	// scenario 6).
	OpMoveFile
)

func (k OpKind) String() string {
	switch k {
	case OpCreateFolder:
		return "create folder"
	case OpDeleteFolder:
		return "delete folder"
	case OpCopyFile:
		return "copy file"
	case OpDeleteFile:
		return "delete file"
	case OpCreateSymlink:
		return "create symlink"
	case OpDeleteSymlink:
		return "delete symlink"
	case OpMoveFile:
		return "move file"
	default:
		return "unknown"
	}
}

// Operation is one concrete, ordered step of a synchronization plan.
type Operation struct {
	Kind OpKind

	// RelPath is the item's path relative to the base folder pair, for
	// diagnostics.
	RelPath string

	// From is the source item, valid for OpCopyFile, OpCreateSymlink (whose
	// From.Rel contributes nothing; see SymlinkTarget) and OpMoveFile.
	From afs.Path
	// To is the destination or the item to remove.
	To afs.Path

	// TargetExists reports whether an item already occupies To, meaning the
	// deletion policy must dispose of it before the operation proceeds.
	TargetExists bool

	// SymlinkTarget is the literal link target for OpCreateSymlink.
	SymlinkTarget string

	// Size is the source file's size in bytes, used for progress totals. It
	// is 0 for folders, symlinks, deletes, and moves (a rename carries no
	// byte cost).
	Size int64
}

// Conflict records an item the resolver could not automatically direct.
type Conflict struct {
	RelPath string
	Message string
}

// Plan is an ordered sequence of operations plus the unresolved conflicts
// found while building it, ready for Statistics and the executor.
type Plan struct {
	Operations   []Operation
	Conflicts    []Conflict
	TotalObjects int64
	TotalBytes   int64
}

// named is satisfied by every hierarchy pair type; it lets buildPathIndex
// treat files, symlinks, and folders uniformly.
type named interface {
	Name(hierarchy.Side) string
}

func ownName(n named) string {
	if left := n.Name(hierarchy.Left); left != "" {
		return left
	}
	return n.Name(hierarchy.Right)
}

// Build walks a resolved, filtered base folder pair and produces an ordered
// plan: folder creates top-down, files and symlinks once their parent
// exists, folder deletes bottom-up, all derived from a single depth-first
// walk whose pre-order emits creates and whose post-order emits deletes.
func Build(base *hierarchy.BaseFolderPair) *Plan {
	index := map[hierarchy.ObjectID]afs.RelativePath{}
	buildPathIndex(&base.Root, "", index)

	p := &Plan{}
	handledMoves := map[hierarchy.ObjectID]bool{}
	walkPlanLevel(&base.Root, base, index, handledMoves, p)
	return p
}

func buildPathIndex(c *hierarchy.Container, parentRel afs.RelativePath, index map[hierarchy.ObjectID]afs.RelativePath) {
	for _, f := range c.Files {
		index[f.ID()] = parentRel.Join(ownName(f))
	}
	for _, s := range c.Symlinks {
		index[s.ID()] = parentRel.Join(ownName(s))
	}
	for _, d := range c.Folders {
		rel := parentRel.Join(ownName(d))
		index[d.ID()] = rel
		buildPathIndex(&d.Children, rel, index)
	}
}

func pathOf(index map[hierarchy.ObjectID]afs.RelativePath, id hierarchy.ObjectID) afs.RelativePath {
	return index[id]
}

func walkPlanLevel(c *hierarchy.Container, base *hierarchy.BaseFolderPair, index map[hierarchy.ObjectID]afs.RelativePath, handled map[hierarchy.ObjectID]bool, p *Plan) {
	// Pre-order: folder creates.
	for _, d := range c.Folders {
		if !d.Active {
			continue
		}
		emitFolderOp(d, base, index, p, true)
	}

	for _, f := range c.Files {
		if !f.Active {
			continue
		}
		emitFileOp(f, base, index, handled, p)
	}

	for _, s := range c.Symlinks {
		if !s.Active {
			continue
		}
		emitSymlinkOp(s, base, index, p)
	}

	for _, d := range c.Folders {
		if d.Active {
			walkPlanLevel(&d.Children, base, index, handled, p)
		}
	}

	// Post-order: folder deletes, so a folder's contents are already gone by
	// the time the folder itself is removed.
	for _, d := range c.Folders {
		if !d.Active {
			continue
		}
		emitFolderOp(d, base, index, p, false)
	}
}

func emitFolderOp(d *hierarchy.FolderPair, base *hierarchy.BaseFolderPair, index map[hierarchy.ObjectID]afs.RelativePath, p *Plan, preOrder bool) {
	if d.Dir.Kind != hierarchy.DirectionLeftToRight && d.Dir.Kind != hierarchy.DirectionRightToLeft {
		if d.Dir.Kind == hierarchy.DirectionConflict && preOrder {
			p.Conflicts = append(p.Conflicts, Conflict{RelPath: string(pathOf(index, d.ID())), Message: d.Dir.Message})
		}
		return
	}
	fromSide, _ := d.Dir.FromSide()
	toSide, _ := d.Dir.ToSide()
	fromPresent, toPresent := d.Present(fromSide), d.Present(toSide)
	rel := pathOf(index, d.ID())

	if preOrder && fromPresent && !toPresent {
		p.Operations = append(p.Operations, Operation{
			Kind:    OpCreateFolder,
			RelPath: string(rel),
			To:      afs.Path{Device: base.Paths[toSide].Device, Rel: rel},
		})
		p.TotalObjects++
	}
	if !preOrder && !fromPresent && toPresent {
		p.Operations = append(p.Operations, Operation{
			Kind:    OpDeleteFolder,
			RelPath: string(rel),
			To:      afs.Path{Device: base.Paths[toSide].Device, Rel: rel},
		})
		p.TotalObjects++
	}
}

func emitSymlinkOp(s *hierarchy.SymlinkPair, base *hierarchy.BaseFolderPair, index map[hierarchy.ObjectID]afs.RelativePath, p *Plan) {
	rel := pathOf(index, s.ID())
	if s.Dir.Kind == hierarchy.DirectionConflict {
		p.Conflicts = append(p.Conflicts, Conflict{RelPath: string(rel), Message: s.Dir.Message})
		return
	}
	if s.Dir.Kind != hierarchy.DirectionLeftToRight && s.Dir.Kind != hierarchy.DirectionRightToLeft {
		return
	}
	fromSide, _ := s.Dir.FromSide()
	toSide, _ := s.Dir.ToSide()
	fromPresent, toPresent := s.Present(fromSide), s.Present(toSide)
	toPath := afs.Path{Device: base.Paths[toSide].Device, Rel: rel}

	switch {
	case fromPresent && !toPresent:
		p.Operations = append(p.Operations, Operation{
			Kind:          OpCreateSymlink,
			RelPath:       string(rel),
			To:            toPath,
			SymlinkTarget: s.Attributes(fromSide).Target,
		})
		p.TotalObjects++
	case !fromPresent && toPresent:
		p.Operations = append(p.Operations, Operation{Kind: OpDeleteSymlink, RelPath: string(rel), To: toPath})
		p.TotalObjects++
	case fromPresent && toPresent:
		p.Operations = append(p.Operations, Operation{
			Kind:          OpCreateSymlink,
			RelPath:       string(rel),
			To:            toPath,
			SymlinkTarget: s.Attributes(fromSide).Target,
			TargetExists:  true,
		})
		p.TotalObjects++
	}
}

func emitFileOp(f *hierarchy.FilePair, base *hierarchy.BaseFolderPair, index map[hierarchy.ObjectID]afs.RelativePath, handled map[hierarchy.ObjectID]bool, p *Plan) {
	rel := pathOf(index, f.ID())
	if f.Dir.Kind == hierarchy.DirectionConflict {
		p.Conflicts = append(p.Conflicts, Conflict{RelPath: string(rel), Message: f.Dir.Message})
		return
	}
	if f.Dir.Kind != hierarchy.DirectionLeftToRight && f.Dir.Kind != hierarchy.DirectionRightToLeft {
		return
	}

	if f.MovedPeer != nil && !handled[f.ID()] {
		if op, ok := moveOperation(f, f.MovedPeer, base, index); ok {
			handled[f.ID()] = true
			handled[f.MovedPeer.ID()] = true
			p.Operations = append(p.Operations, op)
			p.TotalObjects++
			return
		}
	}
	if handled[f.ID()] {
		return
	}

	fromSide, _ := f.Dir.FromSide()
	toSide, _ := f.Dir.ToSide()
	fromPresent, toPresent := f.Present(fromSide), f.Present(toSide)
	fromPath := afs.Path{Device: base.Paths[fromSide].Device, Rel: rel}
	toPath := afs.Path{Device: base.Paths[toSide].Device, Rel: rel}

	switch {
	case fromPresent && !toPresent:
		p.Operations = append(p.Operations, Operation{
			Kind: OpCopyFile, RelPath: string(rel), From: fromPath, To: toPath,
			Size: f.Attributes(fromSide).Size,
		})
		p.TotalObjects++
		p.TotalBytes += f.Attributes(fromSide).Size
	case !fromPresent && toPresent:
		p.Operations = append(p.Operations, Operation{Kind: OpDeleteFile, RelPath: string(rel), To: toPath})
		p.TotalObjects++
	case fromPresent && toPresent:
		p.Operations = append(p.Operations, Operation{
			Kind: OpCopyFile, RelPath: string(rel), From: fromPath, To: toPath,
			Size: f.Attributes(fromSide).Size, TargetExists: true,
		})
		p.TotalObjects++
		p.TotalBytes += f.Attributes(fromSide).Size
	}
}

// moveOperation builds a single same-device rename for a pair of file pairs
// move detection linked, when both halves are active and their independently
// resolved directions agree on which side is the source of truth. It reports
// ok=false otherwise (e.g. the filter excluded one half, or a custom table
// chose to undo the rename on one half), in which case the caller falls back
// to treating each active half as an ordinary create/delete.
func moveOperation(a, b *hierarchy.FilePair, base *hierarchy.BaseFolderPair, index map[hierarchy.ObjectID]afs.RelativePath) (Operation, bool) {
	if !a.Active || !b.Active {
		return Operation{}, false
	}
	if a.Dir.Kind != b.Dir.Kind {
		return Operation{}, false
	}
	if a.Dir.Kind != hierarchy.DirectionLeftToRight && a.Dir.Kind != hierarchy.DirectionRightToLeft {
		return Operation{}, false
	}
	fromSide, _ := a.Dir.FromSide()
	toSide, _ := a.Dir.ToSide()

	var newNamePair, oldNamePair *hierarchy.FilePair
	switch {
	case a.Present(fromSide) && b.Present(toSide):
		newNamePair, oldNamePair = a, b
	case b.Present(fromSide) && a.Present(toSide):
		newNamePair, oldNamePair = b, a
	default:
		return Operation{}, false
	}

	newRel := pathOf(index, newNamePair.ID())
	oldRel := pathOf(index, oldNamePair.ID())
	device := base.Paths[toSide].Device

	return Operation{
		Kind:    OpMoveFile,
		RelPath: string(newRel),
		From:    afs.Path{Device: device, Rel: oldRel},
		To:      afs.Path{Device: device, Rel: newRel},
	}, true
}
