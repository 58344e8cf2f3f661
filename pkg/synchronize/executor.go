package synchronize

import (
	"context"

	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
	"github.com/freefilesync/ffsync/pkg/logging"
)

// Executor applies one base folder pair's Plan against both AFS sides,
// running the spec §4.I state machine (SCANNING/COMPARING_CONTENT are the
// caller's concern, upstream of this package; Executor begins at
// SYNCHRONIZING) with cooperative pause/abort, per-item retry, and
// versioning/recycling wired through Deleter.
type Executor struct {
	Base     *hierarchy.BaseFolderPair
	Deleter  *Deleter
	Control  *Control
	Callback Callback
	Stats    *Statistics
	Logger   *logging.Logger

	phase Phase
}

// Phase returns the executor's current phase.
func (e *Executor) Phase() Phase { return e.phase }

// Execute applies every operation in plan in order, transitioning through
// PhaseSynchronizing and finishing at PhaseFinishedOK, PhaseFinishedWarn, or
// PhaseAborted. It returns the terminal phase and, for ABORTED, the error
// that caused it.
func (e *Executor) Execute(ctx context.Context, plan *Plan) (Phase, error) {
	e.setPhase(PhaseSynchronizing)

	warned := len(plan.Conflicts) > 0
	for _, c := range plan.Conflicts {
		e.Callback.Warn("conflict at " + c.RelPath + ": " + c.Message)
	}

	for _, op := range plan.Operations {
		if err := e.Control.checkSuspension(ctx); err != nil {
			phase := PhaseAborted
			e.setPhase(phase)
			return phase, err
		}

		if err := e.applyWithRetry(op); err != nil {
			phase := PhaseAborted
			e.setPhase(phase)
			return phase, err
		}

		e.Stats.Update(1, op.Size)
	}

	if warned {
		e.setPhase(PhaseFinishedWarn)
		return PhaseFinishedWarn, nil
	}
	e.setPhase(PhaseFinishedOK)
	return PhaseFinishedOK, nil
}

// applyWithRetry performs op, consulting the Callback's HandleError policy
// on failure: ErrorIgnore treats the item as skipped (a warning is logged),
// ErrorRetry repeats the same operation, and ErrorAbort propagates the
// error to unwind the run, per spec §7.
func (e *Executor) applyWithRetry(op Operation) error {
	for {
		err := e.apply(op)
		if err == nil {
			return nil
		}

		switch e.Callback.HandleError(op.Kind.String()+" "+op.RelPath, err) {
		case ErrorIgnore:
			e.Callback.Warn("skipped " + op.RelPath + ": " + err.Error())
			return nil
		case ErrorRetry:
			continue
		default:
			return err
		}
	}
}

func (e *Executor) apply(op Operation) error {
	switch op.Kind {
	case OpCreateFolder:
		return afs.CreateFolderIfMissingRecursive(op.To.Device, op.To.Rel)

	case OpDeleteFolder:
		return e.Deleter.DeleteFolder(e.sideOf(op.To.Device), op.To.Device, e.rootOf(op.To.Device), op.To.Rel)

	case OpCreateSymlink:
		if op.TargetExists {
			if err := e.disposeExisting(op); err != nil {
				return err
			}
		}
		if err := afs.CreateFolderIfMissingRecursive(op.To.Device, parentOf(op.To.Rel)); err != nil {
			return err
		}
		return op.To.Device.CreateSymlink(op.To.Rel, op.SymlinkTarget)

	case OpDeleteSymlink:
		return e.Deleter.DeleteSymlink(e.sideOf(op.To.Device), op.To.Device, e.rootOf(op.To.Device), op.To.Rel)

	case OpCopyFile:
		if err := afs.CreateFolderIfMissingRecursive(op.To.Device, parentOf(op.To.Rel)); err != nil {
			return err
		}
		var onDelete func() error
		if op.TargetExists {
			onDelete = func() error { return e.disposeExisting(op) }
		}
		progress := func(delta int64) { e.Stats.Update(0, delta) }
		return afs.CopyFileTransactional(op.From, op.To, true, true, onDelete, progress, e.Logger)

	case OpDeleteFile:
		return e.Deleter.DeleteFile(e.sideOf(op.To.Device), op.To.Device, e.rootOf(op.To.Device), op.To.Rel)

	case OpMoveFile:
		if err := afs.CreateFolderIfMissingRecursive(op.To.Device, parentOf(op.To.Rel)); err != nil {
			return err
		}
		return op.From.Device.RenameItem(op.From.Rel, op.To.Device, op.To.Rel)

	default:
		return nil
	}
}

// disposeExisting hands an operation's clobbered target to the configured
// deletion policy before the new content is written in its place.
func (e *Executor) disposeExisting(op Operation) error {
	side := e.sideOf(op.To.Device)
	root := e.rootOf(op.To.Device)
	switch op.Kind {
	case OpCreateSymlink:
		return e.Deleter.DeleteSymlink(side, op.To.Device, root, op.To.Rel)
	default:
		return e.Deleter.DeleteFile(side, op.To.Device, root, op.To.Rel)
	}
}

func (e *Executor) sideOf(device afs.Device) hierarchy.Side {
	if afs.SameDevice(device, e.Base.Paths[hierarchy.Left].Device) {
		return hierarchy.Left
	}
	return hierarchy.Right
}

func (e *Executor) rootOf(device afs.Device) afs.RelativePath {
	return e.Base.Paths[e.sideOf(device)].Rel
}

func parentOf(p afs.RelativePath) afs.RelativePath {
	parent, ok := p.Parent()
	if !ok {
		return ""
	}
	return parent
}

func (e *Executor) setPhase(p Phase) {
	e.phase = p
	e.Control.PhaseTracker().NotifyOfChange()
}
