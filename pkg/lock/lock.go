// Package lock implements the inter-process directory lock protocol: one
// sync lock file per participating base folder, with a leading UUID, a
// periodic heartbeat, and abandoned-lock reclamation via a secondary
// deletion lock. See dir_lock.cpp in the original implementation for the
// protocol this package reproduces.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/logging"
)

const (
	// LockFileName is the name of the sync lock file within a base folder.
	LockFileName = "sync.ffs_lock"
	// deletionLockPrefix is prepended to the lock's base name to form the
	// name of its deletion lock, used to coordinate abandoned-lock
	// reclamation between multiple waiters.
	deletionLockPrefix = "Del."

	// EmitLifeSignInterval is how often the lock owner appends a heartbeat
	// byte to its lock file.
	EmitLifeSignInterval = 5 * time.Second
	// PollLifeSignInterval is how often a waiter polls the lock file's size
	// for a heartbeat.
	PollLifeSignInterval = 6 * time.Second
	// DetectExitusInterval is how long a lock's size must remain unchanged
	// before a waiter considers it abandoned.
	DetectExitusInterval = 30 * time.Second
)

// DeletionLockName derives the name of the deletion lock used to coordinate
// abandoned-lock reclamation for the lock file named name.
func DeletionLockName(name string) string {
	return deletionLockPrefix + name
}

// registry deduplicates in-process lock ownership by UUID: multiple logical
// lock requests for the same underlying lock (identified by the UUID
// written inside it, not merely by path, since the same physical lock may
// be reachable by distinct paths) share ownership via reference counting.
var registry = struct {
	sync.Mutex
	holders map[uuid.UUID]*Handle
}{holders: make(map[uuid.UUID]*Handle)}

// Handle represents ownership of an acquired lock, shared (via reference
// counting) by every in-process caller that acquired the same underlying
// lock.
type Handle struct {
	device   afs.Device
	path     afs.RelativePath
	id       uuid.UUID
	logger   *logging.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	refCount int
}

// Acquire acquires the sync lock for the base folder identified by device
// and dir (the base folder's path; the lock file itself is dir/LockFileName).
// If the lock is already held by another process, Acquire waits, polling for
// a heartbeat and reclaiming the lock if it appears abandoned.
//
// Acquisition failures are surfaced to the caller as errors; callers should
// treat them as warnings (skip the base folder pair) rather than fatal,
// matching the source engine's behavior.
func Acquire(ctx context.Context, device afs.Device, dir afs.RelativePath, logger *logging.Logger) (*Handle, error) {
	return acquireAt(ctx, device, dir.Join(LockFileName), logger)
}

// acquireAt acquires (waiting and reclaiming as needed) the lock file at the
// exact given path. Both the sync lock and its deletion lock are acquired
// through this same routine; they differ only in file name.
func acquireAt(ctx context.Context, device afs.Device, lockPath afs.RelativePath, logger *logging.Logger) (*Handle, error) {
	for {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, errors.Wrap(err, "unable to generate lock identifier")
		}

		created, err := createExclusive(device, lockPath, id)
		if err != nil {
			return nil, err
		}
		if created {
			registry.Lock()
			if existing, ok := registry.holders[id]; ok {
				existing.refCount++
				registry.Unlock()
				return existing, nil
			}
			handleCtx, cancel := context.WithCancel(context.Background())
			handle := &Handle{
				device:   device,
				path:     lockPath,
				id:       id,
				logger:   logger,
				cancel:   cancel,
				done:     make(chan struct{}),
				refCount: 1,
			}
			registry.holders[id] = handle
			registry.Unlock()
			go handle.heartbeat(handleCtx)
			return handle, nil
		}

		// The lock already exists. If this process already holds it (its
		// identifier is in the registry), share that ownership.
		if existingID, err := readLockID(device, lockPath); err == nil {
			registry.Lock()
			if existing, ok := registry.holders[existingID]; ok {
				existing.refCount++
				registry.Unlock()
				return existing, nil
			}
			registry.Unlock()
		}

		// Otherwise wait for it to be released or reclaimed, then loop around
		// to retry acquisition.
		if err := waitForRelease(ctx, device, lockPath, logger); err != nil {
			return nil, err
		}
	}
}

// createExclusive attempts to create the lock file exclusively and, on
// success, writes the fresh UUID at its head. It returns (false, nil) if the
// file already exists (the ordinary contention case).
func createExclusive(device afs.Device, lockPath afs.RelativePath, id uuid.UUID) (bool, error) {
	if _, err := device.ItemType(lockPath); err == nil {
		return false, nil
	} else if !afs.IsKind(err, afs.ErrorKindNotExisting) {
		return false, err
	}

	out, err := device.OpenOutput(lockPath, nil, nil)
	if err != nil {
		if afs.IsKind(err, afs.ErrorKindTargetExisting) {
			return false, nil
		}
		return false, err
	}
	defer out.Close()

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return false, errors.Wrap(err, "unable to marshal lock identifier")
	}
	if _, err := out.Write(idBytes); err != nil {
		return false, afs.NewFileError(afs.ErrorKindOther, "unable to write lock identifier", err)
	}
	return true, nil
}

// heartbeat runs for the lifetime of a held lock, appending one byte to the
// lock file every EmitLifeSignInterval. It is interruptible via ctx, which
// is cancelled when the lock's reference count reaches zero.
func (h *Handle) heartbeat(ctx context.Context) {
	defer close(h.done)
	ticker := time.NewTicker(EmitLifeSignInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.emitLifeSign()
		}
	}
}

// emitLifeSign appends a single heartbeat byte to the lock file. AFS's
// OpenOutput has no append mode (every backend truncates on open), so this
// reads back the current content and rewrites it plus one more byte; the
// lock file is tiny (a UUID plus a handful of heartbeat bytes), so the
// round-trip cost is negligible. Failures are logged but never fatal: a
// missed heartbeat just makes the lock look briefly quieter to waiters, who
// re-verify identity before ever reclaiming it.
func (h *Handle) emitLifeSign() {
	current, err := readAll(h.device, h.path)
	if err != nil {
		h.logger.Warnf("unable to read lock file for heartbeat: %v", err)
		return
	}

	out, err := h.device.OpenOutput(h.path, nil, nil)
	if err != nil {
		h.logger.Warnf("unable to emit lock heartbeat: %v", err)
		return
	}
	defer out.Close()
	if _, err := out.Write(append(current, ' ')); err != nil {
		h.logger.Warnf("unable to write lock heartbeat byte: %v", err)
	}
}

// Release decrements the handle's reference count, and once it reaches zero,
// stops the heartbeat and deletes the lock file.
func (h *Handle) Release() error {
	registry.Lock()
	h.refCount--
	last := h.refCount == 0
	if last {
		delete(registry.holders, h.id)
	}
	registry.Unlock()

	if !last {
		return nil
	}

	h.cancel()
	<-h.done

	if err := h.device.RemoveFile(h.path); err != nil && !afs.IsKind(err, afs.ErrorKindNotExisting) {
		return errors.Wrap(err, "unable to remove lock file")
	}
	return nil
}
