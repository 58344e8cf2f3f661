package lock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/logging"
)

// readAll reads the entire contents of the lock file at path; the lock file
// is tiny (16-byte UUID plus a handful of heartbeat bytes), so this is cheap
// and avoids requiring a dedicated stat primitive on AFS.
func readAll(device afs.Device, path afs.RelativePath) ([]byte, error) {
	in, err := device.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	var result []byte
	buffer := make([]byte, 4096)
	for {
		n, err := in.Read(buffer)
		result = append(result, buffer[:n]...)
		if err != nil {
			break
		}
	}
	return result, nil
}

// lockFileSize returns the current size of the lock file.
func lockFileSize(device afs.Device, path afs.RelativePath) (int64, error) {
	content, err := readAll(device, path)
	if err != nil {
		return 0, err
	}
	return int64(len(content)), nil
}

// readLockID reads the 16-byte UUID recorded at the head of the lock file.
func readLockID(device afs.Device, path afs.RelativePath) (uuid.UUID, error) {
	in, err := device.OpenInput(path)
	if err != nil {
		return uuid.UUID{}, err
	}
	defer in.Close()

	var idBytes [16]byte
	if _, err := readFull(in, idBytes[:]); err != nil {
		return uuid.UUID{}, afs.NewFileError(afs.ErrorKindOther, "unable to read lock identifier", err)
	}
	return uuid.FromBytes(idBytes[:])
}

func readFull(r interface{ Read([]byte) (int, error) }, buffer []byte) (int, error) {
	var total int
	for total < len(buffer) {
		n, err := r.Read(buffer[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// waitForRelease waits for the lock at path to be released, polling its
// size for a heartbeat and reclaiming it through a deletion lock if it
// appears abandoned for DetectExitusInterval.
func waitForRelease(ctx context.Context, device afs.Device, path afs.RelativePath, logger *logging.Logger) error {
	lockID, err := readLockID(device, path)
	if err != nil {
		if afs.IsKind(err, afs.ErrorKindNotExisting) {
			// The lock disappeared between our failed creation attempt and
			// now; the caller will simply retry acquisition.
			return nil
		}
		return err
	}

	var previousSize int64 = -1
	silentSince := time.Now()

	ticker := time.NewTicker(PollLifeSignInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		size, err := lockFileSize(device, path)
		if err != nil {
			if afs.IsKind(err, afs.ErrorKindNotExisting) {
				return nil
			}
			return err
		}

		now := time.Now()
		if size != previousSize {
			previousSize = size
			silentSince = now
			continue
		}

		if now.Sub(silentSince) <= DetectExitusInterval {
			continue
		}

		if err := reclaimAbandoned(ctx, device, path, lockID, previousSize, logger); err != nil {
			return err
		}
		return nil
	}
}

// reclaimAbandoned acquires the deletion lock for path, re-verifies the
// target lock's identity and size to rule out a race with a legitimate new
// owner or a belated heartbeat, then deletes it.
func reclaimAbandoned(ctx context.Context, device afs.Device, path afs.RelativePath, expectedID uuid.UUID, expectedSize int64, logger *logging.Logger) error {
	parent, _ := path.Parent()
	deletionPath := parent.Join(DeletionLockName(path.Base()))

	deletionLock, err := acquireAt(ctx, device, deletionPath, logger)
	if err != nil {
		return err
	}
	defer deletionLock.Release()

	currentID, err := readLockID(device, path)
	if err != nil {
		if afs.IsKind(err, afs.ErrorKindNotExisting) {
			return nil
		}
		return err
	}
	if currentID != expectedID {
		// Another process replaced the lock; the wait for the old lock is
		// over regardless.
		return nil
	}

	currentSize, err := lockFileSize(device, path)
	if err != nil {
		return err
	}
	if currentSize != expectedSize {
		// Belated heartbeat; the owner is still alive.
		return nil
	}

	if err := device.RemoveFile(path); err != nil && !afs.IsKind(err, afs.ErrorKindNotExisting) {
		return err
	}
	return nil
}
