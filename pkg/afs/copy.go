package afs

import (
	"fmt"

	"github.com/freefilesync/ffsync/pkg/logging"
	"github.com/freefilesync/ffsync/pkg/must"
	"github.com/freefilesync/ffsync/pkg/random"
)

// TempFileSuffix is the suffix applied to the temporary file used by a
// transactional copy before it is renamed into place.
const TempFileSuffix = ".ffs_tmp"

// maxTempNameRetries bounds how many suffixed temporary names
// copyFileTransactional will try before giving up with ErrorKindTargetExisting.
const maxTempNameRetries = 10

// CopyFileTransactional copies src to tgt. When transactional is true, the
// copy is written to a temporary name first (tgt+TempFileSuffix, retried
// under up to maxTempNameRetries randomly tagged names on conflict), then
// onDeleteTarget is invoked (if non-nil) to dispose of any existing target,
// then the temporary file is renamed atomically into place; on any failure
// the temporary file is removed. File data is always copied as a stream from
// the source device to the target device, also when both share a device; no
// native same-device copy is used.
//
// A caveat inherited from the underlying platform, not something this
// function tries to correct: on FAT-family filesystems, renaming a temporary
// file over an existing target reuses the existing file's creation time
// (FAT tunneling).
func CopyFileTransactional(
	src Path,
	tgt Path,
	copyPermissions bool,
	transactional bool,
	onDeleteTarget func() error,
	progress ProgressFunc,
	logger *logging.Logger,
) error {
	if !transactional {
		return copyFileDirect(src, tgt, copyPermissions, progress, logger)
	}

	tempPath, err := reserveTempName(tgt, logger)
	if err != nil {
		return err
	}

	if err := copyFileDirect(src, tempPath, copyPermissions, progress, logger); err != nil {
		cleanupTemp(tgt.Device, tempPath.Rel, logger)
		return err
	}

	if onDeleteTarget != nil {
		if err := onDeleteTarget(); err != nil {
			cleanupTemp(tgt.Device, tempPath.Rel, logger)
			return err
		}
	}

	if err := tgt.Device.RenameItem(tempPath.Rel, tgt.Device, tgt.Rel); err != nil {
		cleanupTemp(tgt.Device, tempPath.Rel, logger)
		return err
	}

	return nil
}

// reserveTempName finds a temporary path derived from tgt that doesn't
// currently exist. The first attempt uses the plain TempFileSuffix; on
// collision, subsequent attempts append a short random hex tag rather than a
// sequential counter, so that two processes racing on the same collision
// don't keep landing on the same next candidate.
func reserveTempName(tgt Path, logger *logging.Logger) (Path, error) {
	candidate := Path{Device: tgt.Device, Rel: RelativePath(string(tgt.Rel) + TempFileSuffix)}
	if _, err := tgt.Device.ItemType(candidate.Rel); err != nil {
		if IsKind(err, ErrorKindNotExisting) {
			return candidate, nil
		}
		return Path{}, err
	}
	for i := 1; i <= maxTempNameRetries; i++ {
		tag, err := random.New(4)
		if err != nil {
			return Path{}, NewFileError(ErrorKindOther, "unable to generate temporary file tag", err)
		}
		candidate = Path{
			Device: tgt.Device,
			Rel:    RelativePath(fmt.Sprintf("%s_%x%s", tgt.Rel, tag, TempFileSuffix)),
		}
		if _, err := tgt.Device.ItemType(candidate.Rel); err != nil {
			if IsKind(err, ErrorKindNotExisting) {
				return candidate, nil
			}
			return Path{}, err
		}
		logger.Warnf("temporary file name %s collided, retrying", candidate.Rel)
	}
	return Path{}, NewFileError(ErrorKindTargetExisting, "unable to reserve temporary file name", nil)
}

// cleanupTemp removes a leftover temporary file, logging (but not failing
// on) any error encountered doing so.
func cleanupTemp(device Device, path RelativePath, logger *logging.Logger) {
	if err := device.RemoveFile(path); err != nil && !IsKind(err, ErrorKindNotExisting) {
		logger.Warnf("unable to remove temporary file %s: %v", path, err)
	}
}

// copyFileDirect performs a single, non-transactional file copy. When src
// and tgt share a device, backends are free to implement a same-device fast
// path (e.g. reflink/clone) by special-casing this in their OpenInput;
// otherwise this falls back to a stream copy, which cannot carry
// permissions across device types.
func copyFileDirect(src, tgt Path, copyPermissions bool, progress ProgressFunc, logger *logging.Logger) error {
	srcInfo, err := src.Device.Stat(src.Rel)
	if err != nil {
		return err
	}

	in, err := src.Device.OpenInput(src.Rel)
	if err != nil {
		return err
	}
	defer must.Close(in, logger)

	expectedSize, expectedMtime := srcInfo.Size, srcInfo.ModTime
	out, err := tgt.Device.OpenOutput(tgt.Rel, &expectedSize, &expectedMtime)
	if err != nil {
		return err
	}

	reader := NewCountingReader(in, progress)
	if _, err := StreamCopy(out, reader, 0); err != nil {
		must.Close(out, logger)
		return NewFileError(ErrorKindOther, "unable to stream copy", err)
	}

	if err := out.Finalize(); err != nil {
		must.Close(out, logger)
		return err
	}

	if err := out.Close(); err != nil {
		return NewFileError(ErrorKindOther, "unable to close output stream", err)
	}

	if copyPermissions {
		if !SameDevice(src.Device, tgt.Device) {
			return NewFileError(ErrorKindOther, "cannot carry permissions across device types", nil)
		}
		if copier, ok := tgt.Device.(PermissionCopier); ok {
			if err := copier.CopyPermissions(src.Rel, tgt.Rel); err != nil {
				return NewFileError(ErrorKindOther, "unable to copy permissions", err)
			}
		}
	}

	return nil
}

// CreateFolderIfMissingRecursive walks upward from p using PathStatus (which
// returns the deepest existing ancestor plus the missing tail), then creates
// each missing segment in order.
func CreateFolderIfMissingRecursive(device Device, p RelativePath) error {
	existing, missing, err := device.PathStatus(p)
	if err != nil {
		return err
	}
	current := existing
	for _, component := range missing {
		current = current.Join(component)
		if err := device.CreateFolder(current); err != nil {
			if !IsKind(err, ErrorKindTargetExisting) {
				return err
			}
		}
	}
	return nil
}

// RemoveFolderIfExistsRecursive traverses p, then deletes depth-first,
// invoking beforeFile/beforeFolder before each deletion. Deletion of a path
// that doesn't exist is not an error.
func RemoveFolderIfExistsRecursive(device Device, p RelativePath, beforeFile, beforeFolder func(RelativePath)) error {
	if _, err := device.ItemType(p); err != nil {
		if IsKind(err, ErrorKindNotExisting) {
			return nil
		}
		return err
	}

	collector := &removalCollector{device: device, beforeFile: beforeFile, beforeFolder: beforeFolder}
	if err := device.TraverseFolder(p, collector); err != nil {
		return err
	}

	// Delete files and symlinks first (order within a level doesn't matter),
	// then folders bottom-up (deepest first, since they were appended in
	// traversal/descent order).
	for _, f := range collector.files {
		if beforeFile != nil {
			beforeFile(f)
		}
		if err := device.RemoveFile(f); err != nil && !IsKind(err, ErrorKindNotExisting) {
			return err
		}
	}
	for _, s := range collector.symlinks {
		if err := device.RemoveSymlink(s); err != nil && !IsKind(err, ErrorKindNotExisting) {
			return err
		}
	}
	for i := len(collector.folders) - 1; i >= 0; i-- {
		folder := collector.folders[i]
		if beforeFolder != nil {
			beforeFolder(folder)
		}
		if err := device.RemoveFolder(folder); err != nil && !IsKind(err, ErrorKindNotExisting) {
			return err
		}
	}

	if beforeFolder != nil {
		beforeFolder(p)
	}
	return device.RemoveFolder(p)
}

// removalCollector is a TraversalSink that records every descendant path so
// that RemoveFolderIfExistsRecursive can delete them in the correct order
// after traversal completes.
type removalCollector struct {
	device       Device
	beforeFile   func(RelativePath)
	beforeFolder func(RelativePath)
	files        []RelativePath
	symlinks     []RelativePath
	folders      []RelativePath
}

func (c *removalCollector) File(parent RelativePath, info FileInfo) error {
	c.files = append(c.files, parent.Join(info.Name))
	return nil
}

func (c *removalCollector) Folder(parent RelativePath, info FolderInfo) (bool, error) {
	c.folders = append(c.folders, parent.Join(info.Name))
	return true, nil
}

func (c *removalCollector) Symlink(parent RelativePath, info SymlinkInfo) (SymlinkHandling, error) {
	c.symlinks = append(c.symlinks, parent.Join(info.Name))
	return SymlinkSkip, nil
}

func (c *removalCollector) HandleError(path RelativePath, err error) RecoverableAction {
	return RecoverableAbort
}
