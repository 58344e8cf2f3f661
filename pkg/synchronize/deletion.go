package synchronize

import (
	"path/filepath"

	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
	"github.com/freefilesync/ffsync/pkg/recycle"
	"github.com/freefilesync/ffsync/pkg/versioning"
)

// DeletionMode selects what happens to an item that the plan calls for
// removing or overwriting, per spec §4.I's per-side deletion policy.
type DeletionMode int

const (
	// DeletionPermanent removes the item outright.
	DeletionPermanent DeletionMode = iota
	// DeletionRecycle moves the item to the platform trash, falling back to
	// permanent delete (with a warning) when recycling is unavailable for
	// the item's base folder.
	DeletionRecycle
	// DeletionVersioning moves the item into a versioning directory instead
	// of removing it.
	DeletionVersioning
)

// DeletionPolicy is one side's configured disposal behavior.
type DeletionPolicy struct {
	Mode      DeletionMode
	Versioner *versioning.Versioner
	Recycler  recycle.Recycler
}

// Deleter disposes of superseded or removed items according to each side's
// DeletionPolicy, reporting to a Callback when a requested recycler turns
// out to be unavailable.
type Deleter struct {
	policies [2]DeletionPolicy
	callback Callback
	// warned records the base folders already reported as lacking a recycler.
	warned map[string]bool
}

// NewDeleter creates a Deleter for one base folder pair's two sides.
func NewDeleter(left, right DeletionPolicy, callback Callback) *Deleter {
	return &Deleter{policies: [2]DeletionPolicy{left, right}, callback: callback}
}

// DeleteFile disposes of a file at p on the given side's device.
func (d *Deleter) DeleteFile(side hierarchy.Side, device afs.Device, root afs.RelativePath, p afs.RelativePath) error {
	policy := d.policies[side]
	switch policy.Mode {
	case DeletionVersioning:
		return policy.Versioner.VersionFile(device, p)
	case DeletionRecycle:
		if d.tryRecycle(policy, device, root, p) {
			return nil
		}
		fallthrough
	default:
		return device.RemoveFile(p)
	}
}

// DeleteSymlink disposes of a symlink at p on the given side's device.
func (d *Deleter) DeleteSymlink(side hierarchy.Side, device afs.Device, root afs.RelativePath, p afs.RelativePath) error {
	policy := d.policies[side]
	switch policy.Mode {
	case DeletionVersioning:
		return policy.Versioner.VersionSymlink(device, p)
	case DeletionRecycle:
		if d.tryRecycle(policy, device, root, p) {
			return nil
		}
		fallthrough
	default:
		return device.RemoveSymlink(p)
	}
}

// DeleteFolder disposes of an entire folder subtree at p on the given side's
// device.
func (d *Deleter) DeleteFolder(side hierarchy.Side, device afs.Device, root afs.RelativePath, p afs.RelativePath) error {
	policy := d.policies[side]
	switch policy.Mode {
	case DeletionVersioning:
		return policy.Versioner.VersionFolder(device, p)
	case DeletionRecycle:
		if d.tryRecycle(policy, device, root, p) {
			return nil
		}
		fallthrough
	default:
		return afs.RemoveFolderIfExistsRecursive(device, p, nil, nil)
	}
}

// tryRecycle attempts to move a single item (file, symlink, or folder) into
// the platform trash.
// It reports false (leaving the caller to fall back to permanent deletion)
// whenever the device isn't native or the recycler isn't available for this
// base folder, warning via the Callback exactly once per base folder (the
// availability probe itself is cached by the recycler).
func (d *Deleter) tryRecycle(policy DeletionPolicy, device afs.Device, root, p afs.RelativePath) bool {
	absRoot, absPath, ok := nativeAbsPaths(device, root, p)
	if !ok || policy.Recycler == nil {
		return false
	}
	if !policy.Recycler.Available(absRoot) {
		if d.warned == nil {
			d.warned = make(map[string]bool)
		}
		if !d.warned[absRoot] {
			d.warned[absRoot] = true
			d.callback.Warn("recycle bin unavailable for " + absRoot + "; deleting permanently")
		}
		return false
	}
	if err := policy.Recycler.Recycle(absPath); err != nil {
		d.callback.Warn("failed to recycle " + absPath + ": " + err.Error())
		return false
	}
	return true
}

// nativeAbsPaths derives OS-native absolute paths for root and p when device
// is a native backend, the only kind the platform trash can act on.
func nativeAbsPaths(device afs.Device, root, p afs.RelativePath) (absRoot, absPath string, ok bool) {
	if device.Type() != afs.DeviceTypeNative {
		return "", "", false
	}
	absRoot = filepath.Join(device.Root(), filepath.FromSlash(string(root)))
	absPath = filepath.Join(device.Root(), filepath.FromSlash(string(p)))
	return absRoot, absPath, true
}
