//go:build !windows
// +build !windows

package native

import (
	"fmt"
	"os"
	"syscall"

	"github.com/freefilesync/ffsync/pkg/afs"
)

// platformCaseInsensitive reports the default case sensitivity for the
// native filesystem on this platform. POSIX filesystems are case-sensitive
// by default (HFS+/APFS case-insensitive configurations aren't probed here;
// FreeFileSync itself probes per-volume, which is a refinement left for the
// MTP/SFTP backends to add if needed).
func platformCaseInsensitive() bool {
	return false
}

// isCrossDeviceError checks whether an error returned by os.Rename is due to
// an attempted rename across devices.
func isCrossDeviceError(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	return ok && linkErr.Err == syscall.EXDEV
}

// FileID implements afs.Device.FileID using the inode number, which is
// stable for the lifetime of the file on POSIX filesystems.
func (d *Device) FileID(p afs.RelativePath) (afs.FileID, error) {
	info, err := os.Lstat(d.native(p))
	if err != nil {
		return "", wrap("unable to stat item for file id", err)
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", nil
	}
	return afs.FileID(fmt.Sprintf("%d:%d", stat.Dev, stat.Ino)), nil
}

// CopyPermissions implements afs.PermissionCopier by copying the POSIX mode
// bits directly; no ACL library is needed on this platform.
func (d *Device) CopyPermissions(src, tgt afs.RelativePath) error {
	info, err := os.Stat(d.native(src))
	if err != nil {
		return wrap("unable to stat source for permission copy", err)
	}
	if err := os.Chmod(d.native(tgt), info.Mode().Perm()); err != nil {
		return wrap("unable to set target permissions", err)
	}
	return nil
}

// deviceID returns the raw device identifier for path, used to detect
// whether two native paths share a filesystem.
func deviceID(path string) (uint64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, nil
	}
	return uint64(stat.Dev), nil
}
