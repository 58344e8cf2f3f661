//go:build windows

package native

import (
	"fmt"
	"os"

	"github.com/hectane/go-acl"
	"golang.org/x/sys/windows"

	"github.com/freefilesync/ffsync/pkg/afs"
)

// platformCaseInsensitive reports the default case sensitivity for the
// native filesystem on this platform. NTFS is case-insensitive by default
// (per-directory case sensitivity introduced for WSL interop isn't probed
// here).
func platformCaseInsensitive() bool {
	return true
}

// isCrossDeviceError checks whether an error returned by os.Rename is due to
// an attempted rename across devices.
func isCrossDeviceError(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	return ok && linkErr.Err == windows.ERROR_NOT_SAME_DEVICE
}

// FileID implements afs.Device.FileID using the NTFS file index, obtained
// via GetFileInformationByHandle, which is stable for the lifetime of the
// file (barring the well-known caveats around index reuse after deletion on
// some older filesystem drivers).
func (d *Device) FileID(p afs.RelativePath) (afs.FileID, error) {
	path := d.native(p)
	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return "", wrap("unable to open item for file id", err)
	}
	defer windows.CloseHandle(handle)

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(handle, &info); err != nil {
		return "", nil
	}

	return afs.FileID(fmt.Sprintf("%d:%d:%d", info.VolumeSerialNumber, info.FileIndexHigh, info.FileIndexLow)), nil
}

// CopyPermissions implements afs.PermissionCopier using go-acl, since a bare
// os.FileMode cannot express an NTFS ACL. acl.Chmod rewrites the target's
// discretionary ACL to match the permission bits derived from the source's
// mode, following the teacher's own SetPermissionsByPath use of the same
// call for transferring permission bits on Windows.
func (d *Device) CopyPermissions(src, tgt afs.RelativePath) error {
	info, err := os.Stat(d.native(src))
	if err != nil {
		return wrap("unable to stat source for permission copy", err)
	}
	if err := acl.Chmod(d.native(tgt), info.Mode().Perm()); err != nil {
		return wrap("unable to set target ACL", err)
	}
	return nil
}
