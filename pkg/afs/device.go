package afs

// DeviceType distinguishes device backends for ordering and for deciding
// whether same-device operations (rename, native copy) are available between
// two paths.
type DeviceType int

const (
	// DeviceTypeNative identifies a local/native filesystem device.
	DeviceTypeNative DeviceType = iota
	// DeviceTypeMTP identifies an MTP (media transfer protocol) device.
	DeviceTypeMTP
	// DeviceTypeSFTP identifies an SFTP-backed device.
	DeviceTypeSFTP
)

// Device is the polymorphic filesystem boundary. Every higher subsystem
// (hierarchy, compare, resolve, versioning, synchronize) is written only
// against this interface; concrete backends live in subpackages under
// pkg/afs.
type Device interface {
	// Type identifies the device's backend.
	Type() DeviceType

	// Root returns a human-readable identifier for the device (for example a
	// native root path, or an SFTP host and base path), used in diagnostics
	// and as the secondary key in CompareDevice's total order.
	Root() string

	// CaseInsensitive reports whether the device treats names that differ
	// only in case as identical.
	CaseInsensitive() bool

	// SameRelativePath reports whether two relative paths on this device
	// refer to the same location, honoring the device's case policy.
	SameRelativePath(a, b RelativePath) bool

	// ItemType probes the type of the item at p. It fails with a FileError of
	// kind ErrorKindNotExisting if the item is absent.
	ItemType(p RelativePath) (ItemType, error)

	// Stat returns the size and modification time of the file at p. It fails
	// with a FileError of kind ErrorKindNotExisting if the item is absent.
	Stat(p RelativePath) (FileInfo, error)

	// PathStatus returns the deepest existing ancestor of p along with the
	// missing path components beyond it. If p itself exists, the missing
	// tail is empty.
	PathStatus(p RelativePath) (existing RelativePath, missing []string, err error)

	// TraverseFolder invokes sink for every direct and indirect descendant of
	// p, honoring the sink's symlink-following and recoverable-error
	// decisions.
	TraverseFolder(p RelativePath, sink TraversalSink) error

	// OpenInput opens p for reading, returning a handle whose Close also
	// closes the underlying stream.
	OpenInput(p RelativePath) (InputStream, error)

	// OpenOutput opens p for writing. expectedSize and expectedMtime, when
	// non-nil, are verified and persisted (respectively) when the stream's
	// Finalize method is called.
	OpenOutput(p RelativePath, expectedSize *int64, expectedMtime *int64) (OutputStream, error)

	// CreateFolder creates a single folder. The parent must already exist.
	CreateFolder(p RelativePath) error

	// RemoveFile removes a single file.
	RemoveFile(p RelativePath) error

	// RemoveSymlink removes a single symlink.
	RemoveSymlink(p RelativePath) error

	// RemoveFolder removes a single, empty folder.
	RemoveFolder(p RelativePath) error

	// RenameItem performs a same-device move. It fails with
	// ErrorKindDifferentVolume if target belongs to a different device and
	// ErrorKindTargetExisting if an item is already present at target.
	RenameItem(source RelativePath, target Device, targetPath RelativePath) error

	// CreateSymlink creates a symlink at p pointing to the literal target
	// string (not resolved or validated against this device).
	CreateSymlink(p RelativePath, target string) error

	// ReadSymlink returns the literal target of the symlink at p.
	ReadSymlink(p RelativePath) (string, error)

	// FileID returns the device-stable file identity for p, or an empty
	// FileID if the device or item doesn't support one (e.g. FAT).
	FileID(p RelativePath) (FileID, error)
}

// PermissionCopier is an optional capability a Device may implement to carry
// filesystem permissions from src to tgt on the same device after a
// stream-based copy. Native backends on platforms whose permission model
// isn't captured by a bare os.FileMode (e.g. Windows ACLs) implement this
// using a platform-specific library rather than os.Chmod; copyFileDirect
// type-asserts for it when CopyPermissions is requested.
type PermissionCopier interface {
	CopyPermissions(src, tgt RelativePath) error
}

// CompareDevice imposes a total order over device instances: first by type,
// then by a device-type-specific root comparator (case-insensitive when the
// device is case-insensitive). It partitions synchronization plans by device
// and determines whether a same-device move can short-circuit a copy+delete.
func CompareDevice(a, b Device) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if a.Type() != b.Type() {
		if a.Type() < b.Type() {
			return -1
		}
		return 1
	}
	ra, rb := a.Root(), b.Root()
	if a.CaseInsensitive() {
		ra, rb = foldCase(ra), foldCase(rb)
	}
	if ra == rb {
		return 0
	} else if ra < rb {
		return -1
	}
	return 1
}

func foldCase(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r - 'A' + 'a'
		}
		out = append(out, r)
	}
	return string(out)
}

// SameDevice reports whether two devices are identical for the purposes of
// same-device short-circuiting (rename instead of copy+delete).
func SameDevice(a, b Device) bool {
	return CompareDevice(a, b) == 0
}
