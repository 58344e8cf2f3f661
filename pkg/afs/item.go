package afs

// ItemType identifies the kind of filesystem item at a path.
type ItemType int

const (
	// ItemTypeFile indicates a regular file.
	ItemTypeFile ItemType = iota
	// ItemTypeFolder indicates a directory.
	ItemTypeFolder
	// ItemTypeSymlink indicates a symbolic link.
	ItemTypeSymlink
)

// String returns a human-readable name for the item type.
func (t ItemType) String() string {
	switch t {
	case ItemTypeFile:
		return "file"
	case ItemTypeFolder:
		return "folder"
	case ItemTypeSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// FileID is an opaque byte string, unique and stable per device for the
// lifetime of an item where the OS supports it; otherwise empty. Move
// detection uses it but tolerates its unreliability on FAT-family volumes.
type FileID string

// Empty reports whether the file ID carries no information.
func (id FileID) Empty() bool {
	return id == ""
}

// FileInfo describes a file encountered during traversal.
type FileInfo struct {
	// Name is the item's short name.
	Name string
	// Size is the file's size in bytes.
	Size int64
	// ModTime is the file's modification time, in seconds since the Unix
	// epoch.
	ModTime int64
	// FileID is the device-stable identity of the file, if available.
	FileID FileID
}

// FolderInfo describes a folder encountered during traversal.
type FolderInfo struct {
	// Name is the item's short name.
	Name string
}

// SymlinkInfo describes a symlink encountered during traversal.
type SymlinkInfo struct {
	// Name is the item's short name.
	Name string
	// ModTime is the symlink's own modification time, in seconds since the
	// Unix epoch.
	ModTime int64
	// Target is the literal symlink target.
	Target string
}

// SymlinkHandling indicates how a traversal sink wants a symlink treated.
type SymlinkHandling int

const (
	// SymlinkFollow instructs the traversal to follow the symlink and report
	// whatever item type lies at its target.
	SymlinkFollow SymlinkHandling = iota
	// SymlinkSkip instructs the traversal to report the symlink itself
	// without following it.
	SymlinkSkip
)

// RecoverableAction is the caller's decision on how to proceed after a
// traversal encounters a recoverable per-entry error (for example a single
// unreadable directory entry).
type RecoverableAction int

const (
	// RecoverableIgnore skips the offending entry and continues traversal.
	RecoverableIgnore RecoverableAction = iota
	// RecoverableRetry retries the operation that produced the error.
	RecoverableRetry
	// RecoverableAbort aborts the entire traversal, propagating the error.
	RecoverableAbort
)

// TraversalSink receives callbacks for every item encountered while
// traversing a folder. It decides how symlinks should be handled and how
// recoverable per-entry errors should be resolved; these decisions are
// returned explicitly rather than communicated via exceptions thrown across
// the callback boundary.
type TraversalSink interface {
	// File is invoked for each file encountered.
	File(parent RelativePath, info FileInfo) error
	// Folder is invoked for each folder encountered, before its children (if
	// any) are traversed. Returning false prevents descent into the folder.
	Folder(parent RelativePath, info FolderInfo) (descend bool, err error)
	// Symlink is invoked for each symlink encountered and returns whether it
	// should be followed or reported as-is.
	Symlink(parent RelativePath, info SymlinkInfo) (SymlinkHandling, error)
	// HandleError is invoked when reading a single directory entry fails. It
	// returns the recovery action to take.
	HandleError(path RelativePath, err error) RecoverableAction
}
