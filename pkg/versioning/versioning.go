// Package versioning implements the versioner (spec §4.H): instead of
// deleting or overwriting an item, move it into a versioning directory under
// a name a later retention pass can still associate with its original.
// Grounded on the teacher's staging directory convention in
// pkg/synchronization/endpoint/local/staging.go, adapted from mutagen's
// "stage content under a scratch path, then publish" pattern to
// FreeFileSync's "move the superseded item aside" one.
package versioning

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/logging"
)

// Style selects how a versioned name is derived from the original.
type Style int

const (
	// StyleReplace stores versions under their original name, in a
	// directory tree mirroring the source (each new version replaces the
	// last).
	StyleReplace Style = iota
	// StyleTimestamp appends " YYYY-MM-DD HHMMSS" (and the original
	// extension, if any) so that every version is retained side by side.
	StyleTimestamp
)

const timestampLayout = "2006-01-02 150405"

// Versioner moves superseded items into rootDir on device, using style to
// name them.
type Versioner struct {
	device  afs.Device
	rootDir afs.RelativePath
	style   Style
	logger  *logging.Logger

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// New creates a Versioner that stores versions under rootDir on device.
func New(device afs.Device, rootDir afs.RelativePath, style Style, logger *logging.Logger) *Versioner {
	return &Versioner{device: device, rootDir: rootDir, style: style, logger: logger, now: time.Now}
}

// VersionFile moves the file at src (on srcDevice, relative path srcPath)
// into the versioning directory, preserving its relative location under
// rootDir. A missing source is silently treated as nothing to do, matching
// the source engine's behavior when the item disappeared underfoot.
func (v *Versioner) VersionFile(srcDevice afs.Device, srcPath afs.RelativePath) error {
	if _, err := srcDevice.ItemType(srcPath); err != nil {
		if afs.IsKind(err, afs.ErrorKindNotExisting) {
			return nil
		}
		return err
	}

	targetPath := v.targetPath(srcPath)
	return v.moveWithFallback(srcDevice, srcPath, targetPath)
}

// VersionFolder versions a folder by recursing one level: each direct child
// (file, symlink, or folder) is versioned individually, then the now-empty
// source folder is removed. A missing source is silently ignored.
func (v *Versioner) VersionFolder(srcDevice afs.Device, srcPath afs.RelativePath) error {
	if _, err := srcDevice.ItemType(srcPath); err != nil {
		if afs.IsKind(err, afs.ErrorKindNotExisting) {
			return nil
		}
		return err
	}

	children, err := listChildren(srcDevice, srcPath)
	if err != nil {
		return err
	}

	for _, child := range children {
		childPath := srcPath.Join(child.name)
		var verr error
		if child.isFolder {
			verr = v.VersionFolder(srcDevice, childPath)
		} else if child.isSymlink {
			verr = v.versionSymlink(srcDevice, childPath)
		} else {
			verr = v.VersionFile(srcDevice, childPath)
		}
		if verr != nil {
			return verr
		}
	}

	if err := srcDevice.RemoveFolder(srcPath); err != nil && !afs.IsKind(err, afs.ErrorKindNotExisting) {
		return err
	}
	return nil
}

// VersionSymlink versions a single symlink, exported for callers (such as the
// deletion policy) that need to version a symlink outside of a
// VersionFolder recursion.
func (v *Versioner) VersionSymlink(srcDevice afs.Device, srcPath afs.RelativePath) error {
	return v.versionSymlink(srcDevice, srcPath)
}

func (v *Versioner) versionSymlink(srcDevice afs.Device, srcPath afs.RelativePath) error {
	target, err := srcDevice.ReadSymlink(srcPath)
	if err != nil {
		if afs.IsKind(err, afs.ErrorKindNotExisting) {
			return nil
		}
		return err
	}

	dest := v.targetPath(srcPath)
	if err := afs.CreateFolderIfMissingRecursive(v.device, parentOf(dest)); err != nil {
		return err
	}
	if err := v.device.CreateSymlink(dest, target); err != nil {
		return err
	}
	return srcDevice.RemoveSymlink(srcPath)
}

type childInfo struct {
	name      string
	isFolder  bool
	isSymlink bool
}

// listChildren enumerates the direct children of p without recursing, by
// using TraverseFolder's "don't descend" signal on every folder.
func listChildren(device afs.Device, p afs.RelativePath) ([]childInfo, error) {
	sink := &shallowSink{}
	if err := device.TraverseFolder(p, sink); err != nil {
		return nil, err
	}
	return sink.children, nil
}

type shallowSink struct {
	children []childInfo
}

func (s *shallowSink) File(parent afs.RelativePath, info afs.FileInfo) error {
	s.children = append(s.children, childInfo{name: info.Name})
	return nil
}

func (s *shallowSink) Folder(parent afs.RelativePath, info afs.FolderInfo) (bool, error) {
	s.children = append(s.children, childInfo{name: info.Name, isFolder: true})
	return false, nil
}

func (s *shallowSink) Symlink(parent afs.RelativePath, info afs.SymlinkInfo) (afs.SymlinkHandling, error) {
	s.children = append(s.children, childInfo{name: info.Name, isSymlink: true})
	return afs.SymlinkSkip, nil
}

func (s *shallowSink) HandleError(p afs.RelativePath, err error) afs.RecoverableAction {
	return afs.RecoverableAbort
}

// targetPath computes the versioned destination for srcPath, preserving its
// relative position under the versioning root and renaming its final
// component according to the configured style.
func (v *Versioner) targetPath(srcPath afs.RelativePath) afs.RelativePath {
	parent, hasParent := srcPath.Parent()
	name := VersionedName(srcPath.Base(), v.style, v.now())

	dest := v.rootDir
	if hasParent {
		dest = dest.Join(string(parent))
	}
	return dest.Join(name)
}

// moveWithFallback attempts a direct rename, falling back to copy-then-
// delete on DifferentVolume or TargetExisting, and creating the destination's
// missing parent directories on demand.
func (v *Versioner) moveWithFallback(srcDevice afs.Device, srcPath, destPath afs.RelativePath) error {
	if err := afs.CreateFolderIfMissingRecursive(v.device, parentOf(destPath)); err != nil {
		return err
	}

	err := srcDevice.RenameItem(srcPath, v.device, destPath)
	if err == nil {
		return nil
	}
	if !afs.IsKind(err, afs.ErrorKindDifferentVolume) && !afs.IsKind(err, afs.ErrorKindTargetExisting) {
		return err
	}

	v.logger.Printf("versioning %s via copy (same-device rename unavailable): %v", srcPath, err)

	src := afs.Path{Device: srcDevice, Rel: srcPath}
	dst := afs.Path{Device: v.device, Rel: destPath}
	if err := afs.CopyFileTransactional(src, dst, true, true, nil, nil, v.logger); err != nil {
		return err
	}
	return srcDevice.RemoveFile(srcPath)
}

func parentOf(p afs.RelativePath) afs.RelativePath {
	parent, ok := p.Parent()
	if !ok {
		return ""
	}
	return parent
}

// VersionedName derives the versioned short name for original under style at
// the given instant.
func VersionedName(original string, style Style, at time.Time) string {
	if style == StyleReplace {
		return original
	}

	ext := path.Ext(original)
	base := strings.TrimSuffix(original, ext)
	return fmt.Sprintf("%s %s%s", base, at.UTC().Format(timestampLayout), ext)
}

// IsMatchingVersion reports whether versionedName could have been produced
// by VersionedName(original, style, *) for some instant, i.e. the inverse
// predicate required by spec §4.H so a retention policy can group versions
// back to their source. Matching is case-insensitive when caseInsensitive is
// set, mirroring the owning device's case policy.
func IsMatchingVersion(original, versionedName string, style Style, caseInsensitive bool) bool {
	if style == StyleReplace {
		return equalFold(original, versionedName, caseInsensitive)
	}

	ext := path.Ext(original)
	base := strings.TrimSuffix(original, ext)

	prefix := base + " "
	if !hasPrefixFold(versionedName, prefix, caseInsensitive) {
		return false
	}
	if !hasSuffixFold(versionedName, ext, caseInsensitive) {
		return false
	}

	stamp := versionedName[len(prefix) : len(versionedName)-len(ext)]
	_, err := time.Parse(timestampLayout, stamp)
	return err == nil
}

func equalFold(a, b string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func hasPrefixFold(s, prefix string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
	}
	return strings.HasPrefix(s, prefix)
}

func hasSuffixFold(s, suffix string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.HasSuffix(strings.ToLower(s), strings.ToLower(suffix))
	}
	return strings.HasSuffix(s, suffix)
}
