// Package native implements the AFS Device interface over the local
// operating system filesystem, using os.* and golang.org/x/sys/unix (or
// golang.org/x/sys/windows, via platform-tagged files) for the primitives
// that the standard library doesn't expose directly (raw device identity,
// FAT tunneling-prone rename semantics).
package native

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/freefilesync/ffsync/pkg/afs"
)

// Device is a native filesystem AFS backend rooted at a fixed absolute
// directory. Relative paths passed to Device methods are interpreted
// relative to this root, joined using the platform's native separator
// internally while remaining afs.Separator-joined at the AFS boundary.
type Device struct {
	root            string
	caseInsensitive bool
}

// New creates a native device rooted at the given absolute path. The path is
// not required to exist yet; scanning or operations against a missing root
// fail with ErrorKindNotExisting like any other missing item.
func New(root string) *Device {
	return &Device{
		root:            filepath.Clean(root),
		caseInsensitive: platformCaseInsensitive(),
	}
}

// Type implements afs.Device.Type.
func (d *Device) Type() afs.DeviceType { return afs.DeviceTypeNative }

// Root implements afs.Device.Root.
func (d *Device) Root() string { return d.root }

// CaseInsensitive implements afs.Device.CaseInsensitive.
func (d *Device) CaseInsensitive() bool { return d.caseInsensitive }

// SameRelativePath implements afs.Device.SameRelativePath.
func (d *Device) SameRelativePath(a, b afs.RelativePath) bool {
	if d.caseInsensitive {
		return strings.EqualFold(string(a), string(b))
	}
	return a == b
}

// native converts an AFS relative path to a native, OS-separated absolute
// path under the device root.
func (d *Device) native(p afs.RelativePath) string {
	if p == "" {
		return d.root
	}
	components := p.Components()
	return filepath.Join(append([]string{d.root}, components...)...)
}

// wrap classifies an os-level error into the corresponding *afs.FileError.
func wrap(message string, err error) error {
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return afs.NewFileError(afs.ErrorKindNotExisting, message, err)
	}
	if os.IsExist(err) {
		return afs.NewFileError(afs.ErrorKindTargetExisting, message, err)
	}
	if os.IsPermission(err) {
		return afs.NewFileError(afs.ErrorKindFileLocked, message, err)
	}
	return afs.NewFileError(afs.ErrorKindOther, message, err)
}

// ItemType implements afs.Device.ItemType.
func (d *Device) ItemType(p afs.RelativePath) (afs.ItemType, error) {
	info, err := os.Lstat(d.native(p))
	if err != nil {
		return 0, wrap("unable to stat item", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return afs.ItemTypeSymlink, nil
	}
	if info.IsDir() {
		return afs.ItemTypeFolder, nil
	}
	return afs.ItemTypeFile, nil
}

// Stat implements afs.Device.Stat.
func (d *Device) Stat(p afs.RelativePath) (afs.FileInfo, error) {
	info, err := os.Lstat(d.native(p))
	if err != nil {
		return afs.FileInfo{}, wrap("unable to stat item", err)
	}
	return afs.FileInfo{Name: info.Name(), Size: info.Size(), ModTime: info.ModTime().Unix()}, nil
}

// PathStatus implements afs.Device.PathStatus.
func (d *Device) PathStatus(p afs.RelativePath) (afs.RelativePath, []string, error) {
	components := p.Components()
	for i := len(components); i >= 0; i-- {
		candidate := afs.RelativePath(strings.Join(components[:i], afs.Separator))
		if _, err := d.ItemType(candidate); err == nil {
			return candidate, components[i:], nil
		} else if !afs.IsKind(err, afs.ErrorKindNotExisting) {
			return "", nil, err
		}
	}
	return "", components, nil
}

// CreateFolder implements afs.Device.CreateFolder.
func (d *Device) CreateFolder(p afs.RelativePath) error {
	if err := os.Mkdir(d.native(p), 0755); err != nil {
		return wrap("unable to create folder", err)
	}
	return nil
}

// RemoveFile implements afs.Device.RemoveFile.
func (d *Device) RemoveFile(p afs.RelativePath) error {
	if err := os.Remove(d.native(p)); err != nil {
		return wrap("unable to remove file", err)
	}
	return nil
}

// RemoveSymlink implements afs.Device.RemoveSymlink.
func (d *Device) RemoveSymlink(p afs.RelativePath) error {
	if err := os.Remove(d.native(p)); err != nil {
		return wrap("unable to remove symlink", err)
	}
	return nil
}

// RemoveFolder implements afs.Device.RemoveFolder.
func (d *Device) RemoveFolder(p afs.RelativePath) error {
	if err := os.Remove(d.native(p)); err != nil {
		return wrap("unable to remove folder", err)
	}
	return nil
}

// RenameItem implements afs.Device.RenameItem.
func (d *Device) RenameItem(source afs.RelativePath, target afs.Device, targetPath afs.RelativePath) error {
	targetDevice, ok := target.(*Device)
	if !ok || !afs.SameDevice(d, target) {
		return afs.NewFileError(afs.ErrorKindDifferentVolume, "rename target is on a different device", nil)
	}
	destination := targetDevice.native(targetPath)
	if _, err := os.Lstat(destination); err == nil {
		return afs.NewFileError(afs.ErrorKindTargetExisting, "rename target already exists", nil)
	}
	if err := os.Rename(d.native(source), destination); err != nil {
		if isCrossDeviceError(err) {
			return afs.NewFileError(afs.ErrorKindDifferentVolume, "rename crosses filesystem boundary", err)
		}
		return wrap("unable to rename item", err)
	}
	return nil
}

// CreateSymlink implements afs.Device.CreateSymlink.
func (d *Device) CreateSymlink(p afs.RelativePath, target string) error {
	if err := os.Symlink(target, d.native(p)); err != nil {
		return wrap("unable to create symlink", err)
	}
	return nil
}

// ReadSymlink implements afs.Device.ReadSymlink.
func (d *Device) ReadSymlink(p afs.RelativePath) (string, error) {
	target, err := os.Readlink(d.native(p))
	if err != nil {
		return "", wrap("unable to read symlink", err)
	}
	return target, nil
}

// OpenInput implements afs.Device.OpenInput.
func (d *Device) OpenInput(p afs.RelativePath) (afs.InputStream, error) {
	f, err := os.Open(d.native(p))
	if err != nil {
		return nil, wrap("unable to open file for reading", err)
	}
	return f, nil
}

// outputStream adapts *os.File to afs.OutputStream, verifying the declared
// expected size and persisting the declared expected modification time on
// Finalize.
type outputStream struct {
	file          *os.File
	path          string
	written       int64
	expectedSize  *int64
	expectedMtime *int64
}

func (o *outputStream) Write(p []byte) (int, error) {
	n, err := o.file.Write(p)
	o.written += int64(n)
	return n, err
}

func (o *outputStream) Close() error {
	return o.file.Close()
}

func (o *outputStream) Finalize() error {
	if o.expectedSize != nil && o.written != *o.expectedSize {
		return afs.NewFileError(afs.ErrorKindOther, "written byte count does not match expected size", nil)
	}
	if o.expectedMtime != nil {
		mtime := time.Unix(*o.expectedMtime, 0)
		if err := os.Chtimes(o.path, mtime, mtime); err != nil {
			return wrap("unable to set modification time", err)
		}
	}
	return nil
}

// OpenOutput implements afs.Device.OpenOutput.
func (d *Device) OpenOutput(p afs.RelativePath, expectedSize *int64, expectedMtime *int64) (afs.OutputStream, error) {
	path := d.native(p)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, wrap("unable to open file for writing", err)
	}
	return &outputStream{file: f, path: path, expectedSize: expectedSize, expectedMtime: expectedMtime}, nil
}

// TraverseFolder implements afs.Device.TraverseFolder.
func (d *Device) TraverseFolder(p afs.RelativePath, sink afs.TraversalSink) error {
	return d.traverse(p, sink)
}

func (d *Device) traverse(p afs.RelativePath, sink afs.TraversalSink) error {
	entries, err := os.ReadDir(d.native(p))
	if err != nil {
		action := sink.HandleError(p, wrap("unable to read directory", err))
		if action == afs.RecoverableAbort {
			return wrap("unable to read directory", err)
		}
		return nil
	}

	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}
	if err := normalizeDirectoryNames(d.native(p), names); err != nil {
		if sink.HandleError(p, err) == afs.RecoverableAbort {
			return err
		}
	}

	for i, entry := range entries {
		name := names[i]
		childRel := p.Join(name)
		info, err := entry.Info()
		if err != nil {
			if sink.HandleError(childRel, err) == afs.RecoverableAbort {
				return err
			}
			continue
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(d.native(childRel))
			if err != nil {
				if sink.HandleError(childRel, err) == afs.RecoverableAbort {
					return err
				}
				continue
			}
			handling, err := sink.Symlink(p, afs.SymlinkInfo{
				Name:    name,
				ModTime: info.ModTime().Unix(),
				Target:  target,
			})
			if err != nil {
				return err
			}
			if handling == afs.SymlinkFollow {
				targetInfo, err := os.Stat(d.native(childRel))
				if err != nil {
					if sink.HandleError(childRel, err) == afs.RecoverableAbort {
						return err
					}
					continue
				}
				if targetInfo.IsDir() {
					descend, err := sink.Folder(p, afs.FolderInfo{Name: name})
					if err != nil {
						return err
					}
					if descend {
						if err := d.traverse(childRel, sink); err != nil {
							return err
						}
					}
				} else {
					if err := sink.File(p, afs.FileInfo{
						Name:    name,
						Size:    targetInfo.Size(),
						ModTime: targetInfo.ModTime().Unix(),
					}); err != nil {
						return err
					}
				}
			}
			continue
		}

		if info.IsDir() {
			descend, err := sink.Folder(p, afs.FolderInfo{Name: name})
			if err != nil {
				return err
			}
			if descend {
				if err := d.traverse(childRel, sink); err != nil {
					return err
				}
			}
			continue
		}

		fileID, _ := d.FileID(childRel)
		if err := sink.File(p, afs.FileInfo{
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime().Unix(),
			FileID:  fileID,
		}); err != nil {
			return err
		}
	}

	return nil
}
