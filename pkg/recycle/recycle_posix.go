//go:build !windows

package recycle

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// nativeRecycler implements the XDG trash specification: files move into
// $XDG_DATA_HOME/Trash/files (or $HOME/.local/share/Trash/files), with a
// matching .trashinfo sidecar recording the original path and deletion time,
// the same layout GNOME/KDE file managers use.
type nativeRecycler struct {
	cache *probeCache
	now   func() time.Time
}

// New returns the POSIX trash-spec recycler.
func New() Recycler {
	return &nativeRecycler{
		cache: newProbeCache(),
		now:   time.Now,
	}
}

func (r *nativeRecycler) trashDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "Trash"), nil
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(u.HomeDir, ".local", "share", "Trash"), nil
}

func (r *nativeRecycler) Available(root string) bool {
	return r.cache.get(root, func(string) bool {
		dir, err := r.trashDir()
		if err != nil {
			return false
		}
		if err := os.MkdirAll(filepath.Join(dir, "files"), 0o700); err != nil {
			return false
		}
		if err := os.MkdirAll(filepath.Join(dir, "info"), 0o700); err != nil {
			return false
		}
		return true
	})
}

func (r *nativeRecycler) Recycle(absPath string) error {
	dir, err := r.trashDir()
	if err != nil {
		return err
	}

	name := filepath.Base(absPath)
	dest, infoPath := reserveTrashName(dir, name)

	if err := os.Rename(absPath, dest); err != nil {
		return err
	}

	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escapeTrashPath(absPath), r.now().Format("2006-01-02T15:04:05"))
	return os.WriteFile(infoPath, []byte(info), 0o600)
}

// reserveTrashName finds an unused destination under dir/files, appending a
// numeric suffix on collision, mirroring the spec's behavior for trashed
// items sharing a name.
func reserveTrashName(dir, name string) (filesPath, infoPath string) {
	base, ext := splitExt(name)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		filesPath = filepath.Join(dir, "files", candidate)
		infoPath = filepath.Join(dir, "info", candidate+".trashinfo")
		if _, err := os.Lstat(filesPath); os.IsNotExist(err) {
			return
		}
	}
}

func splitExt(name string) (string, string) {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i], name[i:]
	}
	return name, ""
}

func escapeTrashPath(p string) string {
	// Per the trash-spec, the Path value is percent-encoded except for '/'.
	var b strings.Builder
	for _, r := range p {
		if r == '/' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || strings.ContainsRune("-_.~", r) {
			b.WriteRune(r)
		} else {
			b.WriteString("%")
			b.WriteString(strconv.FormatInt(int64(r), 16))
		}
	}
	return b.String()
}
