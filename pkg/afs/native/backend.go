package native

import (
	"os"
	"path/filepath"

	"github.com/freefilesync/ffsync/pkg/afs"
)

// Backend claims any phrase that isn't recognized by a more specific scheme
// prefix (sftp://, mtp://); it's registered last in the factory's backend
// list so that it acts as the default, matching the source's "falls back to
// native" resolution order.
type Backend struct{}

// Claims implements afs.Backend.Claims.
func (Backend) Claims(phrase afs.PathPhrase) (afs.Device, afs.RelativePath, bool, error) {
	raw := string(afs.TrimTrailingSeparators(phrase))
	if raw == "" {
		return nil, "", false, nil
	}
	expanded := os.ExpandEnv(raw)
	absolute, err := filepath.Abs(expanded)
	if err != nil {
		return nil, "", false, afs.NewFileError(afs.ErrorKindOther, "unable to resolve native path", err)
	}
	return New(absolute), "", true, nil
}
