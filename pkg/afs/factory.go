package afs

import (
	"strings"
)

// PathPhrase is a user-entered path specification, as accepted on the
// command line: a native filesystem path, or an `sftp://user@host[:port]/path`
// URL-like prefix. Resolution is greedy — the first backend that claims the
// phrase resolves it, matching the "path phrase" resolution described for
// the GUI's path entry fields.
type PathPhrase string

// Backend resolves path phrases it recognizes into a Device plus the
// device-relative path the remainder of the phrase names.
type Backend interface {
	// Claims reports whether this backend recognizes the phrase, and if so,
	// returns the resolved device and relative path.
	Claims(phrase PathPhrase) (device Device, rel RelativePath, ok bool, err error)
}

// Resolve runs phrase through each registered backend in order and returns
// the first match. It fails with ErrorKindOther if no backend claims the
// phrase.
func Resolve(phrase PathPhrase, backends []Backend) (Device, RelativePath, error) {
	for _, backend := range backends {
		device, rel, ok, err := backend.Claims(phrase)
		if err != nil {
			return nil, "", err
		}
		if ok {
			return device, rel, nil
		}
	}
	return nil, "", NewFileError(ErrorKindOther, "no backend recognized path phrase: "+string(phrase), nil)
}

// TrimTrailingSeparators strips any trailing path separators from a phrase,
// matching the source's tolerance for user-entered trailing slashes.
func TrimTrailingSeparators(phrase PathPhrase) PathPhrase {
	return PathPhrase(strings.TrimRight(string(phrase), "/\\"))
}
