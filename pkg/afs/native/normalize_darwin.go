//go:build darwin
// +build darwin

package native

import (
	"syscall"

	"github.com/pkg/errors"

	"golang.org/x/text/unicode/norm"
)

// statfsTypeHFS identifies HFS+ (and its variants) in Statfs_t.Type, per the
// XNU sources (xnu/bsd/vfs/vfs_conf.c). It is not exported by syscall.
const statfsTypeHFS = 17

// normalizeDirectoryNames renormalizes names to NFC in place when path sits
// on an HFS+ volume. HFS+ stores names in a custom NFD-like decomposition;
// renormalizing to NFC here means names reported by this device match what
// every other backend (and a same-name pair on the other side of a sync)
// would report for the same Unicode text, so short-name pairing (spec §3)
// isn't defeated by a filesystem-level decomposition difference. The
// directory entries on disk are unaffected: HFS+ resolves either
// normalization form to the same path, so subsequent native path lookups
// built from the renormalized name still succeed.
func normalizeDirectoryNames(path string, names []string) error {
	var fsStats syscall.Statfs_t
	if err := syscall.Statfs(path, &fsStats); err != nil {
		return errors.Wrap(err, "unable to determine filesystem type")
	}
	if fsStats.Type != statfsTypeHFS {
		return nil
	}
	for i, n := range names {
		names[i] = norm.NFC.String(n)
	}
	return nil
}
