package hierarchy

import "github.com/freefilesync/ffsync/pkg/afs"

// BaseFolderPair is one configured left/right directory pair, anchoring a
// single hierarchy object (Container) at its root. It also records whether
// each side existed at scan time, since a non-existing side doesn't abort a
// run — its side of every pair is simply left empty.
type BaseFolderPair struct {
	// Paths are the resolved abstract base paths for each side.
	Paths [2]afs.Path
	// Existing records whether each side's base folder existed at scan
	// time.
	Existing [2]bool
	// Root is the hierarchy object for this base folder pair.
	Root Container
	// IDs is the object id generator shared by every pair created under
	// Root.
	IDs IDGenerator
}

// Path returns the resolved abstract base path for the given side.
func (b *BaseFolderPair) Path(side Side) afs.Path { return b.Paths[side] }

// FolderComparison is an ordered sequence of base-folder pairs, one per
// configured folder pair. Order is preserved from configuration so that
// per-pair progress and results can be reported predictably.
type FolderComparison struct {
	Pairs []*BaseFolderPair
}

// NewBaseFolderPair creates and appends a new, empty base-folder pair for
// the given resolved paths.
func (fc *FolderComparison) NewBaseFolderPair(left, right afs.Path, leftExisting, rightExisting bool) *BaseFolderPair {
	pair := &BaseFolderPair{
		Paths:    [2]afs.Path{left, right},
		Existing: [2]bool{leftExisting, rightExisting},
	}
	fc.Pairs = append(fc.Pairs, pair)
	return pair
}
