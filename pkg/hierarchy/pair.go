package hierarchy

// FileAttributes are the per-side attributes tracked for a file.
type FileAttributes struct {
	Size    int64
	ModTime int64
	FileID  string
}

// SymlinkAttributes are the per-side attributes tracked for a symlink.
type SymlinkAttributes struct {
	ModTime int64
	Target  string
}

// FilePair is a paired file item: the short name on each side (empty string
// if absent on that side), per-side attributes, a category, a direction,
// an "included by filter" flag, and a stable object id.
type FilePair struct {
	id       ObjectID
	names    [2]string
	attrs    [2]FileAttributes
	present  [2]bool
	Category FileCategory
	Dir      Direction
	Active   bool

	// MovedPeer links this pair to another FilePair that move
	// detection has identified as the counterpart of a rename; nil if this
	// pair is not part of a detected move.
	MovedPeer *FilePair
}

// ID returns the pair's stable object id.
func (p *FilePair) ID() ObjectID { return p.id }

// Name returns the short name on the given side, or "" if absent.
func (p *FilePair) Name(side Side) string { return p.names[side] }

// Present reports whether the pair has an item on the given side.
func (p *FilePair) Present(side Side) bool { return p.present[side] }

// Attributes returns the per-side attributes for the given side. The result
// is meaningless if Present(side) is false.
func (p *FilePair) Attributes(side Side) FileAttributes { return p.attrs[side] }

// SetSide installs a name and attributes on the given side, marking it
// present.
func (p *FilePair) SetSide(side Side, name string, attrs FileAttributes) {
	p.names[side] = name
	p.attrs[side] = attrs
	p.present[side] = true
}

// RemoveSide clears one side of the pair. A pair with both sides empty is
// left for a subsequent pruneEmpty pass to collect; it is not erased here,
// preserving stable iteration while items are being cleared.
func (p *FilePair) RemoveSide(side Side) {
	p.names[side] = ""
	p.attrs[side] = FileAttributes{}
	p.present[side] = false
}

// Empty reports whether both sides of the pair are empty.
func (p *FilePair) Empty() bool { return !p.present[Left] && !p.present[Right] }

// SymlinkPair is a paired symlink item, analogous to FilePair.
type SymlinkPair struct {
	id       ObjectID
	names    [2]string
	attrs    [2]SymlinkAttributes
	present  [2]bool
	Category SymlinkCategory
	Dir      Direction
	Active   bool
}

func (p *SymlinkPair) ID() ObjectID                   { return p.id }
func (p *SymlinkPair) Name(side Side) string          { return p.names[side] }
func (p *SymlinkPair) Present(side Side) bool         { return p.present[side] }
func (p *SymlinkPair) Attributes(side Side) SymlinkAttributes { return p.attrs[side] }

func (p *SymlinkPair) SetSide(side Side, name string, attrs SymlinkAttributes) {
	p.names[side] = name
	p.attrs[side] = attrs
	p.present[side] = true
}

func (p *SymlinkPair) RemoveSide(side Side) {
	p.names[side] = ""
	p.attrs[side] = SymlinkAttributes{}
	p.present[side] = false
}

func (p *SymlinkPair) Empty() bool { return !p.present[Left] && !p.present[Right] }

// FolderPair is a paired folder item. It additionally owns a child
// Container for its subtree.
type FolderPair struct {
	id       ObjectID
	names    [2]string
	present  [2]bool
	Category FolderCategory
	Dir      Direction
	Active   bool
	Children Container
}

func (p *FolderPair) ID() ObjectID           { return p.id }
func (p *FolderPair) Name(side Side) string  { return p.names[side] }
func (p *FolderPair) Present(side Side) bool { return p.present[side] }

func (p *FolderPair) SetSide(side Side, name string) {
	p.names[side] = name
	p.present[side] = true
}

// RemoveSide clears one side of the folder pair and recursively clears the
// same side of every descendant.
func (p *FolderPair) RemoveSide(side Side) {
	p.names[side] = ""
	p.present[side] = false
	p.Children.removeSideRecursive(side)
}

// Empty reports whether both of the folder pair's own sides are absent. It
// does not inspect Children; pruneEmpty works bottom-up, so by the time it
// inspects a folder pair its children are already pruned.
func (p *FolderPair) Empty() bool { return !p.present[Left] && !p.present[Right] }
