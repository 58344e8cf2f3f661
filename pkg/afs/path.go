package afs

import "strings"

// Separator is the path component separator used by all abstract relative
// paths, regardless of the underlying device's native separator.
const Separator = "/"

// RelativePath is a device-relative path composed of Separator-joined
// components. It never begins or ends with Separator, never contains the
// platform-native separator if that differs from Separator, and never has
// empty components.
type RelativePath string

// EnsureValid verifies that a relative path satisfies the invariants required
// of all abstract paths.
func (p RelativePath) EnsureValid() error {
	s := string(p)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, Separator) || strings.HasSuffix(s, Separator) {
		return NewFileError(ErrorKindOther, "relative path has leading or trailing separator", nil)
	}
	for _, component := range strings.Split(s, Separator) {
		if component == "" {
			return NewFileError(ErrorKindOther, "relative path contains empty component", nil)
		}
	}
	return nil
}

// Components splits the relative path into its individual components.
func (p RelativePath) Components() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), Separator)
}

// Join appends a single validated relative component to an existing relative
// path, returning the composed path.
func (p RelativePath) Join(component string) RelativePath {
	if component == "" {
		return p
	}
	if p == "" {
		return RelativePath(component)
	}
	return RelativePath(string(p) + Separator + component)
}

// Parent derives the parent of a relative path. It returns ("", false) if p
// is already at the device root.
func (p RelativePath) Parent() (RelativePath, bool) {
	components := p.Components()
	if len(components) <= 1 {
		return "", false
	}
	return RelativePath(strings.Join(components[:len(components)-1], Separator)), true
}

// Base returns the final path component (the item's short name).
func (p RelativePath) Base() string {
	components := p.Components()
	if len(components) == 0 {
		return ""
	}
	return components[len(components)-1]
}

// Path pairs a Device with a path relative to that device. Two abstract
// paths compare equal only if both their device and relative paths compare
// equal under the device's own case policy.
type Path struct {
	Device Device
	Rel    RelativePath
}

// Equal reports whether two abstract paths refer to the same item, using the
// owning device's case policy for the relative-path comparison.
func (p Path) Equal(other Path) bool {
	if p.Device == nil || other.Device == nil {
		return p.Device == other.Device && p.Rel == other.Rel
	}
	if CompareDevice(p.Device, other.Device) != 0 {
		return false
	}
	return p.Device.SameRelativePath(p.Rel, other.Rel)
}

// Child returns the abstract path for a named child of p.
func (p Path) Child(name string) Path {
	return Path{Device: p.Device, Rel: p.Rel.Join(name)}
}

// Parent returns the abstract path of p's parent, if p is not at the device
// root.
func (p Path) Parent() (Path, bool) {
	parent, ok := p.Rel.Parent()
	if !ok {
		return Path{}, false
	}
	return Path{Device: p.Device, Rel: parent}, true
}

// String renders the path for diagnostic purposes.
func (p Path) String() string {
	if p.Device == nil {
		return string(p.Rel)
	}
	return p.Device.Root() + Separator + string(p.Rel)
}
