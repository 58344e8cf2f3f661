package filter

// Filter is the combined hard+soft predicate applied to scanned items. The
// two layers combine by logical AND: an item must pass both to be included.
type Filter struct {
	Hard *HardFilter
	Soft SoftFilter
}

// New combines a hard and a soft filter.
func New(hard *HardFilter, soft SoftFilter) Filter {
	return Filter{Hard: hard, Soft: soft}
}

// IsNull reports whether both layers are equivalent to no filtering.
func (f Filter) IsNull() bool {
	return (f.Hard == nil || f.Hard.IsNull()) && f.Soft.IsNull()
}

// PassFileTwoSided reports whether a two-sided file item is kept: the hard
// filter must pass for its path, and the soft filter must match on at least
// one side (since the soft filter may legitimately match only one side of a
// pair).
func (f Filter) PassFileTwoSided(relPath string, leftPresent bool, leftSize uint64, leftTime int64, rightPresent bool, rightSize uint64, rightTime int64) bool {
	if f.Hard != nil && !f.Hard.PassFile(relPath) {
		return false
	}
	if f.Soft.IsNull() {
		return true
	}
	leftMatch := leftPresent && f.Soft.MatchTime(leftTime) && f.Soft.MatchSize(leftSize)
	rightMatch := rightPresent && f.Soft.MatchTime(rightTime) && f.Soft.MatchSize(rightSize)
	return leftMatch || rightMatch
}

// PassSymlinkTwoSided reports whether a two-sided symlink item is kept: the
// hard filter must pass, and the soft filter's time bound must match on at
// least one side (symlinks have no independent size to test).
func (f Filter) PassSymlinkTwoSided(relPath string, leftPresent bool, leftTime int64, rightPresent bool, rightTime int64) bool {
	if f.Hard != nil && !f.Hard.PassFile(relPath) {
		return false
	}
	if f.Soft.IsNull() {
		return true
	}
	return (leftPresent && f.Soft.MatchTime(leftTime)) || (rightPresent && f.Soft.MatchTime(rightTime))
}

// PassFolder reports whether a folder item is kept, and whether descendants
// might still match (used to prune traversal). An active date filter
// deactivates all folders outright.
func (f Filter) PassFolder(relPath string) (pass bool, subObjMightMatch bool) {
	if !f.Soft.MatchFolder() {
		return false, true
	}
	if f.Hard == nil {
		return true, true
	}
	return f.Hard.PassFolder(relPath)
}
