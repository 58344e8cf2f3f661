// Package filter implements the two-layer include/exclude predicate applied
// to every scanned item: a hard (name mask) filter and a soft (size/time)
// filter, combined by logical AND. Filters never cause traversal-time
// errors; they act as pure predicates over scanned items.
package filter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// HardFilter is the name-mask filter: an include list and an exclude list
// of path masks, using "*" (zero or more) and "?" (exactly one) plus the
// path separator. A trailing separator restricts a mask to directories.
// Evaluation is case-insensitive when caseInsensitive is set (mirroring the
// owning device's case policy).
type HardFilter struct {
	include         []string
	exclude         []string
	caseInsensitive bool
}

// NewHardFilter builds a HardFilter from raw include/exclude mask lists (one
// mask per line, matching the source configuration format). An empty
// include list means "include everything."
func NewHardFilter(include, exclude []string, caseInsensitive bool) *HardFilter {
	return &HardFilter{
		include:         normalizeMasks(include, caseInsensitive),
		exclude:         normalizeMasks(exclude, caseInsensitive),
		caseInsensitive: caseInsensitive,
	}
}

func normalizeMasks(masks []string, caseInsensitive bool) []string {
	normalized := make([]string, 0, len(masks))
	for _, mask := range masks {
		mask = strings.TrimSpace(mask)
		if mask == "" {
			continue
		}
		if caseInsensitive {
			mask = strings.ToLower(mask)
		}
		normalized = append(normalized, mask)
	}
	return normalized
}

// IsNull reports whether the filter is equivalent to no filtering at all
// (both lists empty). Callers can use this to skip filter evaluation
// entirely on the hot path.
func (f *HardFilter) IsNull() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}

func (f *HardFilter) fold(path string) string {
	if f.caseInsensitive {
		return strings.ToLower(path)
	}
	return path
}

func matchesAny(masks []string, path string) bool {
	for _, mask := range masks {
		trailingSlash := strings.HasSuffix(mask, "/")
		trimmedMask := strings.TrimSuffix(mask, "/")
		if ok, _ := doublestar.Match(trimmedMask, path); ok {
			return true
		}
		if trailingSlash {
			// A directory-only mask also matches any path beneath it.
			if ok, _ := doublestar.Match(trimmedMask+"/**", path); ok {
				return true
			}
		}
	}
	return false
}

// PassFile reports whether relPath passes the hard filter as a file.
func (f *HardFilter) PassFile(relPath string) bool {
	path := f.fold(relPath)
	if len(f.include) > 0 && !matchesAny(f.include, path) {
		return false
	}
	if matchesAny(f.exclude, path) {
		return false
	}
	return true
}

// PassFolder reports whether relPath passes the hard filter as a folder. If
// it does not, subObjMightMatch reports whether any descendant path could
// still match some rule, used by the scanner to decide whether to prune
// traversal of the folder's subtree entirely.
func (f *HardFilter) PassFolder(relPath string) (pass bool, subObjMightMatch bool) {
	if f.PassFile(relPath) {
		return true, true
	}

	// A descendant might still match if any include mask could plausibly
	// match something under this folder (a prefix relationship), or if no
	// include list is configured at all (everything is included by
	// default, so descendants are only constrained by excludes, which can
	// never promote a match — but they also can't preclude unvisited
	// descendants from matching different, non-excluded names).
	path := f.fold(relPath)
	if len(f.include) == 0 {
		return false, true
	}
	for _, mask := range f.include {
		if strings.HasPrefix(mask, path+"/") || strings.HasPrefix(path, strings.TrimSuffix(mask, "/**")) {
			return false, true
		}
	}
	return false, false
}
