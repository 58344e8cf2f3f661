package filter

import (
	"math"

	"github.com/freefilesync/ffsync/pkg/numeric"
)

// SoftFilter keeps an item if its modification time is at or after a cutoff
// and its size falls within [min, max]. Unlike the hard filter, it cannot be
// applied during traversal of a single folder: it may match only one side of
// a pair, so it is applied afterward as a pure predicate that marks pairs
// rather than one that can prune traversal.
type SoftFilter struct {
	timeFrom int64
	sizeMin  uint64
	sizeMax  uint64
}

// NewSoftFilter builds a SoftFilter from a Unix-epoch cutoff and a
// [sizeMin, sizeMax] byte range.
func NewSoftFilter(timeFrom int64, sizeMin, sizeMax uint64) SoftFilter {
	return SoftFilter{timeFrom: timeFrom, sizeMin: sizeMin, sizeMax: sizeMax}
}

// NoSoftFilter is the filter equivalent to no filtering at all: the lowest
// possible time bound and the full size range.
var NoSoftFilter = SoftFilter{timeFrom: math.MinInt64, sizeMin: 0, sizeMax: numeric.MaxUint64}

// IsNull reports whether the filter is equivalent to NoSoftFilter.
func (f SoftFilter) IsNull() bool {
	return f == NoSoftFilter
}

// MatchTime reports whether writeTime is at or after the cutoff.
func (f SoftFilter) MatchTime(writeTime int64) bool {
	return f.timeFrom <= writeTime
}

// MatchSize reports whether size falls within the configured range.
func (f SoftFilter) MatchSize(size uint64) bool {
	return f.sizeMin <= size && size <= f.sizeMax
}

// MatchFolder reports whether folders should be kept at all. When a date
// filter is active, folders are deactivated entirely so that empty folders
// (which have no modification time of their own to test) don't appear.
func (f SoftFilter) MatchFolder() bool {
	return f.timeFrom == math.MinInt64
}

// Combine merges two soft filters, taking the more restrictive bound on
// each axis (the later cutoff, the narrower size range).
func Combine(a, b SoftFilter) SoftFilter {
	result := SoftFilter{
		timeFrom: a.timeFrom,
		sizeMin:  a.sizeMin,
		sizeMax:  a.sizeMax,
	}
	if b.timeFrom > result.timeFrom {
		result.timeFrom = b.timeFrom
	}
	if b.sizeMin > result.sizeMin {
		result.sizeMin = b.sizeMin
	}
	if b.sizeMax < result.sizeMax {
		result.sizeMax = b.sizeMax
	}
	return result
}
