package configuration

import (
	"math"
	"strings"

	"github.com/freefilesync/ffsync/pkg/comparison"
	"github.com/freefilesync/ffsync/pkg/filter"
	"github.com/freefilesync/ffsync/pkg/numeric"
)

// masksSeparator and listSeparator let EncodeMasks/DecodeMasks round-trip
// the include and exclude lists through a single flat byte slice, the form
// the sync-state database stores alongside a snapshot (spec §4.E).
const (
	listSeparator  = "\x00"
	masksSeparator = "\x01"
)

// EncodeMasks serializes fc's include/exclude mask lists to the flat form
// persisted as a snapshot's FilterHard payload.
func (fc FilterConfiguration) EncodeMasks() []byte {
	return []byte(strings.Join(fc.Include, listSeparator) + masksSeparator + strings.Join(fc.Exclude, listSeparator))
}

// DecodeMasks is the inverse of EncodeMasks.
func DecodeMasks(data []byte) (include, exclude []string) {
	parts := strings.SplitN(string(data), masksSeparator, 2)
	if len(parts[0]) > 0 {
		include = strings.Split(parts[0], listSeparator)
	}
	if len(parts) > 1 && len(parts[1]) > 0 {
		exclude = strings.Split(parts[1], listSeparator)
	}
	return include, exclude
}

// MasksChanged reports whether fc's include/exclude masks differ from a
// snapshot's previously recorded FilterHard payload, so a later run can
// detect that its cached EQUAL determinations (recorded under a now-stale
// filter) should no longer be trusted for two-way resolution.
func (fc FilterConfiguration) MasksChanged(previous []byte) bool {
	include, exclude := DecodeMasks(previous)
	return !comparison.StringSlicesEqual(fc.Include, include) || !comparison.StringSlicesEqual(fc.Exclude, exclude)
}

// Filter builds a filter.Filter from a decoded FilterConfiguration.
func (fc FilterConfiguration) Filter(caseInsensitive bool) filter.Filter {
	var hard *filter.HardFilter
	if len(fc.Include) > 0 || len(fc.Exclude) > 0 {
		hard = filter.NewHardFilter(fc.Include, fc.Exclude, caseInsensitive)
	}
	timeFrom := fc.TimeFrom
	if timeFrom == 0 {
		timeFrom = math.MinInt64
	}
	sizeMax := uint64(fc.SizeMax)
	if sizeMax == 0 {
		sizeMax = numeric.MaxUint64
	}
	soft := filter.NewSoftFilter(timeFrom, uint64(fc.SizeMin), sizeMax)
	return filter.New(hard, soft)
}

// Merge combines a folder pair's local filter with the run's global filter:
// include/exclude masks concatenate (matching either list includes/excludes
// an item), and the soft filter's time/size bounds combine to the tighter
// of the two per filter.Combine.
func (fc FilterConfiguration) Merge(global FilterConfiguration) FilterConfiguration {
	merged := FilterConfiguration{
		Include:  append(append([]string{}, global.Include...), fc.Include...),
		Exclude:  append(append([]string{}, global.Exclude...), fc.Exclude...),
		TimeFrom: fc.TimeFrom,
		SizeMin:  fc.SizeMin,
		SizeMax:  fc.SizeMax,
	}
	if global.TimeFrom > merged.TimeFrom {
		merged.TimeFrom = global.TimeFrom
	}
	if global.SizeMin > merged.SizeMin {
		merged.SizeMin = global.SizeMin
	}
	if merged.SizeMax == 0 || (global.SizeMax != 0 && global.SizeMax < merged.SizeMax) {
		merged.SizeMax = global.SizeMax
	}
	return merged
}
