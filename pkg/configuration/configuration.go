// Package configuration implements the human-readable configuration format
// for the engine's batch/CLI entry point, adapted from the teacher's
// pkg/configuration/synchronization Configuration type and pkg/compose YAML
// loading pattern. FreeFileSync itself persists configuration as XML, but
// per spec.md §1 the XML serialization mechanics are explicitly out of
// scope; this package still needs to exist as ambient infrastructure for any
// CLI, so it follows the teacher's YAML convention instead.
package configuration

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/freefilesync/ffsync/pkg/compare"
	"github.com/freefilesync/ffsync/pkg/resolve"
	"github.com/freefilesync/ffsync/pkg/synchronize"
)

// CompareVariant mirrors compare.Variant for YAML decoding, since the
// compare package's own enum has no text (un)marshalling support.
type CompareVariant string

const (
	CompareByTimeAndSize CompareVariant = "timeAndSize"
	CompareByContent     CompareVariant = "content"
)

// toVariant converts a decoded CompareVariant to the compare package's enum,
// defaulting to ByTimeAndSize (the conservative, non-content-reading
// default) for an empty or unrecognized value.
func (v CompareVariant) toVariant() compare.Variant {
	if v == CompareByContent {
		return compare.ByContent
	}
	return compare.ByTimeAndSize
}

// SyncMode mirrors resolve.Mode for YAML decoding.
type SyncMode string

const (
	SyncTwoWay SyncMode = "twoWay"
	SyncMirror SyncMode = "mirror"
	SyncUpdate SyncMode = "update"
)

func (m SyncMode) toMode() resolve.Mode {
	switch m {
	case SyncMirror:
		return resolve.ModeMirror
	case SyncUpdate:
		return resolve.ModeUpdate
	default:
		return resolve.ModeTwoWay
	}
}

// DeletionMode mirrors synchronize.DeletionMode for YAML decoding.
type DeletionMode string

const (
	DeletionPermanent   DeletionMode = "permanent"
	DeletionRecycle     DeletionMode = "recycle"
	DeletionVersioning  DeletionMode = "versioning"
)

func (m DeletionMode) toMode() synchronize.DeletionMode {
	switch m {
	case DeletionVersioning:
		return synchronize.DeletionVersioning
	case DeletionRecycle:
		return synchronize.DeletionRecycle
	default:
		return synchronize.DeletionPermanent
	}
}

// FilterConfiguration is the YAML representation of spec §4.D's combined
// hard+soft filter.
type FilterConfiguration struct {
	// Include lists hard-filter masks; an item must match at least one
	// (an empty list matches everything).
	Include []string `yaml:"include"`
	// Exclude lists hard-filter masks that override Include.
	Exclude []string `yaml:"exclude"`
	// TimeFrom is the soft filter's modification-time cutoff, as seconds
	// since the Unix epoch. Zero disables the time bound.
	TimeFrom int64 `yaml:"timeFrom"`
	// SizeMin and SizeMax bound the soft filter's size window, in bytes.
	// A zero SizeMax disables the upper bound.
	SizeMin ByteSize `yaml:"sizeMin"`
	SizeMax ByteSize `yaml:"sizeMax"`
}

// VersioningConfiguration configures the versioner (spec §4.H) for a side
// that uses DeletionVersioning.
type VersioningConfiguration struct {
	// Directory is the path phrase for the versioning store.
	Directory string `yaml:"directory"`
	// Timestamped selects the timestamped naming style (versioning.StyleTimestamp)
	// instead of the flat-mirror replace style (versioning.StyleReplace).
	Timestamped bool `yaml:"timestamped"`
}

// SideConfiguration configures one side's deletion handling.
type SideConfiguration struct {
	// Deletion selects how items removed or superseded on this side are
	// disposed of.
	Deletion DeletionMode `yaml:"deletion"`
	// Versioning configures the versioning store when Deletion ==
	// DeletionVersioning.
	Versioning VersioningConfiguration `yaml:"versioning"`
}

// FolderPairConfiguration is one configured left/right directory pair, the
// YAML analogue of spec §3's "base folder pair".
type FolderPairConfiguration struct {
	// Left and Right are path phrases (spec §6), resolved through the AFS
	// factory — a native path, or an sftp:// URL.
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
	// Mode selects the direction-resolution strategy (spec §4.G).
	Mode SyncMode `yaml:"mode"`
	// Filter is this pair's local filter, combined with the global filter
	// by logical AND.
	Filter FilterConfiguration `yaml:"filter"`
	// LeftSide and RightSide configure each side's deletion policy.
	LeftSide  SideConfiguration `yaml:"leftSide"`
	RightSide SideConfiguration `yaml:"rightSide"`
}

// Configuration is the top-level, human-readable configuration for a
// comparison-and-sync run, decoded from YAML.
type Configuration struct {
	// FolderPairs lists every configured base folder pair.
	FolderPairs []FolderPairConfiguration `yaml:"folderPairs"`
	// CompareVariant selects the comparison algorithm (spec §4.F).
	CompareVariant CompareVariant `yaml:"compareVariant"`
	// TimeTolerance is the modification-time tolerance in seconds (spec §3
	// invariant 5; default 2).
	TimeTolerance int64 `yaml:"timeTolerance"`
	// FutureTimestampLimitDays bounds how far a modification time may sit
	// beyond now before a file/symlink pair is classified CONFLICT (spec
	// §4.F, §9 "timestamp future-guard"). Zero selects the 365-day default.
	FutureTimestampLimitDays int `yaml:"futureTimestampLimitDays"`
	// GlobalFilter applies to every folder pair, ANDed with each pair's
	// local filter.
	GlobalFilter FilterConfiguration `yaml:"globalFilter"`
	// Locking enables the sync.ffs_lock inter-process lock (spec §4.B) on
	// any base folder that exists.
	Locking bool `yaml:"locking"`
}

// Load reads and decodes a YAML configuration file from path.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read configuration file")
	}
	var config Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "unable to decode configuration file")
	}
	if config.TimeTolerance == 0 {
		config.TimeTolerance = 2
	}
	return &config, nil
}

// CompareOptions derives compare.Options for the top-level comparison
// variant and tolerance, without any per-pair filter (the caller merges
// global and local filters per pair before calling compare.Folder).
func (c *Configuration) CompareOptions() compare.Options {
	opts := compare.Options{
		Variant:       c.CompareVariant.toVariant(),
		TimeTolerance: c.TimeTolerance,
	}
	if c.FutureTimestampLimitDays > 0 {
		opts.FutureTimestampLimit = time.Duration(c.FutureTimestampLimitDays) * 24 * time.Hour
	}
	return opts
}

// ResolveOptions derives resolve.Options for one folder pair.
func (fp *FolderPairConfiguration) ResolveOptions(tolerance int64) resolve.Options {
	return resolve.Options{
		Mode:          fp.Mode.toMode(),
		TimeTolerance: tolerance,
	}
}
