// Package engine ties together the five subsystems (AFS, hierarchy, compare,
// resolve, synchronize) into the top-level pipeline: extract configuration,
// acquire locks, scan+classify, resolve directions, execute. It's the
// single entry point for both the compare-only and full-sync CLI commands.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/freefilesync/ffsync/pkg/afs"
	"github.com/freefilesync/ffsync/pkg/afs/native"
	"github.com/freefilesync/ffsync/pkg/afs/sftp"
	"github.com/freefilesync/ffsync/pkg/compare"
	"github.com/freefilesync/ffsync/pkg/configuration"
	"github.com/freefilesync/ffsync/pkg/database"
	"github.com/freefilesync/ffsync/pkg/hierarchy"
	"github.com/freefilesync/ffsync/pkg/lock"
	"github.com/freefilesync/ffsync/pkg/logging"
	"github.com/freefilesync/ffsync/pkg/must"
	"github.com/freefilesync/ffsync/pkg/recycle"
	"github.com/freefilesync/ffsync/pkg/resolve"
	"github.com/freefilesync/ffsync/pkg/synchronize"
	"github.com/freefilesync/ffsync/pkg/versioning"
)

// backends is the ordered list of path-phrase resolvers the factory tries,
// sftp:// first since it recognizes a scheme prefix, native last as the
// catch-all default (spec §6: "resolution is greedy: the first backend that
// claims the phrase resolves it").
func backends() []afs.Backend {
	return []afs.Backend{
		sftp.Backend{},
		native.Backend{},
	}
}

// PairResult summarizes one base folder pair's outcome, returned per pair so
// a batch run over several folder pairs can report each independently
// rather than aborting the whole run on one pair's failure.
type PairResult struct {
	Index          int
	Phase          synchronize.Phase
	Resolve        resolve.Result
	Plan           *synchronize.Plan
	Warnings       []string
	Err            error
}

// Options controls one invocation of Run.
type Options struct {
	Config   *configuration.Configuration
	DryRun   bool
	Logger   *logging.Logger
	Progress func(pairIndex int, snapshot synchronize.Snapshot)
}

// Run executes the full pipeline for every configured folder pair in order,
// returning one PairResult per pair. A pair-level error doesn't abort
// subsequent pairs — it's recorded on that pair's result, matching the
// batch-mode error policy of spec §7 ("continue past recoverable
// per-operation errors; a run-ending error is reserved for genuinely fatal
// conditions").
func Run(ctx context.Context, opts Options) ([]PairResult, error) {
	if opts.Config == nil {
		return nil, errors.New("no configuration supplied")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.RootLogger
	}

	results := make([]PairResult, len(opts.Config.FolderPairs))
	for i, fp := range opts.Config.FolderPairs {
		result := runPair(ctx, i, fp, opts, logger)
		results[i] = result
	}
	return results, nil
}

func runPair(ctx context.Context, index int, fp configuration.FolderPairConfiguration, opts Options, logger *logging.Logger) PairResult {
	result := PairResult{Index: index}

	leftDevice, leftRel, err := afs.Resolve(afs.PathPhrase(fp.Left), backends())
	if err != nil {
		result.Err = errors.Wrap(err, "unable to resolve left path")
		return result
	}
	rightDevice, rightRel, err := afs.Resolve(afs.PathPhrase(fp.Right), backends())
	if err != nil {
		result.Err = errors.Wrap(err, "unable to resolve right path")
		return result
	}

	leftPath := afs.Path{Device: leftDevice, Rel: leftRel}
	rightPath := afs.Path{Device: rightDevice, Rel: rightRel}

	leftExisting := probeExists(leftDevice, leftRel)
	rightExisting := probeExists(rightDevice, rightRel)

	var locks []*lock.Handle
	if opts.Config.Locking {
		if h, err := acquireIfPresent(ctx, leftDevice, leftRel, leftExisting, logger); err == nil && h != nil {
			locks = append(locks, h)
		} else if err != nil {
			result.Warnings = append(result.Warnings, "unable to acquire left lock: "+err.Error())
		}
		if h, err := acquireIfPresent(ctx, rightDevice, rightRel, rightExisting, logger); err == nil && h != nil {
			locks = append(locks, h)
		} else if err != nil {
			result.Warnings = append(result.Warnings, "unable to acquire right lock: "+err.Error())
		}
	}
	defer func() {
		for _, h := range locks {
			must.Release(h, logger)
		}
	}()

	base := &hierarchy.BaseFolderPair{
		Paths:    [2]afs.Path{leftPath, rightPath},
		Existing: [2]bool{leftExisting, rightExisting},
	}

	mergedFilter := fp.Filter.Merge(opts.Config.GlobalFilter)
	caseInsensitive := leftDevice.CaseInsensitive() || rightDevice.CaseInsensitive()
	builtFilter := mergedFilter.Filter(caseInsensitive)

	compareOpts := opts.Config.CompareOptions()
	compareOpts.Filter = builtFilter
	compareOpts.Logger = logger.Sublogger(fmt.Sprintf("compare[%d]", index))

	if err := compare.Folder(ctx, base, compareOpts); err != nil {
		result.Err = errors.Wrap(err, "comparison failed")
		return result
	}

	leftUUID, rightUUID := pairUUIDs(leftPath, rightPath)

	var previous *database.DirInformation
	if fp.Mode == configuration.SyncTwoWay {
		if snap, err := database.Load(rightDevice, rightRel, leftUUID); err == nil {
			if mergedFilter.MasksChanged(snap.FilterHard) {
				result.Warnings = append(result.Warnings, "filter changed since last sync-state database was written; falling back to default resolution")
			} else {
				previous = &snap
			}
		} else if !afs.IsKind(err, afs.ErrorKindDatabaseNotExisting) {
			result.Warnings = append(result.Warnings, "unable to load sync database: "+err.Error())
		}
	}

	resolveOpts := fp.ResolveOptions(opts.Config.TimeTolerance)
	resolveOpts.Filter = builtFilter
	resolveOpts.Logger = logger.Sublogger(fmt.Sprintf("resolve[%d]", index))
	result.Resolve = resolve.Base(base, previous, resolveOpts)
	if result.Resolve.FallbackReason != "" {
		result.Warnings = append(result.Warnings, result.Resolve.FallbackReason)
	}

	base.Root.PruneEmpty()

	plan := synchronize.Build(base)
	result.Plan = plan
	for _, c := range plan.Conflicts {
		result.Warnings = append(result.Warnings, "conflict at "+c.RelPath+": "+c.Message)
	}

	if opts.DryRun {
		result.Phase = synchronize.PhaseFinishedOK
		return result
	}

	leftPolicy, leftWarn := buildDeletionPolicy(fp.LeftSide, leftDevice, logger)
	rightPolicy, rightWarn := buildDeletionPolicy(fp.RightSide, rightDevice, logger)
	result.Warnings = append(result.Warnings, leftWarn...)
	result.Warnings = append(result.Warnings, rightWarn...)

	control := synchronize.NewControl()
	callback := &warningCallback{result: &result}
	stats := synchronize.NewStatistics(plan.TotalObjects, plan.TotalBytes)

	executor := &synchronize.Executor{
		Base:     base,
		Deleter:  synchronize.NewDeleter(leftPolicy, rightPolicy, callback),
		Control:  control,
		Callback: callback,
		Stats:    stats,
		Logger:   logger.Sublogger(fmt.Sprintf("sync[%d]", index)),
	}

	if opts.Progress != nil {
		go reportProgress(ctx, stats, index, opts.Progress)
	}

	phase, err := executor.Execute(ctx, plan)
	result.Phase = phase
	if err != nil {
		result.Err = errors.Wrap(err, "synchronization failed")
		return result
	}

	if phase != synchronize.PhaseAborted {
		variant := "timeAndSize"
		if opts.Config.CompareVariant == configuration.CompareByContent {
			variant = "content"
		}
		var prevInfo database.DirInformation
		if previous != nil {
			prevInfo = *previous
		}
		// Both sides' databases record the same merged tree: each partner's
		// entry for the other is built from the one post-sync hierarchy both
		// sides now agree on.
		newInfo := database.BuildDirInformation(&base.Root, prevInfo, variant, mergedFilter.EncodeMasks())
		if err := database.Save(leftDevice, leftRel, leftUUID, newInfo, rightDevice, rightRel, rightUUID, newInfo); err != nil {
			result.Warnings = append(result.Warnings, "unable to save sync database: "+err.Error())
		}
	}

	return result
}

func probeExists(device afs.Device, rel afs.RelativePath) bool {
	_, err := device.ItemType(rel)
	return err == nil
}

func acquireIfPresent(ctx context.Context, device afs.Device, rel afs.RelativePath, existing bool, logger *logging.Logger) (*lock.Handle, error) {
	if !existing {
		return nil, nil
	}
	return lock.Acquire(ctx, device, rel, logger)
}

func buildDeletionPolicy(side configuration.SideConfiguration, device afs.Device, logger *logging.Logger) (synchronize.DeletionPolicy, []string) {
	policy := synchronize.DeletionPolicy{Mode: side.Deletion.toMode()}
	var warnings []string
	switch policy.Mode {
	case synchronize.DeletionRecycle:
		policy.Recycler = recycle.New()
	case synchronize.DeletionVersioning:
		versionDevice, versionRel, err := afs.Resolve(afs.PathPhrase(side.Versioning.Directory), backends())
		if err != nil {
			warnings = append(warnings, "unable to resolve versioning directory: "+err.Error())
			policy.Mode = synchronize.DeletionPermanent
			return policy, warnings
		}
		style := versioning.StyleReplace
		if side.Versioning.Timestamped {
			style = versioning.StyleTimestamp
		}
		policy.Versioner = versioning.New(versionDevice, versionRel, style, logger)
	}
	return policy, warnings
}

// pairUUIDs derives stable, deterministic identifiers for the two sides of a
// base folder pair from their resolved paths, so that the database's
// partner-UUID bookkeeping (spec §4.E, §6) doesn't require a separate
// persisted identity file: the same folder pair always derives the same
// pair of UUIDs across runs.
func pairUUIDs(left, right afs.Path) (string, string) {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	leftUUID := uuid.NewSHA1(namespace, []byte(left.String()))
	rightUUID := uuid.NewSHA1(namespace, []byte(right.String()))
	return leftUUID.String(), rightUUID.String()
}

// warningCallback adapts synchronize.Callback to accumulate warnings and
// errors onto a PairResult rather than printing immediately, so the CLI
// layer controls final presentation.
type warningCallback struct {
	result *PairResult
}

func (c *warningCallback) HandleError(what string, err error) synchronize.ErrorAction {
	c.result.Warnings = append(c.result.Warnings, what+": "+err.Error())
	return synchronize.ErrorIgnore
}

func (c *warningCallback) Warn(what string) {
	c.result.Warnings = append(c.result.Warnings, what)
}

func reportProgress(ctx context.Context, stats *synchronize.Statistics, index int, report func(int, synchronize.Snapshot)) {
	tracker := stats.Tracker()
	var previousIndex uint64
	for {
		next, err := tracker.WaitForChange(ctx, previousIndex)
		if err != nil {
			return
		}
		previousIndex = next
		report(index, stats.Snapshot())
	}
}
