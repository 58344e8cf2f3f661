// Package synchronize implements the sync executor (spec §4.I): it turns a
// resolved, filtered hierarchy into an ordered operation plan and applies it
// against both AFS sides, coordinating deletion policy, versioning, retry,
// progress reporting, and cooperative pause/abort. Grounded on the teacher's
// pkg/state condition-variable primitives for the progress/cancellation
// backbone, and on pkg/synchronization/core's plan-then-apply structure for
// the overall executor shape.
package synchronize

import "fmt"

// Phase identifies where a synchronization run is in its per-base-folder
// state machine.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseScanning
	PhaseComparingContent
	PhaseSynchronizing
	PhaseFinishedOK
	PhaseFinishedWarn
	PhaseAborted
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "NONE"
	case PhaseScanning:
		return "SCANNING"
	case PhaseComparingContent:
		return "COMPARING_CONTENT"
	case PhaseSynchronizing:
		return "SYNCHRONIZING"
	case PhaseFinishedOK:
		return "FINISHED_OK"
	case PhaseFinishedWarn:
		return "FINISHED_WARN"
	case PhaseAborted:
		return "ABORTED"
	case PhasePaused:
		return "PAUSED"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// terminal reports whether p is one of the three run-ending phases.
func (p Phase) terminal() bool {
	switch p {
	case PhaseFinishedOK, PhaseFinishedWarn, PhaseAborted:
		return true
	default:
		return false
	}
}
