package synchronize

import (
	"context"
	"sync"

	"github.com/freefilesync/ffsync/pkg/state"
)

// ErrorAction is the caller's decision on how to proceed after a recoverable
// filesystem error during execution.
type ErrorAction int

const (
	// ErrorIgnore logs the error and skips the offending operation.
	ErrorIgnore ErrorAction = iota
	// ErrorRetry retries the operation that produced the error.
	ErrorRetry
	// ErrorAbort propagates the error, unwinding the run.
	ErrorAbort
)

// Callback is the executor's host interface: error recovery decisions and
// warning delivery. Every externally visible filesystem call is routed
// through HandleError so that retry/ignore/abort is a uniform, injectable
// policy rather than scattered per-call logic, matching the teacher's
// coroutine-like callback pattern described for ProcessCallback.
type Callback interface {
	// HandleError is invoked when an operation fails; what identifies the
	// failing step. It may be called repeatedly for the same operation if
	// the result is ErrorRetry.
	HandleError(what string, err error) ErrorAction
	// Warn records a non-fatal condition that doesn't stop the run but
	// should surface to the user (e.g. a requested recycler being
	// unavailable, or a conflict that was skipped).
	Warn(what string)
}

// Control is the cooperative pause/abort surface shared between the
// executor and its host: a Marker for abort-requested, since abort is a
// one-way latch the worker only ever observes, and a mutex-guarded pause
// gate that (unlike Marker) the host can clear again with Resume. Phase
// changes broadcast through a Tracker so a UI can react without polling a
// plain variable. Grounded on pkg/state's Marker/Tracker, used here for
// exactly the purpose the teacher built them for: lightweight signaling
// between a worker and its observer.
type Control struct {
	abortRequested state.Marker
	phase          *state.Tracker

	pauseMu sync.Mutex
	paused  bool
	resumed *sync.Cond
}

// NewControl creates a Control ready for one synchronization run.
func NewControl() *Control {
	c := &Control{phase: state.NewTracker()}
	c.resumed = sync.NewCond(&c.pauseMu)
	return c
}

// RequestAbort marks the run for cancellation; the worker observes this at
// its next suspension point. It also wakes a paused worker so the abort is
// observed promptly rather than only after a later Resume.
func (c *Control) RequestAbort() {
	c.abortRequested.Mark()
	c.resumed.Broadcast()
}

// AbortRequested reports whether RequestAbort has been called.
func (c *Control) AbortRequested() bool { return c.abortRequested.Marked() }

// Pause blocks the worker's suspension points until Resume is called.
func (c *Control) Pause() {
	c.pauseMu.Lock()
	c.paused = true
	c.pauseMu.Unlock()
}

// Resume releases a paused worker.
func (c *Control) Resume() {
	c.pauseMu.Lock()
	c.paused = false
	c.pauseMu.Unlock()
	c.resumed.Broadcast()
}

// PhaseTracker exposes the phase-change tracker for a host to poll.
func (c *Control) PhaseTracker() *state.Tracker { return c.phase }

// checkSuspension is invoked by the executor at every suspension point
// (callback invocations, stream reads/writes, and between high-level
// operations, per spec §5): it blocks cooperatively while paused, then
// returns an error if abort was requested or ctx was cancelled.
func (c *Control) checkSuspension(ctx context.Context) error {
	c.pauseMu.Lock()
	for c.paused && !c.abortRequested.Marked() {
		c.resumed.Wait()
	}
	c.pauseMu.Unlock()

	if c.abortRequested.Marked() {
		return context.Canceled
	}
	return ctx.Err()
}
