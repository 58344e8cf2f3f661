package synchronize

import (
	"sync"
	"time"

	"github.com/freefilesync/ffsync/pkg/state"
)

// throughputWindow and etaWindow are the two rolling windows spec §4.I
// requires: a short one for a responsive current-speed display, and a
// longer one to smooth the ETA estimate.
const (
	throughputWindow = 5 * time.Second
	etaWindow        = 10 * time.Second
	displayTick      = 500 * time.Millisecond
)

// sample is one (objectsDelta, bytesDelta) observation, keyed by wall-clock
// time so the rolling windows can be recomputed by simple truncation rather
// than a fixed-size ring buffer — the executor's update cadence isn't
// constant, so a time-keyed multiset is the natural fit.
type sample struct {
	at      time.Time
	objects int64
	bytes   int64
}

// Snapshot is a point-in-time read of Statistics, cheap to copy and safe to
// hand to a UI thread.
type Snapshot struct {
	DoneObjects, TotalObjects int64
	DoneBytes, TotalBytes     int64
	BytesPerSecond            float64
	ETA                       time.Duration
}

// Statistics tracks progress for one synchronization run: cumulative
// done/total counts (which the executor may revise up or down mid-run, e.g.
// when a detected move turns into a copy+delete, or a bytewise compare
// short-circuits and shrinks the remaining work) and a smoothed throughput
// and ETA derived from the two rolling windows. Mutated by the worker,
// read by the host; every access is guarded by a short, uncontended mutex,
// matching spec §5's "shared resources" model.
type Statistics struct {
	mu sync.Mutex

	totalObjects, totalBytes int64
	doneObjects, doneBytes   int64
	samples                  []sample

	lastETA   time.Duration
	lastETAAt time.Time

	tracker *state.Tracker
	now     func() time.Time
}

// NewStatistics creates a Statistics for a plan with the given totals.
func NewStatistics(totalObjects, totalBytes int64) *Statistics {
	return &Statistics{
		totalObjects: totalObjects,
		totalBytes:   totalBytes,
		tracker:      state.NewTracker(),
		now:          time.Now,
	}
}

// Tracker exposes the change tracker a host can poll via WaitForChange.
func (s *Statistics) Tracker() *state.Tracker { return s.tracker }

// Update records completed work. Deltas may be negative when prior work is
// superseded, per spec §4.I.
func (s *Statistics) Update(objectsDelta, bytesDelta int64) {
	now := s.now()
	s.mu.Lock()
	s.doneObjects += objectsDelta
	s.doneBytes += bytesDelta
	s.samples = append(s.samples, sample{at: now, objects: objectsDelta, bytes: bytesDelta})
	s.pruneLocked(now)
	s.mu.Unlock()
	s.tracker.NotifyOfChange()
}

// AdjustTotals revises the plan's remaining totals up or down without
// counting the adjustment itself as completed work.
func (s *Statistics) AdjustTotals(objectsDelta, bytesDelta int64) {
	s.mu.Lock()
	s.totalObjects += objectsDelta
	s.totalBytes += bytesDelta
	s.mu.Unlock()
	s.tracker.NotifyOfChange()
}

func (s *Statistics) pruneLocked(now time.Time) {
	cutoff := now.Add(-etaWindow)
	i := 0
	for i < len(s.samples) && s.samples[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.samples = s.samples[i:]
	}
}

// Snapshot computes a throughput/ETA snapshot as of now. ETA is snapped to
// human-readable granularity and, within a single displayTick, never allowed
// to increase, so a UI polling faster than the tick never sees it flicker
// upward.
func (s *Statistics) Snapshot() Snapshot {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	var bytes5s, bytes10s int64
	cutoff5 := now.Add(-throughputWindow)
	for _, sm := range s.samples {
		bytes10s += sm.bytes
		if !sm.at.Before(cutoff5) {
			bytes5s += sm.bytes
		}
	}

	throughput := float64(bytes5s) / throughputWindow.Seconds()

	remaining := s.totalBytes - s.doneBytes
	var eta time.Duration
	if remaining > 0 && bytes10s > 0 {
		rate := float64(bytes10s) / etaWindow.Seconds()
		if rate > 0 {
			eta = time.Duration(float64(remaining) / rate * float64(time.Second))
		}
	}
	eta = snapETA(eta)

	if now.Sub(s.lastETAAt) >= displayTick {
		if s.lastETA != 0 && eta > s.lastETA {
			eta = s.lastETA
		}
		s.lastETA = eta
		s.lastETAAt = now
	} else {
		eta = s.lastETA
	}

	return Snapshot{
		DoneObjects:    s.doneObjects,
		TotalObjects:   s.totalObjects,
		DoneBytes:      s.doneBytes,
		TotalBytes:     s.totalBytes,
		BytesPerSecond: throughput,
		ETA:            eta,
	}
}

// snapETA rounds d up to a human-readable granularity: 5-second steps under
// a minute, minute steps under an hour, 5-minute steps beyond that.
func snapETA(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return 0
	case d < time.Minute:
		return roundUp(d, 5*time.Second)
	case d < time.Hour:
		return roundUp(d, time.Minute)
	default:
		return roundUp(d, 5*time.Minute)
	}
}

func roundUp(d, unit time.Duration) time.Duration {
	if d%unit == 0 {
		return d
	}
	return d - d%unit + unit
}
