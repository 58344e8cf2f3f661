package compare

import (
	"io"
	"time"

	"github.com/freefilesync/ffsync/pkg/afs"
)

// minCompareBuffer and maxCompareBuffer bound the dynamically sized read
// buffer used by the bytewise compare loop. The buffer grows or shrinks so
// that each read cycle stays between compareCycleFloor and
// compareCycleCeiling, keeping progress
// reporting responsive without sacrificing throughput on fast links.
const (
	minCompareBuffer = 128 * 1024
	maxCompareBuffer = 16 * 1024 * 1024

	compareCycleFloor   = 200 * time.Millisecond
	compareCycleCeiling = 500 * time.Millisecond
)

// filesHaveSameContent streams the two sides of the file pair at rel in
// lockstep, comparing content byte-for-byte. The caller has already verified
// that both sides report the same size; a mismatched stream length here
// indicates the file changed underfoot during the scan and is treated as a
// difference, not an error.
func (m *merger) filesHaveSameContent(rel afs.RelativePath) (bool, error) {
	left, err := m.leftDevice.OpenInput(rel)
	if err != nil {
		return false, err
	}
	defer left.Close()

	right, err := m.rightDevice.OpenInput(rel)
	if err != nil {
		return false, err
	}
	defer right.Close()

	bufSize := minCompareBuffer
	leftBuf := make([]byte, bufSize)
	rightBuf := make([]byte, bufSize)

	for {
		if err := m.ctx.Err(); err != nil {
			return false, err
		}

		if len(leftBuf) != bufSize {
			leftBuf = make([]byte, bufSize)
			rightBuf = make([]byte, bufSize)
		}

		start := time.Now()
		leftN, leftErr := io.ReadFull(left, leftBuf)
		rightN, rightErr := io.ReadFull(right, rightBuf)
		elapsed := time.Since(start)

		if leftN != rightN {
			return false, nil
		}
		if leftN > 0 && string(leftBuf[:leftN]) != string(rightBuf[:rightN]) {
			return false, nil
		}

		leftDone := leftErr == io.EOF || leftErr == io.ErrUnexpectedEOF
		rightDone := rightErr == io.EOF || rightErr == io.ErrUnexpectedEOF
		if leftDone != rightDone {
			return false, nil
		}
		if leftDone {
			return true, nil
		}
		if leftErr != nil {
			return false, leftErr
		}
		if rightErr != nil {
			return false, rightErr
		}

		bufSize = nextBufferSize(bufSize, elapsed)
	}
}

// nextBufferSize adapts the read buffer size so that the next cycle's
// duration lands within [compareCycleFloor, compareCycleCeiling], clamped to
// [minCompareBuffer, maxCompareBuffer].
func nextBufferSize(current int, elapsed time.Duration) int {
	switch {
	case elapsed < compareCycleFloor && current < maxCompareBuffer:
		next := current * 2
		if next > maxCompareBuffer {
			next = maxCompareBuffer
		}
		return next
	case elapsed > compareCycleCeiling && current > minCompareBuffer:
		next := current / 2
		if next < minCompareBuffer {
			next = minCompareBuffer
		}
		return next
	default:
		return current
	}
}
