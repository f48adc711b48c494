// Package delta turns pairs of cumulative counter readings into rates and
// ratios.
package delta

import (
	"errors"
	"math"

	"github.com/Dicklesworthstone/statusline/internal/model"
)

var (
	// ErrNoElapsed is returned when the two samples are not strictly ordered
	// in time.
	ErrNoElapsed = errors.New("delta: non-positive elapsed time")
	// ErrCounterReset is returned when a counter went backwards: the interface
	// was re-created, the counter wrapped, or the core was renumbered.
	ErrCounterReset = errors.New("delta: counter went backwards")
)

// Rate is the per-second increase from prev to curr.
func Rate(prev, curr uint64, elapsed float64) (float64, error) {
	if !(elapsed > 0) || math.IsInf(elapsed, 0) {
		return 0, ErrNoElapsed
	}
	if curr < prev {
		return 0, ErrCounterReset
	}
	return float64(curr-prev) / elapsed, nil
}

// BitRate is Rate on byte counters expressed in bits per second.
func BitRate(prev, curr uint64, elapsed float64) (float64, error) {
	r, err := Rate(prev, curr, elapsed)
	return r * 8, err
}

// CPULoad is the share of ticks spent working between two readings of the
// same core, clamped to [0,1].
func CPULoad(prev, curr model.CPUCounters) (float64, error) {
	if curr.Total < prev.Total {
		return 0, ErrCounterReset
	}
	totalDelta := curr.Total - prev.Total
	if totalDelta == 0 {
		return 0, nil
	}
	workDelta := float64(curr.Work()) - float64(prev.Work())
	return clamp01(workDelta / float64(totalDelta)), nil
}

// MemoryUsed is 1 - (free+buffers+cached)/total, clamped to [0,1].
func MemoryUsed(m model.Memory) float64 {
	if m.TotalKB == 0 {
		return 0
	}
	avail := float64(m.FreeKB) + float64(m.BuffersKB) + float64(m.CachedKB)
	return clamp01(1 - avail/float64(m.TotalKB))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
