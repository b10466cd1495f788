package sampler

import (
	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/source"
)

// Utilization converts a cumulative tick count into CPU time per wall
// second: (activeTicks/ticksPerSecond)/elapsedSeconds. The result is not
// clamped; a process running on several cores can exceed 1.
//
// An elapsed time of zero yields exactly 1.0, so a process that has only
// just started reads as fully busy.
func Utilization(activeTicks uint64, elapsedSeconds float64, ticksPerSecond int64) float64 {
	if ticksPerSecond <= 0 {
		ticksPerSecond = source.DefaultClockTicks
	}
	if elapsedSeconds <= 0 {
		return 1.0
	}
	return float64(activeTicks) / float64(ticksPerSecond) / elapsedSeconds
}

// SystemCPU is the share of active time in all CPU time since boot.
// It is a ratio of cumulative counters, not a delta between samples.
func SystemCPU(b model.CPUBuckets) float64 {
	return clamp01(safeDiv(b.Active(), b.Total()))
}

// MemoryUtilization is (total-free)/total, in [0,1]. Zero total gives 0.
func MemoryUtilization(totalKB, freeKB uint64) float64 {
	if totalKB == 0 || freeKB >= totalKB {
		return 0
	}
	return clamp01(float64(totalKB-freeKB) / float64(totalKB))
}
