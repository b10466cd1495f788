// Package source defines the counter source the sampler reads from.
//
// A Source is a read-only, possibly failing provider of raw cumulative
// counters. Implementations live in the procfs (Linux /proc) and psutil
// (gopsutil, portable) subpackages; sourcetest offers an in-memory one.
package source

import (
	"context"

	"github.com/Dicklesworthstone/procmon/internal/model"
)

// Kinds accepted by the --source option.
const (
	KindAuto   = "auto"
	KindProcfs = "procfs"
	KindPsutil = "psutil"
)

// Source provides raw counters for the whole system and for single processes.
type Source interface {
	// SystemCounters returns the aggregate CPU buckets, memory, uptime and
	// process counts.
	SystemCounters(ctx context.Context) (model.SystemCounters, error)

	// Host returns the kernel release and OS pretty name. Fields that
	// cannot be resolved are empty.
	Host(ctx context.Context) (model.Host, error)

	// ProcessIDs lists the currently visible process identifiers in no
	// particular order. Entries may exit before they are read.
	ProcessIDs(ctx context.Context) ([]int, error)

	// ProcessDetail reads the counters of one process. It returns an
	// error wrapping ErrNotFound when the process is gone and ErrMalformed
	// when its records cannot be decoded.
	ProcessDetail(ctx context.Context, pid int) (model.ProcessCounters, error)

	// TicksPerSecond is the clock resolution of the tick counters.
	TicksPerSecond() int64
}

// ValidKind reports whether kind names a known source implementation.
func ValidKind(kind string) bool {
	switch kind {
	case KindAuto, KindProcfs, KindPsutil:
		return true
	default:
		return false
	}
}
