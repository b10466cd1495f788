package sampler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dicklesworthstone/procmon/internal/identity"
	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/source"
)

// BuildOptions tune how a process record is derived.
type BuildOptions struct {
	// IncludeChildren adds the CPU time of waited-for children.
	IncludeChildren bool
	Logger          *slog.Logger
}

// BuildProcess reads pid from src and derives its record. The second
// result is false when the process is gone, its counters cannot be
// decoded, or it has no representable command; the caller skips it.
//
// uptimeSeconds is the system uptime the process age is measured against.
func BuildProcess(ctx context.Context, src source.Source, dir identity.Directory,
	pid int, uptimeSeconds int64, opts BuildOptions) (model.Process, bool) {

	pc, err := src.ProcessDetail(ctx, pid)
	if err != nil {
		if opts.Logger != nil {
			opts.Logger.Debug("process skipped",
				"pid", pid, "gone", errors.Is(err, source.ErrNotFound), "err", err)
		}
		return model.Process{}, false
	}
	if pc.Command == model.NoCommand || pc.Command == "" {
		return model.Process{}, false
	}

	hz := src.TicksPerSecond()
	if hz <= 0 {
		hz = source.DefaultClockTicks
	}
	active := pc.UserTicks + pc.SystemTicks
	if opts.IncludeChildren {
		active += pc.ChildUserTicks + pc.ChildSystemTicks
	}

	// Whole seconds, so a process younger than one second has age 0 and
	// falls into the fully-busy branch of Utilization.
	age := uptimeSeconds - int64(pc.StartTicks)/hz
	if age < 0 {
		age = 0
	}

	return model.Process{
		PID:        pc.PID,
		UID:        pc.OwnerID,
		User:       ResolveOwner(dir, pc.OwnerID),
		Command:    pc.Command,
		CPU:        Utilization(active, float64(age), hz),
		RAMMB:      int64(pc.ResidentKB / 1024),
		AgeSeconds: age,
	}, true
}
