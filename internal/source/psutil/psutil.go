// Package psutil reads counters through gopsutil, for platforms without
// a procfs mount or when --source=psutil is requested.
//
// gopsutil reports CPU times in seconds and process start times as epoch
// milliseconds; both are converted back to ticks with the source's clock
// rate so the sampler sees the same units as the procfs source.
package psutil

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/source"
)

// Source implements source.Source with gopsutil.
type Source struct {
	ticks int64
}

var _ source.Source = (*Source)(nil)

// New returns a gopsutil source. ticks <= 0 selects source.ClockTicks().
func New(ticks int64) *Source {
	if ticks <= 0 {
		ticks = source.ClockTicks()
	}
	return &Source{ticks: ticks}
}

func (s *Source) TicksPerSecond() int64 { return s.ticks }

func (s *Source) SystemCounters(ctx context.Context) (model.SystemCounters, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return model.SystemCounters{}, fmt.Errorf("psutil: cpu times: %w", err)
	}
	if len(times) == 0 {
		return model.SystemCounters{}, fmt.Errorf("psutil: cpu times: %w", source.ErrMalformed)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return model.SystemCounters{}, fmt.Errorf("psutil: memory: %w", err)
	}
	up, err := host.UptimeWithContext(ctx)
	if err != nil {
		return model.SystemCounters{}, fmt.Errorf("psutil: uptime: %w", err)
	}

	sc := model.SystemCounters{
		CPU:           buckets(times[0]),
		MemTotalKB:    vm.Total / 1024,
		MemFreeKB:     vm.Free / 1024,
		UptimeSeconds: int64(up),
	}
	// Process counts are best effort; not every platform reports them.
	if misc, err := load.MiscWithContext(ctx); err == nil {
		sc.TotalProcesses = misc.ProcsTotal
		sc.RunningProcesses = misc.ProcsRunning
	}
	return sc, nil
}

func (s *Source) Host(ctx context.Context) (model.Host, error) {
	var h model.Host
	kernel, kerr := host.KernelVersionWithContext(ctx)
	h.Kernel = kernel
	platform, _, version, perr := host.PlatformInformationWithContext(ctx)
	h.OS = strings.TrimSpace(platform + " " + version)
	return h, errors.Join(kerr, perr)
}

func (s *Source) ProcessIDs(ctx context.Context) ([]int, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("psutil: pids: %w", err)
	}
	ids := make([]int, 0, len(pids))
	for _, p := range pids {
		ids = append(ids, int(p))
	}
	return ids, nil
}

func (s *Source) ProcessDetail(ctx context.Context, pid int) (model.ProcessCounters, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return model.ProcessCounters{}, classify(pid, "open", err)
	}
	times, err := p.TimesWithContext(ctx)
	if err != nil {
		return model.ProcessCounters{}, classify(pid, "times", err)
	}
	created, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return model.ProcessCounters{}, classify(pid, "create time", err)
	}
	boot, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return model.ProcessCounters{}, fmt.Errorf("psutil: boot time: %w", err)
	}

	pc := model.ProcessCounters{
		PID:         pid,
		UserTicks:   s.toTicks(times.User),
		SystemTicks: s.toTicks(times.System),
		StartTicks:  s.toTicks(float64(created)/1000 - float64(boot)),
		Command:     model.NoCommand,
	}
	uids, err := p.UidsWithContext(ctx)
	if pc.OwnerID, err = realUID(uids, err); err != nil {
		return model.ProcessCounters{}, classify(pid, "uids", err)
	}
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		pc.ResidentKB = mi.RSS / 1024
	}
	if cmd, err := p.CmdlineWithContext(ctx); err == nil && strings.TrimSpace(cmd) != "" {
		pc.Command = strings.TrimSpace(cmd)
	}
	return pc, nil
}

// realUID picks the real uid; an owner that cannot be read drops the record.
func realUID(uids []int32, err error) (uint32, error) {
	if err != nil {
		return 0, err
	}
	if len(uids) == 0 || uids[0] < 0 {
		return 0, errors.New("no real uid")
	}
	return uint32(uids[0]), nil
}

func (s *Source) toTicks(seconds float64) uint64 {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return uint64(math.Round(seconds * float64(s.ticks)))
}

func buckets(t cpu.TimesStat) model.CPUBuckets {
	return model.CPUBuckets{
		User:      t.User,
		Nice:      t.Nice,
		System:    t.System,
		Idle:      t.Idle,
		Iowait:    t.Iowait,
		Irq:       t.Irq,
		Softirq:   t.Softirq,
		Steal:     t.Steal,
		Guest:     t.Guest,
		GuestNice: t.GuestNice,
	}
}

func classify(pid int, what string, err error) error {
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return fmt.Errorf("psutil: pid %d %s: %w", pid, what, source.ErrNotFound)
	}
	return fmt.Errorf("psutil: pid %d %s: %w: %v", pid, what, source.ErrMalformed, err)
}
