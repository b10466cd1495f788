//go:build linux

// Package procfs reads counters from a Linux /proc mount.
//
// Record decoding is delegated to github.com/prometheus/procfs, which
// exposes /proc/stat, /proc/meminfo and the per-PID stat, status and
// cmdline files as named-field structs. The few files it does not cover
// (uptime, version, os-release) are read here.
package procfs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/procfs"

	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/source"
)

const (
	// DefaultRoot is the usual procfs mount point.
	DefaultRoot = procfs.DefaultMountPoint
	// DefaultOSRelease is the distribution identity file.
	DefaultOSRelease = "/etc/os-release"
)

// Options configure a Source. Zero values select the defaults.
type Options struct {
	Root      string
	OSRelease string
	Ticks     int64
}

// Source implements source.Source on top of a procfs mount.
type Source struct {
	fs        procfs.FS
	root      string
	osRelease string
	ticks     int64
}

var _ source.Source = (*Source)(nil)

// New opens the procfs mount named in opts.
func New(opts Options) (*Source, error) {
	if opts.Root == "" {
		opts.Root = DefaultRoot
	}
	if opts.OSRelease == "" {
		opts.OSRelease = DefaultOSRelease
	}
	if opts.Ticks <= 0 {
		opts.Ticks = source.ClockTicks()
	}
	pfs, err := procfs.NewFS(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("procfs: open %s: %w", opts.Root, err)
	}
	return &Source{
		fs:        pfs,
		root:      opts.Root,
		osRelease: opts.OSRelease,
		ticks:     opts.Ticks,
	}, nil
}

func (s *Source) TicksPerSecond() int64 { return s.ticks }

// SystemCounters reads /proc/stat, /proc/meminfo and /proc/uptime.
func (s *Source) SystemCounters(ctx context.Context) (model.SystemCounters, error) {
	if err := ctx.Err(); err != nil {
		return model.SystemCounters{}, err
	}
	st, err := s.fs.Stat()
	if err != nil {
		return model.SystemCounters{}, fmt.Errorf("procfs: stat: %w", err)
	}
	mi, err := s.fs.Meminfo()
	if err != nil {
		return model.SystemCounters{}, fmt.Errorf("procfs: meminfo: %w", err)
	}
	up, err := s.uptime()
	if err != nil {
		return model.SystemCounters{}, err
	}

	c := st.CPUTotal
	return model.SystemCounters{
		CPU: model.CPUBuckets{
			User:      c.User,
			Nice:      c.Nice,
			System:    c.System,
			Idle:      c.Idle,
			Iowait:    c.Iowait,
			Irq:       c.IRQ,
			Softirq:   c.SoftIRQ,
			Steal:     c.Steal,
			Guest:     c.Guest,
			GuestNice: c.GuestNice,
		},
		MemTotalKB:       deref(mi.MemTotal),
		MemFreeKB:        deref(mi.MemFree),
		UptimeSeconds:    up,
		TotalProcesses:   int(st.ProcessCreated),
		RunningProcesses: int(st.ProcessesRunning),
	}, nil
}

// Host reads the kernel release from /proc/version and PRETTY_NAME from
// os-release. Missing files leave the matching field empty.
func (s *Source) Host(ctx context.Context) (model.Host, error) {
	if err := ctx.Err(); err != nil {
		return model.Host{}, err
	}
	var h model.Host
	var errs []error
	if b, err := os.ReadFile(filepath.Join(s.root, "version")); err == nil {
		// "Linux version 6.1.0-13-amd64 (...)"
		if fields := strings.Fields(string(b)); len(fields) >= 3 {
			h.Kernel = fields[2]
		}
	} else {
		errs = append(errs, err)
	}
	if b, err := os.ReadFile(s.osRelease); err == nil {
		h.OS = prettyName(b)
	} else {
		errs = append(errs, err)
	}
	return h, errors.Join(errs...)
}

// ProcessIDs lists the numeric entries of the mount.
func (s *Source) ProcessIDs(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	procs, err := s.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("procfs: list: %w", err)
	}
	ids := make([]int, 0, len(procs))
	for _, p := range procs {
		ids = append(ids, p.PID)
	}
	return ids, nil
}

// ProcessDetail reads /proc/<pid>/stat, status and cmdline.
func (s *Source) ProcessDetail(ctx context.Context, pid int) (model.ProcessCounters, error) {
	if err := ctx.Err(); err != nil {
		return model.ProcessCounters{}, err
	}
	p, err := s.fs.Proc(pid)
	if err != nil {
		return model.ProcessCounters{}, classify(pid, "open", err)
	}
	st, err := p.Stat()
	if err != nil {
		return model.ProcessCounters{}, classify(pid, "stat", err)
	}
	status, err := p.NewStatus()
	if err != nil {
		return model.ProcessCounters{}, classify(pid, "status", err)
	}
	args, err := p.CmdLine()
	if err != nil {
		return model.ProcessCounters{}, classify(pid, "cmdline", err)
	}

	cmd := strings.TrimSpace(strings.Join(args, " "))
	if cmd == "" {
		cmd = model.NoCommand
	}
	return model.ProcessCounters{
		PID:              pid,
		UserTicks:        uint64(st.UTime),
		SystemTicks:      uint64(st.STime),
		ChildUserTicks:   uint64(st.CUTime),
		ChildSystemTicks: uint64(st.CSTime),
		StartTicks:       st.Starttime,
		OwnerID:          uint32(status.UIDs[0]),
		Command:          cmd,
		ResidentKB:       status.VmRSS / 1024,
	}, nil
}

func (s *Source) uptime() (int64, error) {
	b, err := os.ReadFile(filepath.Join(s.root, "uptime"))
	if err != nil {
		return 0, fmt.Errorf("procfs: uptime: %w", err)
	}
	fields := strings.Fields(string(b))
	if len(fields) == 0 {
		return 0, fmt.Errorf("procfs: uptime: %w", source.ErrMalformed)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("procfs: uptime: %w: %v", source.ErrMalformed, err)
	}
	return int64(v), nil
}

// classify maps read errors of a vanished process to ErrNotFound and
// everything else to ErrMalformed.
func classify(pid int, what string, err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("procfs: pid %d %s: %w", pid, what, source.ErrNotFound)
	}
	return fmt.Errorf("procfs: pid %d %s: %w: %v", pid, what, source.ErrMalformed, err)
}

func prettyName(b []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		k, v, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok || k != "PRETTY_NAME" {
			continue
		}
		return strings.Trim(v, `"'`)
	}
	return ""
}

func deref(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}
