package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Dicklesworthstone/procmon/internal/identity"
	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/source"
)

// Snapshot holds the latest system-wide metrics and process table of one
// monitoring session. It changes only through Refresh and SetOrder;
// readers get copies through View.
type Snapshot struct {
	src     source.Source
	catalog *Catalog
	logger  *slog.Logger

	mu        sync.RWMutex
	at        time.Time
	cpu       float64
	memory    float64
	uptime    int64
	total     int
	running   int
	host      model.Host
	hostDone  bool
	processes []model.Process
}

// New returns an empty snapshot reading from src. Call Refresh to fill it.
func New(src source.Source, dir identity.Directory, opts CatalogOptions) *Snapshot {
	return &Snapshot{
		src:     src,
		catalog: NewCatalog(src, dir, opts),
		logger:  orDiscard(opts.Logger),
	}
}

// Refresh samples the source once and replaces the snapshot contents.
//
// Nothing is committed unless both the system counters and the process
// enumeration succeed; on failure the previous values stay in place and
// the error is returned for the caller to act on.
func (s *Snapshot) Refresh(ctx context.Context) error {
	sys, err := s.src.SystemCounters(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSystemUnavailable, err)
	}
	s.resolveHost(ctx)

	procs, used, err := s.catalog.refresh(ctx, sys.UptimeSeconds)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// SetOrder may have run while the table was being built.
	if o := s.catalog.Order(); o.Name != used.Name {
		sortProcesses(procs, o)
	}
	s.at = time.Now()
	s.cpu = SystemCPU(sys.CPU)
	s.memory = MemoryUtilization(sys.MemTotalKB, sys.MemFreeKB)
	s.uptime = sys.UptimeSeconds
	s.total = sys.TotalProcesses
	s.running = sys.RunningProcesses
	s.processes = procs
	return nil
}

// resolveHost asks the source for kernel and OS identity until it gets a
// non-empty answer, then keeps that answer for the session.
func (s *Snapshot) resolveHost(ctx context.Context) {
	s.mu.RLock()
	done := s.hostDone
	s.mu.RUnlock()
	if done {
		return
	}
	h, err := s.src.Host(ctx)
	if err != nil {
		s.logger.Warn("host identity incomplete", "err", err)
	}
	if h.Kernel == "" && h.OS == "" {
		return
	}
	s.mu.Lock()
	s.host = h
	s.hostDone = true
	s.mu.Unlock()
}

// SetOrder changes the process sort key and re-sorts the current table.
func (s *Snapshot) SetOrder(o Order) {
	if o.Less == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog.SetOrder(o)
	procs := slices.Clone(s.processes)
	sortProcesses(procs, o)
	s.processes = procs
}

// View returns a copy of the current state. The process slice is private
// to the caller.
func (s *Snapshot) View() model.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Sample{
		Timestamp:        s.at,
		CPU:              s.cpu,
		Memory:           s.memory,
		UptimeSeconds:    s.uptime,
		TotalProcesses:   s.total,
		RunningProcesses: s.running,
		Kernel:           s.host.Kernel,
		OS:               s.host.OS,
		Order:            s.catalog.Order().Name,
		Processes:        slices.Clone(s.processes),
	}
}
