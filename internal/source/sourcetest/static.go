// Package sourcetest provides an in-memory counter source for tests.
package sourcetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/source"
)

// Static serves fixed counters. It is safe for concurrent use.
type Static struct {
	mu sync.Mutex

	System    model.SystemCounters
	SystemErr error
	HostInfo  model.Host
	HostErr   error
	IDsErr    error
	Ticks     int64

	// Procs are returned by ProcessDetail.
	Procs map[int]model.ProcessCounters
	// Vanished ids are listed by ProcessIDs but report ErrNotFound.
	Vanished []int
	// Broken ids are listed by ProcessIDs but report ErrMalformed.
	Broken []int

	HostCalls   int
	DetailCalls int
}

var _ source.Source = (*Static)(nil)

// New returns an empty source ticking at 100 Hz.
func New() *Static {
	return &Static{Ticks: 100, Procs: map[int]model.ProcessCounters{}}
}

// Add registers a process.
func (s *Static) Add(pc model.ProcessCounters) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Procs[pc.PID] = pc
	return s
}

func (s *Static) SystemCounters(ctx context.Context) (model.SystemCounters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SystemErr != nil {
		return model.SystemCounters{}, s.SystemErr
	}
	return s.System, nil
}

func (s *Static) Host(ctx context.Context) (model.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HostCalls++
	return s.HostInfo, s.HostErr
}

// ProcessIDs lists ids in descending order so callers cannot rely on
// enumeration order.
func (s *Static) ProcessIDs(ctx context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IDsErr != nil {
		return nil, s.IDsErr
	}
	ids := make([]int, 0, len(s.Procs)+len(s.Vanished)+len(s.Broken))
	for id := range s.Procs {
		ids = append(ids, id)
	}
	ids = append(ids, s.Vanished...)
	ids = append(ids, s.Broken...)
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	return ids, nil
}

func (s *Static) ProcessDetail(ctx context.Context, pid int) (model.ProcessCounters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DetailCalls++
	for _, id := range s.Broken {
		if id == pid {
			return model.ProcessCounters{}, fmt.Errorf("static: pid %d: %w", pid, source.ErrMalformed)
		}
	}
	pc, ok := s.Procs[pid]
	if !ok {
		return model.ProcessCounters{}, fmt.Errorf("static: pid %d: %w", pid, source.ErrNotFound)
	}
	return pc, nil
}

func (s *Static) TicksPerSecond() int64 { return s.Ticks }
