package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/procmon/internal/identity"
	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/source"
)

// CatalogOptions configure a Catalog. Zero values select the defaults.
type CatalogOptions struct {
	Order           Order          // default ByCPU
	Filter          *regexp.Regexp // keep only commands matching
	IncludeChildren bool
	Workers         int // parallel detail reads, default 1
	Logger          *slog.Logger
}

// Catalog enumerates processes and builds an ordered table of them.
type Catalog struct {
	src     source.Source
	dir     identity.Directory
	filter  *regexp.Regexp
	build   BuildOptions
	workers int
	logger  *slog.Logger

	mu    sync.Mutex
	order Order
}

func NewCatalog(src source.Source, dir identity.Directory, opts CatalogOptions) *Catalog {
	if opts.Order.Less == nil {
		opts.Order = ByCPU
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := orDiscard(opts.Logger)
	return &Catalog{
		src:     src,
		dir:     dir,
		filter:  opts.Filter,
		build:   BuildOptions{IncludeChildren: opts.IncludeChildren, Logger: logger},
		workers: opts.Workers,
		logger:  logger,
		order:   opts.Order,
	}
}

// Order returns the active sort key.
func (c *Catalog) Order() Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order
}

// SetOrder replaces the sort key used by the next Refresh.
func (c *Catalog) SetOrder(o Order) {
	if o.Less == nil {
		return
	}
	c.mu.Lock()
	c.order = o
	c.mu.Unlock()
}

// Refresh re-enumerates every process and returns a new table sorted by
// the active order. Processes that vanish or fail to decode are left out.
// Ids are visited in ascending order, so rows that compare equal keep pid
// order and an unchanged source yields an identical table.
func (c *Catalog) Refresh(ctx context.Context, uptimeSeconds int64) ([]model.Process, error) {
	procs, _, err := c.refresh(ctx, uptimeSeconds)
	return procs, err
}

// refresh also reports the order the table was sorted by.
func (c *Catalog) refresh(ctx context.Context, uptimeSeconds int64) ([]model.Process, Order, error) {
	order := c.Order()
	ids, err := c.src.ProcessIDs(ctx)
	if err != nil {
		return nil, order, fmt.Errorf("%w: %v", ErrEnumerate, err)
	}
	sort.Ints(ids)
	ids = slices.Compact(ids)

	// Each id owns one slot; a record is either stored whole or not at all.
	slots := make([]model.Process, len(ids))
	built := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, pid := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i], built[i] = BuildProcess(gctx, c.src, c.dir, pid, uptimeSeconds, c.build)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, order, err
	}

	procs := make([]model.Process, 0, len(ids))
	for i := range ids {
		if !built[i] {
			continue
		}
		if c.filter != nil && !c.filter.MatchString(slots[i].Command) {
			continue
		}
		procs = append(procs, slots[i])
	}

	sortProcesses(procs, order)
	c.logger.Debug("catalog refreshed", "listed", len(ids), "kept", len(procs))
	return procs, order, nil
}

// sortProcesses orders procs by o, breaking ties by pid.
func sortProcesses(procs []model.Process, o Order) {
	sort.SliceStable(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	sort.SliceStable(procs, func(i, j int) bool { return o.Less(procs[i], procs[j]) })
}
