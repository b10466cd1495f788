package sampler

import (
	"context"
	"time"

	"github.com/Dicklesworthstone/procmon/internal/model"
)

// Stream refreshes the snapshot right away and then on every tick,
// sending each view on the returned channel until ctx is done. A failed
// refresh is logged and the previous view is sent again.
func (s *Snapshot) Stream(ctx context.Context, interval time.Duration) <-chan model.Sample {
	ch := make(chan model.Sample)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(ch)

		emit := func() bool {
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("refresh failed", "err", err)
			}
			v := s.View()
			v.Interval = interval
			select {
			case ch <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ticker.C:
				if !emit() {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
