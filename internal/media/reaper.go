package media

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Reaper deletes superseded assets without holding up the caller. Outcomes
// are only logged.
type Reaper interface {
	Reap(ctx context.Context, publicID string)
}

type AsyncReaper struct {
	store   Store
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewAsyncReaper(store Store, timeout time.Duration, logger *slog.Logger) *AsyncReaper {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AsyncReaper{store: store, timeout: timeout, logger: logger}
}

// Reap schedules the deletion on a context detached from the request, so a
// finished request does not cancel it.
func (r *AsyncReaper) Reap(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}

	detached := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(detached, r.timeout)
		defer cancel()

		if err := r.store.Delete(ctx, publicID); err != nil {
			r.logger.WarnContext(ctx, "failed to delete superseded media", "public_id", publicID, "error", err)
			return
		}
		r.logger.InfoContext(ctx, "deleted superseded media", "public_id", publicID)
	}()
}

// Wait blocks until every scheduled deletion has finished.
func (r *AsyncReaper) Wait() {
	r.wg.Wait()
}
