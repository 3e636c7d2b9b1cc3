package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/trknhr/ghostguess/internal/logger"
	"golang.org/x/sync/errgroup"
)

type SyncWorker interface {
	Key() string
	Path() string
	NeedsReload() bool
	Sync(ctx context.Context) error
}

// RunSyncWorkers syncs every worker that needs it concurrently and waits.
// One failing worker does not stop the others; all failures are joined.
func RunSyncWorkers(ctx context.Context, syncers ...SyncWorker) error {
	var g errgroup.Group
	errs := make([]error, len(syncers))
	for i, s := range syncers {
		g.Go(func() error {
			if !s.NeedsReload() {
				logger.Debug("[%s] sync skipped (up-to-date)", s.Key())
				return nil
			}
			if err := s.Sync(ctx); err != nil {
				logger.Error("[%s] sync failed: %v", s.Key(), err)
				errs[i] = fmt.Errorf("sync %s: %w", s.Key(), err)
				return nil
			}
			logger.Info("[%s] sync done", s.Key())
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
