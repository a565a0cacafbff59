// Package housekeeping runs periodic maintenance jobs next to the HTTP server.
package housekeeping

import (
	"context"
	"time"

	"github.com/dmitrijs2005/passvault/internal/logging"
)

// Pruner removes revocation records that expired at or before now.
type Pruner interface {
	Prune(ctx context.Context, now time.Time) (int64, error)
}

// StartRevocationPruner calls p.Prune every interval until ctx is done.
// The returned channel is closed once the goroutine has exited.
func StartRevocationPruner(ctx context.Context, p Pruner, interval time.Duration, logger logging.Logger) <-chan struct{} {
	done := make(chan struct{})
	logger = logger.With("module", "revocation_pruner")
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := p.Prune(ctx, now)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					logger.Error(ctx, "failed to prune revoked tokens", "error", err)
					continue
				}
				if n > 0 {
					logger.Info(ctx, "pruned revoked tokens", "removed", n)
				}
			}
		}
	}()

	return done
}
