package sweeper

import (
	"context"
	"time"

	"github.com/dietgen/dietplan/internal/logger"
)

type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Periodically deletes expired refresh tokens
type Sweeper struct {
	interval time.Duration
	logger   logger.Logger
	purger   purger
}

func New(interval time.Duration, logger logger.Logger, purger purger) *Sweeper {
	return &Sweeper{
		interval: interval,
		logger:   logger,
		purger:   purger,
	}
}

// Sweep until ctx is done. Returned channel is closed when sweeper stopped
// Zero or negative interval disables sweeping, channel is closed right away
func (s *Sweeper) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})

	if s.interval <= 0 {
		s.logger.Info("Sweeper disabled")
		close(idleStopped)
		return idleStopped
	}

	s.logger.Debug("Starting sweeper", "interval", s.interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Debug("Sweeper stopped by context")
				return

			case <-ticker.C:
				n, err := s.purger.PurgeExpired(ctx)
				if err != nil {
					s.logger.Error("Failed to purge expired refresh tokens", "error", err)
					continue
				}
				if n > 0 {
					s.logger.Info("Expired refresh tokens purged", "count", n)
				}
			}
		}
	}()

	return idleStopped
}
