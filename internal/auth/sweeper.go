// AngelaMos | 2026
// sweeper.go

package auth

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically hard-deletes expired refresh tokens to bound
// storage growth. Revocation state is irrelevant to the sweep: anything
// past expiry goes.
type Sweeper struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(
	service *Service,
	interval time.Duration,
	logger *slog.Logger,
) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}

	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. Sweep
// failures are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.service.SweepExpired(ctx)
			if err != nil {
				s.logger.Error("refresh token sweep failed", "error", err)
				continue
			}
			if count > 0 {
				s.logger.Info("swept expired refresh tokens", "deleted", count)
			}
		}
	}
}
