package auth

import (
	"context"
	"log/slog"
	"time"
)

// RunSweeper deletes expired handoff tokens every interval until ctx is
// cancelled. A non-positive interval disables the sweeper.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepExpiredTokens(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("token sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
