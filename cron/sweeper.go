// File: cron/sweeper.go
package cron

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bookly/services/scheduling"
	"bookly/utils"
)

// StartHoldSweeper releases expired slot holds on a recurring ticker so
// abandoned checkouts never starve a slot. Runs until ctx is cancelled.
func StartHoldSweeper(ctx context.Context, coordinator scheduling.ReservationCoordinator, interval time.Duration) {
	logger := utils.GetLogger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("hold sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("hold sweeper shutdown signal received")
			return
		case <-ticker.C:
			released, err := coordinator.ReleaseExpiredHolds(ctx, time.Now().UTC())
			if err != nil {
				logger.Error("hold sweep failed", zap.Error(err))
				continue
			}
			if released > 0 {
				logger.Debug("hold sweep complete", zap.Int("released", released))
			}
		}
	}
}
