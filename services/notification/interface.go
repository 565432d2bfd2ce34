// File: services/notification/interface.go
package notification

import (
	"context"

	"go.uber.org/zap"

	"bookly/models"
	"bookly/utils"
)

// Notifier tells a provider about a booking transition. Fire-and-forget:
// implementations may fail, callers only ever log the error.
type Notifier interface {
	Notify(ctx context.Context, providerID, bookingID string, event models.BookingEvent) error
}

// LogNotifier records booking events to the service log. Stands in for a
// push/webhook transport in development and tests.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, providerID, bookingID string, event models.BookingEvent) error {
	utils.GetLogger().Info("booking event",
		zap.String("providerId", providerID),
		zap.String("bookingId", bookingID),
		zap.String("event", string(event)))
	return nil
}
