// File: services/payment/interface.go
package payment

import (
	"context"
	"fmt"

	"bookly/models"
)

// PaymentHandler captures booking deposits. Implementations must be
// idempotent per booking ID: a retried capture never double-charges.
type PaymentHandler interface {
	CaptureDeposit(ctx context.Context, req models.CaptureRequest) (*models.CaptureResult, error)
}

// CaptureError is a declined or failed capture. Retryable by the
// customer; anything else from a handler is treated as transport failure.
type CaptureError struct {
	BookingID string
	Reason    string
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("deposit capture failed for booking %s: %s", e.BookingID, e.Reason)
}

func validateRequest(req models.CaptureRequest) error {
	if req.BookingID == "" {
		return fmt.Errorf("missing booking ID")
	}
	if req.Amount <= 0 {
		return fmt.Errorf("invalid capture amount %.2f", req.Amount)
	}
	if req.CustomerID == "" {
		return fmt.Errorf("missing customer ID")
	}
	return nil
}
