// File: services/payment/stripe.go
package payment

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"

	"bookly/models"
)

// StripePaymentHandler captures deposits through Stripe PaymentIntents.
// The booking ID doubles as the Stripe idempotency key, so a retried
// capture returns the original intent instead of charging twice.
type StripePaymentHandler struct {
	logger *zap.Logger
}

// NewStripePaymentHandler constructs the production payment handler.
// stripe.Key must already be set from config.
func NewStripePaymentHandler(logger *zap.Logger) *StripePaymentHandler {
	return &StripePaymentHandler{logger: logger}
}

func (h *StripePaymentHandler) CaptureDeposit(ctx context.Context, req models.CaptureRequest) (*models.CaptureResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("invalid capture request: %w", err)
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(math.Round(req.Amount * 100))),
		Currency:      stripe.String(currency),
		Description:   stripe.String("Booking deposit " + req.BookingID),
		PaymentMethod: stripe.String(req.Method),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("deposit-" + req.BookingID)
	params.AddMetadata("bookingId", req.BookingID)
	params.AddMetadata("customerId", req.CustomerID)

	intent, err := paymentintent.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Type == stripe.ErrorTypeCard {
			h.logger.Warn("deposit capture declined",
				zap.String("bookingId", req.BookingID),
				zap.String("declineCode", string(stripeErr.DeclineCode)))
			return nil, &CaptureError{BookingID: req.BookingID, Reason: stripeErr.Msg}
		}
		return nil, fmt.Errorf("stripe capture failed for booking %s: %w", req.BookingID, err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, &CaptureError{
			BookingID: req.BookingID,
			Reason:    fmt.Sprintf("payment intent in status %s", intent.Status),
		}
	}

	h.logger.Info("deposit captured",
		zap.String("bookingId", req.BookingID),
		zap.String("paymentIntent", intent.ID))
	return &models.CaptureResult{
		PaymentID:  intent.ID,
		Status:     string(intent.Status),
		CapturedAt: time.Now().UTC(),
	}, nil
}
