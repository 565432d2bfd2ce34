// File: services/scheduling/cancellation.go
package scheduling

import (
	"time"

	"bookly/models"
)

// DefaultRefundCutoff is how long before the slot start a cancellation
// still refunds the deposit.
const DefaultRefundCutoff = 48 * time.Hour

// CancellationDecision is the policy's answer for one booking.
type CancellationDecision struct {
	Allowed        bool `json:"allowed"`
	RefundEligible bool `json:"refundEligible"`
}

// CancellationPolicy decides whether a booking may be cancelled and
// whether its deposit is refunded.
type CancellationPolicy struct {
	RefundCutoff time.Duration
}

// NewCancellationPolicy returns a policy with the given refund cutoff;
// a non-positive cutoff falls back to the 48-hour default.
func NewCancellationPolicy(cutoff time.Duration) CancellationPolicy {
	if cutoff <= 0 {
		cutoff = DefaultRefundCutoff
	}
	return CancellationPolicy{RefundCutoff: cutoff}
}

// Evaluate applies the policy. Cancellation is allowed for confirmed and
// awaiting-payment bookings; the deposit is refunded only when now is at
// least the cutoff before the slot start (the boundary instant refunds).
func (p CancellationPolicy) Evaluate(booking *models.Booking, now time.Time) CancellationDecision {
	allowed := booking.Status == models.BookingStatusConfirmed ||
		booking.Status == models.BookingStatusAwaitingPayment

	refundDeadline := booking.SlotStart.Add(-p.RefundCutoff)
	refundEligible := allowed && !now.After(refundDeadline)

	return CancellationDecision{Allowed: allowed, RefundEligible: refundEligible}
}
