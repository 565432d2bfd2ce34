package models

import "time"

// CaptureRequest asks the payment collaborator to capture a deposit.
// Retried captures with the same BookingID must not double-charge.
type CaptureRequest struct {
	BookingID  string  `json:"bookingId"`
	CustomerID string  `json:"customerId"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Method     string  `json:"method"`
}

// CaptureResult is the payment collaborator's answer.
type CaptureResult struct {
	PaymentID  string    `json:"paymentId"`
	Status     string    `json:"status"`
	CapturedAt time.Time `json:"capturedAt"`
}

// PaymentOutcome is what the coordinator needs to finalize a booking.
type PaymentOutcome struct {
	Succeeded bool   `json:"succeeded"`
	PaymentID string `json:"paymentId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
