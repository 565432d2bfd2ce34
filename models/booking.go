package models

import "time"

// BookingStatus tracks a booking through the payment/confirmation flow.
type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "pending"
	BookingStatusAwaitingPayment BookingStatus = "awaiting_payment"
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusCancelled       BookingStatus = "cancelled"
	BookingStatusFailed          BookingStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled || s == BookingStatusFailed
}

// Booking owns exactly one TimeSlot reference. The slot's booked state
// and the booking's confirmed status must always agree.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	CustomerID string `bson:"customerId" json:"customerId"`
	ProviderID string `bson:"providerId" json:"providerId"`
	ServiceID  string `bson:"serviceId" json:"serviceId"`
	SlotID     string `bson:"slotId" json:"slotId"`

	Status        BookingStatus `bson:"status" json:"status"`
	DepositAmount float64       `bson:"depositAmount" json:"depositAmount"`
	TotalPrice    float64       `bson:"totalPrice" json:"totalPrice"`
	Notes         string        `bson:"notes,omitempty" json:"notes,omitempty"`

	// SessionID ties the booking back to the workflow session that
	// created it, so a retried reserve from the same session is a no-op.
	SessionID string `bson:"sessionId,omitempty" json:"sessionId,omitempty"`

	// SlotStart is denormalized from the slot for cancellation checks.
	SlotStart time.Time `bson:"slotStart" json:"slotStart"`

	FailureReason string    `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}
