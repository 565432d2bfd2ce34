package models

import "time"

// SlotState tracks where a slot is in its booking lifecycle.
type SlotState string

const (
	SlotStateOpen   SlotState = "open"
	SlotStateHeld   SlotState = "held"
	SlotStateBooked SlotState = "booked"
)

// TimeSlot represents one bookable window on a provider's calendar.
// Identity is (ProviderID, Start, End); Version is bumped on every
// state transition and guards concurrent reservation attempts.
type TimeSlot struct {
	ID         string    `bson:"id" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	ServiceID  string    `bson:"serviceId" json:"serviceId"`
	Start      time.Time `bson:"start" json:"start"` // UTC
	End        time.Time `bson:"end" json:"end"`     // UTC
	Version    int64     `bson:"version" json:"version"`
	State      SlotState `bson:"state" json:"state"`

	// HeldBy is the workflow session that holds or booked the slot;
	// cleared when the slot returns to open. HoldExpiresAt bounds the
	// hold and is cleared once booked.
	HeldBy        string     `bson:"heldBy,omitempty" json:"heldBy,omitempty"`
	HoldExpiresAt *time.Time `bson:"holdExpiresAt,omitempty" json:"holdExpiresAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Overlaps reports whether the slot intersects the half-open range [start, end).
func (s TimeSlot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && start.Before(s.End)
}

// Occupied reports whether the slot is unavailable for new reservations.
func (s TimeSlot) Occupied() bool {
	return s.State == SlotStateHeld || s.State == SlotStateBooked
}
