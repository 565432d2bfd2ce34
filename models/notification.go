package models

// BookingEvent names the transitions providers are notified about.
type BookingEvent string

const (
	EventBookingConfirmed BookingEvent = "booking_confirmed"
	EventBookingCancelled BookingEvent = "booking_cancelled"
)

// ReminderPayload is the asynq task body for appointment reminders.
type ReminderPayload struct {
	BookingID  string `json:"bookingId"`
	ProviderID string `json:"providerId"`
	CustomerID string `json:"customerId"`
	SlotStart  string `json:"slotStart"` // RFC 3339
	Title      string `json:"title"`
	Body       string `json:"body"`
}
