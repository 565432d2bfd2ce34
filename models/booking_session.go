package models

import "time"

// WorkflowState is the customer-visible state of a booking session.
type WorkflowState string

const (
	StateSelectingTime          WorkflowState = "selecting_time"
	StateReviewingDetails       WorkflowState = "reviewing_details"
	StateChoosingDeposit        WorkflowState = "choosing_deposit"
	StateConfirming             WorkflowState = "confirming"
	StateAwaitingPaymentCapture WorkflowState = "awaiting_payment_capture"
	StateConfirmed              WorkflowState = "confirmed"
	StateFailed                 WorkflowState = "failed"
	StateCancelled              WorkflowState = "cancelled"
)

// Terminal reports whether the workflow can transition no further.
func (s WorkflowState) Terminal() bool {
	return s == StateConfirmed || s == StateFailed || s == StateCancelled
}

// BookingSession holds workflow context between steps. Persisted as JSON
// in Redis with a TTL; one session per customer checkout attempt.
type BookingSession struct {
	SessionID  string        `json:"sessionId"`
	CustomerID string        `json:"customerId"`
	State      WorkflowState `json:"state"`

	ProviderID string `json:"providerId"`
	ServiceID  string `json:"serviceId"`
	Date       string `json:"date"` // "2006-01-02", provider-local

	// Candidates is the slot list last shown to the customer. Slots that
	// conflict at reserve time are removed before re-selection.
	Candidates []TimeSlot `json:"candidates,omitempty"`

	SelectedSlotID  string `json:"selectedSlotId,omitempty"`
	SelectedVersion int64  `json:"selectedVersion,omitempty"`

	DepositPolicy DepositPolicy    `json:"depositPolicy,omitempty"`
	Deposit       DepositBreakdown `json:"deposit"`
	TotalPrice    float64          `json:"totalPrice"`
	Currency      string           `json:"currency,omitempty"`
	Notes         string           `json:"notes,omitempty"`

	BookingID     string `json:"bookingId,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CandidateByID returns the candidate slot with the given ID, if present.
func (s *BookingSession) CandidateByID(slotID string) (TimeSlot, bool) {
	for _, c := range s.Candidates {
		if c.ID == slotID {
			return c, true
		}
	}
	return TimeSlot{}, false
}

// RemoveCandidate drops a slot from the candidate list, returning true
// when something was removed.
func (s *BookingSession) RemoveCandidate(slotID string) bool {
	for i, c := range s.Candidates {
		if c.ID == slotID {
			s.Candidates = append(s.Candidates[:i], s.Candidates[i+1:]...)
			return true
		}
	}
	return false
}
