package scheduling

import (
	"testing"
	"time"

	"bookly/models"
)

func TestCancellationPolicyEvaluate(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	policy := NewCancellationPolicy(48 * time.Hour)

	cases := []struct {
		name       string
		status     models.BookingStatus
		now        time.Time
		allowed    bool
		refundable bool
	}{
		{"confirmed well before cutoff", models.BookingStatusConfirmed, start.Add(-72 * time.Hour), true, true},
		{"confirmed exactly at cutoff", models.BookingStatusConfirmed, start.Add(-48 * time.Hour), true, true},
		{"confirmed just inside cutoff", models.BookingStatusConfirmed, start.Add(-47*time.Hour - 59*time.Minute), true, false},
		{"confirmed after start", models.BookingStatusConfirmed, start.Add(time.Hour), true, false},
		{"awaiting payment refundable", models.BookingStatusAwaitingPayment, start.Add(-49 * time.Hour), true, true},
		{"pending not allowed", models.BookingStatusPending, start.Add(-72 * time.Hour), false, false},
		{"cancelled not allowed", models.BookingStatusCancelled, start.Add(-72 * time.Hour), false, false},
		{"failed not allowed", models.BookingStatusFailed, start.Add(-72 * time.Hour), false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &models.Booking{Status: tc.status, SlotStart: start}
			got := policy.Evaluate(b, tc.now)
			if got.Allowed != tc.allowed || got.RefundEligible != tc.refundable {
				t.Errorf("Evaluate() = %+v, want allowed=%v refundEligible=%v", got, tc.allowed, tc.refundable)
			}
		})
	}
}

func TestNewCancellationPolicyDefault(t *testing.T) {
	if p := NewCancellationPolicy(0); p.RefundCutoff != DefaultRefundCutoff {
		t.Errorf("cutoff = %v, want %v", p.RefundCutoff, DefaultRefundCutoff)
	}
	if p := NewCancellationPolicy(24 * time.Hour); p.RefundCutoff != 24*time.Hour {
		t.Errorf("cutoff = %v, want 24h", p.RefundCutoff)
	}
}
