package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingRepo "bookly/database/repository/booking"
	catalogRepo "bookly/database/repository/catalog"
	slotRepo "bookly/database/repository/slot"
	"bookly/models"
	"bookly/services/payment"
	"bookly/services/scheduling"
)

// fakePaymentHandler scripts capture outcomes per call.
type fakePaymentHandler struct {
	calls    int
	declines int // first N calls are declined
	fail     error
}

func (f *fakePaymentHandler) CaptureDeposit(ctx context.Context, req models.CaptureRequest) (*models.CaptureResult, error) {
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	if f.calls <= f.declines {
		return nil, &payment.CaptureError{BookingID: req.BookingID, Reason: "card declined"}
	}
	return &models.CaptureResult{
		PaymentID:  "pay-" + req.BookingID,
		Status:     "succeeded",
		CapturedAt: time.Now().UTC(),
	}, nil
}

type workflowFixture struct {
	workflow *DefaultBookingWorkflow
	slots    slotRepo.SlotRepository
	bookings bookingRepo.BookingRepository
	payments *fakePaymentHandler
}

// testDate is 2026-03-09, a Monday.
const testDate = "2026-03-09"

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	catalog := catalogRepo.NewMemoryCatalogRepo()
	catalog.PutService(models.Service{
		ID:              "svc-1",
		ProviderID:      "prov-1",
		Name:            "Deep Clean",
		DurationMinutes: 60,
		Price:           90.00,
		Currency:        "USD",
	})
	catalog.PutAvailability(models.ProviderAvailability{
		ProviderID: "prov-1",
		TimeZone:   "UTC",
		WorkingHours: []models.WorkingWindow{
			{Weekday: time.Monday, Start: "09:00", End: "12:00"},
		},
	})

	slots := slotRepo.NewMemorySlotRepo()
	bookings := bookingRepo.NewMemoryBookingRepo()
	payments := &fakePaymentHandler{}

	coord := &scheduling.DefaultReservationCoordinator{
		Slots:    slots,
		Bookings: bookings,
		Policy:   scheduling.NewCancellationPolicy(48 * time.Hour),
	}
	workflow := &DefaultBookingWorkflow{
		Sessions:    NewMemorySessionStore(),
		Generator:   &scheduling.DefaultSlotGenerator{Catalog: catalog, Slots: slots},
		Coordinator: coord,
		Catalog:     catalog,
		Payments:    payments,
		BookingFee:  0,
	}
	return &workflowFixture{workflow: workflow, slots: slots, bookings: bookings, payments: payments}
}

// startSession opens a session and fails the test on error.
func (f *workflowFixture) startSession(t *testing.T, customerID string) *models.BookingSession {
	t.Helper()
	session, err := f.workflow.StartSession(context.Background(), customerID, "prov-1", "svc-1", testDate)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	return session
}

// driveToAwaitingCapture walks a fresh session up to the payment step.
func (f *workflowFixture) driveToAwaitingCapture(t *testing.T, customerID string, policy models.DepositPolicy) *models.BookingSession {
	t.Helper()
	ctx := context.Background()

	session := f.startSession(t, customerID)
	if len(session.Candidates) == 0 {
		t.Fatal("no candidate slots generated")
	}
	session, err := f.workflow.SelectSlot(ctx, session.SessionID, session.Candidates[0].ID)
	if err != nil {
		t.Fatalf("SelectSlot: %v", err)
	}
	session, err = f.workflow.ProceedToDeposit(ctx, session.SessionID, "gate code 4417")
	if err != nil {
		t.Fatalf("ProceedToDeposit: %v", err)
	}
	session, err = f.workflow.ChooseDeposit(ctx, session.SessionID, policy, true)
	if err != nil {
		t.Fatalf("ChooseDeposit: %v", err)
	}
	session, err = f.workflow.Confirm(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if session.State != models.StateAwaitingPaymentCapture {
		t.Fatalf("state after confirm = %s, want awaiting_payment_capture", session.State)
	}
	return session
}

func TestStartSessionPopulatesCandidatesAndPrice(t *testing.T) {
	f := newWorkflowFixture(t)
	session := f.startSession(t, "cust-1")

	if session.State != models.StateSelectingTime {
		t.Errorf("state = %s, want selecting_time", session.State)
	}
	if len(session.Candidates) != 3 {
		t.Errorf("candidates = %d, want 3", len(session.Candidates))
	}
	if session.TotalPrice != 90.00 || session.Currency != "USD" {
		t.Errorf("price = %v %s, want 90 USD", session.TotalPrice, session.Currency)
	}
}

func TestWorkflowGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("select unknown slot", func(t *testing.T) {
		f := newWorkflowFixture(t)
		session := f.startSession(t, "cust-1")
		_, err := f.workflow.SelectSlot(ctx, session.SessionID, "no-such-slot")
		var wfErr *WorkflowError
		if !errors.As(err, &wfErr) || wfErr.Code != "noSlotSelected" {
			t.Errorf("error = %v, want noSlotSelected", err)
		}
	})

	t.Run("confirm before choosing deposit", func(t *testing.T) {
		f := newWorkflowFixture(t)
		session := f.startSession(t, "cust-1")
		_, err := f.workflow.Confirm(ctx, session.SessionID)
		var wfErr *WorkflowError
		if !errors.As(err, &wfErr) || wfErr.Code != "invalidTransition" {
			t.Errorf("error = %v, want invalidTransition", err)
		}
	})

	t.Run("deposit without accepting terms", func(t *testing.T) {
		f := newWorkflowFixture(t)
		session := f.startSession(t, "cust-1")
		session, err := f.workflow.SelectSlot(ctx, session.SessionID, session.Candidates[0].ID)
		if err != nil {
			t.Fatalf("SelectSlot: %v", err)
		}
		if _, err := f.workflow.ProceedToDeposit(ctx, session.SessionID, ""); err != nil {
			t.Fatalf("ProceedToDeposit: %v", err)
		}
		_, err = f.workflow.ChooseDeposit(ctx, session.SessionID, models.DepositPolicyPartial, false)
		var wfErr *WorkflowError
		if !errors.As(err, &wfErr) || wfErr.Code != "termsNotAccepted" {
			t.Errorf("error = %v, want termsNotAccepted", err)
		}
	})

	t.Run("capture before confirm", func(t *testing.T) {
		f := newWorkflowFixture(t)
		session := f.startSession(t, "cust-1")
		_, err := f.workflow.CapturePayment(ctx, session.SessionID, "card")
		var wfErr *WorkflowError
		if !errors.As(err, &wfErr) || wfErr.Code != "invalidTransition" {
			t.Errorf("error = %v, want invalidTransition", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.workflow.GetSession(ctx, "missing")
		var nf *SessionNotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("error = %v, want SessionNotFoundError", err)
		}
	})
}

func TestChooseDepositComputesBreakdown(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	f.workflow.BookingFee = 1.50

	session := f.startSession(t, "cust-1")
	session, err := f.workflow.SelectSlot(ctx, session.SessionID, session.Candidates[0].ID)
	if err != nil {
		t.Fatalf("SelectSlot: %v", err)
	}
	if _, err := f.workflow.ProceedToDeposit(ctx, session.SessionID, ""); err != nil {
		t.Fatalf("ProceedToDeposit: %v", err)
	}
	session, err = f.workflow.ChooseDeposit(ctx, session.SessionID, models.DepositPolicyPartial, true)
	if err != nil {
		t.Fatalf("ChooseDeposit: %v", err)
	}

	want := models.DepositBreakdown{ServiceAmount: 18.00, Fee: 1.50, Total: 19.50}
	if session.Deposit != want {
		t.Errorf("deposit = %+v, want %+v", session.Deposit, want)
	}
	if session.State != models.StateConfirming {
		t.Errorf("state = %s, want confirming", session.State)
	}
}

func TestConfirmConflictReturnsToSelection(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	// Two customers race for the same first slot; B loses the confirm.
	sessA := f.startSession(t, "cust-a")
	sessB := f.startSession(t, "cust-b")
	contested := sessA.Candidates[0].ID
	if sessB.Candidates[0].ID != contested {
		t.Fatalf("sessions saw different first slots: %s vs %s", contested, sessB.Candidates[0].ID)
	}

	for _, s := range []*models.BookingSession{sessA, sessB} {
		if _, err := f.workflow.SelectSlot(ctx, s.SessionID, contested); err != nil {
			t.Fatalf("SelectSlot: %v", err)
		}
		if _, err := f.workflow.ProceedToDeposit(ctx, s.SessionID, ""); err != nil {
			t.Fatalf("ProceedToDeposit: %v", err)
		}
		if _, err := f.workflow.ChooseDeposit(ctx, s.SessionID, models.DepositPolicyPartial, true); err != nil {
			t.Fatalf("ChooseDeposit: %v", err)
		}
	}

	if _, err := f.workflow.Confirm(ctx, sessA.SessionID); err != nil {
		t.Fatalf("Confirm A: %v", err)
	}

	got, err := f.workflow.Confirm(ctx, sessB.SessionID)
	if !errors.Is(err, scheduling.ErrReservationConflict) {
		t.Fatalf("Confirm B error = %v, want ErrReservationConflict", err)
	}
	if got == nil {
		t.Fatal("conflicted confirm returned no session")
	}
	if got.State != models.StateSelectingTime {
		t.Errorf("state = %s, want selecting_time", got.State)
	}
	if got.SelectedSlotID != "" {
		t.Errorf("selected slot = %q, want cleared", got.SelectedSlotID)
	}
	if _, ok := got.CandidateByID(contested); ok {
		t.Error("contested slot still in the candidate list")
	}
}

func TestCapturePaymentDeclineAllowsRetry(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	f.payments.declines = 1

	session := f.driveToAwaitingCapture(t, "cust-1", models.DepositPolicyPartial)

	got, err := f.workflow.CapturePayment(ctx, session.SessionID, "card")
	var capErr *payment.CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("error = %v, want CaptureError", err)
	}
	if got.State != models.StateAwaitingPaymentCapture {
		t.Errorf("state after decline = %s, want awaiting_payment_capture", got.State)
	}
	if got.FailureReason != "card declined" {
		t.Errorf("failure reason = %q, want card declined", got.FailureReason)
	}

	got, err = f.workflow.CapturePayment(ctx, session.SessionID, "card")
	if err != nil {
		t.Fatalf("retried CapturePayment: %v", err)
	}
	if got.State != models.StateConfirmed {
		t.Errorf("state after retry = %s, want confirmed", got.State)
	}
	if got.FailureReason != "" {
		t.Errorf("failure reason = %q, want cleared", got.FailureReason)
	}
}

func TestCapturePaymentSkipsZeroDeposit(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	session := f.driveToAwaitingCapture(t, "cust-1", models.DepositPolicyNone)

	got, err := f.workflow.CapturePayment(ctx, session.SessionID, "card")
	if err != nil {
		t.Fatalf("CapturePayment: %v", err)
	}
	if got.State != models.StateConfirmed {
		t.Errorf("state = %s, want confirmed", got.State)
	}
	if f.payments.calls != 0 {
		t.Errorf("payment handler called %d times for a zero deposit, want 0", f.payments.calls)
	}
}

func TestCapturePaymentTransportErrorLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	f.payments.fail = errors.New("gateway timeout")

	session := f.driveToAwaitingCapture(t, "cust-1", models.DepositPolicyPartial)

	if _, err := f.workflow.CapturePayment(ctx, session.SessionID, "card"); err == nil {
		t.Fatal("expected transport error")
	}

	got, err := f.workflow.GetSession(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.State != models.StateAwaitingPaymentCapture {
		t.Errorf("state = %s, want awaiting_payment_capture", got.State)
	}
}

func TestAbandonReleasesHeldSlot(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	session := f.driveToAwaitingCapture(t, "cust-1", models.DepositPolicyPartial)
	slotID := session.Candidates[0].ID

	got, err := f.workflow.Abandon(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if got.State != models.StateCancelled {
		t.Errorf("state = %s, want cancelled", got.State)
	}

	slot, err := f.slots.GetByID(ctx, slotID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if slot.State != models.SlotStateOpen {
		t.Errorf("slot state = %s, want open", slot.State)
	}

	booking, err := f.bookings.GetByID(ctx, session.BookingID)
	if err != nil {
		t.Fatalf("booking GetByID: %v", err)
	}
	if booking.Status != models.BookingStatusFailed {
		t.Errorf("booking status = %s, want failed", booking.Status)
	}
}

// TestFullBookingLifecycle walks the happy path end to end: a $90 service
// with a partial deposit, a rival session losing the race, confirmation,
// then a refund-eligible cancellation that reopens the slot.
func TestFullBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	sessA := f.startSession(t, "alice")
	sessB := f.startSession(t, "bob")
	contested := sessA.Candidates[0].ID

	for _, s := range []*models.BookingSession{sessA, sessB} {
		if _, err := f.workflow.SelectSlot(ctx, s.SessionID, contested); err != nil {
			t.Fatalf("SelectSlot: %v", err)
		}
		if _, err := f.workflow.ProceedToDeposit(ctx, s.SessionID, "ring twice"); err != nil {
			t.Fatalf("ProceedToDeposit: %v", err)
		}
		if _, err := f.workflow.ChooseDeposit(ctx, s.SessionID, models.DepositPolicyPartial, true); err != nil {
			t.Fatalf("ChooseDeposit: %v", err)
		}
	}

	sessA, err := f.workflow.Confirm(ctx, sessA.SessionID)
	if err != nil {
		t.Fatalf("Confirm A: %v", err)
	}
	if sessA.Deposit.Total != 18.00 {
		t.Errorf("deposit total = %v, want 18.00", sessA.Deposit.Total)
	}

	if _, err := f.workflow.Confirm(ctx, sessB.SessionID); !errors.Is(err, scheduling.ErrReservationConflict) {
		t.Fatalf("Confirm B error = %v, want ErrReservationConflict", err)
	}

	sessA, err = f.workflow.CapturePayment(ctx, sessA.SessionID, "card")
	if err != nil {
		t.Fatalf("CapturePayment: %v", err)
	}
	if sessA.State != models.StateConfirmed {
		t.Fatalf("state = %s, want confirmed", sessA.State)
	}

	booking, err := f.bookings.GetByID(ctx, sessA.BookingID)
	if err != nil {
		t.Fatalf("booking GetByID: %v", err)
	}
	if booking.Status != models.BookingStatusConfirmed {
		t.Fatalf("booking status = %s, want confirmed", booking.Status)
	}

	// Cancel 72 hours out: allowed and refund-eligible, but only for the
	// booking's own customer.
	f.workflow.Clock = func() time.Time { return booking.SlotStart.Add(-72 * time.Hour) }
	if _, err := f.workflow.CancelBooking(ctx, "bob", sessA.BookingID); !errors.Is(err, scheduling.ErrNotBookingOwner) {
		t.Fatalf("cancel by non-owner error = %v, want ErrNotBookingOwner", err)
	}
	result, err := f.workflow.CancelBooking(ctx, "alice", sessA.BookingID)
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if !result.RefundEligible {
		t.Error("cancellation 72h out should be refund-eligible")
	}
	if result.Booking.Status != models.BookingStatusCancelled {
		t.Errorf("booking status = %s, want cancelled", result.Booking.Status)
	}

	slot, err := f.slots.GetByID(ctx, contested)
	if err != nil {
		t.Fatalf("slot GetByID: %v", err)
	}
	if slot.State != models.SlotStateOpen {
		t.Errorf("slot state = %s, want open", slot.State)
	}
}
