// File: services/booking/workflow.go
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogRepo "bookly/database/repository/catalog"
	"bookly/models"
	"bookly/services/payment"
	"bookly/services/scheduling"
	"bookly/utils"
)

// WorkflowService drives a customer's booking session through slot
// selection, review, deposit choice, confirmation and payment capture.
// Each session is a single-threaded sequence of steps; cross-session
// contention is resolved by the reservation coordinator, not here.
type WorkflowService interface {
	StartSession(ctx context.Context, customerID, providerID, serviceID, date string) (*models.BookingSession, error)
	GetSession(ctx context.Context, sessionID string) (*models.BookingSession, error)
	SelectSlot(ctx context.Context, sessionID, slotID string) (*models.BookingSession, error)
	ProceedToDeposit(ctx context.Context, sessionID, notes string) (*models.BookingSession, error)
	ChooseDeposit(ctx context.Context, sessionID string, policy models.DepositPolicy, acceptTerms bool) (*models.BookingSession, error)
	Confirm(ctx context.Context, sessionID string) (*models.BookingSession, error)
	CapturePayment(ctx context.Context, sessionID, method string) (*models.BookingSession, error)
	Abandon(ctx context.Context, sessionID string) (*models.BookingSession, error)
	CancelBooking(ctx context.Context, customerID, bookingID string) (*scheduling.CancellationResult, error)
}

// DefaultBookingWorkflow is the production workflow implementation.
type DefaultBookingWorkflow struct {
	Sessions    SessionStore
	Generator   scheduling.SlotGenerator
	Coordinator scheduling.ReservationCoordinator
	Catalog     catalogRepo.CatalogRepository
	Payments    payment.PaymentHandler
	BookingFee  float64

	// Clock is injectable for tests; nil means time.Now.
	Clock func() time.Time
}

func (w *DefaultBookingWorkflow) now() time.Time {
	if w.Clock != nil {
		return w.Clock()
	}
	return time.Now().UTC()
}

// StartSession generates the candidate slot list and opens a session in
// the selecting-time state.
func (w *DefaultBookingWorkflow) StartSession(ctx context.Context, customerID, providerID, serviceID, date string) (*models.BookingSession, error) {
	logger := utils.GetLogger()

	svc, err := w.Catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	candidates, err := w.Generator.Generate(ctx, date, providerID, serviceID)
	if err != nil {
		return nil, err
	}

	now := w.now()
	session := &models.BookingSession{
		SessionID:  uuid.New().String(),
		CustomerID: customerID,
		State:      models.StateSelectingTime,
		ProviderID: providerID,
		ServiceID:  serviceID,
		Date:       date,
		Candidates: candidates,
		TotalPrice: svc.Price,
		Currency:   svc.Currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := w.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	logger.Info("booking session started",
		zap.String("sessionId", session.SessionID),
		zap.String("providerId", providerID),
		zap.Int("candidates", len(candidates)))
	return session, nil
}

func (w *DefaultBookingWorkflow) GetSession(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	return w.Sessions.Get(ctx, sessionID)
}

// SelectSlot moves selecting-time -> reviewing-details. The slot must be
// in the candidate list and open as last observed.
func (w *DefaultBookingWorkflow) SelectSlot(ctx context.Context, sessionID, slotID string) (*models.BookingSession, error) {
	session, err := w.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.StateSelectingTime {
		return nil, ErrInvalidTransition(string(session.State), "select a slot")
	}

	slot, ok := session.CandidateByID(slotID)
	if !ok || slot.State != models.SlotStateOpen {
		return nil, ErrNoSlotSelected()
	}

	session.SelectedSlotID = slot.ID
	session.SelectedVersion = slot.Version
	session.State = models.StateReviewingDetails
	session.UpdatedAt = w.now()
	if err := w.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ProceedToDeposit moves reviewing-details -> choosing-deposit. No guard.
func (w *DefaultBookingWorkflow) ProceedToDeposit(ctx context.Context, sessionID, notes string) (*models.BookingSession, error) {
	session, err := w.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.StateReviewingDetails {
		return nil, ErrInvalidTransition(string(session.State), "proceed to deposit")
	}

	session.Notes = notes
	session.State = models.StateChoosingDeposit
	session.UpdatedAt = w.now()
	if err := w.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ChooseDeposit computes the deposit breakdown and moves to confirming.
// Terms must be accepted.
func (w *DefaultBookingWorkflow) ChooseDeposit(ctx context.Context, sessionID string, policy models.DepositPolicy, acceptTerms bool) (*models.BookingSession, error) {
	session, err := w.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.StateChoosingDeposit {
		return nil, ErrInvalidTransition(string(session.State), "choose a deposit")
	}
	if !acceptTerms {
		return nil, ErrTermsNotAccepted()
	}

	breakdown, err := scheduling.BuildDepositBreakdown(session.TotalPrice, policy, w.BookingFee)
	if err != nil {
		return nil, err
	}

	session.DepositPolicy = policy
	session.Deposit = breakdown
	session.State = models.StateConfirming
	session.UpdatedAt = w.now()
	if err := w.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Confirm calls the coordinator's reserve. Success advances to awaiting
// payment capture; a reservation conflict routes the session back to slot
// selection with the contested slot gone from the candidate list.
func (w *DefaultBookingWorkflow) Confirm(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	logger := utils.GetLogger()

	session, err := w.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.StateConfirming {
		return nil, ErrInvalidTransition(string(session.State), "confirm")
	}
	if session.SelectedSlotID == "" {
		return nil, ErrNoSlotSelected()
	}

	reserved, err := w.Coordinator.Reserve(ctx, scheduling.ReserveRequest{
		SlotID:          session.SelectedSlotID,
		ExpectedVersion: session.SelectedVersion,
		CustomerID:      session.CustomerID,
		SessionID:       session.SessionID,
		ServiceID:       session.ServiceID,
		DepositAmount:   session.Deposit.Total,
		TotalPrice:      session.TotalPrice,
		Notes:           session.Notes,
	})
	if err != nil {
		if errors.Is(err, scheduling.ErrReservationConflict) {
			// The slot is gone, not stale: drop it and force re-selection.
			session.RemoveCandidate(session.SelectedSlotID)
			session.SelectedSlotID = ""
			session.SelectedVersion = 0
			session.State = models.StateSelectingTime
			session.UpdatedAt = w.now()
			if saveErr := w.Sessions.Save(ctx, session); saveErr != nil {
				return nil, saveErr
			}
			logger.Info("reservation conflict, returning to slot selection",
				zap.String("sessionId", sessionID))
			return session, err
		}
		return nil, err
	}

	session.BookingID = reserved.ID
	session.State = models.StateAwaitingPaymentCapture
	session.UpdatedAt = w.now()
	if err := w.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CapturePayment invokes the payment collaborator and finalizes the
// reservation. A declined capture leaves the session in awaiting-capture
// so the customer can retry or abandon; capture is idempotent per booking.
func (w *DefaultBookingWorkflow) CapturePayment(ctx context.Context, sessionID, method string) (*models.BookingSession, error) {
	session, err := w.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.StateAwaitingPaymentCapture {
		return nil, ErrInvalidTransition(string(session.State), "capture payment")
	}

	outcome := models.PaymentOutcome{Succeeded: true}
	if session.Deposit.Total > 0 {
		result, err := w.Payments.CaptureDeposit(ctx, models.CaptureRequest{
			BookingID:  session.BookingID,
			CustomerID: session.CustomerID,
			Amount:     session.Deposit.Total,
			Currency:   session.Currency,
			Method:     method,
		})
		if err != nil {
			var capErr *payment.CaptureError
			if errors.As(err, &capErr) {
				session.FailureReason = capErr.Reason
				session.UpdatedAt = w.now()
				if saveErr := w.Sessions.Save(ctx, session); saveErr != nil {
					return nil, saveErr
				}
				return session, err
			}
			// Transport-level failure: capture is idempotent per booking,
			// so the customer may retry explicitly.
			return nil, err
		}
		outcome.PaymentID = result.PaymentID
	}

	if _, err := w.Coordinator.Finalize(ctx, session.BookingID, outcome); err != nil {
		if errors.Is(err, scheduling.ErrReservationConflict) {
			session.State = models.StateFailed
			session.FailureReason = "hold expired before payment completed"
			session.UpdatedAt = w.now()
			if saveErr := w.Sessions.Save(ctx, session); saveErr != nil {
				return nil, saveErr
			}
			return session, err
		}
		return nil, err
	}

	session.State = models.StateConfirmed
	session.FailureReason = ""
	session.UpdatedAt = w.now()
	if err := w.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Abandon ends the session from any non-terminal state. A held
// reservation is finalized as failed, which releases the slot.
func (w *DefaultBookingWorkflow) Abandon(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	session, err := w.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State.Terminal() {
		return nil, ErrInvalidTransition(string(session.State), "abandon")
	}

	if session.State == models.StateAwaitingPaymentCapture && session.BookingID != "" {
		if _, err := w.Coordinator.Finalize(ctx, session.BookingID, models.PaymentOutcome{
			Succeeded: false,
			Reason:    "abandoned by customer",
		}); err != nil && !errors.Is(err, scheduling.ErrReservationConflict) {
			return nil, err
		}
	}

	session.State = models.StateCancelled
	session.FailureReason = "abandoned by customer"
	session.UpdatedAt = w.now()
	if err := w.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CancelBooking cancels a reserved or confirmed booking through the
// coordinator, reporting refund eligibility. Only the booking's own
// customer may cancel it.
func (w *DefaultBookingWorkflow) CancelBooking(ctx context.Context, customerID, bookingID string) (*scheduling.CancellationResult, error) {
	return w.Coordinator.Cancel(ctx, bookingID, customerID, w.now())
}
