// File: services/scheduling/coordinator.go
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "bookly/database/repository/booking"
	slotRepo "bookly/database/repository/slot"
	"bookly/models"
	"bookly/services/notification"
	"bookly/utils"
)

// DefaultHoldWindow bounds how long a reserved slot stays held without
// being finalized.
const DefaultHoldWindow = 10 * time.Minute

// ReserveRequest carries everything a reservation attempt needs. The
// expected version is the one the caller observed at selection time.
type ReserveRequest struct {
	SlotID          string
	ExpectedVersion int64
	CustomerID      string
	SessionID       string
	ServiceID       string
	DepositAmount   float64
	TotalPrice      float64
	Notes           string
}

// CancellationResult reports a completed cancellation.
type CancellationResult struct {
	Booking        *models.Booking `json:"booking"`
	RefundEligible bool            `json:"refundEligible"`
}

// ReminderScheduler queues an appointment reminder for a confirmed booking.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, booking *models.Booking) error
}

// ReservationCoordinator is the only component permitted to transition a
// slot into booked, and the only write path for booking status.
type ReservationCoordinator interface {
	Reserve(ctx context.Context, req ReserveRequest) (*models.Booking, error)
	Finalize(ctx context.Context, bookingID string, outcome models.PaymentOutcome) (*models.Booking, error)

	// Cancel requires customerID to match the booking's owner; an empty
	// customerID is a system-initiated cancellation and skips the check.
	Cancel(ctx context.Context, bookingID, customerID string, now time.Time) (*CancellationResult, error)
	ReleaseExpiredHolds(ctx context.Context, now time.Time) (int, error)
}

// DefaultReservationCoordinator serializes cross-session contention through
// the slot repository's guarded updates; it never reads-then-writes slot
// state at this layer.
type DefaultReservationCoordinator struct {
	Slots      slotRepo.SlotRepository
	Bookings   bookingRepo.BookingRepository
	Notifier   notification.Notifier
	Reminders  ReminderScheduler
	Policy     CancellationPolicy
	HoldWindow time.Duration

	// Clock is injectable for hold-expiry tests; nil means time.Now.
	Clock func() time.Time
}

func (c *DefaultReservationCoordinator) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}

func (c *DefaultReservationCoordinator) holdWindow() time.Duration {
	if c.HoldWindow > 0 {
		return c.HoldWindow
	}
	return DefaultHoldWindow
}

// Reserve performs the compare-and-swap: the slot must still be open (or
// held by this same session) at the expected version. On success the slot
// is held and a booking awaits payment. On a lost race it returns
// ErrReservationConflict and writes nothing.
func (c *DefaultReservationCoordinator) Reserve(ctx context.Context, req ReserveRequest) (*models.Booking, error) {
	logger := utils.GetLogger()

	// A session retrying reserve for a slot it already claimed gets its
	// existing booking back rather than a second charge path.
	if existing, err := c.Bookings.GetBySessionAndSlot(ctx, req.SessionID, req.SlotID); err == nil {
		if !existing.Status.Terminal() {
			return existing, nil
		}
	} else if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, fmt.Errorf("idempotency lookup failed: %w", err)
	}

	holdUntil := c.now().Add(c.holdWindow())
	slot, err := c.Slots.CompareAndHold(ctx, req.SlotID, req.ExpectedVersion, req.SessionID, holdUntil)
	if err != nil {
		if errors.Is(err, slotRepo.ErrVersionConflict) || errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, fmt.Errorf("slot %s: %w", req.SlotID, ErrReservationConflict)
		}
		return nil, fmt.Errorf("reserve failed for slot %s: %w", req.SlotID, err)
	}

	now := c.now()
	booking := &models.Booking{
		ID:            uuid.New().String(),
		CustomerID:    req.CustomerID,
		ProviderID:    slot.ProviderID,
		ServiceID:     req.ServiceID,
		SlotID:        slot.ID,
		SessionID:     req.SessionID,
		Status:        models.BookingStatusPending,
		DepositAmount: req.DepositAmount,
		TotalPrice:    req.TotalPrice,
		Notes:         req.Notes,
		SlotStart:     slot.Start,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.Bookings.Create(ctx, booking); err != nil {
		// Compensate: give the slot back rather than strand the hold.
		if _, relErr := c.Slots.ReleaseHold(ctx, slot.ID); relErr != nil {
			logger.Error("failed to release hold after booking insert failure",
				zap.String("slotId", slot.ID), zap.Error(relErr))
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	// The slot is held; payment is the next step.
	booking.Status = models.BookingStatusAwaitingPayment
	if err := c.Bookings.UpdateStatus(ctx, booking.ID, models.BookingStatusAwaitingPayment, ""); err != nil {
		return nil, fmt.Errorf("failed to advance booking %s: %w", booking.ID, err)
	}

	logger.Info("slot reserved",
		zap.String("slotId", slot.ID),
		zap.String("bookingId", booking.ID),
		zap.Int64("version", slot.Version))
	return booking, nil
}

// Finalize resolves a held reservation: payment success books the slot and
// confirms the booking; failure releases the slot and fails the booking.
// Safe to retry; a booking already in its target state is returned as-is.
func (c *DefaultReservationCoordinator) Finalize(ctx context.Context, bookingID string, outcome models.PaymentOutcome) (*models.Booking, error) {
	logger := utils.GetLogger()

	booking, err := c.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", bookingID, err)
	}
	if booking.Status.Terminal() {
		return booking, nil
	}

	if !outcome.Succeeded {
		reason := outcome.Reason
		if reason == "" {
			reason = "payment failed"
		}
		if _, err := c.Slots.ReleaseHold(ctx, booking.SlotID); err != nil &&
			!errors.Is(err, slotRepo.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to release slot %s: %w", booking.SlotID, err)
		}
		if err := c.Bookings.UpdateStatus(ctx, bookingID, models.BookingStatusFailed, reason); err != nil {
			return nil, err
		}
		booking.Status = models.BookingStatusFailed
		booking.FailureReason = reason
		logger.Info("booking failed, slot released",
			zap.String("bookingId", bookingID), zap.String("reason", reason))
		return booking, nil
	}

	if _, err := c.Slots.MarkBooked(ctx, booking.SlotID, booking.SessionID); err != nil {
		if errors.Is(err, slotRepo.ErrVersionConflict) {
			// The hold lapsed before payment resolved; the sweep already
			// returned the slot to the pool.
			reason := "hold window expired before payment completed"
			if uerr := c.Bookings.UpdateStatus(ctx, bookingID, models.BookingStatusFailed, reason); uerr != nil {
				return nil, uerr
			}
			return nil, fmt.Errorf("booking %s: %w", bookingID, ErrReservationConflict)
		}
		return nil, fmt.Errorf("failed to book slot %s: %w", booking.SlotID, err)
	}

	if err := c.Bookings.UpdateStatus(ctx, bookingID, models.BookingStatusConfirmed, ""); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusConfirmed

	if c.Reminders != nil {
		if err := c.Reminders.ScheduleReminder(ctx, booking); err != nil {
			logger.Warn("failed to schedule reminder", zap.String("bookingId", bookingID), zap.Error(err))
		}
	}
	c.notify(ctx, booking, models.EventBookingConfirmed)

	logger.Info("booking confirmed", zap.String("bookingId", bookingID), zap.String("slotId", booking.SlotID))
	return booking, nil
}

// Cancel runs the cancellation policy and, when allowed, returns the slot
// to availability with a version bump.
func (c *DefaultReservationCoordinator) Cancel(ctx context.Context, bookingID, customerID string, now time.Time) (*CancellationResult, error) {
	booking, err := c.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", bookingID, err)
	}
	if customerID != "" && booking.CustomerID != customerID {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotBookingOwner)
	}

	decision := c.Policy.Evaluate(booking, now)
	if !decision.Allowed {
		return nil, fmt.Errorf("booking %s in status %s: %w", bookingID, booking.Status, ErrCancellationNotAllowed)
	}

	var relErr error
	switch booking.Status {
	case models.BookingStatusConfirmed:
		_, relErr = c.Slots.ReleaseBooked(ctx, booking.SlotID)
	case models.BookingStatusAwaitingPayment:
		_, relErr = c.Slots.ReleaseHold(ctx, booking.SlotID)
	}
	if relErr != nil && !errors.Is(relErr, slotRepo.ErrVersionConflict) {
		return nil, fmt.Errorf("failed to release slot %s: %w", booking.SlotID, relErr)
	}

	if err := c.Bookings.UpdateStatus(ctx, bookingID, models.BookingStatusCancelled, ""); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled

	c.notify(ctx, booking, models.EventBookingCancelled)

	utils.GetLogger().Info("booking cancelled",
		zap.String("bookingId", bookingID),
		zap.Bool("refundEligible", decision.RefundEligible))
	return &CancellationResult{Booking: booking, RefundEligible: decision.RefundEligible}, nil
}

// ReleaseExpiredHolds sweeps holds whose window lapsed, returning slots to
// open and failing their bookings. Runs from a background ticker; each
// release is individually guarded so a slot that moved on is skipped.
func (c *DefaultReservationCoordinator) ReleaseExpiredHolds(ctx context.Context, now time.Time) (int, error) {
	logger := utils.GetLogger()

	expired, err := c.Slots.ExpiredHolds(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to scan expired holds: %w", err)
	}

	released := 0
	for _, slot := range expired {
		ok, err := c.Slots.ReleaseIfExpired(ctx, slot.ID, now)
		if err != nil {
			logger.Error("failed to release expired hold", zap.String("slotId", slot.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		released++

		booking, err := c.Bookings.GetActiveBySlotID(ctx, slot.ID)
		if err != nil {
			if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
				logger.Error("failed to look up booking for expired hold",
					zap.String("slotId", slot.ID), zap.Error(err))
			}
			continue
		}
		if err := c.Bookings.UpdateStatus(ctx, booking.ID, models.BookingStatusFailed, "hold window expired"); err != nil {
			logger.Error("failed to fail booking for expired hold",
				zap.String("bookingId", booking.ID), zap.Error(err))
		}
	}

	if released > 0 {
		logger.Info("released expired holds", zap.Int("count", released))
	}
	return released, nil
}

func (c *DefaultReservationCoordinator) notify(ctx context.Context, booking *models.Booking, event models.BookingEvent) {
	if c.Notifier == nil {
		return
	}
	if err := c.Notifier.Notify(ctx, booking.ProviderID, booking.ID, event); err != nil {
		utils.GetLogger().Warn("notification failed",
			zap.String("bookingId", booking.ID),
			zap.String("event", string(event)),
			zap.Error(err))
	}
}
