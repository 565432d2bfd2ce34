// File: database/repository/booking/memory.go
package bookingRepo

import (
	"context"
	"sync"
	"time"

	"bookly/models"
)

type memoryBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

// NewMemoryBookingRepo constructs an in-memory BookingRepository for
// tests and local development.
func NewMemoryBookingRepo() BookingRepository {
	return &memoryBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *memoryBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings[booking.ID] = *booking
	return nil
}

func (r *memoryBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (r *memoryBookingRepo) GetBySessionAndSlot(ctx context.Context, sessionID, slotID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.SessionID == sessionID && b.SlotID == slotID {
			out := b
			return &out, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (r *memoryBookingRepo) GetActiveBySlotID(ctx context.Context, slotID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.SlotID != slotID {
			continue
		}
		switch b.Status {
		case models.BookingStatusPending, models.BookingStatusAwaitingPayment, models.BookingStatusConfirmed:
			out := b
			return &out, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (r *memoryBookingRepo) UpdateStatus(ctx context.Context, bookingID string, status models.BookingStatus, failureReason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	b.Status = status
	if failureReason != "" {
		b.FailureReason = failureReason
	}
	b.UpdatedAt = time.Now().UTC()
	r.bookings[bookingID] = b
	return nil
}
