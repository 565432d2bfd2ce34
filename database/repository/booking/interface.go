// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"bookly/database"
	"bookly/models"
)

// ErrBookingNotFound is returned when no booking matches the query.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepository persists bookings. Slot state itself is never written
// here; the coordinator pairs these writes with guarded slot updates.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)

	// GetBySessionAndSlot finds the booking a workflow session already
	// created for a slot, so retried reserves stay idempotent.
	GetBySessionAndSlot(ctx context.Context, sessionID, slotID string) (*models.Booking, error)

	// GetActiveBySlotID returns the non-terminal booking referencing the
	// slot, if any.
	GetActiveBySlotID(ctx context.Context, slotID string) (*models.Booking, error)

	UpdateStatus(ctx context.Context, bookingID string, status models.BookingStatus, failureReason string) error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a MongoDB-backed BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	return &mongoBookingRepo{coll: database.DB().Collection("bookings")}
}
