// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"bookly/database"
	"bookly/models"
	"bookly/utils"
)

var (
	// ErrSlotNotFound is returned when no slot matches the given ID.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrVersionConflict is returned when a guarded update finds the slot
	// in a different state or version than the caller expected.
	ErrVersionConflict = errors.New("slot version conflict")
)

// SlotRepository is the only write path for slot state. Every mutating
// method is a single atomic, version-guarded operation against the store.
type SlotRepository interface {
	// UpsertMany materializes generated slots, keyed by (providerId, start, end).
	// Existing slots keep their state and version; only new identities insert.
	UpsertMany(ctx context.Context, slots []models.TimeSlot) error

	GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error)
	GetByProviderInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.TimeSlot, error)

	// CompareAndHold transitions open -> held iff the slot's version equals
	// expectedVersion and it is open, or already held by sessionID. Bumps
	// the version and stamps the hold expiry. Returns ErrVersionConflict
	// without writing when the guard fails.
	CompareAndHold(ctx context.Context, slotID string, expectedVersion int64, sessionID string, holdExpiresAt time.Time) (*models.TimeSlot, error)

	// MarkBooked transitions held -> booked for the session that holds the
	// slot, clearing the hold expiry and bumping the version. The owning
	// session stays recorded on the slot, so a retried MarkBooked by that
	// session succeeds instead of conflicting.
	MarkBooked(ctx context.Context, slotID, sessionID string) (*models.TimeSlot, error)

	// ReleaseHold transitions held -> open, clearing the hold and bumping
	// the version. Used on payment failure and abandoned checkouts.
	ReleaseHold(ctx context.Context, slotID string) (*models.TimeSlot, error)

	// ReleaseBooked transitions booked -> open with a version bump. The one
	// cancellation path that returns a booked slot to availability.
	ReleaseBooked(ctx context.Context, slotID string) (*models.TimeSlot, error)

	// ExpiredHolds returns held slots whose hold expiry is at or before now.
	ExpiredHolds(ctx context.Context, now time.Time) ([]models.TimeSlot, error)

	// ReleaseIfExpired transitions held -> open only if the hold is still
	// expired at execution time; a no-op if the slot moved on meanwhile.
	ReleaseIfExpired(ctx context.Context, slotID string, now time.Time) (bool, error)
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a MongoDB-backed SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	repo := &mongoSlotRepo{coll: database.DB().Collection("timeslots")}
	if err := repo.EnsureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to ensure timeslot indexes", zap.Error(err))
	}
	return repo
}
