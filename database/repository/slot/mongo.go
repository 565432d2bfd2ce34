// File: database/repository/slot/mongo.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookly/models"
)

func (r *mongoSlotRepo) UpsertMany(ctx context.Context, slots []models.TimeSlot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if len(slots) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(slots))
	for _, slot := range slots {
		filter := bson.M{
			"providerId": slot.ProviderID,
			"start":      slot.Start,
			"end":        slot.End,
		}
		// $setOnInsert keeps state/version of already-materialized slots.
		update := bson.M{"$setOnInsert": slot}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(update).
			SetUpsert(true))
	}

	if _, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to upsert slots: %w", err)
	}
	return nil
}

func (r *mongoSlotRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.TimeSlot
	if err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to fetch slot %s: %w", slotID, err)
	}
	return &slot, nil
}

func (r *mongoSlotRepo) GetByProviderInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"start":      bson.M{"$lt": to},
		"end":        bson.M{"$gt": from},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query slots for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var slots []models.TimeSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// CompareAndHold is the reservation CAS. The version and state guard live
// in the filter, so the read-check-write is one document operation.
func (r *mongoSlotRepo) CompareAndHold(ctx context.Context, slotID string, expectedVersion int64, sessionID string, holdExpiresAt time.Time) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":      slotID,
		"version": expectedVersion,
		"$or": bson.A{
			bson.M{"state": models.SlotStateOpen},
			bson.M{"state": models.SlotStateHeld, "heldBy": sessionID},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"state":         models.SlotStateHeld,
			"heldBy":        sessionID,
			"holdExpiresAt": holdExpiresAt,
			"updatedAt":     time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *mongoSlotRepo) MarkBooked(ctx context.Context, slotID, sessionID string) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Matching booked-by-self makes the transition retryable: a finalize
	// whose confirm write failed can call again without conflicting.
	filter := bson.M{
		"id":     slotID,
		"heldBy": sessionID,
		"state":  bson.M{"$in": bson.A{models.SlotStateHeld, models.SlotStateBooked}},
	}
	update := bson.M{
		"$set":   bson.M{"state": models.SlotStateBooked, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"holdExpiresAt": ""},
		"$inc":   bson.M{"version": 1},
	}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *mongoSlotRepo) ReleaseHold(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "state": models.SlotStateHeld}
	return r.findOneAndUpdate(ctx, filter, releaseUpdate())
}

func (r *mongoSlotRepo) ReleaseBooked(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "state": models.SlotStateBooked}
	return r.findOneAndUpdate(ctx, filter, releaseUpdate())
}

func (r *mongoSlotRepo) ExpiredHolds(ctx context.Context, now time.Time) ([]models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"state":         models.SlotStateHeld,
		"holdExpiresAt": bson.M{"$lte": now},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired holds: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.TimeSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *mongoSlotRepo) ReleaseIfExpired(ctx context.Context, slotID string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":            slotID,
		"state":         models.SlotStateHeld,
		"holdExpiresAt": bson.M{"$lte": now},
	}
	res, err := r.coll.UpdateOne(ctx, filter, releaseUpdate())
	if err != nil {
		return false, fmt.Errorf("failed to release expired hold on slot %s: %w", slotID, err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoSlotRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&slot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("guarded slot update failed: %w", err)
	}
	return &slot, nil
}

func releaseUpdate() bson.M {
	return bson.M{
		"$set":   bson.M{"state": models.SlotStateOpen, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"heldBy": "", "holdExpiresAt": ""},
		"$inc":   bson.M{"version": 1},
	}
}
