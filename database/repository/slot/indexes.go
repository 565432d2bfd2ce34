// File: database/repository/slot/indexes.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the timeslots collection.
func (r *mongoSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Slot identity: one document per (provider, start, end).
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "start", Value: 1}, {Key: "end", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("provider_start_end_idx"),
		},
		// Primary availability-scan pattern.
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "state", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetName("provider_state_start_idx"),
		},
		// Hold-expiry sweep.
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "holdExpiresAt", Value: 1}},
			Options: options.Index().SetName("state_hold_expiry_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create timeslot indexes: %w", err)
	}
	return nil
}
