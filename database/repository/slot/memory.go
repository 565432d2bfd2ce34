// File: database/repository/slot/memory.go
package slotRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bookly/models"
)

// memorySlotRepo is an in-process SlotRepository with the same guarded
// update semantics as the Mongo implementation. Used in tests and local
// development; the mutex stands in for Mongo's single-document atomicity.
type memorySlotRepo struct {
	mu    sync.Mutex
	slots map[string]models.TimeSlot
}

// NewMemorySlotRepo constructs an in-memory SlotRepository.
func NewMemorySlotRepo() SlotRepository {
	return &memorySlotRepo{slots: make(map[string]models.TimeSlot)}
}

func identityKey(s models.TimeSlot) string {
	return fmt.Sprintf("%s|%d|%d", s.ProviderID, s.Start.UnixNano(), s.End.UnixNano())
}

func (r *memorySlotRepo) UpsertMany(ctx context.Context, slots []models.TimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := make(map[string]struct{}, len(r.slots))
	for _, s := range r.slots {
		existing[identityKey(s)] = struct{}{}
	}
	for _, s := range slots {
		if _, ok := existing[identityKey(s)]; ok {
			continue
		}
		r.slots[s.ID] = s
		existing[identityKey(s)] = struct{}{}
	}
	return nil
}

func (r *memorySlotRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &s, nil
}

func (r *memorySlotRepo) GetByProviderInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.TimeSlot
	for _, s := range r.slots {
		if s.ProviderID == providerID && s.Start.Before(to) && s.End.After(from) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *memorySlotRepo) CompareAndHold(ctx context.Context, slotID string, expectedVersion int64, sessionID string, holdExpiresAt time.Time) (*models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotID]
	if !ok {
		return nil, ErrVersionConflict
	}
	if s.Version != expectedVersion {
		return nil, ErrVersionConflict
	}
	heldBySelf := s.State == models.SlotStateHeld && s.HeldBy == sessionID
	if s.State != models.SlotStateOpen && !heldBySelf {
		return nil, ErrVersionConflict
	}

	expiry := holdExpiresAt
	s.State = models.SlotStateHeld
	s.HeldBy = sessionID
	s.HoldExpiresAt = &expiry
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	r.slots[slotID] = s
	return &s, nil
}

func (r *memorySlotRepo) MarkBooked(ctx context.Context, slotID, sessionID string) (*models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotID]
	if !ok || s.HeldBy != sessionID {
		return nil, ErrVersionConflict
	}
	// Booked-by-self is a valid retry of a finalize whose confirm write
	// failed; anything else lost the slot.
	if s.State != models.SlotStateHeld && s.State != models.SlotStateBooked {
		return nil, ErrVersionConflict
	}

	s.State = models.SlotStateBooked
	s.HoldExpiresAt = nil
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	r.slots[slotID] = s
	return &s, nil
}

func (r *memorySlotRepo) ReleaseHold(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	return r.release(slotID, models.SlotStateHeld)
}

func (r *memorySlotRepo) ReleaseBooked(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	return r.release(slotID, models.SlotStateBooked)
}

func (r *memorySlotRepo) release(slotID string, fromState models.SlotState) (*models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotID]
	if !ok || s.State != fromState {
		return nil, ErrVersionConflict
	}

	s.State = models.SlotStateOpen
	s.HeldBy = ""
	s.HoldExpiresAt = nil
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	r.slots[slotID] = s
	return &s, nil
}

func (r *memorySlotRepo) ExpiredHolds(ctx context.Context, now time.Time) ([]models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.TimeSlot
	for _, s := range r.slots {
		if s.State == models.SlotStateHeld && s.HoldExpiresAt != nil && !s.HoldExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memorySlotRepo) ReleaseIfExpired(ctx context.Context, slotID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotID]
	if !ok || s.State != models.SlotStateHeld || s.HoldExpiresAt == nil || s.HoldExpiresAt.After(now) {
		return false, nil
	}

	s.State = models.SlotStateOpen
	s.HeldBy = ""
	s.HoldExpiresAt = nil
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	r.slots[slotID] = s
	return true, nil
}
