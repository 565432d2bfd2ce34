// File: services/scheduling/slots.go
package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogRepo "bookly/database/repository/catalog"
	slotRepo "bookly/database/repository/slot"
	"bookly/models"
	"bookly/utils"
)

// SlotGenerator materializes candidate time slots for a date/provider/service
// triple. Regenerate on any date or provider change; results are not
// restartable across dates.
type SlotGenerator interface {
	Generate(ctx context.Context, date, providerID, serviceID string) ([]models.TimeSlot, error)
}

// DefaultSlotGenerator intersects the provider's working hours with blocked
// ranges and walks the open windows in service-duration increments.
type DefaultSlotGenerator struct {
	Catalog catalogRepo.CatalogRepository
	Slots   slotRepo.SlotRepository
}

func (g *DefaultSlotGenerator) Generate(ctx context.Context, date, providerID, serviceID string) ([]models.TimeSlot, error) {
	logger := utils.GetLogger()

	svc, err := g.Catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service %s: %w", serviceID, err)
	}
	if svc.ProviderID != providerID {
		return nil, fmt.Errorf("service %s does not belong to provider %s", serviceID, providerID)
	}
	if svc.DurationMinutes <= 0 {
		return nil, fmt.Errorf("service %s has non-positive duration", serviceID)
	}
	duration := time.Duration(svc.DurationMinutes) * time.Minute

	avail, err := g.Catalog.GetProviderAvailability(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability for provider %s: %w", providerID, err)
	}

	loc := time.UTC
	if avail.TimeZone != "" {
		loc, err = time.LoadLocation(avail.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("invalid provider time zone %q: %w", avail.TimeZone, err)
		}
	}

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	// Resolve the weekday's working windows to absolute UTC ranges, then
	// carve out the blocked ranges.
	windows, err := resolveWorkingWindows(avail.WorkingHours, day, loc)
	if err != nil {
		return nil, err
	}
	open := subtractRanges(windows, avail.BlockedRanges)
	if len(open) == 0 {
		return nil, nil
	}

	spanStart, spanEnd := open[0].Start, open[len(open)-1].End
	existing, err := g.Slots.GetByProviderInRange(ctx, providerID, spanStart, spanEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to scan existing slots: %w", err)
	}
	var occupied []models.TimeSlot
	for _, s := range existing {
		if s.Occupied() {
			occupied = append(occupied, s)
		}
	}

	now := time.Now().UTC()
	var candidates []models.TimeSlot
	for _, w := range open {
		// Walk in whole-duration increments; a tail shorter than one
		// duration yields nothing rather than overflowing the window.
		for t := w.Start; !t.Add(duration).After(w.End); t = t.Add(duration) {
			end := t.Add(duration)
			if overlapsAny(t, end, occupied) {
				continue
			}
			candidates = append(candidates, models.TimeSlot{
				ID:         uuid.New().String(),
				ProviderID: providerID,
				ServiceID:  serviceID,
				Start:      t,
				End:        end,
				Version:    1,
				State:      models.SlotStateOpen,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	if err := g.Slots.UpsertMany(ctx, candidates); err != nil {
		return nil, fmt.Errorf("failed to materialize slots: %w", err)
	}

	// Re-read so already-materialized identities come back with their
	// stored version; a slot held or booked meanwhile is simply dropped.
	stored, err := g.Slots.GetByProviderInRange(ctx, providerID, spanStart, spanEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read materialized slots: %w", err)
	}

	wanted := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		wanted[rangeKey(c.Start, c.End)] = struct{}{}
	}

	var out []models.TimeSlot
	for _, s := range stored {
		if _, ok := wanted[rangeKey(s.Start, s.End)]; !ok {
			continue
		}
		if s.State != models.SlotStateOpen {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })

	logger.Debug("generated slots",
		zap.String("providerId", providerID),
		zap.String("date", date),
		zap.Int("count", len(out)))
	return out, nil
}

func rangeKey(start, end time.Time) string {
	return fmt.Sprintf("%d|%d", start.UnixNano(), end.UnixNano())
}

func overlapsAny(start, end time.Time, slots []models.TimeSlot) bool {
	for _, s := range slots {
		if s.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// resolveWorkingWindows turns the weekday's wall-clock windows on day into
// merged, ascending absolute UTC ranges.
func resolveWorkingWindows(hours []models.WorkingWindow, day time.Time, loc *time.Location) ([]models.TimeRange, error) {
	var ranges []models.TimeRange
	for _, w := range hours {
		if w.Weekday != day.Weekday() {
			continue
		}
		start, err := atWallClock(day, w.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid working window start %q: %w", w.Start, err)
		}
		end, err := atWallClock(day, w.End, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid working window end %q: %w", w.End, err)
		}
		if !start.Before(end) {
			continue
		}
		ranges = append(ranges, models.TimeRange{Start: start.UTC(), End: end.UTC()})
	}
	return mergeRanges(ranges), nil
}

func atWallClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// mergeRanges sorts and coalesces overlapping or touching ranges.
func mergeRanges(ranges []models.TimeRange) []models.TimeRange {
	if len(ranges) <= 1 {
		return ranges
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start.Before(ranges[j].Start) })

	merged := []models.TimeRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if !r.Start.After(last.End) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// subtractRanges removes every blocked range from the open windows,
// splitting windows where a block lands in the middle.
func subtractRanges(windows, blocked []models.TimeRange) []models.TimeRange {
	out := windows
	for _, b := range blocked {
		var next []models.TimeRange
		for _, w := range out {
			if !w.Overlaps(b) {
				next = append(next, w)
				continue
			}
			if w.Start.Before(b.Start) {
				next = append(next, models.TimeRange{Start: w.Start, End: b.Start})
			}
			if b.End.Before(w.End) {
				next = append(next, models.TimeRange{Start: b.End, End: w.End})
			}
		}
		out = next
	}
	return out
}
