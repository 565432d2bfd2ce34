package scheduling

import (
	"context"
	"testing"
	"time"

	catalogRepo "bookly/database/repository/catalog"
	slotRepo "bookly/database/repository/slot"
	"bookly/models"
)

// monday is 2026-03-09, a Monday.
const monday = "2026-03-09"

func newGenerator(t *testing.T, svc models.Service, avail models.ProviderAvailability) (*DefaultSlotGenerator, slotRepo.SlotRepository) {
	t.Helper()
	catalog := catalogRepo.NewMemoryCatalogRepo()
	catalog.PutService(svc)
	catalog.PutAvailability(avail)
	slots := slotRepo.NewMemorySlotRepo()
	return &DefaultSlotGenerator{Catalog: catalog, Slots: slots}, slots
}

func testService() models.Service {
	return models.Service{
		ID:              "svc-1",
		ProviderID:      "prov-1",
		Name:            "Deep Clean",
		DurationMinutes: 60,
		Price:           90.00,
		Currency:        "USD",
	}
}

func mondayAvailability(start, end string) models.ProviderAvailability {
	return models.ProviderAvailability{
		ProviderID: "prov-1",
		TimeZone:   "UTC",
		WorkingHours: []models.WorkingWindow{
			{Weekday: time.Monday, Start: start, End: end},
		},
	}
}

func utc(hour, min int) time.Time {
	return time.Date(2026, 3, 9, hour, min, 0, 0, time.UTC)
}

func TestGenerateFillsWorkingWindow(t *testing.T) {
	gen, _ := newGenerator(t, testService(), mondayAvailability("09:00", "12:00"))

	got, err := gen.Generate(context.Background(), monday, "prov-1", "svc-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d slots, want 3", len(got))
	}
	for i, wantStart := range []time.Time{utc(9, 0), utc(10, 0), utc(11, 0)} {
		if !got[i].Start.Equal(wantStart) {
			t.Errorf("slot %d starts %v, want %v", i, got[i].Start, wantStart)
		}
		if !got[i].End.Equal(wantStart.Add(time.Hour)) {
			t.Errorf("slot %d ends %v, want %v", i, got[i].End, wantStart.Add(time.Hour))
		}
		if got[i].State != models.SlotStateOpen {
			t.Errorf("slot %d state = %s, want open", i, got[i].State)
		}
		if got[i].Version != 1 {
			t.Errorf("slot %d version = %d, want 1", i, got[i].Version)
		}
	}
}

func TestGenerateTruncatesTail(t *testing.T) {
	gen, _ := newGenerator(t, testService(), mondayAvailability("09:00", "10:30"))

	got, err := gen.Generate(context.Background(), monday, "prov-1", "svc-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d slots, want 1", len(got))
	}
	if !got[0].Start.Equal(utc(9, 0)) || !got[0].End.Equal(utc(10, 0)) {
		t.Errorf("slot = %v..%v, want 09:00..10:00", got[0].Start, got[0].End)
	}
}

func TestGenerateWindowShorterThanDuration(t *testing.T) {
	gen, _ := newGenerator(t, testService(), mondayAvailability("09:00", "09:30"))

	got, err := gen.Generate(context.Background(), monday, "prov-1", "svc-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d slots, want 0", len(got))
	}
}

func TestGenerateSplitsAroundBlockedRange(t *testing.T) {
	avail := mondayAvailability("09:00", "12:00")
	avail.BlockedRanges = []models.TimeRange{{Start: utc(10, 0), End: utc(10, 30)}}
	gen, _ := newGenerator(t, testService(), avail)

	got, err := gen.Generate(context.Background(), monday, "prov-1", "svc-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d slots, want 2", len(got))
	}
	if !got[0].Start.Equal(utc(9, 0)) || !got[1].Start.Equal(utc(10, 30)) {
		t.Errorf("slot starts = %v, %v, want 09:00 and 10:30", got[0].Start, got[1].Start)
	}
}

func TestGenerateSkipsOccupiedSlots(t *testing.T) {
	gen, slots := newGenerator(t, testService(), mondayAvailability("09:00", "12:00"))

	booked := models.TimeSlot{
		ID:         "slot-booked",
		ProviderID: "prov-1",
		ServiceID:  "svc-1",
		Start:      utc(10, 0),
		End:        utc(11, 0),
		Version:    3,
		State:      models.SlotStateBooked,
	}
	if err := slots.UpsertMany(context.Background(), []models.TimeSlot{booked}); err != nil {
		t.Fatalf("seed booked slot: %v", err)
	}

	got, err := gen.Generate(context.Background(), monday, "prov-1", "svc-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d slots, want 2", len(got))
	}
	for _, s := range got {
		if s.Overlaps(utc(10, 0), utc(11, 0)) {
			t.Errorf("slot %v..%v overlaps the booked range", s.Start, s.End)
		}
	}
}

func TestGenerateIsDeterministicAcrossRuns(t *testing.T) {
	gen, _ := newGenerator(t, testService(), mondayAvailability("09:00", "12:00"))

	first, err := gen.Generate(context.Background(), monday, "prov-1", "svc-1")
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	second, err := gen.Generate(context.Background(), monday, "prov-1", "svc-1")
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("run sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("slot %d identity changed between runs: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestGenerateSlotsAreSortedAndDisjoint(t *testing.T) {
	avail := mondayAvailability("09:00", "12:00")
	avail.WorkingHours = append(avail.WorkingHours,
		models.WorkingWindow{Weekday: time.Monday, Start: "14:00", End: "16:00"})
	gen, _ := newGenerator(t, testService(), avail)

	got, err := gen.Generate(context.Background(), monday, "prov-1", "svc-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d slots, want 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start.Before(got[i-1].End) {
			t.Errorf("slot %d starts %v before previous ends %v", i, got[i].Start, got[i-1].End)
		}
	}
}

func TestGenerateRejectsForeignService(t *testing.T) {
	svc := testService()
	svc.ProviderID = "someone-else"
	gen, _ := newGenerator(t, svc, mondayAvailability("09:00", "12:00"))

	if _, err := gen.Generate(context.Background(), monday, "prov-1", "svc-1"); err == nil {
		t.Fatal("expected error for service owned by another provider")
	}
}
