package models

import "time"

// WorkingWindow is one recurring working-hours window on a weekday.
// Start and End are wall-clock times in the provider's zone, "15:04" format.
type WorkingWindow struct {
	Weekday time.Weekday `bson:"weekday" json:"weekday"`
	Start   string       `bson:"start" json:"start"`
	End     string       `bson:"end" json:"end"`
}

// TimeRange is an absolute half-open range [Start, End) in UTC.
type TimeRange struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// Overlaps reports whether two ranges intersect.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// ProviderAvailability is the source of truth for which slots may ever
// be generated for a provider. Mutated by the provider out-of-band.
type ProviderAvailability struct {
	ProviderID    string          `bson:"providerId" json:"providerId"`
	TimeZone      string          `bson:"timeZone" json:"timeZone"`
	WorkingHours  []WorkingWindow `bson:"workingHours" json:"workingHours"`
	BlockedRanges []TimeRange     `bson:"blockedRanges" json:"blockedRanges"`
}
