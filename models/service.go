package models

// Service is a provider's offering. Immutable for the duration of a
// single booking transaction; its duration sets the slot granularity.
type Service struct {
	ID              string  `bson:"id" json:"id"`
	ProviderID      string  `bson:"providerId" json:"providerId"`
	Name            string  `bson:"name" json:"name"`
	DurationMinutes int     `bson:"durationMinutes" json:"durationMinutes"`
	Price           float64 `bson:"price" json:"price"`
	Currency        string  `bson:"currency" json:"currency"`
}
