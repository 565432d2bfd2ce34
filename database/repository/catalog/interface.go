// File: database/repository/catalog/interface.go
package catalogRepo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"bookly/database"
	"bookly/models"
)

var (
	// ErrServiceNotFound is returned for unknown service IDs.
	ErrServiceNotFound = errors.New("service not found")
	// ErrAvailabilityNotFound is returned when a provider has no
	// availability document.
	ErrAvailabilityNotFound = errors.New("provider availability not found")
)

// CatalogRepository is the read-only view of the service/provider catalog.
// The catalog itself is maintained out-of-band; the booking core only
// ever reads it, and assumes it consistent within a single workflow run.
type CatalogRepository interface {
	GetService(ctx context.Context, serviceID string) (*models.Service, error)
	GetProviderAvailability(ctx context.Context, providerID string) (*models.ProviderAvailability, error)
}

type mongoCatalogRepo struct {
	serviceColl      *mongo.Collection
	availabilityColl *mongo.Collection
}

// NewMongoCatalogRepo constructs a MongoDB-backed CatalogRepository.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.DB()
	return &mongoCatalogRepo{
		serviceColl:      db.Collection("services"),
		availabilityColl: db.Collection("provider_availability"),
	}
}
