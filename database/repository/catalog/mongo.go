// File: database/repository/catalog/mongo.go
package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"bookly/models"
)

func (r *mongoCatalogRepo) GetService(ctx context.Context, serviceID string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	if err := r.serviceColl.FindOne(ctx, bson.M{"id": serviceID}).Decode(&svc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch service %s: %w", serviceID, err)
	}
	return &svc, nil
}

func (r *mongoCatalogRepo) GetProviderAvailability(ctx context.Context, providerID string) (*models.ProviderAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var avail models.ProviderAvailability
	if err := r.availabilityColl.FindOne(ctx, bson.M{"providerId": providerID}).Decode(&avail); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAvailabilityNotFound
		}
		return nil, fmt.Errorf("failed to fetch availability for provider %s: %w", providerID, err)
	}
	return &avail, nil
}
