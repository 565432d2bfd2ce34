// File: database/repository/catalog/memory.go
package catalogRepo

import (
	"context"
	"sync"

	"bookly/models"
)

type MemoryCatalogRepo struct {
	mu           sync.RWMutex
	services     map[string]models.Service
	availability map[string]models.ProviderAvailability
}

// NewMemoryCatalogRepo constructs a seedable in-memory CatalogRepository.
// For tests and local development.
func NewMemoryCatalogRepo() *MemoryCatalogRepo {
	return &MemoryCatalogRepo{
		services:     make(map[string]models.Service),
		availability: make(map[string]models.ProviderAvailability),
	}
}

// PutService seeds a service into the catalog.
func (r *MemoryCatalogRepo) PutService(svc models.Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[svc.ID] = svc
}

// PutAvailability seeds a provider availability document.
func (r *MemoryCatalogRepo) PutAvailability(avail models.ProviderAvailability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.availability[avail.ProviderID] = avail
}

func (r *MemoryCatalogRepo) GetService(ctx context.Context, serviceID string) (*models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[serviceID]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return &svc, nil
}

func (r *MemoryCatalogRepo) GetProviderAvailability(ctx context.Context, providerID string) (*models.ProviderAvailability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	avail, ok := r.availability[providerID]
	if !ok {
		return nil, ErrAvailabilityNotFound
	}
	return &avail, nil
}
