package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exotic-travel-booking/backend/internal/itinerary"
)

// MemoryStore is an in-process ItineraryStore, used in tests and as the
// default store for single-process deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*itinerary.Itinerary
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*itinerary.Itinerary)}
}

// Initialize implements ItineraryStore.
func (s *MemoryStore) Initialize(ctx context.Context, it *itinerary.Itinerary) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	now := time.Now()
	it.CreatedAt = now
	it.UpdatedAt = now
	it.Version = 1

	s.items[it.ID] = it.Clone()
	return it.ID, nil
}

// Load implements ItineraryStore.
func (s *MemoryStore) Load(ctx context.Context, id string) (*itinerary.Itinerary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := it.Validate(); err != nil {
		return nil, fmt.Errorf("stored itinerary %s failed validation: %w", id, err)
	}
	return it.Clone(), nil
}

// Save implements ItineraryStore.
func (s *MemoryStore) Save(ctx context.Context, it *itinerary.Itinerary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[it.ID]
	if !ok {
		return ErrNotFound
	}
	if existing.Version != it.Version {
		return ErrVersionConflict
	}

	updated := it.Clone()
	updated.Version = existing.Version + 1
	updated.UpdatedAt = time.Now()
	s.items[it.ID] = updated
	it.Version = updated.Version
	it.UpdatedAt = updated.UpdatedAt
	return nil
}

// Delete implements ItineraryStore.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// ListByUser implements ItineraryStore.
func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]*itinerary.Itinerary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*itinerary.Itinerary
	for _, it := range s.items {
		if it.OwnerID == userID {
			out = append(out, it.Clone())
		}
	}
	return out, nil
}

// Exists implements ItineraryStore.
func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.items[id]
	return ok, nil
}
