package store

import (
	"context"
	"time"

	"github.com/exotic-travel-booking/backend/internal/cache"
	"github.com/exotic-travel-booking/backend/internal/itinerary"
)

// itineraryCachePrefix namespaces itinerary cache keys.
const itineraryCachePrefix = "itinerary"

// itineraryCacheTTL bounds how long a cached itinerary document may go
// stale relative to the backing store.
const itineraryCacheTTL = 5 * time.Minute

// CachedStore is an optional cache-aside layer in front of another
// ItineraryStore, keyed by itinerary id. Reads check the cache first;
// writes go to the backing store first and then invalidate the cache
// entry; a crash between the two leaves the previous version cached
// until itineraryCacheTTL expires.
type CachedStore struct {
	backing ItineraryStore
	cache   *cache.Cache
}

// NewCachedStore wraps backing with a Redis cache-aside layer.
func NewCachedStore(backing ItineraryStore, c *cache.Cache) *CachedStore {
	return &CachedStore{backing: backing, cache: c}
}

func (s *CachedStore) key(id string) string {
	return cache.CacheKey(itineraryCachePrefix, id)
}

// Initialize implements ItineraryStore.
func (s *CachedStore) Initialize(ctx context.Context, it *itinerary.Itinerary) (string, error) {
	return s.backing.Initialize(ctx, it)
}

// Load implements ItineraryStore, serving from cache when present.
func (s *CachedStore) Load(ctx context.Context, id string) (*itinerary.Itinerary, error) {
	var cached itinerary.Itinerary
	if err := s.cache.Get(ctx, s.key(id), &cached); err == nil {
		return &cached, nil
	}

	it, err := s.backing.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, s.key(id), it, itineraryCacheTTL)
	return it, nil
}

// Save implements ItineraryStore: writes through to the backing store,
// then invalidates the cache entry regardless of outcome so a retried
// read never serves the pre-save version.
func (s *CachedStore) Save(ctx context.Context, it *itinerary.Itinerary) error {
	err := s.backing.Save(ctx, it)
	_ = s.cache.Delete(ctx, s.key(it.ID))
	return err
}

// Delete implements ItineraryStore.
func (s *CachedStore) Delete(ctx context.Context, id string) error {
	err := s.backing.Delete(ctx, id)
	_ = s.cache.Delete(ctx, s.key(id))
	return err
}

// ListByUser implements ItineraryStore. Lists are not cached; callers
// needing a hot listing path should cache at a higher layer.
func (s *CachedStore) ListByUser(ctx context.Context, userID string) ([]*itinerary.Itinerary, error) {
	return s.backing.ListByUser(ctx, userID)
}

// Exists implements ItineraryStore.
func (s *CachedStore) Exists(ctx context.Context, id string) (bool, error) {
	exists, err := s.cache.Exists(ctx, s.key(id))
	if err == nil && exists {
		return true, nil
	}
	return s.backing.Exists(ctx, id)
}
