// Package store defines the itinerary storage boundary: an opaque
// key-value mapping of itinerary id to record, per the external
// storage-backend interface. It ships an in-memory reference
// implementation plus a Postgres-backed implementation with optimistic
// versioning and an optional Redis cache-aside layer.
package store

import (
	"context"
	"errors"

	"github.com/exotic-travel-booking/backend/internal/itinerary"
)

// ErrNotFound is returned when an itinerary id has no record.
var ErrNotFound = errors.New("itinerary not found")

// ErrVersionConflict is returned by Save when the caller's expected
// version does not match the stored version (optimistic concurrency).
var ErrVersionConflict = errors.New("itinerary version conflict")

// ItineraryStore is the storage boundary the executor and session
// manager depend on. Implementations must validate records against the
// itinerary schema on load and persist a single Save atomically.
type ItineraryStore interface {
	// Initialize creates a new itinerary record, returning its id.
	Initialize(ctx context.Context, it *itinerary.Itinerary) (string, error)

	// Load returns the itinerary for id, or ErrNotFound.
	Load(ctx context.Context, id string) (*itinerary.Itinerary, error)

	// Save persists it atomically, enforcing that it.Version matches the
	// currently stored version before writing, then increments it.
	// Returns ErrVersionConflict on mismatch.
	Save(ctx context.Context, it *itinerary.Itinerary) error

	// Delete removes the itinerary for id.
	Delete(ctx context.Context, id string) error

	// ListByUser returns every itinerary owned by userID.
	ListByUser(ctx context.Context, userID string) ([]*itinerary.Itinerary, error)

	// Exists reports whether id has a record.
	Exists(ctx context.Context, id string) (bool, error)
}
