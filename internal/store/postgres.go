package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/exotic-travel-booking/backend/internal/database"
	"github.com/exotic-travel-booking/backend/internal/itinerary"
)

// PostgresStore persists itineraries as a single jsonb document per row,
// using an integer version column for optimistic concurrency.
type PostgresStore struct {
	pool *database.Pool
}

// NewPostgresStore wraps an already-open connection pool. Callers are
// expected to have run the trip_itineraries table migration:
//
//	CREATE TABLE trip_itineraries (
//	    id           TEXT PRIMARY KEY,
//	    owner_id     TEXT NOT NULL,
//	    version      INTEGER NOT NULL,
//	    document     JSONB NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL,
//	    updated_at   TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX trip_itineraries_owner_id_idx ON trip_itineraries (owner_id);
func NewPostgresStore(pool *database.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Initialize implements ItineraryStore.
func (s *PostgresStore) Initialize(ctx context.Context, it *itinerary.Itinerary) (string, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	it.Version = 1

	doc, err := json.Marshal(it)
	if err != nil {
		return "", fmt.Errorf("marshal itinerary: %w", err)
	}

	_, err = s.pool.ExecContext(ctx, `
		INSERT INTO trip_itineraries (id, owner_id, version, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, it.ID, it.OwnerID, it.Version, doc)
	if err != nil {
		return "", fmt.Errorf("insert itinerary: %w", err)
	}

	return it.ID, nil
}

// Load implements ItineraryStore.
func (s *PostgresStore) Load(ctx context.Context, id string) (*itinerary.Itinerary, error) {
	row := s.pool.QueryRowContext(ctx, `SELECT document FROM trip_itineraries WHERE id = $1`, id)

	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load itinerary: %w", err)
	}

	var it itinerary.Itinerary
	if err := json.Unmarshal(doc, &it); err != nil {
		return nil, fmt.Errorf("decode itinerary document: %w", err)
	}
	if err := it.Validate(); err != nil {
		return nil, fmt.Errorf("stored itinerary failed validation: %w", err)
	}
	return &it, nil
}

// Save implements ItineraryStore.
func (s *PostgresStore) Save(ctx context.Context, it *itinerary.Itinerary) error {
	expectedVersion := it.Version
	nextVersion := expectedVersion + 1
	it.Version = nextVersion

	doc, err := json.Marshal(it)
	if err != nil {
		it.Version = expectedVersion
		return fmt.Errorf("marshal itinerary: %w", err)
	}

	result, err := s.pool.ExecContext(ctx, `
		UPDATE trip_itineraries
		SET document = $1, version = $2, updated_at = now()
		WHERE id = $3 AND version = $4
	`, doc, nextVersion, it.ID, expectedVersion)
	if err != nil {
		it.Version = expectedVersion
		return fmt.Errorf("update itinerary: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		it.Version = expectedVersion
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		it.Version = expectedVersion
		exists, existsErr := s.Exists(ctx, it.ID)
		if existsErr == nil && !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	return nil
}

// Delete implements ItineraryStore.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.pool.ExecContext(ctx, `DELETE FROM trip_itineraries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete itinerary: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser implements ItineraryStore.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*itinerary.Itinerary, error) {
	rows, err := s.pool.QueryContext(ctx, `SELECT document FROM trip_itineraries WHERE owner_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	defer rows.Close()

	var out []*itinerary.Itinerary
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan itinerary: %w", err)
		}
		var it itinerary.Itinerary
		if err := json.Unmarshal(doc, &it); err != nil {
			return nil, fmt.Errorf("decode itinerary document: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// Exists implements ItineraryStore.
func (s *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	row := s.pool.QueryRowContext(ctx, `SELECT 1 FROM trip_itineraries WHERE id = $1`, id)
	var dummy int
	if err := row.Scan(&dummy); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check existence: %w", err)
	}
	return true, nil
}
