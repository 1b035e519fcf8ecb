package store

// Compile-time interface compliance checks. PostgresStore and CachedStore
// are exercised via MemoryStore instead of a live Postgres/Redis in the
// test suite — see DESIGN.md for why.
var (
	_ ItineraryStore = (*MemoryStore)(nil)
	_ ItineraryStore = (*PostgresStore)(nil)
	_ ItineraryStore = (*CachedStore)(nil)
)
