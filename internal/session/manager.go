package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned by Get for an unknown or evicted session id.
var ErrNotFound = errors.New("session not found")

// ErrBusy is returned by Acquire when a turn is already in flight on
// the session.
var ErrBusy = errors.New("session busy")

// ErrCostLimitExceeded is returned when a session's cumulative cost has
// crossed its ceiling and the next user message must be rejected.
var ErrCostLimitExceeded = errors.New("session cost limit exceeded")

// apiKeySessions is one API key's namespace of session id -> session,
// so two different keys never share sessions.
type apiKeySessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// Manager owns every session process-wide, namespaced by user API key,
// and evicts idle sessions on a periodic sweep. Grounded on the
// teacher's mutex-guarded in-process memory map, with TTL/eviction
// added per the pack's Redis-backed session store shape.
type Manager struct {
	mu       sync.RWMutex
	byAPIKey map[string]*apiKeySessions

	ttl          time.Duration
	costCeiling  float64
	log          *logrus.Entry
	tracer       trace.Tracer

	stopSweep chan struct{}
}

// NewManager returns a session manager with the given idle TTL and
// per-session cost ceiling, and starts its eviction sweeper.
func NewManager(ttl time.Duration, costCeiling float64) *Manager {
	m := &Manager{
		byAPIKey:    make(map[string]*apiKeySessions),
		ttl:         ttl,
		costCeiling: costCeiling,
		log:         logrus.WithField("component", "session_manager"),
		tracer:      otel.Tracer("trip_designer.session"),
		stopSweep:   make(chan struct{}),
	}
	go m.sweepLoop(5 * time.Minute)
	return m
}

// Stop terminates the eviction sweeper. Safe to call once.
func (m *Manager) Stop() {
	close(m.stopSweep)
}

func (m *Manager) namespace(apiKey string) *apiKeySessions {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.byAPIKey[apiKey]
	if !ok {
		ns = &apiKeySessions{sessions: make(map[string]*Session)}
		m.byAPIKey[apiKey] = ns
	}
	return ns
}

// Create allocates a new session bound to itineraryID under mode,
// scoped to apiKey's namespace.
func (m *Manager) Create(ctx context.Context, apiKey, itineraryID string, mode AgentMode) *Session {
	_, span := m.tracer.Start(ctx, "session_manager.create")
	defer span.End()
	span.SetAttributes(attribute.String("itinerary.id", itineraryID), attribute.String("agent.mode", string(mode)))

	now := time.Now()
	s := &Session{
		ID:           uuid.NewString(),
		ItineraryID:  itineraryID,
		AgentMode:    mode,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	ns := m.namespace(apiKey)
	ns.mu.Lock()
	ns.sessions[s.ID] = s
	ns.mu.Unlock()

	return s
}

// Get returns the session sessionID in apiKey's namespace, or
// ErrNotFound if it does not exist (including if it was evicted).
func (m *Manager) Get(apiKey, sessionID string) (*Session, error) {
	ns := m.namespace(apiKey)
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	s, ok := ns.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes sessionID from apiKey's namespace.
func (m *Manager) Delete(apiKey, sessionID string) {
	ns := m.namespace(apiKey)
	ns.mu.Lock()
	defer ns.mu.Unlock()
	delete(ns.sessions, sessionID)
}

// Acquire looks up the session and marks it busy for the duration of a
// turn, returning ErrNotFound or ErrBusy as appropriate.
func (m *Manager) Acquire(apiKey, sessionID string) (*Session, error) {
	s, err := m.Get(apiKey, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.TryAcquire() {
		return nil, ErrBusy
	}
	s.Touch()
	return s, nil
}

// CheckCostCeiling returns ErrCostLimitExceeded if s has already
// crossed the manager's per-session ceiling.
func (m *Manager) CheckCostCeiling(s *Session) error {
	if s.TotalCostUSD > m.costCeiling {
		return ErrCostLimitExceeded
	}
	return nil
}

func (m *Manager) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopSweep:
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *Manager) evictIdle() {
	m.mu.RLock()
	namespaces := make([]*apiKeySessions, 0, len(m.byAPIKey))
	for _, ns := range m.byAPIKey {
		namespaces = append(namespaces, ns)
	}
	m.mu.RUnlock()

	evicted := 0
	for _, ns := range namespaces {
		ns.mu.Lock()
		for id, s := range ns.sessions {
			if s.IdleFor() > m.ttl {
				delete(ns.sessions, id)
				evicted++
			}
		}
		ns.mu.Unlock()
	}

	if evicted > 0 {
		m.log.WithField("evicted", evicted).Info("evicted idle sessions")
	}
}
