package conversation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exotic-travel-booking/backend/internal/executor"
	"github.com/exotic-travel-booking/backend/internal/itinerary"
	"github.com/exotic-travel-booking/backend/internal/session"
	"github.com/exotic-travel-booking/backend/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, store.ItineraryStore, string) {
	t.Helper()
	st := store.NewMemoryStore()
	start, _ := itinerary.ParseLocalDate("2026-06-01")
	end, _ := itinerary.ParseLocalDate("2026-06-10")
	id, err := st.Initialize(context.Background(), &itinerary.Itinerary{
		Title: "Test", OwnerID: "user-1", StartDate: &start, EndDate: &end,
	})
	require.NoError(t, err)

	sessions := session.NewManager(time.Hour, 100)
	t.Cleanup(sessions.Stop)
	exec := executor.New(st, 100, 100)

	e := New(sessions, st, exec, Config{Model: "gpt-4o"})
	return e, st, id
}

func TestNew_AppliesDefaults(t *testing.T) {
	e := New(session.NewManager(time.Hour, 100), store.NewMemoryStore(), executor.New(store.NewMemoryStore(), 1, 1), Config{})
	defer e.sessions.Stop()

	assert.Equal(t, 200_000, e.cfg.ContextWindow)
	assert.InDelta(t, 0.5, e.cfg.CompactionThreshold, 1e-9)
	assert.Equal(t, 5, e.cfg.MaxToolIterations)
}

func TestNew_RespectsExplicitConfig(t *testing.T) {
	e := New(session.NewManager(time.Hour, 100), store.NewMemoryStore(), executor.New(store.NewMemoryStore(), 1, 1), Config{
		ContextWindow:       50000,
		CompactionThreshold: 0.8,
		MaxToolIterations:   3,
	})
	defer e.sessions.Stop()

	assert.Equal(t, 50000, e.cfg.ContextWindow)
	assert.InDelta(t, 0.8, e.cfg.CompactionThreshold, 1e-9)
	assert.Equal(t, 3, e.cfg.MaxToolIterations)
}

func TestEngine_CreateSession_PrimesHistory(t *testing.T) {
	e, _, id := newTestEngine(t)

	s, err := e.CreateSession(context.Background(), "api-key-1", id, session.ModeTripDesigner, "JFK")
	require.NoError(t, err)
	require.Len(t, s.History, 2)
	assert.Equal(t, session.RoleSystem, s.History[0].Role)
	assert.Equal(t, tripDesignerSystemPrompt, s.History[0].Content)
	assert.Equal(t, session.RoleUser, s.History[1].Role)
	assert.Contains(t, s.History[1].Content, "JFK")
}

func TestEngine_CreateSession_UnknownItineraryFails(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.CreateSession(context.Background(), "api-key-1", "missing", session.ModeTripDesigner, "")
	assert.Error(t, err)
}

func TestEngine_GetSession_RoundTrips(t *testing.T) {
	e, _, id := newTestEngine(t)

	s, err := e.CreateSession(context.Background(), "api-key-1", id, session.ModeTripDesigner, "")
	require.NoError(t, err)

	got, err := e.GetSession("api-key-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
}

func TestEngine_DeleteSession(t *testing.T) {
	e, _, id := newTestEngine(t)

	s, err := e.CreateSession(context.Background(), "api-key-1", id, session.ModeTripDesigner, "")
	require.NoError(t, err)

	e.DeleteSession("api-key-1", s.ID)

	_, err = e.GetSession("api-key-1", s.ID)
	assert.Error(t, err)
}

func TestEngine_LlmClientFor_CachesPerAPIKey(t *testing.T) {
	e, _, _ := newTestEngine(t)

	c1 := e.llmClientFor("key-a")
	c2 := e.llmClientFor("key-a")
	c3 := e.llmClientFor("key-b")

	assert.Same(t, c1, c2)
	assert.NotSame(t, c1, c3)
}

func TestTimeoutOrDefault(t *testing.T) {
	e := &Engine{}
	assert.Equal(t, 60*time.Second, e.timeoutOrDefault())

	e.cfg.LLMCallTimeout = 5 * time.Second
	assert.Equal(t, 5*time.Second, e.timeoutOrDefault())
}

func TestToolDef_KnownAndUnknown(t *testing.T) {
	def, ok := toolDef("get_itinerary")
	assert.True(t, ok)
	assert.Equal(t, "get_itinerary", def.Name)

	_, ok = toolDef("not_a_tool")
	assert.False(t, ok)
}

func TestToolSpecs_CoversFullCatalog(t *testing.T) {
	specs := toolSpecs()
	assert.Len(t, specs, 18)
}

func TestErrMessageIfAny_NoErrorReturnsEmpty(t *testing.T) {
	r := executor.Result{IsError: false, RawJSON: json.RawMessage(`{"success":true}`)}
	assert.Empty(t, errMessageIfAny(r))
}

func TestErrMessageIfAny_ErrorExtractsMessage(t *testing.T) {
	r := executor.Result{IsError: true, RawJSON: json.RawMessage(`{"success":false,"error":"not found","code":"ITINERARY_NOT_FOUND"}`)}
	assert.Equal(t, "not found", errMessageIfAny(r))
}

func TestEngine_ChatStream_SessionNotFound(t *testing.T) {
	e, _, _ := newTestEngine(t)

	ch := e.ChatStream(context.Background(), "api-key-1", "missing-session", "hello")
	var events []string
	for ev := range ch {
		events = append(events, string(ev.Type))
	}
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0])
}

func TestEngine_ChatStream_BusySessionRejected(t *testing.T) {
	e, _, id := newTestEngine(t)
	s, err := e.CreateSession(context.Background(), "api-key-1", id, session.ModeTripDesigner, "")
	require.NoError(t, err)

	require.True(t, s.TryAcquire())
	defer s.Release()

	ch := e.ChatStream(context.Background(), "api-key-1", s.ID, "hello")
	var events []string
	for ev := range ch {
		events = append(events, string(ev.Type))
	}
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0])
}
