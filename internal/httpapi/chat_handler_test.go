package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exotic-travel-booking/backend/internal/conversation"
	"github.com/exotic-travel-booking/backend/internal/executor"
	"github.com/exotic-travel-booking/backend/internal/itinerary"
	"github.com/exotic-travel-booking/backend/internal/session"
	"github.com/exotic-travel-booking/backend/internal/store"
)

func newChatTestApp(t *testing.T) (*fiber.App, store.ItineraryStore, *conversation.Engine) {
	t.Helper()
	st := store.NewMemoryStore()
	sessions := session.NewManager(time.Hour, 100)
	t.Cleanup(sessions.Stop)
	exec := executor.New(st, 100, 100)
	engine := conversation.New(sessions, st, exec, conversation.Config{Model: "gpt-4o"})

	h := NewChatHandler(engine, st)
	app := fiber.New()
	g := app.Group("/v1", withUser("user-1"))
	g.Post("/sessions", h.CreateSession)
	g.Get("/sessions/:sessionId", h.GetSession)
	g.Delete("/sessions/:sessionId", h.DeleteSession)
	g.Post("/sessions/:sessionId/messages", h.ChatStream)

	return app, st, engine
}

func TestChatHandler_CreateSession_Success(t *testing.T) {
	app, st, _ := newChatTestApp(t)
	id, err := st.Initialize(context.Background(), &itinerary.Itinerary{Title: "Trip", OwnerID: "user-1"})
	require.NoError(t, err)

	body, _ := json.Marshal(createSessionRequest{ItineraryID: id})
	req := httptest.NewRequest("POST", "/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got sessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, id, got.ItineraryID)
	assert.Equal(t, string(session.ModeTripDesigner), got.AgentMode)
}

func TestChatHandler_CreateSession_MissingItineraryIDRejected(t *testing.T) {
	app, _, _ := newChatTestApp(t)

	body, _ := json.Marshal(createSessionRequest{})
	req := httptest.NewRequest("POST", "/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestChatHandler_CreateSession_UnknownItineraryReturns404(t *testing.T) {
	app, _, _ := newChatTestApp(t)

	body, _ := json.Marshal(createSessionRequest{ItineraryID: "missing"})
	req := httptest.NewRequest("POST", "/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestChatHandler_GetSession_NotFound(t *testing.T) {
	app, _, _ := newChatTestApp(t)

	req := httptest.NewRequest("GET", "/v1/sessions/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestChatHandler_GetSession_Found(t *testing.T) {
	app, st, engine := newChatTestApp(t)
	id, err := st.Initialize(context.Background(), &itinerary.Itinerary{Title: "Trip", OwnerID: "user-1"})
	require.NoError(t, err)
	s, err := engine.CreateSession(context.Background(), "", id, session.ModeTripDesigner, "")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/v1/sessions/"+s.ID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestChatHandler_DeleteSession_RemovesSession(t *testing.T) {
	app, st, engine := newChatTestApp(t)
	id, err := st.Initialize(context.Background(), &itinerary.Itinerary{Title: "Trip", OwnerID: "user-1"})
	require.NoError(t, err)
	s, err := engine.CreateSession(context.Background(), "", id, session.ModeTripDesigner, "")
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/v1/sessions/"+s.ID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	getReq := httptest.NewRequest("GET", "/v1/sessions/"+s.ID, nil)
	getResp, err := app.Test(getReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, getResp.StatusCode)
}

func TestChatHandler_ChatStream_MissingMessageRejected(t *testing.T) {
	app, st, engine := newChatTestApp(t)
	id, err := st.Initialize(context.Background(), &itinerary.Itinerary{Title: "Trip", OwnerID: "user-1"})
	require.NoError(t, err)
	s, err := engine.CreateSession(context.Background(), "", id, session.ModeTripDesigner, "")
	require.NoError(t, err)

	body, _ := json.Marshal(chatRequest{Message: ""})
	req := httptest.NewRequest("POST", "/v1/sessions/"+s.ID+"/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestChatHandler_ChatStream_InvalidBodyRejected(t *testing.T) {
	app, st, engine := newChatTestApp(t)
	id, err := st.Initialize(context.Background(), &itinerary.Itinerary{Title: "Trip", OwnerID: "user-1"})
	require.NoError(t, err)
	s, err := engine.CreateSession(context.Background(), "", id, session.ModeTripDesigner, "")
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/v1/sessions/"+s.ID+"/messages", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
