package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exotic-travel-booking/backend/internal/httpapi/middleware"
	"github.com/exotic-travel-booking/backend/internal/itinerary"
	"github.com/exotic-travel-booking/backend/internal/store"
)

// withUser fakes RequireAuth's effect so itinerary handler tests don't
// need a signed JWT: it injects the same fiber locals the middleware sets.
func withUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("trip_designer.user_id", userID)
		return c.Next()
	}
}

func newItineraryTestApp(st store.ItineraryStore) *fiber.App {
	h := NewItineraryHandler(st)
	app := fiber.New()
	g := app.Group("/v1", withUser("user-1"))
	g.Post("/itineraries", h.Create)
	g.Get("/itineraries", h.List)
	g.Get("/itineraries/:itineraryId", h.Get)
	return app
}

func TestItineraryHandler_Create_Success(t *testing.T) {
	st := store.NewMemoryStore()
	app := newItineraryTestApp(st)

	body, _ := json.Marshal(createItineraryRequest{
		Title:     "Paris trip",
		StartDate: "2026-06-01",
		EndDate:   "2026-06-10",
	})
	req := httptest.NewRequest("POST", "/v1/itineraries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got itinerary.Itinerary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Paris trip", got.Title)
	assert.Equal(t, "user-1", got.OwnerID)
	assert.NotEmpty(t, got.ID)
}

func TestItineraryHandler_Create_MissingTitleRejected(t *testing.T) {
	st := store.NewMemoryStore()
	app := newItineraryTestApp(st)

	body, _ := json.Marshal(createItineraryRequest{StartDate: "2026-06-01"})
	req := httptest.NewRequest("POST", "/v1/itineraries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestItineraryHandler_Create_InvalidStartDateRejected(t *testing.T) {
	st := store.NewMemoryStore()
	app := newItineraryTestApp(st)

	body, _ := json.Marshal(createItineraryRequest{Title: "Trip", StartDate: "not-a-date"})
	req := httptest.NewRequest("POST", "/v1/itineraries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestItineraryHandler_Get_Found(t *testing.T) {
	st := store.NewMemoryStore()
	id, err := st.Initialize(context.Background(), &itinerary.Itinerary{Title: "Trip", OwnerID: "user-1"})
	require.NoError(t, err)

	app := newItineraryTestApp(st)
	req := httptest.NewRequest("GET", "/v1/itineraries/"+id, nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestItineraryHandler_Get_NotFound(t *testing.T) {
	st := store.NewMemoryStore()
	app := newItineraryTestApp(st)

	req := httptest.NewRequest("GET", "/v1/itineraries/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestItineraryHandler_List_FiltersByOwner(t *testing.T) {
	st := store.NewMemoryStore()
	_, err := st.Initialize(context.Background(), &itinerary.Itinerary{Title: "Mine", OwnerID: "user-1"})
	require.NoError(t, err)
	_, err = st.Initialize(context.Background(), &itinerary.Itinerary{Title: "Someone else's", OwnerID: "user-2"})
	require.NoError(t, err)

	app := newItineraryTestApp(st)
	req := httptest.NewRequest("GET", "/v1/itineraries", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []itinerary.Itinerary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Mine", got[0].Title)
}
