// Package httpapi exposes the conversation engine over HTTP: a
// streaming chat endpoint plus session and itinerary CRUD, using the
// "event: <type>\ndata: <json>\n\n" SSE framing and JSON request/response
// shapes common across the fiber handlers this module is built from.
package httpapi

import (
	"bufio"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/exotic-travel-booking/backend/internal/conversation"
	"github.com/exotic-travel-booking/backend/internal/httpapi/middleware"
	"github.com/exotic-travel-booking/backend/internal/session"
	"github.com/exotic-travel-booking/backend/internal/store"
	"github.com/exotic-travel-booking/backend/internal/streamevent"
)

// ChatHandler serves the conversation engine's HTTP surface.
type ChatHandler struct {
	engine *conversation.Engine
	store  store.ItineraryStore
	tracer trace.Tracer
}

// NewChatHandler constructs a ChatHandler over the given engine and
// itinerary store.
func NewChatHandler(engine *conversation.Engine, st store.ItineraryStore) *ChatHandler {
	return &ChatHandler{
		engine: engine,
		store:  st,
		tracer: otel.Tracer("trip_designer.httpapi.chat"),
	}
}

// chatRequest is the body of POST /sessions/:sessionId/messages.
type chatRequest struct {
	Message string `json:"message"`
}

// ChatStream streams one turn's events as SSE frames. Each frame is
// "event: <type>\ndata: <json>\n\n"; the stream ends after exactly one
// "done" or "error" frame.
func (h *ChatHandler) ChatStream(c *fiber.Ctx) error {
	ctx, span := h.tracer.Start(c.Context(), "chat_handler.chat_stream")
	defer span.End()

	sessionID := c.Params("sessionId")
	apiKey := middleware.LLMAPIKey(c)
	span.SetAttributes(attribute.String("session.id", sessionID))

	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message is required")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	events := h.engine.ChatStream(ctx, apiKey, sessionID, req.Message)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		for env := range events {
			writeSSEFrame(w, env)
			if err := w.Flush(); err != nil {
				return
			}
		}
	})

	return nil
}

func writeSSEFrame(w *bufio.Writer, env streamevent.Envelope) {
	fmt.Fprintf(w, "event: %s\n", env.Type)
	fmt.Fprintf(w, "data: %s\n\n", env.Payload)
}

// createSessionRequest is the body of POST /sessions.
type createSessionRequest struct {
	ItineraryID string `json:"itineraryId"`
	Mode        string `json:"mode"`
	HomeAirport string `json:"homeAirport"`
}

// sessionResponse is the JSON shape returned for a session.
type sessionResponse struct {
	ID               string    `json:"id"`
	ItineraryID      string    `json:"itineraryId"`
	AgentMode        string    `json:"agentMode"`
	PromptTokens     int       `json:"promptTokens"`
	CompletionTokens int       `json:"completionTokens"`
	TotalCostUSD     float64   `json:"totalCostUsd"`
	CreatedAt        time.Time `json:"createdAt"`
	LastActiveAt     time.Time `json:"lastActiveAt"`
}

func toSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		ID:               s.ID,
		ItineraryID:      s.ItineraryID,
		AgentMode:        string(s.AgentMode),
		PromptTokens:     s.PromptTokens,
		CompletionTokens: s.CompletionTokens,
		TotalCostUSD:     s.TotalCostUSD,
		CreatedAt:        s.CreatedAt,
		LastActiveAt:     s.LastActiveAt,
	}
}

// CreateSession handles POST /sessions: allocates a session bound to an
// existing itinerary, primed with the mode's system prompt and a hidden
// context-primer message.
func (h *ChatHandler) CreateSession(c *fiber.Ctx) error {
	ctx, span := h.tracer.Start(c.Context(), "chat_handler.create_session")
	defer span.End()

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ItineraryID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "itineraryId is required")
	}

	mode := session.AgentMode(req.Mode)
	if mode == "" {
		mode = session.ModeTripDesigner
	}

	apiKey := middleware.LLMAPIKey(c)
	s, err := h.engine.CreateSession(ctx, apiKey, req.ItineraryID, mode, req.HomeAirport)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "itinerary not found")
		}
		span.RecordError(err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create session")
	}

	return c.Status(fiber.StatusCreated).JSON(toSessionResponse(s))
}

// GetSession handles GET /sessions/:sessionId.
func (h *ChatHandler) GetSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	apiKey := middleware.LLMAPIKey(c)

	s, err := h.sessionByID(apiKey, sessionID)
	if err != nil {
		return err
	}
	return c.JSON(toSessionResponse(s))
}

// DeleteSession handles DELETE /sessions/:sessionId.
func (h *ChatHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	apiKey := middleware.LLMAPIKey(c)

	if _, err := h.sessionByID(apiKey, sessionID); err != nil {
		return err
	}
	h.engine.DeleteSession(apiKey, sessionID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChatHandler) sessionByID(apiKey, sessionID string) (*session.Session, error) {
	s, err := h.engine.GetSession(apiKey, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load session")
	}
	return s, nil
}

// RegisterRoutes wires the chat, session, and itinerary endpoints onto
// router under authSecret-protected middleware.
func RegisterRoutes(router fiber.Router, chat *ChatHandler, itineraries *ItineraryHandler, authSecret string) {
	api := router.Group("/v1", middleware.RequireAuth(authSecret))

	api.Post("/itineraries", itineraries.Create)
	api.Get("/itineraries", itineraries.List)
	api.Get("/itineraries/:itineraryId", itineraries.Get)

	api.Post("/sessions", chat.CreateSession)
	api.Get("/sessions/:sessionId", chat.GetSession)
	api.Delete("/sessions/:sessionId", chat.DeleteSession)
	api.Post("/sessions/:sessionId/messages", chat.ChatStream)
}
