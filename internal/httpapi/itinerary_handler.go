package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/exotic-travel-booking/backend/internal/httpapi/middleware"
	"github.com/exotic-travel-booking/backend/internal/itinerary"
	"github.com/exotic-travel-booking/backend/internal/store"
)

// ItineraryHandler exposes the itinerary store as plain CRUD over HTTP,
// separate from the conversation engine: a trip can be created, listed,
// and inspected without an active chat session.
type ItineraryHandler struct {
	store  store.ItineraryStore
	tracer trace.Tracer
}

// NewItineraryHandler constructs an ItineraryHandler over st.
func NewItineraryHandler(st store.ItineraryStore) *ItineraryHandler {
	return &ItineraryHandler{
		store:  st,
		tracer: otel.Tracer("trip_designer.httpapi.itinerary"),
	}
}

type createItineraryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// Create handles POST /itineraries: allocates a new, empty itinerary
// owned by the authenticated caller.
func (h *ItineraryHandler) Create(c *fiber.Ctx) error {
	ctx, span := h.tracer.Start(c.Context(), "itinerary_handler.create")
	defer span.End()

	var req createItineraryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}

	it := &itinerary.Itinerary{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     middleware.UserID(c),
	}

	if req.StartDate != "" {
		d, err := itinerary.ParseLocalDate(req.StartDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid startDate")
		}
		it.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := itinerary.ParseLocalDate(req.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid endDate")
		}
		it.EndDate = &d
	}

	id, err := h.store.Initialize(ctx, it)
	if err != nil {
		span.RecordError(err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create itinerary")
	}

	it, err = h.store.Load(ctx, id)
	if err != nil {
		span.RecordError(err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load created itinerary")
	}

	return c.Status(fiber.StatusCreated).JSON(it)
}

// Get handles GET /itineraries/:itineraryId.
func (h *ItineraryHandler) Get(c *fiber.Ctx) error {
	ctx, span := h.tracer.Start(c.Context(), "itinerary_handler.get")
	defer span.End()

	it, err := h.store.Load(ctx, c.Params("itineraryId"))
	if err != nil {
		if err == store.ErrNotFound {
			return fiber.NewError(fiber.StatusNotFound, "itinerary not found")
		}
		span.RecordError(err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load itinerary")
	}

	return c.JSON(it)
}

// List handles GET /itineraries: every itinerary owned by the
// authenticated caller.
func (h *ItineraryHandler) List(c *fiber.Ctx) error {
	ctx, span := h.tracer.Start(c.Context(), "itinerary_handler.list")
	defer span.End()

	its, err := h.store.ListByUser(ctx, middleware.UserID(c))
	if err != nil {
		span.RecordError(err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list itineraries")
	}

	return c.JSON(its)
}
