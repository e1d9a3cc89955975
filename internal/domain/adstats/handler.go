package adstats

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/adhub/adhub-api/internal/pkg/response"
	"github.com/adhub/adhub-api/internal/pkg/validator"
)

// Handler handles event ingestion and admin reporting
type Handler struct {
	service   *Service
	collector *Collector
	publisher Publisher
}

// Publisher pushes ingestion events to the admin live feed
type Publisher interface {
	Publish(event string, data interface{})
}

func NewHandler(service *Service, collector *Collector, publisher Publisher) *Handler {
	return &Handler{service: service, collector: collector, publisher: publisher}
}

// TrackEvent ingests one impression, click or revenue event
// POST /api/v1/stats/events
func (h *Handler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	var req TrackEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	placementID, err := uuid.Parse(req.PlacementID)
	if err != nil {
		response.BadRequest(w, "invalid placement id")
		return
	}

	h.collector.Track(Event{
		PlacementID: placementID,
		Type:        EventType(req.Type),
		Amount:      decimal.NewFromFloat(req.Amount),
	})

	if h.publisher != nil {
		h.publisher.Publish("stats", map[string]interface{}{
			"placement_id": req.PlacementID,
			"type":         req.Type,
		})
	}

	response.Accepted(w, map[string]string{"status": "queued"})
}

// OverallStats reports the overall window aggregates
// GET /api/v1/admin/stats?days=30
func (h *Handler) OverallStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.OverallStats(r.Context(), parseDays(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load overall stats")
		response.InternalError(w)
		return
	}
	response.OK(w, ToResponse(summary))
}

// PlacementStats reports one placement's window aggregates
// GET /api/v1/admin/stats/placements/{id}?days=30
func (h *Handler) PlacementStats(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid placement id")
		return
	}

	summary, err := h.service.PlacementStats(r.Context(), id, parseDays(r))
	if err != nil {
		log.Error().Err(err).Str("placement_id", id.String()).Msg("Failed to load placement stats")
		response.InternalError(w)
		return
	}
	response.OK(w, ToResponse(summary))
}

func parseDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 || days > 365 {
		return 30
	}
	return days
}

// PublicRoutes returns the event ingestion routes
func PublicRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/events", h.TrackEvent)
	return r
}

// AdminRoutes returns the reporting routes
func AdminRoutes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.OverallStats)
	r.Get("/placements/{id}", h.PlacementStats)
	return r
}
