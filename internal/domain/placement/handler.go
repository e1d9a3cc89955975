package placement

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/adhub/adhub-api/internal/pkg/response"
	"github.com/adhub/adhub-api/internal/pkg/validator"
)

// Store is the placement registry consumed by the handler and the
// delivery selector
type Store interface {
	List(ctx context.Context) ([]Placement, error)
	ListByType(ctx context.Context, t Type) ([]Placement, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Placement, error)
	Create(ctx context.Context, p *Placement) error
	Update(ctx context.Context, p *Placement) error
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler handles placement admin HTTP requests
type Handler struct {
	store Store
}

// NewHandler creates new placement handler
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List returns all placements, optionally filtered by type
// GET /api/v1/admin/placements?type=footer
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		placements []Placement
		err        error
	)

	if t := r.URL.Query().Get("type"); t != "" {
		if validator.ValidateVar(t, "placement_type") != nil {
			response.BadRequest(w, "invalid placement type")
			return
		}
		placements, err = h.store.ListByType(r.Context(), Type(t))
	} else {
		placements, err = h.store.List(r.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to list placements")
		response.InternalError(w)
		return
	}

	responses := make([]*Response, 0, len(placements))
	for i := range placements {
		responses = append(responses, placements[i].ToResponse())
	}

	response.OK(w, map[string]interface{}{
		"items": responses,
		"total": len(responses),
	})
}

// Get returns a specific placement
// GET /api/v1/admin/placements/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid placement id")
		return
	}

	p, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, ErrPlacementNotFound) {
		response.NotFound(w, "placement not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, p.ToResponse())
}

// Create creates a new placement
// POST /api/v1/admin/placements
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}
	if fieldErrors := checkRenderSource(Type(req.Type), req.Slot, req.CustomCode); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	now := time.Now()
	p := &Placement{
		ID:         uuid.New(),
		Name:       req.Name,
		Slot:       req.Slot,
		Type:       Type(req.Type),
		Format:     Format(req.Format),
		Location:   Location(req.Location),
		IsEnabled:  true,
		Responsive: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if req.IsEnabled != nil {
		p.IsEnabled = *req.IsEnabled
	}
	if req.Responsive != nil {
		p.Responsive = *req.Responsive
	}
	if req.Position != nil && p.Type == TypeBetweenPosts {
		p.Position = sql.NullInt64{Int64: *req.Position, Valid: true}
	}
	if req.CustomCode != "" {
		p.CustomCode = sql.NullString{String: req.CustomCode, Valid: true}
	}

	if err := h.store.Create(r.Context(), p); err != nil {
		log.Error().Err(err).Str("name", p.Name).Msg("Failed to create placement")
		response.InternalError(w)
		return
	}

	response.Created(w, p.ToResponse())
}

// Update partially updates a placement
// PUT /api/v1/admin/placements/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid placement id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	p, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, ErrPlacementNotFound) {
		response.NotFound(w, "placement not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	applyPatch(p, &req)

	if fieldErrors := checkRenderSource(p.Type, p.Slot, p.CustomCode.String); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	if err := h.store.Update(r.Context(), p); err != nil {
		if errors.Is(err, ErrPlacementNotFound) {
			response.NotFound(w, "placement not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, p.ToResponse())
}

// SetEnabled toggles a placement on or off
// PATCH /api/v1/admin/placements/{id}/enabled
func (h *Handler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid placement id")
		return
	}

	var req SetEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	if err := h.store.SetEnabled(r.Context(), id, *req.Enabled); err != nil {
		if errors.Is(err, ErrPlacementNotFound) {
			response.NotFound(w, "placement not found")
			return
		}
		response.InternalError(w)
		return
	}

	p, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, p.ToResponse())
}

// Delete removes a placement
// DELETE /api/v1/admin/placements/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid placement id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrPlacementNotFound) {
			response.NotFound(w, "placement not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// checkRenderSource enforces that custom placements carry markup and all
// others carry a slot; exactly one render source per placement.
func checkRenderSource(t Type, slot, customCode string) map[string]string {
	if t == TypeCustom {
		if customCode == "" {
			return map[string]string{"custom_code": "This field is required for custom placements"}
		}
		return nil
	}
	if slot == "" {
		return map[string]string{"slot": "This field is required"}
	}
	return nil
}

func applyPatch(p *Placement, req *UpdateRequest) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Slot != nil {
		p.Slot = *req.Slot
	}
	if req.Type != nil {
		p.Type = Type(*req.Type)
	}
	if req.Format != nil {
		p.Format = Format(*req.Format)
	}
	if req.Location != nil {
		p.Location = Location(*req.Location)
	}
	if req.IsEnabled != nil {
		p.IsEnabled = *req.IsEnabled
	}
	if req.Position != nil {
		p.Position = sql.NullInt64{Int64: *req.Position, Valid: p.Type == TypeBetweenPosts}
	}
	if req.Responsive != nil {
		p.Responsive = *req.Responsive
	}
	if req.CustomCode != nil {
		p.CustomCode = sql.NullString{String: *req.CustomCode, Valid: *req.CustomCode != ""}
	}
}

// Routes returns placement admin routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/enabled", h.SetEnabled)
	r.Delete("/{id}", h.Delete)

	return r
}
