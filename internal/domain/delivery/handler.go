package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/adhub/adhub-api/internal/domain/placement"
	"github.com/adhub/adhub-api/internal/pkg/response"
)

// Publisher pushes delivery events to the admin live feed. Optional; a
// nil publisher disables the feed.
type Publisher interface {
	Publish(event string, data interface{})
}

// Directive tells the page what to render on a surface, if anything
type Directive struct {
	Render       bool   `json:"render"`
	PlacementID  string `json:"placement_id,omitempty"`
	ContainerID  string `json:"container_id,omitempty"`
	Slot         string `json:"slot,omitempty"`
	Format       string `json:"format,omitempty"`
	Responsive   bool   `json:"responsive,omitempty"`
	CustomCode   string `json:"custom_code,omitempty"`
	FallbackSlot string `json:"fallback_slot,omitempty"`
}

// Config carries the delivery knobs from the environment
type Config struct {
	ClientID string
	// FallbackSlot is rendered on between-posts when no candidate exists
	FallbackSlot string
	// FallbackContent is the creative URL shown while a unit is not
	// Rendered, typically an uploaded fallback creative
	FallbackContent string
	Debounce        time.Duration
}

// maxTrackedUnits caps the unit registry. Browsers navigating away never
// report an unmount, so without a cap the registry grows with every page
// view served.
const maxTrackedUnits = 1024

// Handler serves the public delivery endpoints
type Handler struct {
	selector  *Selector
	runtime   Runtime
	flags     SessionFlags
	publisher Publisher
	cfg       Config

	mu    sync.Mutex
	units map[string]*Unit
	order []string
}

func NewHandler(selector *Selector, runtime Runtime, flags SessionFlags, publisher Publisher, cfg Config) *Handler {
	return &Handler{
		selector:  selector,
		runtime:   runtime,
		flags:     flags,
		publisher: publisher,
		cfg:       cfg,
		units:     make(map[string]*Unit),
	}
}

// Deliver selects the placement for a surface and page view
// GET /api/v1/delivery/{surface}?page=blog&session=abc
func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	surface := Surface(chi.URLParam(r, "surface"))
	cfg, ok := SurfaceConfigFor(surface, h.cfg.FallbackSlot)
	if !ok {
		response.NotFound(w, "unknown surface")
		return
	}

	page := placement.Location(r.URL.Query().Get("page"))
	sessionID := r.URL.Query().Get("session")

	if surface == SurfacePopup {
		dismissed, err := h.flags.Dismissed(r.Context(), sessionID)
		if err != nil {
			// delivery degrades, it never errors out
			log.Warn().Err(err).Msg("Popup dismissal lookup failed")
		}
		if dismissed {
			response.OK(w, Directive{Render: false})
			return
		}
	}

	sel := h.selector.Select(r.Context(), cfg, page)
	directive := h.directiveFor(sel)
	h.publishDelivery(surface, directive)

	response.OK(w, directive)
}

func (h *Handler) directiveFor(sel Selection) Directive {
	if sel.Placement == nil {
		if sel.FallbackSlot == "" {
			return Directive{Render: false}
		}
		unit := h.mountUnit(RenderRequest{
			Slot:       sel.FallbackSlot,
			Format:     string(placement.FormatAuto),
			Responsive: true,
			ClientID:   h.cfg.ClientID,
		}, h.cfg.FallbackContent)
		return Directive{
			Render:       true,
			ContainerID:  unit.ContainerID(),
			Slot:         sel.FallbackSlot,
			Format:       string(placement.FormatAuto),
			Responsive:   true,
			FallbackSlot: sel.FallbackSlot,
		}
	}

	p := sel.Placement
	if p.IsCustom() {
		return Directive{
			Render:      true,
			PlacementID: p.ID.String(),
			CustomCode:  p.CustomCode.String,
		}
	}

	unit := h.mountUnit(RenderRequest{
		Slot:       p.Slot,
		Format:     string(sel.Format),
		Responsive: p.Responsive,
		ClientID:   h.cfg.ClientID,
	}, h.cfg.FallbackContent)
	return Directive{
		Render:      true,
		PlacementID: p.ID.String(),
		ContainerID: unit.ContainerID(),
		Slot:        p.Slot,
		Format:      string(sel.Format),
		Responsive:  p.Responsive,
	}
}

func (h *Handler) mountUnit(req RenderRequest, fallback string) *Unit {
	unit := NewUnit(h.runtime, req, fallback)
	h.mu.Lock()
	h.units[unit.ContainerID()] = unit
	h.order = append(h.order, unit.ContainerID())
	h.evictLocked()
	h.mu.Unlock()
	// the render enqueue is detached from the request lifecycle
	unit.Mount(context.Background(), h.cfg.Debounce)
	return unit
}

// evictLocked closes and drops the oldest tracked units once the registry
// exceeds its cap. Caller holds h.mu.
func (h *Handler) evictLocked() {
	for len(h.order) > 0 {
		id := h.order[0]
		unit, live := h.units[id]
		if !live {
			// already unmounted by the client
			h.order = h.order[1:]
			continue
		}
		if len(h.units) <= maxTrackedUnits {
			break
		}
		unit.Close()
		delete(h.units, id)
		h.order = h.order[1:]
	}

	// client unmounts leave stale ids behind the newest live head
	if len(h.order) > 2*maxTrackedUnits {
		live := h.order[:0]
		for _, id := range h.order {
			if _, ok := h.units[id]; ok {
				live = append(live, id)
			}
		}
		h.order = live
	}
}

// UnitStatus reports a mounted unit's lifecycle state and the fallback
// content to show while it is not Rendered; pages poll it for errored units
// GET /api/v1/delivery/units/{container_id}
func (h *Handler) UnitStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "container_id")

	h.mu.Lock()
	unit, ok := h.units[id]
	h.mu.Unlock()

	if !ok {
		response.NotFound(w, "unit not found")
		return
	}
	response.OK(w, map[string]interface{}{
		"container_id": id,
		"state":        string(unit.State()),
		"fallback":     unit.Fallback(),
	})
}

// Unmount tears down a mounted unit; pending renders are cancelled
// DELETE /api/v1/delivery/units/{container_id}
func (h *Handler) Unmount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "container_id")

	h.mu.Lock()
	unit, ok := h.units[id]
	delete(h.units, id)
	h.mu.Unlock()

	if !ok {
		response.NotFound(w, "unit not found")
		return
	}
	unit.Close()
	response.NoContent(w)
}

// DismissPopup records the session's popup dismissal
// POST /api/v1/delivery/popup/dismiss
func (h *Handler) DismissPopup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Session string `json:"session"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Session == "" {
		response.BadRequest(w, "session is required")
		return
	}

	if err := h.flags.SetDismissed(r.Context(), req.Session); err != nil {
		log.Warn().Err(err).Msg("Failed to store popup dismissal")
	}
	response.NoContent(w)
}

func (h *Handler) publishDelivery(surface Surface, d Directive) {
	if h.publisher == nil {
		return
	}
	h.publisher.Publish("delivery", map[string]interface{}{
		"surface":      string(surface),
		"render":       d.Render,
		"placement_id": d.PlacementID,
		"slot":         d.Slot,
	})
}

// Routes returns the public delivery routes
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{surface}", h.Deliver)
	r.Post("/popup/dismiss", h.DismissPopup)
	r.Get("/units/{container_id}", h.UnitStatus)
	r.Delete("/units/{container_id}", h.Unmount)

	return r
}
