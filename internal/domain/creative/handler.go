package creative

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/adhub/adhub-api/internal/pkg/response"
)

// Handler handles creative upload requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload stores a fallback creative image
// POST /api/v1/admin/creatives (multipart, field "file")
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		response.BadRequest(w, "only image uploads are allowed")
		return
	}

	asset, err := h.service.Upload(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Creative upload failed")
		response.ErrorWithDetails(w, http.StatusUnprocessableEntity, "UPLOAD_FAILED", "failed to process creative", nil)
		return
	}

	response.Created(w, asset)
}

// Delete removes a stored creative
// DELETE /api/v1/admin/creatives?key=creatives/...
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		response.BadRequest(w, "key is required")
		return
	}

	if err := h.service.Delete(r.Context(), key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Creative delete failed")
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

// Routes returns creative admin routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Upload)
	r.Delete("/", h.Delete)
	return r
}
