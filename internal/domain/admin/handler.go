package admin

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/adhub/adhub-api/internal/pkg/jwt"
	"github.com/adhub/adhub-api/internal/pkg/password"
	"github.com/adhub/adhub-api/internal/pkg/response"
	"github.com/adhub/adhub-api/internal/pkg/validator"
)

// LoginRequest carries the admin console key
type LoginRequest struct {
	Key string `json:"key" validate:"required"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Handler handles admin console authentication
type Handler struct {
	jwtService *jwt.Service
	keyHash    string
}

func NewHandler(jwtService *jwt.Service, keyHash string) *Handler {
	return &Handler{jwtService: jwtService, keyHash: keyHash}
}

// Login exchanges the admin key for a JWT
// POST /api/v1/admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	if h.keyHash == "" || !password.Verify(h.keyHash, req.Key) {
		response.Unauthorized(w, "invalid admin key")
		return
	}

	token, err := h.jwtService.GenerateToken("admin", "admin")
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue admin token")
		response.InternalError(w)
		return
	}

	response.OK(w, LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtService.TTL().Seconds()),
	})
}
