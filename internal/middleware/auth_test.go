package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adhub/adhub-api/internal/pkg/jwt"
)

func authedHandler(t *testing.T) (http.Handler, *jwt.Service) {
	t.Helper()
	jwtService := jwt.NewService("test-secret", time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Subject", GetSubject(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
	return Auth(jwtService)(RequireAdmin()(next)), jwtService
}

func TestAuth_ValidBearerToken(t *testing.T) {
	handler, jwtService := authedHandler(t)
	token, err := jwtService.GenerateToken("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Subject") != "admin" {
		t.Errorf("subject = %q, want admin", rec.Header().Get("X-Subject"))
	}
}

func TestAuth_QueryTokenForWebSocket(t *testing.T) {
	handler, jwtService := authedHandler(t)
	token, _ := jwtService.GenerateToken("admin", "admin")

	req := httptest.NewRequest(http.MethodGet, "/?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	handler, _ := authedHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	handler, _ := authedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_WrongSigningKey(t *testing.T) {
	handler, _ := authedHandler(t)
	other := jwt.NewService("other-secret", time.Hour)
	token, _ := other.GenerateToken("admin", "admin")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAdmin_RejectsOtherRoles(t *testing.T) {
	handler, jwtService := authedHandler(t)
	token, _ := jwtService.GenerateToken("viewer", "viewer")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
