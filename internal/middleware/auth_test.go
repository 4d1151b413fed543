package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/heladeria-pos/api/internal/auth"
	"github.com/heladeria-pos/api/internal/middleware"
)

const testSecret = "middleware-test-secret"

func protectedHandler(t *testing.T, sawClaims **auth.Claims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*sawClaims = middleware.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func doAuthRequest(t *testing.T, handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAuthenticate_ValidToken(t *testing.T) {
	userID := uuid.New()
	token, err := auth.GenerateToken(testSecret, userID, "ana", "CAJERO")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var claims *auth.Claims
	handler := middleware.Authenticate(testSecret)(protectedHandler(t, &claims))

	rr := doAuthRequest(t, handler, "Bearer "+token)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if claims == nil {
		t.Fatal("claims not injected into request context")
	}
	if claims.UserID != userID || claims.Username != "ana" || claims.Role != "CAJERO" {
		t.Errorf("claims: got %+v", claims)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	token, err := auth.GenerateToken("other-secret", uuid.New(), "ana", "CAJERO")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"no token part", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claims *auth.Claims
			handler := middleware.Authenticate(testSecret)(protectedHandler(t, &claims))

			rr := doAuthRequest(t, handler, tt.header)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rr.Code)
			}
			if claims != nil {
				t.Error("handler ran despite rejected credentials")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	var claims *auth.Claims
	handler := middleware.RequireRole("ADMIN")(protectedHandler(t, &claims))

	admin := &auth.Claims{UserID: uuid.New(), Username: "admin", Role: "ADMIN"}
	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), admin))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("admin request: got %d, want 200", rr.Code)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	var claims *auth.Claims
	handler := middleware.RequireRole("ADMIN")(protectedHandler(t, &claims))

	mesero := &auth.Claims{UserID: uuid.New(), Username: "luis", Role: "MESERO"}
	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), mesero))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	var claims *auth.Claims
	handler := middleware.RequireRole("ADMIN")(protectedHandler(t, &claims))

	rr := doAuthRequest(t, handler, "")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestClaimsFromContext_Empty(t *testing.T) {
	if claims := middleware.ClaimsFromContext(context.Background()); claims != nil {
		t.Errorf("claims: got %+v, want nil", claims)
	}
}
