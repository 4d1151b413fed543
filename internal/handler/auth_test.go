package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/heladeria-pos/api/internal/auth"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/enum"
	"github.com/heladeria-pos/api/internal/handler"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// --- Mock store ---

type mockAuthStore struct {
	byUsername map[string]database.Empleado
	byID       map[uuid.UUID]database.Empleado
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{
		byUsername: make(map[string]database.Empleado),
		byID:       make(map[uuid.UUID]database.Empleado),
	}
}

func (m *mockAuthStore) add(e database.Empleado) {
	m.byUsername[e.Username] = e
	m.byID[e.ID] = e
}

func (m *mockAuthStore) GetEmpleadoByUsername(_ context.Context, username string) (database.Empleado, error) {
	e, ok := m.byUsername[username]
	if !ok {
		return database.Empleado{}, pgx.ErrNoRows
	}
	return e, nil
}

func (m *mockAuthStore) GetEmpleadoByID(_ context.Context, id uuid.UUID) (database.Empleado, error) {
	e, ok := m.byID[id]
	if !ok {
		return database.Empleado{}, pgx.ErrNoRows
	}
	return e, nil
}

func newAuthRouter(store handler.AuthStore) http.Handler {
	r := chi.NewRouter()
	handler.NewAuthHandler(store, testSecret).RegisterRoutes(r)
	return r
}

func seedEmpleado(t *testing.T, store *mockAuthStore, username, password, role string) database.Empleado {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	e := database.Empleado{
		ID:             uuid.New(),
		Username:       username,
		NombreCompleto: "Test " + username,
		HashedPassword: string(hashed),
		Role:           role,
		IsActive:       true,
	}
	store.add(e)
	return e
}

// --- Tests ---

func TestLogin_Success(t *testing.T) {
	store := newMockAuthStore()
	seedEmpleado(t, store, "ana", "secreto123", enum.RoleCajero)
	router := newAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"username": "ana",
		"password": "secreto123",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	token, _ := resp["access_token"].(string)
	if token == "" {
		t.Fatal("expected non-empty access_token")
	}
	if resp["refresh_token"].(string) == "" {
		t.Fatal("expected non-empty refresh_token")
	}

	claims, err := auth.ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.Username != "ana" || claims.Role != enum.RoleCajero {
		t.Errorf("claims: got %s/%s, want ana/%s", claims.Username, claims.Role, enum.RoleCajero)
	}

	user := resp["user"].(map[string]interface{})
	if user["username"] != "ana" {
		t.Errorf("user.username: got %v, want ana", user["username"])
	}
	if _, leaked := user["hashed_password"]; leaked {
		t.Error("response must not expose the password hash")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMockAuthStore()
	seedEmpleado(t, store, "ana", "secreto123", enum.RoleCajero)
	router := newAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"username": "ana",
		"password": "incorrecto",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	router := newAuthRouter(newMockAuthStore())

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"username": "nadie",
		"password": "lo-que-sea",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	router := newAuthRouter(newMockAuthStore())

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{"username": "ana"})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestRefresh_Success(t *testing.T) {
	store := newMockAuthStore()
	e := seedEmpleado(t, store, "ana", "secreto123", enum.RoleAdmin)
	router := newAuthRouter(store)

	refreshToken, err := auth.GenerateRefreshToken(testSecret, e.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["access_token"].(string) == "" {
		t.Error("expected non-empty access_token")
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	router := newAuthRouter(newMockAuthStore())

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": "not-a-jwt",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestRefresh_DeletedUser(t *testing.T) {
	router := newAuthRouter(newMockAuthStore())

	refreshToken, err := auth.GenerateRefreshToken(testSecret, uuid.New())
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}
