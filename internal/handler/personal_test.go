package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/handler"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock store ---

type mockPersonalStore struct {
	empleados map[uuid.UUID]database.Empleado
}

func newMockPersonalStore() *mockPersonalStore {
	return &mockPersonalStore{empleados: make(map[uuid.UUID]database.Empleado)}
}

func (m *mockPersonalStore) ListEmpleados(_ context.Context) ([]database.Empleado, error) {
	var out []database.Empleado
	for _, e := range m.empleados {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockPersonalStore) CreateEmpleado(_ context.Context, arg database.CreateEmpleadoParams) (database.Empleado, error) {
	for _, e := range m.empleados {
		if e.Username == arg.Username && e.IsActive {
			return database.Empleado{}, &pgconn.PgError{Code: "23505"}
		}
	}
	e := database.Empleado{
		ID:             uuid.New(),
		Username:       arg.Username,
		NombreCompleto: arg.NombreCompleto,
		HashedPassword: arg.HashedPassword,
		Role:           arg.Role,
		IsActive:       true,
	}
	m.empleados[e.ID] = e
	return e, nil
}

func (m *mockPersonalStore) UpdateEmpleado(_ context.Context, arg database.UpdateEmpleadoParams) (database.Empleado, error) {
	e, ok := m.empleados[arg.ID]
	if !ok || !e.IsActive {
		return database.Empleado{}, pgx.ErrNoRows
	}
	e.NombreCompleto = arg.NombreCompleto
	e.Role = arg.Role
	m.empleados[arg.ID] = e
	return e, nil
}

func (m *mockPersonalStore) SoftDeleteEmpleado(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	e, ok := m.empleados[id]
	if !ok || !e.IsActive {
		return uuid.Nil, pgx.ErrNoRows
	}
	e.IsActive = false
	m.empleados[id] = e
	return id, nil
}

func newPersonalRouter(store handler.PersonalStore) http.Handler {
	r := chi.NewRouter()
	r.Route("/personal", handler.NewPersonalHandler(store).RegisterRoutes)
	return r
}

// --- Tests ---

func TestCreateEmpleado(t *testing.T) {
	store := newMockPersonalStore()
	router := newPersonalRouter(store)

	rr := doRequest(t, router, "POST", "/personal", map[string]string{
		"username":        "cajero1",
		"nombre_completo": "Ana Torres",
		"password":        "secreto123",
		"role":            "CAJERO",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["username"] != "cajero1" || resp["role"] != "CAJERO" {
		t.Errorf("empleado: got %+v", resp)
	}
	if _, ok := resp["hashed_password"]; ok {
		t.Error("response must not expose hashed_password")
	}

	// The stored credential is a bcrypt hash of the submitted password.
	var stored database.Empleado
	for _, e := range store.empleados {
		stored = e
	}
	if stored.HashedPassword == "secreto123" {
		t.Fatal("password was stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("secreto123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestCreateEmpleado_InvalidRole(t *testing.T) {
	router := newPersonalRouter(newMockPersonalStore())

	rr := doRequest(t, router, "POST", "/personal", map[string]string{
		"username": "cajero1",
		"password": "secreto123",
		"role":     "GERENTE",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestCreateEmpleado_MissingCredentials(t *testing.T) {
	router := newPersonalRouter(newMockPersonalStore())

	rr := doRequest(t, router, "POST", "/personal", map[string]string{
		"username": "cajero1",
		"role":     "CAJERO",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestCreateEmpleado_DuplicateUsername(t *testing.T) {
	store := newMockPersonalStore()
	router := newPersonalRouter(store)

	body := map[string]string{"username": "cajero1", "password": "secreto123", "role": "CAJERO"}
	if rr := doRequest(t, router, "POST", "/personal", body); rr.Code != http.StatusCreated {
		t.Fatalf("first create: got %d, want 201", rr.Code)
	}
	if rr := doRequest(t, router, "POST", "/personal", body); rr.Code != http.StatusBadRequest {
		t.Errorf("duplicate create: got %d, want 400", rr.Code)
	}
}

func TestUpdateEmpleado(t *testing.T) {
	store := newMockPersonalStore()
	e, err := store.CreateEmpleado(context.Background(), database.CreateEmpleadoParams{
		Username: "mesero1", NombreCompleto: "Luis", HashedPassword: "x", Role: "MESERO",
	})
	if err != nil {
		t.Fatalf("seed empleado: %v", err)
	}
	router := newPersonalRouter(store)

	rr := doRequest(t, router, "PUT", "/personal/"+e.ID.String(), map[string]string{
		"nombre_completo": "Luis Gomez",
		"role":            "CAJERO",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["nombre_completo"] != "Luis Gomez" || resp["role"] != "CAJERO" {
		t.Errorf("updated empleado: got %+v", resp)
	}
}

func TestUpdateEmpleado_NotFound(t *testing.T) {
	router := newPersonalRouter(newMockPersonalStore())

	rr := doRequest(t, router, "PUT", "/personal/"+uuid.NewString(), map[string]string{
		"nombre_completo": "Luis",
		"role":            "CAJERO",
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestDeleteEmpleado(t *testing.T) {
	store := newMockPersonalStore()
	e, err := store.CreateEmpleado(context.Background(), database.CreateEmpleadoParams{
		Username: "mesero1", HashedPassword: "x", Role: "MESERO",
	})
	if err != nil {
		t.Fatalf("seed empleado: %v", err)
	}
	router := newPersonalRouter(store)

	rr := doRequest(t, router, "DELETE", "/personal/"+e.ID.String(), nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want 204", rr.Code)
	}
	if store.empleados[e.ID].IsActive {
		t.Error("empleado should be deactivated, not active")
	}
}
