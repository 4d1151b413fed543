package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/enum"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// PersonalStore defines the database methods needed by staff handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type PersonalStore interface {
	ListEmpleados(ctx context.Context) ([]database.Empleado, error)
	CreateEmpleado(ctx context.Context, arg database.CreateEmpleadoParams) (database.Empleado, error)
	UpdateEmpleado(ctx context.Context, arg database.UpdateEmpleadoParams) (database.Empleado, error)
	SoftDeleteEmpleado(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// PersonalHandler handles the staff roster. Mounted behind the ADMIN
// role guard.
type PersonalHandler struct {
	store PersonalStore
}

// NewPersonalHandler creates a new PersonalHandler.
func NewPersonalHandler(store PersonalStore) *PersonalHandler {
	return &PersonalHandler{store: store}
}

// RegisterRoutes registers staff endpoints on the given Chi router.
func (h *PersonalHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createEmpleadoRequest struct {
	Username       string `json:"username"`
	NombreCompleto string `json:"nombre_completo"`
	Password       string `json:"password"`
	Role           string `json:"role"`
}

type updateEmpleadoRequest struct {
	NombreCompleto string `json:"nombre_completo"`
	Role           string `json:"role"`
}

type empleadoResponse struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	NombreCompleto string    `json:"nombre_completo"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func toEmpleadoResponse(e database.Empleado) empleadoResponse {
	return empleadoResponse{
		ID:             e.ID,
		Username:       e.Username,
		NombreCompleto: e.NombreCompleto,
		Role:           e.Role,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
	}
}

func isValidRole(role string) bool {
	switch role {
	case enum.RoleAdmin, enum.RoleCajero, enum.RoleMesero:
		return true
	}
	return false
}

// --- Handlers ---

// List returns all active staff members.
func (h *PersonalHandler) List(w http.ResponseWriter, r *http.Request) {
	empleados, err := h.store.ListEmpleados(r.Context())
	if err != nil {
		log.Printf("ERROR: list empleados: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]empleadoResponse, len(empleados))
	for i, e := range empleados {
		resp[i] = toEmpleadoResponse(e)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a staff member with a bcrypt-hashed password.
func (h *PersonalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEmpleadoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}
	if !isValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	empleado, err := h.store.CreateEmpleado(r.Context(), database.CreateEmpleadoParams{
		Username:       req.Username,
		NombreCompleto: req.NombreCompleto,
		HashedPassword: string(hashed),
		Role:           req.Role,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username already taken"})
			return
		}
		log.Printf("ERROR: create empleado: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toEmpleadoResponse(empleado))
}

// Update changes a staff member's display name or role.
func (h *PersonalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid empleado ID"})
		return
	}

	var req updateEmpleadoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !isValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	empleado, err := h.store.UpdateEmpleado(r.Context(), database.UpdateEmpleadoParams{
		ID:             id,
		NombreCompleto: req.NombreCompleto,
		Role:           req.Role,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "empleado not found"})
			return
		}
		log.Printf("ERROR: update empleado: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toEmpleadoResponse(empleado))
}

// Delete deactivates a staff member. Their sales history keeps the
// vendedor name they were recorded under.
func (h *PersonalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid empleado ID"})
		return
	}

	if _, err := h.store.SoftDeleteEmpleado(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "empleado not found"})
			return
		}
		log.Printf("ERROR: delete empleado: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
