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
	"github.com/jackc/pgx/v5"
)

// SaborStore defines the database methods needed by flavor handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type SaborStore interface {
	ListSabores(ctx context.Context) ([]database.Sabor, error)
	CreateSabor(ctx context.Context, arg database.CreateSaborParams) (database.Sabor, error)
	UpdateSabor(ctx context.Context, arg database.UpdateSaborParams) (database.Sabor, error)
	DeleteSabor(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// SaborHandler handles flavor CRUD endpoints.
type SaborHandler struct {
	store SaborStore
}

// NewSaborHandler creates a new SaborHandler.
func NewSaborHandler(store SaborStore) *SaborHandler {
	return &SaborHandler{store: store}
}

// RegisterRoutes registers flavor CRUD endpoints on the given Chi router.
func (h *SaborHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type saborRequest struct {
	Nombre string `json:"nombre"`
	Activo *bool  `json:"activo"`
}

type saborResponse struct {
	ID        uuid.UUID `json:"id"`
	Nombre    string    `json:"nombre"`
	Activo    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
}

func toSaborResponse(s database.Sabor) saborResponse {
	return saborResponse{ID: s.ID, Nombre: s.Nombre, Activo: s.Activo, CreatedAt: s.CreatedAt}
}

// --- Handlers ---

// List returns all flavors, active or not. The order-building screen
// filters on activo client-side.
func (h *SaborHandler) List(w http.ResponseWriter, r *http.Request) {
	sabores, err := h.store.ListSabores(r.Context())
	if err != nil {
		log.Printf("ERROR: list sabores: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]saborResponse, len(sabores))
	for i, s := range sabores {
		resp[i] = toSaborResponse(s)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new flavor, active by default.
func (h *SaborHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saborRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Nombre == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nombre is required"})
		return
	}

	activo := true
	if req.Activo != nil {
		activo = *req.Activo
	}

	sabor, err := h.store.CreateSabor(r.Context(), database.CreateSaborParams{
		Nombre: req.Nombre,
		Activo: activo,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sabor already exists"})
			return
		}
		log.Printf("ERROR: create sabor: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toSaborResponse(sabor))
}

// Update renames a flavor or toggles its availability.
func (h *SaborHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sabor ID"})
		return
	}

	var req saborRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Nombre == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nombre is required"})
		return
	}

	activo := true
	if req.Activo != nil {
		activo = *req.Activo
	}

	sabor, err := h.store.UpdateSabor(r.Context(), database.UpdateSaborParams{
		ID:     id,
		Nombre: req.Nombre,
		Activo: activo,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "sabor not found"})
			return
		}
		log.Printf("ERROR: update sabor: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSaborResponse(sabor))
}

// Delete removes a flavor permanently.
func (h *SaborHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sabor ID"})
		return
	}

	if _, err := h.store.DeleteSabor(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "sabor not found"})
			return
		}
		log.Printf("ERROR: delete sabor: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
