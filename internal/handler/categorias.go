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
	"github.com/heladeria-pos/api/internal/catsync"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/jackc/pgx/v5"
)

// CategoriaStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoriaStore interface {
	ListCategorias(ctx context.Context) ([]database.Categoria, error)
	GetCategoria(ctx context.Context, id uuid.UUID) (database.Categoria, error)
	CreateCategoria(ctx context.Context, nombre string) (database.Categoria, error)
	UpdateCategoria(ctx context.Context, arg database.UpdateCategoriaParams) (database.Categoria, error)
	SoftDeleteCategoria(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// CategoriaHandler handles category CRUD endpoints. Successful writes
// invoke the folder-mirror hook after the database change lands.
type CategoriaHandler struct {
	store CategoriaStore
	hook  catsync.Hook
}

// NewCategoriaHandler creates a new CategoriaHandler.
func NewCategoriaHandler(store CategoriaStore, hook catsync.Hook) *CategoriaHandler {
	if hook == nil {
		hook = catsync.Noop{}
	}
	return &CategoriaHandler{store: store, hook: hook}
}

// RegisterRoutes registers category CRUD endpoints on the given Chi router.
func (h *CategoriaHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type categoriaRequest struct {
	Nombre string `json:"nombre"`
}

type categoriaResponse struct {
	ID        uuid.UUID `json:"id"`
	Nombre    string    `json:"nombre"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoriaResponse(c database.Categoria) categoriaResponse {
	return categoriaResponse{ID: c.ID, Nombre: c.Nombre, IsActive: c.IsActive, CreatedAt: c.CreatedAt}
}

// --- Handlers ---

// List returns all active categories.
func (h *CategoriaHandler) List(w http.ResponseWriter, r *http.Request) {
	categorias, err := h.store.ListCategorias(r.Context())
	if err != nil {
		log.Printf("ERROR: list categorias: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]categoriaResponse, len(categorias))
	for i, c := range categorias {
		resp[i] = toCategoriaResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new category and mirrors its folder.
func (h *CategoriaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Nombre == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nombre is required"})
		return
	}

	categoria, err := h.store.CreateCategoria(r.Context(), req.Nombre)
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "categoria already exists"})
			return
		}
		log.Printf("ERROR: create categoria: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.hook.Created(categoria.Nombre)

	writeJSON(w, http.StatusCreated, toCategoriaResponse(categoria))
}

// Update renames a category and its mirrored folder.
func (h *CategoriaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid categoria ID"})
		return
	}

	var req categoriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Nombre == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nombre is required"})
		return
	}

	// Read the current name first so the folder rename has a source.
	previa, err := h.store.GetCategoria(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "categoria not found"})
			return
		}
		log.Printf("ERROR: get categoria: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	categoria, err := h.store.UpdateCategoria(r.Context(), database.UpdateCategoriaParams{
		ID:     id,
		Nombre: req.Nombre,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "categoria not found"})
			return
		}
		log.Printf("ERROR: update categoria: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if previa.Nombre != categoria.Nombre {
		h.hook.Renamed(previa.Nombre, categoria.Nombre)
	}

	writeJSON(w, http.StatusOK, toCategoriaResponse(categoria))
}

// Delete deactivates a category and removes its mirrored folder.
func (h *CategoriaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid categoria ID"})
		return
	}

	previa, err := h.store.GetCategoria(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "categoria not found"})
			return
		}
		log.Printf("ERROR: get categoria: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if _, err := h.store.SoftDeleteCategoria(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "categoria not found"})
			return
		}
		log.Printf("ERROR: delete categoria: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.hook.Deleted(previa.Nombre)

	w.WriteHeader(http.StatusNoContent)
}
