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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ProductoStore defines the database methods needed by product handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ProductoStore interface {
	ListProductos(ctx context.Context) ([]database.Producto, error)
	CreateProducto(ctx context.Context, arg database.CreateProductoParams) (database.Producto, error)
	UpdateProducto(ctx context.Context, arg database.UpdateProductoParams) (database.Producto, error)
	SoftDeleteProducto(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// ProductoHandler handles product CRUD endpoints.
type ProductoHandler struct {
	store ProductoStore
}

// NewProductoHandler creates a new ProductoHandler.
func NewProductoHandler(store ProductoStore) *ProductoHandler {
	return &ProductoHandler{store: store}
}

// RegisterRoutes registers product CRUD endpoints on the given Chi router.
func (h *ProductoHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type productoRequest struct {
	Nombre      string `json:"nombre"`
	Precio      string `json:"precio"`
	NumSabores  int32  `json:"num_sabores"`
	CategoriaID string `json:"categoria_id"`
}

type productoResponse struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Precio      string    `json:"precio"`
	NumSabores  int32     `json:"num_sabores"`
	CategoriaID *string   `json:"categoria_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProductoResponse(p database.Producto) productoResponse {
	resp := productoResponse{
		ID:         p.ID,
		Nombre:     p.Nombre,
		Precio:     numericString(p.Precio),
		NumSabores: p.NumSabores,
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt,
	}
	if p.CategoriaID.Valid {
		id := uuid.UUID(p.CategoriaID.Bytes).String()
		resp.CategoriaID = &id
	}
	return resp
}

// --- Helpers ---

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var errNegativePrice = errors.New("negative price")

func parseBasePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, err
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

// validateProductoRequest parses and validates the shared create/update
// payload, writing the error response itself when invalid.
func validateProductoRequest(w http.ResponseWriter, req productoRequest) (pgtype.Numeric, pgtype.UUID, bool) {
	if req.Nombre == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nombre is required"})
		return pgtype.Numeric{}, pgtype.UUID{}, false
	}
	if req.Precio == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "precio is required"})
		return pgtype.Numeric{}, pgtype.UUID{}, false
	}

	precio, err := parseBasePrice(req.Precio)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "precio must be >= 0"})
		} else {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid precio"})
		}
		return pgtype.Numeric{}, pgtype.UUID{}, false
	}

	if req.NumSabores < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "num_sabores must be >= 0"})
		return pgtype.Numeric{}, pgtype.UUID{}, false
	}

	categoriaID := pgtype.UUID{}
	if req.CategoriaID != "" {
		cid, err := uuid.Parse(req.CategoriaID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid categoria_id"})
			return pgtype.Numeric{}, pgtype.UUID{}, false
		}
		categoriaID = pgtype.UUID{Bytes: cid, Valid: true}
	}

	return precio, categoriaID, true
}

// --- Handlers ---

// List returns all active products.
func (h *ProductoHandler) List(w http.ResponseWriter, r *http.Request) {
	productos, err := h.store.ListProductos(r.Context())
	if err != nil {
		log.Printf("ERROR: list productos: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productoResponse, len(productos))
	for i, p := range productos {
		resp[i] = toProductoResponse(p)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new product.
func (h *ProductoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	precio, categoriaID, ok := validateProductoRequest(w, req)
	if !ok {
		return
	}

	producto, err := h.store.CreateProducto(r.Context(), database.CreateProductoParams{
		Nombre:      req.Nombre,
		Precio:      precio,
		NumSabores:  req.NumSabores,
		CategoriaID: categoriaID,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "producto already exists"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid categoria_id"})
			return
		}
		log.Printf("ERROR: create producto: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toProductoResponse(producto))
}

// Update modifies an existing product.
func (h *ProductoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid producto ID"})
		return
	}

	var req productoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	precio, categoriaID, ok := validateProductoRequest(w, req)
	if !ok {
		return
	}

	producto, err := h.store.UpdateProducto(r.Context(), database.UpdateProductoParams{
		ID:          id,
		Nombre:      req.Nombre,
		Precio:      precio,
		NumSabores:  req.NumSabores,
		CategoriaID: categoriaID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "producto not found"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid categoria_id"})
			return
		}
		log.Printf("ERROR: update producto: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductoResponse(producto))
}

// Delete soft-deletes a product by setting is_active=false.
func (h *ProductoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid producto ID"})
		return
	}

	if _, err := h.store.SoftDeleteProducto(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "producto not found"})
			return
		}
		log.Printf("ERROR: delete producto: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
