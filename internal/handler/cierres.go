package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/middleware"
	"github.com/jackc/pgx/v5/pgtype"
)

// CierreStore defines the database methods needed by daily closure handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CierreStore interface {
	ResumenVentasPorFecha(ctx context.Context, fecha pgtype.Date) (database.ResumenVentasRow, error)
	CreateCierre(ctx context.Context, arg database.CreateCierreParams) (database.Cierre, error)
	ListCierres(ctx context.Context) ([]database.Cierre, error)
}

// CierreHandler handles daily closure endpoints.
type CierreHandler struct {
	store CierreStore
}

// NewCierreHandler creates a new CierreHandler.
func NewCierreHandler(store CierreStore) *CierreHandler {
	return &CierreHandler{store: store}
}

// RegisterRoutes registers closure endpoints on the given Chi router.
func (h *CierreHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

// --- Request / Response types ---

type createCierreRequest struct {
	Fecha string `json:"fecha"`
}

type cierreResponse struct {
	ID                 uuid.UUID `json:"id"`
	Fecha              string    `json:"fecha"`
	NumVentas          int64     `json:"num_ventas"`
	Total              string    `json:"total"`
	TotalEfectivo      string    `json:"total_efectivo"`
	TotalTarjeta       string    `json:"total_tarjeta"`
	TotalTransferencia string    `json:"total_transferencia"`
	CreadoPor          string    `json:"creado_por"`
	CreatedAt          time.Time `json:"created_at"`
}

func toCierreResponse(c database.Cierre) cierreResponse {
	return cierreResponse{
		ID:                 c.ID,
		Fecha:              c.Fecha.Time.Format("2006-01-02"),
		NumVentas:          c.NumVentas,
		Total:              numericString(c.Total),
		TotalEfectivo:      numericString(c.TotalEfectivo),
		TotalTarjeta:       numericString(c.TotalTarjeta),
		TotalTransferencia: numericString(c.TotalTransferencia),
		CreadoPor:          c.CreadoPor,
		CreatedAt:          c.CreatedAt,
	}
}

// --- Handlers ---

// List returns all daily closures, most recent first.
func (h *CierreHandler) List(w http.ResponseWriter, r *http.Request) {
	cierres, err := h.store.ListCierres(r.Context())
	if err != nil {
		log.Printf("ERROR: list cierres: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]cierreResponse, len(cierres))
	for i, c := range cierres {
		resp[i] = toCierreResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create snapshots a day's paid sales into the closure ledger. The date
// defaults to today; re-closing a date overwrites its snapshot with the
// recomputed totals.
func (h *CierreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCierreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	fecha := time.Now()
	if req.Fecha != "" {
		t, err := time.Parse("2006-01-02", req.Fecha)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid fecha, expected YYYY-MM-DD"})
			return
		}
		fecha = t
	}
	fechaDB := pgtype.Date{Time: fecha, Valid: true}

	resumen, err := h.store.ResumenVentasPorFecha(r.Context(), fechaDB)
	if err != nil {
		log.Printf("ERROR: resumen ventas %s: %v", fecha.Format("2006-01-02"), err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	creadoPor := ""
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		creadoPor = claims.Username
	}

	cierre, err := h.store.CreateCierre(r.Context(), database.CreateCierreParams{
		Fecha:              fechaDB,
		NumVentas:          resumen.NumVentas,
		Total:              resumen.Total,
		TotalEfectivo:      resumen.TotalEfectivo,
		TotalTarjeta:       resumen.TotalTarjeta,
		TotalTransferencia: resumen.TotalTransferencia,
		CreadoPor:          creadoPor,
	})
	if err != nil {
		log.Printf("ERROR: create cierre: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toCierreResponse(cierre))
}
