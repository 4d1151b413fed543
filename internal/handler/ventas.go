package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/enum"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// VentaStore defines the database methods needed by sales ledger handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type VentaStore interface {
	ListVentas(ctx context.Context) ([]database.Venta, error)
	ListVentasByFecha(ctx context.Context, fecha pgtype.Date) ([]database.Venta, error)
	LiberarMesa(ctx context.Context, numero int32) (int64, error)
	DeleteLineItemsByMesa(ctx context.Context, mesaNumero int32) (int64, error)
	UpdateVentaByOrdenNum(ctx context.Context, arg database.UpdateVentaByOrdenNumParams) (database.Venta, error)
}

// VentaHandler handles sales ledger endpoints.
type VentaHandler struct {
	store    VentaStore
	notifier Notifier
}

// NewVentaHandler creates a new VentaHandler.
func NewVentaHandler(store VentaStore, notifier Notifier) *VentaHandler {
	return &VentaHandler{store: store, notifier: notifier}
}

// RegisterRoutes registers sales ledger endpoints on the given Chi router.
func (h *VentaHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/{numero}/disponible", h.MarkDisponible)
	r.Delete("/{numero}/borrar", h.BorrarItems)
	r.Put("/orden/{ordenNum}", h.UpdateByOrdenNum)
}

// --- Request / Response types ---

type ventaResponse struct {
	ID                int64     `json:"id"`
	Mesa              int32     `json:"mesa"`
	Fecha             string    `json:"fecha"`
	Hora              string    `json:"hora"`
	Descripcion       string    `json:"descripcion"`
	Total             string    `json:"total"`
	TipoPago          string    `json:"tipo_pago"`
	PagoTarjeta       string    `json:"pago_tarjeta"`
	PagoTransferencia string    `json:"pago_transferencia"`
	PagoEfectivo      string    `json:"pago_efectivo"`
	Vendedor          string    `json:"vendedor"`
	Estado            string    `json:"estado"`
	OrdenNum          string    `json:"orden_num"`
	CreatedAt         time.Time `json:"created_at"`
}

type updateVentaRequest struct {
	Descripcion string `json:"descripcion"`
	Total       string `json:"total"`
	TipoPago    string `json:"tipo_pago"`
	Estado      string `json:"estado"`
}

func toVentaResponse(v database.Venta) ventaResponse {
	return ventaResponse{
		ID:                v.ID,
		Mesa:              v.MesaNumero,
		Fecha:             v.Fecha.Time.Format("2006-01-02"),
		Hora:              v.Hora,
		Descripcion:       v.Descripcion,
		Total:             numericString(v.Total),
		TipoPago:          v.TipoPago,
		PagoTarjeta:       numericString(v.PagoTarjeta),
		PagoTransferencia: numericString(v.PagoTransferencia),
		PagoEfectivo:      numericString(v.PagoEfectivo),
		Vendedor:          v.Vendedor,
		Estado:            v.Estado,
		OrdenNum:          v.OrdenNum,
		CreatedAt:         v.CreatedAt,
	}
}

// --- Handlers ---

// List returns all sales, optionally filtered to an exact date.
func (h *VentaHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		ventas []database.Venta
		err    error
	)

	if date := r.URL.Query().Get("date"); date != "" {
		t, perr := time.Parse("2006-01-02", date)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		ventas, err = h.store.ListVentasByFecha(r.Context(), pgtype.Date{Time: t, Valid: true})
	} else {
		ventas, err = h.store.ListVentas(r.Context())
	}
	if err != nil {
		log.Printf("ERROR: list ventas: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]ventaResponse, len(ventas))
	for i, v := range ventas {
		resp[i] = toVentaResponse(v)
	}

	writeJSON(w, http.StatusOK, resp)
}

// MarkDisponible releases a mesa. Idempotent: releasing an available
// mesa is a no-op that still reports success.
func (h *VentaHandler) MarkDisponible(w http.ResponseWriter, r *http.Request) {
	numero, err := parseMesaNumero(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid mesa number"})
		return
	}

	if _, err := h.store.LiberarMesa(r.Context(), numero); err != nil {
		log.Printf("ERROR: liberar mesa %d: %v", numero, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notifier.Broadcast("mesa.actualizada", map[string]interface{}{
		"mesa":       numero,
		"disponible": true,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// BorrarItems clears a mesa's pending items without touching the ledger
// or the mesa's occupancy.
func (h *VentaHandler) BorrarItems(w http.ResponseWriter, r *http.Request) {
	numero, err := parseMesaNumero(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid mesa number"})
		return
	}

	if _, err := h.store.DeleteLineItemsByMesa(r.Context(), numero); err != nil {
		log.Printf("ERROR: borrar items mesa %d: %v", numero, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateByOrdenNum corrects a recorded sale by its order number. Legacy
// path kept for after-the-fact fixes from the admin screen.
func (h *VentaHandler) UpdateByOrdenNum(w http.ResponseWriter, r *http.Request) {
	ordenNum := chi.URLParam(r, "ordenNum")
	if ordenNum == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "orden number is required"})
		return
	}

	var req updateVentaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Estado != enum.SaleStatusPago && req.Estado != enum.SaleStatusPendiente {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid estado"})
		return
	}

	total, err := parseBasePrice(req.Total)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid total"})
		return
	}

	venta, err := h.store.UpdateVentaByOrdenNum(r.Context(), database.UpdateVentaByOrdenNumParams{
		OrdenNum:    ordenNum,
		Descripcion: req.Descripcion,
		Total:       total,
		TipoPago:    req.TipoPago,
		Estado:      req.Estado,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "venta not found"})
			return
		}
		log.Printf("ERROR: update venta %s: %v", ordenNum, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toVentaResponse(venta))
}

// --- Helpers ---

// numericString formats a pgtype.Numeric as a money string with two
// decimal places, falling back to "0.00" for null values.
func numericString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
