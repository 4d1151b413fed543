package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/enum"
	"github.com/heladeria-pos/api/internal/service"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrdenServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrdenService; narrow interface for testability.
type OrdenServicer interface {
	ReplaceItems(ctx context.Context, req service.ReplaceItemsRequest) (*service.ReplaceOutcome, error)
}

// OrdenStore defines the database methods needed by the sales append and
// pending-table lookups. Satisfied by *database.Queries.
type OrdenStore interface {
	CreateVenta(ctx context.Context, arg database.CreateVentaParams) (database.Venta, error)
	GetLastVentaID(ctx context.Context) (int64, error)
	ListMesasConVentaPendiente(ctx context.Context) ([]int32, error)
}

// Notifier pushes live events to connected clients. Satisfied by *ws.Hub.
type Notifier interface {
	Broadcast(eventType string, payload interface{})
}

// OrdenHandler handles the order-building endpoints.
type OrdenHandler struct {
	svc      OrdenServicer
	store    OrdenStore
	notifier Notifier
}

// NewOrdenHandler creates a new OrdenHandler.
func NewOrdenHandler(svc OrdenServicer, store OrdenStore, notifier Notifier) *OrdenHandler {
	return &OrdenHandler{svc: svc, store: store, notifier: notifier}
}

// RegisterRoutes registers order-building endpoints on the given Chi router.
func (h *OrdenHandler) RegisterRoutes(r chi.Router) {
	r.Post("/mesa/{numero}", h.ReplaceItems)
	r.Post("/sales", h.AppendVenta)
	r.Get("/sales/last-id", h.LastID)
	r.Get("/sales/pending-tables", h.PendingTables)
}

// --- Request / Response types ---

type lineItemRequest struct {
	Producto   string   `json:"producto"`
	Precio     string   `json:"precio"`
	Sabores    []string `json:"sabores"`
	Notas      string   `json:"notas"`
	ParaLlevar bool     `json:"para_llevar"`
}

type replaceItemsRequest struct {
	Items []lineItemRequest `json:"items"`
}

type appendVentaRequest struct {
	Mesa        int32  `json:"mesa"`
	Descripcion string `json:"descripcion"`
	Total       string `json:"total"`
	Vendedor    string `json:"vendedor"`
	OrdenNum    string `json:"orden_num"`
}

// --- Handlers ---

// ReplaceItems overwrites a mesa's pending items. An empty item list
// clears the order and releases the mesa.
func (h *OrdenHandler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	numero, err := parseMesaNumero(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid mesa number"})
		return
	}

	var req replaceItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items := make([]service.LineItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.LineItemRequest{
			Producto:   item.Producto,
			Precio:     item.Precio,
			Sabores:    item.Sabores,
			Notas:      item.Notas,
			ParaLlevar: item.ParaLlevar,
		}
	}

	outcome, err := h.svc.ReplaceItems(r.Context(), service.ReplaceItemsRequest{
		MesaNumero: numero,
		Items:      items,
	})
	if err != nil {
		if errors.Is(err, service.ErrMesaNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "mesa not found"})
			return
		}
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: replace items mesa %d: %v", numero, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notifier.Broadcast("mesa.actualizada", map[string]interface{}{
		"mesa":       numero,
		"disponible": outcome.Cleared,
	})

	if outcome.Cleared {
		writeJSON(w, http.StatusOK, map[string]string{"message": "mesa cleared"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "items saved",
		"saved":     outcome.Saved,
		"orden_num": outcome.OrdenNum,
		"subtotal":  outcome.Subtotal.StringFixed(2),
	})
}

// AppendVenta records a PENDIENTE sale for a mesa. Used by clients that
// park an order in the ledger before checkout settles it.
func (h *OrdenHandler) AppendVenta(w http.ResponseWriter, r *http.Request) {
	var req appendVentaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Mesa < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid mesa number"})
		return
	}

	total, err := parseBasePrice(req.Total)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid total"})
		return
	}

	now := time.Now()
	_, err = h.store.CreateVenta(r.Context(), database.CreateVentaParams{
		MesaNumero:  req.Mesa,
		Fecha:       pgtype.Date{Time: now, Valid: true},
		Hora:        now.Format("15:04:05"),
		Descripcion: req.Descripcion,
		Total:       total,
		TipoPago:    "",
		Vendedor:    req.Vendedor,
		Estado:      enum.SaleStatusPendiente,
		OrdenNum:    req.OrdenNum,
	})
	if err != nil {
		log.Printf("ERROR: append venta: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// LastID returns the highest sale id for advisory order-number derivation.
func (h *OrdenHandler) LastID(w http.ResponseWriter, r *http.Request) {
	lastID, err := h.store.GetLastVentaID(r.Context())
	if err != nil {
		log.Printf("ERROR: get last venta id: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"lastId": lastID})
}

// PendingTables returns the mesa numbers with a PENDIENTE sale.
func (h *OrdenHandler) PendingTables(w http.ResponseWriter, r *http.Request) {
	mesas, err := h.store.ListMesasConVentaPendiente(r.Context())
	if err != nil {
		log.Printf("ERROR: list pending tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if mesas == nil {
		mesas = []int32{}
	}

	writeJSON(w, http.StatusOK, map[string][]int32{"mesasOcupadas": mesas})
}

// --- Helpers ---

func parseMesaNumero(r *http.Request) (int32, error) {
	n, err := strconv.ParseInt(chi.URLParam(r, "numero"), 10, 32)
	if err != nil || n < 0 {
		return 0, errors.New("invalid mesa number")
	}
	return int32(n), nil
}

// isValidationError reports whether err is a client-input problem that
// maps to a 400 rather than a 500.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrProductoRequerido) ||
		errors.Is(err, service.ErrProductoNotFound) ||
		errors.Is(err, service.ErrSaborCount) ||
		errors.Is(err, service.ErrSaborInvalido) ||
		errors.Is(err, service.ErrPrecioInvalido) ||
		errors.Is(err, service.ErrTipoPagoInvalido) ||
		errors.Is(err, service.ErrMontoInvalido) ||
		errors.Is(err, service.ErrPagoMismatch) ||
		errors.Is(err, service.ErrMesaVacia)
}
