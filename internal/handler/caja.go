package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/middleware"
	"github.com/heladeria-pos/api/internal/printer"
	"github.com/heladeria-pos/api/internal/service"
	"github.com/jackc/pgx/v5"
)

// CheckoutServicer defines the service methods needed by the cashier
// handlers. Satisfied by *service.CheckoutService.
type CheckoutServicer interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error)
}

// CajaStore defines the database methods needed by cashier read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CajaStore interface {
	ListMesasPagables(ctx context.Context) ([]database.Mesa, error)
	GetMesa(ctx context.Context, numero int32) (database.Mesa, error)
	ListLineItemsByMesa(ctx context.Context, mesaNumero int32) ([]database.LineItem, error)
}

// TicketPublisher sends a ticket to the printing gateway. Satisfied by
// *printer.Publisher.
type TicketPublisher interface {
	PublishTicket(ctx context.Context, ticket printer.Ticket) error
}

// CajaHandler handles cashier endpoints.
type CajaHandler struct {
	checkout CheckoutServicer
	orden    OrdenServicer
	store    CajaStore
	printer  TicketPublisher
	notifier Notifier
}

// NewCajaHandler creates a new CajaHandler.
func NewCajaHandler(checkout CheckoutServicer, orden OrdenServicer, store CajaStore, pub TicketPublisher, notifier Notifier) *CajaHandler {
	return &CajaHandler{checkout: checkout, orden: orden, store: store, printer: pub, notifier: notifier}
}

// RegisterRoutes registers cashier endpoints on the given Chi router.
func (h *CajaHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListPagables)
	r.Get("/mesa/{numero}", h.GetMesa)
	r.Delete("/mesa/{numero}", h.ClearMesa)
	r.Post("/mesa/{numero}/pagar", h.Pagar)
}

// --- Request / Response types ---

type pagarRequest struct {
	TipoPago          string `json:"tipo_pago"`
	PagoTarjeta       string `json:"pago_tarjeta"`
	PagoTransferencia string `json:"pago_transferencia"`
	PagoEfectivo      string `json:"pago_efectivo"`
	Vendedor          string `json:"vendedor"`
}

type mesaPagableResponse struct {
	Mesa     int32  `json:"mesa"`
	Total    string `json:"total"`
	OrdenNum int64  `json:"ordenNum"`
}

type lineItemResponse struct {
	Posicion   int32    `json:"posicion"`
	Producto   string   `json:"producto"`
	Precio     string   `json:"precio"`
	Sabores    []string `json:"sabores"`
	Notas      string   `json:"notas,omitempty"`
	ParaLlevar bool     `json:"para_llevar"`
}

type mesaDetailResponse struct {
	Mesa       int32              `json:"mesa"`
	Disponible bool               `json:"disponible"`
	OrdenNum   *int64             `json:"orden_num"`
	Subtotal   string             `json:"subtotal"`
	Items      []lineItemResponse `json:"items"`
}

// --- Handlers ---

// ListPagables returns the mesas holding an order ready for payment.
func (h *CajaHandler) ListPagables(w http.ResponseWriter, r *http.Request) {
	mesas, err := h.store.ListMesasPagables(r.Context())
	if err != nil {
		log.Printf("ERROR: list mesas pagables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]mesaPagableResponse, len(mesas))
	for i, m := range mesas {
		resp[i] = mesaPagableResponse{
			Mesa:     m.Numero,
			Total:    numericString(m.Subtotal),
			OrdenNum: m.OrdenNum.Int64,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetMesa returns a mesa's pending items with its order number and
// cached subtotal.
func (h *CajaHandler) GetMesa(w http.ResponseWriter, r *http.Request) {
	numero, err := parseMesaNumero(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid mesa number"})
		return
	}

	mesa, err := h.store.GetMesa(r.Context(), numero)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "mesa not found"})
			return
		}
		log.Printf("ERROR: get mesa %d: %v", numero, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListLineItemsByMesa(r.Context(), numero)
	if err != nil {
		log.Printf("ERROR: list line items mesa %d: %v", numero, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := mesaDetailResponse{
		Mesa:       mesa.Numero,
		Disponible: mesa.Disponible,
		Subtotal:   numericString(mesa.Subtotal),
		Items:      make([]lineItemResponse, len(items)),
	}
	if mesa.OrdenNum.Valid {
		n := mesa.OrdenNum.Int64
		resp.OrdenNum = &n
	}
	for i, item := range items {
		resp.Items[i] = lineItemResponse{
			Posicion:   item.Posicion,
			Producto:   item.Producto,
			Precio:     numericString(item.Precio),
			Sabores:    item.Sabores,
			Notas:      item.Notas.String,
			ParaLlevar: item.ParaLlevar,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ClearMesa drops a mesa's pending items and releases it without
// recording a sale.
func (h *CajaHandler) ClearMesa(w http.ResponseWriter, r *http.Request) {
	numero, err := parseMesaNumero(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid mesa number"})
		return
	}

	if _, err := h.orden.ReplaceItems(r.Context(), service.ReplaceItemsRequest{MesaNumero: numero}); err != nil {
		if errors.Is(err, service.ErrMesaNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "mesa not found"})
			return
		}
		log.Printf("ERROR: clear mesa %d: %v", numero, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notifier.Broadcast("mesa.actualizada", map[string]interface{}{
		"mesa":       numero,
		"disponible": true,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Pagar finalizes a mesa's order. The whole close-out runs in one
// transaction; the print message and live event go out only after the
// sale is committed.
func (h *CajaHandler) Pagar(w http.ResponseWriter, r *http.Request) {
	numero, err := parseMesaNumero(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid mesa number"})
		return
	}

	var req pagarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	vendedor := req.Vendedor
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && vendedor == "" {
		vendedor = claims.Username
	}

	result, err := h.checkout.Checkout(r.Context(), service.CheckoutRequest{
		MesaNumero:        numero,
		TipoPago:          req.TipoPago,
		PagoTarjeta:       req.PagoTarjeta,
		PagoTransferencia: req.PagoTransferencia,
		PagoEfectivo:      req.PagoEfectivo,
		Vendedor:          vendedor,
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
		log.Printf("ERROR: checkout mesa %d: %v", numero, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// Best effort: a print failure never undoes the committed sale.
	if h.printer != nil {
		if err := h.printer.PublishTicket(r.Context(), ticketFromResult(numero, result)); err != nil {
			log.Printf("WARN: publish ticket orden %s: %v", result.Venta.OrdenNum, err)
		}
	}

	h.notifier.Broadcast("venta.creada", map[string]interface{}{
		"mesa":      numero,
		"orden_num": result.Venta.OrdenNum,
		"total":     result.Total.StringFixed(2),
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"orden_num": result.Venta.OrdenNum,
		"total":     result.Total.StringFixed(2),
	})
}

// --- Helpers ---

func ticketFromResult(numero int32, result *service.CheckoutResult) printer.Ticket {
	lines := make([]printer.Line, len(result.Items))
	for i, item := range result.Items {
		lines[i] = printer.Line{
			Nombre:  item.Nombre,
			Precio:  item.Precio,
			Sabores: item.Sabores,
			Notas:   item.Notas,
		}
	}

	label := fmt.Sprintf("Mesa %d", numero)
	if numero == 0 {
		label = "Mostrador"
	}

	return printer.Ticket{
		OrdenNum: result.Venta.OrdenNum,
		Fecha:    result.Venta.Fecha.Time.Format("2006-01-02"),
		Hora:     result.Venta.Hora,
		Mesa:     label,
		Total:    result.Total.StringFixed(2),
		Items:    lines,
	}
}
