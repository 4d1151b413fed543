package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/heladeria-pos/api/internal/conciliacion/matcher"
	"github.com/heladeria-pos/api/internal/conciliacion/parser"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/enum"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ConciliacionStore defines the database methods needed by the transfer
// reconciliation handler. Satisfied by *database.Queries.
type ConciliacionStore interface {
	ListVentasByFecha(ctx context.Context, fecha pgtype.Date) ([]database.Venta, error)
}

// ConciliacionHandler matches a pasted bank movement listing against the
// day's transfer-paid sales.
type ConciliacionHandler struct {
	store ConciliacionStore
}

// NewConciliacionHandler creates a new ConciliacionHandler.
func NewConciliacionHandler(store ConciliacionStore) *ConciliacionHandler {
	return &ConciliacionHandler{store: store}
}

// RegisterRoutes registers the reconciliation endpoint on the given Chi router.
func (h *ConciliacionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/conciliar", h.Conciliar)
}

// --- Request / Response types ---

type conciliarRequest struct {
	Texto string `json:"texto"`
}

type movimientoResponse struct {
	Referencia string   `json:"referencia"`
	Monto      string   `json:"monto"`
	Estado     string   `json:"estado"`
	OrdenNum   string   `json:"orden_num,omitempty"`
	Candidatos []string `json:"candidatos,omitempty"`
}

type conciliarResponse struct {
	Fecha        string               `json:"fecha"`
	Movimientos  []movimientoResponse `json:"movimientos"`
	SinReclamar  []string             `json:"sin_reclamar"`
	Conciliados  int                  `json:"conciliados"`
	Ambiguos     int                  `json:"ambiguos"`
	SinConciliar int                  `json:"sin_conciliar"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// --- Handlers ---

// Conciliar parses the pasted listing, pairs each movement with a paid
// sale whose transfer amount matches, and reports what is left over on
// both sides. Read-only: the ledger is never modified here.
func (h *ConciliacionHandler) Conciliar(w http.ResponseWriter, r *http.Request) {
	var req conciliarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Texto == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "texto is required"})
		return
	}

	stmt, err := parser.ParseStatement(req.Texto)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ventas, err := h.store.ListVentasByFecha(r.Context(), pgtype.Date{Time: stmt.Fecha, Valid: true})
	if err != nil {
		log.Printf("ERROR: list ventas %s: %v", stmt.Fecha.Format("2006-01-02"), err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	m := matcher.New(transferSales(ventas))

	resp := conciliarResponse{
		Fecha:       stmt.Fecha.Format("2006-01-02"),
		Movimientos: make([]movimientoResponse, len(stmt.Movimientos)),
		SinReclamar: []string{},
		Warnings:    stmt.Warnings,
	}

	for i, mov := range stmt.Movimientos {
		result := m.Match(mov.Monto)
		mr := movimientoResponse{
			Referencia: mov.Referencia,
			Monto:      mov.Monto.StringFixed(2),
			Estado:     estadoConciliacion(result.Status),
		}
		switch result.Status {
		case matcher.Matched:
			mr.OrdenNum = result.Sale.OrdenNum
			resp.Conciliados++
		case matcher.Ambiguous:
			for _, c := range result.Candidates {
				mr.Candidatos = append(mr.Candidatos, c.OrdenNum)
			}
			resp.Ambiguos++
		case matcher.Unmatched:
			resp.SinConciliar++
		}
		resp.Movimientos[i] = mr
	}

	for _, s := range m.Unclaimed() {
		resp.SinReclamar = append(resp.SinReclamar, s.OrdenNum)
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// transferSales extracts the transfer portion of each paid sale: the
// full total for Transferencia, the transfer channel for Dividido.
func transferSales(ventas []database.Venta) []matcher.Sale {
	var sales []matcher.Sale
	for _, v := range ventas {
		if v.Estado != enum.SaleStatusPago {
			continue
		}

		var monto decimal.Decimal
		switch v.TipoPago {
		case enum.PaymentTypeTransferencia:
			monto = numericDecimal(v.Total)
		case enum.PaymentTypeDividido:
			monto = numericDecimal(v.PagoTransferencia)
		default:
			continue
		}
		if !monto.IsPositive() {
			continue
		}

		sales = append(sales, matcher.Sale{
			ID:       v.ID,
			OrdenNum: v.OrdenNum,
			Monto:    monto,
		})
	}
	return sales
}

func estadoConciliacion(s matcher.MatchStatus) string {
	switch s {
	case matcher.Matched:
		return "conciliado"
	case matcher.Ambiguous:
		return "ambiguo"
	default:
		return "sin_conciliar"
	}
}

func numericDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(numericString(n))
	if err != nil {
		return decimal.Zero
	}
	return d
}
