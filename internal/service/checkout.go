package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/enum"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the checkout service.
var (
	ErrTipoPagoInvalido = errors.New("invalid tipo_pago")
	ErrMontoInvalido    = errors.New("invalid payment amount")
	ErrPagoMismatch     = errors.New("split amounts do not equal the total")
	ErrMesaVacia        = errors.New("mesa has no pending items")
)

// CheckoutStore defines the DB methods needed to finalize a sale.
// Satisfied by *database.Queries (and its WithTx variant).
type CheckoutStore interface {
	GetMesaForUpdate(ctx context.Context, numero int32) (database.Mesa, error)
	ListLineItemsByMesa(ctx context.Context, mesaNumero int32) ([]database.LineItem, error)
	CreateVenta(ctx context.Context, arg database.CreateVentaParams) (database.Venta, error)
	SetVentaOrdenNum(ctx context.Context, arg database.SetVentaOrdenNumParams) (database.Venta, error)
	SettleVentasPendientes(ctx context.Context, mesaNumero int32) (int64, error)
	DeleteLineItemsByMesa(ctx context.Context, mesaNumero int32) (int64, error)
	LiberarMesa(ctx context.Context, numero int32) (int64, error)
}

// NewCheckoutStore creates a CheckoutStore from a DBTX (pool or tx).
type NewCheckoutStore func(db database.DBTX) CheckoutStore

// TicketItem is a finalized line on the printed ticket. The synthetic
// Desechable surcharge line appears here but is never stored per item.
type TicketItem struct {
	Nombre     string   `json:"nombre"`
	Precio     string   `json:"precio"`
	Sabores    []string `json:"sabores,omitempty"`
	Notas      string   `json:"notas,omitempty"`
	ParaLlevar bool     `json:"para_llevar,omitempty"`
}

// CheckoutRequest is the validated input for closing out a mesa.
type CheckoutRequest struct {
	MesaNumero        int32
	TipoPago          string
	PagoTarjeta       string
	PagoTransferencia string
	PagoEfectivo      string
	Vendedor          string
}

// CheckoutResult is the finalized sale with its ticket lines.
type CheckoutResult struct {
	Venta database.Venta
	Items []TicketItem
	Total decimal.Decimal
}

// CheckoutService finalizes sales.
type CheckoutService struct {
	pool     TxBeginner
	newStore NewCheckoutStore
	now      func() time.Time
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(pool TxBeginner, newStore NewCheckoutStore) *CheckoutService {
	return &CheckoutService{pool: pool, newStore: newStore, now: time.Now}
}

// ComputeFinalTotal derives the ticket lines and grand total from the
// mesa's pending items. When any item is takeaway, a single synthetic
// "Desechable" line priced at 1000 per takeaway item is appended. Pure
// and idempotent: the same input always yields the same output.
func ComputeFinalTotal(items []database.LineItem) ([]TicketItem, decimal.Decimal) {
	ticket := make([]TicketItem, 0, len(items)+1)
	total := decimal.Zero
	takeaway := 0

	for _, item := range items {
		precio := numericToDecimal(item.Precio)
		total = total.Add(precio)
		if item.ParaLlevar {
			takeaway++
		}
		ticket = append(ticket, TicketItem{
			Nombre:     item.Producto,
			Precio:     precio.StringFixed(2),
			Sabores:    item.Sabores,
			Notas:      item.Notas.String,
			ParaLlevar: item.ParaLlevar,
		})
	}

	if takeaway > 0 {
		surcharge := SurchargeDesechable.Mul(decimal.NewFromInt(int64(takeaway)))
		total = total.Add(surcharge)
		ticket = append(ticket, TicketItem{
			Nombre: "Desechable",
			Precio: surcharge.StringFixed(2),
		})
	}

	return ticket, total
}

// Checkout closes out a mesa in a single transaction: lock the mesa
// row, recompute the total from the pending items, insert the PAGO
// sale, stamp its definitive order number from the inserted id, settle
// any PENDIENTE sale for the mesa, clear the items, and release the
// mesa. Nothing is written if any step fails.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if !isValidTipoPago(req.TipoPago) {
		return nil, ErrTipoPagoInvalido
	}

	tarjeta, transferencia, efectivo := decimal.Zero, decimal.Zero, decimal.Zero
	if req.TipoPago == enum.PaymentTypeDividido {
		var err error
		if tarjeta, err = parseMonto(req.PagoTarjeta); err != nil {
			return nil, err
		}
		if transferencia, err = parseMonto(req.PagoTransferencia); err != nil {
			return nil, err
		}
		if efectivo, err = parseMonto(req.PagoEfectivo); err != nil {
			return nil, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetMesaForUpdate(ctx, req.MesaNumero); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMesaNotFound
		}
		return nil, fmt.Errorf("get mesa: %w", err)
	}

	items, err := store.ListLineItemsByMesa(ctx, req.MesaNumero)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrMesaVacia
	}

	ticket, total := ComputeFinalTotal(items)

	switch req.TipoPago {
	case enum.PaymentTypeDividido:
		// Exact equality, no rounding tolerance.
		if !tarjeta.Add(transferencia).Add(efectivo).Equal(total) {
			return nil, ErrPagoMismatch
		}
	case enum.PaymentTypeTarjeta:
		tarjeta = total
	case enum.PaymentTypeTransferencia:
		transferencia = total
	case enum.PaymentTypeEfectivo:
		efectivo = total
	}

	nombres := make([]string, len(ticket))
	for i, t := range ticket {
		nombres[i] = t.Nombre
	}

	now := s.now()
	venta, err := store.CreateVenta(ctx, database.CreateVentaParams{
		MesaNumero:        req.MesaNumero,
		Fecha:             pgtype.Date{Time: now, Valid: true},
		Hora:              now.Format("15:04:05"),
		Descripcion:       strings.Join(nombres, ", "),
		Total:             decimalToNumeric(total),
		TipoPago:          req.TipoPago,
		PagoTarjeta:       decimalToNumeric(tarjeta),
		PagoTransferencia: decimalToNumeric(transferencia),
		PagoEfectivo:      decimalToNumeric(efectivo),
		Vendedor:          req.Vendedor,
		Estado:            enum.SaleStatusPago,
		OrdenNum:          "",
	})
	if err != nil {
		return nil, fmt.Errorf("create venta: %w", err)
	}

	// The definitive order number is the ledger id itself, zero-padded.
	// The advisory number shown while the order was building may differ
	// when two mesas raced for the same max(id)+1.
	venta, err = store.SetVentaOrdenNum(ctx, database.SetVentaOrdenNumParams{
		ID:       venta.ID,
		OrdenNum: fmt.Sprintf("%06d", venta.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("set orden num: %w", err)
	}

	if _, err := store.SettleVentasPendientes(ctx, req.MesaNumero); err != nil {
		return nil, fmt.Errorf("settle pendientes: %w", err)
	}

	if _, err := store.DeleteLineItemsByMesa(ctx, req.MesaNumero); err != nil {
		return nil, fmt.Errorf("delete line items: %w", err)
	}

	if _, err := store.LiberarMesa(ctx, req.MesaNumero); err != nil {
		return nil, fmt.Errorf("liberar mesa: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CheckoutResult{Venta: venta, Items: ticket, Total: total}, nil
}

// --- Helpers ---

func isValidTipoPago(s string) bool {
	switch s {
	case enum.PaymentTypeEfectivo, enum.PaymentTypeTransferencia,
		enum.PaymentTypeTarjeta, enum.PaymentTypeDividido:
		return true
	}
	return false
}

func parseMonto(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrMontoInvalido
	}
	return d, nil
}
