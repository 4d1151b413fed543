package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/heladeria-pos/api/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// SurchargeDesechable is the per-item disposable-cup charge applied to
// takeaway line items at checkout.
var SurchargeDesechable = decimal.NewFromInt(1000)

// Errors returned by the order and checkout services.
var (
	ErrMesaNotFound      = errors.New("mesa not found")
	ErrProductoRequerido = errors.New("producto name is required")
	ErrProductoNotFound  = errors.New("producto not found")
	ErrSaborCount        = errors.New("too many sabores for producto")
	ErrSaborInvalido     = errors.New("sabor is not available")
	ErrPrecioInvalido    = errors.New("invalid precio")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrdenStore defines the DB methods needed to replace a mesa's pending
// items. Satisfied by *database.Queries (and its WithTx variant).
type OrdenStore interface {
	GetMesaForUpdate(ctx context.Context, numero int32) (database.Mesa, error)
	DeleteLineItemsByMesa(ctx context.Context, mesaNumero int32) (int64, error)
	CreateLineItem(ctx context.Context, arg database.CreateLineItemParams) (database.LineItem, error)
	GetProductoByNombre(ctx context.Context, nombre string) (database.Producto, error)
	ListSaboresActivos(ctx context.Context) ([]string, error)
	GetLastVentaID(ctx context.Context) (int64, error)
	OcuparMesa(ctx context.Context, arg database.OcuparMesaParams) (database.Mesa, error)
	LiberarMesa(ctx context.Context, numero int32) (int64, error)
}

// NewOrdenStore creates an OrdenStore from a DBTX (pool or tx).
type NewOrdenStore func(db database.DBTX) OrdenStore

// LineItemRequest is a single pending item in a replace request.
type LineItemRequest struct {
	Producto   string
	Precio     string
	Sabores    []string
	Notas      string
	ParaLlevar bool
}

// ReplaceItemsRequest is the validated input for overwriting a mesa's
// pending items.
type ReplaceItemsRequest struct {
	MesaNumero int32
	Items      []LineItemRequest
}

// ReplaceOutcome reports what the replace did. Exactly one of Cleared
// or Saved > 0 holds: an empty item list releases the mesa, a non-empty
// one occupies it.
type ReplaceOutcome struct {
	Cleared  bool
	Saved    int
	OrdenNum int64
	Subtotal decimal.Decimal
}

// OrdenService handles the pending-order workflow for mesas.
type OrdenService struct {
	pool     TxBeginner
	newStore NewOrdenStore
}

// NewOrdenService creates a new OrdenService.
func NewOrdenService(pool TxBeginner, newStore NewOrdenStore) *OrdenService {
	return &OrdenService{pool: pool, newStore: newStore}
}

// ReplaceItems overwrites the mesa's pending items atomically.
// The persistence contract is replace-all: existing rows are deleted and
// the request's items re-inserted in order. An empty list clears the
// order and releases the mesa. A non-empty list occupies the mesa,
// recomputes the cached subtotal from scratch, and mints an advisory
// order number from the ledger on the first save.
func (s *OrdenService) ReplaceItems(ctx context.Context, req ReplaceItemsRequest) (*ReplaceOutcome, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Lock the mesa row so concurrent replaces and checkouts on the
	// same mesa serialize.
	mesa, err := store.GetMesaForUpdate(ctx, req.MesaNumero)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMesaNotFound
		}
		return nil, fmt.Errorf("get mesa: %w", err)
	}

	if _, err := store.DeleteLineItemsByMesa(ctx, req.MesaNumero); err != nil {
		return nil, fmt.Errorf("delete line items: %w", err)
	}

	if len(req.Items) == 0 {
		if _, err := store.LiberarMesa(ctx, req.MesaNumero); err != nil {
			return nil, fmt.Errorf("liberar mesa: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit tx: %w", err)
		}
		return &ReplaceOutcome{Cleared: true}, nil
	}

	sabores, err := store.ListSaboresActivos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sabores: %w", err)
	}
	activos := make(map[string]bool, len(sabores))
	for _, s := range sabores {
		activos[s] = true
	}

	subtotal := decimal.Zero
	takeaway := 0

	for i, item := range req.Items {
		if item.Producto == "" {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrProductoRequerido)
		}

		producto, err := store.GetProductoByNombre(ctx, item.Producto)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrProductoNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get producto: %w", i, err)
		}

		if int32(len(item.Sabores)) > producto.NumSabores {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrSaborCount)
		}
		for _, sabor := range item.Sabores {
			if !activos[sabor] {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrSaborInvalido)
			}
		}

		precio, err := decimal.NewFromString(item.Precio)
		if err != nil || precio.IsNegative() {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrPrecioInvalido)
		}

		notas := pgtype.Text{}
		if item.Notas != "" {
			notas = pgtype.Text{String: item.Notas, Valid: true}
		}

		if _, err := store.CreateLineItem(ctx, database.CreateLineItemParams{
			MesaNumero: req.MesaNumero,
			Posicion:   int32(i + 1),
			Producto:   item.Producto,
			Precio:     decimalToNumeric(precio),
			Sabores:    item.Sabores,
			Notas:      notas,
			ParaLlevar: item.ParaLlevar,
		}); err != nil {
			return nil, fmt.Errorf("item[%d]: create line item: %w", i, err)
		}

		subtotal = subtotal.Add(precio)
		if item.ParaLlevar {
			takeaway++
		}
	}

	if takeaway > 0 {
		subtotal = subtotal.Add(SurchargeDesechable.Mul(decimal.NewFromInt(int64(takeaway))))
	}

	// Keep the order number from the first save. It is advisory only,
	// derived from the ledger's highest id; the definitive number is
	// stamped at checkout from the inserted sale id.
	ordenNum := mesa.OrdenNum.Int64
	if !mesa.OrdenNum.Valid {
		lastID, err := store.GetLastVentaID(ctx)
		if err != nil {
			return nil, fmt.Errorf("get last venta id: %w", err)
		}
		ordenNum = lastID + 1
	}

	if _, err := store.OcuparMesa(ctx, database.OcuparMesaParams{
		Numero:   req.MesaNumero,
		OrdenNum: pgtype.Int8{Int64: ordenNum, Valid: true},
		Subtotal: decimalToNumeric(subtotal),
	}); err != nil {
		return nil, fmt.Errorf("ocupar mesa: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &ReplaceOutcome{
		Saved:    len(req.Items),
		OrdenNum: ordenNum,
		Subtotal: subtotal,
	}, nil
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
