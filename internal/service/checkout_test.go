package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/enum"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func newCheckoutService(store *mockStore) (*CheckoutService, *fakePool) {
	pool := &fakePool{}
	svc := NewCheckoutService(pool, func(db database.DBTX) CheckoutStore { return store })
	svc.now = func() time.Time {
		return time.Date(2025, 3, 14, 16, 30, 5, 0, time.UTC)
	}
	return svc, pool
}

func seedMesaConItems(store *mockStore, mesa int32) {
	store.addMesa(mesa)
	m := store.mesas[mesa]
	m.Disponible = false
	m.OrdenNum = pgtype.Int8{Int64: 7, Valid: true}
	store.mesas[mesa] = m
	store.items[mesa] = []database.LineItem{
		{ID: 1, MesaNumero: mesa, Posicion: 1, Producto: "Banana Split", Precio: mustNumeric("4500"), Sabores: []string{"Fresa", "Chocolate"}},
		{ID: 2, MesaNumero: mesa, Posicion: 2, Producto: "Malteada", Precio: mustNumeric("6000"), ParaLlevar: true},
	}
}

func TestComputeFinalTotal(t *testing.T) {
	items := []database.LineItem{
		{Producto: "Cono", Precio: mustNumeric("2500")},
		{Producto: "Malteada", Precio: mustNumeric("6000"), ParaLlevar: true},
		{Producto: "Paleta", Precio: mustNumeric("1500"), ParaLlevar: true},
	}

	ticket, total := ComputeFinalTotal(items)

	if !total.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("total: got %s, want 12000", total)
	}
	if len(ticket) != 4 {
		t.Fatalf("ticket lines: got %d, want 4", len(ticket))
	}
	last := ticket[3]
	if last.Nombre != "Desechable" {
		t.Errorf("surcharge line: got %q, want Desechable", last.Nombre)
	}
	if last.Precio != "2000.00" {
		t.Errorf("surcharge price: got %s, want 2000.00", last.Precio)
	}

	// Idempotent: re-deriving from the same input yields the same output.
	ticket2, total2 := ComputeFinalTotal(items)
	if !total2.Equal(total) || len(ticket2) != len(ticket) {
		t.Error("second derivation differs from first")
	}
}

func TestComputeFinalTotal_NoTakeaway(t *testing.T) {
	items := []database.LineItem{
		{Producto: "Cono", Precio: mustNumeric("2500")},
	}

	ticket, total := ComputeFinalTotal(items)

	if !total.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("total: got %s, want 2500", total)
	}
	if len(ticket) != 1 {
		t.Errorf("no surcharge line expected, got %d lines", len(ticket))
	}
}

func TestCheckout_Efectivo(t *testing.T) {
	store := newMockStore()
	seedMesaConItems(store, 4)
	store.lastID = 122
	svc, pool := newCheckoutService(store)

	result, err := svc.Checkout(context.Background(), CheckoutRequest{
		MesaNumero: 4,
		TipoPago:   enum.PaymentTypeEfectivo,
		Vendedor:   "maria",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// 4500 + 6000 + 1000 surcharge.
	if !result.Total.Equal(decimal.NewFromInt(11500)) {
		t.Errorf("total: got %s, want 11500", result.Total)
	}

	v := result.Venta
	if v.Estado != enum.SaleStatusPago {
		t.Errorf("estado: got %s, want PAGO", v.Estado)
	}
	if v.OrdenNum != "000123" {
		t.Errorf("orden num: got %s, want 000123", v.OrdenNum)
	}
	if v.Hora != "16:30:05" {
		t.Errorf("hora: got %s, want 16:30:05", v.Hora)
	}
	if v.Descripcion != "Banana Split, Malteada, Desechable" {
		t.Errorf("descripcion: got %q", v.Descripcion)
	}
	if got := numericToDecimal(v.PagoEfectivo); !got.Equal(result.Total) {
		t.Errorf("pago efectivo: got %s, want %s", got, result.Total)
	}
	if got := numericToDecimal(v.PagoTarjeta); !got.IsZero() {
		t.Errorf("pago tarjeta: got %s, want 0", got)
	}

	if len(store.items[4]) != 0 {
		t.Error("pending items were not cleared")
	}
	if !store.mesas[4].Disponible {
		t.Error("mesa was not released")
	}
	if len(store.settled) != 1 || store.settled[0] != 4 {
		t.Errorf("pendientes not settled for mesa 4: %v", store.settled)
	}
	if !pool.tx.committed {
		t.Error("transaction was not committed")
	}
}

func TestCheckout_DivididoExact(t *testing.T) {
	store := newMockStore()
	seedMesaConItems(store, 6)
	svc, _ := newCheckoutService(store)

	result, err := svc.Checkout(context.Background(), CheckoutRequest{
		MesaNumero:        6,
		TipoPago:          enum.PaymentTypeDividido,
		PagoTarjeta:       "5000",
		PagoTransferencia: "4000",
		PagoEfectivo:      "2500",
		Vendedor:          "pedro",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if got := numericToDecimal(result.Venta.PagoTarjeta); !got.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("pago tarjeta: got %s, want 5000", got)
	}
	if got := numericToDecimal(result.Venta.PagoTransferencia); !got.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("pago transferencia: got %s, want 4000", got)
	}
	if got := numericToDecimal(result.Venta.PagoEfectivo); !got.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("pago efectivo: got %s, want 2500", got)
	}
}

func TestCheckout_DivididoMismatch(t *testing.T) {
	store := newMockStore()
	seedMesaConItems(store, 6)
	svc, pool := newCheckoutService(store)

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		MesaNumero:        6,
		TipoPago:          enum.PaymentTypeDividido,
		PagoTarjeta:       "5000",
		PagoTransferencia: "4000",
		PagoEfectivo:      "2499.99",
	})
	if !errors.Is(err, ErrPagoMismatch) {
		t.Fatalf("expected ErrPagoMismatch, got %v", err)
	}

	if len(store.ventas) != 0 {
		t.Error("no venta should be written on mismatch")
	}
	if len(store.items[6]) == 0 {
		t.Error("pending items should survive a failed checkout")
	}
	if pool.tx.committed {
		t.Error("transaction should not be committed")
	}
}

func TestCheckout_NegativeSplitAmount(t *testing.T) {
	store := newMockStore()
	seedMesaConItems(store, 6)
	svc, _ := newCheckoutService(store)

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		MesaNumero:  6,
		TipoPago:    enum.PaymentTypeDividido,
		PagoTarjeta: "-100",
	})
	if !errors.Is(err, ErrMontoInvalido) {
		t.Fatalf("expected ErrMontoInvalido, got %v", err)
	}
}

func TestCheckout_MesaVacia(t *testing.T) {
	store := newMockStore()
	store.addMesa(2)
	svc, _ := newCheckoutService(store)

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		MesaNumero: 2,
		TipoPago:   enum.PaymentTypeEfectivo,
	})
	if !errors.Is(err, ErrMesaVacia) {
		t.Fatalf("expected ErrMesaVacia, got %v", err)
	}
}

func TestCheckout_MesaNotFound(t *testing.T) {
	store := newMockStore()
	svc, _ := newCheckoutService(store)

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		MesaNumero: 77,
		TipoPago:   enum.PaymentTypeEfectivo,
	})
	if !errors.Is(err, ErrMesaNotFound) {
		t.Fatalf("expected ErrMesaNotFound, got %v", err)
	}
}

func TestCheckout_InvalidTipoPago(t *testing.T) {
	store := newMockStore()
	seedMesaConItems(store, 3)
	svc, _ := newCheckoutService(store)

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		MesaNumero: 3,
		TipoPago:   "Cheque",
	})
	if !errors.Is(err, ErrTipoPagoInvalido) {
		t.Fatalf("expected ErrTipoPagoInvalido, got %v", err)
	}
}
