package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/handler"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock store ---

type mockVentaStore struct {
	ventas   []database.Venta
	released []int32
	cleared  []int32
}

func (m *mockVentaStore) ListVentas(_ context.Context) ([]database.Venta, error) {
	return m.ventas, nil
}

func (m *mockVentaStore) ListVentasByFecha(_ context.Context, fecha pgtype.Date) ([]database.Venta, error) {
	var out []database.Venta
	for _, v := range m.ventas {
		if v.Fecha.Time.Equal(fecha.Time) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockVentaStore) LiberarMesa(_ context.Context, numero int32) (int64, error) {
	m.released = append(m.released, numero)
	return 1, nil
}

func (m *mockVentaStore) DeleteLineItemsByMesa(_ context.Context, mesaNumero int32) (int64, error) {
	m.cleared = append(m.cleared, mesaNumero)
	return 1, nil
}

func (m *mockVentaStore) UpdateVentaByOrdenNum(_ context.Context, arg database.UpdateVentaByOrdenNumParams) (database.Venta, error) {
	for i := range m.ventas {
		if m.ventas[i].OrdenNum == arg.OrdenNum {
			m.ventas[i].Descripcion = arg.Descripcion
			m.ventas[i].Total = arg.Total
			m.ventas[i].TipoPago = arg.TipoPago
			m.ventas[i].Estado = arg.Estado
			return m.ventas[i], nil
		}
	}
	return database.Venta{}, pgx.ErrNoRows
}

func ventaOn(t *testing.T, id int64, ordenNum, fecha, total string) database.Venta {
	t.Helper()
	d, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		t.Fatalf("parse fecha: %v", err)
	}
	return database.Venta{
		ID:       id,
		OrdenNum: ordenNum,
		Fecha:    pgtype.Date{Time: d, Valid: true},
		Total:    cajaNumeric(t, total),
		TipoPago: "Efectivo",
		Estado:   "PAGO",
	}
}

func newVentaRouter(store handler.VentaStore, notifier *recordingNotifier) http.Handler {
	r := chi.NewRouter()
	r.Route("/ventas", handler.NewVentaHandler(store, notifier).RegisterRoutes)
	return r
}

// --- Tests ---

func TestListVentas(t *testing.T) {
	store := &mockVentaStore{ventas: []database.Venta{
		ventaOn(t, 1, "000001", "2025-03-14", "11500"),
		ventaOn(t, 2, "000002", "2025-03-15", "4000"),
	}}
	router := newVentaRouter(store, &recordingNotifier{})

	rr := doRequest(t, router, "GET", "/ventas", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	resp := decodeListResponse(t, rr)
	if len(resp) != 2 {
		t.Fatalf("ventas: got %d, want 2", len(resp))
	}
	if resp[0]["total"].(string) != "11500.00" {
		t.Errorf("total: got %v, want 11500.00", resp[0]["total"])
	}
}

func TestListVentas_DateFilter(t *testing.T) {
	store := &mockVentaStore{ventas: []database.Venta{
		ventaOn(t, 1, "000001", "2025-03-14", "11500"),
		ventaOn(t, 2, "000002", "2025-03-15", "4000"),
	}}
	router := newVentaRouter(store, &recordingNotifier{})

	rr := doRequest(t, router, "GET", "/ventas?date=2025-03-15", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	resp := decodeListResponse(t, rr)
	if len(resp) != 1 || resp[0]["orden_num"].(string) != "000002" {
		t.Errorf("filtered ventas: got %+v", resp)
	}
}

func TestListVentas_BadDate(t *testing.T) {
	router := newVentaRouter(&mockVentaStore{}, &recordingNotifier{})

	rr := doRequest(t, router, "GET", "/ventas?date=15-03-2025", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestMarkDisponible(t *testing.T) {
	store := &mockVentaStore{}
	notifier := &recordingNotifier{}
	router := newVentaRouter(store, notifier)

	rr := doRequest(t, router, "PUT", "/ventas/4/disponible", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if len(store.released) != 1 || store.released[0] != 4 {
		t.Errorf("released: got %v, want [4]", store.released)
	}
	if len(notifier.events) != 1 || notifier.events[0].eventType != "mesa.actualizada" {
		t.Fatalf("expected one mesa.actualizada event, got %+v", notifier.events)
	}

	// Idempotent: releasing again still succeeds.
	rr = doRequest(t, router, "PUT", "/ventas/4/disponible", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("second release: got %d, want 200", rr.Code)
	}
}

func TestBorrarItems(t *testing.T) {
	store := &mockVentaStore{}
	router := newVentaRouter(store, &recordingNotifier{})

	rr := doRequest(t, router, "DELETE", "/ventas/3/borrar", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if len(store.cleared) != 1 || store.cleared[0] != 3 {
		t.Errorf("cleared: got %v, want [3]", store.cleared)
	}
}

func TestUpdateVentaByOrdenNum(t *testing.T) {
	store := &mockVentaStore{ventas: []database.Venta{
		ventaOn(t, 1, "000001", "2025-03-14", "11500"),
	}}
	router := newVentaRouter(store, &recordingNotifier{})

	rr := doRequest(t, router, "PUT", "/ventas/orden/000001", map[string]string{
		"descripcion": "Corregido",
		"total":       "9000",
		"tipo_pago":   "Tarjeta",
		"estado":      "PAGO",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["descripcion"] != "Corregido" || resp["total"].(string) != "9000.00" {
		t.Errorf("updated venta: got %+v", resp)
	}
}

func TestUpdateVentaByOrdenNum_InvalidEstado(t *testing.T) {
	router := newVentaRouter(&mockVentaStore{}, &recordingNotifier{})

	rr := doRequest(t, router, "PUT", "/ventas/orden/000001", map[string]string{
		"total":  "9000",
		"estado": "CANCELADO",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestUpdateVentaByOrdenNum_NotFound(t *testing.T) {
	router := newVentaRouter(&mockVentaStore{}, &recordingNotifier{})

	rr := doRequest(t, router, "PUT", "/ventas/orden/999999", map[string]string{
		"total":  "9000",
		"estado": "PAGO",
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}
