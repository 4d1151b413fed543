package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/handler"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock store ---

type mockConciliacionStore struct {
	ventas []database.Venta
}

func (m *mockConciliacionStore) ListVentasByFecha(_ context.Context, _ pgtype.Date) ([]database.Venta, error) {
	return m.ventas, nil
}

func newConciliarRouter(store handler.ConciliacionStore) http.Handler {
	r := chi.NewRouter()
	r.Route("/ventas", handler.NewConciliacionHandler(store).RegisterRoutes)
	return r
}

func transferVenta(t *testing.T, id int64, ordenNum, total string) database.Venta {
	t.Helper()
	return database.Venta{
		ID:       id,
		OrdenNum: ordenNum,
		Total:    cajaNumeric(t, total),
		TipoPago: "Transferencia",
		Estado:   "PAGO",
	}
}

// --- Tests ---

func TestConciliar(t *testing.T) {
	venta3 := transferVenta(t, 3, "000003", "20000")
	venta3.TipoPago = "Dividido"
	venta3.PagoTransferencia = cajaNumeric(t, "8000")

	efectivo := transferVenta(t, 4, "000004", "5000")
	efectivo.TipoPago = "Efectivo"

	store := &mockConciliacionStore{ventas: []database.Venta{
		transferVenta(t, 1, "000001", "11500"),
		transferVenta(t, 2, "000002", "4000"),
		venta3, // split sale: only its transfer portion participates
		efectivo,
	}}
	router := newConciliarRouter(store)

	rr := doRequest(t, router, "POST", "/ventas/conciliar", map[string]string{
		"texto": "31/08/2026\nnequi juan 11.500\ndaviplata maria 8.000\nbancolombia pedro 9.999",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["fecha"] != "2026-08-31" {
		t.Errorf("fecha: got %v, want 2026-08-31", resp["fecha"])
	}
	if resp["conciliados"].(float64) != 2 {
		t.Errorf("conciliados: got %v, want 2", resp["conciliados"])
	}
	if resp["sin_conciliar"].(float64) != 1 {
		t.Errorf("sin_conciliar: got %v, want 1", resp["sin_conciliar"])
	}

	movs := resp["movimientos"].([]interface{})
	if len(movs) != 3 {
		t.Fatalf("movimientos: got %d, want 3", len(movs))
	}

	first := movs[0].(map[string]interface{})
	if first["estado"] != "conciliado" || first["orden_num"] != "000001" {
		t.Errorf("movimiento[0]: got %+v", first)
	}
	second := movs[1].(map[string]interface{})
	if second["estado"] != "conciliado" || second["orden_num"] != "000003" {
		t.Errorf("movimiento[1]: got %+v", second)
	}
	third := movs[2].(map[string]interface{})
	if third["estado"] != "sin_conciliar" {
		t.Errorf("movimiento[2]: got %+v", third)
	}

	// The cash sale never participates; the unmatched transfer shows up
	// as unclaimed.
	sinReclamar := resp["sin_reclamar"].([]interface{})
	if len(sinReclamar) != 1 || sinReclamar[0] != "000002" {
		t.Errorf("sin_reclamar: got %v, want [000002]", sinReclamar)
	}
}

func TestConciliar_Ambiguous(t *testing.T) {
	store := &mockConciliacionStore{ventas: []database.Venta{
		transferVenta(t, 1, "000001", "11500"),
		transferVenta(t, 2, "000002", "11500"),
	}}
	router := newConciliarRouter(store)

	rr := doRequest(t, router, "POST", "/ventas/conciliar", map[string]string{
		"texto": "31 ago\nnequi juan 11.500",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["ambiguos"].(float64) != 1 {
		t.Errorf("ambiguos: got %v, want 1", resp["ambiguos"])
	}
	mov := resp["movimientos"].([]interface{})[0].(map[string]interface{})
	if mov["estado"] != "ambiguo" {
		t.Errorf("estado: got %v, want ambiguo", mov["estado"])
	}
	if candidatos := mov["candidatos"].([]interface{}); len(candidatos) != 2 {
		t.Errorf("candidatos: got %v, want 2 entries", candidatos)
	}
}

func TestConciliar_BadStatement(t *testing.T) {
	router := newConciliarRouter(&mockConciliacionStore{})

	rr := doRequest(t, router, "POST", "/ventas/conciliar", map[string]string{
		"texto": "esto no empieza con fecha 11.500",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestConciliar_MissingTexto(t *testing.T) {
	router := newConciliarRouter(&mockConciliacionStore{})

	rr := doRequest(t, router, "POST", "/ventas/conciliar", map[string]string{})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}
