package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const ventaColumns = `id, mesa_numero, fecha, hora, descripcion, total, tipo_pago,
pago_tarjeta, pago_transferencia, pago_efectivo, vendedor, estado, orden_num, created_at`

func scanVenta(row interface{ Scan(dest ...any) error }) (Venta, error) {
	var v Venta
	err := row.Scan(&v.ID, &v.MesaNumero, &v.Fecha, &v.Hora, &v.Descripcion, &v.Total, &v.TipoPago,
		&v.PagoTarjeta, &v.PagoTransferencia, &v.PagoEfectivo, &v.Vendedor, &v.Estado, &v.OrdenNum, &v.CreatedAt)
	return v, err
}

const createVenta = `
INSERT INTO ventas (mesa_numero, fecha, hora, descripcion, total, tipo_pago,
    pago_tarjeta, pago_transferencia, pago_efectivo, vendedor, estado, orden_num)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + ventaColumns

type CreateVentaParams struct {
	MesaNumero        int32
	Fecha             pgtype.Date
	Hora              string
	Descripcion       string
	Total             pgtype.Numeric
	TipoPago          string
	PagoTarjeta       pgtype.Numeric
	PagoTransferencia pgtype.Numeric
	PagoEfectivo      pgtype.Numeric
	Vendedor          string
	Estado            string
	OrdenNum          string
}

func (q *Queries) CreateVenta(ctx context.Context, arg CreateVentaParams) (Venta, error) {
	row := q.db.QueryRow(ctx, createVenta,
		arg.MesaNumero, arg.Fecha, arg.Hora, arg.Descripcion, arg.Total, arg.TipoPago,
		arg.PagoTarjeta, arg.PagoTransferencia, arg.PagoEfectivo, arg.Vendedor, arg.Estado, arg.OrdenNum)
	return scanVenta(row)
}

const setVentaOrdenNum = `
UPDATE ventas SET orden_num = $2 WHERE id = $1
RETURNING ` + ventaColumns

type SetVentaOrdenNumParams struct {
	ID       int64
	OrdenNum string
}

// SetVentaOrdenNum stamps the display order number derived from the
// ledger id assigned at insert time.
func (q *Queries) SetVentaOrdenNum(ctx context.Context, arg SetVentaOrdenNumParams) (Venta, error) {
	return scanVenta(q.db.QueryRow(ctx, setVentaOrdenNum, arg.ID, arg.OrdenNum))
}

const getLastVentaID = `
SELECT COALESCE(MAX(id), 0) FROM ventas
`

func (q *Queries) GetLastVentaID(ctx context.Context) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, getLastVentaID).Scan(&id)
	return id, err
}

const listVentas = `
SELECT ` + ventaColumns + `
FROM ventas
ORDER BY id DESC
`

func (q *Queries) ListVentas(ctx context.Context) ([]Venta, error) {
	rows, err := q.db.Query(ctx, listVentas)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVentas(rows)
}

const listVentasByFecha = `
SELECT ` + ventaColumns + `
FROM ventas
WHERE fecha = $1
ORDER BY id DESC
`

func (q *Queries) ListVentasByFecha(ctx context.Context, fecha pgtype.Date) ([]Venta, error) {
	rows, err := q.db.Query(ctx, listVentasByFecha, fecha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVentas(rows)
}

const listMesasConVentaPendiente = `
SELECT DISTINCT mesa_numero FROM ventas WHERE estado = 'PENDIENTE' ORDER BY mesa_numero
`

// ListMesasConVentaPendiente returns mesa numbers with at least one
// unsettled sale.
func (q *Queries) ListMesasConVentaPendiente(ctx context.Context) ([]int32, error) {
	rows, err := q.db.Query(ctx, listMesasConVentaPendiente)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var nums []int32
	for rows.Next() {
		var n int32
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		nums = append(nums, n)
	}
	return nums, rows.Err()
}

const settleVentasPendientes = `
UPDATE ventas SET estado = 'PAGO' WHERE mesa_numero = $1 AND estado = 'PENDIENTE'
`

// SettleVentasPendientes marks every pending sale for a mesa as paid.
// Part of checkout; runs inside the checkout transaction.
func (q *Queries) SettleVentasPendientes(ctx context.Context, mesaNumero int32) (int64, error) {
	tag, err := q.db.Exec(ctx, settleVentasPendientes, mesaNumero)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const updateVentaByOrdenNum = `
UPDATE ventas
SET descripcion = $2, total = $3, tipo_pago = $4, estado = $5
WHERE orden_num = $1
RETURNING ` + ventaColumns

type UpdateVentaByOrdenNumParams struct {
	OrdenNum    string
	Descripcion string
	Total       pgtype.Numeric
	TipoPago    string
	Estado      string
}

// UpdateVentaByOrdenNum is the legacy correction path: the ledger is
// otherwise append-only.
func (q *Queries) UpdateVentaByOrdenNum(ctx context.Context, arg UpdateVentaByOrdenNumParams) (Venta, error) {
	row := q.db.QueryRow(ctx, updateVentaByOrdenNum,
		arg.OrdenNum, arg.Descripcion, arg.Total, arg.TipoPago, arg.Estado)
	return scanVenta(row)
}

const resumenVentasPorFecha = `
SELECT COUNT(*),
    COALESCE(SUM(total), 0),
    COALESCE(SUM(CASE WHEN tipo_pago = 'Efectivo' THEN total ELSE 0 END), 0)
        + COALESCE(SUM(CASE WHEN tipo_pago = 'Dividido' THEN COALESCE(pago_efectivo, 0) ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN tipo_pago = 'Tarjeta' THEN total ELSE 0 END), 0)
        + COALESCE(SUM(CASE WHEN tipo_pago = 'Dividido' THEN COALESCE(pago_tarjeta, 0) ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN tipo_pago = 'Transferencia' THEN total ELSE 0 END), 0)
        + COALESCE(SUM(CASE WHEN tipo_pago = 'Dividido' THEN COALESCE(pago_transferencia, 0) ELSE 0 END), 0)
FROM ventas
WHERE fecha = $1 AND estado = 'PAGO'
`

type ResumenVentasRow struct {
	NumVentas          int64
	Total              pgtype.Numeric
	TotalEfectivo      pgtype.Numeric
	TotalTarjeta       pgtype.Numeric
	TotalTransferencia pgtype.Numeric
}

// ResumenVentasPorFecha aggregates the paid ledger rows of one date per
// payment channel; split payments contribute their per-channel amounts.
func (q *Queries) ResumenVentasPorFecha(ctx context.Context, fecha pgtype.Date) (ResumenVentasRow, error) {
	var r ResumenVentasRow
	err := q.db.QueryRow(ctx, resumenVentasPorFecha, fecha).
		Scan(&r.NumVentas, &r.Total, &r.TotalEfectivo, &r.TotalTarjeta, &r.TotalTransferencia)
	return r, err
}

func collectVentas(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Venta, error) {
	var items []Venta
	for rows.Next() {
		v, err := scanVenta(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}
