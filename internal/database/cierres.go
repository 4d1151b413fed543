package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const cierreColumns = `id, fecha, num_ventas, total, total_efectivo, total_tarjeta, total_transferencia, creado_por, created_at`

const createCierre = `
INSERT INTO cierres (fecha, num_ventas, total, total_efectivo, total_tarjeta, total_transferencia, creado_por)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (fecha) DO UPDATE
SET num_ventas = EXCLUDED.num_ventas,
    total = EXCLUDED.total,
    total_efectivo = EXCLUDED.total_efectivo,
    total_tarjeta = EXCLUDED.total_tarjeta,
    total_transferencia = EXCLUDED.total_transferencia,
    creado_por = EXCLUDED.creado_por
RETURNING ` + cierreColumns

type CreateCierreParams struct {
	Fecha              pgtype.Date
	NumVentas          int64
	Total              pgtype.Numeric
	TotalEfectivo      pgtype.Numeric
	TotalTarjeta       pgtype.Numeric
	TotalTransferencia pgtype.Numeric
	CreadoPor          string
}

// CreateCierre persists the closure snapshot for a date. Re-closing the
// same date overwrites the previous snapshot.
func (q *Queries) CreateCierre(ctx context.Context, arg CreateCierreParams) (Cierre, error) {
	var c Cierre
	err := q.db.QueryRow(ctx, createCierre,
		arg.Fecha, arg.NumVentas, arg.Total, arg.TotalEfectivo, arg.TotalTarjeta, arg.TotalTransferencia, arg.CreadoPor).
		Scan(&c.ID, &c.Fecha, &c.NumVentas, &c.Total, &c.TotalEfectivo, &c.TotalTarjeta, &c.TotalTransferencia, &c.CreadoPor, &c.CreatedAt)
	return c, err
}

const listCierres = `
SELECT ` + cierreColumns + ` FROM cierres ORDER BY fecha DESC
`

func (q *Queries) ListCierres(ctx context.Context) ([]Cierre, error) {
	rows, err := q.db.Query(ctx, listCierres)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Cierre
	for rows.Next() {
		var c Cierre
		if err := rows.Scan(&c.ID, &c.Fecha, &c.NumVentas, &c.Total, &c.TotalEfectivo, &c.TotalTarjeta, &c.TotalTransferencia, &c.CreadoPor, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
