package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const provisionMesas = `
INSERT INTO mesas (numero)
SELECT n FROM generate_series(1, $1::int) AS n
ON CONFLICT (numero) DO NOTHING
`

// ProvisionMesas ensures mesas 1..count exist. Existing rows are left
// untouched. Returns the number of newly created mesas.
func (q *Queries) ProvisionMesas(ctx context.Context, count int32) (int64, error) {
	tag, err := q.db.Exec(ctx, provisionMesas, count)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deprovisionMesas = `
DELETE FROM mesas WHERE numero > $1
`

// DeprovisionMesas drops every mesa above keep, discarding their pending
// items via cascade. Returns the number of dropped mesas.
func (q *Queries) DeprovisionMesas(ctx context.Context, keep int32) (int64, error) {
	tag, err := q.db.Exec(ctx, deprovisionMesas, keep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countMesas = `
SELECT COUNT(*) FROM mesas WHERE numero > 0
`

// CountMesas returns the number of provisioned mesas, excluding the
// walk-up counter.
func (q *Queries) CountMesas(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countMesas).Scan(&count)
	return count, err
}

const getMesa = `
SELECT numero, disponible, orden_num, subtotal FROM mesas WHERE numero = $1
`

func (q *Queries) GetMesa(ctx context.Context, numero int32) (Mesa, error) {
	var m Mesa
	err := q.db.QueryRow(ctx, getMesa, numero).Scan(&m.Numero, &m.Disponible, &m.OrdenNum, &m.Subtotal)
	return m, err
}

const getMesaForUpdate = `
SELECT numero, disponible, orden_num, subtotal FROM mesas WHERE numero = $1 FOR UPDATE
`

// GetMesaForUpdate locks the mesa row to serialize concurrent order saves
// and checkouts against the same mesa.
func (q *Queries) GetMesaForUpdate(ctx context.Context, numero int32) (Mesa, error) {
	var m Mesa
	err := q.db.QueryRow(ctx, getMesaForUpdate, numero).Scan(&m.Numero, &m.Disponible, &m.OrdenNum, &m.Subtotal)
	return m, err
}

const listMesasPagables = `
SELECT numero, disponible, orden_num, subtotal
FROM mesas
WHERE disponible = FALSE AND orden_num IS NOT NULL
ORDER BY numero
`

// ListMesasPagables returns the mesas the cashier view treats as payable.
func (q *Queries) ListMesasPagables(ctx context.Context) ([]Mesa, error) {
	rows, err := q.db.Query(ctx, listMesasPagables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Mesa
	for rows.Next() {
		var m Mesa
		if err := rows.Scan(&m.Numero, &m.Disponible, &m.OrdenNum, &m.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const ocuparMesa = `
UPDATE mesas
SET disponible = FALSE, orden_num = $2, subtotal = $3
WHERE numero = $1
RETURNING numero, disponible, orden_num, subtotal
`

type OcuparMesaParams struct {
	Numero   int32
	OrdenNum pgtype.Int8
	Subtotal pgtype.Numeric
}

func (q *Queries) OcuparMesa(ctx context.Context, arg OcuparMesaParams) (Mesa, error) {
	var m Mesa
	err := q.db.QueryRow(ctx, ocuparMesa, arg.Numero, arg.OrdenNum, arg.Subtotal).
		Scan(&m.Numero, &m.Disponible, &m.OrdenNum, &m.Subtotal)
	return m, err
}

const liberarMesa = `
UPDATE mesas
SET disponible = TRUE, orden_num = NULL, subtotal = 0
WHERE numero = $1
`

// LiberarMesa marks a mesa available and clears its cached order state.
// Releasing an already-available mesa is a no-op. Returns rows affected so
// callers can distinguish an unprovisioned mesa.
func (q *Queries) LiberarMesa(ctx context.Context, numero int32) (int64, error) {
	tag, err := q.db.Exec(ctx, liberarMesa, numero)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
