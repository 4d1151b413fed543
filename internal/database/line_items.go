package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listLineItemsByMesa = `
SELECT id, mesa_numero, posicion, producto, precio, sabores, notas, para_llevar
FROM line_items
WHERE mesa_numero = $1
ORDER BY posicion
`

func (q *Queries) ListLineItemsByMesa(ctx context.Context, mesaNumero int32) ([]LineItem, error) {
	rows, err := q.db.Query(ctx, listLineItemsByMesa, mesaNumero)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LineItem
	for rows.Next() {
		var i LineItem
		if err := rows.Scan(&i.ID, &i.MesaNumero, &i.Posicion, &i.Producto, &i.Precio, &i.Sabores, &i.Notas, &i.ParaLlevar); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteLineItemsByMesa = `
DELETE FROM line_items WHERE mesa_numero = $1
`

func (q *Queries) DeleteLineItemsByMesa(ctx context.Context, mesaNumero int32) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteLineItemsByMesa, mesaNumero)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const createLineItem = `
INSERT INTO line_items (mesa_numero, posicion, producto, precio, sabores, notas, para_llevar)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, mesa_numero, posicion, producto, precio, sabores, notas, para_llevar
`

type CreateLineItemParams struct {
	MesaNumero int32
	Posicion   int32
	Producto   string
	Precio     pgtype.Numeric
	Sabores    []string
	Notas      pgtype.Text
	ParaLlevar bool
}

func (q *Queries) CreateLineItem(ctx context.Context, arg CreateLineItemParams) (LineItem, error) {
	var i LineItem
	err := q.db.QueryRow(ctx, createLineItem,
		arg.MesaNumero, arg.Posicion, arg.Producto, arg.Precio, arg.Sabores, arg.Notas, arg.ParaLlevar,
	).Scan(&i.ID, &i.MesaNumero, &i.Posicion, &i.Producto, &i.Precio, &i.Sabores, &i.Notas, &i.ParaLlevar)
	return i, err
}
