package database

import (
	"context"

	"github.com/google/uuid"
)

const listSabores = `
SELECT id, nombre, activo, created_at FROM sabores ORDER BY nombre
`

func (q *Queries) ListSabores(ctx context.Context) ([]Sabor, error) {
	rows, err := q.db.Query(ctx, listSabores)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Sabor
	for rows.Next() {
		var s Sabor
		if err := rows.Scan(&s.ID, &s.Nombre, &s.Activo, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const listSaboresActivos = `
SELECT nombre FROM sabores WHERE activo = TRUE ORDER BY nombre
`

// ListSaboresActivos returns the names a line item's flavors are validated
// against.
func (q *Queries) ListSaboresActivos(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listSaboresActivos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

const createSabor = `
INSERT INTO sabores (nombre, activo) VALUES ($1, $2)
RETURNING id, nombre, activo, created_at
`

type CreateSaborParams struct {
	Nombre string
	Activo bool
}

func (q *Queries) CreateSabor(ctx context.Context, arg CreateSaborParams) (Sabor, error) {
	var s Sabor
	err := q.db.QueryRow(ctx, createSabor, arg.Nombre, arg.Activo).
		Scan(&s.ID, &s.Nombre, &s.Activo, &s.CreatedAt)
	return s, err
}

const updateSabor = `
UPDATE sabores SET nombre = $2, activo = $3 WHERE id = $1
RETURNING id, nombre, activo, created_at
`

type UpdateSaborParams struct {
	ID     uuid.UUID
	Nombre string
	Activo bool
}

func (q *Queries) UpdateSabor(ctx context.Context, arg UpdateSaborParams) (Sabor, error) {
	var s Sabor
	err := q.db.QueryRow(ctx, updateSabor, arg.ID, arg.Nombre, arg.Activo).
		Scan(&s.ID, &s.Nombre, &s.Activo, &s.CreatedAt)
	return s, err
}

const deleteSabor = `
DELETE FROM sabores WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteSabor(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, deleteSabor, id).Scan(&out)
	return out, err
}
