package database

import (
	"context"

	"github.com/google/uuid"
)

const listCategorias = `
SELECT id, nombre, is_active, created_at FROM categorias WHERE is_active = TRUE ORDER BY nombre
`

func (q *Queries) ListCategorias(ctx context.Context) ([]Categoria, error) {
	rows, err := q.db.Query(ctx, listCategorias)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Categoria
	for rows.Next() {
		var c Categoria
		if err := rows.Scan(&c.ID, &c.Nombre, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const getCategoria = `
SELECT id, nombre, is_active, created_at FROM categorias WHERE id = $1 AND is_active = TRUE
`

func (q *Queries) GetCategoria(ctx context.Context, id uuid.UUID) (Categoria, error) {
	var c Categoria
	err := q.db.QueryRow(ctx, getCategoria, id).Scan(&c.ID, &c.Nombre, &c.IsActive, &c.CreatedAt)
	return c, err
}

const createCategoria = `
INSERT INTO categorias (nombre) VALUES ($1)
RETURNING id, nombre, is_active, created_at
`

func (q *Queries) CreateCategoria(ctx context.Context, nombre string) (Categoria, error) {
	var c Categoria
	err := q.db.QueryRow(ctx, createCategoria, nombre).Scan(&c.ID, &c.Nombre, &c.IsActive, &c.CreatedAt)
	return c, err
}

const updateCategoria = `
UPDATE categorias SET nombre = $2 WHERE id = $1 AND is_active = TRUE
RETURNING id, nombre, is_active, created_at
`

type UpdateCategoriaParams struct {
	ID     uuid.UUID
	Nombre string
}

func (q *Queries) UpdateCategoria(ctx context.Context, arg UpdateCategoriaParams) (Categoria, error) {
	var c Categoria
	err := q.db.QueryRow(ctx, updateCategoria, arg.ID, arg.Nombre).Scan(&c.ID, &c.Nombre, &c.IsActive, &c.CreatedAt)
	return c, err
}

const softDeleteCategoria = `
UPDATE categorias SET is_active = FALSE
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

func (q *Queries) SoftDeleteCategoria(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteCategoria, id).Scan(&out)
	return out, err
}

const getCategoriaByNombre = `
SELECT id, nombre, is_active, created_at FROM categorias WHERE nombre = $1 AND is_active = TRUE
`

func (q *Queries) GetCategoriaByNombre(ctx context.Context, nombre string) (Categoria, error) {
	var c Categoria
	err := q.db.QueryRow(ctx, getCategoriaByNombre, nombre).Scan(&c.ID, &c.Nombre, &c.IsActive, &c.CreatedAt)
	return c, err
}
