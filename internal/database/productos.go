package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listProductos = `
SELECT id, nombre, precio, num_sabores, categoria_id, is_active, created_at
FROM productos
WHERE is_active = TRUE
ORDER BY nombre
`

func (q *Queries) ListProductos(ctx context.Context) ([]Producto, error) {
	rows, err := q.db.Query(ctx, listProductos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Producto
	for rows.Next() {
		var p Producto
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Precio, &p.NumSabores, &p.CategoriaID, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const getProductoByNombre = `
SELECT id, nombre, precio, num_sabores, categoria_id, is_active, created_at
FROM productos
WHERE nombre = $1 AND is_active = TRUE
`

func (q *Queries) GetProductoByNombre(ctx context.Context, nombre string) (Producto, error) {
	var p Producto
	err := q.db.QueryRow(ctx, getProductoByNombre, nombre).
		Scan(&p.ID, &p.Nombre, &p.Precio, &p.NumSabores, &p.CategoriaID, &p.IsActive, &p.CreatedAt)
	return p, err
}

const createProducto = `
INSERT INTO productos (nombre, precio, num_sabores, categoria_id)
VALUES ($1, $2, $3, $4)
RETURNING id, nombre, precio, num_sabores, categoria_id, is_active, created_at
`

type CreateProductoParams struct {
	Nombre      string
	Precio      pgtype.Numeric
	NumSabores  int32
	CategoriaID pgtype.UUID
}

func (q *Queries) CreateProducto(ctx context.Context, arg CreateProductoParams) (Producto, error) {
	var p Producto
	err := q.db.QueryRow(ctx, createProducto, arg.Nombre, arg.Precio, arg.NumSabores, arg.CategoriaID).
		Scan(&p.ID, &p.Nombre, &p.Precio, &p.NumSabores, &p.CategoriaID, &p.IsActive, &p.CreatedAt)
	return p, err
}

const updateProducto = `
UPDATE productos
SET nombre = $2, precio = $3, num_sabores = $4, categoria_id = $5
WHERE id = $1 AND is_active = TRUE
RETURNING id, nombre, precio, num_sabores, categoria_id, is_active, created_at
`

type UpdateProductoParams struct {
	ID          uuid.UUID
	Nombre      string
	Precio      pgtype.Numeric
	NumSabores  int32
	CategoriaID pgtype.UUID
}

func (q *Queries) UpdateProducto(ctx context.Context, arg UpdateProductoParams) (Producto, error) {
	var p Producto
	err := q.db.QueryRow(ctx, updateProducto, arg.ID, arg.Nombre, arg.Precio, arg.NumSabores, arg.CategoriaID).
		Scan(&p.ID, &p.Nombre, &p.Precio, &p.NumSabores, &p.CategoriaID, &p.IsActive, &p.CreatedAt)
	return p, err
}

const softDeleteProducto = `
UPDATE productos SET is_active = FALSE
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

func (q *Queries) SoftDeleteProducto(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteProducto, id).Scan(&out)
	return out, err
}

const upsertProductoByNombre = `
INSERT INTO productos (nombre, precio, num_sabores, categoria_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (nombre) DO UPDATE
SET precio = EXCLUDED.precio,
    num_sabores = EXCLUDED.num_sabores,
    categoria_id = COALESCE(EXCLUDED.categoria_id, productos.categoria_id),
    is_active = TRUE
RETURNING id, nombre, precio, num_sabores, categoria_id, is_active, created_at
`

type UpsertProductoByNombreParams struct {
	Nombre      string
	Precio      pgtype.Numeric
	NumSabores  int32
	CategoriaID pgtype.UUID
}

// UpsertProductoByNombre is the bulk-import write path: rows keyed by
// product name, re-activating soft-deleted products on re-import.
func (q *Queries) UpsertProductoByNombre(ctx context.Context, arg UpsertProductoByNombreParams) (Producto, error) {
	var p Producto
	err := q.db.QueryRow(ctx, upsertProductoByNombre, arg.Nombre, arg.Precio, arg.NumSabores, arg.CategoriaID).
		Scan(&p.ID, &p.Nombre, &p.Precio, &p.NumSabores, &p.CategoriaID, &p.IsActive, &p.CreatedAt)
	return p, err
}
