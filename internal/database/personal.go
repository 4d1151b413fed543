package database

import (
	"context"

	"github.com/google/uuid"
)

const empleadoColumns = `id, username, nombre_completo, hashed_password, role, is_active, created_at`

const listEmpleados = `
SELECT ` + empleadoColumns + ` FROM personal WHERE is_active = TRUE ORDER BY nombre_completo
`

func (q *Queries) ListEmpleados(ctx context.Context) ([]Empleado, error) {
	rows, err := q.db.Query(ctx, listEmpleados)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Empleado
	for rows.Next() {
		var e Empleado
		if err := rows.Scan(&e.ID, &e.Username, &e.NombreCompleto, &e.HashedPassword, &e.Role, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const getEmpleadoByUsername = `
SELECT ` + empleadoColumns + ` FROM personal WHERE username = $1 AND is_active = TRUE
`

func (q *Queries) GetEmpleadoByUsername(ctx context.Context, username string) (Empleado, error) {
	var e Empleado
	err := q.db.QueryRow(ctx, getEmpleadoByUsername, username).
		Scan(&e.ID, &e.Username, &e.NombreCompleto, &e.HashedPassword, &e.Role, &e.IsActive, &e.CreatedAt)
	return e, err
}

const getEmpleadoByID = `
SELECT ` + empleadoColumns + ` FROM personal WHERE id = $1 AND is_active = TRUE
`

func (q *Queries) GetEmpleadoByID(ctx context.Context, id uuid.UUID) (Empleado, error) {
	var e Empleado
	err := q.db.QueryRow(ctx, getEmpleadoByID, id).
		Scan(&e.ID, &e.Username, &e.NombreCompleto, &e.HashedPassword, &e.Role, &e.IsActive, &e.CreatedAt)
	return e, err
}

const createEmpleado = `
INSERT INTO personal (username, nombre_completo, hashed_password, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + empleadoColumns

type CreateEmpleadoParams struct {
	Username       string
	NombreCompleto string
	HashedPassword string
	Role           string
}

func (q *Queries) CreateEmpleado(ctx context.Context, arg CreateEmpleadoParams) (Empleado, error) {
	var e Empleado
	err := q.db.QueryRow(ctx, createEmpleado, arg.Username, arg.NombreCompleto, arg.HashedPassword, arg.Role).
		Scan(&e.ID, &e.Username, &e.NombreCompleto, &e.HashedPassword, &e.Role, &e.IsActive, &e.CreatedAt)
	return e, err
}

const updateEmpleado = `
UPDATE personal
SET nombre_completo = $2, role = $3
WHERE id = $1 AND is_active = TRUE
RETURNING ` + empleadoColumns

type UpdateEmpleadoParams struct {
	ID             uuid.UUID
	NombreCompleto string
	Role           string
}

func (q *Queries) UpdateEmpleado(ctx context.Context, arg UpdateEmpleadoParams) (Empleado, error) {
	var e Empleado
	err := q.db.QueryRow(ctx, updateEmpleado, arg.ID, arg.NombreCompleto, arg.Role).
		Scan(&e.ID, &e.Username, &e.NombreCompleto, &e.HashedPassword, &e.Role, &e.IsActive, &e.CreatedAt)
	return e, err
}

const softDeleteEmpleado = `
UPDATE personal SET is_active = FALSE
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

func (q *Queries) SoftDeleteEmpleado(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var out uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteEmpleado, id).Scan(&out)
	return out, err
}
