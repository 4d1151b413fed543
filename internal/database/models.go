package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Mesa is one row of the table registry. Numero 0 is the walk-up counter.
type Mesa struct {
	Numero     int32
	Disponible bool
	OrdenNum   pgtype.Int8
	Subtotal   pgtype.Numeric
}

// LineItem is one pending product on a mesa. Items have no identity beyond
// their position; the only write path is delete-all + bulk insert.
type LineItem struct {
	ID         int64
	MesaNumero int32
	Posicion   int32
	Producto   string
	Precio     pgtype.Numeric
	Sabores    []string
	Notas      pgtype.Text
	ParaLlevar bool
}

// Venta is one immutable row of the sales ledger.
type Venta struct {
	ID                int64
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
	CreatedAt         time.Time
}

type Producto struct {
	ID          uuid.UUID
	Nombre      string
	Precio      pgtype.Numeric
	NumSabores  int32
	CategoriaID pgtype.UUID
	IsActive    bool
	CreatedAt   time.Time
}

type Sabor struct {
	ID        uuid.UUID
	Nombre    string
	Activo    bool
	CreatedAt time.Time
}

type Empleado struct {
	ID             uuid.UUID
	Username       string
	NombreCompleto string
	HashedPassword string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
}

type Categoria struct {
	ID        uuid.UUID
	Nombre    string
	IsActive  bool
	CreatedAt time.Time
}

// Cierre is one daily closure snapshot derived from the ledger.
type Cierre struct {
	ID                 uuid.UUID
	Fecha              pgtype.Date
	NumVentas          int64
	Total              pgtype.Numeric
	TotalEfectivo      pgtype.Numeric
	TotalTarjeta       pgtype.Numeric
	TotalTransferencia pgtype.Numeric
	CreadoPor          string
	CreatedAt          time.Time
}
