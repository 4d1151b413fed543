package enum

// ── State machines (CHECK constrained in DB) ──

const (
	SaleStatusPago      = "PAGO"
	SaleStatusPendiente = "PENDIENTE"
)

const (
	PaymentTypeEfectivo      = "Efectivo"
	PaymentTypeTransferencia = "Transferencia"
	PaymentTypeTarjeta       = "Tarjeta"
	PaymentTypeDividido      = "Dividido"
)

// ── Roles (CHECK constrained in DB) ──

const (
	RoleAdmin  = "ADMIN"
	RoleCajero = "CAJERO"
	RoleMesero = "MESERO"
)

// MesaMostrador is the walk-up counter pseudo-table. It is always
// provisioned and never counted or deprovisioned.
const MesaMostrador = 0
