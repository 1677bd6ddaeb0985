package entity

import "time"

// MovementKind tipo de movimiento registrado en el ledger.
type MovementKind string

// Tipos de movimiento de inventario.
const (
	MovementInbound  MovementKind = "INBOUND"  // entrada
	MovementOutbound MovementKind = "OUTBOUND" // salida
	MovementAdjust   MovementKind = "ADJUST"   // ajuste (requiere motivo)
)

// Valid indica si el tipo es uno de los conocidos.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementInbound, MovementOutbound, MovementAdjust:
		return true
	}
	return false
}

// AdjustReason motivo de un ajuste de inventario.
type AdjustReason string

const (
	ReasonExpired    AdjustReason = "EXPIRED"
	ReasonDamaged    AdjustReason = "DAMAGED"
	ReasonCorrection AdjustReason = "CORRECTION"
	ReasonOther      AdjustReason = "OTHER"
)

// Valid indica si el motivo es uno de los conocidos.
func (r AdjustReason) Valid() bool {
	switch r {
	case ReasonExpired, ReasonDamaged, ReasonCorrection, ReasonOther:
		return true
	}
	return false
}

// Movement es un registro inmutable del ledger de inventario.
// Una vez persistido no se modifica ni se borra; las correcciones son movimientos nuevos.
type Movement struct {
	ID             string
	ItemID         string
	LocationID     string
	ActorID        ActorID
	Kind           MovementKind
	Quantity       int64 // positivo aumenta, negativo disminuye
	Reason         *AdjustReason
	Note           *string
	OccurredAt     time.Time  // hora del evento según quien lo registró (puede ser pasada si vino offline)
	SyncedAt       *time.Time // nil salvo para movimientos reconciliados desde un cliente
	IdempotencyKey *string    // localId del cliente para movimientos sincronizados
	CreatedAt      time.Time
}
