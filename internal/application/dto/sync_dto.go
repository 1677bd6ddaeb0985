package dto

import "time"

// SyncMovementDTO movimiento registrado offline por el cliente. Su forma se valida ítem por ítem
// en el reconciliador: un ítem mal formado falla solo, no el lote.
type SyncMovementDTO struct {
	LocalID    string    `json:"localId"`
	Kind       string    `json:"kind"`
	ItemID     string    `json:"itemId"`
	LocationID string    `json:"locationId"`
	Quantity   int64     `json:"quantity"`
	Reason     *string   `json:"reason,omitempty"`
	Note       *string   `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// SyncRequest body para POST /api/sync/transactions.
type SyncRequest struct {
	Movements []SyncMovementDTO `json:"movements" validate:"required,min=1"`
}

// SyncedItemDTO ítem aplicado con su ID de servidor.
type SyncedItemDTO struct {
	LocalID  string `json:"localId"`
	ServerID string `json:"serverId"`
}

// FailedItemDTO ítem rechazado.
type FailedItemDTO struct {
	LocalID string `json:"localId"`
	Error   string `json:"error"`
}

// SyncResponse resultado del lote; siempre 200 si el lote está bien formado.
type SyncResponse struct {
	Synced   []SyncedItemDTO `json:"synced"`
	Failed   []FailedItemDTO `json:"failed"`
	SyncedAt time.Time       `json:"syncedAt"`
}
