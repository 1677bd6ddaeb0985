package dto

import "time"

// MovementRequest body para POST /api/transactions/inbound y /outbound.
// Cantidad y motivo los valida el procesador para que el mensaje sea el mismo en la API directa y en sync.
type MovementRequest struct {
	ItemID     string  `json:"itemId" validate:"required,uuid"`
	LocationID string  `json:"locationId" validate:"required,uuid"`
	Quantity   int64   `json:"quantity"`
	Note       *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// AdjustRequest body para POST /api/transactions/adjust.
type AdjustRequest struct {
	ItemID     string  `json:"itemId" validate:"required,uuid"`
	LocationID string  `json:"locationId" validate:"required,uuid"`
	Delta      int64   `json:"delta"`
	Reason     string  `json:"reason,omitempty" validate:"omitempty,max=32"`
	Note       *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// MovementResponse resultado de un movimiento directo.
type MovementResponse struct {
	MovementID  string `json:"movementId"`
	NewQuantity int64  `json:"newQuantity"`
	SafetyAlert bool   `json:"safetyAlert"`
}

// MovementDTO entrada del ledger.
type MovementDTO struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	ItemID     string     `json:"itemId"`
	LocationID string     `json:"locationId"`
	ActorID    string     `json:"actorId,omitempty"`
	Quantity   int64      `json:"quantity"`
	Reason     *string    `json:"reason,omitempty"`
	Note       *string    `json:"note,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
	SyncedAt   *time.Time `json:"syncedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// MovementListQuery filtros de GET /api/transactions.
type MovementListQuery struct {
	PageRequest
	StoreID   string `query:"storeId" validate:"omitempty,uuid"`
	ProductID string `query:"productId" validate:"omitempty,uuid"`
	Kind      string `query:"kind" validate:"omitempty,oneof=INBOUND OUTBOUND ADJUST"`
}

// MovementListResponse página del ledger.
type MovementListResponse struct {
	Items      []MovementDTO `json:"items"`
	Pagination PageResponse  `json:"pagination"`
}

// StockDTO fila de stock con su clasificación.
type StockDTO struct {
	ItemID      string    `json:"itemId"`
	SKU         string    `json:"sku,omitempty"`
	ProductName string    `json:"productName,omitempty"`
	LocationID  string    `json:"locationId"`
	StoreName   string    `json:"storeName,omitempty"`
	Quantity    int64     `json:"quantity"`
	SafetyStock int64     `json:"safetyStock"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StockListQuery filtros de GET /api/inventory/stocks.
type StockListQuery struct {
	PageRequest
	StoreID    string `query:"storeId" validate:"omitempty,uuid"`
	CategoryID string `query:"categoryId" validate:"omitempty,uuid"`
	Status     string `query:"status"`
}

// StockListResponse página de stock.
type StockListResponse struct {
	Items      []StockDTO   `json:"items"`
	Pagination PageResponse `json:"pagination"`
}

// ProductStockResponse stock de un producto en todas las tiendas.
type ProductStockResponse struct {
	ProductID     string     `json:"productId"`
	SKU           string     `json:"sku"`
	Name          string     `json:"name"`
	SafetyStock   int64      `json:"safetyStock"`
	TotalQuantity int64      `json:"totalQuantity"`
	Stores        []StockDTO `json:"stores"`
}

// ConsistencyResponse resultado de la auditoría caché vs ledger.
type ConsistencyResponse struct {
	ItemID     string `json:"itemId"`
	LocationID string `json:"locationId"`
	Cached     int64  `json:"cached"`
	LedgerSum  int64  `json:"ledgerSum"`
	Consistent bool   `json:"consistent"`
}
