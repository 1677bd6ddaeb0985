package entity

import "time"

// Stock representa la cantidad actual de un producto en una tienda (caché materializada del ledger).
// Quantity siempre es igual a la suma de Movement.Quantity del par (ItemID, LocationID).
type Stock struct {
	ItemID      string
	LocationID  string
	Quantity    int64
	LastAlertAt *time.Time
	UpdatedAt   time.Time
}
