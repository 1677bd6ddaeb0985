package entity

import "time"

// Product representa un producto del catálogo. SafetyStock es el umbral mínimo
// deseado por tienda; el stock se maneja por tienda en Stock.
type Product struct {
	ID          string
	SKU         string
	Name        string
	CategoryID  string
	SafetyStock int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
