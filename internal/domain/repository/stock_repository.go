package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// StockFilter filtros para listar la caché de stock.
type StockFilter struct {
	LocationID string
	CategoryID string
	Status     inventory.Status // vacío = todos
	Limit      int
	Offset     int
}

// StockView fila de stock enriquecida con datos del catálogo para lectura.
type StockView struct {
	entity.Stock
	SKU         string
	ProductName string
	StoreName   string
	SafetyStock int64
}

// StockRepository define el puerto para consultar/actualizar stock por tienda+producto.
// Usado dentro de transacciones para garantizar consistencia con el ledger.
type StockRepository interface {
	// Get devuelve una fila con cantidad 0 si el par aún no existe (no la crea).
	Get(ctx context.Context, itemID, locationID string) (*entity.Stock, error)
	// GetForUpdate crea la fila con cantidad 0 si no existe y la bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	ListByItem(ctx context.Context, itemID string) ([]StockView, error)
	List(ctx context.Context, filter StockFilter) ([]StockView, int, error)
}
