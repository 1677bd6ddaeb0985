package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia de categorías.
type CategoryRepository interface {
	// Create devuelve domain.ErrDuplicate si el código ya existe.
	Create(ctx context.Context, category *entity.Category) error
	// GetByID devuelve nil, nil si la categoría no existe.
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	// List devuelve todas las categorías ordenadas por sort_order y luego por código.
	List(ctx context.Context) ([]*entity.Category, error)
}
