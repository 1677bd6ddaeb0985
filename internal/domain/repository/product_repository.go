package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo (colaborador externo al núcleo).
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// ProductAdminRepository escritura del catálogo para la API de administración.
type ProductAdminRepository interface {
	ProductRepository
	// Create devuelve domain.ErrDuplicate si el SKU ya existe.
	Create(ctx context.Context, product *entity.Product) error
	// Update devuelve domain.ErrNotFound si el producto no existe.
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, int, error)
}
