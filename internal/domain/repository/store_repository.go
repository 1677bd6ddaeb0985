package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StoreRepository puerto de lectura de tiendas (colaborador externo al núcleo).
type StoreRepository interface {
	// GetByID devuelve nil, nil si la tienda no existe.
	GetByID(ctx context.Context, id string) (*entity.Store, error)
}

// StoreAdminRepository escritura de tiendas para la API de administración.
type StoreAdminRepository interface {
	StoreRepository
	Create(ctx context.Context, store *entity.Store) error
	// Update devuelve domain.ErrNotFound si la tienda no existe.
	Update(ctx context.Context, store *entity.Store) error
	List(ctx context.Context, limit, offset int) ([]*entity.Store, int, error)
}
