package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros para listar el ledger. Campos vacíos no filtran.
type MovementFilter struct {
	LocationID string
	ItemID     string
	Kind       entity.MovementKind
	Limit      int
	Offset     int
}

// MovementRepository define el puerto de persistencia del ledger (solo inserción, nunca update/delete).
type MovementRepository interface {
	// Create persiste un movimiento. Si la clave de idempotencia ya existe devuelve
	// domain.ErrConcurrencyConflict para que el llamador reintente y detecte el duplicado.
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// GetByIdempotencyKey devuelve nil, nil si no existe.
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, int, error)
	// SumByPair suma Quantity de todos los movimientos del par producto/tienda.
	SumByPair(ctx context.Context, itemID, locationID string) (int64, error)
}
