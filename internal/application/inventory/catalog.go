package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Catalog valida producto y tienda con los colaboradores de catálogo antes de invocar el procesador
// y entrega el umbral de seguridad vigente del producto.
type Catalog struct {
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
}

// NewCatalog construye el resolvedor de catálogo.
func NewCatalog(productRepo repository.ProductRepository, storeRepo repository.StoreRepository) *Catalog {
	return &Catalog{productRepo: productRepo, storeRepo: storeRepo}
}

// Resolve devuelve el producto si producto y tienda existen; si no, un error que envuelve domain.ErrNotFound.
func (c *Catalog) Resolve(ctx context.Context, itemID, locationID string) (*entity.Product, error) {
	product, err := c.productRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, itemID)
	}
	store, err := c.storeRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: tienda %s", domain.ErrNotFound, locationID)
	}
	return product, nil
}
