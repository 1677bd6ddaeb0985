// Package usecase administra el catálogo (productos, categorías y tiendas) que el núcleo de inventario consulta.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// ProductUseCase casos de uso del catálogo de productos. El stock se maneja vía movimientos.
type ProductUseCase struct {
	repo       repository.ProductAdminRepository
	categories repository.CategoryRepository
	now        func() time.Time
}

// NewProductUseCase construye el caso de uso. categories valida el categoryId recibido.
func NewProductUseCase(repo repository.ProductAdminRepository, categories repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categories: categories, now: func() time.Time { return time.Now().UTC() }}
}

// Create registra un producto. Devuelve domain.ErrDuplicate si el SKU ya existe.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, domain.InvalidArgument("sku y name son requeridos")
	}
	if in.SafetyStock < 0 {
		return nil, domain.InvalidArgument("safetyStock no puede ser negativo")
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	now := uc.now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         sku,
		Name:        name,
		CategoryID:  in.CategoryID,
		SafetyStock: in.SafetyStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: el SKU %s ya existe", domain.ErrDuplicate, sku)
		}
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto; domain.ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre, categoría o stock de seguridad. El nuevo umbral rige
// desde el siguiente movimiento del producto.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.InvalidArgument("name no puede quedar vacío")
		}
		product.Name = name
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.SafetyStock != nil {
		if *in.SafetyStock < 0 {
			return nil, domain.InvalidArgument("safetyStock no puede ser negativo")
		}
		product.SafetyStock = *in.SafetyStock
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación (page empieza en 1).
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	p, limit := normalizePage(page)
	list, total, err := uc.repo.List(ctx, limit, (p-1)*limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, product := range list {
		items = append(items, *toProductResponse(product))
	}
	return &dto.ProductListResponse{Items: items, Pagination: pageResponse(p, limit, total)}, nil
}

// checkCategory exige que un categoryId no vacío exista. Vacío deja el producto sin categoría.
func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	category, err := uc.categories.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.InvalidArgument("la categoría %s no existe", categoryID)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		SafetyStock: p.SafetyStock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// normalizePage acota page para que el offset no desborde.
func normalizePage(in dto.PageRequest) (int, int) {
	page, limit := in.Page, in.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

func pageResponse(page, limit, total int) dto.PageResponse {
	return dto.PageResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}
