package inventory

import (
	"context"
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// QueryUseCase lecturas sobre la caché de stock y el ledger (listados, detalle, auditoría).
type QueryUseCase struct {
	stockRepo   repository.StockRepository
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	stockRepo repository.StockRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) *QueryUseCase {
	return &QueryUseCase{stockRepo: stockRepo, movRepo: movRepo, productRepo: productRepo}
}

// StockItem fila de stock con su clasificación.
type StockItem struct {
	repository.StockView
	Status inventory.Status
}

// Page metadatos de paginación (page empieza en 1).
type Page struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// StockQuery filtros de ListStocks.
type StockQuery struct {
	StoreID    string
	CategoryID string
	Status     string
	Page       int
	Limit      int
}

// ListStocks lista el stock actual por tienda, filtrando opcionalmente por categoría y estado.
func (uc *QueryUseCase) ListStocks(ctx context.Context, q StockQuery) ([]StockItem, Page, error) {
	filter := repository.StockFilter{LocationID: q.StoreID, CategoryID: q.CategoryID}
	if q.Status != "" {
		status, ok := inventory.ParseStatus(q.Status)
		if !ok {
			return nil, Page{}, domain.InvalidArgument("estado desconocido: %s", q.Status)
		}
		filter.Status = status
	}
	page, limit := normalizePage(q.Page, q.Limit)
	filter.Limit = limit
	filter.Offset = pageOffset(page, limit)

	rows, total, err := uc.stockRepo.List(ctx, filter)
	if err != nil {
		return nil, Page{}, err
	}
	items := make([]StockItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, StockItem{StockView: r, Status: inventory.Classify(r.Quantity, r.SafetyStock)})
	}
	return items, newPage(page, limit, total), nil
}

// GetProductStock devuelve el producto y su stock en cada tienda.
func (uc *QueryUseCase) GetProductStock(ctx context.Context, productID string) (*entity.Product, []StockItem, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrNotFound
	}
	rows, err := uc.stockRepo.ListByItem(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	items := make([]StockItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, StockItem{StockView: r, Status: inventory.Classify(r.Quantity, product.SafetyStock)})
	}
	return product, items, nil
}

// MovementQuery filtros de ListMovements.
type MovementQuery struct {
	StoreID   string
	ProductID string
	Kind      string
	Page      int
	Limit     int
}

// ListMovements lista el historial del ledger, más reciente primero.
func (uc *QueryUseCase) ListMovements(ctx context.Context, q MovementQuery) ([]*entity.Movement, Page, error) {
	filter := repository.MovementFilter{LocationID: q.StoreID, ItemID: q.ProductID}
	if q.Kind != "" {
		kind := entity.MovementKind(q.Kind)
		if !kind.Valid() {
			return nil, Page{}, domain.InvalidArgument("tipo de movimiento desconocido: %s", q.Kind)
		}
		filter.Kind = kind
	}
	page, limit := normalizePage(q.Page, q.Limit)
	filter.Limit = limit
	filter.Offset = pageOffset(page, limit)

	list, total, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, Page{}, err
	}
	return list, newPage(page, limit, total), nil
}

// ConsistencyReport compara la caché con la suma del ledger para un par producto/tienda.
type ConsistencyReport struct {
	ItemID     string
	LocationID string
	Cached     int64
	LedgerSum  int64
	Consistent bool
}

// VerifyConsistency audita que la caché coincida con el ledger.
func (uc *QueryUseCase) VerifyConsistency(ctx context.Context, itemID, locationID string) (ConsistencyReport, error) {
	if itemID == "" || locationID == "" {
		return ConsistencyReport{}, domain.InvalidArgument("itemId y locationId son obligatorios")
	}
	stock, err := uc.stockRepo.Get(ctx, itemID, locationID)
	if err != nil {
		return ConsistencyReport{}, err
	}
	sum, err := uc.movRepo.SumByPair(ctx, itemID, locationID)
	if err != nil {
		return ConsistencyReport{}, err
	}
	return ConsistencyReport{
		ItemID:     itemID,
		LocationID: locationID,
		Cached:     stock.Quantity,
		LedgerSum:  sum,
		Consistent: stock.Quantity == sum,
	}, nil
}

// normalizePage acota page para que (page-1)*limit no desborde.
func normalizePage(page, limit int) (int, int) {
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

func pageOffset(page, limit int) int {
	return (page - 1) * limit
}

func newPage(page, limit, total int) Page {
	return Page{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}
