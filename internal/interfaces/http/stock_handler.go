package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// StockHandler consultas sobre la caché de stock.
type StockHandler struct {
	query *inventory.QueryUseCase
	log   zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(query *inventory.QueryUseCase, log zerolog.Logger) *StockHandler {
	return &StockHandler{query: query, log: log}
}

// List godoc
// @Summary      Stock actual por tienda
// @Tags         inventory
// @Produce      json
// @Param        storeId     query  string  false  "Tienda (UUID)"
// @Param        categoryId  query  string  false  "Categoría (UUID)"
// @Param        status      query  string  false  "LOW | NORMAL | GOOD"
// @Param        page        query  int     false  "Página (desde 1)"
// @Param        limit       query  int     false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.StockListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stocks [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	var q dto.StockListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if err := dto.Validate(q); err != nil {
		return badRequest(c, "INVALID_ARGUMENT", err.Error())
	}
	rows, page, err := h.query.ListStocks(c.UserContext(), inventory.StockQuery{
		StoreID:    q.StoreID,
		CategoryID: q.CategoryID,
		Status:     q.Status,
		Page:       q.Page,
		Limit:      q.Limit,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.StockDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, toStockDTO(r))
	}
	return c.JSON(dto.StockListResponse{Items: items, Pagination: toPageResponse(page)})
}

// GetByProduct godoc
// @Summary      Stock de un producto en todas las tiendas
// @Tags         inventory
// @Produce      json
// @Param        productId  path  string  true  "Producto (UUID)"
// @Success      200  {object}  dto.ProductStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stocks/{productId} [get]
func (h *StockHandler) GetByProduct(c *fiber.Ctx) error {
	productID := c.Params("productId")
	if _, err := uuid.Parse(productID); err != nil {
		return badRequest(c, "INVALID_ARGUMENT", "productId debe ser un UUID")
	}
	product, rows, err := h.query.GetProductStock(c.UserContext(), productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.ProductStockResponse{
		ProductID:   product.ID,
		SKU:         product.SKU,
		Name:        product.Name,
		SafetyStock: product.SafetyStock,
		Stores:      make([]dto.StockDTO, 0, len(rows)),
	}
	for _, r := range rows {
		out.TotalQuantity += r.Quantity
		out.Stores = append(out.Stores, toStockDTO(r))
	}
	return c.JSON(out)
}

// Consistency godoc
// @Summary      Auditoría caché vs ledger
// @Description  Compara la cantidad en caché con la suma del ledger para un par producto/tienda.
// @Tags         inventory
// @Produce      json
// @Param        itemId      query  string  true  "Producto (UUID)"
// @Param        locationId  query  string  true  "Tienda (UUID)"
// @Success      200  {object}  dto.ConsistencyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/consistency [get]
func (h *StockHandler) Consistency(c *fiber.Ctx) error {
	rep, err := h.query.VerifyConsistency(c.UserContext(), c.Query("itemId"), c.Query("locationId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !rep.Consistent {
		h.log.Error().
			Str("item_id", rep.ItemID).
			Str("location_id", rep.LocationID).
			Int64("cached", rep.Cached).
			Int64("ledger_sum", rep.LedgerSum).
			Msg("caché de stock inconsistente con el ledger")
	}
	return c.JSON(dto.ConsistencyResponse{
		ItemID:     rep.ItemID,
		LocationID: rep.LocationID,
		Cached:     rep.Cached,
		LedgerSum:  rep.LedgerSum,
		Consistent: rep.Consistent,
	})
}

func toStockDTO(r inventory.StockItem) dto.StockDTO {
	return dto.StockDTO{
		ItemID:      r.ItemID,
		SKU:         r.SKU,
		ProductName: r.ProductName,
		LocationID:  r.LocationID,
		StoreName:   r.StoreName,
		Quantity:    r.Quantity,
		SafetyStock: r.SafetyStock,
		Status:      string(r.Status),
		UpdatedAt:   r.UpdatedAt,
	}
}
