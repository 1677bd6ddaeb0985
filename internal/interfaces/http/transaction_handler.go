package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransactionHandler maneja los movimientos directos (entrada, salida, ajuste) y el historial.
type TransactionHandler struct {
	processor *inventory.Processor
	catalog   *inventory.Catalog
	query     *inventory.QueryUseCase
	log       zerolog.Logger
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(processor *inventory.Processor, catalog *inventory.Catalog, query *inventory.QueryUseCase, log zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{processor: processor, catalog: catalog, query: query, log: log}
}

// Inbound godoc
// @Summary      Registrar entrada de inventario
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "itemId, locationId, quantity (> 0), note"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/transactions/inbound [post]
func (h *TransactionHandler) Inbound(c *fiber.Ctx) error {
	return h.applyMovement(c, entity.MovementInbound)
}

// Outbound godoc
// @Summary      Registrar salida de inventario
// @Description  Rechaza con INSUFFICIENT_STOCK si la salida dejaría el stock negativo.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "itemId, locationId, quantity (> 0), note"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/transactions/outbound [post]
func (h *TransactionHandler) Outbound(c *fiber.Ctx) error {
	return h.applyMovement(c, entity.MovementOutbound)
}

func (h *TransactionHandler) applyMovement(c *fiber.Ctx, kind entity.MovementKind) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := dto.Validate(in); err != nil {
		return badRequest(c, "INVALID_ARGUMENT", err.Error())
	}
	return h.apply(c, inventory.Command{
		Kind:       kind,
		ItemID:     in.ItemID,
		LocationID: in.LocationID,
		Quantity:   in.Quantity,
		Note:       in.Note,
	})
}

// Adjust godoc
// @Summary      Registrar ajuste de inventario
// @Description  delta con signo (≠ 0) y motivo obligatorio: EXPIRED, DAMAGED, CORRECTION u OTHER.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "itemId, locationId, delta, reason, note"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/transactions/adjust [post]
func (h *TransactionHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := dto.Validate(in); err != nil {
		return badRequest(c, "INVALID_ARGUMENT", err.Error())
	}
	cmd := inventory.Command{
		Kind:       entity.MovementAdjust,
		ItemID:     in.ItemID,
		LocationID: in.LocationID,
		Quantity:   in.Delta,
		Note:       in.Note,
	}
	if in.Reason != "" {
		r := entity.AdjustReason(in.Reason)
		cmd.Reason = &r
	}
	return h.apply(c, cmd)
}

func (h *TransactionHandler) apply(c *fiber.Ctx, cmd inventory.Command) error {
	ctx := c.UserContext()
	threshold, err := h.safetyThreshold(ctx, cmd)
	if err != nil {
		return writeError(c, h.log, err)
	}
	cmd.SafetyThreshold = threshold
	cmd.ActorID = GetActorID(c)

	res, err := h.processor.Apply(ctx, cmd)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResponse{
		MovementID:  res.Movement.ID,
		NewQuantity: res.NewQuantity,
		SafetyAlert: res.SafetyAlert,
	})
}

func (h *TransactionHandler) safetyThreshold(ctx context.Context, cmd inventory.Command) (int64, error) {
	product, err := h.catalog.Resolve(ctx, cmd.ItemID, cmd.LocationID)
	if err != nil {
		return 0, err
	}
	return product.SafetyStock, nil
}

// List godoc
// @Summary      Historial de movimientos (ledger)
// @Tags         transactions
// @Produce      json
// @Param        storeId    query  string  false  "Tienda (UUID)"
// @Param        productId  query  string  false  "Producto (UUID)"
// @Param        kind       query  string  false  "INBOUND | OUTBOUND | ADJUST"
// @Param        page       query  int     false  "Página (desde 1)"
// @Param        limit      query  int     false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if err := dto.Validate(q); err != nil {
		return badRequest(c, "INVALID_ARGUMENT", err.Error())
	}
	list, page, err := h.query.ListMovements(c.UserContext(), inventory.MovementQuery{
		StoreID:   q.StoreID,
		ProductID: q.ProductID,
		Kind:      q.Kind,
		Page:      q.Page,
		Limit:     q.Limit,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.MovementDTO, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementDTO(m))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Pagination: toPageResponse(page)})
}

func toMovementDTO(m *entity.Movement) dto.MovementDTO {
	out := dto.MovementDTO{
		ID:         m.ID,
		Kind:       string(m.Kind),
		ItemID:     m.ItemID,
		LocationID: m.LocationID,
		ActorID:    m.ActorID.String(),
		Quantity:   m.Quantity,
		Note:       m.Note,
		OccurredAt: m.OccurredAt,
		SyncedAt:   m.SyncedAt,
		CreatedAt:  m.CreatedAt,
	}
	if m.Reason != nil {
		r := string(*m.Reason)
		out.Reason = &r
	}
	return out
}

func toPageResponse(p inventory.Page) dto.PageResponse {
	return dto.PageResponse{Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages}
}
