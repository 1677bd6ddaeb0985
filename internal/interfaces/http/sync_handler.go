package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/reconcile"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SyncHandler recibe lotes de movimientos registrados offline.
type SyncHandler struct {
	reconciler *reconcile.Reconciler
	log        zerolog.Logger
}

// NewSyncHandler construye el handler.
func NewSyncHandler(reconciler *reconcile.Reconciler, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{reconciler: reconciler, log: log}
}

// Sync godoc
// @Summary      Sincronizar movimientos offline
// @Description  Aplica el lote en orden, exactamente una vez por localId. Responde 200 aunque fallen ítems;
// @Description  el resultado de cada ítem viene en synced o failed.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SyncRequest  true  "movements[]: localId, kind, itemId, locationId, quantity, reason, note, occurredAt"
// @Success      200   {object}  dto.SyncResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sync/transactions [post]
func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	var in dto.SyncRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := dto.Validate(in); err != nil {
		return badRequest(c, "INVALID_ARGUMENT", err.Error())
	}

	batch := make([]reconcile.ClientMovement, 0, len(in.Movements))
	for _, m := range in.Movements {
		cm := reconcile.ClientMovement{
			LocalID:    m.LocalID,
			Kind:       entity.MovementKind(m.Kind),
			ItemID:     m.ItemID,
			LocationID: m.LocationID,
			Quantity:   m.Quantity,
			Note:       m.Note,
			OccurredAt: m.OccurredAt,
		}
		if m.Reason != nil {
			r := entity.AdjustReason(*m.Reason)
			cm.Reason = &r
		}
		batch = append(batch, cm)
	}

	res, err := h.reconciler.Reconcile(c.UserContext(), batch, GetActorID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}

	out := dto.SyncResponse{
		Synced:   make([]dto.SyncedItemDTO, 0, len(res.Synced)),
		Failed:   make([]dto.FailedItemDTO, 0, len(res.Failed)),
		SyncedAt: res.SyncedAt,
	}
	for _, s := range res.Synced {
		out.Synced = append(out.Synced, dto.SyncedItemDTO{LocalID: s.LocalID, ServerID: s.ServerID})
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, dto.FailedItemDTO{LocalID: f.LocalID, Error: f.Error})
	}
	return c.JSON(out)
}
