package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad entre ledger y caché: si fn devuelve error o el ctx se cancela, nada queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// SafetyAlertEvent se publica cuando una salida deja el stock bajo el umbral de seguridad.
type SafetyAlertEvent struct {
	MovementID      string    `json:"movementId"`
	ItemID          string    `json:"itemId"`
	LocationID      string    `json:"locationId"`
	Quantity        int64     `json:"quantity"`
	SafetyThreshold int64     `json:"safetyThreshold"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// AlertPublisher notifica alertas de stock de seguridad a sistemas externos.
type AlertPublisher interface {
	PublishSafetyAlert(ctx context.Context, event SafetyAlertEvent) error
}

// Recorder recibe métricas de negocio del procesador.
type Recorder interface {
	MovementApplied(kind entity.MovementKind)
	MovementRejected(kind entity.MovementKind, reason string)
	ConflictRetried()
	SafetyAlert(emitted bool)
}

type nopRecorder struct{}

func (nopRecorder) MovementApplied(entity.MovementKind)          {}
func (nopRecorder) MovementRejected(entity.MovementKind, string) {}
func (nopRecorder) ConflictRetried()                             {}
func (nopRecorder) SafetyAlert(bool)                             {}
