// Package reconcile aplica lotes de movimientos generados offline por los clientes,
// exactamente una vez cada uno gracias a la clave de idempotencia (localId).
package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// DefaultMaxBatchSize tamaño máximo de lote si no se configura otro.
const DefaultMaxBatchSize = 500

// Applier aplica un movimiento (implementado por inventory.Processor).
type Applier interface {
	Apply(ctx context.Context, cmd inventory.Command) (inventory.Result, error)
}

// CatalogResolver valida producto/tienda y devuelve el producto (implementado por inventory.Catalog).
type CatalogResolver interface {
	Resolve(ctx context.Context, itemID, locationID string) (*entity.Product, error)
}

// Outcome resultado de un ítem del lote, para métricas.
type Outcome string

const (
	OutcomeSynced    Outcome = "synced"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// Recorder recibe métricas por ítem reconciliado.
type Recorder interface {
	SyncItem(outcome Outcome)
}

// ClientMovement movimiento registrado por un cliente mientras estaba offline.
type ClientMovement struct {
	LocalID    string
	Kind       entity.MovementKind
	ItemID     string
	LocationID string
	Quantity   int64 // cantidad (> 0) para INBOUND/OUTBOUND; delta con signo para ADJUST
	Reason     *entity.AdjustReason
	Note       *string
	OccurredAt time.Time
}

// SyncedItem ítem aplicado (o ya aplicado antes) con su ID de servidor.
type SyncedItem struct {
	LocalID  string
	ServerID string
}

// FailedItem ítem rechazado con un mensaje legible.
type FailedItem struct {
	LocalID string
	Error   string
}

// Result resultado de un lote. El orden de Synced y Failed respeta el orden de envío.
type Result struct {
	Synced   []SyncedItem
	Failed   []FailedItem
	SyncedAt time.Time
}

// Config parámetros del reconciliador.
type Config struct {
	MaxBatchSize int
}

// Reconciler reconcilia lotes offline contra el ledger.
type Reconciler struct {
	applier  Applier
	catalog  CatalogResolver
	movRepo  repository.MovementRepository
	recorder Recorder
	log      zerolog.Logger
	cfg      Config
	now      func() time.Time
}

// Option configura dependencias opcionales del Reconciler.
type Option func(*Reconciler)

// WithRecorder registra métricas por ítem.
func WithRecorder(r Recorder) Option { return func(rc *Reconciler) { rc.recorder = r } }

// WithLogger asigna el logger estructurado.
func WithLogger(l zerolog.Logger) Option { return func(rc *Reconciler) { rc.log = l } }

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option { return func(rc *Reconciler) { rc.now = now } }

// NewReconciler construye el reconciliador. movRepo se usa solo para la verificación rápida de duplicados;
// la verificación definitiva ocurre dentro de la transacción del procesador.
func NewReconciler(applier Applier, catalog CatalogResolver, movRepo repository.MovementRepository, cfg Config, opts ...Option) *Reconciler {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	rc := &Reconciler{
		applier: applier,
		catalog: catalog,
		movRepo: movRepo,
		log:     zerolog.Nop(),
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Reconcile aplica el lote en orden, un ítem por transacción. El fallo de un ítem nunca
// aborta ni revierte los demás; solo un lote vacío o demasiado grande es un error del lote.
// Si el ctx se cancela a mitad del lote, los ítems restantes se informan como fallidos.
func (r *Reconciler) Reconcile(ctx context.Context, batch []ClientMovement, actor entity.ActorID) (Result, error) {
	if len(batch) == 0 {
		return Result{}, domain.InvalidArgument("el lote no contiene movimientos")
	}
	if len(batch) > r.cfg.MaxBatchSize {
		return Result{}, domain.InvalidArgument("el lote supera el máximo de %d movimientos", r.cfg.MaxBatchSize)
	}

	requestID := logger.RequestID(ctx)
	syncedAt := r.now()
	res := Result{
		Synced:   make([]SyncedItem, 0, len(batch)),
		Failed:   make([]FailedItem, 0),
		SyncedAt: syncedAt,
	}
	for _, item := range batch {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, FailedItem{LocalID: item.LocalID, Error: err.Error()})
			r.record(OutcomeFailed)
			continue
		}
		serverID, duplicate, err := r.reconcileOne(ctx, item, actor, syncedAt)
		if err != nil {
			r.log.Warn().Err(err).
				Str("request_id", requestID).
				Str("local_id", item.LocalID).
				Str("item_id", item.ItemID).
				Str("location_id", item.LocationID).
				Msg("movimiento offline rechazado")
			res.Failed = append(res.Failed, FailedItem{LocalID: item.LocalID, Error: err.Error()})
			r.record(OutcomeFailed)
			continue
		}
		res.Synced = append(res.Synced, SyncedItem{LocalID: item.LocalID, ServerID: serverID})
		if duplicate {
			r.record(OutcomeDuplicate)
		} else {
			r.record(OutcomeSynced)
		}
	}

	r.log.Info().
		Str("request_id", requestID).
		Str("actor_id", actor.String()).
		Int("synced", len(res.Synced)).
		Int("failed", len(res.Failed)).
		Msg("lote offline reconciliado")
	return res, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, item ClientMovement, actor entity.ActorID, syncedAt time.Time) (string, bool, error) {
	if item.LocalID == "" {
		return "", false, domain.InvalidArgument("localId es obligatorio")
	}
	// Un reintento de un ítem ya aplicado responde igual aunque el catálogo haya cambiado.
	existing, err := r.movRepo.GetByIdempotencyKey(ctx, item.LocalID)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		return existing.ID, true, nil
	}

	product, err := r.catalog.Resolve(ctx, item.ItemID, item.LocationID)
	if err != nil {
		return "", false, err
	}
	out, err := r.applier.Apply(ctx, inventory.Command{
		Kind:            item.Kind,
		ItemID:          item.ItemID,
		LocationID:      item.LocationID,
		Quantity:        item.Quantity,
		Reason:          item.Reason,
		Note:            item.Note,
		ActorID:         actor,
		SafetyThreshold: product.SafetyStock,
		Sync: &inventory.SyncMeta{
			IdempotencyKey: item.LocalID,
			OccurredAt:     item.OccurredAt,
			SyncedAt:       syncedAt,
		},
	})
	if err != nil {
		return "", false, err
	}
	return out.Movement.ID, out.Duplicate, nil
}

func (r *Reconciler) record(o Outcome) {
	if r.recorder != nil {
		r.recorder.SyncItem(o)
	}
}
