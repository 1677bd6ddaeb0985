package inventory

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const publishTimeout = 5 * time.Second

// Config parámetros del procesador de movimientos.
type Config struct {
	MaxRetries    int           // reintentos ante ErrConcurrencyConflict
	AlertCooldown time.Duration // tiempo mínimo entre notificaciones de alerta del mismo par; 0 = siempre
}

// DefaultConfig valores por defecto del procesador.
func DefaultConfig() Config {
	return Config{MaxRetries: 3}
}

// Processor valida y aplica movimientos de inventario (INBOUND, OUTBOUND, ADJUST).
// Cada movimiento lee y bloquea la fila de stock, valida, inserta en el ledger y actualiza
// la caché en una sola transacción (TxRunner).
type Processor struct {
	txRunner  TxRunner
	publisher AlertPublisher
	recorder  Recorder
	log       zerolog.Logger
	cfg       Config
	now       func() time.Time
	newID     func() string
}

// Option configura dependencias opcionales del Processor.
type Option func(*Processor)

// WithAlertPublisher publica las alertas de stock de seguridad.
func WithAlertPublisher(p AlertPublisher) Option {
	return func(pr *Processor) { pr.publisher = p }
}

// WithRecorder registra métricas de negocio.
func WithRecorder(r Recorder) Option {
	return func(pr *Processor) { pr.recorder = r }
}

// WithLogger asigna el logger estructurado.
func WithLogger(l zerolog.Logger) Option {
	return func(pr *Processor) { pr.log = l }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(pr *Processor) { pr.now = now }
}

// NewProcessor construye el procesador de movimientos.
func NewProcessor(txRunner TxRunner, cfg Config, opts ...Option) *Processor {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	p := &Processor{
		txRunner: txRunner,
		recorder: nopRecorder{},
		log:      zerolog.Nop(),
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SyncMeta metadatos de un movimiento que proviene de una reconciliación offline.
type SyncMeta struct {
	IdempotencyKey string
	OccurredAt     time.Time // hora del cliente; si es cero se usa la hora del servidor
	SyncedAt       time.Time
}

// Command movimiento a aplicar. Para INBOUND/OUTBOUND Quantity es la cantidad (> 0);
// para ADJUST es el delta con signo (!= 0) y Reason es obligatorio.
type Command struct {
	Kind            entity.MovementKind
	ItemID          string
	LocationID      string
	Quantity        int64
	Reason          *entity.AdjustReason
	Note            *string
	ActorID         entity.ActorID
	SafetyThreshold int64
	Sync            *SyncMeta
}

// Result resultado de aplicar un movimiento.
type Result struct {
	Movement     *entity.Movement
	NewQuantity  int64
	SafetyAlert  bool // la salida dejó el stock bajo el umbral
	AlertEmitted bool // además se notificó (respetando AlertCooldown)
	Duplicate    bool // la clave de idempotencia ya existía; no hubo cambios
}

// InboundInput entrada de ApplyInbound.
type InboundInput struct {
	ItemID          string
	LocationID      string
	Quantity        int64
	ActorID         entity.ActorID
	Note            *string
	SafetyThreshold int64
}

// OutboundInput entrada de ApplyOutbound.
type OutboundInput struct {
	ItemID          string
	LocationID      string
	Quantity        int64
	ActorID         entity.ActorID
	Note            *string
	SafetyThreshold int64
}

// AdjustInput entrada de ApplyAdjust. Delta puede ser positivo o negativo.
type AdjustInput struct {
	ItemID          string
	LocationID      string
	Delta           int64
	Reason          *entity.AdjustReason
	ActorID         entity.ActorID
	Note            *string
	SafetyThreshold int64
}

// ApplyInbound suma quantity al stock. Nunca genera alerta.
func (p *Processor) ApplyInbound(ctx context.Context, in InboundInput) (Result, error) {
	return p.Apply(ctx, Command{
		Kind:            entity.MovementInbound,
		ItemID:          in.ItemID,
		LocationID:      in.LocationID,
		Quantity:        in.Quantity,
		Note:            in.Note,
		ActorID:         in.ActorID,
		SafetyThreshold: in.SafetyThreshold,
	})
}

// ApplyOutbound resta quantity del stock; falla con InsufficientStockError si no alcanza.
func (p *Processor) ApplyOutbound(ctx context.Context, in OutboundInput) (Result, error) {
	return p.Apply(ctx, Command{
		Kind:            entity.MovementOutbound,
		ItemID:          in.ItemID,
		LocationID:      in.LocationID,
		Quantity:        in.Quantity,
		Note:            in.Note,
		ActorID:         in.ActorID,
		SafetyThreshold: in.SafetyThreshold,
	})
}

// ApplyAdjust aplica un delta con motivo; el stock nunca queda negativo.
func (p *Processor) ApplyAdjust(ctx context.Context, in AdjustInput) (Result, error) {
	return p.Apply(ctx, Command{
		Kind:            entity.MovementAdjust,
		ItemID:          in.ItemID,
		LocationID:      in.LocationID,
		Quantity:        in.Delta,
		Reason:          in.Reason,
		Note:            in.Note,
		ActorID:         in.ActorID,
		SafetyThreshold: in.SafetyThreshold,
	})
}

// Apply valida el comando y lo aplica en una transacción, reintentando ante conflictos de concurrencia.
func (p *Processor) Apply(ctx context.Context, cmd Command) (Result, error) {
	if err := validateCommand(cmd); err != nil {
		p.recorder.MovementRejected(cmd.Kind, "invalid_argument")
		return Result{}, err
	}
	if cmd.Kind != entity.MovementAdjust {
		cmd.Reason = nil
	}

	var (
		res Result
		err error
	)
	for attempt := 0; ; attempt++ {
		if err = ctx.Err(); err != nil {
			break
		}
		res, err = p.applyOnce(ctx, cmd)
		if !errors.Is(err, domain.ErrConcurrencyConflict) || attempt >= p.cfg.MaxRetries {
			break
		}
		p.recorder.ConflictRetried()
		p.log.Debug().
			Str("item_id", cmd.ItemID).
			Str("location_id", cmd.LocationID).
			Int("attempt", attempt+1).
			Msg("conflicto de concurrencia, reintentando movimiento")
	}
	if err != nil {
		p.recorder.MovementRejected(cmd.Kind, rejectReason(err))
		return Result{}, err
	}
	if res.Duplicate {
		return res, nil
	}

	p.recorder.MovementApplied(cmd.Kind)
	if res.SafetyAlert {
		p.recorder.SafetyAlert(res.AlertEmitted)
		if res.AlertEmitted {
			p.publishAlert(ctx, res, cmd.SafetyThreshold)
		}
	}
	return res, nil
}

func (p *Processor) applyOnce(ctx context.Context, cmd Command) (Result, error) {
	var res Result
	now := p.now()

	err := p.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error {
		// La verificación de idempotencia corre en la misma transacción que la inserción.
		if cmd.Sync != nil {
			existing, err := movRepo.GetByIdempotencyKey(ctx, cmd.Sync.IdempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				stock, err := stockRepo.Get(ctx, existing.ItemID, existing.LocationID)
				if err != nil {
					return err
				}
				res = Result{Movement: existing, NewQuantity: stock.Quantity, Duplicate: true}
				return nil
			}
		}

		// Bloquea la fila (la crea con cantidad 0 si es el primer movimiento del par).
		stock, err := stockRepo.GetForUpdate(ctx, cmd.ItemID, cmd.LocationID)
		if err != nil {
			return err
		}
		delta := signedQuantity(cmd)
		if delta > 0 && stock.Quantity > math.MaxInt64-delta {
			return domain.InvalidArgument("la cantidad resultante excede el máximo representable (actual %d, entrada %d)", stock.Quantity, delta)
		}
		if stock.Quantity+delta < 0 {
			return &domain.InsufficientStockError{Current: stock.Quantity, Requested: -delta}
		}

		mov := newMovement(p.newID(), cmd, delta, now)
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}

		stock.Quantity += delta
		stock.UpdatedAt = now
		alert := cmd.Kind == entity.MovementOutbound && inventory.IsSafetyAlert(stock.Quantity, cmd.SafetyThreshold)
		emitted := false
		if alert && p.alertDue(stock.LastAlertAt, now) {
			at := now
			stock.LastAlertAt = &at
			emitted = true
		}
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			return err
		}

		res = Result{
			Movement:     mov,
			NewQuantity:  stock.Quantity,
			SafetyAlert:  alert,
			AlertEmitted: emitted,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (p *Processor) alertDue(last *time.Time, now time.Time) bool {
	if last == nil || p.cfg.AlertCooldown <= 0 {
		return true
	}
	return now.Sub(*last) >= p.cfg.AlertCooldown
}

// publishAlert se ejecuta después del commit; un fallo se registra pero no revierte el movimiento.
func (p *Processor) publishAlert(ctx context.Context, res Result, threshold int64) {
	if p.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := SafetyAlertEvent{
		MovementID:      res.Movement.ID,
		ItemID:          res.Movement.ItemID,
		LocationID:      res.Movement.LocationID,
		Quantity:        res.NewQuantity,
		SafetyThreshold: threshold,
		OccurredAt:      res.Movement.OccurredAt,
	}
	if err := p.publisher.PublishSafetyAlert(pubCtx, event); err != nil {
		p.log.Error().Err(err).
			Str("item_id", event.ItemID).
			Str("location_id", event.LocationID).
			Msg("publicar alerta de stock de seguridad")
	}
}

func validateCommand(cmd Command) error {
	if cmd.ItemID == "" || cmd.LocationID == "" {
		return domain.InvalidArgument("itemId y locationId son obligatorios")
	}
	if cmd.SafetyThreshold < 0 {
		return domain.InvalidArgument("el umbral de seguridad no puede ser negativo")
	}
	if cmd.Sync != nil && cmd.Sync.IdempotencyKey == "" {
		return domain.InvalidArgument("localId es obligatorio para sincronizar")
	}
	switch cmd.Kind {
	case entity.MovementInbound, entity.MovementOutbound:
		if cmd.Quantity <= 0 {
			return domain.InvalidArgument("la cantidad debe ser mayor que cero")
		}
	case entity.MovementAdjust:
		if cmd.Quantity == 0 {
			return domain.InvalidArgument("el delta de un ajuste no puede ser cero")
		}
		if cmd.Quantity == math.MinInt64 {
			return domain.InvalidArgument("el delta de un ajuste está fuera de rango")
		}
		if cmd.Reason == nil || *cmd.Reason == "" {
			return domain.ErrAdjustReasonMissing
		}
		if !cmd.Reason.Valid() {
			return domain.InvalidArgument("motivo de ajuste desconocido: %s", *cmd.Reason)
		}
	default:
		return domain.InvalidArgument("tipo de movimiento desconocido: %s", cmd.Kind)
	}
	return nil
}

func signedQuantity(cmd Command) int64 {
	if cmd.Kind == entity.MovementOutbound {
		return -cmd.Quantity
	}
	return cmd.Quantity
}

func newMovement(id string, cmd Command, delta int64, now time.Time) *entity.Movement {
	mov := &entity.Movement{
		ID:         id,
		ItemID:     cmd.ItemID,
		LocationID: cmd.LocationID,
		ActorID:    cmd.ActorID,
		Kind:       cmd.Kind,
		Quantity:   delta,
		Note:       cmd.Note,
		OccurredAt: now,
		CreatedAt:  now,
	}
	if cmd.Reason != nil {
		reason := *cmd.Reason
		mov.Reason = &reason
	}
	if cmd.Sync != nil {
		key := cmd.Sync.IdempotencyKey
		mov.IdempotencyKey = &key
		if !cmd.Sync.OccurredAt.IsZero() {
			mov.OccurredAt = cmd.Sync.OccurredAt
		}
		syncedAt := cmd.Sync.SyncedAt
		if syncedAt.IsZero() {
			syncedAt = now
		}
		mov.SyncedAt = &syncedAt
	}
	return mov
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_argument"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
