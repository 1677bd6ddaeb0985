package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, product_id, store_id, actor_id, type, quantity, reason, note,
	occurred_at, synced_at, idempotency_key, created_at`

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento. Una clave de idempotencia repetida se informa como conflicto.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	var actorID *string
	if !m.ActorID.IsZero() {
		s := m.ActorID.String()
		actorID = &s
	}
	var reason *string
	if m.Reason != nil {
		s := string(*m.Reason)
		reason = &s
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ItemID, m.LocationID, actorID, string(m.Kind), m.Quantity, reason, m.Note,
		m.OccurredAt, m.SyncedAt, m.IdempotencyKey, m.CreatedAt,
	)
	if err != nil {
		return wrapErr("create movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil, nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	if !validUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get movement", err)
	}
	return m, nil
}

// GetByIdempotencyKey obtiene el movimiento sincronizado con ese localId; nil, nil si no existe.
func (r *MovementRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE idempotency_key = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get movement by idempotency key", err)
	}
	return m, nil
}

// List lista movimientos filtrados, más reciente primero, con el total sin paginar.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.LocationID != "" {
		if !validUUID(f.LocationID) {
			return []*entity.Movement{}, 0, nil
		}
		add("store_id = $%d", f.LocationID)
	}
	if f.ItemID != "" {
		if !validUUID(f.ItemID) {
			return []*entity.Movement{}, 0, nil
		}
		add("product_id = $%d", f.ItemID)
	}
	if f.Kind != "" {
		add("type = $%d", string(f.Kind))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_movements`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count movements", err)
	}

	query := `SELECT ` + movementColumns + ` FROM inventory_movements` + where +
		` ORDER BY occurred_at DESC, created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapErr("list movements", err)
	}
	defer rows.Close()
	list := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// SumByPair suma las cantidades del ledger para un par producto/tienda.
func (r *MovementRepo) SumByPair(ctx context.Context, itemID, locationID string) (int64, error) {
	if !validUUID(itemID) || !validUUID(locationID) {
		return 0, nil
	}
	var sum int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::BIGINT FROM inventory_movements WHERE product_id = $1 AND store_id = $2`,
		itemID, locationID,
	).Scan(&sum)
	if err != nil {
		return 0, wrapErr("sum movements", err)
	}
	return sum, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var actorID, reason *string
	var kind string
	err := row.Scan(
		&m.ID, &m.ItemID, &m.LocationID, &actorID, &kind, &m.Quantity, &reason, &m.Note,
		&m.OccurredAt, &m.SyncedAt, &m.IdempotencyKey, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	if actorID != nil {
		m.ActorID = entity.ActorID(*actorID)
	}
	if reason != nil {
		r := entity.AdjustReason(*reason)
		m.Reason = &r
	}
	return &m, nil
}
