package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StoreAdminRepository = (*StoreRepo)(nil)

// StoreRepo tiendas.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

// Create inserta una tienda.
func (r *StoreRepo) Create(ctx context.Context, s *entity.Store) error {
	query := `INSERT INTO stores (id, name, address, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Address, s.CreatedAt, s.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create store: %w", err)
	}
	return nil
}

// Update actualiza nombre y dirección.
func (r *StoreRepo) Update(ctx context.Context, s *entity.Store) error {
	if !validUUID(s.ID) {
		return domain.ErrNotFound
	}
	query := `UPDATE stores SET name = $2, address = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Address, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una tienda por ID; nil, nil si no existe.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	if !validUUID(id) {
		return nil, nil
	}
	query := `SELECT id, name, address, created_at, updated_at FROM stores WHERE id = $1`
	var s entity.Store
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

// List lista tiendas ordenadas por nombre.
func (r *StoreRepo) List(ctx context.Context, limit, offset int) ([]*entity.Store, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stores`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stores: %w", err)
	}
	query := `
		SELECT id, name, address, created_at, updated_at
		FROM stores ORDER BY name, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var list []*entity.Store
	for rows.Next() {
		var s entity.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, &s)
	}
	return list, total, rows.Err()
}
