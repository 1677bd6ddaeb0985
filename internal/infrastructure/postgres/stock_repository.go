package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una tienda; cantidad 0 si la fila no existe.
func (r *StockRepo) Get(ctx context.Context, itemID, locationID string) (*entity.Stock, error) {
	if !validUUID(itemID) || !validUUID(locationID) {
		return &entity.Stock{ItemID: itemID, LocationID: locationID}, nil
	}
	query := `
		SELECT product_id, store_id, quantity, last_alert_at, updated_at
		FROM stock WHERE product_id = $1 AND store_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, itemID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ItemID: itemID, LocationID: locationID}, nil
		}
		return nil, wrapErr("get stock", err)
	}
	return s, nil
}

// GetForUpdate crea la fila si falta y la bloquea (SELECT ... FOR UPDATE) hasta el fin de la transacción.
// El INSERT ... ON CONFLICT DO NOTHING evita que dos primeras escrituras concurrentes creen filas distintas.
func (r *StockRepo) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.Stock, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, store_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, store_id) DO NOTHING`, itemID, locationID)
	if err != nil {
		return nil, wrapErr("init stock", err)
	}
	query := `
		SELECT product_id, store_id, quantity, last_alert_at, updated_at
		FROM stock WHERE product_id = $1 AND store_id = $2
		FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, itemID, locationID))
	if err != nil {
		return nil, wrapErr("get stock for update", err)
	}
	return s, nil
}

// Upsert inserta o actualiza cantidad y última alerta (por producto y tienda).
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, store_id, quantity, last_alert_at, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, store_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, last_alert_at = EXCLUDED.last_alert_at, updated_at = now()`
	_, err := r.q.Exec(ctx, query, stock.ItemID, stock.LocationID, stock.Quantity, stock.LastAlertAt)
	if err != nil {
		return wrapErr("upsert stock", err)
	}
	return nil
}

const stockViewSelect = `
	SELECT s.product_id, s.store_id, s.quantity, s.last_alert_at, s.updated_at,
		p.sku, p.name, st.name, p.safety_stock
	FROM stock s
	JOIN products p ON p.id = s.product_id
	JOIN stores st ON st.id = s.store_id`

// ListByItem devuelve el stock de un producto en todas las tiendas.
func (r *StockRepo) ListByItem(ctx context.Context, itemID string) ([]repository.StockView, error) {
	if !validUUID(itemID) {
		return []repository.StockView{}, nil
	}
	rows, err := r.q.Query(ctx, stockViewSelect+` WHERE s.product_id = $1 ORDER BY st.name`, itemID)
	if err != nil {
		return nil, wrapErr("list stock by item", err)
	}
	defer rows.Close()
	return scanStockViews(rows)
}

// List lista la caché de stock con filtros por tienda, categoría y estado, paginada.
// El estado se evalúa en SQL con las mismas bandas que inventory.Classify.
func (r *StockRepo) List(ctx context.Context, f repository.StockFilter) ([]repository.StockView, int, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.LocationID != "" {
		if !validUUID(f.LocationID) {
			return []repository.StockView{}, 0, nil
		}
		add("s.store_id = $%d", f.LocationID)
	}
	if f.CategoryID != "" {
		if !validUUID(f.CategoryID) {
			return []repository.StockView{}, 0, nil
		}
		add("p.category_id = $%d", f.CategoryID)
	}
	switch f.Status {
	case inventory.StatusLow:
		conds = append(conds, "s.quantity < p.safety_stock")
	case inventory.StatusNormal:
		conds = append(conds, "s.quantity >= p.safety_stock AND s.quantity < 2 * p.safety_stock")
	case inventory.StatusGood:
		conds = append(conds, "s.quantity >= 2 * p.safety_stock")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT count(*) FROM stock s JOIN products p ON p.id = s.product_id JOIN stores st ON st.id = s.store_id` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count stock", err)
	}

	query := stockViewSelect + where + ` ORDER BY st.name, p.name`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapErr("list stock", err)
	}
	defer rows.Close()
	list, err := scanStockViews(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	if err := row.Scan(&s.ItemID, &s.LocationID, &s.Quantity, &s.LastAlertAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanStockViews(rows pgx.Rows) ([]repository.StockView, error) {
	list := make([]repository.StockView, 0)
	for rows.Next() {
		var v repository.StockView
		if err := rows.Scan(
			&v.ItemID, &v.LocationID, &v.Quantity, &v.LastAlertAt, &v.UpdatedAt,
			&v.SKU, &v.ProductName, &v.StoreName, &v.SafetyStock,
		); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
