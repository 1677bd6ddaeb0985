package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.MovementRepository     = (*movementRepo)(nil)
	_ repository.StockRepository        = (*stockRepo)(nil)
	_ repository.ProductAdminRepository = productRepo{}
	_ repository.StoreAdminRepository   = storeRepo{}
	_ repository.CategoryRepository     = categoryRepo{}
)

type movementRepo struct {
	tx   *txState
	auto bool
}

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return write(r.tx, r.auto, func() error {
		for _, existing := range r.tx.allMovements() {
			if existing.ID == m.ID {
				return domain.ErrConcurrencyConflict
			}
			if m.IdempotencyKey != nil && existing.IdempotencyKey != nil &&
				*existing.IdempotencyKey == *m.IdempotencyKey {
				return domain.ErrConcurrencyConflict
			}
		}
		cp := *m
		r.tx.movements = append(r.tx.movements, &cp)
		return nil
	})
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	var found *entity.Movement
	read(r.tx, r.auto, func() {
		for _, m := range r.tx.allMovements() {
			if m.ID == id {
				cp := *m
				found = &cp
				return
			}
		}
	})
	return found, nil
}

func (r *movementRepo) GetByIdempotencyKey(_ context.Context, key string) (*entity.Movement, error) {
	var found *entity.Movement
	read(r.tx, r.auto, func() {
		for _, m := range r.tx.allMovements() {
			if m.IdempotencyKey != nil && *m.IdempotencyKey == key {
				cp := *m
				found = &cp
				return
			}
		}
	})
	return found, nil
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	var matched []*entity.Movement
	read(r.tx, r.auto, func() {
		for _, m := range r.tx.allMovements() {
			if f.LocationID != "" && m.LocationID != f.LocationID {
				continue
			}
			if f.ItemID != "" && m.ItemID != f.ItemID {
				continue
			}
			if f.Kind != "" && m.Kind != f.Kind {
				continue
			}
			cp := *m
			matched = append(matched, &cp)
		}
	})
	// Más recientes primero, igual que el adaptador PostgreSQL.
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].OccurredAt.Equal(matched[j].OccurredAt) {
			return matched[i].OccurredAt.After(matched[j].OccurredAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *movementRepo) SumByPair(_ context.Context, itemID, locationID string) (int64, error) {
	var sum int64
	read(r.tx, r.auto, func() {
		for _, m := range r.tx.allMovements() {
			if m.ItemID == itemID && m.LocationID == locationID {
				sum += m.Quantity
			}
		}
	})
	return sum, nil
}

type stockRepo struct {
	tx   *txState
	auto bool
}

func (r *stockRepo) Get(_ context.Context, itemID, locationID string) (*entity.Stock, error) {
	var out *entity.Stock
	read(r.tx, r.auto, func() {
		if st, ok := r.tx.stock(pairKey{itemID, locationID}); ok {
			cp := *st
			out = &cp
			return
		}
		out = &entity.Stock{ItemID: itemID, LocationID: locationID}
	})
	return out, nil
}

func (r *stockRepo) GetForUpdate(_ context.Context, itemID, locationID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := write(r.tx, r.auto, func() error {
		k := pairKey{itemID, locationID}
		st, ok := r.tx.stock(k)
		if !ok {
			st = &entity.Stock{ItemID: itemID, LocationID: locationID}
			r.tx.stocks[k] = st
		}
		cp := *st
		out = &cp
		return nil
	})
	return out, err
}

func (r *stockRepo) Upsert(_ context.Context, st *entity.Stock) error {
	return write(r.tx, r.auto, func() error {
		cp := *st
		r.tx.stocks[pairKey{st.ItemID, st.LocationID}] = &cp
		return nil
	})
}

func (r *stockRepo) ListByItem(_ context.Context, itemID string) ([]repository.StockView, error) {
	var out []repository.StockView
	read(r.tx, r.auto, func() {
		for _, st := range r.tx.allStocks() {
			if st.ItemID == itemID {
				out = append(out, r.view(st))
			}
		}
	})
	return out, nil
}

func (r *stockRepo) List(_ context.Context, f repository.StockFilter) ([]repository.StockView, int, error) {
	var matched []repository.StockView
	read(r.tx, r.auto, func() {
		for _, st := range r.tx.allStocks() {
			if f.LocationID != "" && st.LocationID != f.LocationID {
				continue
			}
			v := r.view(st)
			if f.CategoryID != "" {
				p, ok := r.tx.s.products[st.ItemID]
				if !ok || p.CategoryID != f.CategoryID {
					continue
				}
			}
			if f.Status != "" && inventory.Classify(v.Quantity, v.SafetyStock) != f.Status {
				continue
			}
			matched = append(matched, v)
		}
	})
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *stockRepo) view(st *entity.Stock) repository.StockView {
	v := repository.StockView{Stock: *st}
	if p, ok := r.tx.s.products[st.ItemID]; ok {
		v.SKU = p.SKU
		v.ProductName = p.Name
		v.SafetyStock = p.SafetyStock
	}
	if s, ok := r.tx.s.stores[st.LocationID]; ok {
		v.StoreName = s.Name
	}
	return v
}

type productRepo struct{ s *Store }

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type storeRepo struct{ s *Store }

func (r storeRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stores[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, int, error) {
	r.s.mu.RLock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cp := *p
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return paginate(out, limit, offset), len(out), nil
}

func (r storeRepo) Create(_ context.Context, st *entity.Store) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stores[st.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *st
	r.s.stores[st.ID] = &cp
	return nil
}

func (r storeRepo) Update(_ context.Context, st *entity.Store) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stores[st.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *st
	r.s.stores[st.ID] = &cp
	return nil
}

func (r storeRepo) List(_ context.Context, limit, offset int) ([]*entity.Store, int, error) {
	r.s.mu.RLock()
	out := make([]*entity.Store, 0, len(r.s.stores))
	for _, st := range r.s.stores {
		cp := *st
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, limit, offset), len(out), nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.s.categories {
		if existing.Code == c.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r categoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.RLock()
	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		cp := *c
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}
