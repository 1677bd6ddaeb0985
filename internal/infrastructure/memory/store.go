// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORAGE_DRIVER=memory en desarrollo y como doble en los tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type pairKey struct {
	itemID     string
	locationID string
}

// Store guarda ledger, caché y catálogo en memoria. Las transacciones se serializan
// con un único mutex, lo que equivale a aislamiento serializable.
type Store struct {
	mu         sync.RWMutex
	movements  []*entity.Movement
	byID       map[string]*entity.Movement
	byKey      map[string]*entity.Movement
	stocks     map[pairKey]*entity.Stock
	products   map[string]*entity.Product
	stores     map[string]*entity.Store
	categories map[string]*entity.Category
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		byID:       make(map[string]*entity.Movement),
		byKey:      make(map[string]*entity.Movement),
		stocks:     make(map[pairKey]*entity.Stock),
		products:   make(map[string]*entity.Product),
		stores:     make(map[string]*entity.Store),
		categories: make(map[string]*entity.Category),
	}
}

// PutProduct registra o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

// PutStore registra o reemplaza una tienda.
func (s *Store) PutStore(st entity.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[st.ID] = &st
}

// PutCategory registra o reemplaza una categoría.
func (s *Store) PutCategory(c entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = &c
}

// Run ejecuta fn con repositorios transaccionales. Los cambios se aplican solo si fn
// no devuelve error y el ctx sigue vigente al momento del commit.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTx(s)
	if err := fn(&movementRepo{tx: tx}, &stockRepo{tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Movements repositorio del ledger fuera de transacción (cada llamada es atómica).
func (s *Store) Movements() repository.MovementRepository {
	return &movementRepo{tx: newTx(s), auto: true}
}

// Stocks repositorio de la caché fuera de transacción (cada llamada es atómica).
func (s *Store) Stocks() repository.StockRepository {
	return &stockRepo{tx: newTx(s), auto: true}
}

// Products repositorio del catálogo de productos.
func (s *Store) Products() repository.ProductAdminRepository { return productRepo{s: s} }

// Stores repositorio de tiendas.
func (s *Store) Stores() repository.StoreAdminRepository { return storeRepo{s: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() repository.CategoryRepository { return categoryRepo{s: s} }

// txState cambios pendientes de una transacción.
type txState struct {
	s         *Store
	movements []*entity.Movement
	stocks    map[pairKey]*entity.Stock
}

func newTx(s *Store) *txState {
	return &txState{s: s, stocks: make(map[pairKey]*entity.Stock)}
}

func (tx *txState) commit() {
	s := tx.s
	for _, m := range tx.movements {
		s.movements = append(s.movements, m)
		s.byID[m.ID] = m
		if m.IdempotencyKey != nil {
			s.byKey[*m.IdempotencyKey] = m
		}
	}
	for k, st := range tx.stocks {
		s.stocks[k] = st
	}
	tx.movements = nil
	tx.stocks = make(map[pairKey]*entity.Stock)
}

// allMovements movimientos confirmados más los pendientes de la transacción.
func (tx *txState) allMovements() []*entity.Movement {
	out := make([]*entity.Movement, 0, len(tx.s.movements)+len(tx.movements))
	out = append(out, tx.s.movements...)
	return append(out, tx.movements...)
}

func (tx *txState) stock(k pairKey) (*entity.Stock, bool) {
	if st, ok := tx.stocks[k]; ok {
		return st, true
	}
	st, ok := tx.s.stocks[k]
	return st, ok
}

// allStocks filas confirmadas con los cambios pendientes superpuestos, en orden estable.
func (tx *txState) allStocks() []*entity.Stock {
	merged := make(map[pairKey]*entity.Stock, len(tx.s.stocks)+len(tx.stocks))
	for k, st := range tx.s.stocks {
		merged[k] = st
	}
	for k, st := range tx.stocks {
		merged[k] = st
	}
	out := make([]*entity.Stock, 0, len(merged))
	for _, st := range merged {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].LocationID < out[j].LocationID
	})
	return out
}

// read ejecuta fn bajo el lock de lectura cuando el repositorio no está en una transacción.
func read(tx *txState, auto bool, fn func()) {
	if auto {
		tx.s.mu.RLock()
		defer tx.s.mu.RUnlock()
	}
	fn()
}

// write ejecuta fn y confirma de inmediato cuando el repositorio no está en una transacción.
func write(tx *txState, auto bool, fn func() error) error {
	if !auto {
		return fn()
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	if err := fn(); err != nil {
		tx.movements = nil
		tx.stocks = make(map[pairKey]*entity.Stock)
		return err
	}
	tx.commit()
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
