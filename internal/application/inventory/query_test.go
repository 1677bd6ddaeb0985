package inventory_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_PaginaEnorme(t *testing.T) {
	p, store := newProcessor(t)
	seed(t, p, 5)
	uc := inventory.NewQueryUseCase(store.Stocks(), store.Movements(), store.Products())

	for _, page := range []int{math.MaxInt64 / 5, math.MaxInt64, math.MaxInt32} {
		list, meta, err := uc.ListMovements(context.Background(), inventory.MovementQuery{Page: page, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Equal(t, 1, meta.Total)
		assert.Positive(t, meta.Page)
	}
}

func TestListStocks_PaginaEnorme(t *testing.T) {
	p, store := newProcessor(t)
	seed(t, p, 5)
	uc := inventory.NewQueryUseCase(store.Stocks(), store.Movements(), store.Products())

	rows, meta, err := uc.ListStocks(context.Background(), inventory.StockQuery{Page: math.MaxInt64 / 3, Limit: 7})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1, meta.Total)
}

func TestListMovements_PaginaPorDefecto(t *testing.T) {
	p, store := newProcessor(t)
	seed(t, p, 5)
	seed(t, p, 2)
	uc := inventory.NewQueryUseCase(store.Stocks(), store.Movements(), store.Products())

	list, meta, err := uc.ListMovements(context.Background(), inventory.MovementQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, inventory.Page{Page: 1, Limit: 10, Total: 2, TotalPages: 1}, meta)

	_, _, err = uc.ListMovements(context.Background(), inventory.MovementQuery{Kind: "TRANSFER"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
