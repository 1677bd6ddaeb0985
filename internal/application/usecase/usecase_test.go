package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

const categoryID = "770e8400-e29b-41d4-a716-446655440000"

// newProductUseCase arma el caso de uso con una categoría registrada.
func newProductUseCase() *usecase.ProductUseCase {
	store := memory.New()
	store.PutCategory(entity.Category{ID: categoryID, Code: "LAC", Name: "Lácteos"})
	return usecase.NewProductUseCase(store.Products(), store.Categories())
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductUseCase_CrearYObtener(t *testing.T) {
	ctx := context.Background()
	uc := newProductUseCase()

	created, err := uc.Create(ctx, dto.CreateProductRequest{SKU: " SKU-9 ", Name: "Arroz", SafetyStock: 4})
	require.NoError(t, err)
	assert.Equal(t, "SKU-9", created.SKU)
	assert.NotEmpty(t, created.ID)

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_SKUDuplicado(t *testing.T) {
	ctx := context.Background()
	uc := newProductUseCase()

	_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Uno"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Dos"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "SKU A")
}

func TestProductUseCase_ActualizarParcial(t *testing.T) {
	ctx := context.Background()
	uc := newProductUseCase()
	created, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Uno", SafetyStock: 5})
	require.NoError(t, err)

	safety := int64(12)
	updated, err := uc.Update(ctx, created.ID, dto.UpdateProductRequest{SafetyStock: &safety})
	require.NoError(t, err)
	assert.Equal(t, int64(12), updated.SafetyStock)
	assert.Equal(t, "Uno", updated.Name)

	blank := "  "
	_, err = uc.Update(ctx, created.ID, dto.UpdateProductRequest{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	negative := int64(-1)
	_, err = uc.Update(ctx, created.ID, dto.UpdateProductRequest{SafetyStock: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_ListaOrdenadaPorSKU(t *testing.T) {
	ctx := context.Background()
	uc := newProductUseCase()
	for _, sku := range []string{"C", "A", "B"} {
		_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: sku, Name: "P" + sku})
		require.NoError(t, err)
	}

	out, err := uc.List(ctx, dto.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "C", out.Items[0].SKU)
	assert.Equal(t, dto.PageResponse{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, out.Pagination)

	out, err = uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 20, out.Pagination.Limit)
	assert.Equal(t, "A", out.Items[0].SKU)
}

func TestProductUseCase_CategoriaDebeExistir(t *testing.T) {
	ctx := context.Background()
	uc := newProductUseCase()

	_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Uno", CategoryID: "990e8400-e29b-41d4-a716-446655440000"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "no existe")

	created, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Uno", CategoryID: categoryID})
	require.NoError(t, err)
	assert.Equal(t, categoryID, created.CategoryID)

	unknown := "990e8400-e29b-41d4-a716-446655440000"
	_, err = uc.Update(ctx, created.ID, dto.UpdateProductRequest{CategoryID: &unknown})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	none := ""
	updated, err := uc.Update(ctx, created.ID, dto.UpdateProductRequest{CategoryID: &none})
	require.NoError(t, err)
	assert.Empty(t, updated.CategoryID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestCategoryUseCase_CodigoUnicoYOrden(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewCategoryUseCase(memory.New().Categories())

	_, err := uc.Create(ctx, dto.CreateCategoryRequest{Code: "beb", Name: "Bebidas", SortOrder: 2})
	require.NoError(t, err)
	first, err := uc.Create(ctx, dto.CreateCategoryRequest{Code: "LAC", Name: "Lácteos", SortOrder: 1})
	require.NoError(t, err)

	_, err = uc.Create(ctx, dto.CreateCategoryRequest{Code: "BEB", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "BEB")

	_, err = uc.Create(ctx, dto.CreateCategoryRequest{Code: " ", Name: "Vacía"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, first.ID, out.Items[0].ID)
	assert.Equal(t, "BEB", out.Items[1].Code)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tiendas
// ──────────────────────────────────────────────────────────────────────────────

func TestStoreUseCase_CrearActualizar(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewStoreUseCase(memory.New().Stores())

	_, err := uc.Create(ctx, dto.CreateStoreRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	created, err := uc.Create(ctx, dto.CreateStoreRequest{Name: "Sur", Address: "Av. 3"})
	require.NoError(t, err)

	addr := "Av. 4"
	updated, err := uc.Update(ctx, created.ID, dto.UpdateStoreRequest{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, "Sur", updated.Name)
	assert.Equal(t, "Av. 4", updated.Address)

	_, err = uc.Update(ctx, "no-existe", dto.UpdateStoreRequest{Address: &addr})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
