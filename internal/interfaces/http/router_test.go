package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/reconcile"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret  = "test-secret-key-for-unit-tests"
	testActorID    = "00000000-0000-0000-0000-000000000001"
	testItemID     = "550e8400-e29b-41d4-a716-446655440000"
	testStoreID    = "660e8400-e29b-41d4-a716-446655440000"
	testCategoryID = "770e8400-e29b-41d4-a716-446655440000"
	unknownID      = "990e8400-e29b-41d4-a716-446655440000"
)

// buildTestApp arma la API completa sobre el almacén en memoria.
// Producto con stock de seguridad 10 y una tienda.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return buildTestAppWithLogger(t, zerolog.Nop())
}

func buildTestAppWithLogger(t *testing.T, log zerolog.Logger) *fiber.App {
	t.Helper()
	store := memory.New()
	store.PutProduct(entity.Product{ID: testItemID, SKU: "SKU-1", Name: "Leche", SafetyStock: 10})
	store.PutStore(entity.Store{ID: testStoreID, Name: "Centro"})
	store.PutCategory(entity.Category{ID: testCategoryID, Code: "LAC", Name: "Lácteos", SortOrder: 5})

	proc := inventory.NewProcessor(store, inventory.DefaultConfig())
	catalog := inventory.NewCatalog(store.Products(), store.Stores())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Processor:  proc,
		Catalog:    catalog,
		Query:      inventory.NewQueryUseCase(store.Stocks(), store.Movements(), store.Products()),
		Reconciler: reconcile.NewReconciler(proc, catalog, store.Movements(), reconcile.Config{MaxBatchSize: 5}),
		Products:   usecase.NewProductUseCase(store.Products(), store.Categories()),
		Categories: usecase.NewCategoryUseCase(store.Categories()),
		Stores:     usecase.NewStoreUseCase(store.Stores()),
		Metrics:    metrics.New(),
		JWTSecret:  testJWTSecret,
		Logger:     log,
	})
	return app
}

func bearer(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testActorID, testStoreID, "stock-ledger-test", time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

// call lanza la petición y decodifica el cuerpo JSON (objeto) si lo hay.
func call(t *testing.T, app *fiber.App, method, path string, body any, auth string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func movementBody(qty int64) map[string]any {
	return map[string]any{"itemId": testItemID, "locationId": testStoreID, "quantity": qty}
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos directos
// ──────────────────────────────────────────────────────────────────────────────

func TestTransactions_EntradaYSalidaConAlerta(t *testing.T) {
	app := buildTestApp(t)

	status, body := call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(12), "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.EqualValues(t, 12, body["newQuantity"])
	assert.Equal(t, false, body["safetyAlert"])
	assert.NotEmpty(t, body["movementId"])

	status, body = call(t, app, http.MethodPost, "/api/transactions/outbound", movementBody(5), "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.EqualValues(t, 7, body["newQuantity"])
	assert.Equal(t, true, body["safetyAlert"])
}

func TestTransactions_StockInsuficienteDevuelveDetalle(t *testing.T) {
	app := buildTestApp(t)
	call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(7), "")

	status, body := call(t, app, http.MethodPost, "/api/transactions/outbound", movementBody(100), "")
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 7, details["current"])
	assert.EqualValues(t, 100, details["requested"])
}

func TestTransactions_ErroresDeEntrada(t *testing.T) {
	app := buildTestApp(t)

	status, body := call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(0), "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", body["code"])

	status, body = call(t, app, http.MethodPost, "/api/transactions/inbound",
		map[string]any{"itemId": "abc", "locationId": testStoreID, "quantity": 1}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["message"], "itemId")

	status, body = call(t, app, http.MethodPost, "/api/transactions/adjust",
		map[string]any{"itemId": testItemID, "locationId": testStoreID, "delta": -1}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["message"], "motivo")

	status, body = call(t, app, http.MethodPost, "/api/transactions/inbound",
		map[string]any{"itemId": unknownID, "locationId": testStoreID, "quantity": 1}, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestTransactions_AjusteConMotivo(t *testing.T) {
	app := buildTestApp(t)
	call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(20), "")

	status, body := call(t, app, http.MethodPost, "/api/transactions/adjust", map[string]any{
		"itemId": testItemID, "locationId": testStoreID, "delta": -5, "reason": "EXPIRED",
	}, "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.EqualValues(t, 15, body["newQuantity"])
	assert.Equal(t, false, body["safetyAlert"], "los ajustes no alertan")
}

// ──────────────────────────────────────────────────────────────────────────────
// Identidad
// ──────────────────────────────────────────────────────────────────────────────

func TestIdentity_TokenValidoRegistraActor(t *testing.T) {
	app := buildTestApp(t)

	status, _ := call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(3), bearer(t))
	require.Equal(t, fiber.StatusCreated, status)

	status, body := call(t, app, http.MethodGet, "/api/transactions", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, testActorID, items[0].(map[string]any)["actorId"])
}

func TestIdentity_TokenInvalidoEs401(t *testing.T) {
	app := buildTestApp(t)

	status, body := call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(3), "Bearer no-es-un-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])

	status, _ = call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(3), "Token abc")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sincronización offline
// ──────────────────────────────────────────────────────────────────────────────

func TestSync_LoteParcialEsIdempotente(t *testing.T) {
	app := buildTestApp(t)
	call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(50), "")

	occurred := time.Date(2026, 1, 24, 8, 0, 0, 0, time.UTC).Format(time.RFC3339)
	batch := map[string]any{"movements": []map[string]any{
		{"localId": "l-1", "kind": "INBOUND", "itemId": testItemID, "locationId": testStoreID, "quantity": 10, "occurredAt": occurred},
		{"localId": "l-2", "kind": "OUTBOUND", "itemId": testItemID, "locationId": testStoreID, "quantity": 200, "occurredAt": occurred},
	}}

	status, first := call(t, app, http.MethodPost, "/api/sync/transactions", batch, bearer(t))
	require.Equal(t, fiber.StatusOK, status)
	synced := first["synced"].([]any)
	failed := first["failed"].([]any)
	require.Len(t, synced, 1)
	require.Len(t, failed, 1)
	assert.Equal(t, "l-2", failed[0].(map[string]any)["localId"])
	assert.Contains(t, failed[0].(map[string]any)["error"], "stock insuficiente")
	assert.NotEmpty(t, first["syncedAt"])

	status, second := call(t, app, http.MethodPost, "/api/sync/transactions", batch, bearer(t))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, synced, second["synced"])

	_, stock := call(t, app, http.MethodGet, "/api/inventory/stocks/"+testItemID, nil, "")
	assert.EqualValues(t, 60, stock["totalQuantity"])
}

func TestSync_LoteMalFormado(t *testing.T) {
	app := buildTestApp(t)

	status, _ := call(t, app, http.MethodPost, "/api/sync/transactions", map[string]any{"movements": []any{}}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	big := make([]map[string]any, 6)
	for i := range big {
		big[i] = map[string]any{"localId": "x", "kind": "INBOUND", "itemId": testItemID, "locationId": testStoreID, "quantity": 1}
	}
	status, body := call(t, app, http.MethodPost, "/api/sync/transactions", map[string]any{"movements": big}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestStocks_FiltroPorEstado(t *testing.T) {
	app := buildTestApp(t)
	call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(8), "")

	status, body := call(t, app, http.MethodGet, "/api/inventory/stocks?status=low&storeId="+testStoreID, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "LOW", items[0].(map[string]any)["status"])
	assert.Equal(t, "Centro", items[0].(map[string]any)["storeName"])

	_, body = call(t, app, http.MethodGet, "/api/inventory/stocks?status=GOOD", nil, "")
	assert.Empty(t, body["items"])

	status, _ = call(t, app, http.MethodGet, "/api/inventory/stocks?status=MUCHO", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestStocks_ProductoDesconocido(t *testing.T) {
	app := buildTestApp(t)

	status, _ := call(t, app, http.MethodGet, "/api/inventory/stocks/"+unknownID, nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = call(t, app, http.MethodGet, "/api/inventory/stocks/abc", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestListados_PaginaEnormeNoFalla(t *testing.T) {
	app := buildTestApp(t)
	call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(3), "")

	for _, path := range []string{
		"/api/transactions?page=9223372036854775807",
		"/api/inventory/stocks?page=1844674407370955161&limit=10",
		"/api/products?page=9223372036854775807",
	} {
		status, body := call(t, app, http.MethodGet, path, nil, "")
		require.Equal(t, fiber.StatusOK, status, path)
		assert.Empty(t, body["items"], path)
	}
}

func TestConsistency_CacheCoincideConLedger(t *testing.T) {
	app := buildTestApp(t)
	call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(9), "")
	call(t, app, http.MethodPost, "/api/transactions/outbound", movementBody(4), "")

	status, body := call(t, app, http.MethodGet,
		"/api/inventory/consistency?itemId="+testItemID+"&locationId="+testStoreID, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 5, body["cached"])
	assert.EqualValues(t, 5, body["ledgerSum"])
	assert.Equal(t, true, body["consistent"])

	status, _ = call(t, app, http.MethodGet, "/api/inventory/consistency", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTransactions_ListaFiltradaPorTipo(t *testing.T) {
	app := buildTestApp(t)
	call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(9), "")
	call(t, app, http.MethodPost, "/api/transactions/outbound", movementBody(4), "")

	status, body := call(t, app, http.MethodGet, "/api/transactions?kind=OUTBOUND", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["total"])
	item := body["items"].([]any)[0].(map[string]any)
	assert.EqualValues(t, -4, item["quantity"])

	status, _ = call(t, app, http.MethodGet, "/api/transactions?kind=TRANSFER", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestCatalog_RegistroHabilitaMovimientos(t *testing.T) {
	app := buildTestApp(t)

	status, store := call(t, app, http.MethodPost, "/api/stores", map[string]any{"name": "Norte", "address": "Calle 1"}, "")
	require.Equal(t, fiber.StatusCreated, status)
	storeID := store["id"].(string)

	status, product := call(t, app, http.MethodPost, "/api/products",
		map[string]any{"sku": "SKU-2", "name": "Pan", "safetyStock": 3}, "")
	require.Equal(t, fiber.StatusCreated, status)
	productID := product["id"].(string)
	assert.EqualValues(t, 3, product["safetyStock"])

	status, body := call(t, app, http.MethodPost, "/api/transactions/inbound",
		map[string]any{"itemId": productID, "locationId": storeID, "quantity": 2}, "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.EqualValues(t, 2, body["newQuantity"])

	status, body = call(t, app, http.MethodGet, "/api/stores/"+storeID, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Norte", body["name"])
}

func TestCatalog_SKUDuplicadoEs409(t *testing.T) {
	app := buildTestApp(t)

	status, body := call(t, app, http.MethodPost, "/api/products", map[string]any{"sku": "SKU-1", "name": "Otra leche"}, "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])

	status, body = call(t, app, http.MethodPost, "/api/products", map[string]any{"name": "Sin SKU"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["message"], "sku")
}

func TestCatalog_ActualizarStockDeSeguridad(t *testing.T) {
	app := buildTestApp(t)
	call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(8), "")

	status, body := call(t, app, http.MethodPatch, "/api/products/"+testItemID, map[string]any{"safetyStock": 2}, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, body["safetyStock"])
	assert.Equal(t, "Leche", body["name"])

	_, body = call(t, app, http.MethodGet, "/api/inventory/stocks?storeId="+testStoreID, nil, "")
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "GOOD", items[0].(map[string]any)["status"])

	status, _ = call(t, app, http.MethodPatch, "/api/products/"+unknownID, map[string]any{"safetyStock": 2}, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPatch, "/api/products/"+testItemID, map[string]any{"safetyStock": -1}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCatalog_ListasPaginadas(t *testing.T) {
	app := buildTestApp(t)
	call(t, app, http.MethodPost, "/api/stores", map[string]any{"name": "Norte"}, "")

	status, body := call(t, app, http.MethodGet, "/api/stores?limit=1", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["total"])
	assert.EqualValues(t, 2, pagination["totalPages"])
	assert.Equal(t, "Centro", body["items"].([]any)[0].(map[string]any)["name"])

	status, body = call(t, app, http.MethodGet, "/api/products", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["items"], 1)
}

func TestCategorias_CrearYListarPorOrden(t *testing.T) {
	app := buildTestApp(t)

	status, created := call(t, app, http.MethodPost, "/api/categories",
		map[string]any{"code": "BEB", "name": "Bebidas", "sortOrder": 1}, "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "BEB", created["code"])

	status, body := call(t, app, http.MethodPost, "/api/categories", map[string]any{"code": "BEB", "name": "Otra"}, "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])

	status, body = call(t, app, http.MethodPost, "/api/categories", map[string]any{"code": "DEMASIADO-LARGO", "name": "X"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", body["code"])

	status, body = call(t, app, http.MethodGet, "/api/categories", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "BEB", items[0].(map[string]any)["code"])
	assert.Equal(t, "LAC", items[1].(map[string]any)["code"])

	status, body = call(t, app, http.MethodGet, "/api/categories/"+testCategoryID, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Lácteos", body["name"])

	status, _ = call(t, app, http.MethodGet, "/api/categories/"+unknownID, nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCatalog_ProductoConCategoriaDesconocidaEs400(t *testing.T) {
	app := buildTestApp(t)

	status, body := call(t, app, http.MethodPost, "/api/products",
		map[string]any{"sku": "SKU-3", "name": "Yogur", "categoryId": unknownID}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", body["code"])

	status, body = call(t, app, http.MethodPost, "/api/products",
		map[string]any{"sku": "SKU-3", "name": "Yogur", "categoryId": testCategoryID}, "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, testCategoryID, body["categoryId"])

	status, _ = call(t, app, http.MethodPatch, "/api/products/"+testItemID, map[string]any{"categoryId": unknownID}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = call(t, app, http.MethodPatch, "/api/products/"+testItemID, map[string]any{"categoryId": testCategoryID}, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, testCategoryID, body["categoryId"])
}

func TestMetrics_Expuestas(t *testing.T) {
	app := buildTestApp(t)
	call(t, app, http.MethodPost, "/api/transactions/inbound", movementBody(1), "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "stock_ledger_http_requests_total")
}

// ──────────────────────────────────────────────────────────────────────────────
// Request ID
// ──────────────────────────────────────────────────────────────────────────────

func TestRequestID_GeneradoYRegistrado(t *testing.T) {
	var buf bytes.Buffer
	app := buildTestAppWithLogger(t, zerolog.New(&buf))

	raw, _ := json.Marshal(movementBody(1))
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/inbound", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	id := resp.Header.Get(fiber.HeaderXRequestID)
	require.NotEmpty(t, id)
	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
}

func TestRequestID_SeRespetaElDelCliente(t *testing.T) {
	var buf bytes.Buffer
	app := buildTestAppWithLogger(t, zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/stocks", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-cliente-1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "req-cliente-1", resp.Header.Get(fiber.HeaderXRequestID))
	assert.Contains(t, buf.String(), `"request_id":"req-cliente-1"`)
}
