package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/reconcile"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Processor  *inventory.Processor
	Catalog    *inventory.Catalog
	Query      *inventory.QueryUseCase
	Reconciler *reconcile.Reconciler
	Products   *usecase.ProductUseCase
	Categories *usecase.CategoryUseCase
	Stores     *usecase.StoreUseCase
	Metrics    *metrics.Metrics // opcional
	JWTSecret  string
	Logger     zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Request ID primero: acepta X-Request-ID del cliente o genera uno, y lo devuelve en la respuesta.
	app.Use(requestid.New())
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}
	app.Use(RequestLogger(deps.Logger))

	api := app.Group("/api", IdentityMiddleware(deps.JWTSecret))

	tx := NewTransactionHandler(deps.Processor, deps.Catalog, deps.Query, deps.Logger)
	transactions := api.Group("/transactions")
	transactions.Post("/inbound", tx.Inbound)
	transactions.Post("/outbound", tx.Outbound)
	transactions.Post("/adjust", tx.Adjust)
	transactions.Get("/", tx.List)

	syncHandler := NewSyncHandler(deps.Reconciler, deps.Logger)
	api.Post("/sync/transactions", syncHandler.Sync)

	stock := NewStockHandler(deps.Query, deps.Logger)
	inv := api.Group("/inventory")
	inv.Get("/stocks", stock.List)
	inv.Get("/stocks/:productId", stock.GetByProduct)
	inv.Get("/consistency", stock.Consistency)

	// Catálogo
	products := NewProductHandler(deps.Products, deps.Logger)
	api.Post("/products", products.Create)
	api.Get("/products", products.List)
	api.Get("/products/:id", products.GetByID)
	api.Patch("/products/:id", products.Update)

	categories := NewCategoryHandler(deps.Categories, deps.Logger)
	api.Post("/categories", categories.Create)
	api.Get("/categories", categories.List)
	api.Get("/categories/:id", categories.GetByID)

	stores := NewStoreHandler(deps.Stores, deps.Logger)
	api.Post("/stores", stores.Create)
	api.Get("/stores", stores.List)
	api.Get("/stores/:id", stores.GetByID)
	api.Patch("/stores/:id", stores.Update)
}

// RequestLogger registra cada petición con método, ruta, código, latencia, actor y request_id.
// También propaga el request_id al contexto para los logs de las capas internas.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := GetRequestID(c)
		c.SetUserContext(logger.WithRequestID(c.UserContext(), reqID))
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("actor_id", GetActorID(c).String()).
			Msg("http request")
		return err
	}
}

// GetRequestID devuelve el ID de correlación asignado por el middleware requestid.
func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
