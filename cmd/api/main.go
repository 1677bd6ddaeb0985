package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/reconcile"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage agrupa los puertos que necesita la aplicación, sea cual sea el driver.
type storage struct {
	tx         inventory.TxRunner
	movements  repository.MovementRepository
	stocks     repository.StockRepository
	products   repository.ProductAdminRepository
	categories repository.CategoryRepository
	stores     repository.StoreAdminRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	m := metrics.New()

	var publisher inventory.AlertPublisher
	if cfg.Kafka.Enabled() {
		kp, err := kafka.NewAlertPublisher(cfg.Kafka.Brokers, cfg.Kafka.AlertTopic, log.Component("kafka"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Kafka")
		}
		defer func() { _ = kp.Close() }()
		publisher = kp
	} else {
		log.Warn().Msg("KAFKA_BROKERS vacío: las alertas de stock solo se registran en el log")
		publisher = kafka.NewLogPublisher(log.Component("alerts"))
	}

	processor := inventory.NewProcessor(store.tx,
		inventory.Config{MaxRetries: cfg.Inventory.MaxRetries, AlertCooldown: cfg.Inventory.AlertCooldown},
		inventory.WithAlertPublisher(publisher),
		inventory.WithRecorder(m),
		inventory.WithLogger(log.Component("processor")),
	)
	catalog := inventory.NewCatalog(store.products, store.stores)
	queryUC := inventory.NewQueryUseCase(store.stocks, store.movements, store.products)
	reconciler := reconcile.NewReconciler(processor, catalog, store.movements,
		reconcile.Config{MaxBatchSize: cfg.Inventory.MaxBatchSize},
		reconcile.WithRecorder(m),
		reconcile.WithLogger(log.Component("reconciler")),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 * 1024 * 1024, // lotes de sync grandes
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Processor:  processor,
		Catalog:    catalog,
		Query:      queryUC,
		Reconciler: reconciler,
		Products:   usecase.NewProductUseCase(store.products, store.categories),
		Categories: usecase.NewCategoryUseCase(store.categories),
		Stores:     usecase.NewStoreUseCase(store.stores),
		Metrics:    m,
		JWTSecret:  cfg.JWT.Secret,
		Logger:     log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		mem := memory.New()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			tx:         mem,
			movements:  mem.Movements(),
			stocks:     mem.Stocks(),
			products:   mem.Products(),
			categories: mem.Categories(),
			stores:     mem.Stores(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema verificado")
	}
	return &storage{
		tx:         postgres.NewTxRunner(pool),
		movements:  postgres.NewMovementRepository(pool),
		stocks:     postgres.NewStockRepository(pool),
		products:   postgres.NewProductRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		stores:     postgres.NewStoreRepository(pool),
		close:      pool.Close,
	}, nil
}
