// @title        Stock Ledger API
// @version      1.0
// @description  Ledger de inventario multi-ubicación: catálogo, niveles de stock, ajustes y traslados auditados.
// @host         localhost:8080
// @BasePath     /
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	_ "github.com/jhoicas/stock-ledger-api/docs"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/messaging"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/observability"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// version se sobrescribe en el build: -ldflags "-X main.version=1.2.3".
var version = "dev"

// storage repositorios y runner transaccional del backend elegido en DB_DRIVER.
type storage struct {
	products    repository.ProductRepository
	locations   repository.LocationRepository
	levels      repository.StockLevelRepository
	adjustments repository.StockAdjustmentRepository
	transfers   repository.StockTransferRepository
	txRunner    inventory.TxRunner
	ping        func(ctx context.Context) error
	close       func(ctx context.Context)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", version).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	_, shutdownTracing, err := observability.SetupTracing(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas OpenTelemetry")
	}
	metrics := observability.NewMetrics("stock_ledger")

	store, err := openStorage(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("abrir almacenamiento")
	}

	// Eventos del ledger: Kafka si hay brokers; si no, se descartan.
	var publisher inventory.EventPublisher = inventory.NoopPublisher{}
	var kafkaPublisher *messaging.KafkaPublisher
	if cfg.Kafka.Enabled() {
		producer, err := messaging.NewKafkaWriter(cfg.Kafka, cfg.Telemetry.ServiceName)
		if err != nil {
			log.Fatal().Err(err).Msg("crear productor Kafka")
		}
		kafkaPublisher = messaging.NewKafkaPublisher(producer, metrics, log.Component("kafka"))
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	productUC := usecase.NewProductUseCase(store.products)
	locationUC := usecase.NewLocationUseCase(store.locations)
	ledgerUC := inventory.NewStockLedgerUseCase(store.txRunner, store.products, store.locations, publisher, metrics, log.Zerolog())
	readerUC := inventory.NewStockReaderUseCase(store.products, store.locations, store.levels, store.adjustments, store.transfers)

	var httpMetrics httpRouter.HTTPMetrics
	if cfg.Telemetry.MetricsEnabled {
		httpMetrics = metrics
	}
	app := httpRouter.NewApp(httpRouter.AppOptions{
		Name:           cfg.App.Name,
		BodyLimit:      cfg.HTTP.BodyLimit,
		ExposeInternal: cfg.App.Env == "development",
		Log:            log.Component("http"),
		Metrics:        httpMetrics,
	})

	// Swagger UI en local: http://localhost:<port>/docs (requiere swag init).
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	deps := httpRouter.RouterDeps{
		ServiceName: cfg.App.Name,
		Version:     version,
		APIPrefix:   cfg.HTTP.APIPrefix,
		StorageName: cfg.DB.Driver,
		ProductUC:   productUC,
		LocationUC:  locationUC,
		Ledger:      ledgerUC,
		Reader:      readerUC,
		HealthCheck: store.ping,
	}
	if cfg.Telemetry.MetricsEnabled {
		deps.MetricsHandler = metrics.Handler()
	}
	httpRouter.Router(app, deps)

	sweeper := scheduler.NewScheduler(cfg.Scheduler, readerUC, publisher, metrics, log.Component("scheduler"))
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Scheduler.LowStockCron).Msg("programar barrido de bajo stock")
	}

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
	sweeper.Stop(shutdownCtx)
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar productor Kafka")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciar trazas pendientes")
	}
	store.close(shutdownCtx)

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DB, log)
	case config.DriverMongo:
		return openMongo(ctx, cfg.Mongo, log)
	default:
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		return openMemory()
	}
}

func openPostgres(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*storage, error) {
	pool, err := postgres.NewPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema PostgreSQL verificado")
	}
	return &storage{
		products:    postgres.NewProductRepository(pool),
		locations:   postgres.NewLocationRepository(pool),
		levels:      postgres.NewStockLevelRepository(pool),
		adjustments: postgres.NewStockAdjustmentRepository(pool),
		transfers:   postgres.NewStockTransferRepository(pool),
		txRunner:    postgres.NewTxRunner(pool),
		ping:        pool.Ping,
		close:       closePool(pool),
	}, nil
}

func closePool(pool *pgxpool.Pool) func(context.Context) {
	return func(context.Context) { pool.Close() }
}

func openMongo(ctx context.Context, cfg config.MongoConfig, log zerolog.Logger) (*storage, error) {
	client, err := mongodb.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.Database).Msg("índices MongoDB verificados")
	return &storage{
		products:    mongodb.NewProductRepository(db),
		locations:   mongodb.NewLocationRepository(db),
		levels:      mongodb.NewStockLevelRepository(db),
		adjustments: mongodb.NewStockAdjustmentRepository(db),
		transfers:   mongodb.NewStockTransferRepository(db),
		txRunner:    mongodb.NewTxRunner(client, db),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				log.Error().Err(err).Msg("desconectar MongoDB")
			}
		},
	}, nil
}

func openMemory() (*storage, error) {
	store, err := memory.NewStore()
	if err != nil {
		return nil, err
	}
	return &storage{
		products:    store.Products(),
		locations:   store.Locations(),
		levels:      store.StockLevels(),
		adjustments: store.Adjustments(),
		transfers:   store.Transfers(),
		txRunner:    memory.NewTxRunner(store),
		close:       func(context.Context) {},
	}, nil
}
