package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	Version     string
	APIPrefix   string // por defecto /api
	StorageName string // driver activo, se informa en /health

	ProductUC  *usecase.ProductUseCase
	LocationUC *usecase.LocationUseCase
	Ledger     *inventory.StockLedgerUseCase
	Reader     *inventory.StockReaderUseCase

	// HealthCheck verifica el almacenamiento (ping); nil = siempre sano.
	HealthCheck func(ctx context.Context) error
	// MetricsHandler exposición Prometheus; nil = sin /metrics.
	MetricsHandler http.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	prefix := deps.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}
	validate := NewValidator()
	info := newInfoHandler(deps.ServiceName, deps.Version, prefix)

	app.Get("/", info.Root)
	app.Get("/health", healthHandler(deps.StorageName, deps.HealthCheck))
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group(prefix)
	api.Get("/", info.API)

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Reader, validate)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/stock", productHandler.Stock)
	products.Get("/:id/history", productHandler.History)

	locations := api.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC, deps.Reader, validate)
	locations.Post("/", locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Put("/:id", locationHandler.Update)
	locations.Delete("/:id", locationHandler.Delete)
	locations.Get("/:id/stock", locationHandler.Stock)

	stockHandler := NewStockHandler(deps.Ledger, validate)
	api.Post("/stocklevels/initial", stockHandler.SetInitialStock)
	api.Post("/stockadjustments", stockHandler.AdjustStock)
	api.Post("/stocktransfers", stockHandler.TransferStock)
}

// healthHandler godoc
// @Summary      Estado del servicio
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func healthHandler(storage string, check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status":  "unavailable",
					"storage": storage,
					"error":   err.Error(),
				})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "storage": storage})
	}
}
