package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// AppOptions parámetros del servidor Fiber.
type AppOptions struct {
	Name           string
	BodyLimit      int
	ExposeInternal bool // mensajes reales en errores 500 (development)
	Log            zerolog.Logger
	Metrics        HTTPMetrics
}

// NewApp construye la app Fiber con el ErrorHandler del envelope y la cadena de middleware
// común: request id, observabilidad y recuperación de panics.
func NewApp(opts AppOptions) *fiber.App {
	log := opts.Log.With().Str("component", "http").Logger()
	app := fiber.New(fiber.Config{
		AppName:      opts.Name,
		BodyLimit:    opts.BodyLimit,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: ErrorHandler(opts.ExposeInternal, log),
	})
	app.Use(RequestID(), Observe(log, opts.Metrics), recover.New())
	return app
}
