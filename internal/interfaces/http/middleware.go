package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	HeaderRequestID = "X-Request-ID"
	localRequestID  = "request_id"
)

// HTTPMetrics registra duración y estado de cada petición.
type HTTPMetrics interface {
	ObserveHTTPRequest(method, path string, status int, elapsed time.Duration)
}

// RequestID reutiliza el X-Request-ID entrante o genera un UUID, y lo devuelve en la respuesta.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// RequestIDFrom obtiene el request id guardado por RequestID.
func RequestIDFrom(c *fiber.Ctx) string {
	if v, ok := c.Locals(localRequestID).(string); ok {
		return v
	}
	return ""
}

// Observe abre un span por petición, resuelve el error de la cadena con el ErrorHandler
// (para conocer el status final) y registra log de acceso y métricas.
func Observe(log zerolog.Logger, metrics HTTPMetrics) fiber.Handler {
	tracer := otel.Tracer("github.com/jhoicas/stock-ledger-api/http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		carrier := propagation.HeaderCarrier(http.Header(c.GetReqHeaders()))
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)
		ctx, span := tracer.Start(ctx, c.Method(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		if chainErr := c.Next(); chainErr != nil {
			span.RecordError(chainErr)
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		elapsed := time.Since(start)

		span.SetName(fmt.Sprintf("%s %s", c.Method(), route))
		span.SetAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
			attribute.String("http.request_id", RequestIDFrom(c)),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		if metrics != nil {
			metrics.ObserveHTTPRequest(c.Method(), route, status, elapsed)
		}

		event := log.Info()
		if status >= 500 {
			event = log.Error()
		}
		event.
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("petición HTTP")
		return nil
	}
}
