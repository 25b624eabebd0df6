package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

const internalErrorMessage = "error interno del servidor"

// ValidationError errores de validación por campo ("<campo>: <mensaje>").
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "error de validación: " + strings.Join(e.Fields, "; ")
}

func newValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// ErrorHandler traduce los errores devueltos por los handlers al envelope de error.
// exposeInternal muestra el mensaje real de los 500 (solo en development).
func ErrorHandler(exposeInternal bool, log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := dto.Envelope{Success: false}
		status := fiber.StatusInternalServerError

		var verr *ValidationError
		var ferr *fiber.Error
		switch {
		case errors.As(err, &verr):
			status, body.Code, body.Message, body.Errors = fiber.StatusBadRequest, "VALIDATION", "error de validación", verr.Fields
		case errors.As(err, &ferr):
			status, body.Code, body.Message = ferr.Code, codeForStatus(ferr.Code), ferr.Message
		case errors.Is(err, domain.ErrNotFound):
			status, body.Code, body.Message = fiber.StatusNotFound, "NOT_FOUND", err.Error()
		case errors.Is(err, domain.ErrDuplicate):
			status, body.Code, body.Message = fiber.StatusConflict, "DUPLICATE", err.Error()
		case errors.Is(err, domain.ErrConflict):
			status, body.Code, body.Message = fiber.StatusConflict, "CONFLICT", err.Error()
		case errors.Is(err, domain.ErrInsufficientStock):
			status, body.Code, body.Message = fiber.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error()
		case errors.Is(err, domain.ErrInvalidState):
			status, body.Code, body.Message = fiber.StatusBadRequest, "INVALID_STATE", err.Error()
		case errors.Is(err, domain.ErrInvalidInput):
			status, body.Code, body.Message = fiber.StatusBadRequest, "VALIDATION", err.Error()
		default:
			body.Code, body.Message = "INTERNAL", internalErrorMessage
			if exposeInternal {
				body.Message = err.Error()
			}
			log.Error().Err(err).
				Str("request_id", RequestIDFrom(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("error no controlado")
		}
		return c.Status(status).JSON(body)
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusUnprocessableEntity:
		return "INVALID_BODY"
	default:
		if status >= 500 {
			return "INTERNAL"
		}
		return "ERROR"
	}
}
