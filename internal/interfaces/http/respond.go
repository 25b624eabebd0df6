package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Message: message, Data: data})
}

// respondList incluye count y, si hay paginación, los metadatos de página.
func respondList(c *fiber.Ctx, message string, data interface{}, count int, page *dto.PageResponse) error {
	return c.Status(fiber.StatusOK).JSON(dto.Envelope{
		Success: true,
		Message: message,
		Count:   &count,
		Page:    page,
		Data:    data,
	})
}

// pageParams lee limit/offset aplicando los valores por defecto y límites.
func pageParams(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}

// boolQuery nil si el parámetro no viene; error de validación si no es booleano.
func boolQuery(c *fiber.Ctx, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, newValidationError(name + ": debe ser true o false")
	}
	return &v, nil
}
