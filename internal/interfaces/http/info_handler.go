package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

type infoHandler struct {
	service string
	version string
	prefix  string
}

func newInfoHandler(service, version, prefix string) *infoHandler {
	return &infoHandler{service: service, version: version, prefix: prefix}
}

// Root godoc
// @Summary      Información del servicio
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.Envelope
// @Router       / [get]
func (h *infoHandler) Root(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "Stock ledger API en ejecución", fiber.Map{
		"service": h.service,
		"version": h.version,
		"api":     h.prefix,
		"docs":    "/docs",
		"health":  "/health",
	})
}

// API godoc
// @Summary      Índice de endpoints
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.Envelope
// @Router       /api [get]
func (h *infoHandler) API(c *fiber.Ctx) error {
	p := h.prefix
	return c.JSON(dto.Envelope{
		Success: true,
		Message: "Endpoints disponibles",
		Data: fiber.Map{
			"products": []string{
				"POST " + p + "/products",
				"GET " + p + "/products",
				"GET " + p + "/products/low-stock?threshold=&include_unstocked=",
				"GET " + p + "/products/:id",
				"PUT " + p + "/products/:id",
				"DELETE " + p + "/products/:id",
				"GET " + p + "/products/:id/stock",
				"GET " + p + "/products/:id/history",
			},
			"locations": []string{
				"POST " + p + "/locations",
				"GET " + p + "/locations",
				"GET " + p + "/locations/:id",
				"PUT " + p + "/locations/:id",
				"DELETE " + p + "/locations/:id",
				"GET " + p + "/locations/:id/stock",
			},
			"stock": []string{
				"POST " + p + "/stocklevels/initial",
				"POST " + p + "/stockadjustments",
				"POST " + p + "/stocktransfers",
			},
		},
	})
}
