package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// LocationHandler maneja las peticiones HTTP para Location.
type LocationHandler struct {
	uc       *usecase.LocationUseCase
	reader   *inventory.StockReaderUseCase
	validate *Validator
}

// NewLocationHandler construye el handler.
func NewLocationHandler(uc *usecase.LocationUseCase, reader *inventory.StockReaderUseCase, validate *Validator) *LocationHandler {
	return &LocationHandler{uc: uc, reader: reader, validate: validate}
}

// Create godoc
// @Summary      Crear ubicación
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "Datos de la ubicación"
// @Success      201   {object}  dto.Envelope{data=dto.LocationResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Ubicación creada", out)
}

// List godoc
// @Summary      Listar ubicaciones
// @Tags         locations
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.Envelope{data=[]dto.LocationResponse}
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	page := pageParams(c)
	out, err := h.uc.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return respondList(c, "Ubicaciones obtenidas", out.Items, len(out.Items), &out.Page)
}

// GetByID godoc
// @Summary      Obtener ubicación por ID
// @Tags         locations
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.Envelope{data=dto.LocationResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if out == nil {
		return domain.ErrLocationNotFound
	}
	return respond(c, fiber.StatusOK, "Ubicación obtenida", out)
}

// Update godoc
// @Summary      Actualizar ubicación
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la ubicación"
// @Param        body  body  dto.UpdateLocationRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.Envelope{data=dto.LocationResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [put]
func (h *LocationHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateLocationRequest
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	if out == nil {
		return domain.ErrLocationNotFound
	}
	return respond(c, fiber.StatusOK, "Ubicación actualizada", out)
}

// Delete godoc
// @Summary      Eliminar ubicación
// @Tags         locations
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [delete]
func (h *LocationHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Ubicación eliminada", nil)
}

// Stock godoc
// @Summary      Stock de una ubicación
// @Description  Un nivel por producto, ordenados por nombre de producto.
// @Tags         locations
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.Envelope{data=[]dto.ProductStockResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/stock [get]
func (h *LocationHandler) Stock(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.reader.GetStockLevelsForLocation(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respondList(c, "Stock de la ubicación obtenido", out, len(out), nil)
}
