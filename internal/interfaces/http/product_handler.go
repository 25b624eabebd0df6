package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// DefaultLowStockThreshold umbral cuando la petición no indica threshold.
const DefaultLowStockThreshold = 10

// ProductHandler maneja las peticiones HTTP para Product y sus consultas de stock.
type ProductHandler struct {
	uc       *usecase.ProductUseCase
	reader   *inventory.StockReaderUseCase
	validate *Validator
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, reader *inventory.StockReaderUseCase, validate *Validator) *ProductHandler {
	return &ProductHandler{uc: uc, reader: reader, validate: validate}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.Envelope{data=dto.ProductResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Producto creado", out)
}

// List godoc
// @Summary      Listar productos
// @Description  Ordenados por nombre. active=true|false filtra por estado.
// @Tags         products
// @Produce      json
// @Param        active  query  bool  false  "Filtrar por estado"
// @Param        limit   query  int   false  "Límite"  default(20)
// @Param        offset  query  int   false  "Offset"  default(0)
// @Success      200     {object}  dto.Envelope{data=[]dto.ProductResponse}
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	active, err := boolQuery(c, "active")
	if err != nil {
		return err
	}
	page := pageParams(c)
	out, err := h.uc.List(c.UserContext(), active, page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return respondList(c, "Productos obtenidos", out.Items, len(out.Items), &out.Page)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.Envelope{data=dto.ProductResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if out == nil {
		return domain.ErrProductNotFound
	}
	return respond(c, fiber.StatusOK, "Producto obtenido", out)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  Campos editables: name, description, category, unit_of_measurement, price, is_active. El SKU no cambia.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.Envelope{data=dto.ProductResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateProductRequest
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	if out == nil {
		return domain.ErrProductNotFound
	}
	return respond(c, fiber.StatusOK, "Producto actualizado", out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Producto eliminado", nil)
}

// LowStock godoc
// @Summary      Productos con bajo stock
// @Description  Productos activos cuyo stock total (todas las ubicaciones) es menor que threshold.
// @Description  Por defecto solo considera productos con algún nivel de stock; include_unstocked=true agrega los que no tienen ninguno.
// @Tags         products
// @Produce      json
// @Param        threshold          query  int   false  "Umbral"  default(10)
// @Param        include_unstocked  query  bool  false  "Incluir productos sin niveles"
// @Success      200  {object}  dto.Envelope{data=[]dto.LowStockItemResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/low-stock [get]
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	threshold := int64(DefaultLowStockThreshold)
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return newValidationError("threshold: debe ser un entero mayor o igual a 0")
		}
		threshold = v
	}
	include, err := boolQuery(c, "include_unstocked")
	if err != nil {
		return err
	}
	out, err := h.reader.GetLowStock(c.UserContext(), threshold, include != nil && *include)
	if err != nil {
		return err
	}
	return respondList(c, "Productos con bajo stock obtenidos", out, len(out), nil)
}

// Stock godoc
// @Summary      Niveles de stock de un producto
// @Description  Un nivel por ubicación, ordenados por nombre de ubicación.
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.Envelope{data=[]dto.LocationStockResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *ProductHandler) Stock(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.reader.GetStockLevelsForProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respondList(c, "Niveles de stock obtenidos", out, len(out), nil)
}

// History godoc
// @Summary      Historial de movimientos de un producto
// @Description  Ajustes y traslados en una sola lista, del más reciente al más antiguo.
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.Envelope{data=[]dto.HistoryEntryResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/history [get]
func (h *ProductHandler) History(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.reader.GetHistory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respondList(c, "Historial obtenido", out, len(out), nil)
}
