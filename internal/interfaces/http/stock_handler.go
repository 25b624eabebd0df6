package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

// StockHandler expone las mutaciones del ledger: carga inicial, ajustes y traslados.
type StockHandler struct {
	ledger   *inventory.StockLedgerUseCase
	validate *Validator
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.StockLedgerUseCase, validate *Validator) *StockHandler {
	return &StockHandler{ledger: ledger, validate: validate}
}

// SetInitialStock godoc
// @Summary      Fijar stock inicial
// @Description  Crea o sobrescribe el nivel del par producto/ubicación y registra un ajuste "initial"
// @Description  con la diferencia. 201 si el nivel se creó, 200 si se sobrescribió.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetInitialStockRequest  true  "product_id, location_id, quantity"
// @Success      201   {object}  dto.Envelope{data=dto.InitialStockResponse}
// @Success      200   {object}  dto.Envelope{data=dto.InitialStockResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stocklevels/initial [post]
func (h *StockHandler) SetInitialStock(c *fiber.Ctx) error {
	var in dto.SetInitialStockRequest
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}
	out, err := h.ledger.SetInitialStockFromRequest(c.UserContext(), in)
	if err != nil {
		return err
	}
	if out.Created {
		return respond(c, fiber.StatusCreated, "Stock inicial establecido", out)
	}
	return respond(c, fiber.StatusOK, "Stock inicial actualizado", out)
}

// AdjustStock godoc
// @Summary      Registrar ajuste de stock
// @Description  quantity_change lleva el signo; el resultado no puede quedar negativo.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "Ajuste"
// @Success      201   {object}  dto.Envelope{data=dto.AdjustStockResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stockadjustments [post]
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}
	out, err := h.ledger.AdjustStockFromRequest(c.UserContext(), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Ajuste de stock registrado", out)
}

// TransferStock godoc
// @Summary      Trasladar stock entre ubicaciones
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "Traslado"
// @Success      201   {object}  dto.Envelope{data=dto.TransferStockResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stocktransfers [post]
func (h *StockHandler) TransferStock(c *fiber.Ctx) error {
	var in dto.TransferStockRequest
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}
	out, err := h.ledger.TransferStockFromRequest(c.UserContext(), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Traslado completado", out)
}
