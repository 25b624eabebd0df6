package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Las clases genéricas son las que mapea la capa HTTP; los errores específicos las envuelven.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidState      = errors.New("operación no permitida en el estado actual")
	ErrInsufficientStock = fmt.Errorf("stock insuficiente: %w", ErrInvalidState)
)

// Errores específicos del inventario.
var (
	ErrProductNotFound     = fmt.Errorf("producto no encontrado: %w", ErrNotFound)
	ErrLocationNotFound    = fmt.Errorf("ubicación no encontrada: %w", ErrNotFound)
	ErrFromLocationMissing = fmt.Errorf("ubicación origen no encontrada: %w", ErrNotFound)
	ErrToLocationMissing   = fmt.Errorf("ubicación destino no encontrada: %w", ErrNotFound)
	ErrStockLevelNotFound  = fmt.Errorf("no existe nivel de stock para este producto y ubicación: %w", ErrNotFound)
	ErrNoSourceStock       = fmt.Errorf("no hay stock en la ubicación origen: %w", ErrNotFound)
	ErrSameLocation        = fmt.Errorf("la ubicación origen y destino deben ser distintas: %w", ErrInvalidInput)
	ErrQuantityOutOfRange  = fmt.Errorf("la cantidad excede el máximo permitido: %w", ErrInvalidInput)
	ErrDuplicateSKU        = fmt.Errorf("el SKU ya existe: %w", ErrDuplicate)
	ErrDuplicateLocation   = fmt.Errorf("el nombre de ubicación ya existe: %w", ErrDuplicate)
)

// InsufficientStock construye el error de stock insuficiente con la cantidad disponible.
func InsufficientStock(available, requested int64) error {
	return fmt.Errorf("%w (disponible: %d, solicitado: %d)", ErrInsufficientStock, available, requested)
}
