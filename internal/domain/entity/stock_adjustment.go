package entity

import "time"

// Tipos de ajuste de stock.
const (
	AdjustmentTypeAdd     = "add"
	AdjustmentTypeRemove  = "remove"
	AdjustmentTypeDamage  = "damage"
	AdjustmentTypeLoss    = "loss"
	AdjustmentTypeInitial = "initial" // solo lo genera la carga inicial de stock
)

// IsValidAdjustmentType indica si t es un tipo de ajuste conocido.
func IsValidAdjustmentType(t string) bool {
	switch t {
	case AdjustmentTypeAdd, AdjustmentTypeRemove, AdjustmentTypeDamage, AdjustmentTypeLoss, AdjustmentTypeInitial:
		return true
	}
	return false
}

// StockAdjustment registro de auditoría inmutable de un cambio manual de stock.
// CurrentStock es la cantidad resultante tras aplicar QuantityChange.
type StockAdjustment struct {
	ID             string
	ProductID      string
	LocationID     string
	Type           string
	QuantityChange int64 // con signo
	CurrentStock   int64
	Reason         string
	AdjustedBy     string
	Timestamp      time.Time
}
