package entity

import "time"

// Tipos de evento emitidos tras confirmar una operación del ledger.
const (
	EventInitialStockSet  = "stock.initial_set"
	EventStockAdjusted    = "stock.adjusted"
	EventStockTransferred = "stock.transferred"
	EventLowStockDetected = "stock.low_detected"
)

// LedgerEvent notificación de un cambio confirmado en el ledger de stock.
type LedgerEvent struct {
	Type           string
	RecordID       string // id del ajuste o traslado que originó el evento
	ProductID      string
	LocationID     string
	FromLocationID string
	ToLocationID   string
	QuantityChange int64
	Quantity       int64
	CurrentStock   int64
	OccurredAt     time.Time
}
