package entity

import "time"

// Estados de un traslado. Hoy los traslados se crean directamente en completed.
const (
	TransferStatusPending   = "pending"
	TransferStatusCompleted = "completed"
	TransferStatusCancelled = "cancelled"
)

// StockTransfer registro de un traslado de stock entre dos ubicaciones distintas.
type StockTransfer struct {
	ID                  string
	ProductID           string
	FromLocationID      string
	ToLocationID        string
	Quantity            int64 // > 0
	Status              string
	RequestTimestamp    time.Time
	CompletionTimestamp *time.Time // se fija al pasar a completed o cancelled
	RequestedBy         string
}

// Complete marca el traslado como completado en el instante indicado.
func (t *StockTransfer) Complete(at time.Time) {
	t.Status = TransferStatusCompleted
	t.CompletionTimestamp = &at
}
