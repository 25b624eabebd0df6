package dto

import "time"

// Tipos de entrada del historial.
const (
	HistoryKindAdjustment = "adjustment"
	HistoryKindTransfer   = "transfer"
)

// HistoryEntryResponse entrada del historial unificado de un producto.
// Los campos de ajuste y de traslado son excluyentes según Kind.
type HistoryEntryResponse struct {
	Kind      string    `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Ajustes
	AdjustmentType string               `json:"adjustment_type,omitempty"`
	Location       *LocationRefResponse `json:"location,omitempty"`
	QuantityChange *int64               `json:"quantity_change,omitempty"`
	CurrentStock   *int64               `json:"current_stock,omitempty"`
	Reason         string               `json:"reason,omitempty"`
	AdjustedBy     string               `json:"adjusted_by,omitempty"`

	// Traslados
	FromLocation        *LocationRefResponse `json:"from_location,omitempty"`
	ToLocation          *LocationRefResponse `json:"to_location,omitempty"`
	Quantity            *int64               `json:"quantity,omitempty"`
	Status              string               `json:"status,omitempty"`
	CompletionTimestamp *time.Time           `json:"completion_timestamp,omitempty"`
	RequestedBy         string               `json:"requested_by,omitempty"`
}
