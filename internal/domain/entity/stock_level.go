package entity

import "time"

// MaxQuantity límite de cualquier cantidad de stock (2^53 - 1, el mayor entero exacto en JSON numérico).
const MaxQuantity int64 = 1<<53 - 1

// ExceedsMaxQuantity indica si current + delta (delta > 0) superaría MaxQuantity, sin desbordar int64.
func ExceedsMaxQuantity(current, delta int64) bool {
	return delta > 0 && current > MaxQuantity-delta
}

// StockLevel cantidad disponible de un producto en una ubicación.
// Existe a lo sumo uno por (ProductID, LocationID) y Quantity nunca es negativa.
type StockLevel struct {
	ID          string
	ProductID   string
	LocationID  string
	Quantity    int64
	LastUpdated time.Time
}
