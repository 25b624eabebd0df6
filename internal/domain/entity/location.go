package entity

import "time"

// Location representa una ubicación física (bodega, tienda) donde se almacena stock.
type Location struct {
	ID            string
	Name          string // único
	Address       string
	ContactPerson string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
