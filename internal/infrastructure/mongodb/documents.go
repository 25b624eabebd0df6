package mongodb

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Documentos BSON. Las referencias entre colecciones se guardan como ObjectID y
// el precio como Decimal128 para no perder precisión.

type productDoc struct {
	ID                primitive.ObjectID   `bson:"_id"`
	Name              string               `bson:"name"`
	SKU               string               `bson:"sku"`
	Description       string               `bson:"description"`
	Category          string               `bson:"category"`
	UnitOfMeasurement string               `bson:"unit_of_measurement"`
	Price             primitive.Decimal128 `bson:"price"`
	IsActive          bool                 `bson:"is_active"`
	CreatedAt         time.Time            `bson:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at"`
}

type locationDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	Address       string             `bson:"address"`
	ContactPerson string             `bson:"contact_person"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

// stockLevelDoc Version se incrementa en cada lectura con bloqueo dentro de una transacción.
type stockLevelDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	ProductID   primitive.ObjectID `bson:"product_id"`
	LocationID  primitive.ObjectID `bson:"location_id"`
	Quantity    int64              `bson:"quantity"`
	LastUpdated time.Time          `bson:"last_updated"`
	Version     int64              `bson:"version"`
}

type stockAdjustmentDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	ProductID      primitive.ObjectID `bson:"product_id"`
	LocationID     primitive.ObjectID `bson:"location_id"`
	Type           string             `bson:"type"`
	QuantityChange int64              `bson:"quantity_change"`
	CurrentStock   int64              `bson:"current_stock"`
	Reason         string             `bson:"reason,omitempty"`
	AdjustedBy     string             `bson:"adjusted_by,omitempty"`
	Timestamp      time.Time          `bson:"timestamp"`
}

type stockTransferDoc struct {
	ID                  primitive.ObjectID `bson:"_id"`
	ProductID           primitive.ObjectID `bson:"product_id"`
	FromLocationID      primitive.ObjectID `bson:"from_location_id"`
	ToLocationID        primitive.ObjectID `bson:"to_location_id"`
	Quantity            int64              `bson:"quantity"`
	Status              string             `bson:"status"`
	RequestTimestamp    time.Time          `bson:"request_timestamp"`
	CompletionTimestamp *time.Time         `bson:"completion_timestamp,omitempty"`
	RequestedBy         string             `bson:"requested_by,omitempty"`
}

// objectID convierte un id hexadecimal; ok=false si no tiene formato de ObjectID.
func objectID(hex string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(hex)
	return oid, err == nil
}

func objectIDs(hexes []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		if oid, ok := objectID(h); ok {
			out = append(out, oid)
		}
	}
	return out
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}

func newProductDoc(p *entity.Product) (*productDoc, error) {
	oid, ok := objectID(p.ID)
	if !ok {
		return nil, errInvalidID(p.ID)
	}
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	return &productDoc{
		ID:                oid,
		Name:              p.Name,
		SKU:               p.SKU,
		Description:       p.Description,
		Category:          p.Category,
		UnitOfMeasurement: p.UnitOfMeasurement,
		Price:             price,
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}, nil
}

func (d *productDoc) toEntity() *entity.Product {
	return &entity.Product{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		SKU:               d.SKU,
		Description:       d.Description,
		Category:          d.Category,
		UnitOfMeasurement: d.UnitOfMeasurement,
		Price:             fromDecimal128(d.Price),
		IsActive:          d.IsActive,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

func (d *locationDoc) toEntity() *entity.Location {
	return &entity.Location{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Address:       d.Address,
		ContactPerson: d.ContactPerson,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

func (d *stockLevelDoc) toEntity() *entity.StockLevel {
	return &entity.StockLevel{
		ID:          d.ID.Hex(),
		ProductID:   d.ProductID.Hex(),
		LocationID:  d.LocationID.Hex(),
		Quantity:    d.Quantity,
		LastUpdated: d.LastUpdated.UTC(),
	}
}

func (d *stockAdjustmentDoc) toEntity() *entity.StockAdjustment {
	return &entity.StockAdjustment{
		ID:             d.ID.Hex(),
		ProductID:      d.ProductID.Hex(),
		LocationID:     d.LocationID.Hex(),
		Type:           d.Type,
		QuantityChange: d.QuantityChange,
		CurrentStock:   d.CurrentStock,
		Reason:         d.Reason,
		AdjustedBy:     d.AdjustedBy,
		Timestamp:      d.Timestamp.UTC(),
	}
}

func (d *stockTransferDoc) toEntity() *entity.StockTransfer {
	t := &entity.StockTransfer{
		ID:               d.ID.Hex(),
		ProductID:        d.ProductID.Hex(),
		FromLocationID:   d.FromLocationID.Hex(),
		ToLocationID:     d.ToLocationID.Hex(),
		Quantity:         d.Quantity,
		Status:           d.Status,
		RequestTimestamp: d.RequestTimestamp.UTC(),
		RequestedBy:      d.RequestedBy,
	}
	if d.CompletionTimestamp != nil {
		at := d.CompletionTimestamp.UTC()
		t.CompletionTimestamp = &at
	}
	return t
}
