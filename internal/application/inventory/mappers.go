package inventory

import (
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

func toStockLevelResponse(l *entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ID:          l.ID,
		ProductID:   l.ProductID,
		LocationID:  l.LocationID,
		Quantity:    l.Quantity,
		LastUpdated: l.LastUpdated,
	}
}

func toAdjustmentResponse(a *entity.StockAdjustment) dto.StockAdjustmentResponse {
	return dto.StockAdjustmentResponse{
		ID:             a.ID,
		ProductID:      a.ProductID,
		LocationID:     a.LocationID,
		AdjustmentType: a.Type,
		QuantityChange: a.QuantityChange,
		CurrentStock:   a.CurrentStock,
		Reason:         a.Reason,
		AdjustedBy:     a.AdjustedBy,
		Timestamp:      a.Timestamp,
	}
}

func toTransferResponse(t *entity.StockTransfer) dto.StockTransferResponse {
	return dto.StockTransferResponse{
		ID:                  t.ID,
		ProductID:           t.ProductID,
		FromLocationID:      t.FromLocationID,
		ToLocationID:        t.ToLocationID,
		Quantity:            t.Quantity,
		Status:              t.Status,
		RequestTimestamp:    t.RequestTimestamp,
		CompletionTimestamp: t.CompletionTimestamp,
		RequestedBy:         t.RequestedBy,
	}
}

func toLocationStockResponse(s repository.LocationStock) dto.LocationStockResponse {
	return dto.LocationStockResponse{
		StockLevelResponse: toStockLevelResponse(&s.StockLevel),
		Location: dto.LocationRefResponse{
			ID:            s.LocationID,
			Name:          s.LocationName,
			Address:       s.Address,
			ContactPerson: s.ContactPerson,
		},
	}
}

func toProductStockResponse(s repository.ProductStock) dto.ProductStockResponse {
	return dto.ProductStockResponse{
		StockLevelResponse: toStockLevelResponse(&s.StockLevel),
		Product: dto.ProductRefResponse{
			ID:                s.ProductID,
			Name:              s.ProductName,
			SKU:               s.SKU,
			Category:          s.Category,
			UnitOfMeasurement: s.UnitOfMeasurement,
			Price:             s.Price,
			IsActive:          s.IsActive,
		},
	}
}

func toLowStockResponse(i repository.LowStockItem) dto.LowStockItemResponse {
	return dto.LowStockItemResponse{
		ProductID:  i.ProductID,
		Name:       i.Name,
		SKU:        i.SKU,
		Category:   i.Category,
		Price:      i.Price,
		TotalStock: i.TotalStock,
		Locations:  i.Locations,
	}
}
