package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

// SetInitialStockFromRequest adapta el request HTTP al caso de uso SetInitialStock.
func (uc *StockLedgerUseCase) SetInitialStockFromRequest(ctx context.Context, in dto.SetInitialStockRequest) (*dto.InitialStockResponse, error) {
	return uc.SetInitialStock(ctx, SetInitialStockInput{
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Quantity:   derefInt64(in.Quantity),
	})
}

// AdjustStockFromRequest adapta el request HTTP al caso de uso AdjustStock.
func (uc *StockLedgerUseCase) AdjustStockFromRequest(ctx context.Context, in dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	return uc.AdjustStock(ctx, AdjustStockInput{
		ProductID:      in.ProductID,
		LocationID:     in.LocationID,
		Type:           in.AdjustmentType,
		QuantityChange: derefInt64(in.QuantityChange),
		Reason:         in.Reason,
		AdjustedBy:     in.AdjustedBy,
	})
}

// TransferStockFromRequest adapta el request HTTP al caso de uso TransferStock.
func (uc *StockLedgerUseCase) TransferStockFromRequest(ctx context.Context, in dto.TransferStockRequest) (*dto.TransferStockResponse, error) {
	return uc.TransferStock(ctx, TransferStockInput{
		ProductID:      in.ProductID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Quantity:       derefInt64(in.Quantity),
		RequestedBy:    in.RequestedBy,
	})
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
