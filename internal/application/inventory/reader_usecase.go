package inventory

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// StockReaderUseCase consultas de lectura sobre el ledger: historial unificado por producto,
// reporte de bajo stock y niveles por producto o por ubicación.
// Lee el último estado confirmado; no bloquea a los escritores.
type StockReaderUseCase struct {
	productRepo    repository.ProductRepository
	locationRepo   repository.LocationRepository
	levelRepo      repository.StockLevelRepository
	adjustmentRepo repository.StockAdjustmentRepository
	transferRepo   repository.StockTransferRepository
	tracer         trace.Tracer
}

// NewStockReaderUseCase construye el caso de uso de lectura.
func NewStockReaderUseCase(
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	levelRepo repository.StockLevelRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
	transferRepo repository.StockTransferRepository,
) *StockReaderUseCase {
	return &StockReaderUseCase{
		productRepo:    productRepo,
		locationRepo:   locationRepo,
		levelRepo:      levelRepo,
		adjustmentRepo: adjustmentRepo,
		transferRepo:   transferRepo,
		tracer:         otel.Tracer("github.com/jhoicas/stock-ledger-api/inventory"),
	}
}

// GetHistory devuelve ajustes y traslados del producto en una sola lista, del más reciente
// al más antiguo. Los ajustes usan Timestamp y los traslados RequestTimestamp.
func (uc *StockReaderUseCase) GetHistory(ctx context.Context, productID string) ([]dto.HistoryEntryResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "reader.GetHistory", trace.WithAttributes(attribute.String("product.id", productID)))
	defer span.End()

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	adjustments, err := uc.adjustmentRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	transfers, err := uc.transferRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	names, err := uc.locationNames(ctx, adjustments, transfers)
	if err != nil {
		return nil, err
	}

	history := make([]dto.HistoryEntryResponse, 0, len(adjustments)+len(transfers))
	for _, a := range adjustments {
		history = append(history, adjustmentEntry(a, names))
	}
	for _, t := range transfers {
		history = append(history, transferEntry(t, names))
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.After(history[j].Timestamp)
	})
	span.SetAttributes(attribute.Int("history.entries", len(history)))
	return history, nil
}

// GetLowStock productos activos cuyo stock total en todas las ubicaciones es menor que threshold.
func (uc *StockReaderUseCase) GetLowStock(ctx context.Context, threshold int64, includeUnstocked bool) ([]dto.LowStockItemResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "reader.GetLowStock", trace.WithAttributes(
		attribute.Int64("stock.threshold", threshold),
		attribute.Bool("stock.include_unstocked", includeUnstocked),
	))
	defer span.End()

	if threshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	items, err := uc.levelRepo.LowStock(ctx, threshold, includeUnstocked)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toLowStockResponse(i))
	}
	return out, nil
}

// GetStockLevelsForProduct niveles del producto en cada ubicación, ordenados por nombre de ubicación.
func (uc *StockReaderUseCase) GetStockLevelsForProduct(ctx context.Context, productID string) ([]dto.LocationStockResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	levels, err := uc.levelRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationStockResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, toLocationStockResponse(l))
	}
	return out, nil
}

// GetStockLevelsForLocation niveles de cada producto en la ubicación, ordenados por nombre de producto.
func (uc *StockReaderUseCase) GetStockLevelsForLocation(ctx context.Context, locationID string) ([]dto.ProductStockResponse, error) {
	location, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.ErrLocationNotFound
	}
	levels, err := uc.levelRepo.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductStockResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, toProductStockResponse(l))
	}
	return out, nil
}

// locationNames resuelve en una sola consulta los nombres de todas las ubicaciones referenciadas.
func (uc *StockReaderUseCase) locationNames(
	ctx context.Context,
	adjustments []*entity.StockAdjustment,
	transfers []*entity.StockTransfer,
) (map[string]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, a := range adjustments {
		add(a.LocationID)
	}
	for _, t := range transfers {
		add(t.FromLocationID)
		add(t.ToLocationID)
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	locations, err := uc.locationRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range locations {
		names[l.ID] = l.Name
	}
	return names, nil
}

func adjustmentEntry(a *entity.StockAdjustment, names map[string]string) dto.HistoryEntryResponse {
	change, current := a.QuantityChange, a.CurrentStock
	return dto.HistoryEntryResponse{
		Kind:           dto.HistoryKindAdjustment,
		ID:             a.ID,
		Timestamp:      a.Timestamp,
		AdjustmentType: a.Type,
		Location:       &dto.LocationRefResponse{ID: a.LocationID, Name: names[a.LocationID]},
		QuantityChange: &change,
		CurrentStock:   &current,
		Reason:         a.Reason,
		AdjustedBy:     a.AdjustedBy,
	}
}

func transferEntry(t *entity.StockTransfer, names map[string]string) dto.HistoryEntryResponse {
	quantity := t.Quantity
	return dto.HistoryEntryResponse{
		Kind:                dto.HistoryKindTransfer,
		ID:                  t.ID,
		Timestamp:           t.RequestTimestamp,
		FromLocation:        &dto.LocationRefResponse{ID: t.FromLocationID, Name: names[t.FromLocationID]},
		ToLocation:          &dto.LocationRefResponse{ID: t.ToLocationID, Name: names[t.ToLocationID]},
		Quantity:            &quantity,
		Status:              t.Status,
		CompletionTimestamp: t.CompletionTimestamp,
		RequestedBy:         t.RequestedBy,
	}
}
