package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Caso 1: historial unificado, más reciente primero, con nombres de ubicación resueltos.
func TestGetHistory_OrdenYNombres(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setInitial(t, productA, locNorth, 10)
	_, err := f.ledger.AdjustStock(ctx, AdjustStockInput{ProductID: productA, LocationID: locNorth, Type: entity.AdjustmentTypeRemove, QuantityChange: -2})
	require.NoError(t, err)
	_, err = f.ledger.TransferStock(ctx, TransferStockInput{ProductID: productA, FromLocationID: locNorth, ToLocationID: locSouth, Quantity: 3})
	require.NoError(t, err)
	f.setInitial(t, productB, locSouth, 1)

	history, err := f.reader.GetHistory(ctx, productA)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, dto.HistoryKindTransfer, history[0].Kind)
	assert.Equal(t, "Bodega Norte", history[0].FromLocation.Name)
	assert.Equal(t, "Bodega Sur", history[0].ToLocation.Name)
	assert.Equal(t, int64(3), *history[0].Quantity)
	assert.Nil(t, history[0].QuantityChange)

	assert.Equal(t, dto.HistoryKindAdjustment, history[1].Kind)
	assert.Equal(t, entity.AdjustmentTypeRemove, history[1].AdjustmentType)
	assert.Equal(t, int64(8), *history[1].CurrentStock)
	assert.Equal(t, "Bodega Norte", history[1].Location.Name)

	assert.Equal(t, entity.AdjustmentTypeInitial, history[2].AdjustmentType)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.After(history[i-1].Timestamp))
	}
}

func TestGetHistory_ProductoSinMovimientosEInexistente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	history, err := f.reader.GetHistory(ctx, productB)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = f.reader.GetHistory(ctx, missingID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// Caso 2: el reporte ignora inactivos, compara con "<" y ordena por total.
func TestGetLowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const inactive = "64b000000000000000000003"
	require.NoError(t, f.store.Products().Create(ctx, &entity.Product{ID: inactive, Name: "Descontinuado", SKU: "DES-1", Price: decimal.Zero}))
	const unstocked = "64b000000000000000000004"
	require.NoError(t, f.store.Products().Create(ctx, &entity.Product{ID: unstocked, Name: "Nuevo", SKU: "NUE-1", Price: decimal.Zero, IsActive: true}))

	f.setInitial(t, productA, locNorth, 3)
	f.setInitial(t, productA, locSouth, 4) // total 7
	f.setInitial(t, productB, locNorth, 2)
	f.setInitial(t, inactive, locNorth, 0)

	items, err := f.reader.GetLowStock(ctx, 7, false)
	require.NoError(t, err)
	require.Len(t, items, 1, "total igual al umbral no es bajo stock")
	assert.Equal(t, productB, items[0].ProductID)
	assert.Equal(t, int64(2), items[0].TotalStock)

	items, err = f.reader.GetLowStock(ctx, 8, false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, productB, items[0].ProductID)
	assert.Equal(t, productA, items[1].ProductID)
	assert.Equal(t, int64(7), items[1].TotalStock)

	items, err = f.reader.GetLowStock(ctx, 8, true)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, unstocked, items[0].ProductID)
	assert.Zero(t, items[0].TotalStock)

	_, err = f.reader.GetLowStock(ctx, -1, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetStockLevels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setInitial(t, productA, locSouth, 1)
	f.setInitial(t, productA, locNorth, 2)
	f.setInitial(t, productB, locNorth, 3)

	byProduct, err := f.reader.GetStockLevelsForProduct(ctx, productA)
	require.NoError(t, err)
	require.Len(t, byProduct, 2)
	assert.Equal(t, "Bodega Norte", byProduct[0].Location.Name)
	assert.Equal(t, int64(2), byProduct[0].Quantity)

	byLocation, err := f.reader.GetStockLevelsForLocation(ctx, locNorth)
	require.NoError(t, err)
	require.Len(t, byLocation, 2)
	assert.Equal(t, "Broca", byLocation[0].Product.Name)
	assert.Equal(t, "Taladro", byLocation[1].Product.Name)

	_, err = f.reader.GetStockLevelsForProduct(ctx, missingID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, err = f.reader.GetStockLevelsForLocation(ctx, missingID)
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}
