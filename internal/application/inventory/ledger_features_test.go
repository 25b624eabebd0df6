package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

type ledgerTestContext struct {
	store     *memory.Store
	ledger    *inventory.StockLedgerUseCase
	reader    *inventory.StockReaderUseCase
	products  map[string]string
	locations map[string]string
	seq       int
	lowStock  int
	err       error
}

func (c *ledgerTestContext) reset() {
	c.store = memory.MustNewStore()
	c.ledger = inventory.NewStockLedgerUseCase(memory.NewTxRunner(c.store), c.store.Products(), c.store.Locations(), nil, nil, zerolog.Nop())
	c.reader = inventory.NewStockReaderUseCase(c.store.Products(), c.store.Locations(), c.store.StockLevels(), c.store.Adjustments(), c.store.Transfers())
	c.products = make(map[string]string)
	c.locations = make(map[string]string)
	c.seq = 0
	c.lowStock = 0
	c.err = nil
}

func (c *ledgerTestContext) nextID(prefix string) string {
	c.seq++
	return fmt.Sprintf("%s%022x", prefix, c.seq)
}

func (c *ledgerTestContext) anActiveProduct(name, sku string) error {
	id := c.nextID("b1")
	c.products[name] = id
	return c.store.Products().Create(context.Background(), &entity.Product{
		ID: id, Name: name, SKU: sku, Price: decimal.NewFromInt(10), IsActive: true,
	})
}

func (c *ledgerTestContext) theLocations(first, second string) error {
	for _, name := range []string{first, second} {
		id := c.nextID("c1")
		c.locations[name] = id
		if err := c.store.Locations().Create(context.Background(), &entity.Location{ID: id, Name: name}); err != nil {
			return err
		}
	}
	return nil
}

func (c *ledgerTestContext) iSetInitialStock(product, location string, qty int) error {
	_, c.err = c.ledger.SetInitialStock(context.Background(), inventory.SetInitialStockInput{
		ProductID: c.products[product], LocationID: c.locations[location], Quantity: int64(qty),
	})
	return nil
}

func (c *ledgerTestContext) productHasUnits(product string, qty int, location string) error {
	if err := c.iSetInitialStock(product, location, qty); err != nil {
		return err
	}
	return c.err
}

func (c *ledgerTestContext) iAdjust(product, location, adjustmentType string, change int) error {
	_, c.err = c.ledger.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: c.products[product], LocationID: c.locations[location],
		Type: adjustmentType, QuantityChange: int64(change),
	})
	return nil
}

func (c *ledgerTestContext) iTransfer(qty int, product, from, to string) error {
	_, c.err = c.ledger.TransferStock(context.Background(), inventory.TransferStockInput{
		ProductID: c.products[product], FromLocationID: c.locations[from], ToLocationID: c.locations[to],
		Quantity: int64(qty),
	})
	return nil
}

func (c *ledgerTestContext) iQueryLowStock(threshold int) error {
	items, err := c.reader.GetLowStock(context.Background(), int64(threshold), false)
	if err != nil {
		return err
	}
	c.lowStock = len(items)
	return nil
}

func (c *ledgerTestContext) stockIs(product, location string, want int) error {
	if c.err != nil && !errors.Is(c.err, domain.ErrInvalidState) && !errors.Is(c.err, domain.ErrInvalidInput) {
		return fmt.Errorf("operación previa falló: %w", c.err)
	}
	level, err := c.store.StockLevels().Get(context.Background(), c.products[product], c.locations[location])
	if err != nil {
		return err
	}
	if level == nil {
		return fmt.Errorf("no existe nivel de stock para %s en %s", product, location)
	}
	if level.Quantity != int64(want) {
		return fmt.Errorf("se esperaba stock %d, se obtuvo %d", want, level.Quantity)
	}
	return nil
}

func (c *ledgerTestContext) totalStockIs(product string, want int) error {
	levels, err := c.reader.GetStockLevelsForProduct(context.Background(), c.products[product])
	if err != nil {
		return err
	}
	var total int64
	for _, l := range levels {
		total += l.Quantity
	}
	if total != int64(want) {
		return fmt.Errorf("se esperaba total %d, se obtuvo %d", want, total)
	}
	return nil
}

func (c *ledgerTestContext) historyHasEntries(product string, want int) error {
	history, err := c.reader.GetHistory(context.Background(), c.products[product])
	if err != nil {
		return err
	}
	if len(history) != want {
		return fmt.Errorf("se esperaban %d movimientos, se obtuvieron %d", want, len(history))
	}
	return nil
}

func (c *ledgerTestContext) failsWith(target error) func() error {
	return func() error {
		if c.err == nil {
			return errors.New("se esperaba un error y la operación tuvo éxito")
		}
		if !errors.Is(c.err, target) {
			return fmt.Errorf("se esperaba %v, se obtuvo %v", target, c.err)
		}
		return nil
	}
}

func (c *ledgerTestContext) reportContains(want int) error {
	if c.lowStock != want {
		return fmt.Errorf("se esperaban %d productos, se obtuvieron %d", want, c.lowStock)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &ledgerTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Dado
	ctx.Step(`^un producto activo "([^"]*)" con SKU "([^"]*)"$`, tc.anActiveProduct)
	ctx.Step(`^las ubicaciones "([^"]*)" y "([^"]*)"$`, tc.theLocations)
	ctx.Step(`^que "([^"]*)" tiene (\d+) unidades en "([^"]*)"$`, tc.productHasUnits)

	// Cuando
	ctx.Step(`^fijo el stock inicial de "([^"]*)" en "([^"]*)" a (\d+)$`, tc.iSetInitialStock)
	ctx.Step(`^ajusto "([^"]*)" en "([^"]*)" con tipo "([^"]*)" y cambio (-?\d+)$`, tc.iAdjust)
	ctx.Step(`^traslado (\d+) unidades de "([^"]*)" desde "([^"]*)" hacia "([^"]*)"$`, tc.iTransfer)
	ctx.Step(`^consulto los productos con menos de (\d+) unidades$`, tc.iQueryLowStock)

	// Entonces
	ctx.Step(`^el stock de "([^"]*)" en "([^"]*)" es (\d+)$`, tc.stockIs)
	ctx.Step(`^el stock total de "([^"]*)" es (\d+)$`, tc.totalStockIs)
	ctx.Step(`^el historial de "([^"]*)" tiene (\d+) movimientos$`, tc.historyHasEntries)
	ctx.Step(`^la operación falla por stock insuficiente$`, tc.failsWith(domain.ErrInsufficientStock))
	ctx.Step(`^la operación falla por entrada inválida$`, tc.failsWith(domain.ErrInvalidInput))
	ctx.Step(`^el reporte contiene (\d+) productos$`, tc.reportContains)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features/stock_ledger.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
