package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el ledger de stock: si fn devuelve error no queda ninguna escritura.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		levelRepo repository.StockLevelRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
		transferRepo repository.StockTransferRepository,
	) error) error
}

// EventPublisher publica eventos del ledger una vez confirmada la transacción.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.LedgerEvent) error
}

// MetricsRecorder registra la duración y el resultado de cada operación del ledger.
type MetricsRecorder interface {
	ObserveLedgerOperation(operation, outcome string, elapsed time.Duration)
}

// NoopPublisher descarta los eventos (sin broker configurado).
type NoopPublisher struct{}

// Publish no hace nada.
func (NoopPublisher) Publish(context.Context, entity.LedgerEvent) error { return nil }

// NoopMetrics descarta las observaciones.
type NoopMetrics struct{}

// ObserveLedgerOperation no hace nada.
func (NoopMetrics) ObserveLedgerOperation(string, string, time.Duration) {}
