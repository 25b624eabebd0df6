package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

const sweepTimeout = 2 * time.Minute

// LowStockReader fuente del reporte de bajo stock (StockReaderUseCase).
type LowStockReader interface {
	GetLowStock(ctx context.Context, threshold int64, includeUnstocked bool) ([]dto.LowStockItemResponse, error)
}

// LowStockGauge recibe el número de productos bajo el umbral tras cada barrido.
type LowStockGauge interface {
	SetLowStockProducts(n int)
}

// Scheduler ejecuta el barrido periódico de bajo stock.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	threshold int64
	reader    LowStockReader
	publisher inventory.EventPublisher
	gauge     LowStockGauge
	log       zerolog.Logger
	now       func() time.Time
}

// NewScheduler publisher y gauge pueden ser nil.
func NewScheduler(cfg config.SchedulerConfig, reader LowStockReader, publisher inventory.EventPublisher, gauge LowStockGauge, log zerolog.Logger) *Scheduler {
	if publisher == nil {
		publisher = inventory.NoopPublisher{}
	}
	return &Scheduler{
		cron:      cron.New(),
		spec:      cfg.LowStockCron,
		threshold: cfg.LowStockThreshold,
		reader:    reader,
		publisher: publisher,
		gauge:     gauge,
		log:       log.With().Str("component", "scheduler").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start programa el barrido y arranca el cron. Con expresión vacía no programa nada.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.log.Info().Msg("barrido de bajo stock desactivado")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.runSweep); err != nil {
		return fmt.Errorf("programar barrido de bajo stock %q: %w", s.spec, err)
	}
	s.log.Info().Str("cron", s.spec).Int64("threshold", s.threshold).Msg("barrido de bajo stock programado")
	s.cron.Start()
	return nil
}

// Stop detiene el cron y espera a que termine el barrido en curso (o a que venza ctx).
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("barrido de bajo stock interrumpido por el apagado")
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if _, err := s.SweepLowStock(ctx); err != nil {
		s.log.Error().Err(err).Msg("barrido de bajo stock fallido")
	}
}

// SweepLowStock consulta los productos activos con stock total bajo el umbral (solo los que
// tienen algún nivel), actualiza el gauge y publica un evento por producto.
// Devuelve cuántos productos quedaron bajo el umbral.
func (s *Scheduler) SweepLowStock(ctx context.Context) (int, error) {
	items, err := s.reader.GetLowStock(ctx, s.threshold, false)
	if err != nil {
		return 0, err
	}
	if s.gauge != nil {
		s.gauge.SetLowStockProducts(len(items))
	}

	at := s.now()
	for _, item := range items {
		event := entity.LedgerEvent{
			Type:         entity.EventLowStockDetected,
			ProductID:    item.ProductID,
			Quantity:     s.threshold,
			CurrentStock: item.TotalStock,
			OccurredAt:   at,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warn().Err(err).Str("product_id", item.ProductID).Msg("no se pudo publicar alerta de bajo stock")
		}
	}
	s.log.Info().Int("products", len(items)).Int64("threshold", s.threshold).Msg("barrido de bajo stock completado")
	return len(items), nil
}
