package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

type stubReader struct {
	items               []dto.LowStockItemResponse
	err                 error
	gotThreshold        int64
	gotIncludeUnstocked bool
}

func (r *stubReader) GetLowStock(_ context.Context, threshold int64, includeUnstocked bool) ([]dto.LowStockItemResponse, error) {
	r.gotThreshold, r.gotIncludeUnstocked = threshold, includeUnstocked
	return r.items, r.err
}

type recordingPublisher struct {
	events []entity.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e entity.LedgerEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type gauge struct{ value int }

func (g *gauge) SetLowStockProducts(n int) { g.value = n }

func TestSweepLowStock_PublicaUnEventoPorProducto(t *testing.T) {
	reader := &stubReader{items: []dto.LowStockItemResponse{
		{ProductID: "p1", TotalStock: 0, Locations: 1},
		{ProductID: "p2", TotalStock: 4, Locations: 2},
	}}
	pub := &recordingPublisher{}
	g := &gauge{}
	s := NewScheduler(config.SchedulerConfig{LowStockThreshold: 5}, reader, pub, g, zerolog.Nop())
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return at }

	n, err := s.SweepLowStock(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 2, g.value)
	assert.Equal(t, int64(5), reader.gotThreshold)
	assert.False(t, reader.gotIncludeUnstocked)
	require.Len(t, pub.events, 2)
	assert.Equal(t, entity.EventLowStockDetected, pub.events[1].Type)
	assert.Equal(t, "p2", pub.events[1].ProductID)
	assert.Equal(t, int64(4), pub.events[1].CurrentStock)
	assert.Equal(t, at, pub.events[1].OccurredAt)
}

func TestSweepLowStock_FalloDePublicacionNoCorta(t *testing.T) {
	reader := &stubReader{items: []dto.LowStockItemResponse{{ProductID: "p1"}, {ProductID: "p2"}}}
	pub := &recordingPublisher{err: errors.New("sin broker")}
	s := NewScheduler(config.SchedulerConfig{LowStockThreshold: 1}, reader, pub, nil, zerolog.Nop())

	n, err := s.SweepLowStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, pub.events, 2)
}

func TestSweepLowStock_ErrorDeLectura(t *testing.T) {
	g := &gauge{value: 9}
	s := NewScheduler(config.SchedulerConfig{}, &stubReader{err: errors.New("db")}, nil, g, zerolog.Nop())

	_, err := s.SweepLowStock(context.Background())
	require.Error(t, err)
	assert.Equal(t, 9, g.value, "el gauge no cambia si la consulta falla")
}

func TestStart_ExpresionInvalida(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{LowStockCron: "no es cron"}, &stubReader{}, nil, nil, zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestStart_SinExpresionNoPrograma(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{}, &stubReader{}, nil, nil, zerolog.Nop())
	require.NoError(t, s.Start())
	assert.Empty(t, s.cron.Entries())
	s.Stop(context.Background())
}

func TestStart_ProgramaYDetiene(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{LowStockCron: "@every 1h"}, &stubReader{}, nil, nil, zerolog.Nop())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
