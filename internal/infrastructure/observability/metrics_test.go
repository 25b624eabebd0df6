package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_LedgerOperation(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveLedgerOperation("adjust_stock", "ok", 5*time.Millisecond)
	m.ObserveLedgerOperation("adjust_stock", "ok", 3*time.Millisecond)
	m.ObserveLedgerOperation("adjust_stock", "rejected", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ledgerOperationsTotal.WithLabelValues("adjust_stock", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerOperationsTotal.WithLabelValues("adjust_stock", "rejected")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ledgerOperationDuration))
}

func TestMetrics_InstanciasIndependientes(t *testing.T) {
	a := NewMetrics("test")
	b := NewMetrics("test")

	a.SetLowStockProducts(4)
	b.SetLowStockProducts(1)

	assert.Equal(t, 4.0, testutil.ToFloat64(a.lowStockProducts))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.lowStockProducts))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("stock_ledger")
	m.ObserveHTTPRequest("GET", "/api/products/:id", 404, 2*time.Millisecond)
	m.IncEventPublishFailure("stock.adjusted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `stock_ledger_http_requests_total{method="GET",path="/api/products/:id",status="404"} 1`)
	assert.Contains(t, string(body), `stock_ledger_event_publish_failures_total{event_type="stock.adjusted"} 1`)
}
