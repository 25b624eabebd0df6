package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

var _ inventory.MetricsRecorder = (*Metrics)(nil)

// Metrics colectores Prometheus del servicio, registrados en un registry propio
// (cada instancia es independiente; los tests pueden crear varias).
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	ledgerOperationsTotal   *prometheus.CounterVec
	ledgerOperationDuration *prometheus.HistogramVec

	lowStockProducts     prometheus.Gauge
	eventPublishFailures *prometheus.CounterVec
}

// NewMetrics crea y registra los colectores con el prefijo namespace (ej. "stock_ledger").
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total de peticiones HTTP",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duración de las peticiones HTTP en segundos",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ledgerOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Operaciones del ledger por tipo y resultado",
			},
			[]string{"operation", "outcome"},
		),
		ledgerOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_operation_duration_seconds",
				Help:      "Duración de las operaciones del ledger en segundos",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		lowStockProducts: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "low_stock_products",
				Help:      "Productos activos bajo el umbral en el último barrido",
			},
		),
		eventPublishFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_publish_failures_total",
				Help:      "Eventos del ledger que no se pudieron publicar",
			},
			[]string{"event_type"},
		),
	}
}

// ObserveLedgerOperation implementa inventory.MetricsRecorder.
func (m *Metrics) ObserveLedgerOperation(operation, outcome string, elapsed time.Duration) {
	m.ledgerOperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.ledgerOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveHTTPRequest registra una petición; path debe ser la ruta registrada, no la URL concreta.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}

// SetLowStockProducts fija el gauge con el resultado del último barrido.
func (m *Metrics) SetLowStockProducts(n int) {
	m.lowStockProducts.Set(float64(n))
}

// IncEventPublishFailure cuenta un evento descartado por error del broker.
func (m *Metrics) IncEventPublishFailure(eventType string) {
	m.eventPublishFailures.WithLabelValues(eventType).Inc()
}

// Registry expone el registry (para tests o colectores adicionales).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler handler HTTP de /metrics para este registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
