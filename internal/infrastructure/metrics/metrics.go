// Package metrics expone métricas Prometheus del ledger, la sincronización y la API HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/reconcile"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

const namespace = "stock_ledger"

var (
	_ inventory.Recorder = (*Metrics)(nil)
	_ reconcile.Recorder = (*Metrics)(nil)
)

// Metrics agrupa los colectores sobre un registro propio (no el global).
type Metrics struct {
	registry *prometheus.Registry

	movementsApplied  *prometheus.CounterVec
	movementsRejected *prometheus.CounterVec
	conflictRetries   prometheus.Counter
	safetyAlerts      *prometheus.CounterVec
	syncItems         *prometheus.CounterVec
	requests          *prometheus.CounterVec
	requestLatency    *prometheus.HistogramVec
}

// New registra todos los colectores, incluidos los de proceso y runtime de Go.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		movementsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_applied_total",
			Help:      "Movimientos confirmados en el ledger por tipo.",
		}, []string{"kind"}),
		movementsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_rejected_total",
			Help:      "Movimientos rechazados por tipo y motivo.",
		}, []string{"kind", "reason"}),
		conflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflict_retries_total",
			Help:      "Reintentos por conflicto de concurrencia.",
		}),
		safetyAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "safety_alerts_total",
			Help:      "Alertas de stock de seguridad; emitted=false si la ventana de silencio las suprimió.",
		}, []string{"emitted"}),
		syncItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_items_total",
			Help:      "Ítems de lotes offline por resultado.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.movementsApplied,
		m.movementsRejected,
		m.conflictRetries,
		m.safetyAlerts,
		m.syncItems,
		m.requests,
		m.requestLatency,
	)
	return m
}

// Registry devuelve el registro (tests y exportadores adicionales).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) MovementApplied(kind entity.MovementKind) {
	m.movementsApplied.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) MovementRejected(kind entity.MovementKind, reason string) {
	m.movementsRejected.WithLabelValues(string(kind), reason).Inc()
}

func (m *Metrics) ConflictRetried() { m.conflictRetries.Inc() }

func (m *Metrics) SafetyAlert(emitted bool) {
	m.safetyAlerts.WithLabelValues(strconv.FormatBool(emitted)).Inc()
}

func (m *Metrics) SyncItem(outcome reconcile.Outcome) {
	m.syncItems.WithLabelValues(string(outcome)).Inc()
}

// Handler sirve /metrics en Fiber.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware mide peticiones por ruta registrada (no por path crudo, para acotar la cardinalidad).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.requestLatency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
