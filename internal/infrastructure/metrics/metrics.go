// Package metrics expone métricas Prometheus del libro de stock y del servidor HTTP.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

var _ ledger.Observer = (*Metrics)(nil)

// Metrics registry propio con los colectores de la aplicación.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	movements       *prometheus.CounterVec
	quantity        *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New crea el registry con métricas de proceso, Go, libro y HTTP.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pasteops_stock_movements_total",
		Help: "Movimientos de stock confirmados por tipo y dirección.",
	}, []string{"type", "direction"})
	quantity := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pasteops_stock_movement_quantity_total",
		Help: "Cantidad movida por tipo y dirección (unidades del material).",
	}, []string{"type", "direction"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pasteops_stock_insufficient_total",
		Help: "Operaciones rechazadas por stock insuficiente, por material.",
	}, []string{"material"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pasteops_http_requests_total",
		Help: "Peticiones HTTP por ruta, método y código.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pasteops_http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP por ruta.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		movements, quantity, rejections, requests, duration,
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		movements:       movements,
		quantity:        quantity,
		rejections:      rejections,
		requestsTotal:   requests,
		requestDuration: duration,
	}
}

// Handler endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Registerer para colectores adicionales (por ejemplo, los del worker).
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *Metrics) Committed(_ context.Context, movements []*entity.StockMovement) {
	for _, mv := range movements {
		m.movements.WithLabelValues(mv.Type, mv.Direction).Inc()
		f, _ := mv.Quantity.Float64()
		m.quantity.WithLabelValues(mv.Type, mv.Direction).Add(f)
	}
}

func (m *Metrics) Rejected(_ context.Context, err *domain.InsufficientStockError) {
	label := err.MaterialCode
	if label == "" {
		label = err.MaterialID
	}
	m.rejections.WithLabelValues(label).Inc()
}

// Middleware registra conteo y duración por ruta declarada (no por path crudo).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.requestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}
