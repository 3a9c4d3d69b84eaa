// Package metrics exposes service counters and client gauges in the
// Prometheus text format.
package metrics

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/aussiebroadwan/customers/internal/customers/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace    = "customers"
	serviceLabel = "customer-service"
	countTimeout = 2 * time.Second
)

// ClientCounter reports client totals for the gauges.
type ClientCounter interface {
	CountClients(ctx context.Context) (int64, error)
	CountActiveClients(ctx context.Context) (int64, error)
}

// Metrics implements service.Observer and serves the registry over HTTP.
type Metrics struct {
	reg    *prometheus.Registry
	ops    *prometheus.CounterVec
	logger *slog.Logger
}

// New registers the operation counter, the client gauges and the Go runtime
// collectors on a fresh registry. Gauges query counter on every scrape.
func New(counter ClientCounter, logger *slog.Logger) *Metrics {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Metrics{
		reg:    prometheus.NewRegistry(),
		logger: logger,
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "operations_total",
			Help:        "Completed business operations.",
			ConstLabels: prometheus.Labels{"service": serviceLabel},
		}, []string{"operation"}),
	}

	m.reg.MustRegister(
		m.ops,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if counter != nil {
		m.reg.MustRegister(
			m.gauge("clients_total", "Number of clients.", "", func(ctx context.Context) (int64, error) {
				return counter.CountClients(ctx)
			}),
			m.gauge("clients_active", "Number of active clients.", "active", func(ctx context.Context) (int64, error) {
				return counter.CountActiveClients(ctx)
			}),
			m.gauge("clients_inactive", "Number of clients that are not active.", "inactive", func(ctx context.Context) (int64, error) {
				total, err := counter.CountClients(ctx)
				if err != nil {
					return 0, err
				}
				active, err := counter.CountActiveClients(ctx)
				if err != nil {
					return 0, err
				}
				return total - active, nil
			}),
		)
	}

	return m
}

// Observe counts one completed operation.
func (m *Metrics) Observe(op service.Operation) {
	m.ops.WithLabelValues(string(op)).Inc()
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

func (m *Metrics) gauge(name, help, status string, count func(context.Context) (int64, error)) prometheus.GaugeFunc {
	labels := prometheus.Labels{"service": serviceLabel}
	if status != "" {
		labels["status"] = status
	}

	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        name,
		Help:        help,
		ConstLabels: labels,
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), countTimeout)
		defer cancel()

		n, err := count(ctx)
		if err != nil {
			m.logger.Warn("metrics: count clients", "gauge", name, "err", err)
			return math.NaN()
		}
		return float64(n)
	})
}

var _ service.Observer = (*Metrics)(nil)
