// Package metrics exports service operation metrics to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"propdesk/internal/core"
	"propdesk/pkg/domain"
)

const namespace = "propdesk"

// Prometheus implements core.MetricsRecorder on its own registry.
type Prometheus struct {
	registry   *prometheus.Registry
	duration   *prometheus.HistogramVec
	operations *prometheus.CounterVec
}

var _ core.MetricsRecorder = (*Prometheus)(nil)

// New registers the operation collectors plus the Go and process
// collectors on a fresh registry.
func New() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Prometheus{
		registry: reg,
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of service operations.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"operation"}),
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by outcome.",
		}, []string{"operation", "success"}),
	}
}

// Observe records one completed operation.
func (p *Prometheus) Observe(_ context.Context, operation string, success bool, d time.Duration) {
	p.duration.WithLabelValues(operation).Observe(d.Seconds())
	p.operations.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
}

// TrackSnapshot exposes the size of every collection, read from source at
// scrape time.
func (p *Prometheus) TrackSnapshot(source func() domain.Snapshot) {
	for _, et := range domain.EntityTypes {
		et := et
		p.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "records",
			Help:        "Records currently held per entity type.",
			ConstLabels: prometheus.Labels{"entity": string(et)},
		}, func() float64 { return float64(source().Count(et)) }))
	}
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
