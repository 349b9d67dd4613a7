package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"InvestorsDaily/internal/loader"
)

// Recorder exposes load and request metrics on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	loadsTotal   *prometheus.CounterVec
	loadDuration prometheus.Histogram
	records      prometheus.Gauge
	anomalies    prometheus.Gauge
	requests     *prometheus.CounterVec
}

// New creates a metrics recorder with a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		loadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investorsdaily_loads_total",
				Help: "Total number of market data load attempts",
			},
			[]string{"result"},
		),
		loadDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "investorsdaily_load_duration_seconds",
				Help:    "Duration of market data loads in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		records: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "investorsdaily_records",
				Help: "Number of records in the last successfully loaded table",
			},
		),
		anomalies: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "investorsdaily_percent_change_anomalies",
				Help: "Records with a non-finite percent change in the last loaded table",
			},
		),
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investorsdaily_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
	}
}

// ObserveLoad implements loader.Observer.
func (r *Recorder) ObserveLoad(evt *loader.LoadEvent) {
	r.loadDuration.Observe(evt.Duration.Seconds())
	if evt.Err != nil {
		r.loadsTotal.WithLabelValues("error").Inc()
		return
	}
	r.loadsTotal.WithLabelValues("ok").Inc()
	r.records.Set(float64(len(evt.Table.Records)))
	r.anomalies.Set(float64(evt.Table.Anomalies))
}

// RecordRequest counts one served request.
func (r *Recorder) RecordRequest(route, status string) {
	r.requests.WithLabelValues(route, status).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
