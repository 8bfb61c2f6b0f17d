package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expansion-monitor/internal/signals"
)

// Metrics holds the monitor's collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	ScansTotal     prometheus.Counter
	SignalsTotal   *prometheus.CounterVec
	FailuresTotal  *prometheus.CounterVec
	ScanDuration   prometheus.Histogram
	LastScan       prometheus.Gauge
	SymbolsScanned prometheus.Gauge
	NotifyFailures *prometheus.CounterVec
}

// New creates and registers the collectors under namespace
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "scans_total", Help: "Watchlist scans completed",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "signals_total", Help: "Signals produced by tier and action",
		}, []string{"tier", "action"}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "symbol_failures_total", Help: "Symbols skipped by failure kind",
		}, []string{"kind"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "scan_duration_seconds", Help: "Wall time of one scan",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		LastScan: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_scan_timestamp_seconds", Help: "Unix time of the last completed scan",
		}),
		SymbolsScanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "symbols_scanned", Help: "Symbols in the last scan",
		}),
		NotifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "notification_failures_total", Help: "Alert deliveries that failed",
		}, []string{"notifier"}),
	}

	reg.MustRegister(
		m.ScansTotal, m.SignalsTotal, m.FailuresTotal, m.ScanDuration, m.LastScan, m.SymbolsScanned, m.NotifyFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveScan records one finished scan and the signals it produced
func (m *Metrics) ObserveScan(symbols int, duration time.Duration, finished time.Time, ranked []signals.Signal) {
	m.ScansTotal.Inc()
	m.ScanDuration.Observe(duration.Seconds())
	m.LastScan.Set(float64(finished.Unix()))
	m.SymbolsScanned.Set(float64(symbols))

	for _, s := range ranked {
		if s.Action == signals.ActionSkip {
			m.FailuresTotal.WithLabelValues(string(s.Failure)).Inc()
			continue
		}
		m.SignalsTotal.WithLabelValues(string(s.Tier), string(s.Action)).Inc()
	}
}

// Registry exposes the registry for tests and custom gatherers
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
