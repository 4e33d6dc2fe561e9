// Package metrics registers the engine's Prometheus instrumentation.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "fleetledger_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	batchesTotal *prometheus.CounterVec
	batchLatency *prometheus.HistogramVec

	settlementsTotal  *prometheus.CounterVec
	redirectionsTotal prometheus.Counter

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers the engine metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		batchesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "batches_total",
				Help: "Total settlement batches by result",
			},
			[]string{"result"},
		)
		batchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "batch_latency_seconds",
				Help:    "Settlement batch execution latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		settlementsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlements_total",
				Help: "Total settlement instructions by type and result",
			},
			[]string{"type", "result"},
		)
		redirectionsTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "redirections_total",
				Help: "Total obligation settlements redirected to the oldest eligible",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total statement/receipt exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Statement/receipt export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			batchesTotal,
			batchLatency,
			settlementsTotal,
			redirectionsTotal,
			exportTotal,
			exportLatency,
		)
	})
}

// ObserveBatch records one batch execution.
func ObserveBatch(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if batchesTotal != nil {
		batchesTotal.WithLabelValues(result).Inc()
	}
	if batchLatency != nil {
		batchLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncSettlement increments the per-instruction counter.
func IncSettlement(typ, result string) {
	if typ == "" {
		typ = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if settlementsTotal != nil {
		settlementsTotal.WithLabelValues(typ, result).Inc()
	}
}

// IncRedirection counts one oldest-first substitution.
func IncRedirection() {
	if redirectionsTotal != nil {
		redirectionsTotal.Inc()
	}
}

// ObserveExport records one statement or receipt export.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
