package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation and outcome label values.
const (
	OpExportDelta  = "export_delta"
	OpExportMaster = "export_master"
	OpImport       = "import"

	OutcomeExported = "exported"
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"
)

// SyncMetrics records sync-channel activity: delta exports, imports, and the
// per-record outcomes an operator cares about when reconciling terminals.
type SyncMetrics struct {
	duration    *prometheus.HistogramVec
	salesMoved  *prometheus.CounterVec
	adjustments prometheus.Counter
	failures    *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_operation_duration_seconds",
		Help:    "Duration of sync export/import operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	salesMoved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_sales_total",
		Help: "Sales handled by the sync channel, by outcome.",
	}, []string{"outcome"})
	adjustments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_stock_adjustments_total",
		Help: "Stock adjustments applied while merging imported sales.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_operation_failures_total",
		Help: "Failed sync operations.",
	}, []string{"operation"})
	reg.MustRegister(duration, salesMoved, adjustments, failures)
	return &SyncMetrics{
		duration:    duration,
		salesMoved:  salesMoved,
		adjustments: adjustments,
		failures:    failures,
	}
}

// ObserveDuration records the duration for the named operation.
func (s *SyncMetrics) ObserveDuration(operation string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// AddSales counts sales by sync outcome (exported, imported, skipped).
func (s *SyncMetrics) AddSales(outcome string, n int) {
	if s == nil || s.salesMoved == nil || n <= 0 {
		return
	}
	s.salesMoved.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

// AddStockAdjustments counts stock adjustments applied by an import.
func (s *SyncMetrics) AddStockAdjustments(n int) {
	if s == nil || s.adjustments == nil || n <= 0 {
		return
	}
	s.adjustments.Add(float64(n))
}

// IncFailure increments the failure counter for the named operation.
func (s *SyncMetrics) IncFailure(operation string) {
	if s == nil || s.failures == nil {
		return
	}
	s.failures.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
