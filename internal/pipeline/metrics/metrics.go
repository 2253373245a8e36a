package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ingestion pipeline.
// Tracks per-company outcomes and the store apply critical path.
type Metrics struct {
	CompaniesProcessed prometheus.Counter
	CompaniesFailed    prometheus.Counter
	RowsPlanned        prometheus.Counter
	ItemErrors         prometheus.Counter
	ApplyDuration      prometheus.Histogram
}

// New creates a new Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		CompaniesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cbso_companies_processed_total",
			Help: "Total number of companies reconciled successfully",
		}),
		CompaniesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cbso_companies_failed_total",
			Help: "Total number of companies whose change-set was aborted",
		}),
		RowsPlanned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cbso_rows_planned_total",
			Help: "Total number of rows handed to the store across all tables",
		}),
		ItemErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cbso_item_errors_total",
			Help: "Total number of skipped records and filings",
		}),
		ApplyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cbso_store_apply_duration_seconds",
			Help:    "Duration of change-set application (one transaction per company)",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveApply records the duration of one change-set application.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveApply(start time.Time) {
	m.ApplyDuration.Observe(time.Since(start).Seconds())
}
