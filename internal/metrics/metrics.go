package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JournalEntriesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_journal_entries_posted_total",
		Help: "Journal entries appended to the log, labeled by reference type",
	}, []string{"reference_type"})

	JournalEntriesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_journal_entries_rejected_total",
		Help: "Journal drafts rejected before any state change, labeled by reason",
	}, []string{"reason"})

	JournalEntriesReversed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_journal_entries_reversed_total",
		Help: "Journal entries reversed",
	})

	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_payments_recorded_total",
		Help: "Payments recorded against invoices, labeled by invoice type",
	}, []string{"invoice_type"})

	ConsistencyWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_consistency_warnings_total",
		Help: "Reconciliation mismatches surfaced by reports and cache checks",
	}, []string{"code"})

	ReportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_report_duration_seconds",
		Help:    "Time spent building reports",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"report"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})

	SnapshotsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_snapshots_saved_total",
		Help: "Snapshot save attempts, labeled by outcome",
	}, []string{"outcome"})
)

// ObserveReport starts a timer for a report build. Call the returned func when done.
func ObserveReport(report string) func() {
	timer := prometheus.NewTimer(ReportDuration.WithLabelValues(report))
	return func() { timer.ObserveDuration() }
}
