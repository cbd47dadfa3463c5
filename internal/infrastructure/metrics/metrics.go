package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/opsledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Approval metrics
	ApprovalsCreated  *prometheus.CounterVec
	ApprovalDecisions *prometheus.CounterVec

	// Ledger entry metrics
	EntriesCreated   *prometheus.CounterVec
	EntriesPosted    *prometheus.CounterVec
	EntriesCompleted prometheus.Counter
	EntriesCancelled *prometheus.CounterVec
	EntryAmount      prometheus.Histogram
	PostDuration     prometheus.Histogram
	EntryErrors      *prometheus.CounterVec

	// Account metrics
	AccountsOpened *prometheus.CounterVec

	// Reconciliation metrics
	ReconciliationDiscrepancies *prometheus.GaugeVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished   *prometheus.CounterVec
	EventPublishFails prometheus.Counter
}

// New creates all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// NewWithRegistry creates all Prometheus metrics on reg. A process must
// create its metrics once per registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		ApprovalsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_approvals_created_total",
				Help: "Total approval requests created by category",
			},
			[]string{"category"},
		),
		ApprovalDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_approval_decisions_total",
				Help: "Total approval decisions by resulting status",
			},
			[]string{"status"},
		),

		EntriesCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_entries_created_total",
				Help: "Total ledger entries created by category",
			},
			[]string{"category"},
		),
		EntriesPosted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_entries_posted_total",
				Help: "Total ledger entries posted by reference kind",
			},
			[]string{"reference"},
		),
		EntriesCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_entries_completed_total",
			Help: "Total ledger entries completed",
		}),
		EntriesCancelled: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_entries_cancelled_total",
				Help: "Total ledger entries cancelled, by whether a balance update was reversed",
			},
			[]string{"reversed"},
		),
		EntryAmount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "opsledger_entry_amount_inr",
			Help:    "Posted entry amounts",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}),
		PostDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "opsledger_entry_post_duration_seconds",
			Help:    "Duration of entry posting",
			Buckets: prometheus.DefBuckets,
		}),
		EntryErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_entry_errors_total",
				Help: "Total rejected entry operations by error kind",
			},
			[]string{"operation", "error_type"},
		),

		AccountsOpened: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_accounts_opened_total",
				Help: "Total payable accounts opened by kind",
			},
			[]string{"kind"},
		),

		ReconciliationDiscrepancies: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opsledger_reconciliation_discrepancies",
				Help: "Accounts whose recorded paid amount disagrees with posted entries, from the last report",
			},
			[]string{"kind"},
		),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opsledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RedisOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		AuthFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsledger_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		EventPublishFails: f.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_event_publish_failures_total",
			Help: "Total outbox publish failures",
		}),
	}
}

// ErrorType labels an error for metric series.
func ErrorType(err error) string {
	if err == nil {
		return "none"
	}
	if k := domain.KindOf(err); k != "" {
		return k
	}
	return "internal"
}
