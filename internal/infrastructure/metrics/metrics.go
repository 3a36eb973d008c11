package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsCreated prometheus.Counter
	TransactionsUpdated prometheus.Counter
	TransactionsDeleted prometheus.Counter
	TransactionAmount   *prometheus.HistogramVec
	LedgerDuration      *prometheus.HistogramVec
	LedgerErrors        *prometheus.CounterVec
	LedgerRetries       prometheus.Counter

	// Account metrics
	AccountsCreated    prometheus.Counter
	BalanceAdjustments prometheus.Counter
	AccountOperations  *prometheus.CounterVec
	Discrepancies      prometheus.Gauge

	// Summary cache metrics
	SummaryCacheHits   prometheus.Counter
	SummaryCacheMisses prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventErrors     prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all metrics with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		TransactionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "budgetledger_transactions_created_total",
			Help: "Total number of ledger transactions created",
		}),
		TransactionsUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "budgetledger_transactions_updated_total",
			Help: "Total number of ledger transactions updated",
		}),
		TransactionsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "budgetledger_transactions_deleted_total",
			Help: "Total number of ledger transactions deleted",
		}),
		TransactionAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budgetledger_transaction_amount",
				Help:    "Transaction amounts by kind",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"kind"},
		),
		LedgerDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budgetledger_ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		LedgerErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetledger_ledger_errors_total",
				Help: "Total number of ledger errors by operation and type",
			},
			[]string{"operation", "error_type"},
		),
		LedgerRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "budgetledger_ledger_retries_total",
			Help: "Total number of ledger units retried after a store conflict",
		}),

		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "budgetledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		BalanceAdjustments: f.NewCounter(prometheus.CounterOpts{
			Name: "budgetledger_balance_adjustments_total",
			Help: "Total number of account balance writes made by the ledger",
		}),
		AccountOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetledger_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),
		Discrepancies: f.NewGauge(prometheus.GaugeOpts{
			Name: "budgetledger_reconciliation_discrepancies",
			Help: "Accounts whose balance disagreed with the ledger at the last reconciliation",
		}),

		SummaryCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "budgetledger_summary_cache_hits_total",
			Help: "Summary requests served from cache",
		}),
		SummaryCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "budgetledger_summary_cache_misses_total",
			Help: "Summary requests computed from the store",
		}),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budgetledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetledger_outbox_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		EventErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "budgetledger_outbox_publish_errors_total",
			Help: "Total outbox publish failures",
		}),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
