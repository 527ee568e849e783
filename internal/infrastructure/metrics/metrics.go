package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Expense metrics
	ExpensesCreated prometheus.Counter
	ExpensesUpdated prometheus.Counter
	ExpensesDeleted prometheus.Counter
	ExpenseAmount   prometheus.Histogram
	SplitsComputed  *prometheus.CounterVec

	// Payment metrics
	PaymentsCreated prometheus.Counter
	PaymentsDeleted prometheus.Counter
	PaymentAmount   prometheus.Histogram
	PaymentRejected *prometheus.CounterVec

	// Group metrics
	GroupsCreated   prometheus.Counter
	MembersJoined   prometheus.Counter
	MembersRemoved  prometheus.Counter
	InvitesCreated  prometheus.Counter
	InvitesAccepted prometheus.Counter

	// Balance metrics
	SettlementsSuggested prometheus.Histogram
	BalanceCacheHits     *prometheus.CounterVec

	// API metrics
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	SSEConnections prometheus.Gauge

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics against the given registerer. Tests pass
// their own registry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Expense metrics
		ExpensesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_expenses_created_total",
			Help: "Total number of expenses created",
		}),
		ExpensesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_expenses_updated_total",
			Help: "Total number of expenses updated",
		}),
		ExpensesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_expenses_deleted_total",
			Help: "Total number of expenses deleted",
		}),
		ExpenseAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_expense_amount",
			Help:    "Expense amounts",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 10000},
		}),
		SplitsComputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_splits_computed_total",
				Help: "Total split computations by policy",
			},
			[]string{"split_type"},
		),

		// Payment metrics
		PaymentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_payments_created_total",
			Help: "Total number of settlement payments recorded",
		}),
		PaymentsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_payments_deleted_total",
			Help: "Total number of settlement payments deleted",
		}),
		PaymentAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_payment_amount",
			Help:    "Settlement payment amounts",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 10000},
		}),
		PaymentRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_payments_rejected_total",
				Help: "Total payments rejected by the balance guard, by reason",
			},
			[]string{"reason"},
		),

		// Group metrics
		GroupsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_groups_created_total",
			Help: "Total number of groups created",
		}),
		MembersJoined: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_members_joined_total",
			Help: "Total number of members joining groups",
		}),
		MembersRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_members_removed_total",
			Help: "Total number of members removed from groups",
		}),
		InvitesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_invites_created_total",
			Help: "Total number of invites created",
		}),
		InvitesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_invites_accepted_total",
			Help: "Total number of invites accepted",
		}),

		// Balance metrics
		SettlementsSuggested: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_settlements_suggested",
			Help:    "Number of transfers in suggested settlement plans",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		BalanceCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_balance_cache_total",
				Help: "Balance summary cache lookups by outcome",
			},
			[]string{"outcome"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "splitledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SSEConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "splitledger_sse_connections",
			Help: "Current number of open event stream connections",
		}),

		// Database metrics
		DBQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "splitledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "splitledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "splitledger_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
