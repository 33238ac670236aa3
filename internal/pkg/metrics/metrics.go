// Package metrics defines and registers all custom Prometheus metrics for the
// library tracker. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// ── Catalog metrics ───────────────────────────────────────────────────────────

// BookOperationsTotal counts successful catalog mutations.
// Label:
//   - operation: "add", "borrow", "return" or "delete"
var BookOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "book_operations_total",
		Help:      "Total number of successful book catalog operations, by operation.",
	},
	[]string{"operation"},
)

// BookOperationRejectionsTotal counts catalog operations rejected by a business rule.
// Labels:
//   - operation: "add", "borrow", "return" or "delete"
//   - reason: "missing_field", "book_not_found", "user_not_found",
//     "already_borrowed" or "not_borrowed"
var BookOperationRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "book_operation_rejections_total",
		Help:      "Total number of rejected book catalog operations.",
	},
	[]string{"operation", "reason"},
)

// IdempotentReplaysTotal counts add-book requests answered from the idempotency store.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of add-book requests replayed via Idempotency-Key.",
	},
)

// ── Directory metrics ─────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful registrations.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered users.",
	},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "not_found", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreWriteErrorsTotal counts failed document writes.
// Label:
//   - backend: "json", "mongo" or "sqlite"
var StoreWriteErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_write_errors_total",
		Help:      "Total number of failed store writes, by backend.",
	},
	[]string{"backend"},
)

// StoreReadFallbacksTotal counts reads of the JSON document that failed and
// fell back to an empty document.
var StoreReadFallbacksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_read_fallbacks_total",
		Help:      "Total number of JSON document reads that degraded to an empty document.",
	},
)

// StoreOperationDuration measures how long a whole-document read-modify-write takes.
var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of store mutations from read to completed write.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"backend"},
)
