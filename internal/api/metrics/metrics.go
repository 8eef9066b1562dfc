// Package metrics defines and registers all custom Prometheus metrics for the
// campaign API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on import via promauto;
// the /metrics endpoint exposes them together with the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "campaigns"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - operation: "login" or "register"
//   - result: "success", "invalid_credentials", "duplicate", "invalid", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// TokenRejectionsTotal counts bearer tokens refused by the auth middleware.
// Label:
//   - reason: "missing", "malformed" or "invalid"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of requests rejected for a missing or invalid bearer token.",
	},
	[]string{"reason"},
)

// ── Login recorder metrics ────────────────────────────────────────────────────

// LoginQueueDepth tracks the number of last-login updates waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var LoginQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "login_queue_depth",
		Help:      "Current number of last-login updates pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// LoginUpdatesTotal counts last-login updates by outcome.
// Label:
//   - result: "applied", "failed" or "dropped" (queue full)
var LoginUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_updates_total",
		Help:      "Total number of last-login updates, by result.",
	},
	[]string{"result"},
)

// ── Campaign metrics ──────────────────────────────────────────────────────────

// CampaignMutationsTotal counts create, update and delete requests.
// Labels:
//   - operation: "create", "update" or "delete"
//   - result: "success", "replay", "forbidden", "not_found", "invalid", "error"
var CampaignMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "campaign_mutations_total",
		Help:      "Total number of campaign mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// CampaignListDuration measures how long list queries take.
// Label:
//   - sort_by: the normalized sort field
var CampaignListDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "campaign_list_duration_seconds",
		Help:      "Duration of campaign list queries, including the total count.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"sort_by"},
)
