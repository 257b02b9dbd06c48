// Package metrics defines the custom Prometheus metrics for the auth
// service. It is the single source of truth for metric names, labels, and
// help strings; metrics register with the default registry at import time
// via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// TokenRefreshesTotal counts refresh-token rotations.
// Label:
//   - result: "success", "invalid_token", "error"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of refresh attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// RoleResolutionFailuresTotal counts permission lookups that degraded to an
// empty set. These are warnings, not errors: requests proceed without
// permissions.
// Label:
//   - reason: "missing_ref", "not_found", "lookup_failed"
var RoleResolutionFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_resolution_failures_total",
		Help:      "Total number of role lookups that fell back to empty permissions.",
	},
	[]string{"reason"},
)
