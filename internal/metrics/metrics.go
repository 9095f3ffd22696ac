// Package metrics exposes Prometheus counters for membership operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/DhavalSuthar-24/squadup/internal/common"
)

var MembershipOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "squadup",
	Name:      "membership_operations_total",
	Help:      "Membership, follow and invitation mutations by operation and outcome.",
}, []string{"operation", "outcome"})

// Observe records the outcome of one operation and returns err unchanged so
// it can wrap a return statement.
func Observe(operation string, err error) error {
	MembershipOperations.WithLabelValues(operation, Outcome(err)).Inc()
	return err
}

// Outcome is "ok" for nil and the error kind otherwise.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return common.KindOf(err).String()
}
