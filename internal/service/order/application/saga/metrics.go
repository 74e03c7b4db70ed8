package saga

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	applyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_apply_total",
		Help: "Reservation passes by direction and outcome.",
	}, []string{"direction", "outcome"})

	adjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_adjustments_total",
		Help: "Individual stock adjustments by direction and outcome.",
	}, []string{"direction", "outcome"})

	compensationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservation_compensation_failures_total",
		Help: "Compensating adjustments that failed and were left for manual reconciliation.",
	})
)
