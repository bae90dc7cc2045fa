package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

const (
	outcomeOK         = "ok"
	outcomeRejected   = "rejected"
	outcomeNoResponse = "no_response"
	outcomeInvalid    = "invalid"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Catalog requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	droppedRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_dropped_records_total",
			Help: "Catalog records dropped because they failed validation",
		},
	)

	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_circuit_breaker_state",
			Help: "Catalog circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, droppedRecordsTotal, breakerState)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
