package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActionsAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "econ_actions_accepted_total",
			Help: "Player submissions accepted by the engine",
		},
		[]string{"game"},
	)
	ActionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "econ_actions_rejected_total",
			Help: "Player submissions rejected by validation",
		},
		[]string{"game"},
	)
	RoundsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "econ_rounds_resolved_total",
			Help: "Rounds resolved, by game type and trigger",
		},
		[]string{"game", "trigger"},
	)
	ResolutionDuplicates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "econ_resolution_duplicates_total",
			Help: "Duplicate resolution attempts absorbed by the guard",
		},
	)
	TradesExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "econ_trades_total",
			Help: "Trades executed by market engines",
		},
		[]string{"game"},
	)
)

func init() {
	prometheus.MustRegister(ActionsAccepted)
	prometheus.MustRegister(ActionsRejected)
	prometheus.MustRegister(RoundsResolved)
	prometheus.MustRegister(ResolutionDuplicates)
	prometheus.MustRegister(TradesExecuted)
}
