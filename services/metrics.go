package services

import "github.com/prometheus/client_golang/prometheus"

var (
	streakAdvancesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_advances_total",
			Help: "Total number of persisted streak transitions",
		},
	)
	streakFreezesConsumedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_freezes_consumed_total",
			Help: "Total number of streak freezes consumed",
		},
	)
	streakRestoresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_restores_total",
			Help: "Total number of successful manual streak restores",
		},
	)
	streakMilestonesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_milestones_total",
			Help: "Milestone events emitted, by milestone value",
		},
		[]string{"milestone"},
	)
)

// InitMetrics registers the streak counters. Call this from main.go
func InitMetrics() {
	prometheus.MustRegister(streakAdvancesTotal)
	prometheus.MustRegister(streakFreezesConsumedTotal)
	prometheus.MustRegister(streakRestoresTotal)
	prometheus.MustRegister(streakMilestonesTotal)
}
