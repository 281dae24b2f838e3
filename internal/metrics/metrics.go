// Package metrics defines Prometheus metrics for the airdrop ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RewardsGranted counts credited ledger transactions by type
	RewardsGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_rewards_granted_total",
			Help: "Total number of reward transactions credited",
		},
		[]string{"type"},
	)

	// RewardAmount tracks the point amount of credited rewards
	RewardAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_reward_amount",
			Help:    "Point amount of credited rewards",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"type"},
	)

	// DuplicatesRejected counts crediting attempts rejected by the
	// at-most-once and exactly-once guards
	DuplicatesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_duplicates_rejected_total",
			Help: "Total number of duplicate crediting attempts rejected",
		},
		[]string{"type"},
	)

	// WithdrawalsTotal counts withdrawal requests by outcome
	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_withdrawals_total",
			Help: "Total number of withdrawal requests",
		},
		[]string{"status"},
	)

	// RegistrationsTotal counts user registrations
	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_registrations_total",
			Help: "Total number of new user registrations",
		},
	)

	// BalanceDriftDetected tracks users whose cached balance deviated
	// from their transaction sum at the last reconcile run
	BalanceDriftDetected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_balance_drift_users",
			Help: "Users whose cached balance deviated from their transaction sum",
		},
	)
)
