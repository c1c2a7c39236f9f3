package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrorsTotal counts processing errors by code.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docpipe_errors_total",
			Help: "Total number of processing errors reported",
		},
		[]string{"code"},
	)

	// RecoveryActionsTotal counts executed recovery actions by kind and outcome.
	RecoveryActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docpipe_recovery_actions_total",
			Help: "Total number of executed recovery actions",
		},
		[]string{"action", "outcome"},
	)

	// StrategiesTotal counts classified recovery strategies by type.
	StrategiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docpipe_strategies_total",
			Help: "Total number of recovery strategies produced",
		},
		[]string{"type"},
	)

	// NotificationsDropped counts notifications dropped on full subscriber buffers.
	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docpipe_notifications_dropped_total",
			Help: "Notifications dropped because a subscriber buffer was full",
		},
	)

	// CheckpointOps counts checkpoint store operations by kind and outcome.
	CheckpointOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docpipe_checkpoint_ops_total",
			Help: "Checkpoint store operations",
		},
		[]string{"op", "outcome"},
	)

	// SessionsActive tracks sessions touched within the active window.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docpipe_sessions_active",
			Help: "Sessions with activity within the active window",
		},
	)

	// SessionsTotal tracks all live sessions.
	SessionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docpipe_sessions_total",
			Help: "All live sessions in the store",
		},
	)

	// SessionsExpired counts sessions removed by the sweeper.
	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docpipe_sessions_expired_total",
			Help: "Sessions removed after exceeding the inactivity TTL",
		},
	)
)
