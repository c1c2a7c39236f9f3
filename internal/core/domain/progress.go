package domain

import "time"

// ProgressUpdate is published to the presentation layer on every progress
// report.
type ProgressUpdate struct {
	SessionID              string        `json:"session_id"`
	Stage                  Stage         `json:"stage"`
	Progress               float64       `json:"progress"`
	Message                string        `json:"message"`
	Details                string        `json:"details,omitempty"`
	EstimatedTimeRemaining time.Duration `json:"estimated_time_remaining,omitempty"`
}

// ErrorStats aggregates error and recovery counts across all sessions.
type ErrorStats struct {
	TotalSessions       int               `json:"total_sessions"`
	ActiveSessions      int               `json:"active_sessions"`
	ErrorsByType        map[ErrorCode]int `json:"errors_by_type"`
	RecoverySuccessRate float64           `json:"recovery_success_rate"`
}
