package stats

import (
	"log/slog"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/metrics"
	"github.com/vietddude/docpipe/internal/session"
)

// Default aggregation windows.
const (
	DefaultActiveWindow  = 1 * time.Hour
	DefaultSessionMaxAge = 24 * time.Hour
)

// Aggregator derives cross-session statistics from the session store and
// expires inactive sessions. It only reads snapshots; live state is never
// mutated outside Cleanup.
type Aggregator struct {
	store         *session.Store
	activeWindow  time.Duration
	sessionMaxAge time.Duration
	now           func() time.Time
}

// NewAggregator creates a statistics aggregator. Zero windows select the
// defaults.
func NewAggregator(store *session.Store, activeWindow, sessionMaxAge time.Duration) *Aggregator {
	if activeWindow == 0 {
		activeWindow = DefaultActiveWindow
	}
	if sessionMaxAge == 0 {
		sessionMaxAge = DefaultSessionMaxAge
	}
	return &Aggregator{
		store:         store,
		activeWindow:  activeWindow,
		sessionMaxAge: sessionMaxAge,
		now:           time.Now,
	}
}

// ErrorStats scans all sessions and aggregates error and recovery counts.
// An error counts as recovered when its owning file reached completed.
func (a *Aggregator) ErrorStats() domain.ErrorStats {
	stats := domain.ErrorStats{
		ErrorsByType: make(map[domain.ErrorCode]int),
	}

	now := a.now()
	totalErrors := 0
	recoveredErrors := 0

	for _, id := range a.store.IDs() {
		s, ok := a.store.Snapshot(id)
		if !ok {
			continue
		}

		stats.TotalSessions++
		if now.Sub(s.LastActivity) <= a.activeWindow {
			stats.ActiveSessions++
		}

		for _, f := range s.Files {
			for _, e := range f.Errors {
				stats.ErrorsByType[e.Code]++
				totalErrors++
				if f.Status == domain.FileStatusCompleted {
					recoveredErrors++
				}
			}
		}
	}

	if totalErrors > 0 {
		stats.RecoverySuccessRate = float64(recoveredErrors) / float64(totalErrors)
	}

	metrics.SessionsTotal.Set(float64(stats.TotalSessions))
	metrics.SessionsActive.Set(float64(stats.ActiveSessions))

	return stats
}

// Cleanup removes sessions inactive for longer than the session TTL and
// returns how many were removed.
func (a *Aggregator) Cleanup() int {
	now := a.now()
	removed := 0

	for _, id := range a.store.IDs() {
		s, ok := a.store.Snapshot(id)
		if !ok {
			continue
		}
		if now.Sub(s.LastActivity) > a.sessionMaxAge {
			if a.store.Remove(id) {
				removed++
				metrics.SessionsExpired.Inc()
			}
		}
	}

	if removed > 0 {
		slog.Info("inactive sessions removed", "count", removed)
	}
	return removed
}

// SetNow overrides the clock. Test hook.
func (a *Aggregator) SetNow(now func() time.Time) {
	a.now = now
}
