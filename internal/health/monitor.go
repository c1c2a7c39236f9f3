package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/infra/storage"
	"github.com/vietddude/docpipe/internal/session"
)

// Status grades overall engine health.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// Report is the detailed health snapshot.
type Report struct {
	Status               Status    `json:"status"`
	Sessions             int       `json:"sessions"`
	SessionsWithFailures int       `json:"sessions_with_failures"`
	PendingNotifications int       `json:"pending_notifications"`
	CheckpointStoreUp    bool      `json:"checkpoint_store_up"`
	CheckedAt            time.Time `json:"checked_at"`
}

// Monitor aggregates health from the session store and checkpoint store.
type Monitor struct {
	store *session.Store
	repo  storage.CheckpointRepository

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport Report
}

// NewMonitor creates a health monitor.
func NewMonitor(store *session.Store, repo storage.CheckpointRepository) *Monitor {
	return &Monitor{store: store, repo: repo}
}

// Check performs a health check, rate limited to once per 10s.
func (m *Monitor) Check(ctx context.Context) Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCheck) < 10*time.Second && !m.lastCheck.IsZero() {
		return m.lastReport
	}

	report := Report{
		Status:            StatusHealthy,
		CheckpointStoreUp: true,
		CheckedAt:         time.Now(),
	}

	for _, id := range m.store.IDs() {
		s, ok := m.store.Snapshot(id)
		if !ok {
			continue
		}
		report.Sessions++
		report.PendingNotifications += len(s.Notifications)
		if hasFailure(s) {
			report.SessionsWithFailures++
		}
	}

	if m.repo != nil {
		if err := m.repo.Ping(ctx); err != nil {
			report.CheckpointStoreUp = false
			report.Status = StatusCritical
		}
	}

	if report.Status == StatusHealthy &&
		report.Sessions > 0 &&
		report.SessionsWithFailures*2 > report.Sessions {
		report.Status = StatusDegraded
	}

	m.lastCheck = report.CheckedAt
	m.lastReport = report
	return report
}

func hasFailure(s *domain.ProcessingSession) bool {
	if len(s.FailedStages) > 0 {
		return true
	}
	for _, f := range s.Files {
		if f.Status == domain.FileStatusFailed {
			return true
		}
	}
	return false
}
