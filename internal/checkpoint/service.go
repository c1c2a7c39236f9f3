package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/infra/storage"
	"github.com/vietddude/docpipe/internal/metrics"
	"github.com/vietddude/docpipe/internal/notify"
	"github.com/vietddude/docpipe/internal/session"
)

var (
	// ErrNotRecoverable is returned once a session was cancelled by the user.
	ErrNotRecoverable = errors.New("session is not recoverable")

	// ErrSessionTooOld is returned when the session's last activity is
	// outside the recovery window.
	ErrSessionTooOld = errors.New("session too old to recover")
)

// Default retention and eligibility windows.
const (
	DefaultRestoreWindow    = 24 * time.Hour
	DefaultSessionMaxAge    = 24 * time.Hour
	DefaultCheckpointMaxAge = 7 * 24 * time.Hour
)

// Notifier publishes user notifications without blocking the caller.
type Notifier interface {
	PublishNotification(n *domain.UserNotification)
}

// Service snapshots sessions to durable storage and drives session-level
// recovery. Snapshots are taken under the session lock; persistence runs
// outside it.
type Service struct {
	store    *session.Store
	repo     storage.CheckpointRepository
	notifier Notifier

	restoreWindow    time.Duration
	sessionMaxAge    time.Duration
	checkpointMaxAge time.Duration
	now              func() time.Time
}

// Config holds the service's eligibility and retention windows. Zero
// values select the defaults.
type Config struct {
	RestoreWindow    time.Duration
	SessionMaxAge    time.Duration
	CheckpointMaxAge time.Duration
}

// DefaultConfig returns the standard windows.
func DefaultConfig() Config {
	return Config{
		RestoreWindow:    DefaultRestoreWindow,
		SessionMaxAge:    DefaultSessionMaxAge,
		CheckpointMaxAge: DefaultCheckpointMaxAge,
	}
}

// NewService creates a checkpoint & recovery service.
func NewService(cfg Config, store *session.Store, repo storage.CheckpointRepository, notifier Notifier) *Service {
	if cfg.RestoreWindow == 0 {
		cfg.RestoreWindow = DefaultRestoreWindow
	}
	if cfg.SessionMaxAge == 0 {
		cfg.SessionMaxAge = DefaultSessionMaxAge
	}
	if cfg.CheckpointMaxAge == 0 {
		cfg.CheckpointMaxAge = DefaultCheckpointMaxAge
	}
	return &Service{
		store:            store,
		repo:             repo,
		notifier:         notifier,
		restoreWindow:    cfg.RestoreWindow,
		sessionMaxAge:    cfg.SessionMaxAge,
		checkpointMaxAge: cfg.CheckpointMaxAge,
		now:              time.Now,
	}
}

// CreateCheckpoint snapshots a session at the given stage and persists it.
// Returns false on any failure; existing state is never corrupted.
func (svc *Service) CreateCheckpoint(ctx context.Context, sessionID string, stage domain.Stage) bool {
	snap, ok := svc.store.Snapshot(sessionID)
	if !ok {
		slog.Warn("checkpoint requested for unknown session", "session", sessionID)
		metrics.CheckpointOps.WithLabelValues("create", "failed").Inc()
		return false
	}

	cp := domain.NewCheckpoint(snap, stage, svc.now())

	// The snapshot is already detached from live state; the write happens
	// without holding any session lock.
	if err := svc.repo.Save(ctx, cp); err != nil {
		slog.Error("failed to persist checkpoint", "session", sessionID, "error", err)
		metrics.CheckpointOps.WithLabelValues("create", "failed").Inc()
		return false
	}

	metrics.CheckpointOps.WithLabelValues("create", "ok").Inc()
	slog.Info("checkpoint created", "session", sessionID, "stage", stage)
	return true
}

// RestoreFromCheckpoint loads the stored snapshot for a session. Expired
// (older than the restore window) and corrupted checkpoints are deleted
// and reported as absent. Only storage faults yield a non-nil error.
func (svc *Service) RestoreFromCheckpoint(ctx context.Context, sessionID string) (*domain.Checkpoint, error) {
	cp, err := svc.repo.Get(ctx, sessionID)
	if errors.Is(err, storage.ErrCheckpointNotFound) {
		return nil, nil
	}
	if errors.Is(err, storage.ErrCheckpointCorrupted) {
		slog.Warn("deleting corrupted checkpoint", "session", sessionID)
		_ = svc.repo.Delete(ctx, sessionID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	if svc.now().Sub(cp.Timestamp) > svc.restoreWindow {
		slog.Info("checkpoint outside restore window, deleting",
			"session", sessionID, "age", svc.now().Sub(cp.Timestamp))
		_ = svc.repo.Delete(ctx, sessionID)
		return nil, nil
	}

	metrics.CheckpointOps.WithLabelValues("restore", "ok").Inc()
	return cp, nil
}

// RestoreSession reinstates a checkpointed session into the live store.
// This is the one place the service mutates live state. Fails when no
// usable checkpoint exists or the session is already live.
func (svc *Service) RestoreSession(ctx context.Context, sessionID string) (bool, error) {
	cp, err := svc.RestoreFromCheckpoint(ctx, sessionID)
	if err != nil || cp == nil {
		return false, err
	}

	now := svc.now()
	s := &domain.ProcessingSession{
		ID:              cp.SessionID,
		CurrentStage:    cp.Stage,
		CompletedStages: make(map[domain.Stage]struct{}, len(cp.CompletedStages)),
		FailedStages:    make(map[domain.Stage]struct{}),
		StartedAt:       cp.Timestamp,
		LastActivity:    now,
		CanRecover:      true,
		StageRetries:    make(map[domain.Stage]int),
	}
	for _, st := range cp.CompletedStages {
		s.CompletedStages[st] = struct{}{}
	}
	for i := range cp.Files {
		f := cp.Files[i]
		s.Files = append(s.Files, &f)
	}
	for i := range cp.Notifications {
		n := cp.Notifications[i]
		s.Notifications = append(s.Notifications, &n)
	}

	if err := svc.store.Restore(s); err != nil {
		return false, fmt.Errorf("failed to reinstate session: %w", err)
	}

	slog.Info("session restored from checkpoint", "session", sessionID, "stage", cp.Stage)
	return true, nil
}

// RecoveryOptions controls RecoverSession behavior.
type RecoveryOptions struct {
	SkipFailedFiles     bool
	RetryFailedStages   bool
	MaxRecoveryAttempts int
}

// RecoveryResult summarizes what RecoverSession did.
type RecoveryResult struct {
	Retried     int
	Skipped     int
	FailedFiles []string
}

// RecoverSession re-queues or skips a session's failed files. Rejects
// missing, cancelled and stale sessions without mutating anything.
func (svc *Service) RecoverSession(ctx context.Context, sessionID string, opts RecoveryOptions) (*RecoveryResult, error) {
	result := &RecoveryResult{}
	var notif *domain.UserNotification

	err := svc.store.Update(sessionID, func(s *domain.ProcessingSession) error {
		if !s.CanRecover {
			return ErrNotRecoverable
		}
		if svc.now().Sub(s.LastActivity) > svc.sessionMaxAge {
			return fmt.Errorf("%w: last activity %s", ErrSessionTooOld,
				s.LastActivity.Format(time.RFC3339))
		}

		now := svc.now()
		for _, f := range s.Files {
			if f.Status != domain.FileStatusFailed {
				continue
			}
			switch {
			case opts.SkipFailedFiles:
				f.Status = domain.FileStatusSkipped
				f.LastProcessed = now
				result.Skipped++
			case opts.RetryFailedStages && f.RetryCount < opts.MaxRecoveryAttempts:
				f.Status = domain.FileStatusPending
				f.RetryCount++
				f.LastProcessed = now
				result.Retried++
			default:
				result.FailedFiles = append(result.FailedFiles, f.Name)
			}
		}

		if opts.RetryFailedStages {
			s.FailedStages = make(map[domain.Stage]struct{})
		}

		notif = notify.NewInfoNotification(
			"Session Recovered",
			fmt.Sprintf("Processing resumed: %d file(s) re-queued, %d skipped, %d unrecoverable",
				result.Retried, result.Skipped, len(result.FailedFiles)),
			s.CurrentStage,
		)
		s.Notifications = append(s.Notifications, notif)
		return nil
	})
	if err != nil {
		metrics.CheckpointOps.WithLabelValues("recover", "rejected").Inc()
		return nil, err
	}

	if svc.notifier != nil {
		svc.notifier.PublishNotification(notif.Clone())
	}

	metrics.CheckpointOps.WithLabelValues("recover", "ok").Inc()
	slog.Info("session recovered",
		"session", sessionID,
		"retried", result.Retried,
		"skipped", result.Skipped,
		"unrecoverable", len(result.FailedFiles))
	return result, nil
}

// CleanupCheckpoints deletes checkpoints older than the retention window
// or whose payloads no longer decode. Returns the number deleted.
func (svc *Service) CleanupCheckpoints(ctx context.Context) int {
	ids, err := svc.repo.IDs(ctx)
	if err != nil {
		slog.Error("failed to list checkpoints for cleanup", "error", err)
		return 0
	}

	deleted := 0
	for _, id := range ids {
		cp, err := svc.repo.Get(ctx, id)
		switch {
		case errors.Is(err, storage.ErrCheckpointNotFound):
			continue
		case errors.Is(err, storage.ErrCheckpointCorrupted):
			// Unparseable data is unrecoverable either way.
		case err != nil:
			slog.Warn("failed to read checkpoint during cleanup", "session", id, "error", err)
			continue
		case svc.now().Sub(cp.Timestamp) <= svc.checkpointMaxAge:
			continue
		}

		if err := svc.repo.Delete(ctx, id); err != nil {
			slog.Warn("failed to delete expired checkpoint", "session", id, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		slog.Info("expired checkpoints removed", "count", deleted)
	}
	return deleted
}

// RecoverableSessions lists all stored checkpoints, newest first, each
// annotated with the live session's recoverability. A checkpoint whose
// session is gone counts as recoverable.
func (svc *Service) RecoverableSessions(ctx context.Context) ([]domain.RecoverableSession, error) {
	ids, err := svc.repo.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	out := make([]domain.RecoverableSession, 0, len(ids))
	for _, id := range ids {
		cp, err := svc.repo.Get(ctx, id)
		if err != nil {
			continue
		}

		canRecover := true
		if live, ok := svc.store.Snapshot(id); ok {
			canRecover = live.CanRecover
		}

		out = append(out, domain.RecoverableSession{
			SessionID:  cp.SessionID,
			Stage:      cp.Stage,
			Timestamp:  cp.Timestamp,
			CanRecover: canRecover,
		})
	}

	// Not all backends return ids newest-first.
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// SetNow overrides the clock. Test hook.
func (svc *Service) SetNow(now func() time.Time) {
	svc.now = now
}
