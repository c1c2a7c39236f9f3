package recovery

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/metrics"
	"github.com/vietddude/docpipe/internal/notify"
	"github.com/vietddude/docpipe/internal/session"
)

// Notifier publishes user notifications without blocking the caller.
type Notifier interface {
	PublishNotification(n *domain.UserNotification)
}

// Engine turns reported processing errors into recovery strategies and
// records them against session state.
type Engine struct {
	store    *session.Store
	notifier Notifier
}

// NewEngine creates a recovery engine.
func NewEngine(store *session.Store, notifier Notifier) *Engine {
	return &Engine{store: store, notifier: notifier}
}

// HandleError records an error against a session (and optionally a file),
// classifies it and emits a notification carrying the chosen strategy.
// fileID may be empty for session-level errors. A missing session or an
// unknown file id yields a terminal abort strategy rather than an error;
// callers never need to guard this call.
func (e *Engine) HandleError(sessionID string, stage domain.Stage, fileID string, perr domain.ProcessingError) domain.RecoveryStrategy {
	var (
		strategy domain.RecoveryStrategy
		notif    *domain.UserNotification
	)

	err := e.store.Update(sessionID, func(s *domain.ProcessingSession) error {
		attempt := 0
		if fileID != "" {
			f := s.FileByID(fileID)
			if f == nil {
				return fmt.Errorf("%w: %s", session.ErrFileNotFound, fileID)
			}
			attempt = f.RetryCount
			f.Errors = append(f.Errors, perr)
			// Failed is reachable only from pending/processing; a stale
			// report must not re-open a terminal file.
			switch f.Status {
			case domain.FileStatusPending, domain.FileStatusProcessing:
				f.Status = domain.FileStatusFailed
				f.Stage = stage
				f.LastProcessed = time.Now()
			}
		} else {
			// Session-level error: the attempt count lives on the stage.
			attempt = s.StageRetries[stage]
			s.StageRetries[stage]++
		}

		s.FailedStages[stage] = struct{}{}

		strategy = Classify(perr, attempt)
		notif = notify.NewNotification(perr, strategy, stage)
		s.Notifications = append(s.Notifications, notif)
		return nil
	})
	if err != nil {
		slog.Warn("error report rejected",
			"session", sessionID, "stage", stage, "file", fileID,
			"code", perr.Code, "reason", err)
		return domain.RecoveryStrategy{
			Type:        domain.StrategyAbort,
			Description: "Session or file no longer exists; processing cannot continue",
			Automated:   false,
		}
	}

	metrics.ErrorsTotal.WithLabelValues(string(perr.Code)).Inc()
	metrics.StrategiesTotal.WithLabelValues(string(strategy.Type)).Inc()

	if e.notifier != nil {
		// Subscribers get their own copy; the stored one stays mutable
		// only under the session lock.
		e.notifier.PublishNotification(notif.Clone())
	}

	slog.Info("processing error handled",
		"session", sessionID,
		"stage", stage,
		"file", fileID,
		"code", perr.Code,
		"strategy", strategy.Type,
		"automated", strategy.Automated)

	return strategy
}
