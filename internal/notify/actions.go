package notify

import (
	"errors"
	"log/slog"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/metrics"
)

var (
	errNotificationNotFound = errors.New("notification not found")
	errNotRecoverable       = errors.New("session is not recoverable")
	errNoTargetFile         = errors.New("no failed file to act on")
	errBadTransition        = errors.New("file is not in a recoverable state")
)

// ExecuteRecovery applies a user or automated recovery action. The matching
// notification is consumed. fileID selects the target file; an empty id
// resolves to the first failed file. Returns true when the action applied
// and processing may continue; cancel deliberately returns false after
// latching the session non-recoverable. Never panics on well-formed input.
func (d *Dispatcher) ExecuteRecovery(sessionID, notificationID string, action domain.ActionKind, fileID string) bool {
	continued := true

	err := d.store.Update(sessionID, func(s *domain.ProcessingSession) error {
		idx := -1
		for i, n := range s.Notifications {
			if n.ID == notificationID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errNotificationNotFound
		}

		if !s.CanRecover {
			return errNotRecoverable
		}

		// Validate before mutating so reject paths leave state untouched.
		var target *domain.SessionFile
		switch action {
		case domain.ActionRetry, domain.ActionSkip, domain.ActionFallback:
			if fileID != "" {
				target = s.FileByID(fileID)
			} else {
				target = s.FirstFailedFile()
			}
			if target == nil {
				return errNoTargetFile
			}
			if target.Status != domain.FileStatusFailed {
				// Includes skipping an already-completed file: a no-op error.
				return errBadTransition
			}
		}

		notif := s.Notifications[idx]
		s.Notifications = append(s.Notifications[:idx], s.Notifications[idx+1:]...)

		switch action {
		case domain.ActionRetry, domain.ActionFallback:
			target.Status = domain.FileStatusPending
			target.RetryCount++
			target.LastProcessed = time.Now()
		case domain.ActionSkip:
			target.Status = domain.FileStatusSkipped
			target.LastProcessed = time.Now()
		case domain.ActionCancel:
			s.CanRecover = false
			continued = false
		case domain.ActionContinue, domain.ActionManual:
			// Acknowledged; consuming the notification is the whole effect.
		}

		slog.Info("recovery action executed",
			"session", sessionID,
			"notification", notif.ID,
			"action", action,
			"file", fileID)
		return nil
	})
	if err != nil {
		slog.Warn("recovery action rejected",
			"session", sessionID,
			"notification", notificationID,
			"action", action,
			"reason", err)
		metrics.RecoveryActionsTotal.WithLabelValues(string(action), "rejected").Inc()
		return false
	}

	outcome := "applied"
	if !continued {
		outcome = "cancelled"
	}
	metrics.RecoveryActionsTotal.WithLabelValues(string(action), outcome).Inc()
	return continued
}

// Dismiss removes a notification without executing any action.
func (d *Dispatcher) Dismiss(sessionID, notificationID string) bool {
	err := d.store.Update(sessionID, func(s *domain.ProcessingSession) error {
		for i, n := range s.Notifications {
			if n.ID == notificationID {
				if !n.Dismissible {
					return errors.New("notification is not dismissible")
				}
				s.Notifications = append(s.Notifications[:i], s.Notifications[i+1:]...)
				return nil
			}
		}
		return errNotificationNotFound
	})
	return err == nil
}
