package session

import (
	"log/slog"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
)

// ProgressSink receives progress updates for the presentation layer.
// Implementations must not block the caller.
type ProgressSink interface {
	PublishProgress(update domain.ProgressUpdate)
}

// Tracker advances a session's current stage and computes time-remaining
// estimates from stage completion.
type Tracker struct {
	store *Store
	sink  ProgressSink
}

// NewTracker creates a progress tracker publishing to sink. A nil sink
// disables the feed.
func NewTracker(store *Store, sink ProgressSink) *Tracker {
	return &Tracker{store: store, sink: sink}
}

// UpdateProgress records progress for a stage. At 100 percent the stage is
// added to the completed set (idempotent). Unknown sessions are ignored so
// stale callers cannot crash the pipeline.
func (t *Tracker) UpdateProgress(id string, stage domain.Stage, percent float64, message, details string) {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	var eta time.Duration
	err := t.store.Update(id, func(s *domain.ProcessingSession) error {
		s.CurrentStage = stage
		if percent >= 100 {
			s.CompletedStages[stage] = struct{}{}
		}
		eta = estimateRemaining(s, stage, percent, t.store.now())
		return nil
	})
	if err != nil {
		// Stale or racy call; by contract a no-op.
		slog.Debug("progress update for unknown session", "session", id, "stage", stage)
		return
	}

	if t.sink != nil {
		t.sink.PublishProgress(domain.ProgressUpdate{
			SessionID:              id,
			Stage:                  stage,
			Progress:               percent,
			Message:                message,
			Details:                details,
			EstimatedTimeRemaining: eta,
		})
	}
}

// estimateRemaining extrapolates from elapsed time and overall progress:
// elapsed/overall - elapsed. The current stage is excluded from the
// completed count so a just-finished stage is not counted twice.
func estimateRemaining(s *domain.ProcessingSession, stage domain.Stage, percent float64, now time.Time) time.Duration {
	completed := 0
	for st := range s.CompletedStages {
		if st != stage {
			completed++
		}
	}

	overall := (float64(completed) + percent/100) / float64(domain.StageCount)
	if overall <= 0 {
		return 0
	}

	elapsed := now.Sub(s.StartedAt)
	remaining := time.Duration(float64(elapsed)/overall) - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
