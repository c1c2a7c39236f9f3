package session

import (
	"sync"
	"testing"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
)

type captureSink struct {
	mu      sync.Mutex
	updates []domain.ProgressUpdate
}

func (c *captureSink) PublishProgress(u domain.ProgressUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, u)
}

func (c *captureSink) last(t *testing.T) domain.ProgressUpdate {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.updates) == 0 {
		t.Fatal("no progress updates published")
	}
	return c.updates[len(c.updates)-1]
}

func TestUpdateProgress_IdempotentCompletion(t *testing.T) {
	st := newStoreWithSession(t)
	tracker := NewTracker(st, nil)

	tracker.UpdateProgress("sess-1", domain.StageValidation, 100, "done", "")
	tracker.UpdateProgress("sess-1", domain.StageValidation, 100, "done again", "")

	s, _ := st.Snapshot("sess-1")
	if len(s.CompletedStages) != 1 {
		t.Fatalf("expected exactly 1 completed stage, got %d", len(s.CompletedStages))
	}
	if _, ok := s.CompletedStages[domain.StageValidation]; !ok {
		t.Error("validation stage missing from completed set")
	}
	if s.CurrentStage != domain.StageValidation {
		t.Errorf("current stage not updated, got %s", s.CurrentStage)
	}
}

func TestUpdateProgress_UnknownSessionIsNoop(t *testing.T) {
	st := NewStore()
	sink := &captureSink{}
	tracker := NewTracker(st, sink)

	// Must not panic and must not publish.
	tracker.UpdateProgress("ghost", domain.StageOCR, 50, "halfway", "")
	if len(sink.updates) != 0 {
		t.Error("no update should be published for an unknown session")
	}
}

func TestUpdateProgress_ClampsPercent(t *testing.T) {
	st := newStoreWithSession(t)
	sink := &captureSink{}
	tracker := NewTracker(st, sink)

	tracker.UpdateProgress("sess-1", domain.StageOCR, 150, "overshoot", "")
	if got := sink.last(t).Progress; got != 100 {
		t.Errorf("expected clamp to 100, got %v", got)
	}

	// 150 clamps to 100 and therefore completes the stage.
	s, _ := st.Snapshot("sess-1")
	if _, ok := s.CompletedStages[domain.StageOCR]; !ok {
		t.Error("clamped 100 percent should complete the stage")
	}

	tracker.UpdateProgress("sess-1", domain.StagePDF, -3, "undershoot", "")
	if got := sink.last(t).Progress; got != 0 {
		t.Errorf("expected clamp to 0, got %v", got)
	}
}

func TestEstimateRemaining(t *testing.T) {
	start := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	s := &domain.ProcessingSession{
		StartedAt: start,
		CompletedStages: map[domain.Stage]struct{}{
			domain.StageUpload:     {},
			domain.StageValidation: {},
		},
	}

	// 2 stages done, halfway through the third: overall = 2.5/10 after
	// 10 minutes elapsed -> 30 minutes remain.
	now := start.Add(10 * time.Minute)
	got := estimateRemaining(s, domain.StageExtraction, 50, now)
	if got != 30*time.Minute {
		t.Errorf("expected 30m, got %v", got)
	}
}

func TestEstimateRemaining_ZeroProgress(t *testing.T) {
	s := &domain.ProcessingSession{
		StartedAt:       time.Now().Add(-time.Hour),
		CompletedStages: map[domain.Stage]struct{}{},
	}
	if got := estimateRemaining(s, domain.StageUpload, 0, time.Now()); got != 0 {
		t.Errorf("expected 0 for zero progress, got %v", got)
	}
}

func TestEstimateRemaining_CurrentStageNotDoubleCounted(t *testing.T) {
	start := time.Now().Add(-10 * time.Minute)
	s := &domain.ProcessingSession{
		StartedAt: start,
		CompletedStages: map[domain.Stage]struct{}{
			domain.StageUpload: {},
		},
	}

	// Upload just reached 100: completed set already holds it, so overall
	// progress must be 1/10, not 2/10.
	got := estimateRemaining(s, domain.StageUpload, 100, time.Now())
	if got < 80*time.Minute || got > 100*time.Minute {
		t.Errorf("expected roughly 90m remaining, got %v", got)
	}
}
