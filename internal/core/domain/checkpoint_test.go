package domain

import (
	"testing"
	"time"
)

func sampleSession() *ProcessingSession {
	return &ProcessingSession{
		ID:           "sess-1",
		CurrentStage: StageOCR,
		CompletedStages: map[Stage]struct{}{
			StageValidation: {},
			StageUpload:     {},
		},
		FailedStages: map[Stage]struct{}{StageOCR: {}},
		Files: []*SessionFile{
			{ID: "f-0", Name: "report.pdf", Status: FileStatusFailed, Errors: []ProcessingError{
				{Code: ErrorCodeOCR, Message: "blurry scan", Severity: SeverityMedium},
			}},
			{ID: "f-1", Name: "slides.pptx", Status: FileStatusCompleted},
		},
		Notifications: []*UserNotification{
			{ID: "n-0", Type: NotificationError, Title: "Text Recognition Problem during ocr"},
			{ID: "n-1", Type: NotificationInfo, Title: "progress"},
		},
		CanRecover:   true,
		StageRetries: map[Stage]int{StageOCR: 1},
	}
}

func TestNewCheckpoint(t *testing.T) {
	s := sampleSession()
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	cp := NewCheckpoint(s, StageOCR, now)

	if cp.SessionID != "sess-1" || cp.Stage != StageOCR || !cp.Timestamp.Equal(now) {
		t.Errorf("unexpected header %s/%s/%v", cp.SessionID, cp.Stage, cp.Timestamp)
	}

	// Completed stages come out in pipeline order, not map order.
	want := []Stage{StageUpload, StageValidation}
	if len(cp.CompletedStages) != len(want) {
		t.Fatalf("expected %d completed stages, got %d", len(want), len(cp.CompletedStages))
	}
	for i, st := range want {
		if cp.CompletedStages[i] != st {
			t.Errorf("stage %d: expected %s, got %s", i, st, cp.CompletedStages[i])
		}
	}

	// Only error notifications are persisted.
	if len(cp.Notifications) != 1 || cp.Notifications[0].ID != "n-0" {
		t.Errorf("expected only the error notification, got %+v", cp.Notifications)
	}

	// Files are detached from the live session.
	cp.Files[0].Status = FileStatusPending
	cp.Files[0].Errors[0].Message = "mutated"
	if s.Files[0].Status != FileStatusFailed || s.Files[0].Errors[0].Message != "blurry scan" {
		t.Error("checkpoint shares file state with the session")
	}
}

func TestSessionClone_NoSharedState(t *testing.T) {
	s := sampleSession()
	c := s.Clone()

	c.Files[0].RetryCount = 9
	c.CompletedStages[StageOCR] = struct{}{}
	c.StageRetries[StageOCR] = 9
	c.Notifications[0].Title = "mutated"

	if s.Files[0].RetryCount != 0 {
		t.Error("clone shares files")
	}
	if _, ok := s.CompletedStages[StageOCR]; ok {
		t.Error("clone shares the completed-stage set")
	}
	if s.StageRetries[StageOCR] != 1 {
		t.Error("clone shares the retry map")
	}
	if s.Notifications[0].Title == "mutated" {
		t.Error("clone shares notifications")
	}
}

func TestFirstFailedFileAndLookup(t *testing.T) {
	s := sampleSession()

	if f := s.FirstFailedFile(); f == nil || f.ID != "f-0" {
		t.Errorf("expected f-0, got %+v", f)
	}
	if f := s.FileByID("f-1"); f == nil || f.Name != "slides.pptx" {
		t.Errorf("expected slides.pptx, got %+v", f)
	}
	if s.FileByID("ghost") != nil {
		t.Error("unknown id should be nil")
	}

	s.Files[0].Status = FileStatusSkipped
	if s.FirstFailedFile() != nil {
		t.Error("no failed file should mean nil")
	}
}
