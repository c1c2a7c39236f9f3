package stats

import (
	"testing"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/session"
)

var base = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func addError(t *testing.T, st *session.Store, sessionID, fileID string, code domain.ErrorCode, status domain.FileStatus) {
	t.Helper()
	err := st.Update(sessionID, func(s *domain.ProcessingSession) error {
		f := s.FileByID(fileID)
		f.Errors = append(f.Errors, domain.ProcessingError{Code: code, Message: "boom"})
		f.Status = status
		return nil
	})
	if err != nil {
		t.Fatalf("failed to seed error: %v", err)
	}
}

func TestErrorStats(t *testing.T) {
	st := session.NewStore()
	st.SetNow(func() time.Time { return base })

	for _, id := range []string{"sess-1", "sess-2"} {
		err := st.Initialize(id, []domain.FileSpec{
			{ID: "f-0", Name: "a.pdf"},
			{ID: "f-1", Name: "b.docx"},
		})
		if err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
	}

	// Two network errors on a file that eventually completed, one OCR error
	// on a file still failed: 2 of 3 errors recovered.
	addError(t, st, "sess-1", "f-0", domain.ErrorCodeNetwork, domain.FileStatusCompleted)
	addError(t, st, "sess-1", "f-0", domain.ErrorCodeNetwork, domain.FileStatusCompleted)
	addError(t, st, "sess-2", "f-1", domain.ErrorCodeOCR, domain.FileStatusFailed)

	a := NewAggregator(st, 0, 0)
	a.SetNow(func() time.Time { return base })

	stats := a.ErrorStats()
	if stats.TotalSessions != 2 || stats.ActiveSessions != 2 {
		t.Errorf("expected 2/2 sessions, got %d/%d", stats.TotalSessions, stats.ActiveSessions)
	}
	if stats.ErrorsByType[domain.ErrorCodeNetwork] != 2 || stats.ErrorsByType[domain.ErrorCodeOCR] != 1 {
		t.Errorf("unexpected error counts: %v", stats.ErrorsByType)
	}
	want := 2.0 / 3.0
	if diff := stats.RecoverySuccessRate - want; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("expected success rate %.3f, got %.3f", want, stats.RecoverySuccessRate)
	}
}

func TestErrorStats_ActiveWindow(t *testing.T) {
	st := session.NewStore()
	st.SetNow(func() time.Time { return base })
	if err := st.Initialize("sess-1", nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	a := NewAggregator(st, time.Hour, 24*time.Hour)
	a.SetNow(func() time.Time { return base.Add(2 * time.Hour) })

	stats := a.ErrorStats()
	if stats.TotalSessions != 1 || stats.ActiveSessions != 0 {
		t.Errorf("2h-idle session must not count as active, got %d/%d",
			stats.TotalSessions, stats.ActiveSessions)
	}
	if stats.RecoverySuccessRate != 0 {
		t.Errorf("no errors means zero success rate, got %v", stats.RecoverySuccessRate)
	}
}

func TestCleanup(t *testing.T) {
	st := session.NewStore()
	st.SetNow(func() time.Time { return base })
	if err := st.Initialize("old", nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	st.SetNow(func() time.Time { return base.Add(24 * time.Hour) })
	if err := st.Initialize("fresh", nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	a := NewAggregator(st, time.Hour, 24*time.Hour)
	a.SetNow(func() time.Time { return base.Add(25 * time.Hour) })

	if removed := a.Cleanup(); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, ok := st.Snapshot("old"); ok {
		t.Error("25h-idle session should be expired")
	}
	if _, ok := st.Snapshot("fresh"); !ok {
		t.Error("1h-idle session must survive")
	}
}
