package domain

import "time"

// FileStatus tracks a file through its processing state machine:
// pending -> processing -> {completed | failed};
// failed -> pending (retry/fallback) or failed -> skipped (skip).
type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusCompleted  FileStatus = "completed"
	FileStatusFailed     FileStatus = "failed"
	FileStatusSkipped    FileStatus = "skipped"
)

// SessionFile is one uploaded document tracked within a session.
type SessionFile struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Status        FileStatus        `json:"status"`
	Stage         Stage             `json:"stage"`
	Errors        []ProcessingError `json:"errors"`
	RetryCount    int               `json:"retry_count"`
	LastProcessed time.Time         `json:"last_processed"`
}

// Clone returns a deep copy of the file.
func (f *SessionFile) Clone() *SessionFile {
	c := *f
	c.Errors = make([]ProcessingError, len(f.Errors))
	copy(c.Errors, f.Errors)
	return &c
}

// FileSpec names a document at session creation time.
type FileSpec struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProcessingSession tracks one user upload batch end-to-end.
type ProcessingSession struct {
	ID              string              `json:"id"`
	CurrentStage    Stage               `json:"current_stage"`
	CompletedStages map[Stage]struct{}  `json:"completed_stages"`
	FailedStages    map[Stage]struct{}  `json:"failed_stages"`
	Files           []*SessionFile      `json:"files"`
	Notifications   []*UserNotification `json:"notifications"`
	StartedAt       time.Time           `json:"started_at"`
	LastActivity    time.Time           `json:"last_activity"`
	CanRecover      bool                `json:"can_recover"`
	StageRetries    map[Stage]int       `json:"stage_retries"`
}

// Clone returns a deep copy with no shared mutable state.
func (s *ProcessingSession) Clone() *ProcessingSession {
	c := *s

	c.CompletedStages = make(map[Stage]struct{}, len(s.CompletedStages))
	for st := range s.CompletedStages {
		c.CompletedStages[st] = struct{}{}
	}

	c.FailedStages = make(map[Stage]struct{}, len(s.FailedStages))
	for st := range s.FailedStages {
		c.FailedStages[st] = struct{}{}
	}

	c.Files = make([]*SessionFile, len(s.Files))
	for i, f := range s.Files {
		c.Files[i] = f.Clone()
	}

	c.Notifications = make([]*UserNotification, len(s.Notifications))
	for i, n := range s.Notifications {
		c.Notifications[i] = n.Clone()
	}

	c.StageRetries = make(map[Stage]int, len(s.StageRetries))
	for st, n := range s.StageRetries {
		c.StageRetries[st] = n
	}

	return &c
}

// FirstFailedFile returns the first file in upload order whose status is
// failed, or nil.
func (s *ProcessingSession) FirstFailedFile() *SessionFile {
	for _, f := range s.Files {
		if f.Status == FileStatusFailed {
			return f
		}
	}
	return nil
}

// FileByID returns the file with the given id, or nil.
func (s *ProcessingSession) FileByID(id string) *SessionFile {
	for _, f := range s.Files {
		if f.ID == id {
			return f
		}
	}
	return nil
}
