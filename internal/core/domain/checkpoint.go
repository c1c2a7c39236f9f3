package domain

import "time"

// Checkpoint is a durable point-in-time snapshot of a session. It shares
// no mutable state with the live session once created.
type Checkpoint struct {
	SessionID       string             `json:"session_id"`
	Stage           Stage              `json:"stage"`
	Timestamp       time.Time          `json:"timestamp"`
	CompletedStages []Stage            `json:"completed_stages"`
	Files           []SessionFile      `json:"files"`
	Notifications   []UserNotification `json:"notifications"`
}

// NewCheckpoint snapshots a session at the given stage. Files are deep
// copied; only error-type notifications are worth persisting.
func NewCheckpoint(s *ProcessingSession, stage Stage, now time.Time) *Checkpoint {
	cp := &Checkpoint{
		SessionID: s.ID,
		Stage:     stage,
		Timestamp: now,
	}

	// Keep stage order stable across snapshots.
	for _, st := range StageOrder {
		if _, ok := s.CompletedStages[st]; ok {
			cp.CompletedStages = append(cp.CompletedStages, st)
		}
	}

	cp.Files = make([]SessionFile, len(s.Files))
	for i, f := range s.Files {
		cp.Files[i] = *f.Clone()
	}

	for _, n := range s.Notifications {
		if n.Type == NotificationError {
			cp.Notifications = append(cp.Notifications, *n.Clone())
		}
	}

	return cp
}

// RecoverableSession is a stored checkpoint annotated with the live
// session's recoverability.
type RecoverableSession struct {
	SessionID  string    `json:"session_id"`
	Stage      Stage     `json:"stage"`
	Timestamp  time.Time `json:"timestamp"`
	CanRecover bool      `json:"can_recover"`
}
