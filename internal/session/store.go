package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
)

var (
	// ErrSessionExists is returned when initializing a duplicate session id.
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrFileNotFound is returned when a file id is unknown within a session.
	ErrFileNotFound = errors.New("file not found")
)

// entry pairs a session with its own mutex so mutations on different
// sessions never contend.
type entry struct {
	mu sync.Mutex
	s  *domain.ProcessingSession
}

// Store owns the authoritative in-memory state of all active sessions.
// The table lock is held only for lookup, insert and remove; per-session
// mutation runs under the entry mutex.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Initialize creates a session with all files pending at the upload stage.
func (st *Store) Initialize(id string, files []domain.FileSpec) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; ok {
		return fmt.Errorf("%w: %s", ErrSessionExists, id)
	}

	now := st.now()
	s := &domain.ProcessingSession{
		ID:              id,
		CurrentStage:    domain.StageUpload,
		CompletedStages: make(map[domain.Stage]struct{}),
		FailedStages:    make(map[domain.Stage]struct{}),
		StartedAt:       now,
		LastActivity:    now,
		CanRecover:      true,
		StageRetries:    make(map[domain.Stage]int),
	}
	for _, spec := range files {
		s.Files = append(s.Files, &domain.SessionFile{
			ID:            spec.ID,
			Name:          spec.Name,
			Status:        domain.FileStatusPending,
			Stage:         domain.StageUpload,
			LastProcessed: now,
		})
	}

	st.sessions[id] = &entry{s: s}
	return nil
}

func (st *Store) lookup(id string) (*entry, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.sessions[id]
	return e, ok
}

// Snapshot returns a deep copy of the session, or false when unknown.
func (st *Store) Snapshot(id string) (*domain.ProcessingSession, bool) {
	e, ok := st.lookup(id)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.Clone(), true
}

// Update runs fn on the session under its lock. LastActivity is refreshed
// only when fn succeeds; reject paths must leave the session untouched.
// Returns ErrSessionNotFound for unknown ids.
func (st *Store) Update(id string, fn func(*domain.ProcessingSession) error) error {
	e, ok := st.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(e.s); err != nil {
		return err
	}
	e.s.LastActivity = st.now()
	return nil
}

// Restore inserts a previously checkpointed session. Fails if the id is
// already live.
func (st *Store) Restore(s *domain.ProcessingSession) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[s.ID]; ok {
		return fmt.Errorf("%w: %s", ErrSessionExists, s.ID)
	}
	st.sessions[s.ID] = &entry{s: s}
	return nil
}

// Remove deletes a session, reporting whether it existed.
func (st *Store) Remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// IDs returns the ids of all live sessions.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// MarkFile transitions a file's status for the external pipeline (e.g.
// pending->processing, processing->completed). Illegal transitions are
// rejected without mutating the session.
func (st *Store) MarkFile(id, fileID string, status domain.FileStatus, stage domain.Stage) error {
	return st.Update(id, func(s *domain.ProcessingSession) error {
		f := s.FileByID(fileID)
		if f == nil {
			return fmt.Errorf("%w: %s", ErrFileNotFound, fileID)
		}
		if !legalTransition(f.Status, status) {
			return fmt.Errorf("illegal file transition %s -> %s", f.Status, status)
		}
		f.Status = status
		f.Stage = stage
		f.LastProcessed = st.now()
		return nil
	})
}

func legalTransition(from, to domain.FileStatus) bool {
	switch from {
	case domain.FileStatusPending:
		return to == domain.FileStatusProcessing
	case domain.FileStatusProcessing:
		return to == domain.FileStatusCompleted || to == domain.FileStatusFailed
	case domain.FileStatusFailed:
		return to == domain.FileStatusPending || to == domain.FileStatusSkipped
	default:
		return false
	}
}

// SetNow overrides the clock. Test hook.
func (st *Store) SetNow(now func() time.Time) {
	st.now = now
}
