package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/infra/storage"
)

// CheckpointRepo is an in-memory CheckpointRepository for tests and
// infrastructure-free runs. Checkpoints survive only for the process
// lifetime.
type CheckpointRepo struct {
	mu          sync.RWMutex
	checkpoints map[string][]byte
}

// NewCheckpointRepo creates an empty in-memory checkpoint repository.
func NewCheckpointRepo() *CheckpointRepo {
	return &CheckpointRepo{checkpoints: make(map[string][]byte)}
}

// Save stores a checkpoint, replacing any previous one for the session.
// Serializing through JSON keeps the stored copy independent of the caller.
func (r *CheckpointRepo) Save(ctx context.Context, cp *domain.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkpoints[cp.SessionID] = data
	return nil
}

// Get retrieves the checkpoint for a session.
func (r *CheckpointRepo) Get(ctx context.Context, sessionID string) (*domain.Checkpoint, error) {
	r.mu.RLock()
	data, ok := r.checkpoints[sessionID]
	r.mu.RUnlock()

	if !ok {
		return nil, storage.ErrCheckpointNotFound
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrCheckpointCorrupted, err)
	}
	return &cp, nil
}

// Delete removes a checkpoint. Deleting a missing checkpoint is not an error.
func (r *CheckpointRepo) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkpoints, sessionID)
	return nil
}

// IDs lists all stored session ids.
func (r *CheckpointRepo) IDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.checkpoints))
	for id := range r.checkpoints {
		ids = append(ids, id)
	}
	return ids, nil
}

// Ping always succeeds for the in-memory store.
func (r *CheckpointRepo) Ping(ctx context.Context) error { return nil }

// Corrupt overwrites a stored checkpoint with undecodable bytes. Test hook.
func (r *CheckpointRepo) Corrupt(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkpoints[sessionID] = []byte("{not json")
}
