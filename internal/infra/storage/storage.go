package storage

import (
	"context"
	"errors"

	"github.com/vietddude/docpipe/internal/core/domain"
)

var (
	// ErrCheckpointNotFound is returned when no checkpoint exists for a session.
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrCheckpointCorrupted is returned when a stored checkpoint cannot be
	// decoded. Callers are expected to delete it.
	ErrCheckpointCorrupted = errors.New("checkpoint corrupted")
)

// CheckpointRepository persists session checkpoints keyed by session id.
// One checkpoint per session; saving overwrites.
type CheckpointRepository interface {
	Save(ctx context.Context, cp *domain.Checkpoint) error
	Get(ctx context.Context, sessionID string) (*domain.Checkpoint, error)
	Delete(ctx context.Context, sessionID string) error

	// IDs lists the session ids of all stored checkpoints, including ones
	// whose payloads no longer decode.
	IDs(ctx context.Context) ([]string, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
