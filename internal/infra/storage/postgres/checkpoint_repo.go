package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/infra/storage"
)

// CheckpointRepo implements storage.CheckpointRepository on PostgreSQL.
// The full snapshot is stored as a jsonb payload; session id and timestamp
// are lifted into columns for listing and sweeps.
type CheckpointRepo struct {
	db *DB
}

// NewCheckpointRepo creates a PostgreSQL checkpoint repository.
func NewCheckpointRepo(db *DB) *CheckpointRepo {
	return &CheckpointRepo{db: db}
}

type checkpointRow struct {
	SessionID string    `db:"session_id"`
	Stage     string    `db:"stage"`
	CreatedAt time.Time `db:"created_at"`
	Payload   []byte    `db:"payload"`
}

// Save upserts the checkpoint for a session.
func (r *CheckpointRepo) Save(ctx context.Context, cp *domain.Checkpoint) error {
	payload, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO checkpoints (session_id, stage, created_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id)
		DO UPDATE SET stage = $2, created_at = $3, payload = $4`,
		cp.SessionID, string(cp.Stage), cp.Timestamp, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Get retrieves the checkpoint for a session.
func (r *CheckpointRepo) Get(ctx context.Context, sessionID string) (*domain.Checkpoint, error) {
	var row checkpointRow
	err := r.db.GetContext(ctx, &row,
		`SELECT session_id, stage, created_at, payload FROM checkpoints WHERE session_id = $1`,
		sessionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(row.Payload, &cp); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrCheckpointCorrupted, err)
	}
	return &cp, nil
}

// Delete removes the checkpoint for a session.
func (r *CheckpointRepo) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM checkpoints WHERE session_id = $1`, sessionID,
	); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// IDs lists stored session ids, newest checkpoint first.
func (r *CheckpointRepo) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT session_id FROM checkpoints ORDER BY created_at DESC`,
	); err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	return ids, nil
}

// Ping checks the database connection.
func (r *CheckpointRepo) Ping(ctx context.Context) error {
	return r.db.Health(ctx)
}
