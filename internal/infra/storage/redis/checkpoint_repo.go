package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/infra/storage"
)

// CheckpointRepo implements storage.CheckpointRepository on Redis. Each
// checkpoint lives under its own key with a TTL; a sorted set indexes
// session ids by checkpoint timestamp for listing and sweeps.
type CheckpointRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCheckpointRepo creates a Redis-backed checkpoint repository. ttl is
// the retention window after which Redis drops the payload on its own.
func NewCheckpointRepo(client *Client, ttl time.Duration) *CheckpointRepo {
	return &CheckpointRepo{rdb: client.rdb, ttl: ttl}
}

func checkpointKey(sessionID string) string {
	return fmt.Sprintf("checkpoint:%s", sessionID)
}

const indexKey = "checkpoints"

// Save stores a checkpoint and indexes it by timestamp.
func (r *CheckpointRepo) Save(ctx context.Context, cp *domain.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := r.rdb.Set(ctx, checkpointKey(cp.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set checkpoint: %w", err)
	}

	if err := r.rdb.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(cp.Timestamp.Unix()),
		Member: cp.SessionID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index checkpoint: %w", err)
	}

	return nil
}

// Get retrieves a checkpoint by session id.
func (r *CheckpointRepo) Get(ctx context.Context, sessionID string) (*domain.Checkpoint, error) {
	data, err := r.rdb.Get(ctx, checkpointKey(sessionID)).Bytes()
	if err == redis.Nil {
		// Payload may have expired while the index entry lingers.
		r.rdb.ZRem(ctx, indexKey, sessionID)
		return nil, storage.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrCheckpointCorrupted, err)
	}
	return &cp, nil
}

// Delete removes a checkpoint and its index entry.
func (r *CheckpointRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, checkpointKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	if err := r.rdb.ZRem(ctx, indexKey, sessionID).Err(); err != nil {
		return fmt.Errorf("failed to unindex checkpoint: %w", err)
	}
	return nil
}

// IDs lists stored session ids, newest checkpoint first.
func (r *CheckpointRepo) IDs(ctx context.Context) ([]string, error) {
	ids, err := r.rdb.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange failed: %w", err)
	}
	return ids, nil
}

// Ping checks the Redis connection.
func (r *CheckpointRepo) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
