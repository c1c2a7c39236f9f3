package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/docpipe/internal/checkpoint"
	"github.com/vietddude/docpipe/internal/stats"
)

// Sweeper periodically expires inactive sessions and old checkpoints. It
// runs alongside normal operations; each removal locks only one entry.
type Sweeper struct {
	interval    time.Duration
	aggregator  *stats.Aggregator
	checkpoints *checkpoint.Service
}

// NewSweeper creates a sweeper ticking at the given interval (min 1 minute).
func NewSweeper(interval time.Duration, aggregator *stats.Aggregator, checkpoints *checkpoint.Service) *Sweeper {
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Sweeper{
		interval:    interval,
		aggregator:  aggregator,
		checkpoints: checkpoints,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Initial sweep
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sessions := s.aggregator.Cleanup()
	checkpoints := s.checkpoints.CleanupCheckpoints(ctx)
	slog.Debug("sweep finished", "sessions_removed", sessions, "checkpoints_removed", checkpoints)
}
