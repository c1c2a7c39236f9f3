package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/docpipe/internal/checkpoint"
	"github.com/vietddude/docpipe/internal/core/config"
	"github.com/vietddude/docpipe/internal/core/worker"
	"github.com/vietddude/docpipe/internal/health"
	"github.com/vietddude/docpipe/internal/infra/storage"
	"github.com/vietddude/docpipe/internal/infra/storage/memory"
	"github.com/vietddude/docpipe/internal/infra/storage/postgres"
	redisclient "github.com/vietddude/docpipe/internal/infra/storage/redis"
	"github.com/vietddude/docpipe/internal/notify"
	"github.com/vietddude/docpipe/internal/recovery"
	"github.com/vietddude/docpipe/internal/session"
	"github.com/vietddude/docpipe/internal/stats"

	"github.com/pressly/goose/v3"
)

// App is the composition root owning every engine component. The pipeline
// orchestrator embeds it and calls the exported components directly.
type App struct {
	cfg config.AppConfig

	Store       *session.Store
	Tracker     *session.Tracker
	Dispatcher  *notify.Dispatcher
	Engine      *recovery.Engine
	Checkpoints *checkpoint.Service
	Stats       *stats.Aggregator

	sweeper      *worker.Sweeper
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// NewApp wires the engine. Checkpoint storage backend selection: database
// URL wins, then redis URL, else in-memory.
func NewApp(cfg config.AppConfig) (*App, error) {
	app := &App{cfg: cfg, log: slog.Default()}

	var repo storage.CheckpointRepository
	switch {
	case cfg.Database.URL != "":
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations; goose needs the raw *sql.DB under sqlx.
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		app.db = db
		repo = postgres.NewCheckpointRepo(db)
		slog.Info("Using PostgreSQL checkpoint storage")

	case cfg.Redis.URL != "":
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		app.redisClient = client
		repo = redisclient.NewCheckpointRepo(client, cfg.Pipeline.CheckpointTTL)
		slog.Info("Using Redis checkpoint storage")

	default:
		repo = memory.NewCheckpointRepo()
		slog.Info("Using in-memory checkpoint storage; checkpoints will not survive restarts")
	}

	app.Store = session.NewStore()
	app.Dispatcher = notify.NewDispatcher(app.Store, cfg.Pipeline.NotificationBuffer)
	app.Tracker = session.NewTracker(app.Store, app.Dispatcher)
	app.Engine = recovery.NewEngine(app.Store, app.Dispatcher)
	app.Checkpoints = checkpoint.NewService(checkpoint.Config{
		RestoreWindow:    cfg.Pipeline.RestoreWindow,
		SessionMaxAge:    cfg.Pipeline.SessionTTL,
		CheckpointMaxAge: cfg.Pipeline.CheckpointTTL,
	}, app.Store, repo, app.Dispatcher)
	app.Stats = stats.NewAggregator(app.Store, cfg.Pipeline.ActiveWindow, cfg.Pipeline.SessionTTL)

	app.sweeper = worker.NewSweeper(cfg.Pipeline.SweepInterval, app.Stats, app.Checkpoints)

	monitor := health.NewMonitor(app.Store, repo)
	app.healthServer = health.NewServer(monitor, cfg.Server.Port)

	return app, nil
}

// Start starts the background workers and the health server.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.healthServer.Start(); err != nil {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	go a.sweeper.Start(ctx)

	a.log.Info("Engine started", "port", a.cfg.Server.Port)
	return nil
}

// Stop shuts the engine down.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping engine...")

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}

	return a.healthServer.Stop(ctx)
}
