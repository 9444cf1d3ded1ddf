package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stanford-ddl/transcript-analyzer/internal/config"
	v1 "github.com/stanford-ddl/transcript-analyzer/internal/controller/http/v1"
	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
	"github.com/stanford-ddl/transcript-analyzer/internal/ingest"
	"github.com/stanford-ddl/transcript-analyzer/internal/queue"
	"github.com/stanford-ddl/transcript-analyzer/internal/repository/postgresql"
	"github.com/stanford-ddl/transcript-analyzer/internal/storage"
	"github.com/stanford-ddl/transcript-analyzer/internal/transform"
	"github.com/stanford-ddl/transcript-analyzer/internal/worker"
	"golang.org/x/sync/errgroup"
)

const memoryQueueBuffer = 256

// fileSetFiles joins the two repositories behind the status endpoints:
// file listings come from the files table, progress from the aggregate
// over the same rows.
type fileSetFiles struct {
	files    *postgresql.FilesRepository
	fileSets *postgresql.FileSetsRepository
}

func (f *fileSetFiles) FilesBySetID(ctx context.Context, fileSetID uuid.UUID) ([]*domain.File, error) {
	return f.files.FilesBySetID(ctx, fileSetID)
}

func (f *fileSetFiles) Progress(ctx context.Context, fileSetID uuid.UUID) (*domain.Progress, error) {
	return f.fileSets.Progress(ctx, fileSetID)
}

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{
		log: log,
		cfg: cfg,
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.InfoContext(ctx, "starting app",
		slog.String("storage_driver", a.cfg.App.StorageDriver),
		slog.String("queue_driver", a.cfg.App.QueueDriver),
		slog.Int("worker_concurrency", a.cfg.App.WorkerConcurrency),
	)

	a.log.InfoContext(ctx, "establishing postgresql connection",
		slog.String("postgresql_host", a.cfg.PostgreSQL.Host),
		slog.String("postgresql_port", a.cfg.PostgreSQL.Port),
		slog.String("postgresql_dbname", a.cfg.PostgreSQL.DBName),
	)

	pool, err := postgresql.NewConnection(ctx, a.log, a.cfg.PostgreSQL)
	if err != nil {
		return fmt.Errorf("failed to create db connection: %w", err)
	}
	defer pool.Close()

	gateway, err := a.newStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage gateway: %w", err)
	}

	tasks, err := a.newQueue(ctx)
	if err != nil {
		return fmt.Errorf("failed to create task queue: %w", err)
	}

	requeued, err := tasks.RequeueStranded(ctx)
	if err != nil {
		return fmt.Errorf("failed to requeue stranded tasks: %w", err)
	}
	if requeued > 0 {
		a.log.InfoContext(ctx, "requeued stranded tasks", slog.Int("count", requeued))
	}

	return a.startComponents(ctx, pool, gateway, tasks)
}

func (a *App) newStorage(ctx context.Context) (storage.Gateway, error) {
	switch a.cfg.App.StorageDriver {
	case "s3":
		return storage.NewS3(ctx, a.cfg.S3)
	case "local":
		return storage.NewLocal(a.cfg.Storage.InputsDirectory, a.cfg.Storage.OutputsDirectory)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", a.cfg.App.StorageDriver)
	}
}

func (a *App) newQueue(ctx context.Context) (queue.Queue, error) {
	switch a.cfg.App.QueueDriver {
	case "redis":
		return queue.NewRedis(ctx, a.log, a.cfg.Redis)
	case "memory":
		return queue.NewMemory(memoryQueueBuffer), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", a.cfg.App.QueueDriver)
	}
}

func (a *App) startComponents(
	ctx context.Context,
	pool *pgxpool.Pool,
	gateway storage.Gateway,
	tasks queue.Queue,
) error {
	filesRepo := postgresql.NewFilesRepository(pool)
	fileSetsRepo := postgresql.NewFileSetsRepository(pool)
	projectsRepo := postgresql.NewProjectsRepository(pool)
	txManager := postgresql.NewTxManager(pool)

	ingester := ingest.NewService(
		a.log,
		a.cfg.Upload,
		fileSetsRepo,
		filesRepo,
		projectsRepo,
		gateway,
		tasks,
		txManager,
	)

	workers := worker.NewPool(
		a.log,
		a.cfg.App.WorkerConcurrency,
		tasks,
		filesRepo,
		gateway,
		transform.Router{},
	)

	server := v1.NewServer(a.cfg.HTTP, v1.Handlers{
		Ingester:  ingester,
		Files:     &fileSetFiles{files: filesRepo, fileSets: fileSetsRepo},
		File:      filesRepo,
		Artifacts: gateway,
		Tasks:     tasks,
		Projects:  ingester,
		Pings: map[string]func(context.Context) error{
			"postgresql": pool.Ping,
			"queue":      tasks.Ping,
		},
	})

	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		a.log.InfoContext(ctx, "worker pool started")
		return workers.Run(ctx)
	})

	erg.Go(func() error {
		a.log.InfoContext(ctx, "starting http server",
			slog.String("addr", net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port)),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	a.log.InfoContext(ctx, "all components started")

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "app stopped with error", slog.String("err", err.Error()))

		return err
	}

	a.log.InfoContext(ctx, "app stopped gracefully")

	return nil
}
