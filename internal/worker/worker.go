package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
	"github.com/stanford-ddl/transcript-analyzer/internal/queue"
)

const (
	statusWriteRetries = 3
	statusWriteDelay   = 500 * time.Millisecond
)

// Pool runs a fixed number of workers that drain the task queue.
// Delivery is at-least-once, so every step of handling is idempotent:
// a redelivered task for a file already in a terminal state is acked
// without reprocessing.
type Pool struct {
	log         *slog.Logger
	concurrency int

	tasks       TaskSource
	files       FileStore
	storage     ArtifactStorage
	transformer Transformer
}

func NewPool(
	log *slog.Logger,
	concurrency int,
	tasks TaskSource,
	files FileStore,
	storage ArtifactStorage,
	transformer Transformer,
) *Pool {
	return &Pool{
		log:         log,
		concurrency: concurrency,
		tasks:       tasks,
		files:       files,
		storage:     storage,
		transformer: transformer,
	}
}

func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := range p.concurrency {
		log := p.log.With(slog.Int("worker", i))

		g.Go(func() error {
			return p.runWorker(ctx, log)
		})
	}

	return g.Wait()
}

func (p *Pool) runWorker(ctx context.Context, log *slog.Logger) error {
	for {
		task, err := p.tasks.Dequeue(ctx)
		if errors.Is(err, queue.ErrClosed) || errors.Is(err, context.Canceled) {
			return nil
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			log.ErrorContext(ctx, "failed to dequeue task", slog.Any("error", err))
			time.Sleep(time.Second)
			continue
		}

		p.handleTask(ctx, log.With(
			slog.String("task_id", task.TaskID),
			slog.String("file_id", task.FileID.String()),
		), task)

		if err := p.tasks.Ack(ctx, task); err != nil {
			log.ErrorContext(ctx, "failed to ack task", slog.Any("error", err))
		}
	}
}

func (p *Pool) handleTask(ctx context.Context, log *slog.Logger, task domain.ProcessingTask) {
	log.InfoContext(ctx, "processing task", slog.String("filename", task.OriginalFilename))

	p.setTaskState(ctx, log, task.TaskID, domain.TaskStateStarted, nil, "")

	file, err := p.files.FileByID(ctx, task.FileID)
	if err != nil {
		// Without a file record there is nothing to retry against.
		log.ErrorContext(ctx, "failed to load file record", slog.Any("error", err))
		p.setTaskState(ctx, log, task.TaskID, domain.TaskStateFailed, nil, err.Error())
		return
	}

	if file.Status.Terminal() {
		log.InfoContext(ctx, "file already in terminal state, skipping",
			slog.String("status", string(file.Status)))
		p.mirrorTerminalState(ctx, log, task.TaskID, file)
		return
	}

	if _, err := p.files.MarkProcessing(ctx, task.FileID); err != nil {
		log.ErrorContext(ctx, "failed to mark file processing", slog.Any("error", err))
		p.setTaskState(ctx, log, task.TaskID, domain.TaskStateFailed, nil, err.Error())
		return
	}

	results, err := p.process(ctx, task)
	if err != nil {
		log.WarnContext(ctx, "processing failed", slog.Any("error", err))
		p.failFile(ctx, log, task, err)
		return
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		p.failFile(ctx, log, task, fmt.Errorf("failed to encode results: %w", err))
		return
	}

	if err := p.withRetry(ctx, func() error {
		_, err := p.files.MarkProcessed(ctx, task.FileID, resultsJSON)
		return err
	}); err != nil {
		log.ErrorContext(ctx, "failed to mark file processed", slog.Any("error", err))
		p.setTaskState(ctx, log, task.TaskID, domain.TaskStateFailed, nil, err.Error())
		return
	}

	p.setTaskState(ctx, log, task.TaskID, domain.TaskStateSucceeded, results.Summary, "")

	log.InfoContext(ctx, "task processed", slog.String("artifact", results.Artifact))
}

// process runs the transform and stores its artifact. A panicking
// transform fails the one file instead of taking the worker down.
func (p *Pool) process(ctx context.Context, task domain.ProcessingTask) (_ *domain.FileResults, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()

	src, err := p.storage.OpenUpload(ctx, task.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := p.transformer.Apply(ctx, task.OriginalFilename, src)
	if err != nil {
		return nil, fmt.Errorf("failed to transform file: %w", err)
	}

	// Keyed by file ID so retried tasks overwrite their own artifact
	// instead of colliding with another file's.
	artifactName := task.FileID.String() + "_" + path.Base(out.Name)

	artifact, err := p.storage.SaveProcessed(ctx, artifactName, out.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to save artifact: %w", err)
	}

	return &domain.FileResults{
		Artifact: artifact,
		Summary:  out.Summary,
	}, nil
}

func (p *Pool) failFile(ctx context.Context, log *slog.Logger, task domain.ProcessingTask, cause error) {
	if err := p.withRetry(ctx, func() error {
		_, err := p.files.MarkFailed(ctx, task.FileID, cause.Error())
		return err
	}); err != nil {
		log.ErrorContext(ctx, "failed to mark file failed", slog.Any("error", err))
	}

	p.setTaskState(ctx, log, task.TaskID, domain.TaskStateFailed, nil, cause.Error())
}

// mirrorTerminalState reconciles the task status with a file that was
// already finished by an earlier delivery.
func (p *Pool) mirrorTerminalState(ctx context.Context, log *slog.Logger, taskID string, file *domain.File) {
	if file.Status == domain.StatusProcessed {
		var summary json.RawMessage
		if len(file.Results) > 0 {
			var results domain.FileResults
			if err := json.Unmarshal(file.Results, &results); err == nil {
				summary = results.Summary
			}
		}

		p.setTaskState(ctx, log, taskID, domain.TaskStateSucceeded, summary, "")
		return
	}

	p.setTaskState(ctx, log, taskID, domain.TaskStateFailed, nil, file.ErrorMessage)
}

func (p *Pool) setTaskState(ctx context.Context, log *slog.Logger, taskID string, state domain.TaskState, result json.RawMessage, taskErr string) {
	if err := p.tasks.SetTaskState(ctx, taskID, state, result, taskErr); err != nil {
		log.ErrorContext(ctx, "failed to set task state",
			slog.String("state", string(state)),
			slog.Any("error", err),
		)
	}
}

func (p *Pool) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := range statusWriteRetries {
		if err = fn(); err == nil {
			return nil
		}

		select {
		case <-time.After(statusWriteDelay << attempt):
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		}
	}

	return err
}
