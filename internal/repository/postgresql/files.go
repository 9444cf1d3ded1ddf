package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

const TableFiles = "files"

var fileColumns = []string{
	"id",
	"file_set_id",
	"file_path",
	"original_filename",
	"status",
	"error_message",
	"results",
	"created_at",
	"processed_at",
}

type FilesRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewFilesRepository(pool *pgxpool.Pool) *FilesRepository {
	return &FilesRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *FilesRepository) CreateFile(ctx context.Context, file *domain.File) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Insert(TableFiles).
		Columns(
			"id",
			"file_set_id",
			"file_path",
			"original_filename",
			"status",
		).
		Values(
			file.ID,
			file.FileSetID,
			file.FilePath,
			file.OriginalFilename,
			file.Status,
		).
		ToSql()
	if err != nil {
		return buildQueryError(err)
	}

	_, err = db.Exec(ctx, sql, args...)
	if err != nil {
		return executeQueryError(err)
	}

	return nil
}

func (r *FilesRepository) FileByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(fileColumns...).
		From(TableFiles).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, buildQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	file, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[domain.File])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}

		return nil, collectRowsError(err)
	}

	return file, nil
}

func (r *FilesRepository) FilesBySetID(ctx context.Context, fileSetID uuid.UUID) ([]*domain.File, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(fileColumns...).
		From(TableFiles).
		Where(sq.Eq{"file_set_id": fileSetID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, buildQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	files, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[domain.File])
	if err != nil {
		return nil, collectRowsError(err)
	}

	return files, nil
}

// MarkSaving records the durable storage path and advances the file out of
// pending. Returns false if the file already left the pre-saving states.
func (r *FilesRepository) MarkSaving(ctx context.Context, id uuid.UUID, path string) (bool, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableFiles).
		Set("file_path", path).
		Set("status", domain.StatusSaving).
		Where(sq.Eq{
			"id":     id,
			"status": domain.TransitionSources(domain.StatusSaving),
		}).
		ToSql()
	if err != nil {
		return false, buildQueryError(err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return false, executeQueryError(err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkProcessing is the transform-started transition. The from-state guard
// makes a redelivered task for an already-claimed file a no-op.
func (r *FilesRepository) MarkProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableFiles).
		Set("status", domain.StatusProcessing).
		Where(sq.Eq{
			"id":     id,
			"status": domain.TransitionSources(domain.StatusProcessing),
		}).
		ToSql()
	if err != nil {
		return false, buildQueryError(err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return false, executeQueryError(err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkProcessed writes the terminal success state. Terminal states are never
// overwritten: the guard restricts the update to the processing state.
func (r *FilesRepository) MarkProcessed(ctx context.Context, id uuid.UUID, results json.RawMessage) (bool, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableFiles).
		Set("status", domain.StatusProcessed).
		Set("results", results).
		Set("processed_at", time.Now()).
		Where(sq.Eq{
			"id":     id,
			"status": domain.TransitionSources(domain.StatusProcessed),
		}).
		ToSql()
	if err != nil {
		return false, buildQueryError(err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return false, executeQueryError(err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkFailed writes the terminal failure state from any non-terminal state,
// retaining the reason for diagnostics.
func (r *FilesRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableFiles).
		Set("status", domain.StatusFailed).
		Set("error_message", reason).
		Set("processed_at", time.Now()).
		Where(sq.And{
			sq.Eq{"id": id},
			sq.NotEq{"status": []domain.Status{domain.StatusProcessed, domain.StatusFailed}},
		}).
		ToSql()
	if err != nil {
		return false, buildQueryError(err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return false, executeQueryError(err)
	}

	return tag.RowsAffected() == 1, nil
}
