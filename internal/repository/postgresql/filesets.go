package postgresql

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

const TableFileSets = "file_sets"

type FileSetsRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewFileSetsRepository(pool *pgxpool.Pool) *FileSetsRepository {
	return &FileSetsRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *FileSetsRepository) CreateFileSet(ctx context.Context) (*domain.FileSet, error) {
	db := extractDB(ctx, r.pool)

	fileSet := &domain.FileSet{ID: uuid.New()}

	sql, args, err := r.qb.
		Insert(TableFileSets).
		Columns("id").
		Values(fileSet.ID).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, buildQueryError(err)
	}

	if err := db.QueryRow(ctx, sql, args...).Scan(&fileSet.CreatedAt); err != nil {
		return nil, scanRowError(err)
	}

	return fileSet, nil
}

// Progress aggregates the file counts for one set in a single read, so the
// result is always consistent with the latest committed status writes. A set
// with no file rows is reported as unknown: files and their set are created
// together, so an empty set means the id was never used.
func (r *FileSetsRepository) Progress(ctx context.Context, fileSetID uuid.UUID) (*domain.Progress, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(
			"COUNT(*) AS total",
			"COUNT(*) FILTER (WHERE status = 'processed') AS processed",
			"COUNT(*) FILTER (WHERE status = 'failed') AS failed",
		).
		From(TableFiles).
		Where(sq.Eq{"file_set_id": fileSetID}).
		ToSql()
	if err != nil {
		return nil, buildQueryError(err)
	}

	var total, processed, failed int
	if err := db.QueryRow(ctx, sql, args...).Scan(&total, &processed, &failed); err != nil {
		return nil, scanRowError(err)
	}

	if total == 0 {
		return nil, domain.ErrFileSetNotFound
	}

	return domain.NewProgress(fileSetID, total, processed, failed), nil
}
