package postgresql

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

const TableProjects = "projects"

type ProjectsRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewProjectsRepository(pool *pgxpool.Pool) *ProjectsRepository {
	return &ProjectsRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ProjectsRepository) CreateProject(ctx context.Context, project *domain.Project) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Insert(TableProjects).
		Columns(
			"id",
			"file_set_id",
			"name",
			"user_id",
		).
		Values(
			project.ID,
			project.FileSetID,
			project.Name,
			project.UserID,
		).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return buildQueryError(err)
	}

	if err := db.QueryRow(ctx, sql, args...).Scan(&project.CreatedAt); err != nil {
		return scanRowError(err)
	}

	return nil
}

func (r *ProjectsRepository) ProjectByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(
			"id",
			"file_set_id",
			"name",
			"user_id",
			"created_at",
		).
		From(TableProjects).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, buildQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	project, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[domain.Project])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}

		return nil, collectRowsError(err)
	}

	return project, nil
}
