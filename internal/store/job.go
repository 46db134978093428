package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/kubev2v/taskd/internal/models"
	srvErrors "github.com/kubev2v/taskd/pkg/errors"
)

const jobsTable = "jobs"

var jobColumns = []string{
	"id",
	"kind",
	"params",
	"callback_url",
	"status",
	"result",
	"error_message",
	"created_at",
	"updated_at",
}

// JobStore handles job storage using DuckDB.
type JobStore struct {
	db *sql.DB
}

func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

// Create inserts a new job. CreatedAt and UpdatedAt are set by the database.
func (s *JobStore) Create(ctx context.Context, job models.Job) error {
	params, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal job params: %w", err)
	}

	query, args, err := sq.Insert(jobsTable).
		Columns("id", "kind", "params", "callback_url", "status").
		Values(job.ID, job.Kind, string(params), job.CallbackURL, string(job.Status)).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *JobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	query, args, err := sq.Select(jobColumns...).
		From(jobsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	job, err := scanJob(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewJobNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateStatus sets the status, result and error of a job.
func (s *JobStore) UpdateStatus(ctx context.Context, id string, status models.JobStatus, result, errMsg string) error {
	query, args, err := sq.Update(jobsTable).
		Set("status", string(status)).
		Set("result", result).
		Set("error_message", errMsg).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return srvErrors.NewJobNotFoundError(id)
	}
	return nil
}

func (s *JobStore) List(ctx context.Context, opts ...ListOption) ([]models.Job, error) {
	builder := sq.Select(jobColumns...).From(jobsTable)

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	return jobs, rows.Err()
}

// Count expects filter options only.
func (s *JobStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From(jobsTable)

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var (
		job    models.Job
		params string
		status string
	)
	err := row.Scan(
		&job.ID,
		&job.Kind,
		&params,
		&job.CallbackURL,
		&status,
		&job.Result,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = models.JobStatus(status)
	if params != "" {
		if err := json.Unmarshal([]byte(params), &job.Params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal params of job %s: %w", job.ID, err)
		}
	}
	return &job, nil
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByStatus(statuses ...models.JobStatus) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(statuses) == 0 {
			return b
		}
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		return b.Where(sq.Eq{"status": values})
	}
}

func ByKind(kinds ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(kinds) == 0 {
			return b
		}
		return b.Where(sq.Eq{"kind": kinds})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}

// WithDefaultSort orders by creation time, oldest first.
func WithDefaultSort() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.OrderBy("created_at ASC", "id ASC")
	}
}
