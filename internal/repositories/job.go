package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/portx/internal/models"
	"github.com/desertthunder/portx/internal/shared"
)

const jobColumns = `
	id, sequence, source_service, dest_service, status,
	items_total, items_imported, items_failed, error_message,
	started_at, completed_at, created_at, updated_at, deleted_at
`

var _ models.Repository[*models.Job] = (*JobRepository)(nil)

// JobRepository stores transfer jobs. List filters on status, source_service and dest_service.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository with the given database connection
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job with a generated sequence.
//
// A job without an id is assigned a new UUID; callers resuming by id set it beforehand.
// Reusing the id of a soft-deleted job returns [shared.ErrJobNotFound].
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID() != "" {
		if err := r.checkUnused(ctx, job.ID()); err != nil {
			return err
		}
	}

	sequence, err := NextSequence(ctx, r.db, "jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if job.ID() == "" {
		job.SetID(shared.GenerateID())
	}
	job.SetSequence(sequence)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO jobs (
			id, sequence, source_service, dest_service, status,
			items_total, items_imported, items_failed, error_message,
			started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		job.ID(),
		sequence,
		job.SourceService(),
		job.DestService(),
		job.Status(),
		job.ItemsTotal(),
		job.ItemsImported(),
		job.ItemsFailed(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// checkUnused fails when a row, live or deleted, already holds id.
func (r *JobRepository) checkUnused(ctx context.Context, id string) error {
	var deleted bool
	err := r.db.QueryRowContext(ctx, `SELECT deleted_at IS NOT NULL FROM jobs WHERE id = ?`, id).Scan(&deleted)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check job id: %w", err)
	case deleted:
		return fmt.Errorf("%w: job %s was deleted", shared.ErrJobNotFound, id)
	default:
		return fmt.Errorf("%w: job %s already exists", shared.ErrInvalidInput, id)
	}
}

// Get retrieves a job by ID, excluding soft-deleted jobs
func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ? AND deleted_at IS NULL`

	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}
	return job, err
}

// Update persists the job's status, counts and timestamps
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE jobs
		SET status = ?, items_total = ?, items_imported = ?, items_failed = ?,
			error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		job.Status(),
		job.ItemsTotal(),
		job.ItemsImported(),
		job.ItemsFailed(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	return requireAffected(result, job.ID())
}

// Delete soft-deletes a job by ID
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE jobs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	return requireAffected(result, id)
}

// List retrieves jobs matching the given criteria, newest first.
//
// Supported criteria: "status", "source_service" and "dest_service".
func (r *JobRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE deleted_at IS NULL`
	var args []any

	for _, column := range []string{"status", "source_service", "dest_service"} {
		if v, ok := criteria[column].(string); ok && v != "" {
			query += " AND " + column + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*models.Job, error) {
	var (
		id            string
		sequence      int
		sourceService string
		destService   string
		status        string
		itemsTotal    int
		itemsImported int
		itemsFailed   int
		errorMessage  sql.NullString
		startedAt     sql.NullTime
		completedAt   sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := s.Scan(
		&id, &sequence, &sourceService, &destService, &status,
		&itemsTotal, &itemsImported, &itemsFailed, &errorMessage,
		&startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	job := models.NewJob(sequence, sourceService, destService)
	job.SetID(id)
	job.SetStatus(status)
	job.SetItemsTotal(itemsTotal)
	job.SetItemsImported(itemsImported)
	job.SetItemsFailed(itemsFailed)
	job.SetCreatedAt(createdAt)
	job.SetUpdatedAt(updatedAt)

	if errorMessage.Valid {
		job.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		job.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		job.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		job.SetDeletedAt(&deletedAt.Time)
	}

	return job, nil
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s not found or already deleted", shared.ErrJobNotFound, id)
	}
	return nil
}
