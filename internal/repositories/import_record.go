package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/portx/internal/idempotent"
	"github.com/desertthunder/portx/internal/models"
	"github.com/desertthunder/portx/internal/shared"
)

// ImportRecordRepository persists idempotent import results and failures.
//
// It implements [idempotent.Store] so executors survive process restarts.
type ImportRecordRepository struct {
	db *sql.DB
}

var _ idempotent.Store = (*ImportRecordRepository)(nil)

// NewImportRecordRepository creates a new ImportRecordRepository with the given database connection
func NewImportRecordRepository(db *sql.DB) *ImportRecordRepository {
	return &ImportRecordRepository{db: db}
}

// Get returns the recorded value for key within the job.
func (r *ImportRecordRepository) Get(ctx context.Context, jobID, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM import_records WHERE job_id = ? AND item_key = ?",
		jobID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query import record: %w", err)
	}
	return value, true, nil
}

// Record stores value for key. A value already recorded for the key is kept.
func (r *ImportRecordRepository) Record(ctx context.Context, jobID, key, label, value string) error {
	query := `
		INSERT INTO import_records (job_id, item_key, label, value, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (job_id, item_key) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, jobID, key, label, value, time.Now()); err != nil {
		return fmt.Errorf("failed to insert import record: %w", err)
	}
	return nil
}

// RecordError stores detail as the latest failure for its key, replacing any earlier one.
func (r *ImportRecordRepository) RecordError(ctx context.Context, jobID string, detail idempotent.ErrorDetail) error {
	if detail.ID == "" {
		detail.ID = shared.GenerateID()
	}
	if detail.OccurredAt.IsZero() {
		detail.OccurredAt = time.Now()
	}

	query := `
		INSERT INTO import_errors (id, job_id, item_key, label, message, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (job_id, item_key) DO UPDATE SET
			id = excluded.id,
			label = excluded.label,
			message = excluded.message,
			occurred_at = excluded.occurred_at
	`
	_, err := r.db.ExecContext(ctx, query,
		detail.ID, jobID, detail.Key, detail.Label, detail.Message, detail.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record import error: %w", err)
	}
	return nil
}

// ClearError removes the recorded failure for key, if any.
func (r *ImportRecordRepository) ClearError(ctx context.Context, jobID, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM import_errors WHERE job_id = ? AND item_key = ?", jobID, key)
	if err != nil {
		return fmt.Errorf("failed to clear import error: %w", err)
	}
	return nil
}

// Errors returns the job's outstanding failures, oldest first.
func (r *ImportRecordRepository) Errors(ctx context.Context, jobID string) ([]idempotent.ErrorDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item_key, label, message, occurred_at
		FROM import_errors
		WHERE job_id = ?
		ORDER BY occurred_at, item_key
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query import errors: %w", err)
	}
	defer rows.Close()

	var details []idempotent.ErrorDetail
	for rows.Next() {
		var d idempotent.ErrorDetail
		if err := rows.Scan(&d.ID, &d.Key, &d.Label, &d.Message, &d.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan import error: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return details, nil
}

// Records returns every value recorded for the job, oldest first.
func (r *ImportRecordRepository) Records(ctx context.Context, jobID string) ([]models.ImportRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT job_id, item_key, label, value, created_at
		FROM import_records
		WHERE job_id = ?
		ORDER BY created_at, item_key
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query import records: %w", err)
	}
	defer rows.Close()

	var records []models.ImportRecord
	for rows.Next() {
		var rec models.ImportRecord
		if err := rows.Scan(&rec.JobID, &rec.Key, &rec.Label, &rec.Value, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}
