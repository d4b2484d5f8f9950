package models

import (
	"fmt"
	"time"
)

// Job status values.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Job tracks one user-initiated transfer across attempts.
//
// The job id correlates idempotent import records, so a retried job never re-submits items it already imported.
type Job struct {
	id            string
	sequence      int
	sourceService string
	destService   string
	status        string
	itemsTotal    int
	itemsImported int
	itemsFailed   int
	errorMessage  string
	startedAt     *time.Time
	completedAt   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// NewJob creates a pending job. The id is assigned by the repository unless set beforehand.
func NewJob(sequence int, sourceService, destService string) *Job {
	now := time.Now()
	return &Job{
		sequence:      sequence,
		sourceService: sourceService,
		destService:   destService,
		status:        JobPending,
		createdAt:     now,
		updatedAt:     now,
	}
}

func (j *Job) ID() string { return j.id }
func (j *Job) Sequence() int { return j.sequence }
func (j *Job) SourceService() string { return j.sourceService }
func (j *Job) DestService() string { return j.destService }
func (j *Job) Status() string { return j.status }
func (j *Job) ItemsTotal() int { return j.itemsTotal }
func (j *Job) ItemsImported() int { return j.itemsImported }
func (j *Job) ItemsFailed() int { return j.itemsFailed }
func (j *Job) ErrorMessage() string { return j.errorMessage }
func (j *Job) StartedAt() *time.Time { return j.startedAt }
func (j *Job) CompletedAt() *time.Time { return j.completedAt }
func (j *Job) CreatedAt() time.Time { return j.createdAt }
func (j *Job) UpdatedAt() time.Time { return j.updatedAt }
func (j *Job) DeletedAt() *time.Time { return j.deletedAt }
func (j *Job) SetID(id string) { j.id = id }
func (j *Job) SetSequence(s int) { j.sequence = s }
func (j *Job) SetStatus(s string) { j.status = s }
func (j *Job) SetItemsTotal(n int) { j.itemsTotal = n }
func (j *Job) SetItemsImported(n int) { j.itemsImported = n }
func (j *Job) SetItemsFailed(n int) { j.itemsFailed = n }
func (j *Job) SetErrorMessage(m string) { j.errorMessage = m }
func (j *Job) SetStartedAt(t *time.Time) { j.startedAt = t }
func (j *Job) SetCompletedAt(t *time.Time) { j.completedAt = t }
func (j *Job) SetCreatedAt(t time.Time) { j.createdAt = t }
func (j *Job) SetUpdatedAt(t time.Time) { j.updatedAt = t }
func (j *Job) SetDeletedAt(t *time.Time) { j.deletedAt = t }

// Start moves the job to running, keeping the first start time on resumed attempts.
func (j *Job) Start(at time.Time) {
	j.status = JobRunning
	j.errorMessage = ""
	j.completedAt = nil
	if j.startedAt == nil {
		j.startedAt = &at
	}
}

// Complete records the final counts. Per-item failures do not fail the job.
func (j *Job) Complete(at time.Time, total, imported, failed int) {
	j.status = JobCompleted
	j.itemsTotal = total
	j.itemsImported = imported
	j.itemsFailed = failed
	j.completedAt = &at
}

// Fail marks the job failed with cause.
func (j *Job) Fail(at time.Time, cause error) {
	j.status = JobFailed
	if cause != nil {
		j.errorMessage = cause.Error()
	}
	j.completedAt = &at
}

// Validate checks required fields and the status value.
func (j *Job) Validate() error {
	if j.id == "" {
		return fmt.Errorf("job id is required")
	}
	if j.sourceService == "" {
		return fmt.Errorf("source service is required")
	}
	if j.destService == "" {
		return fmt.Errorf("destination service is required")
	}
	switch j.status {
	case JobPending, JobRunning, JobCompleted, JobFailed:
	default:
		return fmt.Errorf("invalid job status: %q", j.status)
	}
	if j.itemsImported < 0 || j.itemsFailed < 0 || j.itemsTotal < 0 {
		return fmt.Errorf("item counts must not be negative")
	}
	return nil
}
