package idempotent

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/portx/internal/shared"
)

// ErrorDetail describes the latest failure for an item key.
type ErrorDetail struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ResultStore is the durable key → value mapping scoped by job.
type ResultStore interface {
	// Get returns the recorded value for key, reporting whether one exists.
	Get(ctx context.Context, jobID, key string) (string, bool, error)

	// Record stores value for key. An existing value must not be overwritten.
	Record(ctx context.Context, jobID, key, label, value string) error
}

// ErrorLog keeps the latest failure per job and key.
type ErrorLog interface {
	RecordError(ctx context.Context, jobID string, detail ErrorDetail) error
	ClearError(ctx context.Context, jobID, key string) error
	Errors(ctx context.Context, jobID string) ([]ErrorDetail, error)
}

// Store combines result and error bookkeeping.
type Store interface {
	ResultStore
	ErrorLog
}

// Producer performs the side effect for one item and returns the value to record.
type Producer func() (string, error)

// Executor runs producers at most once per key within a job.
//
// Safe for use by one importer invocation at a time; concurrent jobs use separate executors.
type Executor struct {
	jobID  string
	store  Store
	logger *log.Logger
	now    func() time.Time
}

// NewExecutor returns an executor for jobID over store.
func NewExecutor(jobID string, store Store, logger *log.Logger) *Executor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Executor{
		jobID:  jobID,
		store:  store,
		logger: shared.WithLogger(logger, "job", jobID),
		now:    time.Now,
	}
}

// JobID returns the job this executor is bound to.
func (e *Executor) JobID() string { return e.jobID }

// Execute returns the cached value for key or runs fn once and records its result.
//
// A failure of fn, or of recording its value, is written to the error log and returned.
func (e *Executor) Execute(ctx context.Context, key, label string, fn Producer) (string, error) {
	value, ok, err := e.store.Get(ctx, e.jobID, key)
	if err != nil {
		return "", fmt.Errorf("failed to look up %s (%s): %w", key, label, err)
	}
	if ok {
		e.logger.Debug("using cached value", "key", key, "label", label)
		return value, nil
	}

	value, err = fn()
	if err != nil {
		e.recordError(ctx, key, label, err)
		return "", err
	}

	if err := e.store.Record(ctx, e.jobID, key, label, value); err != nil {
		err = fmt.Errorf("failed to record destination id %s for %s (%s): %w", value, key, label, err)
		e.recordError(ctx, key, label, err)
		return "", err
	}
	if err := e.store.ClearError(ctx, e.jobID, key); err != nil {
		e.logger.Warn("failed to clear earlier error", "key", key, "error", err)
	}

	return value, nil
}

func (e *Executor) recordError(ctx context.Context, key, label string, cause error) {
	detail := ErrorDetail{
		ID:         shared.GenerateID(),
		Key:        key,
		Label:      label,
		Message:    cause.Error(),
		OccurredAt: e.now(),
	}
	if err := e.store.RecordError(ctx, e.jobID, detail); err != nil {
		e.logger.Warn("failed to record error", "key", key, "error", err)
	}
}

// ExecuteAndSwallowErrors behaves like [Executor.Execute] but logs failures instead of returning them.
//
// ok is false when no value is available for key after the call.
func (e *Executor) ExecuteAndSwallowErrors(ctx context.Context, key, label string, fn Producer) (string, bool) {
	value, err := e.Execute(ctx, key, label, fn)
	if err != nil {
		e.logger.Error("import failed", "key", key, "label", label, "error", err)
		return "", false
	}
	return value, true
}

// IsKeyCached reports whether a value is recorded for key. Lookup failures count as not cached.
func (e *Executor) IsKeyCached(ctx context.Context, key string) bool {
	_, ok, err := e.store.Get(ctx, e.jobID, key)
	return err == nil && ok
}

// CachedValue returns the recorded value for key or [shared.ErrKeyNotCached].
func (e *Executor) CachedValue(ctx context.Context, key string) (string, error) {
	value, ok, err := e.store.Get(ctx, e.jobID, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrKeyNotCached, key)
	}
	return value, nil
}

// Errors returns the outstanding failures for the job.
func (e *Executor) Errors(ctx context.Context) ([]ErrorDetail, error) {
	return e.store.Errors(ctx, e.jobID)
}
