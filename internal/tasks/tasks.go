package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/portx/internal/idempotent"
	"github.com/desertthunder/portx/internal/importers"
	"github.com/desertthunder/portx/internal/models"
	"github.com/desertthunder/portx/internal/shared"
)

// Default service names recorded on jobs.
const (
	DefaultSourceService = "export"
	DefaultDestService   = "Daybook"
)

// JobStore persists transfer jobs. [repositories.JobRepository] satisfies it.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
}

// RunOpts configures one [ImportEngine.Run] call.
type RunOpts struct {
	JobID         string                       // Existing job to resume; empty creates a new job
	SourceService string                       // Recorded on new jobs
	DestService   string                       // Recorded on new jobs
	AuthData      *models.TokensAndURLAuthData // Destination credentials
	Container     *models.PhotosContainer      // Data to import
}

// ImportRunResult summarizes a finished run.
type ImportRunResult struct {
	Job      *models.Job
	Resumed  bool
	Total    int
	Imported int
	Failed   int
	Errors   []idempotent.ErrorDetail

	// Destinations maps source album ids to the destination ids recorded for them.
	Destinations map[string]string
}

// ImportEngine runs importers under durable, per-job idempotency.
type ImportEngine struct {
	importer importers.PhotosImporter
	jobs     JobStore
	store    idempotent.Store
	logger   *log.Logger
	now      func() time.Time
}

// NewImportEngine creates a new ImportEngine with the provided dependencies.
func NewImportEngine(importer importers.PhotosImporter, jobs JobStore, store idempotent.Store, logger *log.Logger) *ImportEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ImportEngine{
		importer: importer,
		jobs:     jobs,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run imports opts.Container as one job.
//
// A failed [models.ImportResult] marks the job failed and its cause is returned. Per-album failures
// leave the job completed with the failures counted.
func (e *ImportEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*ImportRunResult, error) {
	if e.importer == nil || e.jobs == nil || e.store == nil {
		return nil, fmt.Errorf("%w: import engine is not fully configured", shared.ErrServiceUnavailable)
	}

	job, resumed, err := e.loadJob(ctx, opts)
	if err != nil {
		return nil, err
	}

	logger := shared.WithLogger(e.logger, "job", job.ID())
	sendProgress(progress, loadJobUpdate(job, resumed))

	var albums []models.PhotoAlbum
	if opts.Container != nil {
		albums = opts.Container.Albums
	}

	executor := idempotent.NewExecutor(job.ID(), e.store, e.logger)
	tracked := &progressExecutor{inner: executor, progress: progress, total: len(albums)}

	sendProgress(progress, importAlbumsUpdate(len(albums)))
	logger.Info("starting import", "albums", len(albums), "resumed", resumed)

	result := e.importer.ImportItem(ctx, job.ID(), tracked, opts.AuthData, opts.Container)
	if !result.OK() {
		cause := result.Err()
		if cause == nil {
			cause = errors.New("import failed")
		}
		job.Fail(e.now(), cause)
		if err := e.jobs.Update(ctx, job); err != nil {
			logger.Error("failed to record job failure", "error", err)
		}
		sendProgress(progress, finalizeJobUpdate(job))
		return &ImportRunResult{Job: job, Resumed: resumed, Total: len(albums)}, fmt.Errorf("import failed: %w", cause)
	}

	imported := 0
	destinations := make(map[string]string, len(albums))
	for _, album := range albums {
		value, err := executor.CachedValue(ctx, album.ID)
		switch {
		case err == nil:
			imported++
			destinations[album.ID] = value
		case !errors.Is(err, shared.ErrKeyNotCached):
			logger.Warn("failed to read recorded album", "album", album.ID, "error", err)
		}
	}

	details, err := executor.Errors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read import errors: %w", err)
	}

	job.Complete(e.now(), len(albums), imported, len(details))
	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	logger.Info("import finished", "imported", imported, "failed", len(details))
	sendProgress(progress, finalizeJobUpdate(job))

	return &ImportRunResult{
		Job:      job,
		Resumed:  resumed,
		Total:    len(albums),
		Imported: imported,
		Failed:   len(details),
		Errors:   details,

		Destinations: destinations,
	}, nil
}

// loadJob resumes the job named by opts.JobID or creates a new one, and marks it running.
func (e *ImportEngine) loadJob(ctx context.Context, opts RunOpts) (*models.Job, bool, error) {
	var (
		job     *models.Job
		resumed bool
	)

	if opts.JobID != "" {
		if err := shared.ValidateID(opts.JobID); err != nil {
			return nil, false, err
		}

		existing, err := e.jobs.Get(ctx, opts.JobID)
		switch {
		case err == nil:
			job, resumed = existing, true
		case errors.Is(err, shared.ErrJobNotFound):
		default:
			return nil, false, fmt.Errorf("failed to load job: %w", err)
		}
	}

	if job == nil {
		source, dest := opts.SourceService, opts.DestService
		if source == "" {
			source = DefaultSourceService
		}
		if dest == "" {
			dest = DefaultDestService
		}

		job = models.NewJob(0, source, dest)
		job.SetID(opts.JobID)
		if err := e.jobs.Create(ctx, job); err != nil {
			return nil, false, fmt.Errorf("failed to create job: %w", err)
		}
	}

	job.Start(e.now())
	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, false, fmt.Errorf("failed to start job: %w", err)
	}

	return job, resumed, nil
}

// progressExecutor reports one update per executed item.
type progressExecutor struct {
	inner    importers.Executor
	progress chan<- ProgressUpdate
	step     int
	total    int
}

func (p *progressExecutor) ExecuteAndSwallowErrors(ctx context.Context, key, label string, fn idempotent.Producer) (string, bool) {
	value, ok := p.inner.ExecuteAndSwallowErrors(ctx, key, label, fn)
	p.step++
	sendProgress(p.progress, albumUpdate(p.step, p.total, label, ok))
	return value, ok
}
