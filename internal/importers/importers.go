package importers

import (
	"context"

	"github.com/desertthunder/portx/internal/idempotent"
	"github.com/desertthunder/portx/internal/models"
)

// Executor runs a producer at most once per key within the current job.
//
// [idempotent.Executor] satisfies this interface.
type Executor interface {
	ExecuteAndSwallowErrors(ctx context.Context, key, label string, fn idempotent.Producer) (string, bool)
}

// PhotosImporter imports a photos container into a destination service.
type PhotosImporter interface {
	ImportItem(ctx context.Context, jobID string, executor Executor, authData *models.TokensAndURLAuthData, resource *models.PhotosContainer) models.ImportResult
}
