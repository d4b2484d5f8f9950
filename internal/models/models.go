package models

import (
	"context"
	"time"
)

var _ Model = (*Job)(nil)

// Model is a persisted entity with a string id, timestamps and self-validation.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is the CRUD surface over one [Model] type.
//
// Delete is soft: deleted rows disappear from Get and List but stay in the table.
// List criteria keys are column names; unknown keys are ignored.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, model T) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, criteria map[string]any) ([]T, error)
}
