package atomic

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist in the collection.
var ErrNotFound = errors.New("record not found")

// ListFilter selects non-archived records of one collection.
type ListFilter struct {
	Collection string
	// Reference, when non-empty, restricts results to that reference.
	Reference string
}

// Repository provides CRUD operations on atomic records.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, collection string, id uuid.UUID) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, error)
	Replace(ctx context.Context, rec *Record) error
	Archive(ctx context.Context, collection string, id uuid.UUID) error
}
