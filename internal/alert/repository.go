package alert

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/dynamo"
)

// Table is the base name of the system alerts table.
const Table = "systemalerts"

// KeySchema is the key layout of the system alerts table.
var KeySchema = dynamo.KeySchema{Partition: "id"}

// ErrAlertNotFound is returned when an alert record is not found.
var ErrAlertNotFound = errors.New("system alert not found")

// Repository provides CRUD operations on system alerts.
type Repository interface {
	Create(ctx context.Context, a *Alert) error
	Get(ctx context.Context, id string) (*Alert, error)
	// List returns every non-archived alert ordered by start date.
	List(ctx context.Context) ([]Alert, error)
	Replace(ctx context.Context, a *Alert) error
	Archive(ctx context.Context, id string) error
}

// DynamoRepository implements Repository on DynamoDB.
type DynamoRepository struct {
	table *dynamo.Table[Alert]
	now   func() time.Time
}

// NewRepository creates a Repository backed by the named DynamoDB table.
func NewRepository(api dynamo.API, tableName string) Repository {
	return &DynamoRepository{
		table: dynamo.NewTable[Alert](api, tableName, KeySchema),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts an alert with a generated id.
func (r *DynamoRepository) Create(ctx context.Context, a *Alert) error {
	now := r.now()
	a.ID = uuid.NewString()
	a.CreatedAt, a.UpdatedAt = now, now
	a.Archived = false

	if err := r.table.Create(ctx, *a); err != nil {
		return fmt.Errorf("creating system alert: %w", err)
	}
	return nil
}

// Get retrieves an alert by id.
func (r *DynamoRepository) Get(ctx context.Context, id string) (*Alert, error) {
	a, err := r.table.Get(ctx, dynamo.Key{PartitionValue: id})
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("getting system alert: %w", err)
	}
	return a, nil
}

// List implements Repository.
func (r *DynamoRepository) List(ctx context.Context) ([]Alert, error) {
	all, err := r.table.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing system alerts: %w", err)
	}

	out := make([]Alert, 0, len(all))
	for _, a := range all {
		if !a.Archived {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// Replace overwrites an existing alert, keeping its creation time.
func (r *DynamoRepository) Replace(ctx context.Context, a *Alert) error {
	existing, err := r.Get(ctx, a.ID)
	if err != nil {
		return err
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = r.now()

	if err := r.table.Replace(ctx, *a); err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return ErrAlertNotFound
		}
		return fmt.Errorf("replacing system alert: %w", err)
	}
	return nil
}

// Archive flags an alert as archived.
func (r *DynamoRepository) Archive(ctx context.Context, id string) error {
	_, err := r.table.Update(ctx, dynamo.Key{PartitionValue: id}, map[string]any{
		"archived":  true,
		"updatedAt": r.now(),
	})
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return ErrAlertNotFound
		}
		return fmt.Errorf("archiving system alert: %w", err)
	}
	return nil
}

// Active returns the alerts in their display window at now.
func Active(ctx context.Context, repo Repository, now time.Time) ([]Alert, error) {
	all, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Alert, 0, len(all))
	for _, a := range all {
		if a.ActiveAt(now) {
			out = append(out, a)
		}
	}
	return out, nil
}
