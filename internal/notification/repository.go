package notification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/dynamo"
)

// Table is the base name of the notifications table.
const Table = "notifications"

// KeySchema is the key layout of the notifications table.
var KeySchema = dynamo.KeySchema{Partition: "username", Sort: "id"}

// ErrNotificationNotFound is returned when a notification record is not found.
var ErrNotificationNotFound = errors.New("notification not found")

// Repository provides operations on a user's notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// ListForUser returns non-archived notifications, newest first.
	ListForUser(ctx context.Context, username string) ([]Notification, error)
	MarkRead(ctx context.Context, username, id string) (*Notification, error)
	Archive(ctx context.Context, username, id string) error
}

// DynamoRepository implements Repository on DynamoDB.
type DynamoRepository struct {
	table *dynamo.Table[Notification]
	now   func() time.Time
}

// NewRepository creates a Repository backed by the named DynamoDB table.
func NewRepository(api dynamo.API, tableName string) Repository {
	return &DynamoRepository{
		table: dynamo.NewTable[Notification](api, tableName, KeySchema),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a notification with a generated id.
func (r *DynamoRepository) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.NewString()
	n.CreatedAt = r.now()
	n.Read, n.Archived = false, false

	if err := r.table.Create(ctx, *n); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// ListForUser implements Repository.
func (r *DynamoRepository) ListForUser(ctx context.Context, username string) ([]Notification, error) {
	items, err := r.table.Query(ctx, dynamo.QueryInput{
		Attribute: KeySchema.Partition,
		Value:     username,
	})
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	out := make([]Notification, 0, len(items))
	for _, n := range items {
		if !n.Archived {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MarkRead flags a notification as read.
func (r *DynamoRepository) MarkRead(ctx context.Context, username, id string) (*Notification, error) {
	n, err := r.table.Update(ctx, dynamo.Key{PartitionValue: username, SortValue: id}, map[string]any{"read": true})
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("marking notification read: %w", err)
	}
	return n, nil
}

// Archive flags a notification as archived.
func (r *DynamoRepository) Archive(ctx context.Context, username, id string) error {
	_, err := r.table.Update(ctx, dynamo.Key{PartitionValue: username, SortValue: id}, map[string]any{"archived": true})
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("archiving notification: %w", err)
	}
	return nil
}
