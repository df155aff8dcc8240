// Package org stores organisation membership.
package org

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/dynamo"
)

// AdminCapability lets a non-administrator manage organisation membership.
const AdminCapability = "OrgAdmin"

// MembersTable is the base name of the organisation members table.
const MembersTable = "orgmembers"

// MembersKeySchema is the key layout of the organisation members table.
var MembersKeySchema = dynamo.KeySchema{Partition: "organisation", Sort: "username"}

// ErrMemberNotFound is returned when a membership record is not found.
var ErrMemberNotFound = errors.New("organisation member not found")

// ErrDuplicateMember is returned when the user already belongs to the organisation.
var ErrDuplicateMember = errors.New("user is already a member of the organisation")

// Member records a user's membership of an organisation.
type Member struct {
	Organisation string    `dynamodbav:"organisation" json:"organisation"`
	Username     string    `dynamodbav:"username" json:"username"`
	Role         string    `dynamodbav:"role" json:"role"`
	JoinedAt     time.Time `dynamodbav:"joinedAt" json:"joinedAt"`
}

// Repository provides operations on organisation membership. Removal is a
// hard delete.
type Repository interface {
	Add(ctx context.Context, m *Member) error
	List(ctx context.Context, organisation string) ([]Member, error)
	Remove(ctx context.Context, organisation, username string) error
}

// DynamoRepository implements Repository on DynamoDB.
type DynamoRepository struct {
	table *dynamo.Table[Member]
	now   func() time.Time
}

// NewRepository creates a Repository backed by the named DynamoDB table.
func NewRepository(api dynamo.API, tableName string) Repository {
	return &DynamoRepository{
		table: dynamo.NewTable[Member](api, tableName, MembersKeySchema),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Add inserts a membership record.
func (r *DynamoRepository) Add(ctx context.Context, m *Member) error {
	m.JoinedAt = r.now()
	if err := r.table.Create(ctx, *m); err != nil {
		if errors.Is(err, dynamo.ErrAlreadyExists) {
			return ErrDuplicateMember
		}
		return fmt.Errorf("adding organisation member: %w", err)
	}
	return nil
}

// List returns the members of an organisation ordered by username.
func (r *DynamoRepository) List(ctx context.Context, organisation string) ([]Member, error) {
	members, err := r.table.Query(ctx, dynamo.QueryInput{
		Attribute: MembersKeySchema.Partition,
		Value:     organisation,
	})
	if err != nil {
		return nil, fmt.Errorf("listing organisation members: %w", err)
	}
	return members, nil
}

// Remove deletes a membership record.
func (r *DynamoRepository) Remove(ctx context.Context, organisation, username string) error {
	err := r.table.Delete(ctx, dynamo.Key{PartitionValue: organisation, SortValue: username})
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("removing organisation member: %w", err)
	}
	return nil
}
