package team

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/dynamo"
)

// Table names and the secondary index used to look up a user's roles.
const (
	TeamsTable        = "teams"
	RolesTable        = "teamroles"
	RolesByUserIndex  = "username-index"
	rolesUserAttrName = "username"
)

// TeamsKeySchema is the key layout of the teams table.
var TeamsKeySchema = dynamo.KeySchema{Partition: "code"}

// RolesKeySchema is the key layout of the team roles table.
var RolesKeySchema = dynamo.KeySchema{Partition: "teamcode", Sort: "id"}

// DynamoRepository implements Repository on DynamoDB.
type DynamoRepository struct {
	table *dynamo.Table[Team]
	now   func() time.Time
}

// NewRepository creates a Repository backed by the named DynamoDB table.
func NewRepository(api dynamo.API, tableName string) Repository {
	return &DynamoRepository{
		table: dynamo.NewTable[Team](api, tableName, TeamsKeySchema),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new team. The code must be unused.
func (r *DynamoRepository) Create(ctx context.Context, t *Team) error {
	now := r.now()
	t.CreatedAt, t.UpdatedAt = now, now
	if t.ResponsiblePeople == nil {
		t.ResponsiblePeople = []string{}
	}

	if err := r.table.Create(ctx, *t); err != nil {
		if errors.Is(err, dynamo.ErrAlreadyExists) {
			return ErrDuplicateTeamCode
		}
		return fmt.Errorf("creating team: %w", err)
	}
	return nil
}

// Get retrieves a team by code.
func (r *DynamoRepository) Get(ctx context.Context, code string) (*Team, error) {
	t, err := r.table.Get(ctx, dynamo.Key{PartitionValue: code})
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("getting team: %w", err)
	}
	return t, nil
}

// List returns non-archived teams, optionally restricted to one organisation.
func (r *DynamoRepository) List(ctx context.Context, organisation string) ([]Team, error) {
	all, err := r.table.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}

	teams := make([]Team, 0, len(all))
	for _, t := range all {
		if t.Archived {
			continue
		}
		if organisation != "" && t.Organisation != organisation {
			continue
		}
		teams = append(teams, t)
	}
	return teams, nil
}

// Replace overwrites an existing team, keeping its creation time.
func (r *DynamoRepository) Replace(ctx context.Context, t *Team) error {
	existing, err := r.Get(ctx, t.Code)
	if err != nil {
		return err
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = r.now()
	if t.ResponsiblePeople == nil {
		t.ResponsiblePeople = []string{}
	}

	if err := r.table.Replace(ctx, *t); err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("replacing team: %w", err)
	}
	return nil
}

// Archive flags a team as archived.
func (r *DynamoRepository) Archive(ctx context.Context, code string) error {
	_, err := r.table.Update(ctx, dynamo.Key{PartitionValue: code}, map[string]any{
		"archived":  true,
		"updatedAt": r.now(),
	})
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("archiving team: %w", err)
	}
	return nil
}

// DynamoRoleRepository implements RoleRepository on DynamoDB.
type DynamoRoleRepository struct {
	table *dynamo.Table[Role]
	now   func() time.Time
}

// NewRoleRepository creates a RoleRepository backed by the named DynamoDB table.
func NewRoleRepository(api dynamo.API, tableName string) RoleRepository {
	return &DynamoRoleRepository{
		table: dynamo.NewTable[Role](api, tableName, RolesKeySchema),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a role with a freshly generated id.
func (r *DynamoRoleRepository) Create(ctx context.Context, role *Role) error {
	now := r.now()
	role.ID = uuid.NewString()
	role.CreatedAt, role.UpdatedAt = now, now
	if role.StartDate.IsZero() {
		role.StartDate = now
	}

	if err := r.table.Create(ctx, *role); err != nil {
		return fmt.Errorf("creating team role: %w", err)
	}
	return nil
}

// Get retrieves a single role.
func (r *DynamoRoleRepository) Get(ctx context.Context, teamCode, id string) (*Role, error) {
	role, err := r.table.Get(ctx, dynamo.Key{PartitionValue: teamCode, SortValue: id})
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("getting team role: %w", err)
	}
	return role, nil
}

// ListByTeam returns the non-archived roles of a team.
func (r *DynamoRoleRepository) ListByTeam(ctx context.Context, teamCode string) ([]Role, error) {
	roles, err := r.table.Query(ctx, dynamo.QueryInput{
		Attribute: RolesKeySchema.Partition,
		Value:     teamCode,
	})
	if err != nil {
		return nil, fmt.Errorf("listing team roles: %w", err)
	}
	return unarchived(roles), nil
}

// ListByUser returns the non-archived roles held by a user across all teams.
func (r *DynamoRoleRepository) ListByUser(ctx context.Context, username string) ([]Role, error) {
	roles, err := r.table.Query(ctx, dynamo.QueryInput{
		IndexName: RolesByUserIndex,
		Attribute: rolesUserAttrName,
		Value:     username,
	})
	if err != nil {
		return nil, fmt.Errorf("listing user team roles: %w", err)
	}
	return unarchived(roles), nil
}

// Replace overwrites an existing role, keeping its creation time.
func (r *DynamoRoleRepository) Replace(ctx context.Context, role *Role) error {
	existing, err := r.Get(ctx, role.TeamCode, role.ID)
	if err != nil {
		return err
	}
	role.CreatedAt = existing.CreatedAt
	role.UpdatedAt = r.now()

	if err := r.table.Replace(ctx, *role); err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("replacing team role: %w", err)
	}
	return nil
}

// Archive flags a role as archived.
func (r *DynamoRoleRepository) Archive(ctx context.Context, teamCode, id string) error {
	_, err := r.table.Update(ctx, dynamo.Key{PartitionValue: teamCode, SortValue: id}, map[string]any{
		"archived":  true,
		"updatedAt": r.now(),
	})
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("archiving team role: %w", err)
	}
	return nil
}

func unarchived(roles []Role) []Role {
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !r.Archived {
			out = append(out, r)
		}
	}
	return out
}
