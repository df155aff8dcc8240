package team

import (
	"context"
	"errors"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrDuplicateTeamCode is returned when a team with the same code already exists.
var ErrDuplicateTeamCode = errors.New("team code already exists")

// ErrRoleNotFound is returned when a team role record is not found.
var ErrRoleNotFound = errors.New("team role not found")

// Repository provides CRUD operations on the teams table.
type Repository interface {
	Create(ctx context.Context, team *Team) error
	Get(ctx context.Context, code string) (*Team, error)
	// List returns non-archived teams; an empty organisation matches all.
	List(ctx context.Context, organisation string) ([]Team, error)
	Replace(ctx context.Context, team *Team) error
	Archive(ctx context.Context, code string) error
}

// RoleRepository provides CRUD operations on the team roles table.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	Get(ctx context.Context, teamCode, id string) (*Role, error)
	ListByTeam(ctx context.Context, teamCode string) ([]Role, error)
	ListByUser(ctx context.Context, username string) ([]Role, error)
	Replace(ctx context.Context, role *Role) error
	Archive(ctx context.Context, teamCode, id string) error
}
