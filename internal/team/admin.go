package team

import (
	"context"
	"fmt"
	"time"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/auth"
)

// CanManage reports whether the caller may manage the given team: global
// administrators always can, other users need an active Admin role in it.
func CanManage(ctx context.Context, roles RoleRepository, id *auth.Identity, teamCode string, now time.Time) (bool, error) {
	if id == nil {
		return false, nil
	}
	if id.IsAdmin() {
		return true, nil
	}

	held, err := roles.ListByUser(ctx, id.Username)
	if err != nil {
		return false, fmt.Errorf("checking team roles: %w", err)
	}
	for _, r := range held {
		if r.TeamCode == teamCode && r.Role == AdminRole && r.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}
