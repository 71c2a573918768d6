package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/hanifn/discord-activity-bot/internal/domain"
)

type ResolveRoleMembersUsecase struct {
	dir domain.GuildDirectory
}

func NewResolveRoleMembersUsecase(dir domain.GuildDirectory) *ResolveRoleMembersUsecase {
	return &ResolveRoleMembersUsecase{dir: dir}
}

// Execute resolves a role selector (explicit role ID, or role name matched
// case-insensitively) to the set of members currently holding that role.
// The member fetch walks the full directory, so this call is slow on large
// guilds; the tags collected here are reused later for report display.
func (uc *ResolveRoleMembersUsecase) Execute(ctx context.Context, guildID, roleSelector string) (*domain.Membership, error) {
	roles, err := uc.dir.FetchRoles(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing roles: %v", domain.ErrRoleNotFound, err)
	}

	var role *domain.Role
	for i := range roles {
		if roles[i].ID == roleSelector {
			role = &roles[i]
			break
		}
	}
	if role == nil {
		for i := range roles {
			if strings.EqualFold(roles[i].Name, roleSelector) {
				role = &roles[i]
				break
			}
		}
	}
	if role == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrRoleNotFound, roleSelector)
	}

	members, err := uc.dir.FetchMembers(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMembershipUnavailable, err)
	}

	membership := &domain.Membership{
		RoleID:   role.ID,
		RoleName: role.Name,
		Tags:     make(map[domain.Identity]string),
	}
	for _, rec := range members {
		if !holdsRole(rec.Roles, role.ID) {
			continue
		}
		membership.Identities = append(membership.Identities, rec.ID)
		if rec.Tag != "" {
			membership.Tags[rec.ID] = rec.Tag
		}
	}
	return membership, nil
}

func holdsRole(roleIDs []string, roleID string) bool {
	for _, id := range roleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
