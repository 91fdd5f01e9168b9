package moderation_test

import (
	"fmt"
	"testing"

	"telegram-group-manager-bot/moderation"

	"github.com/stretchr/testify/assert"
)

var allRoles = []moderation.Role{
	moderation.RoleOwner,
	moderation.RoleAdministrator,
	moderation.RoleModerator,
	moderation.RoleMember,
	moderation.RoleRestricted,
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, moderation.RequireAdmin(moderation.RoleOwner))
	assert.NoError(t, moderation.RequireAdmin(moderation.RoleAdministrator))

	for _, role := range []moderation.Role{moderation.RoleModerator, moderation.RoleMember, moderation.RoleRestricted} {
		err := moderation.RequireAdmin(role)
		assert.ErrorIs(t, err, moderation.ErrInsufficientPrivilege, "role %q", role)
	}
}

// Every actor/target combination: the rank check denies exactly when the
// target's priority is equal to or above the actor's.
func TestCheckRankFullTable(t *testing.T) {
	for _, actor := range allRoles {
		for _, target := range allRoles {
			t.Run(fmt.Sprintf("%s_vs_%s", actor, target), func(t *testing.T) {
				err := moderation.CheckRank(actor, target)
				if target.Priority() >= actor.Priority() {
					assert.ErrorIs(t, err, moderation.ErrRankConflict)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	}
}
