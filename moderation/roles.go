package moderation

import "strings"

// Role is the closed set of moderation roles a group member can hold.
type Role string

const (
	RoleOwner         Role = "owner"
	RoleAdministrator Role = "administrator"
	RoleModerator     Role = "moderator"
	RoleMember        Role = "member"
	RoleRestricted    Role = "restricted"
)

// Priority returns the role's position in the privilege order, higher is
// more privileged. Values outside the closed set rank as a plain member
// so a malformed stored role can never lock a group out of moderation.
func (r Role) Priority() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdministrator:
		return 3
	case RoleModerator:
		return 2
	case RoleRestricted:
		return 0
	default:
		return 1
	}
}

func (r Role) String() string {
	return string(r)
}

// KnownRole resolves s to a Role only when it names one of the five
// roles or an accepted alias. Comparison is case-insensitive.
func KnownRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "owner", "creator":
		return RoleOwner, true
	case "administrator", "admin", "superadmin":
		return RoleAdministrator, true
	case "moderator":
		return RoleModerator, true
	case "member":
		return RoleMember, true
	case "restricted":
		return RoleRestricted, true
	default:
		return "", false
	}
}

// ParseRole maps an external role spelling (stored value, Telegram member
// status, command argument) onto the closed Role set. This is the single
// place alternate spellings are collapsed; anything unrecognized becomes
// RoleMember.
func ParseRole(s string) Role {
	role, ok := KnownRole(s)
	if !ok {
		return RoleMember
	}
	return role
}

// RoleForPriority returns the role occupying the given priority level,
// flooring everything below moderator at member. Demote uses it to step
// one level down.
func RoleForPriority(p int) Role {
	switch p {
	case 4:
		return RoleOwner
	case 3:
		return RoleAdministrator
	case 2:
		return RoleModerator
	default:
		return RoleMember
	}
}
