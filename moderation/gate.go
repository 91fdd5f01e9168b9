package moderation

// The gate is stateless and never touches storage: callers resolve the
// roles first, so these checks stay independently testable.

// RequireAdmin denies any actor ranked below administrator.
func RequireAdmin(actor Role) error {
	if actor.Priority() < RoleAdministrator.Priority() {
		return ErrInsufficientPrivilege
	}
	return nil
}

// CheckRank denies rank-sensitive actions when the target rank is equal
// to or above the actor's own. Promote checks the requested role, demote
// checks the target's current role: an actor can never raise someone to
// its own level or act against a peer or superior.
func CheckRank(actor, target Role) error {
	if target.Priority() >= actor.Priority() {
		return ErrRankConflict
	}
	return nil
}
