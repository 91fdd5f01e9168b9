// Package moderation implements the role hierarchy, authorization
// checks, warning escalation and time-bound restrictions behind the
// bot's moderation commands. The durable store is authoritative; calls
// to the chat platform are best-effort and never rolled into a
// transaction with local state.
package moderation

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"telegram-group-manager-bot/storage"
)

// DefaultMuteMinutes is applied when a mute command gives no duration.
const DefaultMuteMinutes = 10

// Store is the slice of the storage layer the moderation engine relies
// on. *storage.Storage satisfies it; tests may substitute fakes.
type Store interface {
	GetMembership(groupID, userID int64) (*storage.Membership, error)
	SetRole(groupID, userID int64, role string) error
	IncrementWarnings(groupID, userID int64) (int, error)
	ResetWarnings(groupID, userID int64) error
	Mute(groupID, userID int64, until time.Time) error
	Unmute(groupID, userID int64) error
	IsMuted(groupID, userID int64, at time.Time) (bool, error)
	SetLockdown(groupID int64, enabled bool) error
	IsLockedDown(groupID int64) (bool, error)
}

// Enforcer is the chat platform's enforcement surface. A failed call is
// logged and surfaced but never undoes already-committed local state.
type Enforcer interface {
	ResolveRole(groupID, userID int64) (Role, error)
	Ban(groupID, userID int64) error
	Unban(groupID, userID int64) error
	Restrict(groupID, userID int64, allowSend bool, until time.Time) error
	SetGroupPermissions(groupID int64, allowSend bool) error
}

// ResultKind discriminates the outcome of a moderation operation.
type ResultKind int

const (
	ResultOk ResultKind = iota
	ResultDenied
	ResultFailed
)

// Result is what every moderation operation returns. Text is plain
// prose; the transport layer decides how to render it.
type Result struct {
	Kind ResultKind
	Text string
}

func Ok(format string, args ...any) Result {
	return Result{Kind: ResultOk, Text: fmt.Sprintf(format, args...)}
}

func Denied(format string, args ...any) Result {
	return Result{Kind: ResultDenied, Text: fmt.Sprintf(format, args...)}
}

func Failed(format string, args ...any) Result {
	return Result{Kind: ResultFailed, Text: fmt.Sprintf(format, args...)}
}

// Service orchestrates the role hierarchy, warning ledger and
// restriction records behind the externally visible operations.
type Service struct {
	store    Store
	enforcer Enforcer
	ledger   *WarningLedger
}

func NewService(store Store, enforcer Enforcer) *Service {
	return &Service{
		store:    store,
		enforcer: enforcer,
		ledger:   NewWarningLedger(store),
	}
}

func enforcementFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrExternalEnforcement, err)
}

// actorRole resolves the actor's effective role. The stored membership
// wins; an absent record falls back to the platform's own member status.
// A platform lookup failure degrades to plain member, so an outage can
// never grant privilege. Roles are re-read on every call: privilege
// decisions never trust a cached value.
func (s *Service) actorRole(groupID, userID int64) (Role, error) {
	member, err := s.store.GetMembership(groupID, userID)
	if err == nil {
		return ParseRole(member.Role), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return RoleMember, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	role, err := s.enforcer.ResolveRole(groupID, userID)
	if err != nil {
		slog.Warn("moderation: Platform role lookup failed, treating actor as member",
			"error", err, "group_id", groupID, "user_id", userID)
		return RoleMember, nil
	}
	return role, nil
}

// requireAdmin resolves the actor's role and applies the administrative
// gate, returning a non-nil Result when the operation must stop.
func (s *Service) requireAdmin(groupID, actorID int64) *Result {
	actor, err := s.actorRole(groupID, actorID)
	if err != nil {
		r := Failed("Cannot resolve your role: %v", err)
		return &r
	}
	if err := RequireAdmin(actor); err != nil {
		r := Denied("Admin privileges required.")
		return &r
	}
	return nil
}

// CanModerate reports whether the user currently holds administrator
// rank or above in the group. Used by handlers outside the moderation
// command set that are still admin-gated.
func (s *Service) CanModerate(groupID, userID int64) bool {
	role, err := s.actorRole(groupID, userID)
	if err != nil {
		return false
	}
	return RequireAdmin(role) == nil
}

// IsMuted reports whether the user is currently muted in the group.
func (s *Service) IsMuted(groupID, userID int64) (bool, error) {
	return s.store.IsMuted(groupID, userID, time.Now())
}

// Ban removes the target from the group via the platform. Bans are not
// rank-checked: any administrator may ban any target. Nothing is written
// locally, so a failed platform call changes no state.
func (s *Service) Ban(actorID, groupID, targetID int64, reason string) Result {
	if r := s.requireAdmin(groupID, actorID); r != nil {
		return *r
	}
	if reason == "" {
		reason = "No reason given"
	}
	if err := s.enforcer.Ban(groupID, targetID); err != nil {
		err = enforcementFailed(err)
		slog.Error("moderation: Ban enforcement failed",
			"error", err, "group_id", groupID, "target_id", targetID)
		return Failed("Failed to ban user %d: %v", targetID, err)
	}
	return Ok("User %d banned. Reason: %s", targetID, reason)
}

// Unban lifts a platform ban. Symmetric to Ban: administrative-only, no
// local state.
func (s *Service) Unban(actorID, groupID, targetID int64) Result {
	if r := s.requireAdmin(groupID, actorID); r != nil {
		return *r
	}
	if err := s.enforcer.Unban(groupID, targetID); err != nil {
		err = enforcementFailed(err)
		slog.Error("moderation: Unban enforcement failed",
			"error", err, "group_id", groupID, "target_id", targetID)
		return Failed("Failed to unban user %d: %v", targetID, err)
	}
	return Ok("User %d has been unbanned.", targetID)
}

// Mute restricts the target for the given number of minutes. The local
// record is written first and stays in place even when the platform call
// fails: the record is authoritative, enforcement can be retried.
func (s *Service) Mute(actorID, groupID, targetID int64, minutes int) Result {
	if r := s.requireAdmin(groupID, actorID); r != nil {
		return *r
	}
	if minutes <= 0 {
		err := fmt.Errorf("%w: mute duration must be a positive number of minutes", ErrInvalidArgument)
		return Denied("%v.", err)
	}

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := s.store.Mute(groupID, targetID, until); err != nil {
		return Failed("Failed to record mute: %v", err)
	}

	if err := s.enforcer.Restrict(groupID, targetID, false, until); err != nil {
		err = enforcementFailed(err)
		slog.Error("moderation: Mute enforcement failed, local record kept",
			"error", err, "group_id", groupID, "target_id", targetID, "until", until)
		return Failed("Muted user %d locally, but platform enforcement failed: %v", targetID, err)
	}
	return Ok("Muted user %d for %d minutes.", targetID, minutes)
}

// Unmute clears the local mute record and lifts the platform
// restriction. A missing local record is not an error: the platform side
// may still hold a restriction worth lifting.
func (s *Service) Unmute(actorID, groupID, targetID int64) Result {
	if r := s.requireAdmin(groupID, actorID); r != nil {
		return *r
	}

	if err := s.store.Unmute(groupID, targetID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return Failed("Failed to clear mute record: %v", err)
	}

	if err := s.enforcer.Restrict(groupID, targetID, true, time.Time{}); err != nil {
		err = enforcementFailed(err)
		slog.Error("moderation: Unmute enforcement failed",
			"error", err, "group_id", groupID, "target_id", targetID)
		return Failed("Failed to unmute user %d: %v", targetID, err)
	}
	return Ok("User %d has been unmuted.", targetID)
}

// Warn records a warning against the target. Reaching the threshold
// triggers an automatic ban; the warning itself is never rolled back
// when that ban fails, and the counter is reset only after the ban went
// through so the escalation stays retryable.
func (s *Service) Warn(actorID, groupID, targetID int64, reason string) Result {
	if r := s.requireAdmin(groupID, actorID); r != nil {
		return *r
	}
	if reason == "" {
		reason = "No reason provided"
	}

	res, err := s.ledger.Warn(groupID, targetID)
	if err != nil {
		if errors.Is(err, ErrUnknownMember) {
			return Denied("Cannot warn user %d: no membership record.", targetID)
		}
		return Failed("Failed to record warning: %v", err)
	}

	text := fmt.Sprintf("User %d warned. Reason: %s\nTotal warnings: %d", targetID, reason, res.Count)
	if !res.Escalated {
		return Ok("%s", text)
	}

	if err := s.enforcer.Ban(groupID, targetID); err != nil {
		err = enforcementFailed(err)
		slog.Error("moderation: Auto-ban after warning escalation failed",
			"error", err, "group_id", groupID, "target_id", targetID, "warnings", res.Count)
		return Failed("%s\nWarning limit reached, but auto-ban failed: %v", text, err)
	}

	if err := s.store.ResetWarnings(groupID, targetID); err != nil {
		slog.Error("moderation: Failed to reset warnings after auto-ban",
			"error", err, "group_id", groupID, "target_id", targetID)
	}
	return Ok("%s\nUser %d has been auto-banned for exceeding the warning limit.", text, targetID)
}

// Promote sets the target's stored role. The requested role must name a
// known role and sit strictly below the actor's own rank.
func (s *Service) Promote(actorID, groupID, targetID int64, requestedRole string) Result {
	actor, err := s.actorRole(groupID, actorID)
	if err != nil {
		return Failed("Cannot resolve your role: %v", err)
	}
	if err := RequireAdmin(actor); err != nil {
		return Denied("Admin privileges required.")
	}

	role, ok := KnownRole(requestedRole)
	if !ok {
		return Denied("Invalid role %q. Valid roles: owner, administrator, moderator, member, restricted.", requestedRole)
	}
	if err := CheckRank(actor, role); err != nil {
		return Denied("Cannot promote to a role equal to or above your own.")
	}

	if err := s.store.SetRole(groupID, targetID, role.String()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Denied("User %d has no membership record.", targetID)
		}
		return Failed("Failed to update role: %v", err)
	}
	return Ok("User %d promoted to %s.", targetID, role)
}

// Demote lowers the target's stored role by exactly one priority level,
// flooring at member. The target's current rank must sit strictly below
// the actor's.
func (s *Service) Demote(actorID, groupID, targetID int64) Result {
	actor, err := s.actorRole(groupID, actorID)
	if err != nil {
		return Failed("Cannot resolve your role: %v", err)
	}
	if err := RequireAdmin(actor); err != nil {
		return Denied("Admin privileges required.")
	}

	member, err := s.store.GetMembership(groupID, targetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Denied("User %d has no membership record.", targetID)
		}
		return Failed("Failed to look up user %d: %v", targetID, err)
	}

	current := ParseRole(member.Role)
	if err := CheckRank(actor, current); err != nil {
		return Denied("You cannot demote a user ranked equal to or above you.")
	}

	next := RoleForPriority(current.Priority() - 1)
	if err := s.store.SetRole(groupID, targetID, next.String()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Denied("User %d has no membership record.", targetID)
		}
		return Failed("Failed to update role: %v", err)
	}
	return Ok("User %d has been demoted to %s.", targetID, next)
}

// SetLockdown toggles the group-wide send restriction. The local marker
// is written first; a failed platform call leaves it in place.
func (s *Service) SetLockdown(actorID, groupID int64, enabled bool) Result {
	if r := s.requireAdmin(groupID, actorID); r != nil {
		return *r
	}

	if err := s.store.SetLockdown(groupID, enabled); err != nil {
		return Failed("Failed to record lockdown state: %v", err)
	}

	if err := s.enforcer.SetGroupPermissions(groupID, !enabled); err != nil {
		err = enforcementFailed(err)
		slog.Error("moderation: Lockdown enforcement failed, local record kept",
			"error", err, "group_id", groupID, "enabled", enabled)
		return Failed("Lockdown state recorded, but platform permission change failed: %v", err)
	}

	if enabled {
		return Ok("Lockdown mode enabled. Non-admins cannot send messages.")
	}
	return Ok("Lockdown mode disabled. Everyone can send messages now.")
}
