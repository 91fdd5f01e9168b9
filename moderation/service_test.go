package moderation_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"telegram-group-manager-bot/moderation"
	"telegram-group-manager-bot/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGroup  int64 = -100123
	adminID    int64 = 1
	ownerID    int64 = 2
	memberID   int64 = 3
	targetID   int64 = 42
	outsiderID int64 = 99
)

type restrictCall struct {
	userID    int64
	allowSend bool
	until     time.Time
}

// fakeEnforcer stands in for the Telegram side: it records every call
// and fails on demand. Safe for concurrent use.
type fakeEnforcer struct {
	role    moderation.Role
	roleErr error

	banErr      error
	unbanErr    error
	restrictErr error
	permsErr    error

	mu         sync.Mutex
	banned     []int64
	unbanned   []int64
	restricted []restrictCall
	groupPerms []bool
}

func (f *fakeEnforcer) ResolveRole(groupID, userID int64) (moderation.Role, error) {
	if f.roleErr != nil {
		return moderation.RoleMember, f.roleErr
	}
	if f.role == "" {
		return moderation.RoleMember, nil
	}
	return f.role, nil
}

func (f *fakeEnforcer) Ban(groupID, userID int64) error {
	if f.banErr != nil {
		return f.banErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeEnforcer) Unban(groupID, userID int64) error {
	if f.unbanErr != nil {
		return f.unbanErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbanned = append(f.unbanned, userID)
	return nil
}

func (f *fakeEnforcer) Restrict(groupID, userID int64, allowSend bool, until time.Time) error {
	if f.restrictErr != nil {
		return f.restrictErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restricted = append(f.restricted, restrictCall{userID: userID, allowSend: allowSend, until: until})
	return nil
}

func (f *fakeEnforcer) SetGroupPermissions(groupID int64, allowSend bool) error {
	if f.permsErr != nil {
		return f.permsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groupPerms = append(f.groupPerms, allowSend)
	return nil
}

// newTestService builds a service over a real temp-file store with the
// usual cast: an administrator, an owner, a plain member and a fresh
// target.
func newTestService(t *testing.T) (*moderation.Service, *storage.Storage, *fakeEnforcer) {
	t.Helper()

	store, err := storage.New(filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=10000")
	require.NoError(t, err)

	seed := []struct {
		userID int64
		role   moderation.Role
	}{
		{adminID, moderation.RoleAdministrator},
		{ownerID, moderation.RoleOwner},
		{memberID, moderation.RoleMember},
		{targetID, moderation.RoleMember},
	}
	for _, s := range seed {
		_, err := store.EnsureMembership(testGroup, s.userID, "user")
		require.NoError(t, err)
		require.NoError(t, store.SetRole(testGroup, s.userID, s.role.String()))
	}

	enforcer := &fakeEnforcer{}
	return moderation.NewService(store, enforcer), store, enforcer
}

func TestBanRequiresAdmin(t *testing.T) {
	svc, _, enforcer := newTestService(t)

	result := svc.Ban(memberID, testGroup, targetID, "spam")
	assert.Equal(t, moderation.ResultDenied, result.Kind)
	assert.Empty(t, enforcer.banned)
}

func TestBanIsNotRankChecked(t *testing.T) {
	svc, _, enforcer := newTestService(t)

	// An administrator may ban even the owner.
	result := svc.Ban(adminID, testGroup, ownerID, "coup")
	assert.Equal(t, moderation.ResultOk, result.Kind)
	assert.Equal(t, []int64{ownerID}, enforcer.banned)
}

func TestBanEnforcementFailureReported(t *testing.T) {
	svc, _, enforcer := newTestService(t)
	enforcer.banErr = errors.New("api: 400 user is an administrator of the chat")

	result := svc.Ban(adminID, testGroup, targetID, "")
	assert.Equal(t, moderation.ResultFailed, result.Kind)
	assert.Contains(t, result.Text, "administrator of the chat")
}

func TestUnban(t *testing.T) {
	svc, _, enforcer := newTestService(t)

	result := svc.Unban(adminID, testGroup, targetID)
	assert.Equal(t, moderation.ResultOk, result.Kind)
	assert.Equal(t, []int64{targetID}, enforcer.unbanned)
}

func TestMuteRecordsLocallyBeforeEnforcement(t *testing.T) {
	svc, store, enforcer := newTestService(t)
	enforcer.restrictErr = errors.New("api: 500 internal error")

	result := svc.Mute(adminID, testGroup, targetID, 10)
	assert.Equal(t, moderation.ResultFailed, result.Kind)

	// The local record is authoritative and survives the failed call.
	muted, err := store.IsMuted(testGroup, targetID, time.Now())
	require.NoError(t, err)
	assert.True(t, muted)
}

func TestMuteHappyPath(t *testing.T) {
	svc, store, enforcer := newTestService(t)

	result := svc.Mute(adminID, testGroup, targetID, 10)
	assert.Equal(t, moderation.ResultOk, result.Kind)

	require.Len(t, enforcer.restricted, 1)
	assert.Equal(t, targetID, enforcer.restricted[0].userID)
	assert.False(t, enforcer.restricted[0].allowSend)

	muted, err := store.IsMuted(testGroup, targetID, time.Now())
	require.NoError(t, err)
	assert.True(t, muted)
}

func TestMuteRejectsNonPositiveDuration(t *testing.T) {
	svc, store, _ := newTestService(t)

	for _, minutes := range []int{0, -5} {
		result := svc.Mute(adminID, testGroup, targetID, minutes)
		assert.Equal(t, moderation.ResultDenied, result.Kind, "minutes %d", minutes)
	}

	muted, err := store.IsMuted(testGroup, targetID, time.Now())
	require.NoError(t, err)
	assert.False(t, muted)
}

func TestUnmuteClearsRecordAndRestriction(t *testing.T) {
	svc, store, enforcer := newTestService(t)

	require.Equal(t, moderation.ResultOk, svc.Mute(adminID, testGroup, targetID, 10).Kind)
	result := svc.Unmute(adminID, testGroup, targetID)
	assert.Equal(t, moderation.ResultOk, result.Kind)

	muted, err := store.IsMuted(testGroup, targetID, time.Now())
	require.NoError(t, err)
	assert.False(t, muted)

	// Second restrict call lifts the platform-side restriction.
	require.Len(t, enforcer.restricted, 2)
	assert.True(t, enforcer.restricted[1].allowSend)
}

func TestUnmuteWithoutLocalRecordStillLiftsRestriction(t *testing.T) {
	svc, _, enforcer := newTestService(t)

	result := svc.Unmute(adminID, testGroup, targetID)
	assert.Equal(t, moderation.ResultOk, result.Kind)
	require.Len(t, enforcer.restricted, 1)
	assert.True(t, enforcer.restricted[0].allowSend)
}

func TestWarnEscalatesExactlyAtThreshold(t *testing.T) {
	svc, store, enforcer := newTestService(t)

	first := svc.Warn(adminID, testGroup, targetID, "spam")
	require.Equal(t, moderation.ResultOk, first.Kind)
	assert.Contains(t, first.Text, "Total warnings: 1")
	assert.Empty(t, enforcer.banned)

	second := svc.Warn(adminID, testGroup, targetID, "spam again")
	require.Equal(t, moderation.ResultOk, second.Kind)
	assert.Contains(t, second.Text, "Total warnings: 2")
	assert.Empty(t, enforcer.banned)

	third := svc.Warn(adminID, testGroup, targetID, "enough")
	require.Equal(t, moderation.ResultOk, third.Kind)
	assert.Contains(t, third.Text, "auto-banned")
	assert.Equal(t, []int64{targetID}, enforcer.banned)

	// Counter resets after a successful auto-ban.
	member, err := store.GetMembership(testGroup, targetID)
	require.NoError(t, err)
	assert.Equal(t, 0, member.Warnings)
}

func TestWarnEscalationBanFailureKeepsWarnings(t *testing.T) {
	svc, store, enforcer := newTestService(t)

	require.Equal(t, moderation.ResultOk, svc.Warn(adminID, testGroup, targetID, "1").Kind)
	require.Equal(t, moderation.ResultOk, svc.Warn(adminID, testGroup, targetID, "2").Kind)

	enforcer.banErr = errors.New("api: 500 internal error")
	third := svc.Warn(adminID, testGroup, targetID, "3")
	assert.Equal(t, moderation.ResultFailed, third.Kind)
	assert.Contains(t, third.Text, "Total warnings: 3")

	// The warning is ground truth; it is not rolled back and not reset.
	member, err := store.GetMembership(testGroup, targetID)
	require.NoError(t, err)
	assert.Equal(t, 3, member.Warnings)

	// A fourth warning past the threshold does not re-fire escalation.
	enforcer.banErr = nil
	fourth := svc.Warn(adminID, testGroup, targetID, "4")
	assert.Equal(t, moderation.ResultOk, fourth.Kind)
	assert.Contains(t, fourth.Text, "Total warnings: 4")
	assert.Empty(t, enforcer.banned)
}

func TestWarnConcurrentEscalatesExactlyOnce(t *testing.T) {
	svc, store, enforcer := newTestService(t)

	// Three parallel warns starting from zero: the threshold count must
	// reach exactly one caller, so exactly one auto-ban fires.
	const warns = 3
	results := make([]moderation.Result, warns)

	var wg sync.WaitGroup
	for i := 0; i < warns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Warn(adminID, testGroup, targetID, "spam")
		}(i)
	}
	wg.Wait()

	for i, result := range results {
		require.Equal(t, moderation.ResultOk, result.Kind, "warn %d: %s", i, result.Text)
	}
	assert.Equal(t, []int64{targetID}, enforcer.banned)

	member, err := store.GetMembership(testGroup, targetID)
	require.NoError(t, err)
	assert.Equal(t, 0, member.Warnings)
}

func TestWarnUnknownMember(t *testing.T) {
	svc, _, _ := newTestService(t)

	result := svc.Warn(adminID, testGroup, outsiderID, "who are you")
	assert.Equal(t, moderation.ResultDenied, result.Kind)
	assert.Contains(t, result.Text, "no membership record")
}

func TestPromoteRankChecks(t *testing.T) {
	svc, store, _ := newTestService(t)

	// An administrator cannot promote to owner or to administrator.
	for _, role := range []string{"owner", "administrator"} {
		result := svc.Promote(adminID, testGroup, targetID, role)
		assert.Equal(t, moderation.ResultDenied, result.Kind, "requested %q", role)
	}

	// The owner can.
	result := svc.Promote(ownerID, testGroup, targetID, "administrator")
	require.Equal(t, moderation.ResultOk, result.Kind)

	member, err := store.GetMembership(testGroup, targetID)
	require.NoError(t, err)
	assert.Equal(t, "administrator", member.Role)
}

func TestPromoteRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	result := svc.Promote(ownerID, testGroup, targetID, "emperor")
	assert.Equal(t, moderation.ResultDenied, result.Kind)
	assert.Contains(t, result.Text, "Invalid role")
}

func TestPromoteUnknownTarget(t *testing.T) {
	svc, _, _ := newTestService(t)

	result := svc.Promote(ownerID, testGroup, outsiderID, "moderator")
	assert.Equal(t, moderation.ResultDenied, result.Kind)
}

func TestDemoteStepsDownOneLevel(t *testing.T) {
	svc, store, _ := newTestService(t)

	require.NoError(t, store.SetRole(testGroup, targetID, "administrator"))

	result := svc.Demote(ownerID, testGroup, targetID)
	require.Equal(t, moderation.ResultOk, result.Kind)

	member, err := store.GetMembership(testGroup, targetID)
	require.NoError(t, err)
	assert.Equal(t, "moderator", member.Role)
}

func TestDemoteFloorsAtMember(t *testing.T) {
	svc, store, _ := newTestService(t)

	result := svc.Demote(ownerID, testGroup, targetID)
	require.Equal(t, moderation.ResultOk, result.Kind)

	member, err := store.GetMembership(testGroup, targetID)
	require.NoError(t, err)
	assert.Equal(t, "member", member.Role)
}

func TestDemoteDeniedAgainstPeer(t *testing.T) {
	svc, store, _ := newTestService(t)

	require.NoError(t, store.SetRole(testGroup, targetID, "administrator"))

	result := svc.Demote(adminID, testGroup, targetID)
	assert.Equal(t, moderation.ResultDenied, result.Kind)
}

func TestDemoteUnknownMember(t *testing.T) {
	svc, _, _ := newTestService(t)

	result := svc.Demote(ownerID, testGroup, outsiderID)
	assert.Equal(t, moderation.ResultDenied, result.Kind)
	assert.Contains(t, result.Text, "no membership record")
}

func TestLockdownRoundTrip(t *testing.T) {
	svc, store, enforcer := newTestService(t)

	on := svc.SetLockdown(adminID, testGroup, true)
	require.Equal(t, moderation.ResultOk, on.Kind)

	locked, err := store.IsLockedDown(testGroup)
	require.NoError(t, err)
	assert.True(t, locked)
	require.Len(t, enforcer.groupPerms, 1)
	assert.False(t, enforcer.groupPerms[0])

	off := svc.SetLockdown(adminID, testGroup, false)
	require.Equal(t, moderation.ResultOk, off.Kind)

	locked, err = store.IsLockedDown(testGroup)
	require.NoError(t, err)
	assert.False(t, locked)
	require.Len(t, enforcer.groupPerms, 2)
	assert.True(t, enforcer.groupPerms[1])
}

func TestLockdownEnforcementFailureKeepsLocalState(t *testing.T) {
	svc, store, enforcer := newTestService(t)
	enforcer.permsErr = errors.New("api: 400 not enough rights")

	result := svc.SetLockdown(adminID, testGroup, true)
	assert.Equal(t, moderation.ResultFailed, result.Kind)

	locked, err := store.IsLockedDown(testGroup)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestActorRoleFallsBackToPlatform(t *testing.T) {
	svc, _, enforcer := newTestService(t)

	// No local membership for the outsider, but the platform says they
	// are an administrator.
	enforcer.role = moderation.RoleAdministrator
	result := svc.Ban(outsiderID, testGroup, targetID, "")
	assert.Equal(t, moderation.ResultOk, result.Kind)
}

func TestActorRolePlatformFailureDegradesToMember(t *testing.T) {
	svc, _, enforcer := newTestService(t)

	enforcer.roleErr = errors.New("api: timeout")
	result := svc.Ban(outsiderID, testGroup, targetID, "")
	assert.Equal(t, moderation.ResultDenied, result.Kind)
}

func TestStoredRoleWinsOverPlatform(t *testing.T) {
	svc, _, enforcer := newTestService(t)

	// Platform claims admin, but the stored role says plain member.
	enforcer.role = moderation.RoleAdministrator
	result := svc.Ban(memberID, testGroup, targetID, "")
	assert.Equal(t, moderation.ResultDenied, result.Kind)
}
