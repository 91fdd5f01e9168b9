package bot

import (
	"path/filepath"
	"testing"

	"telegram-group-manager-bot/storage"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBot(t *testing.T) (*Bot, *storage.Storage) {
	t.Helper()

	store, err := storage.New(filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=10000")
	require.NoError(t, err)
	return &Bot{storage: store}, store
}

func messageUpdate(text string) telego.Update {
	return telego.Update{Message: &telego.Message{
		Text: text,
		Chat: telego.Chat{ID: -1, Title: "Test Group"},
		From: &telego.User{ID: 10, Username: "alice"},
	}}
}

func TestEnsureRecordsMiddlewareSkipsMembershipForCommands(t *testing.T) {
	b, store := newTestBot(t)

	called := false
	b.ensureRecordsMiddleware(nil, messageUpdate("/ban 42"), func(bot *telego.Bot, update telego.Update) {
		called = true
	})
	assert.True(t, called)

	// The group row exists, but the command minted no member row: an
	// unknown sender keeps resolving through the live chat status
	// instead of a fresh default-role record.
	_, err := store.GetGroup(-1)
	require.NoError(t, err)
	_, err = store.GetMembership(-1, 10)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEnsureRecordsMiddlewareCreatesRecordsForChatter(t *testing.T) {
	b, store := newTestBot(t)

	b.ensureRecordsMiddleware(nil, messageUpdate("hello there"), func(bot *telego.Bot, update telego.Update) {})

	member, err := store.GetMembership(-1, 10)
	require.NoError(t, err)
	assert.Equal(t, "member", member.Role)
}
