package storage_test

import (
	"testing"
	"time"

	"telegram-group-manager-bot/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureGroupIsIdempotent(t *testing.T) {
	store := newTestStorage(t)

	first, err := store.EnsureGroup(-1, "Test Group")
	require.NoError(t, err)

	second, err := store.EnsureGroup(-1, "Renamed Group")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Test Group", second.Title)
}

func TestGroupRulesAndWelcome(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.EnsureGroup(-1, "Test Group")
	require.NoError(t, err)

	require.NoError(t, store.SetRules(-1, "Be nice."))
	require.NoError(t, store.SetWelcome(-1, "Welcome aboard!"))

	group, err := store.GetGroup(-1)
	require.NoError(t, err)
	assert.Equal(t, "Be nice.", group.Rules)
	assert.Equal(t, "Welcome aboard!", group.WelcomeMessage)
}

func TestSetRulesOnUnknownGroup(t *testing.T) {
	store := newTestStorage(t)

	assert.ErrorIs(t, store.SetRules(-404, "Be nice."), storage.ErrNotFound)
}

func TestShortURLRoundTrip(t *testing.T) {
	store := newTestStorage(t)

	code, err := store.CreateShortURL("http://example.com/page", 10)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	row, err := store.GetShortURL(code)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/page", row.OriginalURL)
	assert.Equal(t, int64(10), row.CreatedBy)
}

func TestGetShortURLNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetShortURL("nosuch")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPollLifecycle(t *testing.T) {
	store := newTestStorage(t)

	pollID, err := store.CreatePoll(-1, "Pizza or sushi?", []string{"pizza", "sushi"})
	require.NoError(t, err)

	poll, options, err := store.GetPoll(pollID)
	require.NoError(t, err)
	assert.True(t, poll.IsActive)
	assert.Equal(t, []string{"pizza", "sushi"}, options)

	require.NoError(t, store.RecordVote(pollID, 10, "pizza"))
	require.NoError(t, store.RecordVote(pollID, 11, "pizza"))
	require.NoError(t, store.RecordVote(pollID, 12, "sushi"))
	// A vote for an option that never existed is ignored in the tally.
	require.NoError(t, store.RecordVote(pollID, 13, "tacos"))

	gotOptions, tally, err := store.ClosePoll(pollID)
	require.NoError(t, err)
	assert.Equal(t, []string{"pizza", "sushi"}, gotOptions)
	assert.Equal(t, map[string]int{"pizza": 2, "sushi": 1}, tally)

	poll, _, err = store.GetPoll(pollID)
	require.NoError(t, err)
	assert.False(t, poll.IsActive)

	// Closing again does not re-announce results.
	_, _, err = store.ClosePoll(pollID)
	assert.ErrorIs(t, err, storage.ErrPollClosed)
}

func TestGetPollNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, _, err := store.GetPoll(404)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEventRSVPUpsert(t *testing.T) {
	store := newTestStorage(t)

	eventID, err := store.CreateEvent(-1, "Meetup", time.Now().Add(24*time.Hour), "Monthly meetup", 10)
	require.NoError(t, err)

	require.NoError(t, store.UpsertRSVP(eventID, 10, "yes"))
	require.NoError(t, store.UpsertRSVP(eventID, 10, "maybe"))

	event, err := store.GetEvent(eventID)
	require.NoError(t, err)
	assert.Equal(t, "Meetup", event.Title)
}

func TestUpcomingEventsOrderedAndFiltered(t *testing.T) {
	store := newTestStorage(t)

	now := time.Now()
	_, err := store.CreateEvent(-1, "Later", now.Add(48*time.Hour), "", 10)
	require.NoError(t, err)
	_, err = store.CreateEvent(-1, "Sooner", now.Add(24*time.Hour), "", 10)
	require.NoError(t, err)
	_, err = store.CreateEvent(-1, "Past", now.Add(-24*time.Hour), "", 10)
	require.NoError(t, err)
	_, err = store.CreateEvent(-2, "Other group", now.Add(24*time.Hour), "", 10)
	require.NoError(t, err)

	events, err := store.UpcomingEvents(-1, now)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Sooner", events[0].Title)
	assert.Equal(t, "Later", events[1].Title)
}

func TestLogMessage(t *testing.T) {
	store := newTestStorage(t)

	require.NoError(t, store.LogMessage(-1, 10, "hello"))
	require.NoError(t, store.LogMessage(-1, 10, "world"))
}
