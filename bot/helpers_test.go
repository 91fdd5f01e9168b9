package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandArgs(t *testing.T) {
	assert.Nil(t, commandArgs("/ban"))
	assert.Equal(t, []string{"123"}, commandArgs("/ban 123"))
	assert.Equal(t, []string{"123", "spamming", "links"}, commandArgs("/ban 123 spamming links"))
	assert.Equal(t, []string{"123"}, commandArgs("/ban   123  "))
}

func TestParseUserID(t *testing.T) {
	id, err := parseUserID([]string{"12345"}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), id)

	_, err = parseUserID(nil, 0)
	assert.Error(t, err)

	_, err = parseUserID([]string{"@username"}, 0)
	assert.Error(t, err)
}

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, "plain text", escapeMarkdownV2("plain text"))
	assert.Equal(t, "1 \\+ 1 \\= 2\\.", escapeMarkdownV2("1 + 1 = 2."))
	assert.Equal(t, "\\[link\\]\\(url\\)", escapeMarkdownV2("[link](url)"))
}
