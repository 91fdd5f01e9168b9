package bot

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"telegram-group-manager-bot/moderation"

	tu "github.com/mymmrac/telego/telegoutil"
)

// commandArgs returns the whitespace-separated words after the command
// itself.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// parseUserID parses the argument at index as a Telegram user ID.
func parseUserID(args []string, index int) (int64, error) {
	if len(args) <= index {
		return 0, fmt.Errorf("missing user id argument")
	}
	id, err := strconv.ParseInt(args[index], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: %w", args[index], err)
	}
	return id, nil
}

// sendResult renders a moderation result as a plain reply, marking
// denials and failures the way users expect.
func (b *Bot) sendResult(chatID int64, result moderation.Result) {
	text := result.Text
	switch result.Kind {
	case moderation.ResultDenied:
		text = "❌ " + text
	case moderation.ResultFailed:
		text = "⚠️ " + text
	}
	b.sendMessage(chatID, escapeMarkdownV2(text))
}

func escapeMarkdownV2(text string) string {
	specialChars := []string{
		"_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!", "&", "<",
	}

	for _, char := range specialChars {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

func (b *Bot) sendMessage(chatID int64, text string) {
	message := tu.Message(tu.ID(chatID), text)
	message.ParseMode = "MarkdownV2"

	_, err := b.api.SendMessage(message)
	if err != nil {
		// Check if it's a rate limit error
		if strings.Contains(err.Error(), "Too Many Requests") {
			// Extract retry_after value from error message
			// Format: "telego: sendMessage: api: 429 \"Too Many Requests: retry after 5\", migrate to chat ID: 0, retry after: 5"
			parts := strings.Split(err.Error(), "retry after: ")
			if len(parts) == 2 {
				// Parse the retry_after value
				var retryAfter int
				if _, _ = fmt.Sscanf(parts[1], "%d", &retryAfter); retryAfter > 0 {
					slog.Debug("bot: API error", "error", err.Error())
					slog.Info("bot: Rate limit hit, waiting", "seconds", retryAfter)
					time.Sleep(time.Duration(retryAfter) * time.Second)
					_, retryErr := b.api.SendMessage(message)
					if retryErr != nil {
						err = retryErr
					} else {
						err = nil
						slog.Info("bot: Message sent successfully after rate limit wait")
					}
				}
			}
		}
		if err != nil {
			slog.Error("bot: Failed to send message", "error", err, "chat_id", chatID, "text_length", len(text))
		}
	}
}
