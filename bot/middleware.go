package bot

import (
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// ensureRecordsMiddleware lazily creates the Group row for every
// inbound message, and the Membership row for plain chatter only.
// Sending a command must not mint a member-role row: an administrator
// with no local record is authorized through the live chat status, and
// a fresh default row would shadow that lookup. A storage failure here
// is logged but does not swallow the update: read-only commands still
// work.
func (b *Bot) ensureRecordsMiddleware(bot *telego.Bot, update telego.Update, next th.Handler) {
	if update.Message != nil && update.Message.From != nil {
		chat := update.Message.Chat
		from := update.Message.From

		if _, err := b.storage.EnsureGroup(chat.ID, chat.Title); err != nil {
			slog.Error("bot: Failed to ensure group record", "error", err, "chat_id", chat.ID)
		}
		if !strings.HasPrefix(update.Message.Text, "/") {
			if _, err := b.storage.EnsureMembership(chat.ID, from.ID, from.Username); err != nil {
				slog.Error("bot: Failed to ensure membership record", "error", err,
					"chat_id", chat.ID, "user_id", from.ID)
			}
		}
	}

	next(bot, update)
}
