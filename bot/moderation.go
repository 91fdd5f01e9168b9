package bot

import (
	"log/slog"
	"strconv"
	"strings"

	"telegram-group-manager-bot/moderation"

	"github.com/mymmrac/telego"
)

// The moderation handlers are thin: parse arguments, hand the request
// to the moderation service, render the result. Authorization lives in
// the service, not here.

func (b *Bot) banHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /ban")
	msg := update.Message

	args := commandArgs(msg.Text)
	targetID, err := parseUserID(args, 0)
	if err != nil {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /ban <user_id> [reason]"))
		return
	}
	reason := strings.Join(args[1:], " ")

	b.sendResult(msg.Chat.ID, b.moderation.Ban(msg.From.ID, msg.Chat.ID, targetID, reason))
}

func (b *Bot) unbanHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /unban")
	msg := update.Message

	targetID, err := parseUserID(commandArgs(msg.Text), 0)
	if err != nil {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /unban <user_id>"))
		return
	}

	b.sendResult(msg.Chat.ID, b.moderation.Unban(msg.From.ID, msg.Chat.ID, targetID))
}

func (b *Bot) muteHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /mute")
	msg := update.Message

	args := commandArgs(msg.Text)
	targetID, err := parseUserID(args, 0)
	if err != nil {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /mute <user_id> [minutes]"))
		return
	}

	minutes := moderation.DefaultMuteMinutes
	if len(args) > 1 {
		minutes, err = strconv.Atoi(args[1])
		if err != nil {
			b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /mute <user_id> [minutes]"))
			return
		}
	}

	b.sendResult(msg.Chat.ID, b.moderation.Mute(msg.From.ID, msg.Chat.ID, targetID, minutes))
}

func (b *Bot) unmuteHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /unmute")
	msg := update.Message

	targetID, err := parseUserID(commandArgs(msg.Text), 0)
	if err != nil {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /unmute <user_id>"))
		return
	}

	b.sendResult(msg.Chat.ID, b.moderation.Unmute(msg.From.ID, msg.Chat.ID, targetID))
}

func (b *Bot) warnHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /warn")
	msg := update.Message

	args := commandArgs(msg.Text)
	targetID, err := parseUserID(args, 0)
	if err != nil {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /warn <user_id> [reason]"))
		return
	}
	reason := strings.Join(args[1:], " ")

	b.sendResult(msg.Chat.ID, b.moderation.Warn(msg.From.ID, msg.Chat.ID, targetID, reason))
}

func (b *Bot) promoteHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /promote")
	msg := update.Message

	args := commandArgs(msg.Text)
	targetID, err := parseUserID(args, 0)
	if err != nil || len(args) < 2 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /promote <user_id> <role>"))
		return
	}

	b.sendResult(msg.Chat.ID, b.moderation.Promote(msg.From.ID, msg.Chat.ID, targetID, args[1]))
}

func (b *Bot) demoteHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /demote")
	msg := update.Message

	targetID, err := parseUserID(commandArgs(msg.Text), 0)
	if err != nil {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /demote <user_id>"))
		return
	}

	b.sendResult(msg.Chat.ID, b.moderation.Demote(msg.From.ID, msg.Chat.ID, targetID))
}

func (b *Bot) lockdownHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /lockdown")
	msg := update.Message

	args := commandArgs(msg.Text)
	if len(args) == 0 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /lockdown <on/off>"))
		return
	}

	switch strings.ToLower(args[0]) {
	case "on":
		b.sendResult(msg.Chat.ID, b.moderation.SetLockdown(msg.From.ID, msg.Chat.ID, true))
	case "off":
		b.sendResult(msg.Chat.ID, b.moderation.SetLockdown(msg.From.ID, msg.Chat.ID, false))
	default:
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /lockdown <on/off>"))
	}
}
