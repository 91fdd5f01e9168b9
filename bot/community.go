package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"telegram-group-manager-bot/storage"

	"github.com/mymmrac/telego"
)

var urlSchemeRe = regexp.MustCompile(`^https?://`)

const helpText = "Available Commands:\n\n" +
	"/start - Bot introduction and setup\n" +
	"/help - Display this help message\n" +
	"/rules - Show current group rules\n" +
	"/setrules <rules> - Set or update group rules (admin only)\n" +
	"/ban <user_id> [reason] - Ban a user (admin only)\n" +
	"/unban <user_id> - Unban a user (admin only)\n" +
	"/mute <user_id> [minutes] - Temporarily mute a user (admin only)\n" +
	"/unmute <user_id> - Unmute a user (admin only)\n" +
	"/warn <user_id> [reason] - Warn a user (admin only)\n" +
	"/promote <user_id> <role> - Promote a user to a higher role (admin only)\n" +
	"/demote <user_id> - Demote a user one level down (admin only)\n" +
	"/lockdown <on/off> - Restrict or allow messages for most users (admin only)\n" +
	"/setwelcome <message> - Customize welcome message (admin only)\n" +
	"/points [user_id] - Check a user's points\n" +
	"/shorturl <url> - Shorten a given URL\n" +
	"/poll <question>|<option1>|<option2>|... - Create a poll\n" +
	"/vote <poll_id> <option> - Vote on a poll\n" +
	"/stoppoll <poll_id> - Stop an active poll (admin only)\n" +
	"/createevent <title>|<YYYY-MM-DD HH:MM>|<description> - Schedule an event\n" +
	"/rsvp <event_id> <yes/no/maybe> - RSVP to an event\n" +
	"/showevents - Show upcoming events\n"

func (b *Bot) startHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /start")
	msg := update.Message

	// Records already exist thanks to the middleware; a custom welcome
	// wins over the stock introduction.
	welcome := "Hello! I'm your group manager bot.\n" +
		"• Use /help to see what I can do.\n" +
		"• Use /setwelcome <message> to customize an automatic welcome.\n" +
		"• Use /setrules <rules> to set or update the group rules."
	if group, err := b.storage.GetGroup(msg.Chat.ID); err == nil && group.WelcomeMessage != "" {
		welcome = group.WelcomeMessage
	}

	b.sendMessage(msg.Chat.ID, escapeMarkdownV2(welcome))
}

func (b *Bot) helpHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /help")
	b.sendMessage(update.Message.Chat.ID, escapeMarkdownV2(helpText))
}

func (b *Bot) rulesHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /rules")
	msg := update.Message

	group, err := b.storage.GetGroup(msg.Chat.ID)
	if err != nil || group.Rules == "" {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("No rules set. Use /setrules <rules> to add some."))
		return
	}

	b.sendMessage(msg.Chat.ID, escapeMarkdownV2(fmt.Sprintf("Group Rules:\n%s", group.Rules)))
}

func (b *Bot) setRulesHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /setrules")
	msg := update.Message

	if !b.moderation.CanModerate(msg.Chat.ID, msg.From.ID) {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("❌ Admin privileges required."))
		return
	}

	args := commandArgs(msg.Text)
	if len(args) == 0 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /setrules <rules text>"))
		return
	}

	if err := b.storage.SetRules(msg.Chat.ID, strings.Join(args, " ")); err != nil {
		slog.Error("bot: Failed to set rules", "error", err, "chat_id", msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Failed to update rules. Try again later."))
		return
	}

	b.sendMessage(msg.Chat.ID, escapeMarkdownV2("✅ Rules updated successfully."))
}

func (b *Bot) setWelcomeHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /setwelcome")
	msg := update.Message

	if !b.moderation.CanModerate(msg.Chat.ID, msg.From.ID) {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("❌ Admin privileges required."))
		return
	}

	args := commandArgs(msg.Text)
	if len(args) == 0 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /setwelcome <message>"))
		return
	}

	if err := b.storage.SetWelcome(msg.Chat.ID, strings.Join(args, " ")); err != nil {
		slog.Error("bot: Failed to set welcome message", "error", err, "chat_id", msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Failed to update welcome message. Try again later."))
		return
	}

	b.sendMessage(msg.Chat.ID, escapeMarkdownV2("✅ Welcome message updated."))
}

func (b *Bot) pointsHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /points")
	msg := update.Message

	userID := msg.From.ID
	args := commandArgs(msg.Text)
	if len(args) > 0 {
		id, err := parseUserID(args, 0)
		if err != nil {
			b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /points [user_id]"))
			return
		}
		userID = id
	}

	member, err := b.storage.GetMembership(msg.Chat.ID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.sendMessage(msg.Chat.ID, escapeMarkdownV2("User not found in the database."))
			return
		}
		slog.Error("bot: Failed to get membership for points", "error", err,
			"chat_id", msg.Chat.ID, "user_id", userID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Database error. Try again later."))
		return
	}

	b.sendMessage(msg.Chat.ID, escapeMarkdownV2(fmt.Sprintf("User %d has %d points.", userID, member.Points)))
}

func (b *Bot) shortURLHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /shorturl")
	msg := update.Message

	args := commandArgs(msg.Text)
	if len(args) == 0 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /shorturl <url>"))
		return
	}

	url := args[0]
	if !urlSchemeRe.MatchString(url) {
		url = "http://" + url
	}

	code, err := b.storage.CreateShortURL(url, msg.From.ID)
	if err != nil {
		slog.Error("bot: Failed to shorten URL", "error", err, "user_id", msg.From.ID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Failed to shorten URL. Try again later."))
		return
	}

	b.sendMessage(msg.Chat.ID, escapeMarkdownV2(fmt.Sprintf("Shortened URL: https://t.ly/%s", code)))
}

// messageHandler catches everything no command matched: plain group
// chatter feeds the points counter and the message log. Muted members
// earn nothing while their restriction is active.
func (b *Bot) messageHandler(bot *telego.Bot, update telego.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" || strings.HasPrefix(msg.Text, "/") {
		return
	}

	muted, err := b.moderation.IsMuted(msg.Chat.ID, msg.From.ID)
	if err != nil {
		slog.Error("bot: Failed to check mute state", "error", err,
			"chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	}
	if muted {
		return
	}

	if err := b.storage.AddPoint(msg.Chat.ID, msg.From.ID); err != nil {
		slog.Error("bot: Failed to award point", "error", err,
			"chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	}
	if err := b.storage.LogMessage(msg.Chat.ID, msg.From.ID, msg.Text); err != nil {
		slog.Error("bot: Failed to log message", "error", err,
			"chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	}
}
