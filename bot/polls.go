package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"telegram-group-manager-bot/storage"

	"github.com/mymmrac/telego"
)

func (b *Bot) pollHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /poll")
	msg := update.Message

	args := commandArgs(msg.Text)
	if len(args) == 0 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /poll question|option1|option2|..."))
		return
	}

	parts := strings.Split(strings.Join(args, " "), "|")
	if len(parts) < 2 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Provide a question and at least one option."))
		return
	}

	question := strings.TrimSpace(parts[0])
	options := make([]string, 0, len(parts)-1)
	for _, opt := range parts[1:] {
		options = append(options, strings.TrimSpace(opt))
	}

	pollID, err := b.storage.CreatePoll(msg.Chat.ID, question, options)
	if err != nil {
		slog.Error("bot: Failed to create poll", "error", err, "chat_id", msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Failed to create poll. Try again later."))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Poll created (ID: %d): %s\nOptions:\n", pollID, question)
	for _, opt := range options {
		fmt.Fprintf(&sb, "- %s\n", opt)
	}
	sb.WriteString("Use /vote <poll_id> <option> to vote.")
	b.sendMessage(msg.Chat.ID, escapeMarkdownV2(sb.String()))
}

func (b *Bot) voteHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /vote")
	msg := update.Message

	args := commandArgs(msg.Text)
	if len(args) < 2 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /vote <poll_id> <option>"))
		return
	}

	pollID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /vote <poll_id> <option>"))
		return
	}
	selected := strings.Join(args[1:], " ")

	poll, options, err := b.storage.GetPoll(uint(pollID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.sendMessage(msg.Chat.ID, escapeMarkdownV2("No such poll found."))
			return
		}
		slog.Error("bot: Failed to get poll", "error", err, "poll_id", pollID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Database error. Try again later."))
		return
	}
	if !poll.IsActive {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Poll is not active."))
		return
	}

	valid := false
	for _, opt := range options {
		if opt == selected {
			valid = true
			break
		}
	}
	if !valid {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Invalid option. Check poll options."))
		return
	}

	if err := b.storage.RecordVote(uint(pollID), msg.From.ID, selected); err != nil {
		slog.Error("bot: Failed to record vote", "error", err, "poll_id", pollID, "user_id", msg.From.ID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Failed to record vote. Try again later."))
		return
	}

	b.sendMessage(msg.Chat.ID, escapeMarkdownV2(fmt.Sprintf("Vote recorded for poll %d.", pollID)))
}

func (b *Bot) stopPollHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /stoppoll")
	msg := update.Message

	if !b.moderation.CanModerate(msg.Chat.ID, msg.From.ID) {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("❌ Admin privileges required."))
		return
	}

	args := commandArgs(msg.Text)
	if len(args) == 0 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /stoppoll <poll_id>"))
		return
	}

	pollID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /stoppoll <poll_id>"))
		return
	}

	options, tally, err := b.storage.ClosePoll(uint(pollID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.sendMessage(msg.Chat.ID, escapeMarkdownV2("No poll found with that ID."))
			return
		}
		if errors.Is(err, storage.ErrPollClosed) {
			b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Poll is not active."))
			return
		}
		slog.Error("bot: Failed to close poll", "error", err, "poll_id", pollID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Failed to stop poll. Try again later."))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Poll %d Results:\n", pollID)
	for _, opt := range options {
		fmt.Fprintf(&sb, "%s: %d votes\n", opt, tally[opt])
	}
	b.sendMessage(msg.Chat.ID, escapeMarkdownV2(sb.String()))
}
