package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"telegram-group-manager-bot/storage"

	"github.com/mymmrac/telego"
)

const eventTimeLayout = "2006-01-02 15:04"

func (b *Bot) createEventHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /createevent")
	msg := update.Message

	args := commandArgs(msg.Text)
	if len(args) == 0 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /createevent <title>|<YYYY-MM-DD HH:MM>|<description>"))
		return
	}

	parts := strings.Split(strings.Join(args, " "), "|")
	if len(parts) < 3 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Provide a title, a datetime, and a description."))
		return
	}

	title := strings.TrimSpace(parts[0])
	scheduledTime, err := time.Parse(eventTimeLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Datetime format should be YYYY-MM-DD HH:MM."))
		return
	}
	description := strings.TrimSpace(parts[2])

	if _, err := b.storage.CreateEvent(msg.Chat.ID, title, scheduledTime, description, msg.From.ID); err != nil {
		slog.Error("bot: Failed to create event", "error", err, "chat_id", msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Failed to create event. Try again later."))
		return
	}

	b.sendMessage(msg.Chat.ID, escapeMarkdownV2(
		fmt.Sprintf("Event '%s' created for %s.", title, scheduledTime.Format(eventTimeLayout))))
}

func (b *Bot) rsvpHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /rsvp")
	msg := update.Message

	args := commandArgs(msg.Text)
	if len(args) < 2 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /rsvp <event_id> <yes/no/maybe>"))
		return
	}

	eventID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Usage: /rsvp <event_id> <yes/no/maybe>"))
		return
	}

	status := strings.ToLower(args[1])
	if status != "yes" && status != "no" && status != "maybe" {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Invalid response. Use yes, no, or maybe."))
		return
	}

	event, err := b.storage.GetEvent(uint(eventID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.sendMessage(msg.Chat.ID, escapeMarkdownV2("No such event found."))
			return
		}
		slog.Error("bot: Failed to get event", "error", err, "event_id", eventID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Database error. Try again later."))
		return
	}

	if err := b.storage.UpsertRSVP(uint(eventID), msg.From.ID, status); err != nil {
		slog.Error("bot: Failed to record RSVP", "error", err, "event_id", eventID, "user_id", msg.From.ID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Failed to record RSVP. Try again later."))
		return
	}

	b.sendMessage(msg.Chat.ID, escapeMarkdownV2(
		fmt.Sprintf("RSVP recorded for event '%s'. You answered '%s'.", event.Title, status)))
}

func (b *Bot) showEventsHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /showevents")
	msg := update.Message

	events, err := b.storage.UpcomingEvents(msg.Chat.ID, time.Now())
	if err != nil {
		slog.Error("bot: Failed to list events", "error", err, "chat_id", msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("Database error. Try again later."))
		return
	}
	if len(events) == 0 {
		b.sendMessage(msg.Chat.ID, escapeMarkdownV2("No upcoming events."))
		return
	}

	var sb strings.Builder
	sb.WriteString("Upcoming Events:\n")
	for _, event := range events {
		fmt.Fprintf(&sb, "Event %d: %s at %s\n", event.ID, event.Title, event.ScheduledTime.Format(eventTimeLayout))
	}
	b.sendMessage(msg.Chat.ID, escapeMarkdownV2(sb.String()))
}
