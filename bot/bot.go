// Package bot wires the Telegram transport to the moderation engine and
// the storage layer: command routing, argument parsing and reply
// rendering live here, never in the core.
package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"telegram-group-manager-bot/moderation"
	"telegram-group-manager-bot/storage"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

var (
	ErrGetMe          = errors.New("cannot retrieve api user")
	ErrUpdatesChannel = errors.New("cannot get updates channel")
	ErrHandlerInit    = errors.New("cannot initialize handler")
)

type Bot struct {
	api        *telego.Bot
	storage    *storage.Storage
	moderation *moderation.Service
}

func New(token string, store *storage.Storage) (*Bot, error) {
	api, err := telego.NewBot(token)
	if err != nil {
		slog.Error("bot: Failed to create Telegram client", "error", err)
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	b := &Bot{
		api:     api,
		storage: store,
	}
	b.moderation = moderation.NewService(store, &telegramEnforcer{api: api})

	return b, nil
}

// Run starts long polling and blocks until the handler stops.
func (b *Bot) Run() error {
	botUser, err := b.api.GetMe()
	if err != nil {
		slog.Error("bot: Cannot retrieve api user", "error", err)
		return ErrGetMe
	}

	slog.Info("bot: Running as",
		"id", botUser.ID,
		"username", botUser.Username,
		"is_bot", botUser.IsBot)

	updates, err := b.api.UpdatesViaLongPolling(nil)
	if err != nil {
		slog.Error("bot: Cannot get update channel", "error", err)
		return ErrUpdatesChannel
	}

	bh, err := th.NewBotHandler(b.api, updates)
	if err != nil {
		slog.Error("bot: Cannot initialize bot handler", "error", err)
		return ErrHandlerInit
	}

	defer bh.Stop()
	defer b.api.StopLongPolling()

	bh.Use(b.ensureRecordsMiddleware)

	bh.Handle(b.startHandler, th.CommandEqual("start"))
	bh.Handle(b.helpHandler, th.CommandEqual("help"))
	bh.Handle(b.rulesHandler, th.CommandEqual("rules"))
	bh.Handle(b.setRulesHandler, th.CommandEqual("setrules"))
	bh.Handle(b.setWelcomeHandler, th.CommandEqual("setwelcome"))
	bh.Handle(b.banHandler, th.CommandEqual("ban"))
	bh.Handle(b.unbanHandler, th.CommandEqual("unban"))
	bh.Handle(b.muteHandler, th.CommandEqual("mute"))
	bh.Handle(b.unmuteHandler, th.CommandEqual("unmute"))
	bh.Handle(b.warnHandler, th.CommandEqual("warn"))
	bh.Handle(b.promoteHandler, th.CommandEqual("promote"))
	bh.Handle(b.demoteHandler, th.CommandEqual("demote"))
	bh.Handle(b.lockdownHandler, th.CommandEqual("lockdown"))
	bh.Handle(b.shortURLHandler, th.CommandEqual("shorturl"))
	bh.Handle(b.pointsHandler, th.CommandEqual("points"))
	bh.Handle(b.pollHandler, th.CommandEqual("poll"))
	bh.Handle(b.voteHandler, th.CommandEqual("vote"))
	bh.Handle(b.stopPollHandler, th.CommandEqual("stoppoll"))
	bh.Handle(b.createEventHandler, th.CommandEqual("createevent"))
	bh.Handle(b.rsvpHandler, th.CommandEqual("rsvp"))
	bh.Handle(b.showEventsHandler, th.CommandEqual("showevents"))
	bh.Handle(b.messageHandler, th.AnyMessage())

	bh.Start()

	return nil
}
