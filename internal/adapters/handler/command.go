package handler

import (
	"context"
	"strings"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/domain/command"
	"memebot/internal/core/port"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

type Command struct {
	commandRegistry port.CommandRegistry
	recorder        port.CommandRecorder
	timeout         time.Duration
}

// NewCommand dispatches slash commands to the registry. recorder may be nil.
func NewCommand(commandRegistry port.CommandRegistry, recorder port.CommandRecorder, timeout time.Duration) *Command {
	return &Command{commandRegistry: commandRegistry, recorder: recorder, timeout: timeout}
}

func (c *Command) Handle(_ context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := update.Message.Text
	if update.Message.Photo != nil {
		text = update.Message.Caption
	}

	if !strings.HasPrefix(text, "/") {
		return
	}

	log.Debug().Str("message", text).Msg("received command")

	cmd := command.ParseCommand(text)
	commandHandler, err := c.commandRegistry.Get(cmd)
	if err != nil {
		log.Debug().Str("command", cmd).Msg("no handler for command")
		return
	}

	if c.recorder != nil {
		c.recorder.RecordCommand(cmd)
	}

	message := &domain.Message{
		ID:     update.Message.ID,
		ChatID: update.Message.Chat.ID,
		Text:   text,
	}

	if update.Message.From != nil {
		message.UserID = update.Message.From.ID
		message.Username = getUserNameFromMessage(update.Message.From)
	}

	go func() {
		err := commandHandler.Respond(context.Background(), c.timeout, message)
		if err != nil {
			log.Err(err).Str("command", cmd).Msg("failed to respond to command")
		}
	}()
}

func getUserNameFromMessage(user *models.User) string {
	if user.Username == "" {
		return user.FirstName
	}

	return "@" + user.Username
}
