package handler

import (
	"context"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// Callback routes inline keyboard presses to the callback registered for their data prefix.
type Callback struct {
	callbacks map[string]port.Callback
	timeout   time.Duration
}

func NewCallback(timeout time.Duration, callbacks ...port.Callback) *Callback {
	c := &Callback{callbacks: make(map[string]port.Callback), timeout: timeout}
	for _, cb := range callbacks {
		log.Info().Str("prefix", cb.Prefix()).Msg("adding callback handler")
		c.callbacks[cb.Prefix()] = cb
	}

	return c
}

func (c *Callback) Handle(_ context.Context, _ *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}

	l := log.With().Str("data", query.Data).Logger()

	if query.Message.Message == nil {
		l.Debug().Msg("button on inaccessible message")
		return
	}

	prefix, _, _, ok := domain.ParseCallbackData(query.Data)
	if !ok {
		l.Debug().Msg("malformed callback data")
		return
	}

	cb, ok := c.callbacks[prefix]
	if !ok {
		l.Debug().Msg("no handler for callback")
		return
	}

	press := &domain.ButtonPress{
		ID:        query.ID,
		ChatID:    query.Message.Message.Chat.ID,
		MessageID: query.Message.Message.ID,
		UserID:    query.From.ID,
		Username:  getUserNameFromMessage(&query.From),
		Data:      query.Data,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		if err := cb.HandleCallback(ctx, press); err != nil {
			l.Err(err).Int64("chatId", press.ChatID).Msg("failed to handle button press")
		}
	}()
}
