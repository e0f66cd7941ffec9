package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const DefaultSelector = "memes"

// Meme replies with one item for a selector and a button that swaps it for another one.
type Meme struct {
	source     port.ContentSource
	itemSender port.ItemSender
	textSender port.TextSender
	command    string
}

func NewMeme(source port.ContentSource, itemSender port.ItemSender, textSender port.TextSender,
	command string) *Meme {
	return &Meme{
		source:     source,
		itemSender: itemSender,
		textSender: textSender,
		command:    command,
	}
}

func (m *Meme) GetCommand() string {
	return m.command
}

func (m *Meme) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	selector := ParseCommandArgs(message.Text)
	if selector == "" {
		selector = DefaultSelector
	}

	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", m.GetCommand()).
		Str("selector", selector).
		Logger()

	l.Info().Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	go m.textSender.SendChatAction(ctx, message.ChatID, domain.SendingPhoto)

	return fetchAndReply(ctx, m.source, m.itemSender, m.textSender, message, selector)
}

func fetchAndReply(ctx context.Context, source port.ContentSource, itemSender port.ItemSender,
	textSender port.TextSender, message *domain.Message, selector string) error {
	item, err := source.Fetch(ctx, selector)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return textSender.NotifyAndReturnError(ctx, fmt.Errorf("nothing found for %q: %w", selector, err), message)
		}
		return textSender.NotifyAndReturnError(ctx, fmt.Errorf("error fetching content: %w", err), message)
	}

	err = itemSender.SendItemReply(ctx, message, item, refreshData(selector))
	if err != nil {
		return textSender.NotifyAndReturnError(ctx, fmt.Errorf("error sending item: %w", err), message)
	}

	return nil
}

// refreshData builds the refresh button payload, or "" when the selector does not fit in it.
func refreshData(selector string) string {
	data := domain.CallbackData(domain.MemePrefix, domain.MemeRefresh, selector)
	if len(data) > domain.MaxCallbackDataLength {
		return ""
	}

	return data
}

// Refresh replaces an item message with a fresh item for the selector stored in the button.
type Refresh struct {
	source     port.ContentSource
	viewSender port.ViewSender
}

func NewRefresh(source port.ContentSource, viewSender port.ViewSender) *Refresh {
	return &Refresh{source: source, viewSender: viewSender}
}

func (r *Refresh) Prefix() string {
	return domain.MemePrefix
}

func (r *Refresh) HandleCallback(ctx context.Context, press *domain.ButtonPress) error {
	_, action, selector, ok := domain.ParseCallbackData(press.Data)
	if !ok || action != domain.MemeRefresh {
		_ = r.viewSender.AnswerPress(ctx, press, "")
		return fmt.Errorf("%w: %q", domain.ErrUnknownAction, press.Data)
	}

	l := log.With().
		Int64("chatId", press.ChatID).
		Int("messageId", press.MessageID).
		Str("selector", selector).
		Logger()

	item, err := r.source.Fetch(ctx, selector)
	if err != nil {
		l.Warn().Err(err).Msg("refresh failed")
		_ = r.viewSender.AnswerPress(ctx, press, "Couldn't fetch another one, try again later.")
		return err
	}

	if err := r.viewSender.EditItem(ctx, press.ChatID, press.MessageID, item, press.Data); err != nil {
		_ = r.viewSender.AnswerPress(ctx, press, "")
		return err
	}

	l.Debug().Msg("item refreshed")

	return r.viewSender.AnswerPress(ctx, press, "")
}
