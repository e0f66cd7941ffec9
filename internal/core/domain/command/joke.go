package command

import (
	"context"
	"strings"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const JokeSelector = "joke"

type RandomJoke struct {
	source     port.ContentSource
	itemSender port.ItemSender
	textSender port.TextSender
	command    string
}

func NewRandomJoke(source port.ContentSource, itemSender port.ItemSender, textSender port.TextSender,
	command string) *RandomJoke {
	return &RandomJoke{
		source:     source,
		itemSender: itemSender,
		textSender: textSender,
		command:    command,
	}
}

func (j *RandomJoke) GetCommand() string {
	return j.command
}

// Respond sends a joke. Optional arguments are JokeAPI categories, e.g. "/random_joke Pun Spooky".
func (j *RandomJoke) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	selector := JokeSelector
	if categories := strings.Fields(ParseCommandArgs(message.Text)); len(categories) > 0 {
		selector += ":" + strings.Join(categories, ",")
	}

	log.Info().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", j.GetCommand()).
		Str("selector", selector).
		Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	go j.textSender.SendChatAction(ctx, message.ChatID, domain.Typing)

	return fetchAndReply(ctx, j.source, j.itemSender, j.textSender, message, selector)
}
