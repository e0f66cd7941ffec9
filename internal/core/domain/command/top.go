package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const (
	defaultTimeframe = "day"
	defaultTopCount  = 5
	maxTopCount      = 10
	maxNewestCount   = 20
)

var timeframes = map[string]bool{"day": true, "week": true, "month": true, "year": true}

type TopMemes struct {
	lister     port.Lister
	itemSender port.ItemSender
	textSender port.TextSender
	command    string
}

func NewTopMemes(lister port.Lister, itemSender port.ItemSender, textSender port.TextSender,
	command string) *TopMemes {
	return &TopMemes{lister: lister, itemSender: itemSender, textSender: textSender, command: command}
}

func (t *TopMemes) GetCommand() string {
	return t.command
}

func (t *TopMemes) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timeframe, count, err := t.parseArgs(ParseCommandArgs(message.Text))
	if err != nil {
		return t.textSender.NotifyAndReturnError(ctx, err, message)
	}

	log.Info().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", t.GetCommand()).
		Str("timeframe", timeframe).
		Int("count", count).
		Msg("handling request")

	go t.textSender.SendChatAction(ctx, message.ChatID, domain.SendingPhoto)

	items, err := t.lister.Top(ctx, timeframe, count)
	if err != nil {
		return t.textSender.NotifyAndReturnError(ctx, fmt.Errorf("error fetching top memes: %w", err), message)
	}

	if len(items) == 0 {
		return t.textSender.NotifyAndReturnError(ctx, domain.ErrNotFound, message)
	}

	header := fmt.Sprintf("🏆 Top memes from the last %s", timeframe)
	if err := t.itemSender.SendItemsReply(ctx, message, header, items); err != nil {
		return t.textSender.NotifyAndReturnError(ctx, fmt.Errorf("error sending top memes: %w", err), message)
	}

	return nil
}

// parseArgs accepts an optional timeframe and an optional count in any order.
func (t *TopMemes) parseArgs(args string) (string, int, error) {
	timeframe, count := defaultTimeframe, defaultTopCount

	for _, arg := range strings.Fields(strings.ToLower(args)) {
		if timeframes[arg] {
			timeframe = arg
			continue
		}

		n, err := strconv.Atoi(arg)
		if err != nil {
			return "", 0, usage(t.command, "[day|week|month|year] [1-10]")
		}
		if n < 1 || n > maxTopCount {
			return "", 0, fmt.Errorf("count must be between 1 and %d", maxTopCount)
		}
		count = n
	}

	return timeframe, count, nil
}

// MemesByNumber replies with the newest posts.
type MemesByNumber struct {
	lister     port.Lister
	itemSender port.ItemSender
	textSender port.TextSender
	command    string
}

func NewMemesByNumber(lister port.Lister, itemSender port.ItemSender, textSender port.TextSender,
	command string) *MemesByNumber {
	return &MemesByNumber{lister: lister, itemSender: itemSender, textSender: textSender, command: command}
}

func (m *MemesByNumber) GetCommand() string {
	return m.command
}

func (m *MemesByNumber) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	count, err := strconv.Atoi(ParseCommandArgs(message.Text))
	if err != nil {
		return m.textSender.NotifyAndReturnError(ctx, usage(m.command, "<1-20>"), message)
	}

	if count < 1 || count > maxNewestCount {
		return m.textSender.NotifyAndReturnError(ctx,
			fmt.Errorf("please choose a number between 1 and %d", maxNewestCount), message)
	}

	log.Info().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", m.GetCommand()).
		Int("count", count).
		Msg("handling request")

	go m.textSender.SendChatAction(ctx, message.ChatID, domain.SendingPhoto)

	items, err := m.lister.Newest(ctx, count)
	if err != nil {
		return m.textSender.NotifyAndReturnError(ctx, fmt.Errorf("error fetching memes: %w", err), message)
	}

	if len(items) == 0 {
		return m.textSender.NotifyAndReturnError(ctx, domain.ErrNotFound, message)
	}

	header := fmt.Sprintf("🆕 The %d newest memes", len(items))
	if err := m.itemSender.SendItemsReply(ctx, message, header, items); err != nil {
		return m.textSender.NotifyAndReturnError(ctx, fmt.Errorf("error sending memes: %w", err), message)
	}

	return nil
}
