package command

import (
	"context"
	"fmt"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const slowPing = 200 * time.Millisecond

type Ping struct {
	pinger     port.Pinger
	textSender port.TextSender
	command    string
}

func NewPing(pinger port.Pinger, textSender port.TextSender, command string) *Ping {
	return &Ping{pinger: pinger, textSender: textSender, command: command}
}

func (p *Ping) GetCommand() string {
	return p.command
}

func (p *Ping) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", p.GetCommand()).
		Logger()

	latency, err := p.pinger.Ping(ctx)
	if err != nil {
		l.Error().Err(err).Msg("ping failed")
		return p.textSender.NotifyAndReturnError(ctx, err, message)
	}

	l.Debug().Dur("latency", latency).Msg("ping")

	indicator := "🟢"
	if latency >= slowPing {
		indicator = "🔴"
	}

	_, err = p.textSender.SendMessageReply(ctx, message,
		fmt.Sprintf("🏓 Pong!\n%s Latency: %d ms", indicator, latency.Milliseconds()))

	return err
}
