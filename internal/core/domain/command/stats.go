package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"
	"memebot/internal/core/service"

	"github.com/rs/zerolog/log"
)

// Stats reports delivery and usage counters. countedCommand is the command whose uses are shown.
type Stats struct {
	stats          *service.Stats
	broadcaster    port.Broadcaster
	textSender     port.TextSender
	countedCommand string
	command        string
}

func NewStats(stats *service.Stats, broadcaster port.Broadcaster, textSender port.TextSender,
	countedCommand, command string) *Stats {
	return &Stats{
		stats:          stats,
		broadcaster:    broadcaster,
		textSender:     textSender,
		countedCommand: countedCommand,
		command:        command,
	}
}

func (s *Stats) GetCommand() string {
	return s.command
}

func (s *Stats) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	log.Info().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", s.GetCommand()).
		Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var active, paused int
	var sample time.Duration

	for _, entry := range s.broadcaster.List() {
		if entry.Paused {
			paused++
			continue
		}
		active++
		if sample == 0 {
			sample = entry.Config.Interval
		}
	}

	var sb strings.Builder
	sb.WriteString("📊 Bot Statistics\n")
	fmt.Fprintf(&sb, "Memes posted: %d\n", s.stats.Delivered())
	fmt.Fprintf(&sb, "Meme commands used: %d\n", s.stats.CommandCount(s.countedCommand))
	fmt.Fprintf(&sb, "Active channels: %d\n", active)
	fmt.Fprintf(&sb, "Stopped channels: %d\n", paused)
	if sample > 0 {
		fmt.Fprintf(&sb, "Sample interval: %s\n", service.FormatInterval(sample))
	}
	fmt.Fprintf(&sb, "Uptime: %s", s.stats.Uptime().Truncate(time.Second))

	_, err := s.textSender.SendMessageReply(ctx, message, sb.String())

	return err
}

type CommandHistory struct {
	stats      *service.Stats
	textSender port.TextSender
	command    string
}

func NewCommandHistory(stats *service.Stats, textSender port.TextSender, command string) *CommandHistory {
	return &CommandHistory{stats: stats, textSender: textSender, command: command}
}

func (h *CommandHistory) GetCommand() string {
	return h.command
}

func (h *CommandHistory) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	log.Info().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", h.GetCommand()).
		Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	history := h.stats.History()
	if len(history) == 0 {
		_, err := h.textSender.SendMessageReply(ctx, message, "No commands have been used yet.")
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📜 Command History\nLast %d commands used:\n", service.DefaultHistorySize)
	for _, c := range history {
		fmt.Fprintf(&sb, "\n%s: %d times", c.Command, c.Count)
	}

	_, err := h.textSender.SendMessageReply(ctx, message, sb.String())

	return err
}
