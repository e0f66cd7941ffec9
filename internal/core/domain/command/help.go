package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"

	"github.com/rs/zerolog/log"
)

var usages = map[string]string{
	"/help":            "- show this list",
	"/meme":            "[selector] - a random meme with a refresh button",
	"/meme_search":     "<keyword> - browse matching memes",
	"/top_memes":       "[day|week|month|year] [1-10] - top memes of a period",
	"/memes_by_number": "<1-20> - the newest memes",
	"/random_joke":     "[categories] - a random joke",
	"/setchannel":      "[chat|here] <selector> <interval> - post memes on a schedule",
	"/stopmemes":       "[chat|here] - pause scheduled posting",
	"/startmemes":      "[chat|here] [selector] - resume scheduled posting",
	"/status":          "[chat|here] - show the schedule of a chat",
	"/unsetchannel":    "[chat|here] - remove the schedule of a chat",
	"/stats":           "- bot statistics",
	"/command_history": "- recently used commands",
	"/debug":           "- runtime information",
	"/ping":            "- telegram api latency",
}

const helpFooter = `Selectors: a subreddit name, "joke", "joke:<categories>" or "ai:<topic>".
Intervals: e.g. "30 sec" or "5 min".
[Optional] parameters, <Required> parameters`

type Help struct {
	registry   port.CommandRegistry
	textSender port.TextSender
	command    string
}

func NewHelp(registry port.CommandRegistry, textSender port.TextSender, command string) *Help {
	return &Help{registry: registry, textSender: textSender, command: command}
}

func (h *Help) GetCommand() string {
	return h.command
}

func (h *Help) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	log.Info().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", h.GetCommand()).
		Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("Available commands:\n")

	for _, cmd := range h.registry.ListCommands() {
		if u, ok := usages[cmd]; ok {
			fmt.Fprintf(&sb, "\n%s %s", cmd, u)
			continue
		}
		fmt.Fprintf(&sb, "\n%s", cmd)
	}

	sb.WriteString("\n\n" + helpFooter)

	_, err := h.textSender.SendMessageReply(ctx, message, sb.String())

	return err
}
