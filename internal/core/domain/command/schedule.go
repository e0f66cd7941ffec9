package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"
	"memebot/internal/core/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const here = "here"

// parseDestination consumes an optional leading "here" or numeric chat ID. Without one the
// destination is the chat the message came from.
func parseDestination(message *domain.Message, args []string) (int64, []string) {
	if len(args) == 0 {
		return message.ChatID, args
	}

	if strings.EqualFold(args[0], here) {
		return message.ChatID, args[1:]
	}

	if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
		return id, args[1:]
	}

	return message.ChatID, args
}

func describeDestination(message *domain.Message, destinationID int64) string {
	if destinationID == message.ChatID {
		return "this chat"
	}

	return fmt.Sprintf("chat %d", destinationID)
}

func scheduleLogger(message *domain.Message, command string, destinationID int64) zerolog.Logger {
	return log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", command).
		Int64("destination", destinationID).
		Logger()
}

// SetChannel configures scheduled posting for a chat.
type SetChannel struct {
	broadcaster port.Broadcaster
	auth        service.Authorizer
	textSender  port.TextSender
	command     string
}

func NewSetChannel(broadcaster port.Broadcaster, auth service.Authorizer, textSender port.TextSender,
	command string) *SetChannel {
	return &SetChannel{broadcaster: broadcaster, auth: auth, textSender: textSender, command: command}
}

func (s *SetChannel) GetCommand() string {
	return s.command
}

func (s *SetChannel) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	destinationID, args := parseDestination(message, strings.Fields(ParseCommandArgs(message.Text)))
	l := scheduleLogger(message, s.command, destinationID)
	l.Info().Msg("handling request")

	if !s.auth.IsAuthorized(ctx, message) {
		l.Debug().Msg("not authorized")
		return nil
	}

	if len(args) < 2 {
		return s.textSender.NotifyAndReturnError(ctx, usage(s.command, "[chat|here] <selector> <interval>"), message)
	}

	selector := strings.ToLower(args[0])
	interval := strings.Join(args[1:], " ")

	if err := s.broadcaster.Configure(destinationID, selector, interval); err != nil {
		return s.textSender.NotifyAndReturnError(ctx, err, message)
	}

	reply := fmt.Sprintf("✅ Posting '%s' to %s every %s.", selector, describeDestination(message, destinationID), interval)
	if entry, ok := s.broadcaster.Status(destinationID); ok {
		reply = fmt.Sprintf("✅ Posting '%s' to %s every %s.", entry.Config.Selector,
			describeDestination(message, destinationID), service.FormatInterval(entry.Config.Interval))
		if entry.Paused {
			reply += " Posting is paused, use /startmemes to resume."
		}
	}

	_, err := s.textSender.SendMessageReply(ctx, message, reply)

	return err
}

// StopMemes pauses scheduled posting for a chat.
type StopMemes struct {
	broadcaster port.Broadcaster
	auth        service.Authorizer
	textSender  port.TextSender
	command     string
}

func NewStopMemes(broadcaster port.Broadcaster, auth service.Authorizer, textSender port.TextSender,
	command string) *StopMemes {
	return &StopMemes{broadcaster: broadcaster, auth: auth, textSender: textSender, command: command}
}

func (s *StopMemes) GetCommand() string {
	return s.command
}

func (s *StopMemes) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	destinationID, _ := parseDestination(message, strings.Fields(ParseCommandArgs(message.Text)))
	l := scheduleLogger(message, s.command, destinationID)
	l.Info().Msg("handling request")

	if !s.auth.IsAuthorized(ctx, message) {
		l.Debug().Msg("not authorized")
		return nil
	}

	if err := s.broadcaster.Pause(destinationID); err != nil {
		return s.textSender.NotifyAndReturnError(ctx, err, message)
	}

	_, err := s.textSender.SendMessageReply(ctx, message,
		fmt.Sprintf("⏸ Stopped posting memes in %s.", describeDestination(message, destinationID)))

	return err
}

// StartMemes resumes scheduled posting, optionally with another selector.
type StartMemes struct {
	broadcaster port.Broadcaster
	auth        service.Authorizer
	textSender  port.TextSender
	command     string
}

func NewStartMemes(broadcaster port.Broadcaster, auth service.Authorizer, textSender port.TextSender,
	command string) *StartMemes {
	return &StartMemes{broadcaster: broadcaster, auth: auth, textSender: textSender, command: command}
}

func (s *StartMemes) GetCommand() string {
	return s.command
}

func (s *StartMemes) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	destinationID, args := parseDestination(message, strings.Fields(ParseCommandArgs(message.Text)))
	l := scheduleLogger(message, s.command, destinationID)
	l.Info().Msg("handling request")

	if !s.auth.IsAuthorized(ctx, message) {
		l.Debug().Msg("not authorized")
		return nil
	}

	var override string
	if len(args) > 0 {
		override = strings.ToLower(args[0])
	}

	if err := s.broadcaster.Resume(destinationID, override); err != nil {
		return s.textSender.NotifyAndReturnError(ctx, err, message)
	}

	selector := override
	if entry, ok := s.broadcaster.Status(destinationID); ok {
		selector = entry.Config.Selector
	}

	_, err := s.textSender.SendMessageReply(ctx, message,
		fmt.Sprintf("▶️ Resumed posting '%s' in %s.", selector, describeDestination(message, destinationID)))

	return err
}

// UnsetChannel removes a chat's schedule entirely.
type UnsetChannel struct {
	broadcaster port.Broadcaster
	auth        service.Authorizer
	textSender  port.TextSender
	command     string
}

func NewUnsetChannel(broadcaster port.Broadcaster, auth service.Authorizer, textSender port.TextSender,
	command string) *UnsetChannel {
	return &UnsetChannel{broadcaster: broadcaster, auth: auth, textSender: textSender, command: command}
}

func (u *UnsetChannel) GetCommand() string {
	return u.command
}

func (u *UnsetChannel) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	destinationID, _ := parseDestination(message, strings.Fields(ParseCommandArgs(message.Text)))
	l := scheduleLogger(message, u.command, destinationID)
	l.Info().Msg("handling request")

	if !u.auth.IsAuthorized(ctx, message) {
		l.Debug().Msg("not authorized")
		return nil
	}

	if err := u.broadcaster.Teardown(destinationID); err != nil {
		return u.textSender.NotifyAndReturnError(ctx, err, message)
	}

	_, err := u.textSender.SendMessageReply(ctx, message,
		fmt.Sprintf("🗑 Removed the schedule of %s.", describeDestination(message, destinationID)))

	return err
}

// Status shows a chat's schedule. Anyone may ask.
type Status struct {
	broadcaster port.Broadcaster
	textSender  port.TextSender
	command     string
}

func NewStatus(broadcaster port.Broadcaster, textSender port.TextSender, command string) *Status {
	return &Status{broadcaster: broadcaster, textSender: textSender, command: command}
}

func (s *Status) GetCommand() string {
	return s.command
}

func (s *Status) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	destinationID, _ := parseDestination(message, strings.Fields(ParseCommandArgs(message.Text)))
	l := scheduleLogger(message, s.command, destinationID)
	l.Info().Msg("handling request")

	entry, ok := s.broadcaster.Status(destinationID)
	if !ok {
		_, err := s.textSender.SendMessageReply(ctx, message,
			fmt.Sprintf("%s is not set up for meme posting.", describeDestination(message, destinationID)))
		return err
	}

	_, err := s.textSender.SendMessageReply(ctx, message, formatEntry(describeDestination(message, destinationID), entry))

	return err
}

const timeLayout = "2006-01-02 15:04:05"

func formatEntry(name string, entry domain.RegistryEntry) string {
	state := "active"
	if entry.Paused {
		state = "paused"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📡 Schedule of %s\n", name)
	fmt.Fprintf(&sb, "State: %s\n", state)
	fmt.Fprintf(&sb, "Selector: %s\n", entry.Config.Selector)
	fmt.Fprintf(&sb, "Interval: %s\n", service.FormatInterval(entry.Config.Interval))

	if entry.Active {
		fmt.Fprintf(&sb, "Running since: %s\n", entry.StartedAt.Format(timeLayout))
	}

	fmt.Fprintf(&sb, "Delivered: %d, failed: %d\n", entry.Delivered, entry.Failed)

	last := "never"
	if !entry.LastDelivery.IsZero() {
		last = entry.LastDelivery.Format(timeLayout)
	}
	fmt.Fprintf(&sb, "Last delivery: %s", last)

	return sb.String()
}
