package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Registry maps lower-cased "/command" names to their handlers. It is filled once at startup.
type Registry struct {
	commands map[string]port.Command
}

func (r *Registry) Register(handler port.Command) {
	if r.commands == nil {
		r.commands = make(map[string]port.Command)
	}

	name := strings.ToLower(handler.GetCommand())
	if _, ok := r.commands[name]; ok {
		log.Warn().Str("handler", name).Msg("replacing command handler")
	}

	log.Info().Str("handler", name).Msg("adding command handler to registry")
	r.commands[name] = handler
}

func (r *Registry) Get(command string) (port.Command, error) {
	log.Debug().Interface("command", command).Msg("fetching command handler from registry")

	if r.commands == nil {
		err := errors.New("can't fetch command, registry not initialized")
		return nil, err
	}

	handler, ok := r.commands[strings.ToLower(command)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCommand, command)
	}

	return handler, nil
}

func (r *Registry) ListCommands() []string {
	keys := make([]string, len(r.commands))

	i := 0
	for k := range r.commands {
		keys[i] = k
		i++
	}
	sort.Strings(keys)

	return keys
}

func ParseCommandArgs(args string) string {
	command := strings.Split(args, " ")
	return strings.TrimSpace(strings.Join(command[1:], " "))
}

// ParseCommand returns the lower-cased command of a message, without a "@botname" suffix.
func ParseCommand(args string) string {
	command := strings.Fields(args)
	if len(command) == 0 {
		return ""
	}

	name, _, _ := strings.Cut(command[0], "@")

	return strings.ToLower(name)
}

func usage(command, args string) error {
	return fmt.Errorf("usage: %s %s", command, args)
}
