package command

import (
	"context"
	"fmt"
	"memebot/internal/core/domain"
	"memebot/internal/core/port"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type counter interface {
	Len() int
}

// Debug reports runtime and scheduler internals to the requesting chat.
type Debug struct {
	broadcaster port.Broadcaster
	sessions    counter
	textSender  port.TextSender
	command     string
}

func NewDebug(broadcaster port.Broadcaster, sessions counter, sender port.TextSender, command string) *Debug {
	return &Debug{
		broadcaster: broadcaster,
		sessions:    sessions,
		textSender:  sender,
		command:     command,
	}
}

func (d *Debug) GetCommand() string {
	return d.command
}

const kb = 1024

var memorySamples = []string{
	"/memory/classes/heap/objects:bytes",
	"/memory/classes/heap/stacks:bytes",
	"/memory/classes/total:bytes",
}

func (d *Debug) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", d.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	data := make([]metrics.Sample, len(memorySamples))
	for i, name := range memorySamples {
		data[i].Name = name
	}
	metrics.Read(data)

	mem := make(map[string]uint64, len(data))
	for _, sample := range data {
		if sample.Value.Kind() == metrics.KindUint64 {
			mem[sample.Name] = sample.Value.Uint64()
		}
		l.Debug().Str("name", sample.Name).Uint64("value", mem[sample.Name]).Msg("runtime metric")
	}

	var running, paused int
	for _, entry := range d.broadcaster.List() {
		if entry.Paused {
			paused++
		} else if entry.Active {
			running++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "allocated mem: %d KB\n", mem[memorySamples[2]]/kb)
	fmt.Fprintf(&sb, "heap: %d KB\n", mem[memorySamples[0]]/kb)
	fmt.Fprintf(&sb, "stack: %d KB\n", mem[memorySamples[1]]/kb)
	fmt.Fprintf(&sb, "goroutines: %d\n", runtime.NumGoroutine())
	fmt.Fprintf(&sb, "delivery loops: %d running, %d paused\n", running, paused)
	fmt.Fprintf(&sb, "search sessions: %d\n", d.sessions.Len())
	fmt.Fprintf(&sb, "compiled with %s for %s", runtime.Version(), buildTarget())

	_, err := d.textSender.SendMessageReply(ctx, message, sb.String())
	return err
}

func buildTarget() string {
	goos, goarch := runtime.GOOS, runtime.GOARCH
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "GOOS":
				goos = setting.Value
			case "GOARCH":
				goarch = setting.Value
			}
		}
	}

	return goos + "-" + goarch
}
