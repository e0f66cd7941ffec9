package source

import (
	"context"
	"fmt"
	"strings"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"
)

// Mux routes a selector to a content source by its prefix. "joke:Pun" goes to the source registered
// as "joke" with "Pun" as its selector; anything without a registered prefix goes to the fallback.
type Mux struct {
	fallback port.ContentSource
	routes   map[string]port.ContentSource
}

func NewMux(fallback port.ContentSource) *Mux {
	return &Mux{fallback: fallback, routes: make(map[string]port.ContentSource)}
}

func (m *Mux) Handle(prefix string, src port.ContentSource) {
	m.routes[strings.ToLower(prefix)] = src
}

func (m *Mux) Fetch(ctx context.Context, selector string) (domain.Item, error) {
	selector = strings.TrimSpace(selector)

	prefix, rest, _ := strings.Cut(selector, ":")
	if src, ok := m.routes[strings.ToLower(prefix)]; ok {
		return src.Fetch(ctx, rest)
	}

	return m.fallback.Fetch(ctx, selector)
}

type disabled struct {
	name   string
	reason string
}

// Disabled returns a source that refuses every selector, so a prefix without a backend
// does not fall through to the fallback.
func Disabled(name, reason string) port.ContentSource {
	return disabled{name: name, reason: reason}
}

func (d disabled) Fetch(_ context.Context, _ string) (domain.Item, error) {
	return domain.Item{}, fmt.Errorf("%w: %q selectors are off (%s)", domain.ErrSourceDisabled, d.name, d.reason)
}
