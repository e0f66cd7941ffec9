package port

import (
	"context"
	"memebot/internal/core/domain"
)

type ContentSource interface {
	// Fetch returns one item for the selector, domain.ErrNotFound when nothing suitable exists, or a transient error.
	Fetch(ctx context.Context, selector string) (domain.Item, error)
}

type Searcher interface {
	// Search returns every item matching keyword, best first.
	Search(ctx context.Context, keyword string) ([]domain.Item, error)
}

type Lister interface {
	Top(ctx context.Context, timeframe string, limit int) ([]domain.Item, error)
	Newest(ctx context.Context, limit int) ([]domain.Item, error)
}

type TextGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
}
