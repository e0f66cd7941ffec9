package source

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"memebot/internal/core/domain"
)

const DefaultJokeCategories = "Programming,Miscellaneous"

var categoriesPattern = regexp.MustCompile(`^[A-Za-z]+(,[A-Za-z]+)*$`)

// Jokes fetches jokes from JokeAPI v2.
type Jokes struct {
	client  JSONGetter
	baseURL string
}

type jokeResponse struct {
	Error    bool   `json:"error"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Type     string `json:"type"`
	Setup    string `json:"setup"`
	Delivery string `json:"delivery"`
	Joke     string `json:"joke"`
}

func NewJokes(client JSONGetter, baseURL string) *Jokes {
	if baseURL == "" {
		baseURL = "https://v2.jokeapi.dev"
	}

	return &Jokes{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Fetch returns a two-part joke from the comma separated categories, or the default ones when empty.
func (j *Jokes) Fetch(ctx context.Context, categories string) (domain.Item, error) {
	categories = strings.ReplaceAll(strings.TrimSpace(categories), " ", "")
	if categories == "" {
		categories = DefaultJokeCategories
	}

	if !categoriesPattern.MatchString(categories) {
		return domain.Item{}, fmt.Errorf("%w: invalid joke categories %q", domain.ErrNotFound, categories)
	}

	q := url.Values{}
	q.Set("type", "twopart")
	q.Set("safe-mode", "")

	var resp jokeResponse

	err := j.client.GetJSON(ctx, j.baseURL+"/joke/"+categories+"?"+q.Encode(), &resp)
	if err != nil {
		return domain.Item{}, fmt.Errorf("jokeapi: %w", err)
	}

	if resp.Error {
		return domain.Item{}, fmt.Errorf("%w: %s", domain.ErrNotFound, resp.Message)
	}

	text := resp.Joke
	if resp.Type == "twopart" {
		text = resp.Setup + "\n\n" + resp.Delivery
	}

	if strings.TrimSpace(text) == "" {
		return domain.Item{}, fmt.Errorf("%w: empty joke", domain.ErrNotFound)
	}

	return domain.Item{
		Title:  "😄 Random Joke",
		Text:   text,
		Source: resp.Category,
	}, nil
}
