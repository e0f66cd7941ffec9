package source

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"memebot/internal/core/domain"

	"github.com/rs/zerolog/log"
)

type JSONGetter interface {
	GetJSON(ctx context.Context, url string, out any) error
}

var subredditPattern = regexp.MustCompile(`^[A-Za-z0-9_]{2,21}$`)

var imageSuffixes = []string{".jpg", ".jpeg", ".png", ".gif"}

var timeframes = map[string]bool{"day": true, "week": true, "month": true, "year": true}

type RedditConfig struct {
	BaseURL          string
	HotLimit         int
	SearchSubreddits []string
	SearchLimit      int
	DefaultSubreddit string
}

// Reddit reads public subreddit listings.
type Reddit struct {
	client JSONGetter
	cfg    RedditConfig
	pick   func(n int) int
}

type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	Author      string `json:"author"`
	Permalink   string `json:"permalink"`
	Subreddit   string `json:"subreddit"`
	Over18      bool   `json:"over_18"`
}

func NewReddit(client JSONGetter, cfg RedditConfig) *Reddit {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.reddit.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.HotLimit <= 0 {
		cfg.HotLimit = 50
	}

	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}

	if len(cfg.SearchSubreddits) == 0 {
		cfg.SearchSubreddits = []string{"memes", "dankmemes", "funny"}
	}

	if cfg.DefaultSubreddit == "" {
		cfg.DefaultSubreddit = "memes"
	}

	return &Reddit{client: client, cfg: cfg, pick: rand.IntN}
}

// Fetch returns a random image post from the subreddit's hot listing.
func (r *Reddit) Fetch(ctx context.Context, subreddit string) (domain.Item, error) {
	subreddit = strings.TrimPrefix(strings.TrimSpace(subreddit), "r/")
	if subreddit == "" {
		subreddit = r.cfg.DefaultSubreddit
	}

	if !subredditPattern.MatchString(subreddit) {
		return domain.Item{}, fmt.Errorf("%w: invalid subreddit %q", domain.ErrNotFound, subreddit)
	}

	q := url.Values{}
	q.Set("limit", fmt.Sprint(r.cfg.HotLimit))

	posts, err := r.list(ctx, fmt.Sprintf("/r/%s/hot.json", subreddit), q)
	if err != nil {
		return domain.Item{}, err
	}

	items := imagesOnly(posts)
	if len(items) == 0 {
		return domain.Item{}, fmt.Errorf("%w in r/%s", domain.ErrNotFound, subreddit)
	}

	return items[r.pick(len(items))], nil
}

// Search looks for image posts matching keyword across the configured subreddits, highest score first.
func (r *Reddit) Search(ctx context.Context, keyword string) ([]domain.Item, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, domain.ErrEmptyPrompt
	}

	q := url.Values{}
	q.Set("q", keyword)
	q.Set("restrict_sr", "1")
	q.Set("limit", fmt.Sprint(r.cfg.SearchLimit))

	var found []domain.Item
	var errs []error

	for _, sub := range r.cfg.SearchSubreddits {
		posts, err := r.list(ctx, fmt.Sprintf("/r/%s/search.json", sub), q)
		if err != nil {
			log.Warn().Err(err).Str("subreddit", sub).Msg("search failed")
			errs = append(errs, err)
			continue
		}

		found = append(found, imagesOnly(posts)...)
	}

	if len(errs) == len(r.cfg.SearchSubreddits) {
		return nil, fmt.Errorf("search failed: %w", errors.Join(errs...))
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Score > found[j].Score
	})

	return found, nil
}

// Top returns the top image posts of the default subreddit for day, week, month or year.
func (r *Reddit) Top(ctx context.Context, timeframe string, limit int) ([]domain.Item, error) {
	if !timeframes[timeframe] {
		return nil, fmt.Errorf("invalid timeframe %q", timeframe)
	}

	q := url.Values{}
	q.Set("t", timeframe)
	q.Set("limit", fmt.Sprint(limit))

	posts, err := r.list(ctx, fmt.Sprintf("/r/%s/top.json", r.cfg.DefaultSubreddit), q)
	if err != nil {
		return nil, err
	}

	return imagesOnly(posts), nil
}

// Newest returns the newest posts of the default subreddit, including non-image posts.
func (r *Reddit) Newest(ctx context.Context, limit int) ([]domain.Item, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))

	posts, err := r.list(ctx, fmt.Sprintf("/r/%s/new.json", r.cfg.DefaultSubreddit), q)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(posts))
	for _, p := range posts {
		item := p.item()
		if !isImage(p.URL) {
			item.ImageURL = ""
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *Reddit) list(ctx context.Context, path string, q url.Values) ([]post, error) {
	var l listing

	err := r.client.GetJSON(ctx, r.cfg.BaseURL+path+"?"+q.Encode(), &l)
	if err != nil {
		return nil, fmt.Errorf("reddit listing %s: %w", path, err)
	}

	posts := make([]post, 0, len(l.Data.Children))
	for _, c := range l.Data.Children {
		if c.Data.Over18 {
			continue
		}
		posts = append(posts, c.Data)
	}

	return posts, nil
}

func imagesOnly(posts []post) []domain.Item {
	var items []domain.Item

	for _, p := range posts {
		if isImage(p.URL) {
			items = append(items, p.item())
		}
	}

	return items
}

func isImage(u string) bool {
	lower := strings.ToLower(u)
	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	return false
}

func (p post) item() domain.Item {
	return domain.Item{
		Title:     p.Title,
		ImageURL:  p.URL,
		Source:    "r/" + p.Subreddit,
		Score:     p.Score,
		Comments:  p.NumComments,
		Author:    p.Author,
		Permalink: "https://www.reddit.com" + p.Permalink,
	}
}
