package source

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"memebot/internal/adapters/web"
	"memebot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPost struct {
	title  string
	url    string
	score  int
	sub    string
	over18 bool
}

func listingJSON(t *testing.T, posts ...testPost) []byte {
	t.Helper()

	children := make([]map[string]any, 0, len(posts))
	for _, p := range posts {
		children = append(children, map[string]any{
			"data": map[string]any{
				"title":        p.title,
				"url":          p.url,
				"score":        p.score,
				"num_comments": 3,
				"author":       "someone",
				"permalink":    "/r/" + p.sub + "/comments/abc/",
				"subreddit":    p.sub,
				"over_18":      p.over18,
			},
		})
	}

	buf, err := json.Marshal(map[string]any{"data": map[string]any{"children": children}})
	require.NoError(t, err)

	return buf
}

type recordedRequest struct {
	path  string
	query map[string]string
}

func newRedditServer(t *testing.T, routes map[string][]byte) (*httptest.Server, func() []recordedRequest) {
	t.Helper()

	var mu sync.Mutex
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}

		mu.Lock()
		requests = append(requests, recordedRequest{path: r.URL.Path, query: q})
		mu.Unlock()

		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func newTestReddit(srv *httptest.Server) *Reddit {
	return NewReddit(web.NewClient(time.Second, "memebot-test"), RedditConfig{BaseURL: srv.URL + "/"})
}

func TestReddit_Fetch(t *testing.T) {
	srv, requests := newRedditServer(t, map[string][]byte{
		"/r/memes/hot.json": listingJSON(t,
			testPost{title: "text post", url: "https://reddit.com/r/memes/comments/1", score: 1, sub: "memes"},
			testPost{title: "first", url: "https://i.redd.it/a.JPG", score: 10, sub: "memes"},
			testPost{title: "nsfw", url: "https://i.redd.it/n.png", score: 99, sub: "memes", over18: true},
			testPost{title: "second", url: "https://i.redd.it/b.gif", score: 20, sub: "memes"},
		),
	})

	r := newTestReddit(srv)

	var offered int
	r.pick = func(n int) int {
		offered = n
		return n - 1
	}

	item, err := r.Fetch(t.Context(), "r/memes")
	require.NoError(t, err)

	assert.Equal(t, 2, offered)
	assert.Equal(t, "second", item.Title)
	assert.Equal(t, "https://i.redd.it/b.gif", item.ImageURL)
	assert.Equal(t, "r/memes", item.Source)
	assert.Equal(t, 20, item.Score)
	assert.Equal(t, 3, item.Comments)
	assert.Equal(t, "https://www.reddit.com/r/memes/comments/abc/", item.Permalink)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "50", reqs[0].query["limit"])
}

func TestReddit_FetchDefaultSubreddit(t *testing.T) {
	srv, requests := newRedditServer(t, map[string][]byte{
		"/r/memes/hot.json": listingJSON(t, testPost{title: "a", url: "https://i.redd.it/a.png", sub: "memes"}),
	})

	_, err := newTestReddit(srv).Fetch(t.Context(), "  ")
	require.NoError(t, err)
	assert.Equal(t, "/r/memes/hot.json", requests()[0].path)
}

func TestReddit_FetchNotFound(t *testing.T) {
	srv, requests := newRedditServer(t, map[string][]byte{
		"/r/textonly/hot.json": listingJSON(t, testPost{title: "a", url: "https://example.com/a", sub: "textonly"}),
	})

	r := newTestReddit(srv)

	_, err := r.Fetch(t.Context(), "textonly")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.Fetch(t.Context(), "../etc/passwd")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, requests(), 1, "invalid names never reach the API")
}

func TestReddit_FetchTransientError(t *testing.T) {
	srv, _ := newRedditServer(t, map[string][]byte{})

	_, err := newTestReddit(srv).Fetch(t.Context(), "missing")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestReddit_Search(t *testing.T) {
	srv, requests := newRedditServer(t, map[string][]byte{
		"/r/memes/search.json": listingJSON(t,
			testPost{title: "m1", url: "https://i.redd.it/m1.png", score: 5, sub: "memes"},
			testPost{title: "m2", url: "https://example.com/page", score: 500, sub: "memes"},
		),
		"/r/dankmemes/search.json": listingJSON(t,
			testPost{title: "d1", url: "https://i.redd.it/d1.jpeg", score: 50, sub: "dankmemes"},
		),
		"/r/funny/search.json": listingJSON(t,
			testPost{title: "f1", url: "https://i.redd.it/f1.jpg", score: 20, sub: "funny"},
		),
	})

	items, err := newTestReddit(srv).Search(t.Context(), "cat")
	require.NoError(t, err)

	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"d1", "f1", "m1"}, titles)

	reqs := requests()
	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.Equal(t, "cat", r.query["q"])
		assert.Equal(t, "1", r.query["restrict_sr"])
		assert.Equal(t, "5", r.query["limit"])
	}
}

func TestReddit_SearchPartialFailure(t *testing.T) {
	srv, _ := newRedditServer(t, map[string][]byte{
		"/r/funny/search.json": listingJSON(t,
			testPost{title: "f1", url: "https://i.redd.it/f1.jpg", score: 20, sub: "funny"},
		),
	})

	items, err := newTestReddit(srv).Search(t.Context(), "cat")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "f1", items[0].Title)
}

func TestReddit_SearchErrors(t *testing.T) {
	srv, requests := newRedditServer(t, map[string][]byte{})
	r := newTestReddit(srv)

	_, err := r.Search(t.Context(), " ")
	require.ErrorIs(t, err, domain.ErrEmptyPrompt)
	assert.Empty(t, requests())

	_, err = r.Search(t.Context(), "cat")
	require.Error(t, err)
	assert.Len(t, requests(), 3)
}

func TestReddit_Top(t *testing.T) {
	srv, requests := newRedditServer(t, map[string][]byte{
		"/r/memes/top.json": listingJSON(t,
			testPost{title: "a", url: "https://i.redd.it/a.png", score: 9, sub: "memes"},
			testPost{title: "b", url: "https://v.redd.it/video", score: 8, sub: "memes"},
		),
	})

	r := newTestReddit(srv)

	items, err := r.Top(t.Context(), "week", 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Title)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "week", reqs[0].query["t"])
	assert.Equal(t, "3", reqs[0].query["limit"])

	_, err = r.Top(t.Context(), "century", 3)
	require.Error(t, err)
	assert.Len(t, requests(), 1)
}

func TestReddit_Newest(t *testing.T) {
	srv, requests := newRedditServer(t, map[string][]byte{
		"/r/memes/new.json": listingJSON(t,
			testPost{title: "a", url: "https://i.redd.it/a.png", sub: "memes"},
			testPost{title: "b", url: "https://v.redd.it/video", sub: "memes"},
		),
	})

	items, err := newTestReddit(srv).Newest(t.Context(), 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://i.redd.it/a.png", items[0].ImageURL)
	assert.Empty(t, items[1].ImageURL)
	assert.True(t, strings.HasPrefix(items[1].Permalink, "https://www.reddit.com/r/memes/"))
	assert.Equal(t, "2", requests()[0].query["limit"])
}
