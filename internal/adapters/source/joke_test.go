package source

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memebot/internal/adapters/web"
	"memebot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJokes_Fetch(t *testing.T) {
	tests := []struct {
		name         string
		categories   string
		body         string
		status       int
		expectedPath string
		expectedText string
		expectedErr  error
		expectErr    bool
	}{
		{
			name:         "twopart joke with default categories",
			body:         `{"error":false,"category":"Programming","type":"twopart","setup":"Why?","delivery":"Because."}`,
			status:       http.StatusOK,
			expectedPath: "/joke/Programming,Miscellaneous",
			expectedText: "Why?\n\nBecause.",
		},
		{
			name:         "single joke with custom categories",
			categories:   "Pun, Misc",
			body:         `{"error":false,"category":"Pun","type":"single","joke":"A pun."}`,
			status:       http.StatusOK,
			expectedPath: "/joke/Pun,Misc",
			expectedText: "A pun.",
		},
		{
			name:         "api reports no joke",
			categories:   "Nope",
			body:         `{"error":true,"message":"No matching joke found"}`,
			status:       http.StatusOK,
			expectedPath: "/joke/Nope",
			expectErr:    true,
			expectedErr:  domain.ErrNotFound,
		},
		{
			name:         "server error",
			status:       http.StatusInternalServerError,
			expectedPath: "/joke/Programming,Miscellaneous",
			expectErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path, jokeType string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				jokeType = r.URL.Query().Get("type")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			j := NewJokes(web.NewClient(time.Second, ""), srv.URL)

			item, err := j.Fetch(t.Context(), tt.categories)
			assert.Equal(t, tt.expectedPath, path)
			assert.Equal(t, "twopart", jokeType)

			if tt.expectErr {
				require.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				} else {
					assert.NotErrorIs(t, err, domain.ErrNotFound)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedText, item.Text)
			assert.Equal(t, "😄 Random Joke", item.Title)
			assert.Empty(t, item.ImageURL)
		})
	}
}

func TestJokes_FetchInvalidCategories(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewJokes(web.NewClient(time.Second, ""), srv.URL).Fetch(t.Context(), "../admin")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, called)
}
