package tmdb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

const testAPIKey = "test-key"

func testClient(baseURL string) *Client {
	c := NewClient(testAPIKey, time.Second, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.baseURL = baseURL
	return c
}

func TestDiscover_QueryAndMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, testAPIKey, q.Get("api_key"))
		assert.Equal(t, "popularity.desc", q.Get("sort_by"))
		assert.Equal(t, "false", q.Get("include_adult"))
		assert.Equal(t, "10", q.Get("vote_count.gte"))
		assert.Equal(t, "7", q.Get("page"))
		assert.Equal(t, "35|10402", q.Get("with_genres"))

		_, _ = w.Write([]byte(`{"page":7,"results":[
			{"id":550,"title":"Fight Club","release_date":"1999-10-15","overview":"An insomniac...","poster_path":"/p.jpg","vote_average":8.4},
			{"id":551,"title":"No Poster","release_date":"","overview":"","poster_path":null,"vote_average":5}
		]}`))
	}))
	defer srv.Close()

	movies, err := testClient(srv.URL).Discover(context.Background(), domain.DiscoverQuery{Page: 7, GenreIDs: []int{35, 10402}})
	require.NoError(t, err)
	require.Len(t, movies, 2)

	assert.Equal(t, domain.MovieSummary{
		ID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15", Overview: "An insomniac...",
		PosterPath: "/p.jpg", VoteAverage: 8.4,
	}, movies[0])
	assert.Empty(t, movies[1].PosterPath)
}

func TestDiscover_NoGenreFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["with_genres"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	movies, err := testClient(srv.URL).Discover(context.Background(), domain.DiscoverQuery{Page: 1})
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550", r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{"id":550,"runtime":139,"genres":[{"id":18,"name":"Drama"},{"id":53,"name":"Thriller"}]}`))
	}))
	defer srv.Close()

	d, err := testClient(srv.URL).Details(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, domain.MovieDetails{Runtime: 139, Genres: []string{"Drama", "Thriller"}}, d)
}

func TestDiscover_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key.","success":false}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Discover(context.Background(), domain.DiscoverQuery{Page: 1})

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.CauseNetwork, fe.Cause)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestDiscover_NetworkErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testClient(url).Discover(context.Background(), domain.DiscoverQuery{Page: 1})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), testAPIKey)
}

func TestDetails_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"runtime":"long"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Details(context.Background(), 1)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.CauseParse, fe.Cause)
}
