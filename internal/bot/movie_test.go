package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
)

func inception() domain.MovieSummary {
	return domain.MovieSummary{
		ID:          27205,
		Title:       "Inception",
		ReleaseDate: "2010-07-15",
		Overview:    "A thief who steals corporate secrets.",
		PosterPath:  "/inception.jpg",
		VoteAverage: 8.4,
	}
}

func TestMovie_FormatsRecommendation(t *testing.T) {
	f := newFixture()
	f.movies.results = [][]domain.MovieSummary{{inception()}}
	f.movies.details = domain.MovieDetails{Runtime: 148, Genres: []string{"Action", "Science Fiction"}}

	got, err := f.handlers().Movie(context.Background(), domain.MoodExcited)
	require.NoError(t, err)

	want := "🎬 **Inception** (2010)\n" +
		"⭐ **Rating**: 8.4/10 • ⏱️ 148 mins\n" +
		"🎭 **Genres**: Action, Science Fiction\n" +
		"📝 **Plot**: A thief who steals corporate secrets.\n" +
		"https://image.tmdb.org/t/p/w500/inception.jpg"
	assert.Equal(t, want, got)
	assert.Equal(t, []int64{27205}, f.movies.detailIDs)
	require.Len(t, f.movies.queries, 1)
	assert.Equal(t, 1, f.movies.queries[0].Page)
}

func TestMovie_ScaredRetriesOnceWithoutGenre(t *testing.T) {
	f := newFixture()
	f.movies.results = [][]domain.MovieSummary{nil, {inception()}}

	_, err := f.handlers().Movie(context.Background(), domain.MoodScared)
	require.NoError(t, err)

	require.Len(t, f.movies.queries, 2)
	assert.Equal(t, []int{domain.GenreHorror}, f.movies.queries[0].GenreIDs)
	assert.Empty(t, f.movies.queries[1].GenreIDs)
	assert.Equal(t, f.movies.queries[0].Page, f.movies.queries[1].Page)
}

func TestMovie_RandomDoesNotRetry(t *testing.T) {
	f := newFixture()

	_, err := f.handlers().Movie(context.Background(), domain.MoodRandom)
	require.ErrorIs(t, err, domain.ErrNoResults)
	assert.Len(t, f.movies.queries, 1)
	assert.Equal(t, "🎬 No movies found. Try a different mood!", ReplyFor(err))
}

func TestMovie_UnknownMoodIsUnfiltered(t *testing.T) {
	f := newFixture()
	f.movies.results = [][]domain.MovieSummary{{inception()}}

	_, err := f.handlers().Movie(context.Background(), "grumpy")
	require.NoError(t, err)
	assert.Empty(t, f.movies.queries[0].GenreIDs)
}

func TestMovie_EmptyAfterRetry(t *testing.T) {
	f := newFixture()

	_, err := f.handlers().Movie(context.Background(), domain.MoodHappy)
	require.ErrorIs(t, err, domain.ErrNoResults)
	assert.Len(t, f.movies.queries, 2)
}

func TestMovie_NoPosters(t *testing.T) {
	f := newFixture()
	noPoster := inception()
	noPoster.PosterPath = ""
	f.movies.results = [][]domain.MovieSummary{{noPoster, noPoster}}

	_, err := f.handlers().Movie(context.Background(), domain.MoodRandom)
	require.ErrorIs(t, err, domain.ErrNoDisplayableResults)
	assert.Equal(t, "🎬 No movies with posters found. Try again!", ReplyFor(err))
	assert.Empty(t, f.movies.detailIDs)
}

func TestMovie_PicksOnlyFromPosterCandidates(t *testing.T) {
	f := newFixture()
	noPoster := inception()
	noPoster.ID = 1
	noPoster.PosterPath = ""
	withPoster := inception()
	withPoster.ID = 2
	f.movies.results = [][]domain.MovieSummary{{noPoster, withPoster}}

	_, err := f.handlers().Movie(context.Background(), domain.MoodRandom)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, f.movies.detailIDs)
}

func TestMovie_DiscoverFailure(t *testing.T) {
	f := newFixture()
	f.movies.discoverErr = domain.NetworkError("tmdb", errors.New("timeout"))

	_, err := f.handlers().Movie(context.Background(), domain.MoodSad)
	require.Error(t, err)
	assert.Equal(t, "🚫 Failed to get movie: network", ReplyFor(err))
	assert.Len(t, f.movies.queries, 1)
}

func TestMovie_DetailsFailure(t *testing.T) {
	f := newFixture()
	f.movies.results = [][]domain.MovieSummary{{inception()}}
	f.movies.detailsErr = domain.ParseError("tmdb", errors.New("bad json"))

	_, err := f.handlers().Movie(context.Background(), domain.MoodRandom)
	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "🚫 Failed to get movie: parse", ReplyFor(err))
}

func TestMovie_FallbackFields(t *testing.T) {
	f := newFixture()
	m := inception()
	m.ReleaseDate = ""
	m.Overview = ""
	f.movies.results = [][]domain.MovieSummary{{m}}

	got, err := f.handlers().Movie(context.Background(), domain.MoodRandom)
	require.NoError(t, err)
	assert.Contains(t, got, "(Unknown year)")
	assert.Contains(t, got, "⏱️ ? mins")
	assert.Contains(t, got, "**Genres**: Unknown")
	assert.Contains(t, got, "**Plot**: No description available")
}

func TestTruncate(t *testing.T) {
	short := strings.Repeat("a", 200)
	assert.Equal(t, short, truncate(short, 200))

	long := strings.Repeat("é", 250)
	got := truncate(long, 200)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("é", 200)+"...", got)
}
