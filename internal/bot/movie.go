package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
)

const (
	maxDiscoverPage = 10
	overviewBudget  = 200
	posterBaseURL   = "https://image.tmdb.org/t/p/w500"
)

// Movie recommends a random popular movie matching mood. Unknown moods and
// "random" apply no genre filter.
func (h *Handlers) Movie(ctx context.Context, mood string) (string, error) {
	page := 1 + h.rand.IntN(maxDiscoverPage)
	genres := domain.GenresForMood(mood)

	movies, err := h.movies.Discover(ctx, domain.DiscoverQuery{Page: page, GenreIDs: genres})
	if err != nil {
		return "", fail("🚫 Failed to get movie: "+causeOf(err), err)
	}
	if len(movies) == 0 && len(genres) > 0 {
		h.logger.Info("no movies for genre filter, retrying unfiltered", "mood", mood, "page", page)
		movies, err = h.movies.Discover(ctx, domain.DiscoverQuery{Page: page})
		if err != nil {
			return "", fail("🚫 Failed to get movie: "+causeOf(err), err)
		}
	}
	if len(movies) == 0 {
		return "", fail("🎬 No movies found. Try a different mood!", domain.ErrNoResults)
	}

	eligible := movies[:0:0]
	for _, m := range movies {
		if m.PosterPath != "" {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		return "", fail("🎬 No movies with posters found. Try again!", domain.ErrNoDisplayableResults)
	}

	pick := eligible[h.rand.IntN(len(eligible))]
	details, err := h.movies.Details(ctx, pick.ID)
	if err != nil {
		return "", fail("🚫 Failed to get movie: "+causeOf(err), err)
	}

	return formatMovie(buildRecommendation(pick, details)), nil
}

func buildRecommendation(m domain.MovieSummary, d domain.MovieDetails) domain.MovieRecommendation {
	year := "Unknown year"
	if len(m.ReleaseDate) >= 4 {
		year = m.ReleaseDate[:4]
	}
	overview := "No description available"
	if m.Overview != "" {
		overview = truncate(m.Overview, overviewBudget)
	}
	return domain.MovieRecommendation{
		Title:       m.Title,
		ReleaseYear: year,
		Rating:      m.VoteAverage,
		Runtime:     d.Runtime,
		Genres:      d.Genres,
		PosterURL:   posterBaseURL + m.PosterPath,
		Overview:    overview,
	}
}

func formatMovie(r domain.MovieRecommendation) string {
	runtime := "?"
	if r.Runtime > 0 {
		runtime = fmt.Sprint(r.Runtime)
	}
	genres := "Unknown"
	if len(r.Genres) > 0 {
		genres = strings.Join(r.Genres, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎬 **%s** (%s)\n", r.Title, r.ReleaseYear)
	fmt.Fprintf(&b, "⭐ **Rating**: %s/10 • ⏱️ %s mins\n", num(r.Rating), runtime)
	fmt.Fprintf(&b, "🎭 **Genres**: %s\n", genres)
	fmt.Fprintf(&b, "📝 **Plot**: %s\n", r.Overview)
	b.WriteString(r.PosterURL)
	return b.String()
}

// truncate shortens s to at most limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
