// Package bot implements the command handlers. Each handler aggregates one or
// more upstream sources and the location store into a single reply.
//
// Handlers return the reply text on success. On failure they return a
// *ReplyError whose Reply is the text to show and whose Err is exactly one
// member of the domain error taxonomy.
package bot

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
)

// LocationStore is the subset of the location store the handlers use.
type LocationStore interface {
	Get(userID string) (domain.UserLocation, bool)
	Set(ctx context.Context, userID string, loc domain.UserLocation) error
}

// Rand picks uniformly in [0, n).
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Deps are the collaborators the handlers aggregate. Movies may be nil when
// movie recommendations are disabled.
type Deps struct {
	Memes    domain.MemeSource
	Quotes   domain.QuoteSource
	Geocoder domain.Geocoder
	Weather  domain.WeatherSource
	Movies   domain.MovieCatalog
	Store    LocationStore
	Rand     Rand // defaults to math/rand/v2
	Logger   *slog.Logger
}

// Handlers serves every bot command.
type Handlers struct {
	memes    domain.MemeSource
	quotes   domain.QuoteSource
	geocoder domain.Geocoder
	weather  domain.WeatherSource
	movies   domain.MovieCatalog
	store    LocationStore
	rand     Rand
	logger   *slog.Logger
}

// New creates the handlers.
func New(d Deps) *Handlers {
	r := d.Rand
	if r == nil {
		r = globalRand{}
	}
	return &Handlers{
		memes:    d.Memes,
		quotes:   d.Quotes,
		geocoder: d.Geocoder,
		weather:  d.Weather,
		movies:   d.Movies,
		store:    d.Store,
		rand:     r,
		logger:   d.Logger,
	}
}

// MoviesEnabled reports whether a movie catalog is configured.
func (h *Handlers) MoviesEnabled() bool { return h.movies != nil }

// Meme returns a meme image URL.
func (h *Handlers) Meme(ctx context.Context) (string, error) {
	u, err := h.memes.Fetch(ctx)
	if err != nil {
		return "", fail("🚫 Failed to get meme: "+causeOf(err), err)
	}
	return u, nil
}

// Quote returns a formatted quotation.
func (h *Handlers) Quote(ctx context.Context) (string, error) {
	q, err := h.quotes.Fetch(ctx)
	if err != nil {
		return "", fail("🚫 All quote services are unavailable right now", err)
	}
	return "\"" + q.Text + "\"\n- " + q.Author, nil
}
