package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
)

// --- fakes shared by handler tests ---

type fakeMemes struct {
	url string
	err error
}

func (f *fakeMemes) Fetch(context.Context) (string, error) { return f.url, f.err }

type fakeQuotes struct {
	quote domain.Quote
	err   error
}

func (f *fakeQuotes) Fetch(context.Context) (domain.Quote, error) { return f.quote, f.err }

type fakeGeocoder struct {
	place   domain.Place
	err     error
	queries []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, q string) (domain.Place, error) {
	f.queries = append(f.queries, q)
	return f.place, f.err
}

type fakeWeather struct {
	payload domain.WeatherPayload
	err     error
	lat     string
	lon     string
}

func (f *fakeWeather) Forecast(_ context.Context, lat, lon string) (domain.WeatherPayload, error) {
	f.lat, f.lon = lat, lon
	return f.payload, f.err
}

type fakeCatalog struct {
	results     [][]domain.MovieSummary // one entry per Discover call
	discoverErr error
	details     domain.MovieDetails
	detailsErr  error
	queries     []domain.DiscoverQuery
	detailIDs   []int64
}

func (f *fakeCatalog) Discover(_ context.Context, q domain.DiscoverQuery) ([]domain.MovieSummary, error) {
	f.queries = append(f.queries, q)
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	i := len(f.queries) - 1
	if i >= len(f.results) {
		return nil, nil
	}
	return f.results[i], nil
}

func (f *fakeCatalog) Details(_ context.Context, id int64) (domain.MovieDetails, error) {
	f.detailIDs = append(f.detailIDs, id)
	return f.details, f.detailsErr
}

type memStore struct {
	mu   sync.Mutex
	locs map[string]domain.UserLocation
	err  error
}

func newMemStore() *memStore {
	return &memStore{locs: make(map[string]domain.UserLocation)}
}

func (s *memStore) Get(userID string) (domain.UserLocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locs[userID]
	return loc, ok
}

func (s *memStore) Set(_ context.Context, userID string, loc domain.UserLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.locs[userID] = loc
	return nil
}

var errDiskFull = errors.New("disk full")

// firstRand always picks the lowest value.
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

type fixture struct {
	memes    *fakeMemes
	quotes   *fakeQuotes
	geocoder *fakeGeocoder
	weather  *fakeWeather
	movies   *fakeCatalog
	store    *memStore
}

func newFixture() *fixture {
	return &fixture{
		memes:    &fakeMemes{},
		quotes:   &fakeQuotes{},
		geocoder: &fakeGeocoder{},
		weather:  &fakeWeather{},
		movies:   &fakeCatalog{},
		store:    newMemStore(),
	}
}

func (f *fixture) handlers() *Handlers {
	return New(Deps{
		Memes:    f.memes,
		Quotes:   f.quotes,
		Geocoder: f.geocoder,
		Weather:  f.weather,
		Movies:   f.movies,
		Store:    f.store,
		Rand:     firstRand{},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}
