package domain

import "context"

// Geocoder resolves free text to the single best matching place.
type Geocoder interface {
	// Geocode returns ErrNotFound when nothing matches.
	Geocode(ctx context.Context, query string) (Place, error)
}

// WeatherSource fetches current conditions plus today's range.
type WeatherSource interface {
	Forecast(ctx context.Context, latitude, longitude string) (WeatherPayload, error)
}

// QuoteSource returns a quotation.
type QuoteSource interface {
	Fetch(ctx context.Context) (Quote, error)
}

// MemeSource returns the URL of a meme image.
type MemeSource interface {
	Fetch(ctx context.Context) (string, error)
}

// MovieCatalog discovers movies and looks up their details.
type MovieCatalog interface {
	Discover(ctx context.Context, q DiscoverQuery) ([]MovieSummary, error)
	Details(ctx context.Context, id int64) (MovieDetails, error)
}
