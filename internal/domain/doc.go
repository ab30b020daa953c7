// Package domain models the data the bot aggregates from its upstream services.
//
// # Locations
//
// A [UserLocation] is the last place a user chose to save. Coordinates are kept
// exactly as the geocoding provider returned them (decimal strings such as
// "52.5170365"). They are never parsed, rounded, or validated, so a saved
// location is reproduced byte-for-byte on the next weather lookup.
//
// # Static tables
//
// [LookupWeatherCode] maps WMO weather interpretation codes, as reported by
// Open-Meteo, to an emoji and a description:
//
//	0        clear sky
//	1-3      mainly clear, partly cloudy, overcast
//	45, 48   fog and depositing rime fog
//	51-57    drizzle (light, moderate, dense, freezing)
//	61-67    rain (slight, moderate, heavy, freezing)
//	71-77    snow fall and snow grains
//	80-82    rain showers
//	85, 86   snow showers
//	95-99    thunderstorm, optionally with hail
//
// Codes outside the table resolve to a thermometer marker rather than failing.
//
// [GenresForMood] maps a mood to TMDB genre identifiers. Identifiers are
// OR-combined ("35|10402") when querying discovery.
//
// # Errors
//
// Upstream failures are reported through a small taxonomy: [ErrNotFound],
// [FetchError], [UpstreamError], [ErrAllSourcesUnavailable], [ErrNoResults] and
// [ErrNoDisplayableResults]. Clients return exactly one of these. Callers
// branch on them with errors.Is and errors.As.
package domain
