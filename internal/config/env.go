package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

const defaultGeocodeCacheSize = 1000

// parsePositiveDuration reads key as a duration, requiring it to be > 0.
func parsePositiveDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseGeocodeCacheSize() (int, error) {
	s := os.Getenv("GEOCODE_CACHE_SIZE")
	if s == "" {
		return defaultGeocodeCacheSize, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid GEOCODE_CACHE_SIZE: must be a positive integer")
	}
	return n, nil
}
