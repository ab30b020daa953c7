// Package location keeps each user's saved weather location.
//
// The Store holds the full mapping in memory and writes the whole mapping
// through its Backend on every Set. There is no batching and no delete
// operation.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

// ErrIncompleteLocation is returned by Set when a field is empty.
var ErrIncompleteLocation = errors.New("location must have latitude, longitude and display name")

// Backend persists the complete location mapping.
type Backend interface {
	// Load returns the persisted mapping. A missing store is an empty mapping.
	Load(ctx context.Context) (map[string]domain.UserLocation, error)
	// Save replaces the persisted mapping with locations.
	Save(ctx context.Context, locations map[string]domain.UserLocation) error
	Ping(ctx context.Context) error
	Close() error
}

// Store is the process-wide user location cache.
type Store struct {
	backend Backend
	logger  *slog.Logger
	metrics *observability.Metrics

	mu        sync.RWMutex
	locations map[string]domain.UserLocation
}

// Open loads the mapping from backend. An unreadable or corrupt backing store
// is logged and replaced by an empty mapping; it is not an error.
func Open(ctx context.Context, backend Backend, logger *slog.Logger, metrics *observability.Metrics) *Store {
	locations, err := backend.Load(ctx)
	if err != nil {
		logger.Warn("location store unreadable, starting empty", "error", err)
		locations = nil
	}
	if locations == nil {
		locations = make(map[string]domain.UserLocation)
	}
	for id, loc := range locations {
		if !loc.Complete() {
			logger.Warn("dropping incomplete saved location", "user_id", id)
			delete(locations, id)
			continue
		}
		loc.UserID = id
		locations[id] = loc
	}
	metrics.SavedLocations.Set(float64(len(locations)))
	logger.Info("location store loaded", "locations", len(locations))

	return &Store{
		backend:   backend,
		logger:    logger,
		metrics:   metrics,
		locations: locations,
	}
}

// Get returns the saved location for userID.
func (s *Store) Get(userID string) (domain.UserLocation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.locations[userID]
	return loc, ok
}

// Set saves loc for userID and persists the whole mapping before returning.
// On a persist failure the previous in-memory entry is restored and the
// error is returned.
func (s *Store) Set(ctx context.Context, userID string, loc domain.UserLocation) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	if !loc.Complete() {
		return ErrIncompleteLocation
	}
	loc.UserID = userID

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.locations[userID]
	s.locations[userID] = loc

	if err := s.backend.Save(ctx, s.locations); err != nil {
		if existed {
			s.locations[userID] = prev
		} else {
			delete(s.locations, userID)
		}
		s.metrics.LocationWrites.WithLabelValues(observability.OutcomeError).Inc()
		return fmt.Errorf("persist locations: %w", err)
	}

	s.metrics.LocationWrites.WithLabelValues(observability.OutcomeSuccess).Inc()
	s.metrics.SavedLocations.Set(float64(len(s.locations)))
	s.logger.Debug("location saved", "user_id", userID, "location", loc.DisplayName)
	return nil
}

// Len returns the number of saved locations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.locations)
}

// CheckReadiness reports whether the backend is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
