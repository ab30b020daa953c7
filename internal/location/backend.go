package location

import (
	"context"
	"fmt"

	"github.com/couchcryptid/chat-utility-bot/internal/config"
)

// NewBackend builds the backend selected by LOCATION_BACKEND.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.LocationBackend {
	case config.BackendFile:
		return NewFileBackend(cfg.LocationPath), nil
	case config.BackendSQLite:
		return NewSQLiteBackend(cfg.LocationDSN)
	case config.BackendPostgres:
		return NewPostgresBackend(ctx, cfg.LocationDSN)
	default:
		return nil, fmt.Errorf("unknown location backend %q", cfg.LocationBackend)
	}
}
