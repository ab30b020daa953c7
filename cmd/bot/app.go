package main

import (
	"context"
	"fmt"
	"log/slog"

	kafkaadapter "github.com/couchcryptid/chat-utility-bot/internal/adapter/kafka"
	"github.com/couchcryptid/chat-utility-bot/internal/adapter/memeapi"
	"github.com/couchcryptid/chat-utility-bot/internal/adapter/nominatim"
	"github.com/couchcryptid/chat-utility-bot/internal/adapter/openmeteo"
	"github.com/couchcryptid/chat-utility-bot/internal/adapter/quotes"
	"github.com/couchcryptid/chat-utility-bot/internal/adapter/tmdb"
	"github.com/couchcryptid/chat-utility-bot/internal/audit"
	"github.com/couchcryptid/chat-utility-bot/internal/bot"
	"github.com/couchcryptid/chat-utility-bot/internal/command"
	"github.com/couchcryptid/chat-utility-bot/internal/config"
	"github.com/couchcryptid/chat-utility-bot/internal/location"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

// app is the wired command stack shared by serve and ask.
type app struct {
	logger    *slog.Logger
	store     *location.Store
	router    *command.Router
	writer    *kafkaadapter.Writer
	publisher *audit.Publisher
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*app, error) {
	backend, err := location.NewBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open location backend: %w", err)
	}
	store := location.Open(ctx, backend, logger, metrics)
	logger.Info("location store ready", "backend", cfg.LocationBackend, "saved", store.Len())

	geocoder := nominatim.NewCachedGeocoder(
		nominatim.NewClient(cfg.NominatimUserAgent, cfg.UpstreamTimeout, metrics, logger),
		cfg.GeocodeCacheSize,
		metrics,
	)
	deps := bot.Deps{
		Memes:    memeapi.NewClient(cfg.UpstreamTimeout, metrics),
		Quotes:   quotes.NewClient(quotes.DefaultSources(), cfg.QuoteTimeout, metrics, logger),
		Geocoder: geocoder,
		Weather:  openmeteo.NewClient(cfg.UpstreamTimeout, metrics, logger),
		Store:    store,
		Logger:   logger,
	}
	if cfg.MoviesEnabled {
		deps.Movies = tmdb.NewClient(cfg.TMDBAPIKey, cfg.UpstreamTimeout, metrics, logger)
		logger.Info("movie recommendations enabled")
	} else {
		logger.Info("movie recommendations disabled, TMDB_API_KEY not set")
	}

	a := &app{logger: logger, store: store}

	var sink command.EventSink
	if cfg.AuditEnabled {
		a.writer = kafkaadapter.NewWriter(cfg, logger)
		a.publisher = audit.NewPublisher(a.writer, cfg.BatchSize, cfg.BatchFlushInterval, logger, metrics)
		sink = a.publisher
		logger.Info("command audit enabled", "topic", cfg.KafkaAuditTopic, "brokers", cfg.KafkaBrokers)
	}

	a.router = command.NewRouter(sink, logger, metrics)
	command.RegisterBot(a.router, bot.New(deps))
	return a, nil
}

// startAudit runs the publisher until ctx is cancelled. The returned channel
// closes once the final flush is done.
func (a *app) startAudit(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if a.publisher == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		if err := a.publisher.Run(ctx); err != nil {
			a.logger.Error("audit publisher error", "error", err)
		}
	}()
	return done
}

func (a *app) Close() {
	if a.writer != nil {
		if err := a.writer.Close(); err != nil {
			a.logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("location store close error", "error", err)
	}
}
