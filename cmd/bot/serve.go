package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/chat-utility-bot/internal/adapter/discord"
	httpadapter "github.com/couchcryptid/chat-utility-bot/internal/adapter/http"
	"github.com/couchcryptid/chat-utility-bot/internal/config"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

func serveCmd() *cobra.Command {
	var registerCommands bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve Discord interactions plus health, readiness and metrics endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), registerCommands)
		},
	}
	cmd.Flags().BoolVar(&registerCommands, "register-commands", true, "overwrite the application's slash commands on startup")

	return cmd
}

func runServe(parent context.Context, registerCommands bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateInteractions(); err != nil {
		return err
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer a.Close()

	client := discord.NewClient(cfg.DiscordAPIURL, cfg.DiscordApplicationID, cfg.DiscordToken, cfg.UpstreamTimeout)
	if registerCommands {
		if err := client.RegisterCommands(ctx, a.router.Commands()); err != nil {
			logger.Warn("slash command registration failed", "error", err)
		} else {
			logger.Info("slash commands registered", "count", len(a.router.Commands()))
		}
	}

	interactions := discord.NewInteractionHandler(cfg.DiscordPublicKey, a.router, client, cfg.CommandTimeout, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, a.store, interactions, logger)

	// Audit outlives the request context so follow-ups finishing during
	// shutdown are still recorded.
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	defer stopAudit()
	auditDone := a.startAudit(auditCtx)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-serverErr:
		logger.Error("http server error", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	drained := make(chan struct{})
	go func() {
		interactions.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		logger.Warn("deferred commands still running at shutdown deadline")
	}

	stopAudit()
	<-auditDone

	logger.Info("shutdown complete")
	return runErr
}
