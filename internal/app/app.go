// Package app provides the top-level application lifecycle for the war-room
// service. It wires together all dependencies (stores, caches, blob storage,
// external clients, services, and notifications) and runs the HTTP/WebSocket
// server plus the background leaderboard publisher until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scorewire/warroom/internal/config"
	"github.com/scorewire/warroom/internal/server"
	"github.com/scorewire/warroom/internal/server/handler"
	"github.com/scorewire/warroom/internal/server/ws"
	"github.com/scorewire/warroom/internal/service"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the server
// and background goroutines, and blocks until the context is cancelled.
// Callers release resources afterwards via Close.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
		slog.Int("port", a.cfg.Server.Port),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	// Services.
	tradeSvc := service.NewTradeService(
		deps.SessionStore,
		deps.TradeRecordStore,
		deps.LeaderboardStore,
		deps.FrontOffice,
		deps.Grader,
		deps.Archiver,
		deps.SignalBus,
		deps.Notifier,
		a.cfg.Engine.ValidationDebounce.Duration,
		a.logger,
	)
	rosterSvc := service.NewRosterService(
		deps.FrontOffice,
		deps.FrontOffice,
		deps.RosterCache,
		deps.CapCache,
		a.logger,
	)
	historySvc := service.NewHistoryService(
		deps.TradeRecordStore,
		deps.SessionStore,
		deps.LeaderboardStore,
		deps.LockManager,
		deps.SignalBus,
		a.logger,
	)

	// HTTP surface.
	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(),
		Sessions: handler.NewSessionHandler(tradeSvc, a.logger),
		Rosters:  handler.NewRosterHandler(rosterSvc, a.logger),
		History:  handler.NewHistoryHandler(historySvc, a.logger),
	}
	hub := ws.NewHub(deps.SignalBus, a.logger)
	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(ctx)
	})

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if interval := a.cfg.Engine.LeaderboardPublishInterval.Duration; interval > 0 {
		g.Go(func() error {
			return a.publishLeaderboard(ctx, historySvc, interval)
		})
	}

	return g.Wait()
}

// publishLeaderboard periodically pushes the current standings onto the
// signal bus so connected dashboards stay current without polling.
func (a *App) publishLeaderboard(ctx context.Context, history *service.HistoryService, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := history.PublishLeaderboard(ctx, a.cfg.Engine.LeaderboardLimit, interval); err != nil {
				a.logger.WarnContext(ctx, "leaderboard publish failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
