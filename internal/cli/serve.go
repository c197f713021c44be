package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/jsamuelsen/quotesync/internal/adapters/http"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

func (a *App) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic sync loop",
		Long: `Serve starts the HTTP API and, unless sync.enabled is false, a scheduler
that reconciles with the remote server immediately and then every
sync.interval. SIGINT or SIGTERM shuts both down gracefully.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStdoutLogs: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.serve(ctx)
		},
	}
}

func (a *App) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	logger.Info("starting service",
		slog.String("version", a.build.Version),
		slog.String("commit", a.build.Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
	)

	// 1. Telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      a.build.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := telProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", err))
		}
	}()

	// 2. Prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewSyncMetrics(registry)

	// 3. Storage, remote client, services
	c, err := a.wire(ctx, metrics)
	if err != nil {
		return err
	}
	defer c.close(logger)

	// 4. Health checks: storage gates readiness, the remote is reported only
	health := ports.NewHealthRegistry()
	if err := health.Register(c.storage); err != nil {
		return fmt.Errorf("registering storage health check: %w", err)
	}

	if err := health.RegisterOptional(c.remote); err != nil {
		return fmt.Errorf("registering remote health check: %w", err)
	}

	// 5. HTTP server and routes
	server := httpadapter.New(&cfg.Server, logger)
	httpadapter.SetupRouter(server.Engine(), httpadapter.RouterConfig{
		Logger:      logger,
		ServiceName: cfg.App.Name,
		Health: handlers.NewHealthHandler(health,
			handlers.NewBuildInfo(a.build.Version, a.build.Commit, a.build.BuildTime), registry),
		Quotes:        handlers.NewQuoteHandler(c.service),
		Sync:          handlers.NewSyncHandler(c.reconciler),
		Notifications: handlers.NewNotificationHandler(c.hub),
		Timeout:       httpadapter.DefaultRequestTimeout,
	})

	// 6. Run server and scheduler until a signal or a fatal error
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx)
	})

	if cfg.Sync.Enabled {
		scheduler := app.NewScheduler(c.reconciler, cfg.Sync.Interval, cfg.Sync.CycleTimeout, logger)

		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	} else {
		logger.Info("periodic sync disabled")
	}

	start := time.Now()
	err = g.Wait()

	logger.Info("service stopped", slog.Duration("uptime", time.Since(start)))

	return err
}
