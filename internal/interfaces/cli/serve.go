package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/smilescombine/internal/config"
	"github.com/turtacn/smilescombine/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/smilescombine/internal/interfaces/http"
	"github.com/turtacn/smilescombine/internal/interfaces/http/handlers"
	"github.com/turtacn/smilescombine/internal/interfaces/http/middleware"
	"github.com/turtacn/smilescombine/pkg/errors"
)

const rateLimitCleanupInterval = 5 * time.Minute

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, cliCtx.Logger, appOptions{metrics: true})
			if err != nil {
				return err
			}
			defer a.Close()
			watchLogLevel(cliCtx)

			var enqueuer handlers.Enqueuer
			if a.producer != nil {
				enqueuer = kafka.NewRequestEnqueuer(a.producer, cfg.Kafka.RequestTopic)
			}
			routerCfg := a.routerConfig()
			routerCfg.LibraryHandler = handlers.NewLibraryHandler(a.service, enqueuer, a.logger,
				handlers.WithSyncLimits(syncLimits(cfg)))
			routerCfg.MaxBodySize = cfg.Server.MaxBodySize
			if cfg.Server.RateLimitRPS > 0 {
				limiter := middleware.NewTokenBucketLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, rateLimitCleanupInterval)
				defer limiter.Stop()
				routerCfg.RateLimiter = limiter
			}

			srv := httpserver.NewServer(httpserver.ServerConfig{
				Addr:            fmt.Sprintf(":%d", cfg.Server.Port),
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, httpserver.NewRouter(routerCfg), a.logger)
			return runServer(ctx, srv, a.logger)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config, 8080)")
	return cmd
}

// syncLimits derives the bounds on libraries built inside a request.  A
// configured combiner.nmax below the cap stays the default.
func syncLimits(cfg *config.Config) handlers.SyncLimits {
	return handlers.SyncLimits{
		MaxNMax:     cfg.Server.MaxNMax,
		DefaultNMax: cfg.Combiner.NMax,
		Timeout:     cfg.Server.GenerateTimeout,
	}
}

// routerConfig holds the parts of the route tree shared by serve and the
// worker's probe listener.
func (a *app) routerConfig() httpserver.RouterConfig {
	rc := httpserver.RouterConfig{
		Mode:        a.cfg.Server.Mode,
		Logger:      a.logger,
		Logging:     middleware.DefaultLoggingConfig(),
		MetricsPath: a.cfg.Metrics.Path,
	}
	var recorder handlers.HealthRecorder
	if a.metrics != nil {
		recorder = a.metrics
		rc.Metrics = a.metrics
		rc.MetricsCollector = a.collector
	}
	rc.HealthHandler = handlers.NewHealthHandler(Version, recorder, a.checks...)
	return rc
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, srv *httpserver.Server, logger logging.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received")
	if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	return <-errCh
}

func newWorkerCmd() *cobra.Command {
	var probeAddr string
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Generate libraries requested on the Kafka request topic",
		Long: "Consumes library requests, generates each library and acknowledges the\n" +
			"message.  Requests that fail on infrastructure errors are retried with\n" +
			"backoff and then moved to the dead-letter topic.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if !cfg.Kafka.Enabled {
				return errors.Unavailable("worker requires kafka.enabled")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, cliCtx.Logger, appOptions{metrics: true})
			if err != nil {
				return err
			}
			defer a.Close()
			watchLogLevel(cliCtx)

			handler := kafka.RequestHandler(a.service.HandleRequested, a.logger)
			if a.metrics != nil {
				inner := handler
				handler = func(ctx context.Context, msg *kafka.Message) error {
					err := inner(ctx, msg)
					a.metrics.RecordMessage(err)
					return err
				}
			}
			consumer, err := kafka.NewConsumer(consumerConfig(cfg.Kafka), handler, a.producer, a.logger)
			if err != nil {
				return err
			}
			if err := consumer.Start(ctx); err != nil {
				return err
			}
			defer consumer.Close()

			if probeAddr == "" {
				consumer.Wait()
				return nil
			}
			srv := httpserver.NewServer(httpserver.ServerConfig{Addr: probeAddr}, httpserver.NewRouter(a.routerConfig()), a.logger)
			return runServer(ctx, srv, a.logger)
		},
	}
	cmd.Flags().StringVar(&probeAddr, "probe-addr", "", "serve /healthz, /readyz and metrics on this address, e.g. :9102")
	return cmd
}

//Personal.AI order the ending
