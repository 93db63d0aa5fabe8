package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/appid"
	errwrap "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/metrics"
	"github.com/lightspeedtech/lightspeed/internal/observability"
	"github.com/lightspeedtech/lightspeed/internal/server"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures telemetry system and exporter are available
// when metrics are enabled.
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Re-read the config file and report problems

Missing provider keys do not stop the server. The affected endpoint answers
with a configuration error until the key is supplied and the server restarted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		identity := appid.Get()
		namespace := identity.TelemetryNamespace()

		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "config load failed")
		}

		observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, cfg.Logging.Environment, namespace)
		logger := observability.ServerLogger

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(namespace, cfg.Metrics.Port); err != nil {
				logger.Error("Failed to initialize metrics", zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		}

		if err := cfg.Validate(); err != nil {
			logger.Warn("Configuration is incomplete; affected endpoints will report a configuration error",
				zap.Error(err))
		}

		logger.Info("Initializing server",
			zap.String("service", identity.BinaryName),
			zap.String("namespace", namespace),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
			zap.Int("metrics_port", observability.GetMetricsPort()),
			zap.String("chat_provider", cfg.Chat.ProviderName()),
			zap.Strings("chat_models", cfg.Chat.Models),
			zap.String("ratelimit_backend", cfg.RateLimit.Backend))

		deps, lim, err := buildDeps(cfg, versionInfo.Version)
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "server wiring failed")
		}
		if cfg.Metrics.Enabled {
			deps.Health.RegisterChecker("telemetry", telemetryHealthChecker{})
		}

		srv := server.New(cfg.Server, deps)

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Shutdown handlers run LIFO: HTTP server, limiter store, then logger.
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger...")
			if err := logger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			if err := lim.Close(); err != nil {
				logger.Warn("Failed to close limiter store", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}
			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			logger.Info("Received SIGHUP: re-reading configuration")

			if err := viper.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if errors.As(err, &notFound) {
					logger.Info("No config file found - using defaults and environment variables")
					return nil
				}
				logger.Error("Failed to reload config file",
					zap.String("file", viper.ConfigFileUsed()),
					zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			reloaded, err := loadConfig()
			if err != nil {
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}
			if err := reloaded.Validate(); err != nil {
				logger.Warn("Reloaded configuration is incomplete", zap.Error(err))
			}

			// Services keep the settings they were built with.
			logger.Info("Configuration re-read; restart to apply changes",
				zap.String("file", viper.ConfigFileUsed()))
			return nil
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		metrics.SetServerStartTime(time.Now().Unix())

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
