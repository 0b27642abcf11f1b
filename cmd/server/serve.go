// cmd/server/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"github.com/Corphon/TrustLens/internal/api"
	"github.com/Corphon/TrustLens/internal/app"
	"github.com/Corphon/TrustLens/internal/config"
	"github.com/Corphon/TrustLens/internal/di"
	"github.com/Corphon/TrustLens/internal/utils"
)

const (
	shutdownTimeout       = 30 * time.Second
	metricsReportInterval = 5 * time.Minute
	// covers the 15s fetch budget plus scoring
	serverWriteTimeout = 30 * time.Second
	serverReadTimeout  = 10 * time.Second
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP API",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "port",
			Usage: "Port to listen on (overrides PORT)",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Verbose, human readable logs (overrides DEBUG_MODE)",
		},
	},
	Action: runServe,
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port := cmd.String("port"); port != "" {
		cfg.Port = port
	}
	if cmd.Bool("debug") {
		cfg.DebugMode = true
	}

	logger := setupLogging(cfg)
	defer logger.Close()

	logger.Info("Starting TrustLens", map[string]interface{}{
		"version": version,
		"port":    cfg.Port,
		"demo":    cfg.DemoMode,
	})

	container := di.GetContainer()
	services, err := app.InitServices(cfg, container)
	if err != nil {
		return fmt.Errorf("init services: %w", err)
	}
	logger.Info("Services initialized", map[string]interface{}{
		"services": container.GetNames(),
		"provider": services.Oracle.GetProviderName(),
	})

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.SetupRouter(cfg, container)
	if err != nil {
		return fmt.Errorf("setup router: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services.Metrics.StartMetricsCollection(ctx, metricsReportInterval)

	return serveUntilDone(ctx, router, cfg.Port, logger)
}

// setupLogging applies the configured level and attaches the log file
func setupLogging(cfg *config.AppConfig) *utils.Logger {
	logger := utils.GetLogger()
	logger.SetLogLevel(utils.ParseLogLevel(cfg.LogLevel))
	if cfg.DebugMode {
		logger.SetPretty(true)
		logger.SetLogLevel(utils.DEBUG)
	}

	if cfg.LogDir != "" {
		if err := utils.InitLogger(filepath.Join(cfg.LogDir, "trustlens.log")); err != nil {
			logger.Warn("Log file disabled", map[string]interface{}{"error": err.Error()})
		}
	}
	return logger
}

// serveUntilDone runs the server until ctx ends, then drains in-flight requests
func serveUntilDone(ctx context.Context, handler http.Handler, port string, logger *utils.Logger) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("Listening on http://localhost:%s", port)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("Server stopped", nil)
	return nil
}
