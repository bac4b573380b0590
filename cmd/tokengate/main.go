// Package main is the entry point for the tokengate service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clearway/tokengate/internal/auth"
	"github.com/clearway/tokengate/internal/auth/jwt"
	"github.com/clearway/tokengate/internal/config"
	"github.com/clearway/tokengate/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags.configPath, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := initApplication(ctx, cfg, flags.configPath, logger)
	defer app.shutdown()

	runServer(ctx, cfg, app, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("TOKENGATE_CONFIG_PATH", "configs/tokengate.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("TOKENGATE_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("TOKENGATE_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information and exits.
func printVersion() {
	fmt.Printf("tokengate version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// loadAndValidateConfig loads and validates the configuration.
func loadAndValidateConfig(configPath string, logger observability.Logger) *config.Config {
	logger.Info("starting tokengate",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", observability.Error(err))
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}

	logger.Info("configuration loaded",
		observability.String("keystore_url", cfg.Auth.KeystoreURL),
		observability.Int("checks", len(cfg.Auth.Checks)),
	)

	return cfg
}

// application holds the long-lived service components.
type application struct {
	keyCache   *jwt.KeyCache
	middleware *auth.Middleware
	metrics    *jwt.Metrics
	watcher    *config.Watcher
	logger     observability.Logger
}

// initApplication initializes the key cache, validator, middleware, and
// config watcher.
func initApplication(
	ctx context.Context, cfg *config.Config, configPath string, logger observability.Logger,
) *application {
	checks, err := jwt.ParseChecks(cfg.Auth.Checks, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal("invalid claim checks", observability.Error(err))
	}

	metrics := jwt.NewMetrics("tokengate")

	keyCache := jwt.NewKeyCache(cfg.Auth.KeystoreURL,
		jwt.WithRefreshInterval(cfg.Auth.GetEffectiveRefreshInterval()),
		jwt.WithRetryInterval(cfg.Auth.GetEffectiveRetryInterval()),
		jwt.WithKeyCacheLogger(logger),
		jwt.WithKeyCacheMetrics(metrics),
	)
	keyCache.Start(ctx)

	validator := jwt.NewValidator(
		jwt.WithValidatorLogger(logger),
		jwt.WithValidatorMetrics(metrics),
	)

	middleware := auth.NewMiddleware(validator, keyCache,
		auth.WithChecks(checks),
		auth.WithMiddlewareLogger(logger),
	)

	app := &application{
		keyCache:   keyCache,
		middleware: middleware,
		metrics:    metrics,
		logger:     logger,
	}

	app.watcher = initWatcher(ctx, configPath, middleware, logger)
	return app
}

// initWatcher wires config hot reload into the middleware checks.
func initWatcher(
	ctx context.Context, configPath string, middleware *auth.Middleware, logger observability.Logger,
) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(cfg *config.Config) {
		checks, err := jwt.ParseChecks(cfg.Auth.Checks, cfg.Auth.Issuer)
		if err != nil {
			logger.Error("reloaded config has invalid checks", observability.Error(err))
			return
		}
		middleware.SetChecks(checks)
		logger.Info("claim checks updated", observability.Int("checks", len(checks)))
	}, config.WithLogger(logger))
	if err != nil {
		logger.Warn("config hot reload disabled", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config hot reload disabled", observability.Error(err))
		return nil
	}
	return watcher
}

// shutdown stops the background components.
func (a *application) shutdown() {
	a.keyCache.Stop()
	if a.watcher != nil {
		_ = a.watcher.Stop()
	}
}

// newRouter builds the HTTP routes.
func newRouter(app *application) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		app.metrics.Registry(), promhttp.HandlerOpts{},
	)))

	v1 := router.Group("/v1", app.middleware.Handler())
	v1.GET("/introspect", func(c *gin.Context) {
		claims, _ := auth.ClaimsFromContext(c)
		c.JSON(http.StatusOK, gin.H{"active": true, "claims": claims})
	})

	return router
}

// runServer runs the HTTP server until the context is canceled.
func runServer(ctx context.Context, cfg *config.Config, app *application, logger observability.Logger) {
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      newRouter(app),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", observability.String("address", cfg.Server.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", observability.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", observability.Error(err))
		}
	}
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}
