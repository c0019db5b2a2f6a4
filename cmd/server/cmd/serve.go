package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/digital-event-scheduler/server/internal/api"
	"github.com/digital-event-scheduler/server/internal/auth"
	"github.com/digital-event-scheduler/server/internal/config"
	"github.com/digital-event-scheduler/server/internal/domain/events"
	"github.com/digital-event-scheduler/server/internal/domain/users"
	"github.com/digital-event-scheduler/server/internal/storage/postgres"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Connect to Postgres and verify connectivity
- Bootstrap an admin user if ADMIN_EMAIL / ADMIN_NAME are set
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 3000)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting event scheduler server")

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.Connect(poolCtx, cfg.Database.URL, cfg.Database.MaxConnections)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}
	userStore := repo.Users()
	eventStore := repo.Events()

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapAdminUser(bootstrapCtx, cfg, userStore, logger); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}
	bootstrapCancel()

	deps := api.Dependencies{
		Tokens:     auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, "scheduler"),
		Users:      users.NewService(userStore, logger),
		Events:     events.NewService(eventStore, userStore, logger),
		UserStore:  userStore,
		EventStore: eventStore,
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(cfg, logger, deps),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

// bootstrapAdminUser seeds the first admin. Registration only creates
// general users and promotion requires an existing admin, so a fresh
// deployment has no other way to obtain one.
func bootstrapAdminUser(ctx context.Context, cfg config.Config, store users.Store, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Email == "" || bootstrap.FullName == "" {
		logger.Debug().Msg("admin bootstrap env vars not set; skipping")
		return nil
	}

	existing, err := store.GetByEmail(ctx, bootstrap.Email)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		if existing.UserType == users.TypeAdmin {
			return nil
		}
		if err := store.UpdateType(ctx, bootstrap.Email, users.TypeAdmin); err != nil {
			return fmt.Errorf("promote admin user: %w", err)
		}
		logger.Info().Str("email", bootstrap.Email).Msg("promoted bootstrap admin")
		return nil
	}

	service := users.NewService(store, logger)
	if err := service.Register(ctx, users.RegisterParams{Email: bootstrap.Email, FullName: bootstrap.FullName}); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	if err := store.UpdateType(ctx, bootstrap.Email, users.TypeAdmin); err != nil {
		return fmt.Errorf("promote admin user: %w", err)
	}
	logger.Info().Str("email", bootstrap.Email).Msg("bootstrapped admin user")
	return nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
