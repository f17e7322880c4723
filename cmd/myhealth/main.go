package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/myhealth/myhealth/internal/config"
	"github.com/myhealth/myhealth/internal/domain/account"
	"github.com/myhealth/myhealth/internal/domain/arv"
	"github.com/myhealth/myhealth/internal/domain/blog"
	"github.com/myhealth/myhealth/internal/domain/customer"
	"github.com/myhealth/myhealth/internal/domain/dashboard"
	"github.com/myhealth/myhealth/internal/domain/doctor"
	"github.com/myhealth/myhealth/internal/domain/medicalhistory"
	"github.com/myhealth/myhealth/internal/domain/rating"
	"github.com/myhealth/myhealth/internal/domain/registration"
	"github.com/myhealth/myhealth/internal/domain/reminder"
	"github.com/myhealth/myhealth/internal/domain/schedule"
	"github.com/myhealth/myhealth/internal/domain/testresult"
	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/db"
	"github.com/myhealth/myhealth/internal/platform/middleware"
	"github.com/myhealth/myhealth/internal/platform/session"
	"github.com/myhealth/myhealth/internal/platform/websocket"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "myhealth",
		Short:         "MyHealth clinic gateway and command-line client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(clientCmds()...)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg != nil && cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level := zerolog.InfoLevel
	if cfg != nil {
		if l, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && l != zerolog.NoLevel {
			level = l
		}
	}
	return logger.Level(level)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres session store schema",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			migrator, closePool, err := openMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			fmt.Printf("Running migrations on schema: %s\n", schema)
			count, err := migrator.Up(cmd.Context(), schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "public", "Target schema for migrations")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			migrator, closePool, err := openMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			statuses, err := migrator.Status(cmd.Context(), schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("schema", "public", "Target schema for migrations")
	cmd.AddCommand(statusCmd)

	return cmd
}

func openMigrator(ctx context.Context) (*db.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is required for migrations")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, db.Migrations()), pool.Close, nil
}

// openRepository builds the session repository chosen by SESSION_STORE and
// the health checks that go with it.
func openRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (session.Repository, []db.Check, func(), error) {
	switch cfg.SessionStore {
	case config.StoreFile:
		repo, err := session.NewFileRepository(cfg.SessionDir)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info().Str("dir", cfg.SessionDir).Msg("using file session store")
		return repo, nil, func() {}, nil

	case config.StoreRedis:
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info().Msg("connected to redis")
		check := db.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}
		// Keys outlive the idle timeout so an expired session is still
		// seen, cleared and announced.
		repo := session.NewRedisRepository(client, 2*cfg.SessionIdleTimeout)
		return repo, []db.Check{check}, func() { client.Close() }, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info().Msg("connected to database")
		n, err := db.NewMigrator(pool, db.Migrations()).Up(ctx, "public")
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("migrate session store: %w", err)
		}
		if n > 0 {
			logger.Info().Int("applied", n).Msg("session store migrated")
		}
		return session.NewPostgresRepository(pool), []db.Check{db.PoolCheck(pool)}, pool.Close, nil
	}

	logger.Info().Msg("using in-memory session store")
	return session.NewMemoryRepository(), nil, func() {}, nil
}

func sessionSecret(cfg *config.Config) ([]byte, error) {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return key, nil
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	for _, w := range cfg.Warnings() {
		logger.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sessions
	repo, checks, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.SessionStore).Msg("failed to open session store")
	}
	defer closeRepo()

	secret, err := sessionSecret(cfg)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(logger)
	monitor := session.NewMonitor(repo, logger,
		session.WithCheckInterval(cfg.SessionCheckInterval),
		session.WithMonitorIdleTimeout(cfg.SessionIdleTimeout),
		session.OnExpire(hub.NotifyExpired))

	// Backend client shared by every request; the token is read from the
	// request's session at call time.
	client := apiclient.New(cfg.BackendURL,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithUserAgent("myhealth-gateway/"+version),
		apiclient.WithTokenSource(auth.ContextTokens{}))
	checks = append(checks, db.Check{Name: "backend", Ping: client.Ping})

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(middleware.SecurityHeaders())
	if cfg.CookieSecure {
		e.Use(middleware.HSTS())
	}
	e.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.UploadLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(auth.Session(auth.SessionConfig{
		Repo:             repo,
		Cookies:          auth.NewCookieStore(secret, cfg.CookieSecure),
		IdleTimeout:      cfg.SessionIdleTimeout,
		CheckTokenExpiry: true,
		OnExpire:         hub.NotifyExpired,
		Logger:           logger,
	}))

	// Health check
	e.GET("/health", db.HealthHandler(checks...))

	websocket.NewHandler(hub, monitor, cfg.CORSOrigins, logger).RegisterRoutes(e)

	// API routes
	apiV1 := e.Group("/api/v1")
	limit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})

	account.NewHandler(account.NewService(client, hub)).RegisterRoutes(apiV1, limit)
	doctor.NewHandler(doctor.NewService(client)).RegisterRoutes(apiV1)
	customer.NewHandler(customer.NewService(client)).RegisterRoutes(apiV1)
	arv.NewHandler(arv.NewService(client)).RegisterRoutes(apiV1)
	medicalhistory.NewHandler(medicalhistory.NewService(client)).RegisterRoutes(apiV1)
	testresult.NewHandler(testresult.NewService(client)).RegisterRoutes(apiV1)
	registration.NewHandler(registration.NewService(client)).RegisterRoutes(apiV1)
	schedule.NewHandler(schedule.NewService(client)).RegisterRoutes(apiV1)
	reminder.NewHandler(reminder.NewService(client)).RegisterRoutes(apiV1)
	rating.NewHandler(rating.NewService(client)).RegisterRoutes(apiV1)
	blog.NewHandler(blog.NewService(client)).RegisterRoutes(apiV1)
	dashboard.NewHandler(dashboard.NewService(client, logger)).RegisterRoutes(apiV1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := monitor.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("backend", cfg.BackendURL).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
