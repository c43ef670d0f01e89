package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/talent-service/internal/api/http"
	"github.com/spec-kit/talent-service/internal/api/http/handlers"
	"github.com/spec-kit/talent-service/internal/auth"
	"github.com/spec-kit/talent-service/internal/config"
	"github.com/spec-kit/talent-service/internal/events"
	"github.com/spec-kit/talent-service/internal/observability"
	"github.com/spec-kit/talent-service/internal/persistence"
	"github.com/spec-kit/talent-service/internal/ratelimit"
	"github.com/spec-kit/talent-service/internal/repository"
	"github.com/spec-kit/talent-service/internal/repository/memory"
	"github.com/spec-kit/talent-service/internal/service"
	"github.com/spec-kit/talent-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "talent-service",
		Short:         "Authentication and tenant-scoped candidate API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{persistence.MigrateUp, persistence.MigrateDown},
		RunE: func(_ *cobra.Command, args []string) error {
			return migrate(args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("talent-service %s\n", version)
		},
	})

	return cmd
}

func migrate(direction string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	return persistence.RunMigrations(cfg.Postgres.DSN, direction, logger)
}

func serve(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if pg.PoolHandle() != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, persistence.MigrateUp, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	readiness := map[string]handlers.Pinger{}
	var (
		userRepo      repository.UserRepository
		candidateRepo repository.CandidateRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
		candidateRepo = repository.NewCandidateRepository(pool)
		readiness["postgres"] = pg
	} else {
		logger.Warn("using in-memory stores; data is lost on restart")
		userRepo = memory.NewUserStore()
		candidateRepo = memory.NewCandidateStore()
	}

	var limiter service.LoginLimiter = ratelimit.Noop{}
	if redis.Enabled() {
		readiness["redis"] = redis
		if cfg.LoginLimiter.Enabled {
			limiter = ratelimit.NewLoginLimiter(redis.Client, cfg.LoginLimiter, logger)
		}
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	issuer := auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Issuer:     issuer,
		Hasher:     auth.NewHasher(cfg.Auth.BcryptCost),
		Limiter:    limiter,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	candidateService := service.NewCandidateService(candidateRepo, logger)
	cookie := auth.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Domain: cfg.Auth.CookieDomain,
		Secure: cfg.Auth.CookieSecure,
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:           handlers.NewAuthHandler(authService, cookie),
		Users:          handlers.NewUsersHandler(authService),
		Candidates:     handlers.NewCandidatesHandler(candidateService),
		AuthMiddleware: auth.NewAuthMiddleware(issuer, userRepo),
		Metrics:        metrics,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	return app.ShutdownWithTimeout(shutdownTimeout)
}
