package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"n5-drill-service/internal/app"
	"n5-drill-service/internal/auth"
	"n5-drill-service/internal/config"
	"n5-drill-service/internal/infra/memory"
	"n5-drill-service/internal/infra/postgres"
	redisinfra "n5-drill-service/internal/infra/redis"
	"n5-drill-service/internal/logging"
	transport "n5-drill-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the practice server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// storage groups the repositories selected by configuration.
type storage struct {
	loader   memory.ExerciseLoader
	attempts app.AttemptRepository
	users    app.UserRepository
	close    func()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Env)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	cacheTTL := config.TTLDuration(cfg.Practice.CacheTTL, 10*time.Minute)

	var exercises app.ExerciseRepository
	var sessions app.SessionRepository
	if redisClient != nil {
		exercises = redisinfra.NewExerciseRepository(redisClient, store.loader, cacheTTL, logger)
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		exercises = memory.NewExerciseRepository(store.loader, cacheTTL)
		sessions = memory.NewSessionStore()
	}

	progression := app.NewProgression(store.attempts, store.users, logger)
	practice := app.NewPracticeService(sessions, exercises, store.users, progression, app.PracticeConfig{
		Level:        cfg.Practice.Level,
		DefaultLimit: cfg.Practice.DefaultLimit,
	}, logger)
	ranking := app.NewRankingAggregator(store.attempts, store.users, loc, cfg.Ranking.Size)
	profiles := app.NewProfileService(store.users)

	var authn auth.Authenticator = auth.HeaderAuthenticator{}
	if cfg.Auth.Secret != "" {
		authn = auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	} else {
		logger.Warn("no auth secret configured; trusting X-User-ID (development mode)")
	}

	router := transport.NewRouter(
		transport.NewWSHandler(practice, logger, transport.OriginChecker(cfg.CORS.AllowedOrigins)),
		transport.NewAPIHandler(profiles, ranking, logger),
		transport.RouterOptions{
			Authenticator:  authn,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Logger:         logger,
		},
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		logger.Info("starting practice service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStorage uses Postgres when configured and falls back to an in-memory store
// seeded with the demo user and sample exercises.
func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage, error) {
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return storage{}, err
		}
		return storage{
			loader:   postgres.NewExerciseLoader(pool),
			attempts: postgres.NewAttemptRepository(pool),
			users:    postgres.NewUserRepository(pool),
			close:    pool.Close,
		}, nil
	}

	logger.Warn("no postgres configured; using in-memory storage with sample data",
		zap.String("demo_user", memory.DemoUserID))
	store := memory.NewStore()
	store.PutUser(memory.DemoUser())
	return storage{
		loader:   memory.NewStaticExerciseLoader(memory.SampleExercises()),
		attempts: store,
		users:    store,
		close:    func() {},
	}, nil
}
