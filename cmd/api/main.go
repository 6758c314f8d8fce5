package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/config"
	"github.com/fairyhunter13/slot-reservation-system/internal/handler"
	"github.com/fairyhunter13/slot-reservation-system/internal/metrics"
	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/internal/repository"
	"github.com/fairyhunter13/slot-reservation-system/internal/service"
	"github.com/fairyhunter13/slot-reservation-system/internal/validator"
	"github.com/fairyhunter13/slot-reservation-system/pkg/database"
	"github.com/fairyhunter13/slot-reservation-system/pkg/pubsub"
	"github.com/fairyhunter13/slot-reservation-system/pkg/push"
	"github.com/fairyhunter13/slot-reservation-system/pkg/session"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	defaults, err := cfg.Challenge.Defaults(cfg.Deposit)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid challenge defaults")
	}

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	// Change feed and session revocations share one Redis client
	broker, revocations, redisClient := initRedis(ctx, cfg.Redis)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Repositories
	slotRepo := repository.NewSlotRepository(pool)
	configRepo := repository.NewConfigRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)
	pushTokenRepo := repository.NewPushTokenRepository(pool)

	// Services
	configService := service.NewConfigService(configRepo, broker, defaults)
	slotService := service.NewSlotService(pool, slotRepo, configService, broker, m)
	sessions := session.NewManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	authService := service.NewAuthService(credentialRepo, sessions, revocations, cfg.Auth.BcryptCost)
	adminService := service.NewAdminService(pool, adminRepo, credentialRepo, authService)
	pushService := service.NewPushService(pushTokenRepo, push.NewExpoClient(cfg.Push.Endpoint, cfg.Push.Timeout), m)

	if err := adminService.Bootstrap(ctx, &model.CreateAdminRequest{
		Email:    cfg.Bootstrap.Email,
		Password: cfg.Bootstrap.Password,
		Name:     cfg.Bootstrap.Name,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Slot Reservation System",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 0,                 // Streams stay open until the client leaves
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	var brokerPinger handler.Pinger
	if redisClient != nil {
		brokerPinger = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	handler.RegisterRoutes(app, handler.Routes{
		Health:       handler.NewHealthHandler(pool, brokerPinger),
		Metrics:      handler.MetricsHandler(reg),
		Slots:        handler.NewSlotHandler(slotService, validate, m),
		Config:       handler.NewConfigHandler(configService, validate, m),
		Auth:         handler.NewAuthHandler(authService, validate),
		Admins:       handler.NewAdminHandler(adminService, validate),
		Push:         handler.NewPushHandler(pushService, validate),
		RequireAdmin: handler.RequireAdmin(authService, adminService),
	})

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Closing the broker ends every live stream so in-flight requests can drain.
	// The Redis broker also closes the shared client.
	if err := broker.Close(); err != nil {
		log.Error().Err(err).Msg("error closing change feed")
	}

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initRedis connects the change feed and revocation list to Redis. Without a
// reachable Redis both fall back to in-process implementations, which only
// work for a single instance.
func initRedis(ctx context.Context, cfg config.RedisConfig) (pubsub.Broker, session.RevocationList, *redis.Client) {
	if cfg.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, using in-process change feed")
		return pubsub.NewMemoryBroker(), session.NewMemoryRevocations(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unreachable, using in-process change feed")
		_ = client.Close()
		return pubsub.NewMemoryBroker(), session.NewMemoryRevocations(), nil
	}

	log.Info().Str("addr", cfg.Addr).Msg("connected to redis")
	return pubsub.NewRedisBroker(client), session.NewRedisRevocations(client), client
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
