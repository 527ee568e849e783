package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/splitledger/splitledger/internal/adapter/http"
	"github.com/splitledger/splitledger/internal/adapter/http/handler"
	"github.com/splitledger/splitledger/internal/adapter/http/middleware"
	postgresRepo "github.com/splitledger/splitledger/internal/adapter/repository/postgres"
	redisRepo "github.com/splitledger/splitledger/internal/adapter/repository/redis"
	"github.com/splitledger/splitledger/internal/infrastructure/auth"
	"github.com/splitledger/splitledger/internal/infrastructure/config"
	"github.com/splitledger/splitledger/internal/infrastructure/events"
	"github.com/splitledger/splitledger/internal/infrastructure/logger"
	"github.com/splitledger/splitledger/internal/infrastructure/metrics"
	"github.com/splitledger/splitledger/internal/infrastructure/postgres"
	"github.com/splitledger/splitledger/internal/infrastructure/redis"
	"github.com/splitledger/splitledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	groupRepo := postgresRepo.NewGroupRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	inviteRepo := postgresRepo.NewInviteRepository(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Event hub for server-sent events
	hub := events.NewHub(appLogger)
	defer hub.Close()

	m := metrics.New()

	// Initialize use cases
	userUC := usecase.NewUserUseCase(userRepo, idGen)
	groupUC := usecase.NewGroupUseCase(txManager, groupRepo, userRepo, expenseRepo, paymentRepo, idGen, hub)
	expenseUC := usecase.NewExpenseUseCase(txManager, groupRepo, expenseRepo, idGen, cache, hub)
	paymentUC := usecase.NewPaymentUseCase(txManager, groupRepo, expenseRepo, paymentRepo, idGen, retrier, cache, hub)
	balanceUC := usecase.NewBalanceUseCase(groupRepo, expenseRepo, paymentRepo, cache)
	inviteUC := usecase.NewInviteUseCase(txManager, groupRepo, inviteRepo, idGen, hub)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userUC, jwtManager, m)
	groupHandler := handler.NewGroupHandler(groupUC, m)
	expenseHandler := handler.NewExpenseHandler(expenseUC, m)
	paymentHandler := handler.NewPaymentHandler(paymentUC, m)
	balanceHandler := handler.NewBalanceHandler(balanceUC, m)
	inviteHandler := handler.NewInviteHandler(inviteUC, cfg.InviteBaseURL, m)
	eventsHandler := handler.NewEventsHandler(groupUC, hub, cfg.SSEHeartbeat, m)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:      authHandler,
		GroupHandler:     groupHandler,
		ExpenseHandler:   expenseHandler,
		PaymentHandler:   paymentHandler,
		BalanceHandler:   balanceHandler,
		InviteHandler:    inviteHandler,
		EventsHandler:    eventsHandler,
		HealthHandler:    healthHandler,
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		Logging:          middleware.NewLoggingMiddleware(appLogger),
		Metrics:          middleware.NewMetricsMiddleware(m),
		RateLimiter:      middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
