package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/auth"
	"github.com/drivehub/service-rental/internal/common/database"
	"github.com/drivehub/service-rental/internal/common/health"
	"github.com/drivehub/service-rental/internal/common/kafka"
	"github.com/drivehub/service-rental/internal/common/lock"
	"github.com/drivehub/service-rental/internal/common/logger"
	"github.com/drivehub/service-rental/internal/common/metrics"
	"github.com/drivehub/service-rental/internal/common/middleware"
	"github.com/drivehub/service-rental/internal/config"
	rentalEvents "github.com/drivehub/service-rental/internal/events"
	"github.com/drivehub/service-rental/internal/handler"
	"github.com/drivehub/service-rental/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-rental")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental",
		zap.String("port", cfg.Port),
		zap.String("lock_backend", cfg.LockBackend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := repository.EnsureSchema(db); err != nil {
			log.Fatal("failed to prepare schema", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheus(registry)

	// Per-car lock
	var carLocker lock.Locker = lock.NewKeyedMutex()
	if cfg.LockBackend == config.LockBackendRedis {
		redisClient, err := lock.NewRedisClient(ctx, cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		carLocker = lock.NewRedisLocker(redisClient, "service-rental:", cfg.LockTTL, log)
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	contractRepo := repository.NewGormContractRepository(db)
	carRepo := repository.NewGormCarRepository(db)
	clientRepo := repository.NewGormClientRepository(db)

	// Initialize application services
	contractService := application.NewContractService(application.ContractServiceDeps{
		Contracts: contractRepo,
		Cars:      carRepo,
		Gate:      application.NewEligibilityService(clientRepo, clientRepo, carRepo),
		Tx:        repository.NewGormTransactor(db, cfg.TxMaxRetries, recorder, log),
		Locker:    carLocker,
		Publisher: kafkaProducer,
		Metrics:   recorder,
		Logger:    log,
	})

	// Initialize and start fleet event consumer in a goroutine
	groupID := cfg.KafkaConfig.GroupPrefix + "rental-service"
	fleetConsumer := rentalEvents.NewFleetEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		contractService,
		log,
	)
	defer func() { _ = fleetConsumer.Close() }()

	go func() {
		log.Info("starting fleet event consumer")
		if err := fleetConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("fleet event consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	healthHandler := health.NewHandler(db, "service-rental")
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", recorder.Handler())

	// Register routes
	handler.NewContractHandler(contractService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminContractHandler(contractService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-rental...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-rental stopped")
}
