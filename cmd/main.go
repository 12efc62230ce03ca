package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/party-bets/cache"
	"github.com/Dosada05/party-bets/config"
	"github.com/Dosada05/party-bets/db"
	"github.com/Dosada05/party-bets/events"
	"github.com/Dosada05/party-bets/handlers"
	"github.com/Dosada05/party-bets/jobs"
	"github.com/Dosada05/party-bets/live"
	"github.com/Dosada05/party-bets/logger"
	"github.com/Dosada05/party-bets/metrics"
	"github.com/Dosada05/party-bets/repositories"
	api "github.com/Dosada05/party-bets/routes"
	"github.com/Dosada05/party-bets/services"
	"github.com/Dosada05/party-bets/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const (
	serviceName     = "party-bets"
	shutdownTimeout = 15 * time.Second
	exportTimeout   = time.Minute
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	log, err := logger.New(serviceName, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log.Info("configuration loaded", zap.Int("port", cfg.ServerPort), zap.Int("metrics_port", cfg.MetricsPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		} else {
			log.Info("database connection closed")
		}
	}()
	log.Info("database connection established")

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, dbConn); err != nil {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
		log.Info("migrations applied")
	}

	// Метрики и /healthz на отдельном порту
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)
	metricsServer := metrics.StartServer(cfg.MetricsPort, metrics.NewHandler(registry, dbConn.PingContext), log)
	log.Info("metrics server started", zap.String("address", metricsServer.Addr))

	// Инициализация репозиториев
	memberRepo := repositories.NewPostgresMemberRepository(dbConn)
	entryRepo := repositories.NewPostgresEntryRepository(dbConn)

	var roster services.Roster = services.NewRepositoryRoster(memberRepo)
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		roster = cache.NewRosterCache(redisClient, memberRepo, cfg.RosterCacheTTL, log)
		log.Info("roster cache enabled", zap.Duration("ttl", cfg.RosterCacheTTL))
	}

	// Инициализация WebSocket Hub
	hub := live.NewHub(log.Named("live"))
	go hub.Run(ctx)

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaEntriesTopic))
		log.Info("kafka publisher enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaEntriesTopic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("failed to close event publisher", zap.Error(err))
		}
	}()

	// Инициализация сервисов
	entryService := services.NewEntryService(entryRepo, roster, hub, publisher, appMetrics, log.Named("entries"))

	if cfg.Export.Enabled() {
		uploader, err := storage.NewS3Uploader(ctx, storage.S3UploaderConfig{
			Bucket:          cfg.Export.Bucket,
			Endpoint:        cfg.Export.Endpoint,
			Region:          cfg.Export.Region,
			AccessKeyID:     cfg.Export.AccessKeyID,
			SecretAccessKey: cfg.Export.SecretAccessKey,
		})
		if err != nil {
			log.Fatal("failed to initialize snapshot uploader", zap.Error(err))
		}
		snapshotService := services.NewSnapshotService(entryService, uploader, cfg.Export.Prefix, appMetrics, log.Named("snapshot"))

		scheduler := jobs.NewScheduler(log)
		if _, err := jobs.RegisterSnapshotExport(scheduler, cfg.Export.Schedule, snapshotService, exportTimeout, log); err != nil {
			log.Fatal("failed to schedule snapshot export", zap.Error(err))
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		log.Info("snapshot export scheduled", zap.String("bucket", cfg.Export.Bucket), zap.String("schedule", cfg.Export.Schedule))
	}

	// Инициализация обработчиков HTTP
	entryHandler := handlers.NewEntryHandler(entryService)
	webSocketHandler := handlers.NewWebSocketHandler(hub)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, entryHandler, webSocketHandler, api.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         log,
		Metrics:        appMetrics,
	})
	log.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     zap.NewStdLog(log.Named("http")),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	log.Info("shutting down server", zap.Duration("timeout", shutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			log.Error("failed to force close server", zap.Error(closeErr))
		}
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", zap.Error(err))
	}
	stop()
	log.Info("application exited")
}
