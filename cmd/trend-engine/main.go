package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application
	"github.com/briananderson1222/EdgeMind-sub003/internal/application/port"
	"github.com/briananderson1222/EdgeMind-sub003/internal/application/usecase"

	// Domain
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/service"

	// Engine
	"github.com/briananderson1222/EdgeMind-sub003/internal/discovery"
	"github.com/briananderson1222/EdgeMind-sub003/internal/insight"

	// Infrastructure
	redisCache "github.com/briananderson1222/EdgeMind-sub003/internal/infrastructure/cache/redis"
	natsMessaging "github.com/briananderson1222/EdgeMind-sub003/internal/infrastructure/messaging/nats"
	"github.com/briananderson1222/EdgeMind-sub003/internal/infrastructure/observability/cloudwatch"
	"github.com/briananderson1222/EdgeMind-sub003/internal/infrastructure/persistence/postgres"

	// Interfaces
	httpInterface "github.com/briananderson1222/EdgeMind-sub003/internal/interfaces/http"
	"github.com/briananderson1222/EdgeMind-sub003/internal/interfaces/http/handler"
	"github.com/briananderson1222/EdgeMind-sub003/internal/interfaces/http/middleware"

	// Shared
	"github.com/briananderson1222/EdgeMind-sub003/pkg/config"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	// 1. Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализируем logger
	log := logger.New(os.Getenv("LOG_LEVEL"))
	log.Info("Starting Trend Analysis Engine")

	// 3. Подключаемся к БД
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Проверяем подключение
	if err := db.Ping(); err != nil {
		log.Error("Failed to ping database", err)
		os.Exit(1)
	}
	log.Info("Database connected successfully")

	// 4. Dependency Injection - Infrastructure Layer

	telemetryRepository := postgres.NewPostgresTelemetryRepository(db)

	// Redis для слепков между циклами детектора (опционально)
	var snapshotCache port.Cache
	cache, err := redisCache.NewRedisCache(
		cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB,
		0, 10, 2, 5*time.Second, 3*time.Second, 3*time.Second,
	)
	if err != nil {
		log.Warn("Redis unavailable, change detection loses history across restarts", "error", err.Error())
	} else {
		snapshotCache = cache
		defer cache.Close()
	}

	// NATS для передачи событий AI insight loop'у (опционально)
	var eventPublisher port.EventPublisher
	if cfg.NATS.Enabled {
		publisher, err := natsMessaging.NewNATSPublisher(cfg.NATS.URL, log)
		if err != nil {
			log.Warn("NATS unavailable, change events will not be published", "error", err.Error())
		} else {
			eventPublisher = publisher
			defer publisher.Close()
		}
	}

	// CloudWatch для операционных метрик и журналов циклов движка (опционально)
	var metricsPublisher port.MetricsPublisher
	var logPublisher port.LogPublisher
	if cfg.CloudWatch.Enabled {
		cwPublisher, err := cloudwatch.NewMetricsPublisher(context.Background(), cloudwatch.MetricsPublisherConfig{
			Namespace:       cfg.CloudWatch.Namespace,
			Region:          cfg.CloudWatch.Region,
			Endpoint:        cfg.CloudWatch.Endpoint,
			AccessKeyID:     cfg.CloudWatch.AccessKeyID,
			SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
		})
		if err != nil {
			log.Warn("CloudWatch unavailable, engine metrics will not be published", "error", err.Error())
		} else {
			metricsPublisher = cwPublisher
			defer cwPublisher.Close(context.Background())
		}

		cwLogsPublisher, err := cloudwatch.NewLogsPublisher(context.Background(), cloudwatch.LogsPublisherConfig{
			LogGroupName:    cfg.CloudWatch.LogGroupName,
			LogStreamName:   cfg.CloudWatch.LogStreamName,
			Region:          cfg.CloudWatch.Region,
			Endpoint:        cfg.CloudWatch.Endpoint,
			AccessKeyID:     cfg.CloudWatch.AccessKeyID,
			SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
			AutoCreate:      true,
		})
		if err != nil {
			log.Warn("CloudWatch Logs unavailable, cycle summaries will not be shipped", "error", err.Error())
		} else {
			logPublisher = cwLogsPublisher
			defer cwLogsPublisher.Close(context.Background())
		}
	}

	// 5. Dependency Injection - Domain Layer

	classifier := service.NewClassifier()
	oeeAnalyzer := service.NewOEEAnalyzer()
	changeDetector := service.NewChangeDetector()

	// 6. Кеши обнаружения схемы и топологии

	schemaCache := discovery.NewSchemaCache(telemetryRepository, classifier, discovery.SchemaCacheConfig{
		TTL:          cfg.Engine.CacheTTL,
		CountWindow:  cfg.Engine.CountWindow,
		SampleWindow: cfg.Engine.SampleWindow,
	}, log)

	hierarchyCache := discovery.NewHierarchyCache(telemetryRepository, discovery.HierarchyCacheConfig{
		TTL:            cfg.Engine.CacheTTL,
		TopologyWindow: cfg.Engine.TopologyWindow,
	}, log)

	// 7. Dependency Injection - Application Layer (Use Cases)

	analyzeOEEUC := usecase.NewAnalyzeOEEUseCase(schemaCache, oeeAnalyzer, log)
	detectChangesUC := usecase.NewDetectChangesUseCase(schemaCache, changeDetector, snapshotCache, eventPublisher, log)

	// 8. Фоновый цикл анализа

	insightService := insight.NewService(
		schemaCache,
		hierarchyCache,
		analyzeOEEUC,
		detectChangesUC,
		metricsPublisher,
		logPublisher,
		eventPublisher,
		cfg.Engine.ChangeThresholdPct,
	)
	insightRunner := insight.NewRunner(insightService, log, cfg.Engine.InsightInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go insightRunner.Start(ctx)
	log.Info("Insight runner started", "interval", cfg.Engine.InsightInterval.String())

	// 9. Dependency Injection - Interfaces Layer (HTTP Handlers)

	authConfig := middleware.AuthConfig{
		Enabled:     cfg.Security.AuthEnabled,
		BearerToken: cfg.Security.AuthToken,
	}

	schemaAPIHandler := handler.NewSchemaAPIHandler(schemaCache, log)
	hierarchyAPIHandler := handler.NewHierarchyAPIHandler(hierarchyCache, log)
	oeeAPIHandler := handler.NewOEEAPIHandler(analyzeOEEUC, log)
	insightAPIHandler := handler.NewInsightAPIHandler(insightRunner, log)
	authAPIHandler := handler.NewAuthAPIHandler(authConfig, log)

	router := httpInterface.NewRouter(
		schemaAPIHandler,
		hierarchyAPIHandler,
		oeeAPIHandler,
		insightAPIHandler,
		authAPIHandler,
		cfg.Security,
		log,
	)

	// 10. Настраиваем HTTP сервер

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Канал для получения сигналов ОС
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Запускаем сервер в отдельной goroutine
	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}()

	// 11. Ожидаем сигнал для graceful shutdown

	<-sigChan
	log.Info("Shutdown signal received, starting graceful shutdown...")

	// Останавливаем фоновый цикл
	cancel()

	// Даем время на завершение текущих операций
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}

	log.Info("Server stopped gracefully")
}
