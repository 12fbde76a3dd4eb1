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
	applicationPort "github.com/dreschagin/buoywatch/internal/application/port"
	"github.com/dreschagin/buoywatch/internal/application/usecase"

	// Domain
	"github.com/dreschagin/buoywatch/internal/domain/entity"
	"github.com/dreschagin/buoywatch/internal/domain/service"

	// Infrastructure
	redisCache "github.com/dreschagin/buoywatch/internal/infrastructure/cache/redis"
	mqttInfra "github.com/dreschagin/buoywatch/internal/infrastructure/messaging/mqtt"
	natsInfra "github.com/dreschagin/buoywatch/internal/infrastructure/messaging/nats"
	wsInfra "github.com/dreschagin/buoywatch/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/buoywatch/internal/infrastructure/observability/cloudwatch"
	dynamodbRepo "github.com/dreschagin/buoywatch/internal/infrastructure/persistence/dynamodb"
	"github.com/dreschagin/buoywatch/internal/infrastructure/persistence/postgres"
	s3storage "github.com/dreschagin/buoywatch/internal/infrastructure/storage/s3"

	// Interfaces
	httpInterface "github.com/dreschagin/buoywatch/internal/interfaces/http"
	"github.com/dreschagin/buoywatch/internal/interfaces/http/handler"
	"github.com/dreschagin/buoywatch/internal/interfaces/http/middleware"

	// Shared
	"github.com/dreschagin/buoywatch/pkg/config"
	"github.com/dreschagin/buoywatch/pkg/logger"

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
	log.Info("Starting BuoyWatch Core")

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

	// Repositories
	measurementSource := postgres.NewPostgresMeasurementSource(db)
	alertRepository := postgres.NewPostgresAlertRepository(db)

	var parameterCatalog applicationPort.ParameterCatalog = postgres.NewPostgresParameterCatalog(db)
	var thresholdStore applicationPort.ThresholdStore = postgres.NewPostgresThresholdStore(db)

	// Reference-data and series cache
	var seriesCache applicationPort.Cache
	var referenceCache *redisCache.RedisCache
	if cfg.Redis.Enabled {
		cacheImpl, initErr := redisCache.NewRedisCache(
			cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB,
			cfg.Redis.TTL, 10, 2, 5*time.Second, 3*time.Second, 3*time.Second,
		)
		if initErr != nil {
			log.Warn("Failed to connect to Redis, continuing without cache", "error", initErr.Error())
		} else {
			seriesCache = cacheImpl
			referenceCache = cacheImpl
			parameterCatalog = redisCache.NewCachedParameterCatalog(parameterCatalog, cacheImpl, log)
			thresholdStore = redisCache.NewCachedThresholdStore(thresholdStore, cacheImpl, log)
			defer cacheImpl.Close()
			log.Info("Redis cache initialized")
		}
	} else {
		log.Warn("Redis cache is disabled")
	}

	// WebSocket Hub
	hub := wsInfra.NewHub(log)

	// 5. Dependency Injection - Domain Layer

	unitConverter := service.NewUnitConverter()
	categoryResolver := service.NewCategoryResolver()
	thresholdClassifier := service.NewThresholdClassifier()
	gridAligner := service.NewGridAligner()
	preferenceStore := service.NewPreferenceStore(service.DefaultUnitPreferences())

	// 5.5. CloudWatch Integration

	var metricsPublisher applicationPort.MetricsPublisher
	if cfg.CloudWatch.Enabled {
		publisherImpl, initErr := cloudwatch.NewMetricsPublisher(context.Background(),
			cloudwatch.MetricsPublisherConfig{
				Namespace:       cfg.CloudWatch.Namespace,
				Region:          cfg.CloudWatch.Region,
				Endpoint:        cfg.CloudWatch.Endpoint,
				AccessKeyID:     cfg.CloudWatch.AccessKeyID,
				SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
				FlushInterval:   cfg.CloudWatch.FlushInterval,
			})
		if initErr != nil {
			log.Error("Failed to initialize CloudWatch metrics publisher", initErr)
			os.Exit(1)
		}
		metricsPublisher = publisherImpl
		log.Info("CloudWatch metrics publisher initialized")
	} else {
		log.Warn("CloudWatch metrics publishing is disabled")
	}

	// 5.6. Export storage and metadata index

	var exportStorage applicationPort.ExportStorage
	if cfg.S3.Enabled {
		storageImpl, initErr := s3storage.NewExportStorage(context.Background(), s3storage.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
			URLMode:         s3storage.URLMode(cfg.S3.URLMode),
			PresignedTTL:    cfg.S3.PresignedTTL,
		})
		if initErr != nil {
			log.Error("Failed to initialize export storage", initErr)
			os.Exit(1)
		}
		exportStorage = storageImpl
	} else {
		log.Warn("S3 storage is disabled, CSV exports will fail")
	}

	var exportMetadataRepo applicationPort.ExportMetadataRepository
	if cfg.DynamoDB.Enabled {
		repoImpl, initErr := dynamodbRepo.NewExportMetadataRepository(context.Background(), dynamodbRepo.Config{
			TableName:       cfg.DynamoDB.TableName,
			Region:          cfg.DynamoDB.Region,
			Endpoint:        cfg.DynamoDB.Endpoint,
			AccessKeyID:     cfg.DynamoDB.AccessKeyID,
			SecretAccessKey: cfg.DynamoDB.SecretAccessKey,
			StrongReads:     cfg.DynamoDB.StrongReads,
		})
		if initErr != nil {
			log.Error("Failed to initialize export metadata repository", initErr)
			os.Exit(1)
		}
		exportMetadataRepo = repoImpl
		log.Info("Export metadata repository initialized", "provider", "dynamodb")
	} else {
		log.Warn("DynamoDB export index is disabled, export listing will be empty")
	}

	// 6. Dependency Injection - Application Layer (Use Cases)

	refreshLatestUC := usecase.NewRefreshLatestUseCase(
		measurementSource,
		parameterCatalog,
		thresholdStore,
		preferenceStore,
		unitConverter,
		categoryResolver,
		thresholdClassifier,
		hub,
		metricsPublisher, // Can be nil if CloudWatch disabled
		log,
	)

	loadSeriesUC := usecase.NewLoadSeriesUseCase(
		measurementSource,
		parameterCatalog,
		preferenceStore,
		unitConverter,
		categoryResolver,
		gridAligner,
		seriesCache, // Can be nil if Redis disabled
		log,
	)

	exportSeriesUC := usecase.NewExportSeriesUseCase(
		loadSeriesUC,
		exportStorage,
		exportMetadataRepo,
		metricsPublisher,
		log,
	)

	listExportsUC := usecase.NewListExportsUseCase(exportMetadataRepo)
	backfillAlertsUC := usecase.NewBackfillAlertsUseCase(alertRepository)
	streamAlertsUC := usecase.NewStreamAlertsUseCase(hub, metricsPublisher, log)
	spotlight := usecase.NewSpotlightScheduler(cfg.Monitor.SpotlightInterval, hub, log)

	// Dismiss приходит и по WebSocket, и по HTTP — оба пути сходятся здесь
	hub.SetDismissHandler(func(id string) {
		streamAlertsUC.Dismiss(id)
	})

	// 6.5. Realtime feeds

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alertFilter := usecase.AlertFilter{}

	var alertSubscription applicationPort.AlertSubscription
	if cfg.NATS.Enabled {
		subscriberImpl, initErr := natsInfra.NewNATSAlertSubscriber(cfg.NATS.URL, cfg.NATS.Subject, log)
		if initErr != nil {
			log.Warn("Failed to connect to NATS, continuing without realtime alerts", "error", initErr.Error())
		} else {
			alertSubscription = subscriberImpl
			if subErr := alertSubscription.Subscribe(ctx, func(event entity.AlertEvent) {
				if !alertFilter.Matches(event, time.Now()) {
					return
				}
				streamAlertsUC.OnEvent(event)
			}); subErr != nil {
				log.Error("Failed to subscribe to alert subject", subErr)
				os.Exit(1)
			}
			log.Info("NATS alert subscription initialized", "subject", cfg.NATS.Subject)
		}
	} else {
		log.Warn("NATS alert feed is disabled")
	}

	var measurementSubscriber *mqttInfra.MQTTMeasurementSubscriber
	if cfg.MQTT.Enabled {
		subscriberImpl, initErr := mqttInfra.NewMQTTMeasurementSubscriber(
			cfg.MQTT.BrokerURL, cfg.MQTT.ClientID, cfg.MQTT.Topic, log)
		if initErr != nil {
			log.Warn("Failed to connect to MQTT broker, continuing with polling only", "error", initErr.Error())
		} else {
			measurementSubscriber = subscriberImpl
			// Пуш с буя означает что снимок станции устарел — перечитываем целиком
			if subErr := measurementSubscriber.Subscribe(func(stationID string, _ entity.Measurement) {
				if _, refreshErr := refreshLatestUC.Execute(ctx, stationID); refreshErr != nil {
					log.Error("Failed to refresh station on MQTT push", refreshErr, "station_id", stationID)
				}
			}); subErr != nil {
				log.Error("Failed to subscribe to measurement topic", subErr)
				os.Exit(1)
			}
			log.Info("MQTT measurement subscription initialized", "topic", cfg.MQTT.Topic)
		}
	} else {
		log.Warn("MQTT measurement feed is disabled")
	}

	// 7. Dependency Injection - Interfaces Layer (HTTP Handlers)

	authConfig := middleware.AuthConfig{
		Enabled:     cfg.Security.AuthEnabled,
		BearerToken: cfg.Security.AuthToken,
	}

	snapshotHandler := handler.NewSnapshotAPIHandler(refreshLatestUC, log)
	seriesHandler := handler.NewSeriesAPIHandler(loadSeriesUC, cfg.Monitor.MaxSeriesRange, log)
	alertsHandler := handler.NewAlertsAPIHandler(backfillAlertsUC, streamAlertsUC, log)
	exportsHandler := handler.NewExportsAPIHandler(exportSeriesUC, listExportsUC, log)
	preferencesHandler := handler.NewPreferencesAPIHandler(preferenceStore, unitConverter, log)
	websocketHandler := handler.NewWebSocketHandler(hub, cfg.Security.AllowedOrigins, authConfig, log)
	authAPIHandler := handler.NewAuthAPIHandler(authConfig, log)

	// Router
	router := httpInterface.NewRouter(
		snapshotHandler,
		seriesHandler,
		alertsHandler,
		exportsHandler,
		preferencesHandler,
		websocketHandler,
		authAPIHandler,
		cfg.Security,
		log,
	)

	// 8. Запускаем фоновые процессы

	// Запускаем WebSocket hub
	go hub.Run()
	log.Info("WebSocket hub started")

	// Запускаем опрос станций
	go func() {
		refreshAll := func() {
			active := make([]string, 0, len(cfg.Monitor.StationIDs))
			critical := make(map[string]bool, len(cfg.Monitor.StationIDs))

			for _, stationID := range cfg.Monitor.StationIDs {
				snapshot, refreshErr := refreshLatestUC.Execute(ctx, stationID)
				if refreshErr != nil {
					log.Error("Failed to refresh station", refreshErr, "station_id", stationID)
					continue
				}
				active = append(active, stationID)
				if snapshot.HasCritical() {
					critical[stationID] = true
				}
			}

			spotlight.SetCandidates(active, critical)
		}

		ticker := time.NewTicker(cfg.Monitor.RefreshInterval)
		defer ticker.Stop()

		log.Info("Station polling started",
			"stations", len(cfg.Monitor.StationIDs),
			"interval", cfg.Monitor.RefreshInterval.String())

		refreshAll()
		spotlight.Start()

		for {
			select {
			case <-ticker.C:
				refreshAll()
			case <-ctx.Done():
				log.Info("Station polling stopped")
				return
			}
		}
	}()

	// Медленный цикл: сбрасываем кешированные справочники станций, чтобы
	// изменения параметров и порогов подтягивались без рестарта
	if referenceCache != nil {
		go func() {
			ticker := time.NewTicker(cfg.Monitor.HistoryInterval)
			defer ticker.Stop()

			log.Info("Reference cache refresh started",
				"interval", cfg.Monitor.HistoryInterval.String())

			for {
				select {
				case <-ticker.C:
					for _, stationID := range cfg.Monitor.StationIDs {
						if invErr := referenceCache.InvalidateStation(ctx, stationID); invErr != nil {
							log.Warn("Failed to invalidate station cache",
								"station_id", stationID, "error", invErr.Error())
						}
					}
				case <-ctx.Done():
					log.Info("Reference cache refresh stopped")
					return
				}
			}
		}()
	}

	// 9. Настраиваем HTTP сервер

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

	// 10. Ожидаем сигнал для graceful shutdown

	<-sigChan
	log.Info("Shutdown signal received, starting graceful shutdown...")

	// Останавливаем опрос и ротацию
	cancel()
	spotlight.Stop()

	if alertSubscription != nil {
		if err := alertSubscription.Close(); err != nil {
			log.Error("Failed to close NATS subscription", err)
		}
	}
	if measurementSubscriber != nil {
		if err := measurementSubscriber.Close(); err != nil {
			log.Error("Failed to close MQTT subscription", err)
		}
	}

	// Даем время на завершение текущих операций
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Flush CloudWatch buffers before shutdown
	if metricsPublisher != nil {
		log.Info("Flushing CloudWatch metrics buffer...")
		if err := metricsPublisher.Flush(shutdownCtx); err != nil {
			log.Error("Failed to flush CloudWatch metrics", err)
		}
		if err := metricsPublisher.Close(); err != nil {
			log.Error("Failed to close CloudWatch metrics publisher", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}

	log.Info("Server stopped gracefully")
}
