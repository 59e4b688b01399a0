package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/tair/inventory-ledger/internal/ledger"
	httpDelivery "github.com/tair/inventory-ledger/internal/ledger/delivery/http"
	"github.com/tair/inventory-ledger/internal/ledger/domain"
	"github.com/tair/inventory-ledger/internal/ledger/notify"
	"github.com/tair/inventory-ledger/internal/ledger/usecase/command"
	"github.com/tair/inventory-ledger/kafka"
	"github.com/tair/inventory-ledger/pkg/database"
	"github.com/tair/inventory-ledger/pkg/logger"
	"github.com/tair/inventory-ledger/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "ledger-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	allowNegative := getEnv("ALLOW_NEGATIVE_STOCK", "false") == "true"

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Bool("allow_negative_stock", allowNegative).
		Msg("Starting ledger service")

	// Initialize tracing
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Tracing disabled")
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "ledgerdb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := db.AutoMigrate(&domain.ProductBalance{}, &domain.Movement{}); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Threshold notifications: always log crossings, optionally forward
	// them to Kafka below.
	notifier := notify.New()
	notifier.Subscribe(func(ctx context.Context, e domain.StockThresholdCrossed) error {
		logger.Warn(ctx).
			Str("product_key", e.ProductKey).
			Int("previous_on_hand", e.PreviousOnHand).
			Int("new_on_hand", e.NewOnHand).
			Str("crossed", string(e.Crossed)).
			Msg("Stock threshold crossed")
		return nil
	})

	// Initialize service with Wire DI
	svc, err := ledger.InitializeService(db, notifier, command.Config{AllowNegativeStock: allowNegative})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize service")
	}

	// Kafka integration (optional, enabled by KAFKA_BROKERS)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	var publisher *kafka.Publisher
	var consumer *kafka.Consumer
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		brokerList := strings.Split(brokers, ",")

		publisher, err = kafka.NewPublisher(brokerList)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka publisher")
		}
		notifier.Subscribe(func(ctx context.Context, e domain.StockThresholdCrossed) error {
			return publisher.PublishStockThresholdCrossed(ctx, kafka.StockThresholdCrossedEvent{
				ProductKey:     e.ProductKey,
				PreviousOnHand: e.PreviousOnHand,
				NewOnHand:      e.NewOnHand,
				MinQuantity:    e.MinQuantity,
				Crossed:        string(e.Crossed),
				MovementID:     e.MovementID,
				Timestamp:      e.OccurredAt,
			})
		})

		consumer, err = kafka.NewConsumer(
			brokerList,
			getEnv("KAFKA_GROUP_ID", "ledger-service"),
			[]string{kafka.TopicOrdersCompleted},
		)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka consumer")
		}
		consumer.RegisterHandler(kafka.EventTypeOrderCompleted, func(ctx context.Context, event kafka.OrderCompletedEvent) error {
			_, err := svc.Apply.Handle(ctx, command.ApplyMovementCommand{
				ProductKey:  event.ProductKey,
				Type:        domain.MovementSale,
				Magnitude:   event.Quantity,
				ReferenceID: event.OrderID,
			})
			return err
		})
		if err := consumer.Start(consumerCtx); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
		}
	}

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8080")
	srv := newHTTPServer(svc, sqlDB, httpPort)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	logger.Logger.Info().
		Str("port", httpPort).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	stopConsumer()
	if consumer != nil {
		consumer.Close()
	}
	if publisher != nil {
		publisher.Close()
	}
	if tp != nil {
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Tracer shutdown failed")
		}
	}
}

func newHTTPServer(svc *ledger.Service, db *sql.DB, port string) *http.Server {
	router := mux.NewRouter()

	httpDelivery.RegisterMiddlewares(router)

	// Register routes
	svc.HTTP.RegisterRoutes(router)

	// Health check endpoint
	svc.HTTP.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:         ":" + port,
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
