package main

import (
	"context"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/self-checkout/internal/config"
	"github.com/tuanvumaihuynh/self-checkout/internal/detector"
	"github.com/tuanvumaihuynh/self-checkout/internal/event"
	"github.com/tuanvumaihuynh/self-checkout/internal/http"
	"github.com/tuanvumaihuynh/self-checkout/internal/log"
	"github.com/tuanvumaihuynh/self-checkout/internal/relay"
	"github.com/tuanvumaihuynh/self-checkout/internal/repository"
	"github.com/tuanvumaihuynh/self-checkout/internal/service"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/db"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/docdb"
	"github.com/tuanvumaihuynh/self-checkout/internal/storage/mq"
	"github.com/tuanvumaihuynh/self-checkout/internal/telemetry"
	"github.com/tuanvumaihuynh/self-checkout/pkg/cmdutil"
	"github.com/tuanvumaihuynh/self-checkout/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Mongo    config.Mongo
		HTTP     config.HTTP
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
		Detector config.Detector
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	mongoClient, err := docdb.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("error creating mongo client: %w", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Mongo.Timeout)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.ErrorContext(ctx, "error disconnecting mongo client", slog.Any("error", err))
		}
	}()

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	productRepository := repository.NewProductRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)
	receiptRepository := repository.NewMongoReceiptRepository(
		docdb.Collection(mongoClient, cfg.Mongo, cfg.Mongo.ReceiptCollection),
	)

	objectDetector := detector.NewHTTPDetector(cfg.Detector, &nethttp.Client{}, logger)
	v := validator.MustNewDefaultValidator()

	services := http.Services{
		Catalog:   service.NewCatalogService(logger, dbClient, v, productRepository, outboxMsgRepository),
		Detection: service.NewDetectionService(cfg.Detector, logger, objectDetector, productRepository),
		Billing:   service.NewBillingService(logger, dbClient, v, productRepository, outboxMsgRepository),
		Receipt:   service.NewReceiptService(receiptRepository),
	}
	healthCheckers := map[string]http.HealthChecker{
		"postgres": dbClient,
		"mongo":    docdb.NewHealthChecker(mongoClient),
		"detector": objectDetector,
	}

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer, receiptRepository)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, services, healthCheckers)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
