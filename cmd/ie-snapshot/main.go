package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/tuanvumaihuynh/inventory-etl/internal/config"
	"github.com/tuanvumaihuynh/inventory-etl/internal/etl"
	"github.com/tuanvumaihuynh/inventory-etl/internal/event"
	"github.com/tuanvumaihuynh/inventory-etl/internal/log"
	"github.com/tuanvumaihuynh/inventory-etl/internal/odoo"
	"github.com/tuanvumaihuynh/inventory-etl/internal/repository"
	"github.com/tuanvumaihuynh/inventory-etl/internal/service"
	"github.com/tuanvumaihuynh/inventory-etl/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-etl/internal/storage/mq"
	"github.com/tuanvumaihuynh/inventory-etl/internal/telemetry"
	"github.com/tuanvumaihuynh/inventory-etl/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running snapshot application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Odoo     config.Odoo
		Postgres config.Postgres
		Snapshot config.Snapshot
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	loc, err := cfg.Snapshot.Location()
	if err != nil {
		return fmt.Errorf("error loading business timezone: %w", err)
	}

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		// ctx may already be cancelled by an interrupt; spans still need flushing.
		if err := cleanupTracer(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	go func() {
		select {
		case <-cmdutil.InterruptChan():
			logger.WarnContext(ctx, "interrupted, cancelling run")
			cancel()
		case <-ctx.Done():
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)
	warehouse := repository.NewWarehouse(dbClient)

	odooClient, err := odoo.NewClient(cfg.Odoo, logger)
	if err != nil {
		return fmt.Errorf("error creating odoo client: %w", err)
	}

	var publisher event.Publisher = event.NoopPublisher{Logger: logger}
	if cfg.Kafka.Enabled() {
		kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
		if err != nil {
			return fmt.Errorf("error creating kafka producer: %w", err)
		}
		defer kafkaProducer.Close()

		publisher = event.New(cfg.Kafka.Topic, kafkaProducer)
	}

	builder := service.NewSnapshotBuilder(logger, odooClient, service.SnapshotBuilderParams{
		Location:   loc,
		CutoffHour: cfg.Snapshot.CutoffHour,
	})
	merger := service.NewMergeService(logger, warehouse, cfg.Snapshot.ExclusionClock)

	svc := etl.NewService(cfg.Snapshot, logger, builder, merger, publisher)
	if _, err := svc.Run(ctx); err != nil {
		return fmt.Errorf("error running inventory snapshot etl: %w", err)
	}

	return nil
}
