package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	libconfig "github.com/smarterdog/grooming/libs/config"
	"github.com/smarterdog/grooming/libs/db"
	"github.com/smarterdog/grooming/libs/runtime"
	"github.com/smarterdog/grooming/services/grooming-service/internal/config"
	"github.com/smarterdog/grooming/services/grooming-service/internal/events"
	"github.com/smarterdog/grooming/services/grooming-service/internal/storage"
	"github.com/smarterdog/grooming/services/grooming-service/internal/storage/migrations"
)

func newSinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sink",
		Short: "Copy confirmed-booking events from Kafka into the Postgres journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := libconfig.Require("DATABASE_URL", cfg.DatabaseURL, "KAFKA_BROKERS", cfg.KafkaBrokers); err != nil {
				return fmt.Errorf("sink: %w", err)
			}
			logger := runtime.NewLogger(cfg.ServiceName+"-sink", cfg.LogLevel)

			ctx, stop := runtime.SignalContextFrom(cmd.Context())
			defer stop()

			pool, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connection failed: %w", err)
			}
			defer pool.Close()
			if err := migrations.Up(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			repo := storage.NewBookingRepository(pool)
			consumer := events.NewConsumer(logger, storage.NewInboxRepository(pool), events.ConsumerConfig{
				Brokers: cfg.KafkaBrokers,
				GroupID: cfg.KafkaGroupID,
				Topic:   cfg.KafkaTopic,
			}, func(ctx context.Context, evt events.Event) error {
				return repo.Insert(ctx, evt.Booking)
			})

			logger.Info("journal sink started", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)
			consumer.Run(ctx)
			logger.Info("journal sink stopped")
			return nil
		},
	}
}
