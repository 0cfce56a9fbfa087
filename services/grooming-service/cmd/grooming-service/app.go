package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smarterdog/grooming/libs/db"
	"github.com/smarterdog/grooming/libs/kafkax"
	"github.com/smarterdog/grooming/libs/runtime"
	"github.com/smarterdog/grooming/services/grooming-service/internal/calendar"
	"github.com/smarterdog/grooming/services/grooming-service/internal/catalog"
	"github.com/smarterdog/grooming/services/grooming-service/internal/config"
	"github.com/smarterdog/grooming/services/grooming-service/internal/engine"
	"github.com/smarterdog/grooming/services/grooming-service/internal/events"
	"github.com/smarterdog/grooming/services/grooming-service/internal/ledger"
	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
	"github.com/smarterdog/grooming/services/grooming-service/internal/service"
	"github.com/smarterdog/grooming/services/grooming-service/internal/storage"
	"github.com/smarterdog/grooming/services/grooming-service/internal/storage/migrations"
)

// groomingAPI is satisfied by the in-process service and by the gRPC client.
type groomingAPI interface {
	GetAvailableSlots(ctx context.Context, date, dogSize string) (model.Availability, error)
	BookAppointment(ctx context.Context, in model.BookingInput) (model.BookingRecord, error)
}

// app holds everything built from configuration. close releases it in reverse order.
type app struct {
	cfg     config.App
	logger  *slog.Logger
	engine  *engine.Engine
	svc     *service.Service
	rdb     *redis.Client
	checks  []runtime.ReadyCheck
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg config.App, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	calCfg, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(cfg.Catalog())
	if err != nil {
		return nil, err
	}

	if cfg.RedisAddr != "" {
		a.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, func() { _ = a.rdb.Close() })
	}

	var seed []ledger.Entry
	if cfg.DemoSeed {
		seed = ledger.DemoSeed()
	}

	var l ledger.Ledger
	var mem *ledger.Memory
	switch cfg.LedgerBackend {
	case "redis":
		rl := ledger.NewRedis(a.rdb, cfg.SlotCapacity, cfg.LedgerPrefix)
		if err := rl.Seed(ctx, seed); err != nil {
			return nil, err
		}
		a.checks = append(a.checks, runtime.ReadyCheck{Name: "redis", Check: rl.ReadyCheck()})
		l = rl
	default:
		mem = ledger.NewMemory(cfg.SlotCapacity, seed...)
		l = mem
	}

	var opts []service.Option
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connection failed: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := migrations.Up(ctx, pool); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo := storage.NewBookingRepository(pool)
		if mem != nil {
			n, err := service.Rehydrate(ctx, repo, mem, time.Time{})
			if err != nil {
				return nil, fmt.Errorf("rehydrate ledger: %w", err)
			}
			logger.Info("ledger rehydrated", "slots", n)
		}
		opts = append(opts, service.WithJournal(repo))
		a.checks = append(a.checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	}

	switch cfg.EventsDriver {
	case "kafka":
		p := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.closers = append(a.closers, func() { _ = p.Close() })
		a.checks = append(a.checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
		opts = append(opts, service.WithPublisher(p))
	case "amqp":
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = p.Close() })
		a.checks = append(a.checks, runtime.ReadyCheck{Name: "amqp", Check: p.Ready})
		opts = append(opts, service.WithPublisher(p))
	}

	a.engine = engine.New(calendar.NewResolver(calCfg), cat, l, engine.Options{
		Logger:       logger,
		HistoryLimit: cfg.HistoryLimit,
	})
	a.svc = service.New(a.engine, logger, opts...)
	ok = true
	return a, nil
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(demoSeed bool) (config.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.App{}, err
	}
	if demoSeed {
		cfg.DemoSeed = true
	}
	return cfg, nil
}
