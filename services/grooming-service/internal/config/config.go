package config

import (
	"fmt"
	"strings"
	"time"

	libconfig "github.com/smarterdog/grooming/libs/config"
	"github.com/smarterdog/grooming/services/grooming-service/internal/calendar"
	"github.com/smarterdog/grooming/services/grooming-service/internal/catalog"
	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
)

type App struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"grooming-service"`
	Port        string `envconfig:"PORT" default:"8080"`
	GRPCPort    string `envconfig:"GRPC_PORT" default:"9090"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Storage
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	LedgerBackend string `envconfig:"LEDGER_BACKEND" default:"memory"`
	LedgerPrefix  string `envconfig:"LEDGER_PREFIX" default:"grooming:ledger"`

	// Salon rules
	SlotCapacity    int      `envconfig:"SLOT_CAPACITY" default:"2"`
	SlotFirst       string   `envconfig:"SLOT_FIRST" default:"08:30"`
	SlotLast        string   `envconfig:"SLOT_LAST" default:"13:00"`
	SlotStepMinutes int      `envconfig:"SLOT_STEP_MINUTES" default:"30"`
	OpenWeekdays    []string `envconfig:"OPEN_WEEKDAYS" default:"monday,tuesday,wednesday"`
	ExtraHolidays   []string `envconfig:"EXTRA_HOLIDAYS"`
	HistoryLimit    int      `envconfig:"HISTORY_LIMIT" default:"1000"`
	DemoSeed        bool     `envconfig:"DEMO_SEED" default:"false"`

	// Events
	EventsDriver string `envconfig:"EVENTS_DRIVER" default:"none"`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"grooming.booking.confirmed.v1"`
	KafkaGroupID string `envconfig:"KAFKA_GROUP_ID" default:"grooming-journal-sink"`
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"grooming.events"`

	// HTTP edge
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	RateLimitRedis     bool          `envconfig:"RATE_LIMIT_REDIS" default:"false"`
	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS"`
	MaxBodyBytes       int64         `envconfig:"MAX_BODY_BYTES" default:"65536"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
}

func Load() (App, error) {
	var c App
	if err := libconfig.Process("", &c); err != nil {
		return App{}, err
	}
	return c, c.Validate()
}

func (c App) Validate() error {
	if err := libconfig.ValidatePort("PORT", c.Port); err != nil {
		return err
	}
	if err := libconfig.ValidatePort("GRPC_PORT", c.GRPCPort); err != nil {
		return err
	}
	if c.SlotCapacity < 1 {
		return fmt.Errorf("SLOT_CAPACITY must be at least 1 (got %d)", c.SlotCapacity)
	}
	if c.SlotCapacity < model.DogSizeLarge.Units() {
		return fmt.Errorf("SLOT_CAPACITY %d cannot fit a large dog (%d units)", c.SlotCapacity, model.DogSizeLarge.Units())
	}
	switch c.LedgerBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when LEDGER_BACKEND=redis")
		}
	default:
		return fmt.Errorf("LEDGER_BACKEND must be memory or redis (got %q)", c.LedgerBackend)
	}
	if c.RateLimitRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when RATE_LIMIT_REDIS=true")
	}
	switch c.EventsDriver {
	case "none":
	case "kafka":
		if err := libconfig.Require("KAFKA_BROKERS", c.KafkaBrokers, "KAFKA_TOPIC", c.KafkaTopic); err != nil {
			return fmt.Errorf("EVENTS_DRIVER=kafka: %w", err)
		}
	case "amqp":
		if err := libconfig.Require("AMQP_URL", c.AMQPURL, "AMQP_EXCHANGE", c.AMQPExchange); err != nil {
			return fmt.Errorf("EVENTS_DRIVER=amqp: %w", err)
		}
	default:
		return fmt.Errorf("EVENTS_DRIVER must be none, kafka, or amqp (got %q)", c.EventsDriver)
	}
	if _, err := c.Calendar(); err != nil {
		return err
	}
	if _, err := catalog.New(c.Catalog()); err != nil {
		return err
	}
	return nil
}

func (c App) Calendar() (calendar.Config, error) {
	days, err := calendar.ParseWeekdays(c.OpenWeekdays)
	if err != nil {
		return calendar.Config{}, fmt.Errorf("OPEN_WEEKDAYS: %w", err)
	}
	if len(days) == 0 {
		return calendar.Config{}, fmt.Errorf("OPEN_WEEKDAYS must name at least one day")
	}
	cfg := calendar.Config{OpenWeekdays: days}
	for _, raw := range c.ExtraHolidays {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		d, err := model.ParseDate(raw)
		if err != nil {
			return calendar.Config{}, fmt.Errorf("EXTRA_HOLIDAYS: %w", err)
		}
		cfg.ExtraHolidays = append(cfg.ExtraHolidays, d)
	}
	return cfg, nil
}

func (c App) Catalog() catalog.Config {
	return catalog.Config{
		First: c.SlotFirst,
		Last:  c.SlotLast,
		Step:  time.Duration(c.SlotStepMinutes) * time.Minute,
	}
}
