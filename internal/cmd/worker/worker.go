// Package worker parses worker command flags and launches the outbox
// delivery runtime.
package worker

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/isaacyap/stretchlad/internal/platform/cmd"
	bookingsqlite "github.com/isaacyap/stretchlad/internal/services/booking/storage/sqlite"
	"github.com/isaacyap/stretchlad/internal/services/notifier"
	"github.com/isaacyap/stretchlad/internal/services/worker"
)

// Config holds worker command configuration.
type Config struct {
	BookingDBPath   string        `env:"STRETCHLAD_BOOKING_DB_PATH" envDefault:"data/booking.db"`
	PollInterval    time.Duration `env:"STRETCHLAD_WORKER_POLL_INTERVAL" envDefault:"5s"`
	BatchSize       int           `env:"STRETCHLAD_WORKER_BATCH_SIZE" envDefault:"25"`
	MaxAttempts     int           `env:"STRETCHLAD_WORKER_MAX_ATTEMPTS" envDefault:"5"`
	RetryBackoff    time.Duration `env:"STRETCHLAD_WORKER_RETRY_BACKOFF" envDefault:"30s"`
	RetryMaxDelay   time.Duration `env:"STRETCHLAD_WORKER_RETRY_MAX_DELAY" envDefault:"15m"`
	TelegramToken   string        `env:"STRETCHLAD_TELEGRAM_BOT_TOKEN"`
	TelegramChatID  string        `env:"STRETCHLAD_TELEGRAM_CHAT_ID"`
	SMTPHost        string        `env:"STRETCHLAD_SMTP_HOST"`
	SMTPPort        int           `env:"STRETCHLAD_SMTP_PORT" envDefault:"587"`
	SMTPUsername    string        `env:"STRETCHLAD_SMTP_USERNAME"`
	SMTPPassword    string        `env:"STRETCHLAD_SMTP_PASSWORD"`
	EmailFrom       string        `env:"STRETCHLAD_EMAIL_FROM"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.BookingDBPath, "booking-db-path", cfg.BookingDBPath, "The booking SQLite database path")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Outbox poll interval")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Outbox events claimed per poll")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Delivery attempts before an event is marked failed")
	fs.DurationVar(&cfg.RetryBackoff, "retry-backoff", cfg.RetryBackoff, "Base retry backoff delay")
	fs.DurationVar(&cfg.RetryMaxDelay, "retry-max-delay", cfg.RetryMaxDelay, "Maximum retry delay")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the worker runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWorker, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	bookingStore, err := bookingsqlite.Open(cfg.BookingDBPath)
	if err != nil {
		return fmt.Errorf("open booking store: %w", err)
	}
	defer func() { _ = bookingStore.Close() }()

	logger := log.Default()
	dispatcher := notifier.NewDispatcher(
		notifier.NewTelegramRelay(notifier.TelegramConfig{
			BotToken: cfg.TelegramToken,
			ChatID:   cfg.TelegramChatID,
		}),
		notifier.NewEmailRelay(notifier.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		}, nil),
		logger,
	)

	runner, err := worker.New(bookingStore, dispatcher, logger, nil, worker.Config{
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
		MaxAttempts:  cfg.MaxAttempts,
		BaseBackoff:  cfg.RetryBackoff,
		MaxBackoff:   cfg.RetryMaxDelay,
	})
	if err != nil {
		return fmt.Errorf("configure worker: %w", err)
	}

	logger.Printf("worker polling outbox db=%s interval=%s", cfg.BookingDBPath, cfg.PollInterval)
	return runner.Run(ctx)
}
