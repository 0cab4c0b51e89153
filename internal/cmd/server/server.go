// Package server parses server command flags and launches the web runtime.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	entrypoint "github.com/isaacyap/stretchlad/internal/platform/cmd"
	"github.com/isaacyap/stretchlad/internal/services/assistant"
	authdomain "github.com/isaacyap/stretchlad/internal/services/auth/domain"
	authsqlite "github.com/isaacyap/stretchlad/internal/services/auth/storage/sqlite"
	"github.com/isaacyap/stretchlad/internal/services/auth/token"
	bookingdomain "github.com/isaacyap/stretchlad/internal/services/booking/domain"
	bookingsqlite "github.com/isaacyap/stretchlad/internal/services/booking/storage/sqlite"
	gamedomain "github.com/isaacyap/stretchlad/internal/services/gamification/domain"
	gamesqlite "github.com/isaacyap/stretchlad/internal/services/gamification/storage/sqlite"
	"github.com/isaacyap/stretchlad/internal/services/web"
	module "github.com/isaacyap/stretchlad/internal/services/web/module"
)

const shutdownTimeout = 10 * time.Second

// Config holds server command configuration.
type Config struct {
	Addr            string        `env:"STRETCHLAD_SERVER_ADDR" envDefault:":8080"`
	BookingDBPath   string        `env:"STRETCHLAD_BOOKING_DB_PATH" envDefault:"data/booking.db"`
	ProgressDBPath  string        `env:"STRETCHLAD_PROGRESS_DB_PATH" envDefault:"data/progress.db"`
	AuthDBPath      string        `env:"STRETCHLAD_AUTH_DB_PATH" envDefault:"data/auth.db"`
	SessionSecret   string        `env:"STRETCHLAD_SESSION_SECRET"`
	SessionTTL      time.Duration `env:"STRETCHLAD_SESSION_TTL" envDefault:"168h"`
	OpenAIAPIKey    string        `env:"STRETCHLAD_OPENAI_API_KEY"`
	OpenAIModel     string        `env:"STRETCHLAD_OPENAI_MODEL"`
	OpenAIBaseURL   string        `env:"STRETCHLAD_OPENAI_BASE_URL"`
	ChatRateLimit   int           `env:"STRETCHLAD_CHAT_RATE_LIMIT" envDefault:"10"`
	ChatRateWindow  time.Duration `env:"STRETCHLAD_CHAT_RATE_WINDOW" envDefault:"1m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The HTTP listen address")
	fs.StringVar(&cfg.BookingDBPath, "booking-db-path", cfg.BookingDBPath, "The booking SQLite database path")
	fs.StringVar(&cfg.ProgressDBPath, "progress-db-path", cfg.ProgressDBPath, "The progress SQLite database path")
	fs.StringVar(&cfg.AuthDBPath, "auth-db-path", cfg.AuthDBPath, "The auth SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the web runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	if cfg.SessionSecret == "" {
		return errors.New("session secret is required")
	}

	bookingStore, err := bookingsqlite.Open(cfg.BookingDBPath)
	if err != nil {
		return fmt.Errorf("open booking store: %w", err)
	}
	defer func() { _ = bookingStore.Close() }()

	gameStore, err := gamesqlite.Open(cfg.ProgressDBPath)
	if err != nil {
		return fmt.Errorf("open progress store: %w", err)
	}
	defer func() { _ = gameStore.Close() }()

	authStore, err := authsqlite.Open(cfg.AuthDBPath)
	if err != nil {
		return fmt.Errorf("open auth store: %w", err)
	}
	defer func() { _ = authStore.Close() }()

	minter, err := token.NewMinter(cfg.SessionSecret, cfg.SessionTTL, nil)
	if err != nil {
		return fmt.Errorf("configure session tokens: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	deps := module.Dependencies{
		Booking:      bookingdomain.NewService(bookingStore, nil, nil),
		Gamification: gamedomain.NewService(gameStore, nil),
		Auth:         authdomain.NewService(authStore, nil, nil),
		Assistant: assistant.New(assistant.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		}),
		ChatLimiter: assistant.NewRateLimiter(cfg.ChatRateLimit, cfg.ChatRateWindow, nil),
		Tokens:      minter,
		Logger:      logger,
	}
	handler, err := web.NewHandler(deps)
	if err != nil {
		return fmt.Errorf("compose web handler: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("server listening", "addr", cfg.Addr)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
