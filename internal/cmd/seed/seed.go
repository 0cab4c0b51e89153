// Package seed loads the weekly availability template and the studio admin
// account from a TOML fixture into the SQLite stores.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	entrypoint "github.com/isaacyap/stretchlad/internal/platform/cmd"
	authdomain "github.com/isaacyap/stretchlad/internal/services/auth/domain"
	authstorage "github.com/isaacyap/stretchlad/internal/services/auth/storage"
	authsqlite "github.com/isaacyap/stretchlad/internal/services/auth/storage/sqlite"
	bookingdomain "github.com/isaacyap/stretchlad/internal/services/booking/domain"
	bookingsqlite "github.com/isaacyap/stretchlad/internal/services/booking/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	FixturePath   string `env:"STRETCHLAD_SEED_FIXTURE" envDefault:"seed.toml"`
	BookingDBPath string `env:"STRETCHLAD_BOOKING_DB_PATH" envDefault:"data/booking.db"`
	AuthDBPath    string `env:"STRETCHLAD_AUTH_DB_PATH" envDefault:"data/auth.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.FixturePath, "fixture", cfg.FixturePath, "The TOML seed fixture path")
	fs.StringVar(&cfg.BookingDBPath, "booking-db-path", cfg.BookingDBPath, "The booking SQLite database path")
	fs.StringVar(&cfg.AuthDBPath, "auth-db-path", cfg.AuthDBPath, "The auth SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Fixture is the TOML document shape for seed data.
type Fixture struct {
	Admin AdminFixture  `toml:"admin"`
	Slots []SlotFixture `toml:"slots"`
}

// AdminFixture seeds the studio admin account. All fields are required when
// the table is present.
type AdminFixture struct {
	Name     string `toml:"name"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

// SlotFixture seeds one weekly availability window.
type SlotFixture struct {
	DayOfWeek int    `toml:"day_of_week"`
	Start     string `toml:"start"`
	End       string `toml:"end"`
	Available *bool  `toml:"available"`
}

// LoadFixture decodes one TOML seed fixture.
func LoadFixture(path string) (Fixture, error) {
	var fixture Fixture
	if _, err := toml.DecodeFile(path, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("decode seed fixture %s: %w", path, err)
	}
	return fixture, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	fixture, err := LoadFixture(cfg.FixturePath)
	if err != nil {
		return err
	}

	bookingStore, err := bookingsqlite.Open(cfg.BookingDBPath)
	if err != nil {
		return fmt.Errorf("open booking store: %w", err)
	}
	defer func() { _ = bookingStore.Close() }()

	authStore, err := authsqlite.Open(cfg.AuthDBPath)
	if err != nil {
		return fmt.Errorf("open auth store: %w", err)
	}
	defer func() { _ = authStore.Close() }()

	booking := bookingdomain.NewService(bookingStore, nil, nil)
	for _, slot := range fixture.Slots {
		available := true
		if slot.Available != nil {
			available = *slot.Available
		}
		record, err := booking.UpsertTemplateSlot(ctx, bookingdomain.TemplateSlotInput{
			DayOfWeek: slot.DayOfWeek,
			Start:     slot.Start,
			End:       slot.End,
			Available: available,
		})
		if err != nil {
			return fmt.Errorf("seed slot day=%d start=%s: %w", slot.DayOfWeek, slot.Start, err)
		}
		fmt.Fprintf(out, "slot %s %s-%s available=%t\n", dayName(record.DayOfWeek), record.StartTime, record.EndTime, record.IsAvailable)
	}

	if fixture.Admin.Email != "" {
		auth := authdomain.NewService(authStore, nil, nil)
		account, err := auth.SignUp(ctx, authdomain.SignUpInput{
			Name:     fixture.Admin.Name,
			Email:    fixture.Admin.Email,
			Password: fixture.Admin.Password,
			Role:     authstorage.RoleAdmin,
		})
		switch {
		case errors.Is(err, authdomain.ErrEmailTaken):
			fmt.Fprintf(out, "admin %s already exists\n", fixture.Admin.Email)
		case err != nil:
			return fmt.Errorf("seed admin account: %w", err)
		default:
			fmt.Fprintf(out, "admin %s created\n", account.Email)
		}
	}
	return nil
}

func dayName(day int) string {
	names := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if day < 0 || day >= len(names) {
		return fmt.Sprintf("day %d", day)
	}
	return names[day]
}
