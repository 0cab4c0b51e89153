// Package module defines the feature contract used by web composition.
package module

import (
	"log/slog"
	"net/http"

	"github.com/isaacyap/stretchlad/internal/services/assistant"
	authdomain "github.com/isaacyap/stretchlad/internal/services/auth/domain"
	"github.com/isaacyap/stretchlad/internal/services/auth/token"
	bookingdomain "github.com/isaacyap/stretchlad/internal/services/booking/domain"
	gamedomain "github.com/isaacyap/stretchlad/internal/services/gamification/domain"
)

// Dependencies carries the shared services modules draw on.
type Dependencies struct {
	Booking      *bookingdomain.Service
	Gamification *gamedomain.Service
	Auth         *authdomain.Service
	Assistant    *assistant.Service
	ChatLimiter  *assistant.RateLimiter
	Tokens       *token.Minter
	Logger       *slog.Logger
}

// Mount describes a module route mount.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module declares the minimum contract required by web composition.
type Module interface {
	ID() string
	Mount(Dependencies) (Mount, error)
}
