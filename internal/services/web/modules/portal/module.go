// Package portal serves the authenticated client area: progress, slot
// discovery, and session booking.
package portal

import (
	"net/http"

	module "github.com/isaacyap/stretchlad/internal/services/web/module"
	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
)

// Module provides the authenticated client portal routes.
type Module struct{}

// New returns a portal module.
func New() Module {
	return Module{}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "portal" }

// Mount wires portal route handlers.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(deps)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.PortalPrefix, Handler: mux}, nil
}
