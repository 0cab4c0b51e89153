// Package admin serves the studio back office: consultation requests,
// session management, the weekly availability template, and clients.
package admin

import (
	"net/http"

	module "github.com/isaacyap/stretchlad/internal/services/web/module"
	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
)

// Module provides the admin-only web routes.
type Module struct{}

// New returns an admin module.
func New() Module {
	return Module{}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "admin" }

// Mount wires admin route handlers.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(deps)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.AdminPrefix, Handler: mux}, nil
}
