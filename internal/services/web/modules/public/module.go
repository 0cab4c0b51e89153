// Package public serves the marketing site, the consultation booking form,
// and the account sign-in pages.
package public

import (
	"net/http"

	module "github.com/isaacyap/stretchlad/internal/services/web/module"
)

// Module provides the unauthenticated web surface.
type Module struct{}

// New returns a public module.
func New() Module {
	return Module{}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "public" }

// Mount wires public route handlers.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(deps)
	registerRoutes(mux, h)
	return module.Mount{Prefix: "/", Handler: mux}, nil
}
