// Package chatapi serves the JSON API surface: the chat assistant,
// availability lookups, and the health probe.
package chatapi

import (
	"net/http"

	module "github.com/isaacyap/stretchlad/internal/services/web/module"
)

// Module provides the public JSON API routes.
type Module struct{}

// New returns a chat API module.
func New() Module {
	return Module{}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "chatapi" }

// Mount wires API route handlers.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(deps)
	registerRoutes(mux, h)
	return module.Mount{Prefix: "/api/", Handler: mux}, nil
}
