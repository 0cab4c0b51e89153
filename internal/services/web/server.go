// Package web composes the browser-facing HTTP surface from feature modules.
package web

import (
	"fmt"
	"net/http"

	module "github.com/isaacyap/stretchlad/internal/services/web/module"
	"github.com/isaacyap/stretchlad/internal/services/web/modules/admin"
	"github.com/isaacyap/stretchlad/internal/services/web/modules/chatapi"
	"github.com/isaacyap/stretchlad/internal/services/web/modules/portal"
	"github.com/isaacyap/stretchlad/internal/services/web/modules/public"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/authctx"
	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
)

// NewHandler builds the root handler from the default module set. Portal
// routes require a signed-in account; admin routes require the admin role.
func NewHandler(deps module.Dependencies) (http.Handler, error) {
	root := http.NewServeMux()
	seen := make(map[string]string)

	mounts := []struct {
		feature module.Module
		wrap    func(http.Handler) http.Handler
	}{
		{feature: public.New()},
		{feature: chatapi.New()},
		{feature: portal.New(), wrap: func(next http.Handler) http.Handler {
			return authctx.RequireAuth(deps.Tokens, next)
		}},
		{feature: admin.New(), wrap: func(next http.Handler) http.Handler {
			return authctx.RequireAdmin(deps.Tokens, next)
		}},
	}
	for _, entry := range mounts {
		if err := mountModule(root, entry.feature, deps, seen, entry.wrap); err != nil {
			return nil, err
		}
	}

	// Bare area paths land on the area index.
	root.Handle(http.MethodGet+" "+routepath.Portal, redirectTo(routepath.PortalPrefix))
	root.Handle(http.MethodGet+" "+routepath.Admin, redirectTo(routepath.AdminPrefix))

	return root, nil
}

func mountModule(
	root *http.ServeMux,
	feature module.Module,
	deps module.Dependencies,
	seen map[string]string,
	wrap func(http.Handler) http.Handler,
) error {
	if feature == nil {
		return fmt.Errorf("module is nil")
	}
	mount, err := feature.Mount(deps)
	if err != nil {
		return fmt.Errorf("mount module %q: %w", feature.ID(), err)
	}
	if mount.Prefix == "" || mount.Handler == nil {
		return fmt.Errorf("mount module %q: prefix and handler are required", feature.ID())
	}
	if previous, ok := seen[mount.Prefix]; ok {
		return fmt.Errorf("module %q duplicates prefix %q owned by module %q", feature.ID(), mount.Prefix, previous)
	}
	seen[mount.Prefix] = feature.ID()

	handler := mount.Handler
	if wrap != nil {
		handler = wrap(handler)
	}
	root.Handle(mount.Prefix, handler)
	return nil
}

func redirectTo(destination string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, destination, http.StatusMovedPermanently)
	})
}
