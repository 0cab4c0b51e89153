// Package authctx resolves and carries authenticated identity for web requests.
package authctx

import (
	"context"
	"net/http"

	"github.com/isaacyap/stretchlad/internal/services/auth/storage"
	"github.com/isaacyap/stretchlad/internal/services/auth/token"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/htmx"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/sessioncookie"
	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
)

type contextKey struct{}

// WithClaims attaches verified identity claims to a request context.
func WithClaims(ctx context.Context, claims token.Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// From returns the verified claims attached to a request context.
func From(ctx context.Context) (token.Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(token.Claims)
	return claims, ok && claims.AccountID != ""
}

// Resolve verifies the session cookie and returns its claims.
func Resolve(r *http.Request, minter *token.Minter) (token.Claims, bool) {
	if minter == nil {
		return token.Claims{}, false
	}
	value, ok := sessioncookie.Read(r)
	if !ok {
		return token.Claims{}, false
	}
	claims, err := minter.Verify(value)
	if err != nil {
		return token.Claims{}, false
	}
	return claims, true
}

// RequireAuth redirects unauthenticated requests to the login page and
// attaches claims for the rest of the chain. Fragment requests get an
// HX-Redirect so an expired session never swaps the login page into a
// partial.
func RequireAuth(minter *token.Minter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := Resolve(r, minter)
		if !ok {
			htmx.Redirect(w, r, routepath.Login)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireAdmin additionally rejects non-admin accounts.
func RequireAdmin(minter *token.Minter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := Resolve(r, minter)
		if !ok {
			htmx.Redirect(w, r, routepath.Login)
			return
		}
		if claims.Role != storage.RoleAdmin {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
