// Package htmx centralizes HTMX request detection and response headers.
package htmx

import "net/http"

// IsRequest reports whether the request came from an HTMX swap.
func IsRequest(r *http.Request) bool {
	return r != nil && r.Header.Get("HX-Request") == "true"
}

// Redirect issues a client-side redirect: an HX-Redirect header for HTMX
// requests, an HTTP redirect otherwise.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsRequest(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
