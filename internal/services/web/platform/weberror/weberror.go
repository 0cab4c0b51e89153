// Package weberror centralizes HTTP error responses.
package weberror

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes one JSON error response.
func WriteJSON(w http.ResponseWriter, statusCode int, message string) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message})
}

// WritePage writes one plain error page.
func WritePage(w http.ResponseWriter, statusCode int) {
	if w == nil {
		return
	}
	http.Error(w, http.StatusText(statusCode), statusCode)
}
