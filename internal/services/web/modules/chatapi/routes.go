package chatapi

import (
	"net/http"

	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodPost+" "+routepath.APIChat, h.handleChat)
	mux.HandleFunc(http.MethodGet+" "+routepath.APIAvailability, h.handleAvailability)
	mux.HandleFunc(http.MethodGet+" "+routepath.APIHealth, h.handleHealth)
}
