package admin

import (
	"net/http"

	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminPrefix+"{$}", h.handleDashboard)
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminClient, h.handleClientDetail)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminRequestContact, h.handleRequestContact)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminRequestClose, h.handleRequestClose)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminSessionComplete, h.handleSessionComplete)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminSlotCreate, h.handleSlotCreate)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminSlotDelete, h.handleSlotDelete)
}
