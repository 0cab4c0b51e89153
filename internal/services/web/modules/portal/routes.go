package portal

import (
	"net/http"

	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.PortalPrefix+"{$}", h.handleDashboard)
	mux.HandleFunc(http.MethodGet+" "+routepath.PortalProgress, h.handleProgress)
	mux.HandleFunc(http.MethodGet+" "+routepath.PortalSlots, h.handleSlots)
	mux.HandleFunc(http.MethodPost+" "+routepath.PortalBook, h.handleBook)
	mux.HandleFunc(http.MethodPost+" "+routepath.PortalCancel, h.handleCancel)
}
