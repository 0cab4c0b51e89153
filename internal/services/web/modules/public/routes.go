package public

import (
	"net/http"

	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" /{$}", h.handleHome)
	mux.HandleFunc(http.MethodGet+" "+routepath.Book, h.handleBookForm)
	mux.HandleFunc(http.MethodPost+" "+routepath.Book, h.handleBookSubmit)
	mux.HandleFunc(http.MethodGet+" "+routepath.BookSuccess, h.handleBookSuccess)
	mux.HandleFunc(http.MethodGet+" "+routepath.BookingInvite, h.handleCalendarInvite)
	mux.HandleFunc(http.MethodGet+" "+routepath.Login, h.handleLoginForm)
	mux.HandleFunc(http.MethodPost+" "+routepath.Login, h.handleLoginSubmit)
	mux.HandleFunc(http.MethodGet+" "+routepath.Signup, h.handleSignupForm)
	mux.HandleFunc(http.MethodPost+" "+routepath.Signup, h.handleSignupSubmit)
	mux.HandleFunc(http.MethodPost+" "+routepath.Logout, h.handleLogout)
}
