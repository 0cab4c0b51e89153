package public

import (
	"errors"
	"net/http"
	"strings"

	"github.com/isaacyap/stretchlad/internal/ical"
	authdomain "github.com/isaacyap/stretchlad/internal/services/auth/domain"
	authstorage "github.com/isaacyap/stretchlad/internal/services/auth/storage"
	bookingdomain "github.com/isaacyap/stretchlad/internal/services/booking/domain"
	"github.com/isaacyap/stretchlad/internal/services/notifier/render"
	module "github.com/isaacyap/stretchlad/internal/services/web/module"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/authctx"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/sessioncookie"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/weberror"
	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
	"github.com/isaacyap/stretchlad/internal/services/web/templates"
)

// issueAreas mirrors the options on the booking form.
var issueAreas = []string{
	"Neck & Shoulders",
	"Lower Back",
	"Hips",
	"Hamstrings",
	"Full Body",
	"Other",
}

type handlers struct {
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{deps: deps}
}

func (h handlers) page(r *http.Request, title string, data any) templates.Page {
	claims, signedIn := authctx.Resolve(r, h.deps.Tokens)
	return templates.Page{
		Title:      title,
		SignedIn:   signedIn,
		Admin:      signedIn && claims.Role == authstorage.RoleAdmin,
		ActivePath: r.URL.Path,
		Data:       data,
	}
}

func (h handlers) render(w http.ResponseWriter, r *http.Request, name string, statusCode int, title string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.Render(w, name, h.page(r, title, data)); err != nil && h.deps.Logger != nil {
		h.deps.Logger.Error("render page", "page", name, "error", err)
	}
}

func (h handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home", http.StatusOK, "Fab The Stretch Lad", nil)
}

// bookForm echoes submitted values back into the booking form.
type bookForm struct {
	Name          string
	Email         string
	Phone         string
	Telegram      string
	Instagram     string
	Description   string
	PreferredDate string
	PreferredTime string
	IssueArea     string
}

type bookPageData struct {
	Form       bookForm
	IssueAreas []string
	Error      string
}

func (h handlers) handleBookForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "book", http.StatusOK, "Book a consultation", bookPageData{IssueAreas: issueAreas})
}

func (h handlers) handleBookSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.WritePage(w, http.StatusBadRequest)
		return
	}
	form := bookForm{
		Name:          r.PostFormValue("name"),
		Email:         r.PostFormValue("email"),
		Phone:         r.PostFormValue("phone"),
		Telegram:      r.PostFormValue("telegram"),
		Instagram:     r.PostFormValue("instagram"),
		Description:   r.PostFormValue("description"),
		PreferredDate: r.PostFormValue("preferred_date"),
		PreferredTime: r.PostFormValue("preferred_time"),
		IssueArea:     r.PostFormValue("issue_area"),
	}
	record, err := h.deps.Booking.SubmitRequest(r.Context(), bookingdomain.RequestInput{
		Name:          form.Name,
		Email:         form.Email,
		Phone:         form.Phone,
		Telegram:      form.Telegram,
		Instagram:     form.Instagram,
		Description:   form.Description,
		PreferredDate: form.PreferredDate,
		PreferredTime: form.PreferredTime,
		IssueArea:     form.IssueArea,
	})
	if err != nil {
		message := "Something went wrong. Please try again."
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, bookingdomain.ErrNameRequired):
			message = "Please tell us your name."
			statusCode = http.StatusBadRequest
		case errors.Is(err, bookingdomain.ErrDescriptionRequired):
			message = "Please describe what you need help with."
			statusCode = http.StatusBadRequest
		case errors.Is(err, bookingdomain.ErrInvalidDate):
			message = "Preferred date must be a valid calendar date."
			statusCode = http.StatusBadRequest
		default:
			if h.deps.Logger != nil {
				h.deps.Logger.Error("submit booking request", "error", err)
			}
		}
		h.render(w, r, "book", statusCode, "Book a consultation", bookPageData{
			Form:       form,
			IssueAreas: issueAreas,
			Error:      message,
		})
		return
	}
	http.Redirect(w, r, routepath.BookSuccess+"?id="+record.ID, http.StatusSeeOther)
}

type bookSuccessData struct {
	ReferenceID  string
	CalendarPath string
	GoogleURL    string
}

func (h handlers) handleBookSuccess(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(r.URL.Query().Get("id"))
	data := bookSuccessData{ReferenceID: render.ReferenceID(requestID)}
	if requestID != "" {
		if record, err := h.deps.Booking.Request(r.Context(), requestID); err == nil && record.PreferredDate != "" {
			data.CalendarPath = "/book/" + record.ID + "/calendar.ics"
			data.GoogleURL = ical.Booking{
				ID:            record.ID,
				PreferredDate: record.PreferredDate,
				PreferredTime: record.PreferredTime,
				IssueArea:     record.IssueArea,
				Description:   record.Description,
			}.GoogleCalendarURL()
		}
	}
	h.render(w, r, "book_success", http.StatusOK, "Booking received", data)
}

func (h handlers) handleCalendarInvite(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	record, err := h.deps.Booking.Request(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, bookingdomain.ErrNotFound) {
			weberror.WritePage(w, http.StatusNotFound)
			return
		}
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	invite := ical.Booking{
		ID:            record.ID,
		PreferredDate: record.PreferredDate,
		PreferredTime: record.PreferredTime,
		IssueArea:     record.IssueArea,
		Description:   record.Description,
	}.Event()
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="invite.ics"`)
	_, _ = w.Write([]byte(invite))
}

type authFormData struct {
	Name  string
	Email string
	Error string
}

func (h handlers) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login", http.StatusOK, "Sign in", authFormData{})
}

func (h handlers) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.WritePage(w, http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	account, err := h.deps.Auth.Authenticate(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		statusCode := http.StatusUnauthorized
		message := "Invalid email or password."
		if !errors.Is(err, authdomain.ErrInvalidCredentials) {
			statusCode = http.StatusInternalServerError
			message = "Something went wrong. Please try again."
			if h.deps.Logger != nil {
				h.deps.Logger.Error("authenticate account", "error", err)
			}
		}
		h.render(w, r, "login", statusCode, "Sign in", authFormData{Email: email, Error: message})
		return
	}
	h.signIn(w, r, account)
}

func (h handlers) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup", http.StatusOK, "Create account", authFormData{})
}

func (h handlers) handleSignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.WritePage(w, http.StatusBadRequest)
		return
	}
	form := authFormData{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
	}
	account, err := h.deps.Auth.SignUp(r.Context(), authdomain.SignUpInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		message := "Something went wrong. Please try again."
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, authdomain.ErrNameRequired):
			message = "Please tell us your name."
			statusCode = http.StatusBadRequest
		case errors.Is(err, authdomain.ErrInvalidEmail):
			message = "Please use a valid email address."
			statusCode = http.StatusBadRequest
		case errors.Is(err, authdomain.ErrWeakPassword):
			message = "Password must be at least 8 characters."
			statusCode = http.StatusBadRequest
		case errors.Is(err, authdomain.ErrEmailTaken):
			message = "An account with that email already exists."
			statusCode = http.StatusConflict
		default:
			if h.deps.Logger != nil {
				h.deps.Logger.Error("sign up account", "error", err)
			}
		}
		h.render(w, r, "signup", statusCode, "Create account", authFormData{
			Name:  form.Name,
			Email: form.Email,
			Error: message,
		})
		return
	}
	h.signIn(w, r, account)
}

func (h handlers) signIn(w http.ResponseWriter, r *http.Request, account authdomain.Account) {
	sessionToken, err := h.deps.Tokens.Mint(account.ID, account.Role)
	if err != nil {
		if h.deps.Logger != nil {
			h.deps.Logger.Error("mint session token", "error", err)
		}
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	sessioncookie.Write(w, r, sessionToken)
	destination := routepath.PortalPrefix
	if account.Role == authstorage.RoleAdmin {
		destination = routepath.AdminPrefix
	}
	http.Redirect(w, r, destination, http.StatusSeeOther)
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessioncookie.Clear(w, r)
	http.Redirect(w, r, routepath.Home, http.StatusSeeOther)
}
