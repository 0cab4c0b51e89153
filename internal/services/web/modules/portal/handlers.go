package portal

import (
	"errors"
	"net/http"
	"strings"
	"time"

	authstorage "github.com/isaacyap/stretchlad/internal/services/auth/storage"
	bookingdomain "github.com/isaacyap/stretchlad/internal/services/booking/domain"
	gamedomain "github.com/isaacyap/stretchlad/internal/services/gamification/domain"
	module "github.com/isaacyap/stretchlad/internal/services/web/module"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/authctx"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/weberror"
	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
	"github.com/isaacyap/stretchlad/internal/services/web/templates"
)

type handlers struct {
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{deps: deps}
}

type sessionView struct {
	ID        string
	Date      string
	StartTime string
	EndTime   string
	Status    string
}

type dashboardData struct {
	Name     string
	Today    string
	Sessions []sessionView
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := authctx.From(r.Context())
	if !ok {
		http.Redirect(w, r, routepath.Login, http.StatusSeeOther)
		return
	}

	name := "there"
	if account, err := h.deps.Auth.Account(r.Context(), claims.AccountID); err == nil {
		name = account.Name
	}

	records, err := h.deps.Booking.SessionsForClient(r.Context(), claims.AccountID)
	if err != nil {
		h.logError("list client sessions", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	sessions := make([]sessionView, 0, len(records))
	for _, record := range records {
		sessions = append(sessions, sessionView{
			ID:        record.ID,
			Date:      record.Date,
			StartTime: record.StartTime,
			EndTime:   record.EndTime,
			Status:    record.Status,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = templates.Render(w, "portal", templates.Page{
		Title:      "Your portal",
		SignedIn:   true,
		Admin:      claims.Role == authstorage.RoleAdmin,
		ActivePath: r.URL.Path,
		Data: dashboardData{
			Name:     name,
			Today:    time.Now().Format(bookingdomain.DateFormat),
			Sessions: sessions,
		},
	})
	if err != nil {
		h.logError("render portal page", err)
	}
}

func (h handlers) handleProgress(w http.ResponseWriter, r *http.Request) {
	claims, ok := authctx.From(r.Context())
	if !ok {
		weberror.WritePage(w, http.StatusUnauthorized)
		return
	}
	view, err := h.deps.Gamification.Progress(r.Context(), claims.AccountID)
	if err != nil {
		h.logError("load progress", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.RenderFragment(r.Context(), w, templates.ProgressCard(progressView(view))); err != nil {
		h.logError("render progress fragment", err)
	}
}

func progressView(view gamedomain.ProgressView) templates.ProgressView {
	milestones := make([]templates.MilestoneView, 0, len(view.Milestones))
	for _, milestone := range view.Milestones {
		milestones = append(milestones, templates.MilestoneView{
			Title:    milestone.Label,
			Achieved: milestone.Achieved,
		})
	}
	return templates.ProgressView{
		TotalSessions: view.TotalSessions,
		StreakWeeks:   view.Streak.CurrentWeeks,
		BestStreak:    view.Streak.BestWeeks,
		LevelName:     view.Level.Current.Badge + " " + view.Level.Current.Name,
		LevelNumber:   view.Level.Current.Number,
		PercentToNext: view.Level.Percent,
		Milestones:    milestones,
	}
}

func (h handlers) handleSlots(w http.ResponseWriter, r *http.Request) {
	date, err := slotDate(r.URL.Query().Get("date"))
	if err != nil {
		weberror.WritePage(w, http.StatusBadRequest)
		return
	}
	slots, err := h.deps.Booking.AvailableSlots(r.Context(), date)
	if err != nil {
		h.logError("resolve available slots", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	dateValue := date.Format(bookingdomain.DateFormat)
	views := make([]templates.SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, templates.SlotView{
			Date:      dateValue,
			StartTime: slot.Start.String(),
			EndTime:   slot.End.String(),
		})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.RenderFragment(r.Context(), w, templates.SlotList(dateValue, views)); err != nil {
		h.logError("render slot fragment", err)
	}
}

func slotDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(bookingdomain.DateFormat, raw)
}

func (h handlers) handleBook(w http.ResponseWriter, r *http.Request) {
	claims, ok := authctx.From(r.Context())
	if !ok {
		weberror.WritePage(w, http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		weberror.WritePage(w, http.StatusBadRequest)
		return
	}
	date, err := time.Parse(bookingdomain.DateFormat, r.PostFormValue("date"))
	if err != nil {
		weberror.WritePage(w, http.StatusBadRequest)
		return
	}
	_, err = h.deps.Booking.BookSession(r.Context(), bookingdomain.BookSessionInput{
		ClientID: claims.AccountID,
		Date:     date,
		Start:    r.PostFormValue("start_time"),
		End:      r.PostFormValue("end_time"),
		Notes:    r.PostFormValue("notes"),
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingdomain.ErrSlotUnavailable):
			weberror.WritePage(w, http.StatusConflict)
		case errors.Is(err, bookingdomain.ErrInvalidSlot), errors.Is(err, bookingdomain.ErrInvalidDate):
			weberror.WritePage(w, http.StatusBadRequest)
		default:
			h.logError("book session", err)
			weberror.WritePage(w, http.StatusInternalServerError)
		}
		return
	}
	http.Redirect(w, r, routepath.PortalPrefix, http.StatusSeeOther)
}

func (h handlers) handleCancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := authctx.From(r.Context())
	if !ok {
		weberror.WritePage(w, http.StatusUnauthorized)
		return
	}
	sessionID := r.PathValue("id")
	if _, err := h.deps.Booking.CancelSession(r.Context(), sessionID, claims.AccountID); err != nil {
		switch {
		case errors.Is(err, bookingdomain.ErrNotFound):
			weberror.WritePage(w, http.StatusNotFound)
		case errors.Is(err, bookingdomain.ErrNotSessionOwner):
			weberror.WritePage(w, http.StatusForbidden)
		case errors.Is(err, bookingdomain.ErrSessionNotConfirmed):
			weberror.WritePage(w, http.StatusConflict)
		default:
			h.logError("cancel session", err)
			weberror.WritePage(w, http.StatusInternalServerError)
		}
		return
	}
	http.Redirect(w, r, routepath.PortalPrefix, http.StatusSeeOther)
}

func (h handlers) logError(message string, err error) {
	if h.deps.Logger != nil {
		h.deps.Logger.Error(message, "error", err)
	}
}
