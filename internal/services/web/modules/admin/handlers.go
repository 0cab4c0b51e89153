package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	authdomain "github.com/isaacyap/stretchlad/internal/services/auth/domain"
	bookingdomain "github.com/isaacyap/stretchlad/internal/services/booking/domain"
	module "github.com/isaacyap/stretchlad/internal/services/web/module"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/weberror"
	"github.com/isaacyap/stretchlad/internal/services/web/routepath"
	"github.com/isaacyap/stretchlad/internal/services/web/templates"
)

var dayNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

type handlers struct {
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{deps: deps}
}

type requestView struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	Telegram      string
	IssueArea     string
	PreferredDate string
	PreferredTime string
	Status        string
}

type sessionView struct {
	ID         string
	ClientName string
	StartTime  string
	EndTime    string
	Status     string
}

type slotView struct {
	ID          string
	DayOfWeek   int
	DayName     string
	StartTime   string
	EndTime     string
	IsAvailable bool
}

type clientView struct {
	ID        string
	Name      string
	Email     string
	CreatedAt string
}

type dashboardData struct {
	Requests []requestView
	Sessions []sessionView
	Slots    []slotView
	Clients  []clientView
	DayNames []string
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requests, err := h.deps.Booking.Requests(ctx, 50)
	if err != nil {
		h.logError("list booking requests", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	requestViews := make([]requestView, 0, len(requests))
	for _, record := range requests {
		requestViews = append(requestViews, requestView{
			ID:            record.ID,
			Name:          record.Name,
			Email:         record.Email,
			Phone:         record.Phone,
			Telegram:      record.Telegram,
			IssueArea:     record.IssueArea,
			PreferredDate: record.PreferredDate,
			PreferredTime: record.PreferredTime,
			Status:        record.Status,
		})
	}

	sessions, err := h.deps.Booking.SessionsOnDate(ctx, time.Now())
	if err != nil {
		h.logError("list sessions", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	sessionViews := make([]sessionView, 0, len(sessions))
	for _, record := range sessions {
		clientName := record.ClientID
		if account, err := h.deps.Auth.Account(ctx, record.ClientID); err == nil {
			clientName = account.Name
		}
		sessionViews = append(sessionViews, sessionView{
			ID:         record.ID,
			ClientName: clientName,
			StartTime:  record.StartTime,
			EndTime:    record.EndTime,
			Status:     record.Status,
		})
	}

	slots, err := h.deps.Booking.TemplateSlots(ctx)
	if err != nil {
		h.logError("list template slots", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	slotViews := make([]slotView, 0, len(slots))
	for _, record := range slots {
		dayName := ""
		if record.DayOfWeek >= 0 && record.DayOfWeek < len(dayNames) {
			dayName = dayNames[record.DayOfWeek]
		}
		slotViews = append(slotViews, slotView{
			ID:          record.ID,
			DayOfWeek:   record.DayOfWeek,
			DayName:     dayName,
			StartTime:   record.StartTime,
			EndTime:     record.EndTime,
			IsAvailable: record.IsAvailable,
		})
	}

	clients, err := h.deps.Auth.Clients(ctx)
	if err != nil {
		h.logError("list clients", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	clientViews := make([]clientView, 0, len(clients))
	for _, account := range clients {
		clientViews = append(clientViews, clientView{
			ID:        account.ID,
			Name:      account.Name,
			Email:     account.Email,
			CreatedAt: account.CreatedAt.Format("2 Jan 2006"),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = templates.Render(w, "admin", templates.Page{
		Title:      "Studio admin",
		SignedIn:   true,
		Admin:      true,
		ActivePath: r.URL.Path,
		Data: dashboardData{
			Requests: requestViews,
			Sessions: sessionViews,
			Slots:    slotViews,
			Clients:  clientViews,
			DayNames: dayNames,
		},
	})
	if err != nil {
		h.logError("render admin page", err)
	}
}

type clientSessionView struct {
	ID        string
	Date      string
	StartTime string
	EndTime   string
	Status    string
}

type clientMilestoneView struct {
	Label    string
	Achieved bool
}

type clientDetailData struct {
	Client        clientView
	Sessions      []clientSessionView
	TotalSessions int
	LevelName     string
	LevelNumber   int
	StreakWeeks   int
	BestStreak    int
	Milestones    []clientMilestoneView
}

func (h handlers) handleClientDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := h.deps.Auth.Account(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, authdomain.ErrNotFound) {
			weberror.WritePage(w, http.StatusNotFound)
			return
		}
		h.logError("load client account", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}

	sessions, err := h.deps.Booking.SessionsForClient(ctx, account.ID)
	if err != nil {
		h.logError("list client sessions", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	sessionViews := make([]clientSessionView, 0, len(sessions))
	for _, record := range sessions {
		sessionViews = append(sessionViews, clientSessionView{
			ID:        record.ID,
			Date:      record.Date,
			StartTime: record.StartTime,
			EndTime:   record.EndTime,
			Status:    record.Status,
		})
	}

	progress, err := h.deps.Gamification.Progress(ctx, account.ID)
	if err != nil {
		h.logError("load client progress", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	milestoneViews := make([]clientMilestoneView, 0, len(progress.Milestones))
	for _, m := range progress.Milestones {
		milestoneViews = append(milestoneViews, clientMilestoneView{
			Label:    m.Label,
			Achieved: m.Achieved,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = templates.Render(w, "admin_client", templates.Page{
		Title:      account.Name,
		SignedIn:   true,
		Admin:      true,
		ActivePath: routepath.AdminPrefix,
		Data: clientDetailData{
			Client: clientView{
				ID:        account.ID,
				Name:      account.Name,
				Email:     account.Email,
				CreatedAt: account.CreatedAt.Format("2 Jan 2006"),
			},
			Sessions:      sessionViews,
			TotalSessions: progress.TotalSessions,
			LevelName:     progress.Level.Current.Badge + " " + progress.Level.Current.Name,
			LevelNumber:   progress.Level.Current.Number,
			StreakWeeks:   progress.Streak.CurrentWeeks,
			BestStreak:    progress.Streak.BestWeeks,
			Milestones:    milestoneViews,
		},
	})
	if err != nil {
		h.logError("render client detail page", err)
	}
}

func (h handlers) handleRequestContact(w http.ResponseWriter, r *http.Request) {
	_, err := h.deps.Booking.MarkRequestContacted(r.Context(), r.PathValue("id"))
	h.finishTransition(w, r, "mark request contacted", err)
}

func (h handlers) handleRequestClose(w http.ResponseWriter, r *http.Request) {
	_, err := h.deps.Booking.CloseRequest(r.Context(), r.PathValue("id"))
	h.finishTransition(w, r, "close request", err)
}

func (h handlers) handleSessionComplete(w http.ResponseWriter, r *http.Request) {
	session, err := h.deps.Booking.CompleteSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.finishTransition(w, r, "complete session", err)
		return
	}
	sessionDate, err := time.Parse(bookingdomain.DateFormat, session.Date)
	if err != nil {
		sessionDate = time.Now()
	}
	// Progress update failure must not undo the completed session.
	if _, err := h.deps.Gamification.RecordCompletedSession(r.Context(), session.ClientID, sessionDate); err != nil {
		h.logError("record completed session progress", err)
	}
	http.Redirect(w, r, routepath.AdminPrefix, http.StatusSeeOther)
}

func (h handlers) handleSlotCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.WritePage(w, http.StatusBadRequest)
		return
	}
	dayOfWeek, err := strconv.Atoi(r.PostFormValue("day_of_week"))
	if err != nil {
		weberror.WritePage(w, http.StatusBadRequest)
		return
	}
	_, err = h.deps.Booking.UpsertTemplateSlot(r.Context(), bookingdomain.TemplateSlotInput{
		DayOfWeek: dayOfWeek,
		Start:     r.PostFormValue("start_time"),
		End:       r.PostFormValue("end_time"),
		Available: true,
	})
	if err != nil {
		if errors.Is(err, bookingdomain.ErrInvalidSlot) {
			weberror.WritePage(w, http.StatusBadRequest)
			return
		}
		h.logError("create template slot", err)
		weberror.WritePage(w, http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, routepath.AdminPrefix, http.StatusSeeOther)
}

func (h handlers) handleSlotDelete(w http.ResponseWriter, r *http.Request) {
	err := h.deps.Booking.RemoveTemplateSlot(r.Context(), r.PathValue("id"))
	h.finishTransition(w, r, "delete template slot", err)
}

func (h handlers) finishTransition(w http.ResponseWriter, r *http.Request, action string, err error) {
	if err != nil {
		switch {
		case errors.Is(err, bookingdomain.ErrNotFound):
			weberror.WritePage(w, http.StatusNotFound)
		case errors.Is(err, bookingdomain.ErrSessionNotConfirmed):
			weberror.WritePage(w, http.StatusConflict)
		default:
			h.logError(action, err)
			weberror.WritePage(w, http.StatusInternalServerError)
		}
		return
	}
	http.Redirect(w, r, routepath.AdminPrefix, http.StatusSeeOther)
}

func (h handlers) logError(message string, err error) {
	if h.deps.Logger != nil {
		h.deps.Logger.Error(message, "error", err)
	}
}
