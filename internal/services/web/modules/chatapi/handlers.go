package chatapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/isaacyap/stretchlad/internal/services/assistant"
	bookingdomain "github.com/isaacyap/stretchlad/internal/services/booking/domain"
	module "github.com/isaacyap/stretchlad/internal/services/web/module"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/htmx"
	"github.com/isaacyap/stretchlad/internal/services/web/platform/weberror"
	"github.com/isaacyap/stretchlad/internal/services/web/templates"
)

// maxChatBodyBytes bounds the chat request body.
const maxChatBodyBytes = 64 << 10

type handlers struct {
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{deps: deps}
}

type chatRequest struct {
	Messages []assistant.Message `json:"messages"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h handlers) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.deps.ChatLimiter != nil && !h.deps.ChatLimiter.Allow(clientIP(r)) {
		weberror.WriteJSON(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	messages, fromWidget, err := chatMessages(w, r)
	if err != nil {
		weberror.WriteJSON(w, http.StatusBadRequest, "Invalid chat request.")
		return
	}

	reply, err := h.deps.Assistant.Reply(r.Context(), messages)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrNotConfigured):
			weberror.WriteJSON(w, http.StatusServiceUnavailable, "Chat is unavailable right now. Please use the booking form.")
		case errors.Is(err, assistant.ErrNoMessages), errors.Is(err, assistant.ErrConversationTooLong):
			weberror.WriteJSON(w, http.StatusBadRequest, "Invalid chat request.")
		default:
			if h.deps.Logger != nil {
				h.deps.Logger.Error("chat completion", "error", err)
			}
			weberror.WriteJSON(w, http.StatusBadGateway, "Chat is unavailable right now. Please try again.")
		}
		return
	}

	if fromWidget {
		userMessage := ""
		if len(messages) > 0 {
			userMessage = messages[len(messages)-1].Content
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = templates.RenderFragment(r.Context(), w, templates.ChatReply(userMessage, reply))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(chatResponse{Reply: reply})
}

// chatMessages reads either the widget's form post or the JSON API body.
func chatMessages(w http.ResponseWriter, r *http.Request) ([]assistant.Message, bool, error) {
	contentType := r.Header.Get("Content-Type")
	if htmx.IsRequest(r) || strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, true, err
		}
		content := strings.TrimSpace(r.PostFormValue("message"))
		if content == "" {
			return nil, true, assistant.ErrNoMessages
		}
		return []assistant.Message{{Role: "user", Content: content}}, true, nil
	}

	var req chatRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		return nil, false, err
	}
	return req.Messages, false, nil
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type availabilitySlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type availabilityResponse struct {
	Date  string             `json:"date"`
	Slots []availabilitySlot `json:"slots"`
}

func (h handlers) handleAvailability(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	date := time.Now()
	if raw != "" {
		parsed, err := time.Parse(bookingdomain.DateFormat, raw)
		if err != nil {
			weberror.WriteJSON(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	slots, err := h.deps.Booking.AvailableSlots(r.Context(), date)
	if err != nil {
		if h.deps.Logger != nil {
			h.deps.Logger.Error("resolve availability", "error", err)
		}
		weberror.WriteJSON(w, http.StatusInternalServerError, "availability is unavailable right now")
		return
	}
	resp := availabilityResponse{
		Date:  date.Format(bookingdomain.DateFormat),
		Slots: make([]availabilitySlot, 0, len(slots)),
	}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, availabilitySlot{Start: slot.Start.String(), End: slot.End.String()})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
