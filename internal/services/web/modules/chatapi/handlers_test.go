package chatapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/isaacyap/stretchlad/internal/services/assistant"
	module "github.com/isaacyap/stretchlad/internal/services/web/module"
)

func newChatMux(t *testing.T, deps module.Dependencies) *http.ServeMux {
	t.Helper()
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(deps))
	return mux
}

// fakeCompletionServer answers every chat completion with a fixed reply.
func fakeCompletionServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestChatWidgetPostGetsFragment(t *testing.T) {
	t.Parallel()
	server := fakeCompletionServer(t, "Book a 60min session!")
	mux := newChatMux(t, module.Dependencies{
		Assistant:   assistant.New(assistant.Config{APIKey: "test", BaseURL: server.URL}),
		ChatLimiter: assistant.NewRateLimiter(0, 0, nil),
	})

	form := url.Values{"message": {"My back hurts"}}
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "My back hurts") || !strings.Contains(body, "Book a 60min session!") {
		t.Fatalf("fragment missing conversation turns: %s", body)
	}
}

func TestChatJSONPost(t *testing.T) {
	t.Parallel()
	server := fakeCompletionServer(t, "We operate across Singapore.")
	mux := newChatMux(t, module.Dependencies{
		Assistant:   assistant.New(assistant.Config{APIKey: "test", BaseURL: server.URL}),
		ChatLimiter: assistant.NewRateLimiter(0, 0, nil),
	})

	payload := `{"messages":[{"role":"user","content":"Where are you based?"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "We operate across Singapore." {
		t.Fatalf("reply = %q", resp.Reply)
	}
}

func TestChatRateLimitPerClient(t *testing.T) {
	t.Parallel()
	server := fakeCompletionServer(t, "ok")
	mux := newChatMux(t, module.Dependencies{
		Assistant:   assistant.New(assistant.Config{APIKey: "test", BaseURL: server.URL}),
		ChatLimiter: assistant.NewRateLimiter(2, time.Minute, nil),
	})

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", ip)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr.Code
	}

	if got := send("10.0.0.1"); got != http.StatusOK {
		t.Fatalf("first request status = %d", got)
	}
	if got := send("10.0.0.1"); got != http.StatusOK {
		t.Fatalf("second request status = %d", got)
	}
	if got := send("10.0.0.1"); got != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want %d", got, http.StatusTooManyRequests)
	}
	// Another client is unaffected.
	if got := send("10.0.0.2"); got != http.StatusOK {
		t.Fatalf("other client status = %d", got)
	}
}

func TestChatRejectsEmptyWidgetMessage(t *testing.T) {
	t.Parallel()
	mux := newChatMux(t, module.Dependencies{
		Assistant:   assistant.New(assistant.Config{APIKey: "test"}),
		ChatLimiter: assistant.NewRateLimiter(0, 0, nil),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("message=+"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestClientIPPrefersForwardedHeader(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.RemoteAddr = "192.0.2.9:4421"

	if got := clientIP(req); got != "192.0.2.9" {
		t.Fatalf("clientIP = %q, want remote host", got)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := clientIP(req); got != "198.51.100.7" {
		t.Fatalf("clientIP = %q, want first forwarded address", got)
	}
}
