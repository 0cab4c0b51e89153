// Package notifier delivers booking notifications over Telegram and email.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrTelegramNotConfigured indicates the Telegram relay is missing credentials.
var ErrTelegramNotConfigured = errors.New("telegram relay is not configured")

const defaultTelegramEndpoint = "https://api.telegram.org"

// TelegramConfig wires the Telegram relay. Endpoint and HTTPClient are
// overridable so tests can point at a local server.
type TelegramConfig struct {
	BotToken   string
	ChatID     string
	Endpoint   string
	HTTPClient *http.Client
}

// TelegramRelay sends HTML-formatted messages to one Telegram chat.
type TelegramRelay struct {
	botToken   string
	chatID     string
	endpoint   string
	httpClient *http.Client
}

// NewTelegramRelay constructs the Telegram relay. Missing credentials are
// allowed; sends then fail with ErrTelegramNotConfigured.
func NewTelegramRelay(cfg TelegramConfig) *TelegramRelay {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultTelegramEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TelegramRelay{
		botToken:   strings.TrimSpace(cfg.BotToken),
		chatID:     strings.TrimSpace(cfg.ChatID),
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// Configured reports whether the relay has credentials to deliver messages.
func (r *TelegramRelay) Configured() bool {
	return r != nil && r.botToken != "" && r.chatID != ""
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send delivers one HTML message to the configured chat.
func (r *TelegramRelay) Send(ctx context.Context, text string) error {
	if !r.Configured() {
		return ErrTelegramNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message text is required")
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    r.chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("encode telegram request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", r.endpoint, r.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram api status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
