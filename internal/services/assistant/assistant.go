// Package assistant implements the studio's chat helper backed by an
// OpenAI-compatible chat completion API.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrNotConfigured indicates the assistant has no API key.
	ErrNotConfigured = errors.New("assistant is not configured")
	// ErrNoMessages indicates a request carried no usable messages.
	ErrNoMessages = errors.New("no valid messages")
	// ErrConversationTooLong indicates a request exceeded the message cap.
	ErrConversationTooLong = errors.New("conversation too long")
	// ErrUpstream indicates the completion API call failed.
	ErrUpstream = errors.New("assistant upstream failure")
)

const (
	// MaxMessages bounds conversation length per request.
	MaxMessages = 20
	// MaxMessageLength bounds each message in characters.
	MaxMessageLength = 500

	defaultModel   = "gpt-4o-mini"
	replyMaxTokens = 150
)

const systemPrompt = `You are Fab's AI assistant for Fab The Stretch Lad, a professional sports stretch therapy service in Singapore.

About Fab:
- Professional stretch therapist specializing in sports stretch therapy
- Located in Singapore
- Instagram: @fab.thestretchlad
- Services: 1-on-1 stretch sessions (30min, 60min, 90min)
- Pricing: 30min $50, 60min $80, 90min $110
- Specialties: Sports recovery, desk worker relief, flexibility improvement, injury prevention
- Available: Monday to Saturday, 8am-8pm

Your job:
- Answer questions about stretch therapy, pricing, availability
- Assess client needs: ask about their pain points, lifestyle, activity level
- Recommend the right session length based on their needs
- Guide them to book via the contact form or WhatsApp
- Be friendly, professional, encouraging
- Keep responses to 2-3 sentences max
- Never give medical advice, recommend seeing a doctor for injuries
- Sign off as "Fab's AI Assistant"
- If asked about anything unrelated, politely redirect to stretch therapy

Common recommendations:
- Desk workers with tight shoulders/neck: 60min session
- Athletes needing recovery: 90min session
- First-timers just trying it out: 30min session
- Chronic back pain: 60min session, recommend consistency (weekly)`

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config wires the assistant to a completion API. BaseURL points tests at a
// local fake server.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Service answers visitor chat requests with the studio persona.
type Service struct {
	client *openai.Client
	model  string
}

// New constructs the chat assistant. A missing API key is allowed; every
// reply then fails with ErrNotConfigured so callers can degrade gracefully.
func New(cfg Config) *Service {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &Service{}
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Service{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Configured reports whether the assistant can reach a completion API.
func (s *Service) Configured() bool {
	return s != nil && s.client != nil
}

// Sanitize validates and normalizes one conversation. Roles other than
// assistant collapse to user, content is truncated to the per-message cap,
// and messages with empty content are dropped.
func Sanitize(messages []Message) ([]Message, error) {
	if len(messages) > MaxMessages {
		return nil, ErrConversationTooLong
	}
	sanitized := make([]Message, 0, len(messages))
	for _, message := range messages {
		content := message.Content
		if content == "" {
			continue
		}
		if len(content) > MaxMessageLength {
			content = content[:MaxMessageLength]
		}
		role := openai.ChatMessageRoleUser
		if message.Role == openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		sanitized = append(sanitized, Message{Role: role, Content: content})
	}
	if len(sanitized) == 0 {
		return nil, ErrNoMessages
	}
	return sanitized, nil
}

// Reply sanitizes the conversation and requests one persona completion.
func (s *Service) Reply(ctx context.Context, messages []Message) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}
	sanitized, err := Sanitize(messages)
	if err != nil {
		return "", err
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(sanitized)+1)
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, message := range sanitized {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		Messages:  chatMessages,
		MaxTokens: replyMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}
