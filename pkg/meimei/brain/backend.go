// Package brain wraps the generative-language backend: session lifecycle per
// channel and the reply engine that turns user text into displayable replies,
// degrading to a static fallback on any failure.
package brain

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Backend is the generation collaborator. A nil Backend means generation is
// disabled and every reply degrades to the fallback text.
type Backend interface {
	// StartSession opens a new conversation seeded with the given opening
	// context (persona instructions plus few-shot exchanges).
	StartSession(ctx context.Context, seed string) (Session, error)
}

// Session is an opaque conversation handle into the backend.
type Session interface {
	// Send submits one user turn and returns the generated text.
	Send(ctx context.Context, text string) (string, error)
}

// GeminiBackend implements Backend on top of the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini-backed generation client.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	return &GeminiBackend{client: client, model: model}, nil
}

// StartSession opens a chat with the seed submitted as the opening user turn,
// before any real user message.
func (b *GeminiBackend) StartSession(ctx context.Context, seed string) (Session, error) {
	history := []*genai.Content{
		genai.NewContentFromText(seed, genai.RoleUser),
	}

	chat, err := b.client.Chats.Create(ctx, b.model, nil, history)
	if err != nil {
		return nil, fmt.Errorf("gemini: starting chat: %w", err)
	}
	return &geminiSession{chat: chat}, nil
}

// geminiSession adapts a genai chat to the Session interface.
type geminiSession struct {
	chat *genai.Chat
}

func (s *geminiSession) Send(ctx context.Context, text string) (string, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("gemini: send: %w", err)
	}
	return resp.Text(), nil
}

var _ Backend = (*GeminiBackend)(nil)
