package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// ChatOptions carries per-request model parameters.
// Zero values mean "use the provider default".
type ChatOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// LLMService is a remote chat-completion provider used for fix suggestions.
type LLMService interface {
	// Chat sends the conversation and returns the assistant reply text.
	// Implementations must honour ctx cancellation so callers can bound each attempt.
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)

	// Name identifies the provider ("claude", "gemini")
	Name() string

	// DefaultModel is the model used when ChatOptions.Model is empty
	DefaultModel() string

	// Close releases resources
	Close() error
}
