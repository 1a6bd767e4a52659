package relay

import (
	"context"
	"time"
)

// Role identifies the sender of a message in the chat conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the chat conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Response holds the model's reply along with token usage metadata.
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Provider is the interface for completion backends. Implementations must be
// safe for concurrent use and must not retry failed requests.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (*Response, error)
}

// Defaults shared by every provider.
const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "deepseek/deepseek-r1:free"
	DefaultTimeout = 60 * time.Second
)
