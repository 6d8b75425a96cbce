package provider

import (
	"context"

	"github.com/google/uuid"
)

// Conversation is an opaque handle over a multi-turn exchange: a system
// instruction plus the ordered history sent with every call.
//
// Exchange never commits anything; the caller decides what to Record after
// inspecting the reply. That split is what makes a failed exchange safe to
// retry with identical input.
//
// A Conversation is not safe for concurrent use; callers serialize access.
type Conversation struct {
	id          string
	provider    Provider
	system      string
	temperature float64
	maxTokens   int
	history     []Message
}

// NewConversation opens a fresh conversation with the given system instruction
// and an empty history.
func NewConversation(p Provider, system string, temperature float64, maxTokens int) *Conversation {
	return &Conversation{
		id:          uuid.New().String(),
		provider:    p,
		system:      system,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// ID returns the handle's unique identifier.
func (c *Conversation) ID() string {
	return c.id
}

// Exchange sends the recorded history plus text as a new user turn and returns
// the provider's reply. The history is left untouched regardless of outcome.
func (c *Conversation) Exchange(ctx context.Context, text string) (*Reply, error) {
	messages := make([]Message, 0, len(c.history)+1)
	messages = append(messages, c.history...)
	messages = append(messages, Message{Role: RoleUser, Content: text})

	return c.provider.Chat(ctx, ChatRequest{
		System:      c.system,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
}

// Record appends a turn to the history.
func (c *Conversation) Record(role Role, content string) {
	c.history = append(c.history, Message{Role: role, Content: content})
}

// History returns a copy of the recorded history.
func (c *Conversation) History() []Message {
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

// Len returns the number of recorded turns.
func (c *Conversation) Len() int {
	return len(c.history)
}
