package provider

import (
	"context"
	"errors"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrEmptyReply is returned by one-shot generation when the provider call
// succeeded but carried no usable text.
var ErrEmptyReply = errors.New("provider: reply contained no usable text")

// Message is a single turn in an ordered conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest contains the parameters for one chat completion call.
type ChatRequest struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// TokenUsage tracks token consumption for a single call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Reply is the tagged result of a chat call. Filtered=true means the call
// completed without transport error but the provider suppressed the content
// (safety policy), which callers must treat differently from an error.
type Reply struct {
	Text     string
	Filtered bool
	Usage    *TokenUsage
}

// Provider is a chat-style LLM backend.
type Provider interface {
	// Chat sends the system instruction plus ordered history and returns the
	// provider's reply. Transport, auth, and timeout problems are errors;
	// content suppression is a successful Reply with Filtered set.
	Chat(ctx context.Context, req ChatRequest) (*Reply, error)

	// Name returns the provider name.
	Name() string
}

// Generate issues a one-shot completion with no persistent history.
// A filtered or blank reply is reported as ErrEmptyReply because one-shot
// callers (summaries, topic lists) cannot do anything with silence.
func Generate(ctx context.Context, p Provider, prompt string) (string, error) {
	reply, err := p.Chat(ctx, ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	if reply.Filtered || reply.Text == "" {
		return "", ErrEmptyReply
	}
	return reply.Text, nil
}
