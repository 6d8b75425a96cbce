package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	requests []ChatRequest
	reply    *Reply
	err      error
}

func (f *fakeProvider) Chat(ctx context.Context, req ChatRequest) (*Reply, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &Reply{Text: "fake reply"}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func TestConversationExchangeDoesNotCommit(t *testing.T) {
	fake := &fakeProvider{}
	conv := NewConversation(fake, "system prompt", 0.7, 256)

	reply, err := conv.Exchange(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "fake reply", reply.Text)

	// The history stays empty until the caller records.
	assert.Zero(t, conv.Len())

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "system prompt", req.System)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, 256, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, RoleUser, req.Messages[0].Role)
	assert.Equal(t, "hello", req.Messages[0].Content)
}

func TestConversationRecordThenExchange(t *testing.T) {
	fake := &fakeProvider{}
	conv := NewConversation(fake, "system", 0, 0)

	conv.Record(RoleUser, "first question")
	conv.Record(RoleAssistant, "first answer")
	assert.Equal(t, 2, conv.Len())

	_, err := conv.Exchange(context.Background(), "second question")
	require.NoError(t, err)

	req := fake.requests[0]
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "first question", req.Messages[0].Content)
	assert.Equal(t, "first answer", req.Messages[1].Content)
	assert.Equal(t, "second question", req.Messages[2].Content)

	// A failed or discarded exchange leaves the history at the recorded turns.
	assert.Equal(t, 2, conv.Len())
}

func TestConversationHistoryIsACopy(t *testing.T) {
	conv := NewConversation(&fakeProvider{}, "system", 0, 0)
	conv.Record(RoleUser, "original")

	history := conv.History()
	history[0].Content = "mutated"

	assert.Equal(t, "original", conv.History()[0].Content)
}

func TestConversationIDsAreUnique(t *testing.T) {
	fake := &fakeProvider{}
	a := NewConversation(fake, "system", 0, 0)
	b := NewConversation(fake, "system", 0, 0)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestGenerate(t *testing.T) {
	fake := &fakeProvider{reply: &Reply{Text: "generated text"}}

	text, err := Generate(context.Background(), fake, "a prompt")
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)

	req := fake.requests[0]
	assert.Empty(t, req.System)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "a prompt", req.Messages[0].Content)
}

func TestGenerateFilteredReply(t *testing.T) {
	fake := &fakeProvider{reply: &Reply{Filtered: true}}

	_, err := Generate(context.Background(), fake, "a prompt")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestGenerateBlankReply(t *testing.T) {
	fake := &fakeProvider{reply: &Reply{Text: ""}}

	_, err := Generate(context.Background(), fake, "a prompt")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestGeneratePropagatesError(t *testing.T) {
	fake := &fakeProvider{err: errors.New("boom")}

	_, err := Generate(context.Background(), fake, "a prompt")
	assert.EqualError(t, err, "boom")
}
