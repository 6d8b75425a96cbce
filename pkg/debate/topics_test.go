package debate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arguelab/sparr/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTopicStub(text string, err error) *stubProvider {
	return &stubProvider{
		handler: func(req provider.ChatRequest) (*provider.Reply, error) {
			if err != nil {
				return nil, err
			}
			return &provider.Reply{Text: text}, nil
		},
	}
}

func TestTopicGeneratorValidPayload(t *testing.T) {
	stub := newTopicStub(`["Cities should ban private cars downtown", "Homework should be abolished in primary school"]`, nil)
	gen := NewTopicGenerator(stub, time.Second)

	result := gen.Generate(context.Background(), 2)
	assert.False(t, result.UsedFallback)
	assert.Equal(t, []string{
		"Cities should ban private cars downtown",
		"Homework should be abolished in primary school",
	}, result.Topics)
}

func TestTopicGeneratorStripsCodeFences(t *testing.T) {
	stub := newTopicStub("```json\n[\"Zoos should be phased out entirely\"]\n```", nil)
	gen := NewTopicGenerator(stub, time.Second)

	result := gen.Generate(context.Background(), 1)
	assert.False(t, result.UsedFallback)
	assert.Equal(t, []string{"Zoos should be phased out entirely"}, result.Topics)
}

func TestTopicGeneratorTruncatesToCount(t *testing.T) {
	stub := newTopicStub(`["First debatable proposition here", "Second debatable proposition here", "Third debatable proposition here"]`, nil)
	gen := NewTopicGenerator(stub, time.Second)

	result := gen.Generate(context.Background(), 2)
	assert.False(t, result.UsedFallback)
	assert.Len(t, result.Topics, 2)
}

func TestTopicGeneratorProviderErrorFallsBack(t *testing.T) {
	stub := newTopicStub("", errors.New("timeout"))
	gen := NewTopicGenerator(stub, time.Second)

	result := gen.Generate(context.Background(), 3)
	assert.True(t, result.UsedFallback)
	assert.Len(t, result.Topics, 3)
}

func TestTopicGeneratorFilteredReplyFallsBack(t *testing.T) {
	stub := &stubProvider{
		handler: func(req provider.ChatRequest) (*provider.Reply, error) {
			return &provider.Reply{Filtered: true}, nil
		},
	}
	gen := NewTopicGenerator(stub, time.Second)

	result := gen.Generate(context.Background(), 3)
	assert.True(t, result.UsedFallback)
}

func TestTopicGeneratorRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", "Here are some great topics for you!"},
		{"wrong shape", `{"topics": ["Something debatable goes here"]}`},
		{"empty array", `[]`},
		{"too short items", `["hi", "no"]`},
		{"non-string items", `[1, 2, 3]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := NewTopicGenerator(newTopicStub(tc.payload, nil), time.Second)
			result := gen.Generate(context.Background(), 2)
			assert.True(t, result.UsedFallback)
			assert.NotEmpty(t, result.Topics)
		})
	}
}

func TestTopicGeneratorDefaultCount(t *testing.T) {
	stub := newTopicStub("", errors.New("down"))
	gen := NewTopicGenerator(stub, time.Second)

	result := gen.Generate(context.Background(), 0)
	require.True(t, result.UsedFallback)
	assert.Len(t, result.Topics, 5)
}
