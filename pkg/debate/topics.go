package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arguelab/sparr/internal/observability"
	"github.com/arguelab/sparr/pkg/provider"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// topicListSchema is the format contract for the provider's topic payload.
const topicListSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "string",
		"minLength": 8,
		"maxLength": 200
	}
}`

var fallbackTopics = []string{
	"Social media does more harm than good to public discourse",
	"Schools should replace standardized testing with project work",
	"Remote work should be the default for office jobs",
	"Cities should make public transport free of charge",
	"Voting should be mandatory for all eligible citizens",
	"Professional sports leagues should ban performance analytics",
	"Space exploration deserves more public funding than ocean research",
	"Single-use plastics should be banned outright",
	"Universities should be free but admission-limited",
	"Artificial intelligence should be allowed to grade student essays",
}

// TopicGenerator asks the provider for a batch of debate topics. It is
// stateless and never fails: any provider, parse, or validation problem falls
// back to the static list with UsedFallback set.
type TopicGenerator struct {
	llm     provider.Provider
	timeout time.Duration
	schema  gojsonschema.JSONLoader
}

// NewTopicGenerator creates a topic generator with the given per-call timeout.
func NewTopicGenerator(llm provider.Provider, timeout time.Duration) *TopicGenerator {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &TopicGenerator{
		llm:     llm,
		timeout: timeout,
		schema:  gojsonschema.NewStringLoader(topicListSchema),
	}
}

// Generate returns count topics.
func (g *TopicGenerator) Generate(ctx context.Context, count int) *TopicResult {
	if count <= 0 {
		count = 5
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	raw, err := provider.Generate(callCtx, g.llm, topicPrompt(count))
	observability.RecordProviderCall("topics", g.llm.Name(), time.Since(start), err == nil)
	if err != nil {
		log.Warn().Err(err).Msg("Topic generation failed, using fallback list")
		return g.fallback(count)
	}

	topics, err := g.parseTopicList(raw, count)
	if err != nil {
		log.Warn().Err(err).Msg("Topic payload rejected, using fallback list")
		return g.fallback(count)
	}

	return &TopicResult{Topics: topics}
}

func (g *TopicGenerator) parseTopicList(raw string, count int) ([]string, error) {
	raw = stripCodeFences(raw)

	result, err := gojsonschema.Validate(g.schema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("topic payload is not valid JSON: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("topic payload failed schema validation: %v", result.Errors())
	}

	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil, fmt.Errorf("failed to decode topic payload: %w", err)
	}

	cleaned := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		cleaned = append(cleaned, t)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("topic payload contained no usable topics")
	}
	if len(cleaned) > count {
		cleaned = cleaned[:count]
	}
	return cleaned, nil
}

func (g *TopicGenerator) fallback(count int) *TopicResult {
	topics := make([]string, 0, count)
	topics = append(topics, fallbackTopics...)
	if count < len(topics) {
		topics = topics[:count]
	}
	return &TopicResult{Topics: topics, UsedFallback: true}
}

// stripCodeFences removes a markdown fence wrapper some models insist on
// despite the prompt.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
