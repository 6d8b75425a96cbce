package debate

import (
	"context"
	"strings"

	"github.com/arguelab/sparr/pkg/provider"
)

const defaultSummaryWordBudget = 250

// Compactor condenses evicted turns plus the previous summary into one
// cumulative summary via a one-shot provider call. It is stateless given its
// inputs.
type Compactor struct {
	llm        provider.Provider
	wordBudget int
}

// NewCompactor creates a compactor with the given approximate word budget.
func NewCompactor(llm provider.Provider, wordBudget int) *Compactor {
	if wordBudget <= 0 {
		wordBudget = defaultSummaryWordBudget
	}
	return &Compactor{
		llm:        llm,
		wordBudget: wordBudget,
	}
}

// Condense returns the cumulative summary covering prevSummary plus the
// evicted turns. It performs no session mutation; the caller commits the
// result (or discards it) atomically with the triggering send.
func (c *Compactor) Condense(ctx context.Context, topic, prevSummary string, evicted []Turn) (string, error) {
	if len(evicted) == 0 {
		return prevSummary, nil
	}

	prompt := buildCompactionPrompt(topic, prevSummary, evicted, c.wordBudget)
	text, err := provider.Generate(ctx, c.llm, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
