package debate

import (
	"fmt"
	"strings"
)

// FilteredFallbackText replaces an agent reply that the provider suppressed
// on content-policy grounds. The exchange still commits so the debate keeps
// its rhythm; the caller sees the Filtered flag.
const FilteredFallbackText = "I'd rather not respond to that directly. " +
	"Let's keep the debate focused on the topic — would you like to restate your argument?"

// summaryAcknowledgment is the synthetic agent turn that closes the two-turn
// preamble of a rebuilt conversation.
const summaryAcknowledgment = "Understood. I have the summary of the debate so far " +
	"and will continue arguing my position from that point."

func systemInstruction(topic string, agentPos, humanPos Position) string {
	return fmt.Sprintf(`You are a skilled debate opponent. The debate topic is: %q.

You argue the %s position. Your opponent argues the %s position.

Rules:
- Argue the %s position in every reply and never concede to the %s side.
- Rebut your opponent's latest point directly before adding new arguments.
- Cite concrete evidence or examples where you can.
- Keep replies under 150 words and stay on topic.`,
		topic, agentPos, humanPos, agentPos, humanPos)
}

func openingPrompt(topic string, humanPos, agentPos Position) string {
	return fmt.Sprintf("The debate on %q has begun. You argue the %s position; your opponent argues %s. Make your opening statement.",
		topic, humanPos, agentPos)
}

func summaryPreamble(summary string) string {
	return fmt.Sprintf("Here is a summary of the debate so far:\n\n%s\n\nLet's continue from this point.", summary)
}

// buildCompactionPrompt asks for one cumulative condensation: the previous
// summary (if any) must be folded in together with the newly evicted turns,
// or context from before the last compaction would be lost.
func buildCompactionPrompt(topic, prevSummary string, evicted []Turn, wordBudget int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Condense the following debate on %q into a single summary of at most %d words.\n", topic, wordBudget)
	b.WriteString("Keep it fact-focused: the main points made by each side, evidence cited, and the current state of the debate.\n\n")
	if prevSummary != "" {
		b.WriteString("Summary of the earlier part of the debate (fold this in, do not drop it):\n")
		b.WriteString(prevSummary)
		b.WriteString("\n\n")
	}
	b.WriteString("Latest turns:\n")
	for _, t := range evicted {
		fmt.Fprintf(&b, "[%s]: %s\n", t.Role, t.Text)
	}
	b.WriteString("\nReply with the summary text only.")
	return b.String()
}

func evaluationPrompt(topic string) string {
	return fmt.Sprintf(`This debate on %q is being reviewed. Provide a structured evaluation:
- the main arguments each side has made
- the strengths and weaknesses of each side's case
- an overall assessment of where the debate stands

Do not continue arguing. Reply with the evaluation only.`, topic)
}

func topicPrompt(count int) string {
	return fmt.Sprintf("Generate %d debate topics suitable for practice debates. "+
		"Each topic must be a single short sentence that reasonable people could argue either side of. "+
		"Reply with a JSON array of strings only, no code fences and no commentary.", count)
}
