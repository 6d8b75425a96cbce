package debate

import (
	"fmt"
	"time"
)

// Role identifies which side of the debate authored a turn.
type Role string

const (
	RoleHuman Role = "human"
	RoleAgent Role = "agent"
)

// Position is a debate stance. The agent always argues the complement of the
// human's position.
type Position string

const (
	PositionPro Position = "pro"
	PositionCon Position = "con"
)

// Opposite returns the complementary stance.
func (p Position) Opposite() Position {
	if p == PositionPro {
		return PositionCon
	}
	return PositionPro
}

// ParsePosition validates a caller-supplied stance.
func ParsePosition(s string) (Position, error) {
	switch Position(s) {
	case PositionPro:
		return PositionPro, nil
	case PositionCon:
		return PositionCon, nil
	default:
		return "", fmt.Errorf("debate: invalid position %q (must be %q or %q)", s, PositionPro, PositionCon)
	}
}

// Turn is one role-attributed utterance. Seq is strictly increasing for the
// lifetime of a session and never reused, even across compaction.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
	Seq  uint64 `json:"seq"`
}

// StartResult confirms a started debate.
type StartResult struct {
	DebateID      string   `json:"debate_id"`
	Topic         string   `json:"topic"`
	HumanPosition Position `json:"human_position"`
	AgentPosition Position `json:"agent_position"`
	OpeningPrompt string   `json:"opening_prompt"`
}

// SendResult is the outcome of one completed exchange. Filtered marks a
// provider reply that was suppressed by content policy and replaced with
// fallback text; the exchange still counts.
type SendResult struct {
	Reply      string `json:"reply"`
	Filtered   bool   `json:"filtered"`
	TurnCount  int    `json:"turn_count"`
	BufferLen  int    `json:"buffer_len"`
	HasSummary bool   `json:"has_summary"`
	Compacted  bool   `json:"compacted"`
}

// HistoryResult is a point-in-time view of a session.
type HistoryResult struct {
	Summary    string `json:"summary,omitempty"`
	HasSummary bool   `json:"has_summary"`
	Turns      []Turn `json:"turns"`
	TurnCount  int    `json:"turn_count"`
}

// TopicResult is the outcome of topic generation. UsedFallback marks the
// static list being served because the provider call or its payload failed.
type TopicResult struct {
	Topics       []string `json:"topics"`
	UsedFallback bool     `json:"used_fallback"`
}

// Snapshot is a read-only copy of a session's full state, used for history
// queries and archiving.
type Snapshot struct {
	DebateID      string    `json:"debate_id"`
	Topic         string    `json:"topic"`
	HumanPosition Position  `json:"human_position"`
	AgentPosition Position  `json:"agent_position"`
	Summary       string    `json:"summary,omitempty"`
	Turns         []Turn    `json:"turns"`
	TurnCount     int       `json:"turn_count"`
	LastActive    time.Time `json:"last_active"`
}
