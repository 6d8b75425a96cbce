package debate

import (
	"sync"
	"time"

	"github.com/arguelab/sparr/pkg/provider"
)

// Session is the complete per-debate state. It carries two locks with
// different jobs: opMu serializes mutating operations for the whole provider
// round-trip, while stateMu guards the fields themselves so snapshot readers
// never wait on an in-flight provider call.
type Session struct {
	opMu    sync.Mutex
	stateMu sync.RWMutex

	debateID      string
	topic         string
	humanPosition Position
	agentPosition Position

	conv       *provider.Conversation
	buffer     []Turn
	summary    string
	turnCount  int
	nextSeq    uint64
	lastActive time.Time
}

func newSession(debateID, topic string, human Position, conv *provider.Conversation) *Session {
	return &Session{
		debateID:      debateID,
		topic:         topic,
		humanPosition: human,
		agentPosition: human.Opposite(),
		conv:          conv,
		nextSeq:       1,
		lastActive:    time.Now(),
	}
}

// DebateID returns the session's debate identifier.
func (s *Session) DebateID() string {
	return s.debateID
}

// LastActive returns the time of the session's last completed operation.
func (s *Session) LastActive() time.Time {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.lastActive
}

// Snapshot returns a point-in-time copy of the session state. It takes only
// the state read lock, never the operation lock.
func (s *Session) Snapshot() *Snapshot {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	turns := make([]Turn, len(s.buffer))
	copy(turns, s.buffer)

	return &Snapshot{
		DebateID:      s.debateID,
		Topic:         s.topic,
		HumanPosition: s.humanPosition,
		AgentPosition: s.agentPosition,
		Summary:       s.summary,
		Turns:         turns,
		TurnCount:     s.turnCount,
		LastActive:    s.lastActive,
	}
}
