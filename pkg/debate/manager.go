package debate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arguelab/sparr/internal/observability"
	"github.com/arguelab/sparr/internal/tracing"
	"github.com/arguelab/sparr/pkg/provider"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "sparr.debate"

// Config tunes the session manager.
type Config struct {
	// CompactionThreshold is the raw-turn count at which the next send
	// compacts before calling the provider.
	CompactionThreshold int
	// RetainTurns is how many of the newest raw turns survive a compaction
	// verbatim. Must be below CompactionThreshold.
	RetainTurns int
	// ProviderTimeout bounds every provider round-trip, independent of the
	// provider client's own default.
	ProviderTimeout time.Duration
	// Temperature and MaxReplyTokens are passed through to the provider.
	Temperature    float64
	MaxReplyTokens int
	// SummaryWordBudget caps the cumulative summary's approximate length.
	SummaryWordBudget int
}

func (c Config) withDefaults() Config {
	if c.CompactionThreshold <= 0 {
		c.CompactionThreshold = 20
	}
	if c.RetainTurns <= 0 {
		c.RetainTurns = 10
	}
	if c.RetainTurns >= c.CompactionThreshold {
		c.RetainTurns = c.CompactionThreshold / 2
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = 45 * time.Second
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.8
	}
	if c.MaxReplyTokens <= 0 {
		c.MaxReplyTokens = 1024
	}
	if c.SummaryWordBudget <= 0 {
		c.SummaryWordBudget = defaultSummaryWordBudget
	}
	return c
}

// Manager exposes the debate session operations. All mutating operations on
// one debate id are serialized on the session's operation lock; operations on
// different ids proceed independently.
type Manager struct {
	store     Store
	llm       provider.Provider
	cfg       Config
	compactor *Compactor
	archiver  Archiver
}

// NewManager creates a session manager on top of the given store and provider.
func NewManager(store Store, llm provider.Provider, cfg Config) *Manager {
	observability.EnsureRegistered()
	cfg = cfg.withDefaults()
	return &Manager{
		store:     store,
		llm:       llm,
		cfg:       cfg,
		compactor: NewCompactor(llm, cfg.SummaryWordBudget),
	}
}

// SetArchiver installs an optional transcript archive that receives the final
// snapshot of every ended debate. Archiving is best-effort and never fails
// EndDebate.
func (m *Manager) SetArchiver(a Archiver) {
	m.archiver = a
}

// StartDebate creates the session for a new debate. The agent argues the
// complement of the human's position.
func (m *Manager) StartDebate(ctx context.Context, debateID, topic, humanPosition string) (*StartResult, error) {
	ctx = tracing.WithDebateID(ctx, debateID)
	ctx, span := tracing.StartSpan(ctx, tracerName, "debate.start",
		attribute.String("debate_id", debateID),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)

	if debateID == "" {
		return nil, fmt.Errorf("debate: debate id cannot be empty")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("debate: topic cannot be empty")
	}
	human, err := ParsePosition(humanPosition)
	if err != nil {
		return nil, err
	}

	system := systemInstruction(topic, human.Opposite(), human)
	conv := provider.NewConversation(m.llm, system, m.cfg.Temperature, m.cfg.MaxReplyTokens)
	sess := newSession(debateID, topic, human, conv)

	if err := m.store.Create(sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	observability.SetActiveDebates(m.store.Len())

	logger.Info().
		Str("topic", topic).
		Str("human_position", string(human)).
		Str("agent_position", string(human.Opposite())).
		Msg("Debate started")

	return &StartResult{
		DebateID:      debateID,
		Topic:         topic,
		HumanPosition: human,
		AgentPosition: human.Opposite(),
		OpeningPrompt: openingPrompt(topic, human, human.Opposite()),
	}, nil
}

// SendMessage forwards one human turn to the provider and commits the
// completed exchange. If the buffer has reached the compaction threshold the
// history is condensed first; compaction and the triggering send commit
// together or not at all, so a failed call is always safe to retry with the
// same text.
func (m *Manager) SendMessage(ctx context.Context, debateID, text string) (*SendResult, error) {
	ctx = tracing.WithDebateID(ctx, debateID)
	ctx, span := tracing.StartSpan(ctx, tracerName, "debate.send",
		attribute.String("debate_id", debateID),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("debate: message text cannot be empty")
	}

	sess, err := m.store.Get(debateID)
	if err != nil {
		return nil, err
	}

	sess.opMu.Lock()
	defer sess.opMu.Unlock()

	// The session may have been ended, or ended and the id reused by a fresh
	// debate, while this caller waited for the lock. Either way the session
	// this caller holds is dead.
	cur, err := m.store.Get(debateID)
	if err != nil {
		return nil, err
	}
	if cur != sess {
		return nil, ErrNotFound
	}

	var pending *pendingCompaction
	if len(sess.buffer) >= m.cfg.CompactionThreshold {
		pending, err = m.planCompaction(ctx, sess)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	conv := sess.conv
	if pending != nil {
		conv = pending.conv
	}

	// Detached from caller cancellation: once the exchange is on the wire it
	// must complete and commit, or a half-applied turn would corrupt ordering
	// for every later turn. The explicit timeout still bounds it.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ProviderTimeout)
	defer cancel()

	start := time.Now()
	reply, err := conv.Exchange(callCtx, text)
	observability.RecordProviderCall("send", m.llm.Name(), time.Since(start), err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Msg("Provider exchange failed, nothing committed")
		return nil, &ProviderError{Op: "send", Err: err}
	}

	agentText := reply.Text
	if reply.Filtered {
		agentText = FilteredFallbackText
		observability.RecordFilteredReply()
		logger.Warn().Msg("Provider reply was content-filtered, substituting fallback")
	}

	sess.stateMu.Lock()
	if pending != nil {
		sess.conv = pending.conv
		sess.buffer = pending.buffer
		sess.summary = pending.summary
	}
	sess.conv.Record(provider.RoleUser, text)
	sess.conv.Record(provider.RoleAssistant, agentText)
	sess.buffer = append(sess.buffer,
		Turn{Role: RoleHuman, Text: text, Seq: sess.nextSeq},
		Turn{Role: RoleAgent, Text: agentText, Seq: sess.nextSeq + 1},
	)
	sess.nextSeq += 2
	sess.turnCount++
	sess.lastActive = time.Now()
	turnCount := sess.turnCount
	bufferLen := len(sess.buffer)
	hasSummary := sess.summary != ""
	sess.stateMu.Unlock()

	observability.RecordTurn()
	logger.Debug().
		Int("turn_count", turnCount).
		Int("buffer_len", bufferLen).
		Bool("compacted", pending != nil).
		Bool("filtered", reply.Filtered).
		Msg("Exchange committed")

	return &SendResult{
		Reply:      agentText,
		Filtered:   reply.Filtered,
		TurnCount:  turnCount,
		BufferLen:  bufferLen,
		HasSummary: hasSummary,
		Compacted:  pending != nil,
	}, nil
}

// pendingCompaction is a fully built replacement state, committed only after
// the triggering exchange succeeds.
type pendingCompaction struct {
	conv    *provider.Conversation
	buffer  []Turn
	summary string
}

// planCompaction condenses everything but the newest RetainTurns turns into a
// cumulative summary and prepares a rebuilt conversation handle: a two-turn
// synthetic preamble carrying the summary, followed by the retained turns in
// their original order. The session itself is not touched.
func (m *Manager) planCompaction(ctx context.Context, sess *Session) (*pendingCompaction, error) {
	keep := m.cfg.RetainTurns
	if len(sess.buffer) <= keep {
		return nil, nil
	}
	split := len(sess.buffer) - keep
	evicted := sess.buffer[:split]
	retained := sess.buffer[split:]

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ProviderTimeout)
	defer cancel()

	start := time.Now()
	summary, err := m.compactor.Condense(callCtx, sess.topic, sess.summary, evicted)
	elapsed := time.Since(start)
	observability.RecordCompaction(elapsed, err == nil)
	observability.RecordProviderCall("compact", m.llm.Name(), elapsed, err == nil)
	if err != nil {
		return nil, &ProviderError{Op: "compaction", Err: err}
	}

	system := systemInstruction(sess.topic, sess.agentPosition, sess.humanPosition)
	conv := provider.NewConversation(m.llm, system, m.cfg.Temperature, m.cfg.MaxReplyTokens)
	conv.Record(provider.RoleUser, summaryPreamble(summary))
	conv.Record(provider.RoleAssistant, summaryAcknowledgment)

	buffer := make([]Turn, len(retained))
	copy(buffer, retained)
	for _, t := range buffer {
		role := provider.RoleUser
		if t.Role == RoleAgent {
			role = provider.RoleAssistant
		}
		conv.Record(role, t.Text)
	}

	return &pendingCompaction{
		conv:    conv,
		buffer:  buffer,
		summary: summary,
	}, nil
}

// EndDebate removes the session and returns the final exchange count. Ending
// a debate twice reports ErrNotFound.
func (m *Manager) EndDebate(ctx context.Context, debateID string) (int, error) {
	ctx = tracing.WithDebateID(ctx, debateID)
	ctx, span := tracing.StartSpan(ctx, tracerName, "debate.end",
		attribute.String("debate_id", debateID),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)

	sess, err := m.store.Get(debateID)
	if err != nil {
		return 0, err
	}

	// Wait for any in-flight exchange so the archived snapshot is complete.
	sess.opMu.Lock()
	defer sess.opMu.Unlock()

	removed, err := m.store.Remove(debateID)
	if err != nil {
		// Lost the race to a concurrent end.
		return 0, err
	}
	observability.SetActiveDebates(m.store.Len())

	snap := removed.Snapshot()
	if m.archiver != nil {
		archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		archiveErr := m.archiver.ArchiveDebate(archiveCtx, snap)
		cancel()
		observability.RecordArchivedDebate(archiveErr == nil)
		if archiveErr != nil {
			logger.Warn().Err(archiveErr).Msg("Failed to archive debate transcript")
		}
	}

	logger.Info().Int("turn_count", snap.TurnCount).Msg("Debate ended")
	return snap.TurnCount, nil
}

// History returns a point-in-time snapshot of the session: the cumulative
// summary (if any), the raw buffer, and the exchange count. It never blocks
// on an in-flight send.
func (m *Manager) History(ctx context.Context, debateID string) (*HistoryResult, error) {
	snap, err := m.store.Snapshot(debateID)
	if err != nil {
		return nil, err
	}
	return &HistoryResult{
		Summary:    snap.Summary,
		HasSummary: snap.Summary != "",
		Turns:      snap.Turns,
		TurnCount:  snap.TurnCount,
	}, nil
}

// Summary asks the provider for a structured post-hoc evaluation over the
// current conversation. The session is read but never mutated: the
// evaluation exchange is not recorded.
func (m *Manager) Summary(ctx context.Context, debateID string) (string, error) {
	ctx = tracing.WithDebateID(ctx, debateID)
	ctx, span := tracing.StartSpan(ctx, tracerName, "debate.summary",
		attribute.String("debate_id", debateID),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)

	sess, err := m.store.Get(debateID)
	if err != nil {
		return "", err
	}

	// Serialize with sends so the evaluation sees a consistent history.
	sess.opMu.Lock()
	defer sess.opMu.Unlock()

	cur, err := m.store.Get(debateID)
	if err != nil {
		return "", err
	}
	if cur != sess {
		return "", ErrNotFound
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ProviderTimeout)
	defer cancel()

	start := time.Now()
	reply, err := sess.conv.Exchange(callCtx, evaluationPrompt(sess.topic))
	observability.RecordProviderCall("summary", m.llm.Name(), time.Since(start), err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", &ProviderError{Op: "summary", Err: err}
	}
	if reply.Filtered || strings.TrimSpace(reply.Text) == "" {
		return "", &ProviderError{Op: "summary", Err: provider.ErrEmptyReply}
	}

	logger.Debug().Msg("Debate evaluation generated")
	return reply.Text, nil
}
