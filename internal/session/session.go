package session

import (
	"sync"
	"time"
)

// AgentMode selects which system prompt the engine primes a session
// with; see conversation.PromptForMode.
type AgentMode string

const (
	ModeTripDesigner AgentMode = "trip-designer"
	ModeHelp         AgentMode = "help"
	ModeTravelAgent  AgentMode = "travel-agent"
)

// Session is one conversation's state: history, agent mode, and
// cumulative usage. Its mutex serializes a single session's turns so a
// second concurrent chatStream call on the same id can be rejected
// rather than interleaving history mutations.
type Session struct {
	mu sync.Mutex

	ID           string
	ItineraryID  string
	AgentMode    AgentMode
	History      []Message
	CompactedPrefix string

	PromptTokens     int
	CompletionTokens int
	TotalCostUSD     float64

	CreatedAt    time.Time
	LastActiveAt time.Time

	busy bool
}

// TryAcquire marks the session busy for the duration of one turn,
// returning false if a turn is already in flight (SESSION_BUSY).
func (s *Session) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

// Release clears the busy flag at the end of a turn.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

// AppendMessage appends one message to the session's history.
func (s *Session) AppendMessage(msg Message) {
	s.History = append(s.History, msg)
}

// RecordUsage adds one LLM call's usage to the session's running
// totals. It does not check the cost ceiling; Manager.CheckCostCeiling
// does that against these totals.
func (s *Session) RecordUsage(model string, promptTokens, completionTokens int) {
	s.PromptTokens += promptTokens
	s.CompletionTokens += completionTokens
	s.TotalCostUSD += CostUSD(model, promptTokens, completionTokens)
}

// Touch refreshes LastActiveAt, used by the TTL sweeper to decide
// eligibility for eviction.
func (s *Session) Touch() {
	s.LastActiveAt = time.Now()
}

// IdleFor reports how long the session has been inactive.
func (s *Session) IdleFor() time.Duration {
	return time.Since(s.LastActiveAt)
}
