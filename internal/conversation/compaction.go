package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/exotic-travel-booking/backend/internal/session"
)

// tailMessageCount is the default number of most-recent messages kept
// verbatim when compacting, chosen so their token count stays under
// ~20% of the context window for typical turn lengths.
const tailMessageCount = 10

// estimateTokens is a cheap 4-chars-per-token heuristic, used only to
// decide whether compaction should run, not for billing.
func estimateTokens(messages []session.Message) int {
	chars := 0
	for _, m := range messages {
		chars += len(m.Content)
		for _, tc := range m.ToolCalls {
			chars += len(tc.Arguments)
		}
	}
	return chars / 4
}

// ShouldCompact reports whether the session's current history, plus the
// system prompt and itinerary summary budget, exceeds
// threshold*contextWindow tokens.
func ShouldCompact(history []session.Message, itinerarySummaryTokens, contextWindow int, threshold float64) bool {
	const toolCatalogBudget = 7000
	estimate := estimateTokens(history) + itinerarySummaryTokens + toolCatalogBudget
	return float64(estimate) > threshold*float64(contextWindow)
}

// Compact summarizes everything in history except the leading system
// message and the trailing tailMessageCount messages, replacing the
// prefix with one synthetic system message. It is a one-shot preamble
// run before the main call on the same turn.
func (e *Engine) Compact(ctx context.Context, llm *LLMClient, s *session.Session) error {
	history := s.History
	if len(history) <= tailMessageCount+1 {
		return nil
	}

	systemIdx := -1
	for i, m := range history {
		if m.Role == session.RoleSystem {
			systemIdx = i
			break
		}
	}

	start := 0
	if systemIdx == 0 {
		start = 1
	}

	tailStart := len(history) - tailMessageCount
	if tailStart <= start {
		return nil
	}

	prefix := history[start:tailStart]
	tail := history[tailStart:]

	var transcript strings.Builder
	for _, m := range prefix {
		fmt.Fprintf(&transcript, "%s: %s\n", m.Role, m.Content)
	}

	summary, _, err := llm.Complete(ctx, ChatRequest{
		Model: e.compactionModel,
		Messages: []session.Message{
			{Role: session.RoleSystem, Content: compactionSystemPrompt},
			{Role: session.RoleUser, Content: transcript.String()},
		},
		MaxTokens: 500,
	})
	if err != nil {
		return fmt.Errorf("compaction call failed: %w", err)
	}

	newHistory := make([]session.Message, 0, len(tail)+2)
	if systemIdx == 0 {
		newHistory = append(newHistory, history[0])
	}
	newHistory = append(newHistory, session.Message{
		Role:    session.RoleSystem,
		Content: "Earlier in this conversation: " + summary,
	})
	newHistory = append(newHistory, tail...)

	s.History = newHistory
	s.CompactedPrefix = summary
	return nil
}
