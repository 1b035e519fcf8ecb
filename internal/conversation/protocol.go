package conversation

import (
	"encoding/json"
	"strings"

	"github.com/exotic-travel-booking/backend/internal/streamevent"
)

// assistantEnvelope is the JSON shape the discovery-phase prompt asks
// the LLM to return: a short user-facing message plus zero or one
// structured questions.
type assistantEnvelope struct {
	Message             string                           `json:"message"`
	StructuredQuestions []streamevent.StructuredQuestion `json:"structuredQuestions"`
}

// parsedTurn is the result of parsing the final assistant content.
type parsedTurn struct {
	Text                string
	StructuredQuestions []streamevent.StructuredQuestion
	ProtocolViolation   bool
	ViolationDetail     string
}

// parseFinalContent parses the second stream's accumulated content per
// a JSON envelope with message/structuredQuestions when present,
// otherwise the raw content is the whole message. A structuredQuestions
// array of length >= 2 is a protocol violation; the engine still
// forwards the content (it does not re-invoke the LLM) but flags it.
func parseFinalContent(content string) parsedTurn {
	trimmed := strings.TrimSpace(content)

	var env assistantEnvelope
	if strings.HasPrefix(trimmed, "{") && json.Unmarshal([]byte(trimmed), &env) == nil && env.Message != "" {
		turn := parsedTurn{Text: env.Message, StructuredQuestions: env.StructuredQuestions}
		if len(env.StructuredQuestions) >= 2 {
			turn.ProtocolViolation = true
			turn.ViolationDetail = "structuredQuestions array has length >= 2"
		}
		return turn
	}

	turn := parsedTurn{Text: content}
	if strings.Count(content, "?") >= 2 {
		turn.ProtocolViolation = true
		turn.ViolationDetail = "multiple '?' in message without a structured question"
	}
	return turn
}
