// Package streamevent defines the typed event envelope emitted by the
// conversation engine's chatStream, independent of transport: the SSE
// framing in internal/httpapi wraps these, but the engine itself only
// produces the logical sequence.
package streamevent

import "encoding/json"

// Type tags the seven event kinds in their required emission order.
type Type string

const (
	TypeText                Type = "text"
	TypeToolCall             Type = "tool_call"
	TypeToolResult           Type = "tool_result"
	TypeStructuredQuestions  Type = "structured_questions"
	TypeProtocolWarning      Type = "protocol_warning"
	TypeError                Type = "error"
	TypeDone                 Type = "done"
)

// Envelope is the wire shape: a type tag plus its typed payload.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Text is the payload for TypeText: an incremental content chunk.
type Text struct {
	Delta string `json:"delta"`
}

// ToolCall is the payload for TypeToolCall, emitted before execution.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult is the payload for TypeToolResult, emitted after execution.
type ToolResult struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// StructuredQuestion mirrors the data model's StructuredQuestion type.
type StructuredQuestion struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Options     []string `json:"options,omitempty"`
	ScaleMin    *int     `json:"scaleMin,omitempty"`
	ScaleMax    *int     `json:"scaleMax,omitempty"`
}

// StructuredQuestions is the payload for TypeStructuredQuestions.
type StructuredQuestions struct {
	Questions []StructuredQuestion `json:"questions"`
}

// ProtocolWarning is the payload for TypeProtocolWarning: a non-fatal
// deviation from the discovery-phase contract.
type ProtocolWarning struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Error is the payload for TypeError: fatal, ends the stream.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Done is the payload for TypeDone: exactly one per successful turn.
type Done struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	CostUsd          float64 `json:"costUsd"`
	ItineraryUpdated bool    `json:"itineraryUpdated"`
}

func envelope(t Type, payload interface{}) Envelope {
	data, _ := json.Marshal(payload)
	return Envelope{Type: t, Payload: data}
}

// NewText builds a TypeText envelope.
func NewText(delta string) Envelope { return envelope(TypeText, Text{Delta: delta}) }

// NewToolCall builds a TypeToolCall envelope.
func NewToolCall(id, name string, args json.RawMessage) Envelope {
	return envelope(TypeToolCall, ToolCall{ID: id, Name: name, Arguments: args})
}

// NewToolResult builds a TypeToolResult envelope.
func NewToolResult(id, name string, success bool, result json.RawMessage, errMsg string) Envelope {
	return envelope(TypeToolResult, ToolResult{ID: id, Name: name, Success: success, Result: result, Error: errMsg})
}

// NewStructuredQuestions builds a TypeStructuredQuestions envelope.
func NewStructuredQuestions(questions []StructuredQuestion) Envelope {
	return envelope(TypeStructuredQuestions, StructuredQuestions{Questions: questions})
}

// NewProtocolWarning builds a TypeProtocolWarning envelope.
func NewProtocolWarning(code, detail string) Envelope {
	return envelope(TypeProtocolWarning, ProtocolWarning{Code: code, Detail: detail})
}

// NewError builds a TypeError envelope.
func NewError(code, message string) Envelope {
	return envelope(TypeError, Error{Code: code, Message: message})
}

// NewDone builds a TypeDone envelope.
func NewDone(promptTokens, completionTokens int, costUsd float64, itineraryUpdated bool) Envelope {
	return envelope(TypeDone, Done{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		CostUsd:          costUsd,
		ItineraryUpdated: itineraryUpdated,
	})
}
