// Package conversation implements the trip-designer conversation
// engine: the two-phase tool-call turn, context compaction, and the
// structured-question protocol check — an iteration loop over a
// streaming chat completion, assembled since no single teacher file
// played this role end to end.
package conversation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/exotic-travel-booking/backend/internal/session"
)

// StreamDelta is one item emitted by Stream: either a content fragment,
// or the terminal delta (Done set) carrying the usage report and every
// tool call of the response, each with its arguments already assembled.
type StreamDelta struct {
	ContentDelta string
	ToolCalls    []ToolCallDelta
	Done         bool
	Usage        *Usage
}

// ToolCallDelta is one complete tool call from a streamed response.
// Stream concatenates the argument fragments of each call by Index
// across chunks, so ArgsDelta holds the full arguments JSON.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	ArgsDelta string
}

// Usage is the token usage reported once at stream end.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// LLMClient wraps an OpenAI-compatible chat-completions API.
type LLMClient struct {
	client *openai.Client
	tracer trace.Tracer
}

// NewLLMClient constructs a client scoped to one user-supplied API key,
// since the core never holds a single shared provider credential: the
// LLM API key is opaque and supplied per request.
func NewLLMClient(apiKey string, timeout time.Duration) *LLMClient {
	cfg := openai.DefaultConfig(apiKey)
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &LLMClient{
		client: openai.NewClientWithConfig(cfg),
		tracer: otel.Tracer("trip_designer.conversation.llmclient"),
	}
}

// ToolSpec is the LLM-facing shape of one callable tool.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ChatRequest is one call to the provider.
type ChatRequest struct {
	Model          string
	Messages       []session.Message
	Tools          []ToolSpec
	Temperature    float32
	MaxTokens      int
	JSONResponse   bool
}

func toOpenAIMessages(messages []session.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
		if m.Role == session.RoleTool {
			msg.ToolCallID = m.ToolCallID
			msg.Name = m.ToolName
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.ToolName,
					Arguments: string(tc.Arguments),
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(specs []ToolSpec) []openai.Tool {
	out := make([]openai.Tool, 0, len(specs))
	for _, s := range specs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  s.Parameters,
			},
		})
	}
	return out
}

func (c *LLMClient) buildRequest(req ChatRequest) openai.ChatCompletionRequest {
	openaiReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	}

	// Tools must be supplied on every call in a turn, including the
	// second call after tool execution, or the provider silently drops
	// tool awareness and the model stops calling them.
	if len(req.Tools) > 0 {
		openaiReq.Tools = toOpenAITools(req.Tools)
		openaiReq.ToolChoice = "auto"
	}

	if req.JSONResponse {
		openaiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	return openaiReq
}

// Stream issues a streaming chat completion, delivering deltas on the
// returned channel. The channel is closed after the terminal delta
// (Done=true) or on error; callers should also watch ctx for
// cancellation.
func (c *LLMClient) Stream(ctx context.Context, req ChatRequest) (<-chan StreamDelta, error) {
	ctx, span := c.tracer.Start(ctx, "llmclient.stream")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", req.Model), attribute.Int("llm.tool_count", len(req.Tools)))

	openaiReq := c.buildRequest(req)

	stream, err := c.client.CreateChatCompletionStream(ctx, openaiReq)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create chat completion stream: %w", err)
	}

	out := make(chan StreamDelta, 16)

	go func() {
		defer close(out)
		defer stream.Close()

		pending := map[int]*ToolCallDelta{}
		var order []int

		for {
			resp, err := stream.Recv()
			if err != nil {
				flushToolCalls(out, pending, order, nil)
				return
			}

			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta

			if delta.Content != "" {
				select {
				case out <- StreamDelta{ContentDelta: delta.Content}:
				case <-ctx.Done():
					return
				}
			}

			for _, tc := range delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				entry, ok := pending[idx]
				if !ok {
					entry = &ToolCallDelta{Index: idx}
					pending[idx] = entry
					order = append(order, idx)
				}
				if tc.ID != "" {
					entry.ID = tc.ID
				}
				if tc.Function.Name != "" {
					entry.Name = tc.Function.Name
				}
				entry.ArgsDelta += tc.Function.Arguments
			}

			if resp.Choices[0].FinishReason != "" {
				var usage *Usage
				if resp.Usage != nil {
					usage = &Usage{PromptTokens: resp.Usage.PromptTokens, CompletionTokens: resp.Usage.CompletionTokens}
				}
				flushToolCalls(out, pending, order, usage)
				return
			}
		}
	}()

	return out, nil
}

func flushToolCalls(out chan<- StreamDelta, pending map[int]*ToolCallDelta, order []int, usage *Usage) {
	var calls []ToolCallDelta
	for _, idx := range order {
		calls = append(calls, *pending[idx])
	}
	out <- StreamDelta{ToolCalls: calls, Done: true, Usage: usage}
}

// Complete issues a single non-streaming chat completion, used for
// context compaction's cheap one-shot summarization call.
func (c *LLMClient) Complete(ctx context.Context, req ChatRequest) (string, Usage, error) {
	ctx, span := c.tracer.Start(ctx, "llmclient.complete")
	defer span.End()

	openaiReq := c.buildRequest(req)
	openaiReq.Stream = false

	resp, err := c.client.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		span.RecordError(err)
		return "", Usage{}, fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
