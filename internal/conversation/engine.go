package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/exotic-travel-booking/backend/internal/executor"
	"github.com/exotic-travel-booking/backend/internal/session"
	"github.com/exotic-travel-booking/backend/internal/store"
	"github.com/exotic-travel-booking/backend/internal/streamevent"
	"github.com/exotic-travel-booking/backend/internal/summarizer"
	"github.com/exotic-travel-booking/backend/internal/tools"
)

// Config holds the engine's tunables, sourced from internal/config.
type Config struct {
	Model               string
	CompactionModel     string
	ContextWindow       int
	CompactionThreshold float64
	MaxToolIterations   int
	LLMCallTimeout      time.Duration
}

// Engine implements chatStream: the per-turn algorithm,
// including the two-phase tool-call loop, compaction, and the
// structured-question protocol check.
type Engine struct {
	sessions *session.Manager
	store    store.ItineraryStore
	executor *executor.Executor

	cfg Config

	model           string
	compactionModel string

	mu        sync.Mutex
	llmByKey  map[string]*LLMClient

	log    *logrus.Entry
	tracer trace.Tracer
}

// New constructs an Engine over the given session manager, itinerary
// store, and executor.
func New(sessions *session.Manager, st store.ItineraryStore, exec *executor.Executor, cfg Config) *Engine {
	if cfg.ContextWindow == 0 {
		cfg.ContextWindow = 200_000
	}
	if cfg.CompactionThreshold == 0 {
		cfg.CompactionThreshold = 0.5
	}
	if cfg.MaxToolIterations == 0 {
		cfg.MaxToolIterations = 5
	}
	return &Engine{
		sessions:        sessions,
		store:           st,
		executor:        exec,
		cfg:             cfg,
		model:           cfg.Model,
		compactionModel: cfg.CompactionModel,
		llmByKey:        make(map[string]*LLMClient),
		log:             logrus.WithField("component", "conversation_engine"),
		tracer:          otel.Tracer("trip_designer.conversation.engine"),
	}
}

func (e *Engine) llmClientFor(apiKey string) *LLMClient {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.llmByKey[apiKey]; ok {
		return c
	}
	c := NewLLMClient(apiKey, e.cfg.LLMCallTimeout)
	e.llmByKey[apiKey] = c
	return c
}

// CreateSession allocates a session bound to itineraryID, priming its
// history with the system prompt for mode and a hidden context-primer
// user message built from today's date and the current itinerary state.
func (e *Engine) CreateSession(ctx context.Context, apiKey, itineraryID string, mode session.AgentMode, homeAirport string) (*session.Session, error) {
	it, err := e.store.Load(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("load itinerary for session: %w", err)
	}

	s := e.sessions.Create(ctx, apiKey, itineraryID, mode)
	s.AppendMessage(session.Message{Role: session.RoleSystem, Content: PromptForMode(mode)})

	today := time.Now().Format("2006-01-02")
	primer := ContextPrimerMessage(it, today, homeAirport)
	s.AppendMessage(session.Message{Role: session.RoleUser, Content: primer})

	return s, nil
}

// GetSession returns the session sessionID in apiKey's namespace.
func (e *Engine) GetSession(apiKey, sessionID string) (*session.Session, error) {
	return e.sessions.Get(apiKey, sessionID)
}

// DeleteSession removes sessionID from apiKey's namespace.
func (e *Engine) DeleteSession(apiKey, sessionID string) {
	e.sessions.Delete(apiKey, sessionID)
}

func toolSpecs() []ToolSpec {
	defs := tools.Catalog()
	specs := make([]ToolSpec, 0, len(defs))
	for _, d := range defs {
		specs = append(specs, ToolSpec{Name: d.Name, Description: d.Description, Parameters: d.Schema})
	}
	return specs
}

// ChatStream implements the per-turn algorithm. Events are delivered on
// the returned channel in their required emission order; exactly one of
// TypeDone or TypeError terminates the stream, after which the channel
// is closed.
func (e *Engine) ChatStream(ctx context.Context, apiKey, sessionID, userMessage string) <-chan streamevent.Envelope {
	out := make(chan streamevent.Envelope, 32)

	s, err := e.sessions.Acquire(apiKey, sessionID)
	if err != nil {
		go func() {
			defer close(out)
			code := "SESSION_NOT_FOUND"
			if err == session.ErrBusy {
				code = "SESSION_BUSY"
			}
			out <- streamevent.NewError(code, err.Error())
		}()
		return out
	}

	if err := e.sessions.CheckCostCeiling(s); err != nil {
		s.Release()
		go func() {
			defer close(out)
			out <- streamevent.NewError("COST_LIMIT_EXCEEDED", err.Error())
		}()
		return out
	}

	go func() {
		defer close(out)
		defer s.Release()
		e.runTurn(ctx, s, apiKey, userMessage, out)
	}()

	return out
}

func (e *Engine) runTurn(ctx context.Context, s *session.Session, apiKey, userMessage string, out chan<- streamevent.Envelope) {
	ctx, span := e.tracer.Start(ctx, "engine.run_turn")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", s.ID))

	s.AppendMessage(session.Message{Role: session.RoleUser, Content: userMessage})

	it, err := e.store.Load(ctx, s.ItineraryID)
	if err != nil {
		out <- streamevent.NewError("ITINERARY_NOT_FOUND", err.Error())
		return
	}
	itinerarySummaryTokens := estimateTokens([]session.Message{{Content: summarizer.Summarize(it)}})

	llm := e.llmClientFor(apiKey)

	if ShouldCompact(s.History, itinerarySummaryTokens, e.cfg.ContextWindow, e.cfg.CompactionThreshold) {
		compactCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := e.Compact(compactCtx, llm, s)
		cancel()
		if err != nil {
			out <- streamevent.NewError("CONTEXT_LIMIT_EXCEEDED", err.Error())
			return
		}
	}

	tools := toolSpecs()
	itineraryUpdated := false

	var finalContent string
	iterations := 0

	for {
		content, toolCalls, usage, err := e.streamOneCall(ctx, llm, s, tools, out)
		if err != nil {
			out <- streamevent.NewError("LLM_API_ERROR", err.Error())
			return
		}
		if usage != nil {
			s.RecordUsage(e.model, usage.PromptTokens, usage.CompletionTokens)
		}

		if len(toolCalls) == 0 {
			finalContent = content
			s.AppendMessage(session.Message{Role: session.RoleAssistant, Content: content})
			break
		}

		iterations++
		if iterations > e.cfg.MaxToolIterations {
			out <- streamevent.NewProtocolWarning("MAX_TOOL_ITERATIONS", "exceeded maximum tool-call iterations for this turn")
			finalContent = content
			break
		}

		assistantMsg := session.Message{Role: session.RoleAssistant, Content: content}
		for _, tc := range toolCalls {
			assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, session.ToolCall{
				ID: tc.ID, ToolName: tc.Name, Arguments: json.RawMessage(tc.ArgsDelta),
			})
		}
		s.AppendMessage(assistantMsg)

		for _, tc := range toolCalls {
			argsJSON := json.RawMessage(tc.ArgsDelta)
			out <- streamevent.NewToolCall(tc.ID, tc.Name, argsJSON)

			result := e.executor.Execute(ctx, tc.Name, []byte(tc.ArgsDelta), s.ItineraryID)

			if !result.IsError {
				def, ok := toolDef(tc.Name)
				if ok && def.Mutates {
					itineraryUpdated = true
				}
			}

			out <- streamevent.NewToolResult(tc.ID, tc.Name, !result.IsError, result.RawJSON, errMessageIfAny(result))

			s.AppendMessage(session.Message{
				Role:       session.RoleTool,
				Content:    string(result.RawJSON),
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
			})
		}
	}

	parsed := parseFinalContent(finalContent)
	if parsed.ProtocolViolation {
		out <- streamevent.NewProtocolWarning("STRUCTURED_QUESTION_PROTOCOL", parsed.ViolationDetail)
	}
	if len(parsed.StructuredQuestions) > 0 {
		out <- streamevent.NewStructuredQuestions(parsed.StructuredQuestions)
	}

	out <- streamevent.NewDone(s.PromptTokens, s.CompletionTokens, s.TotalCostUSD, itineraryUpdated)
}

// streamOneCall runs one LLM stream, forwarding content chunks as text
// events and accumulating tool calls, returning the final content,
// tool calls, and usage once the stream completes.
func (e *Engine) streamOneCall(ctx context.Context, llm *LLMClient, s *session.Session, tools []ToolSpec, out chan<- streamevent.Envelope) (string, []ToolCallDelta, *Usage, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeoutOrDefault())
	defer cancel()

	deltas, err := llm.Stream(callCtx, ChatRequest{
		Model:    e.model,
		Messages: s.History,
		Tools:    tools,
	})
	if err != nil {
		return "", nil, nil, err
	}

	var content string
	var toolCalls []ToolCallDelta
	var usage *Usage

	for d := range deltas {
		if d.ContentDelta != "" {
			content += d.ContentDelta
			select {
			case out <- streamevent.NewText(d.ContentDelta):
			case <-ctx.Done():
				return content, toolCalls, usage, ctx.Err()
			}
		}
		if d.Done {
			toolCalls = d.ToolCalls
			usage = d.Usage
		}
	}

	if callCtx.Err() != nil {
		return content, toolCalls, usage, fmt.Errorf("LLM call timed out: %w", callCtx.Err())
	}

	return content, toolCalls, usage, nil
}

func (e *Engine) timeoutOrDefault() time.Duration {
	if e.cfg.LLMCallTimeout > 0 {
		return e.cfg.LLMCallTimeout
	}
	return 60 * time.Second
}

func toolDef(name string) (tools.Definition, bool) {
	return tools.ByName(name)
}

func errMessageIfAny(r executor.Result) string {
	if !r.IsError {
		return ""
	}
	var parsed struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(r.RawJSON, &parsed)
	return parsed.Error
}
