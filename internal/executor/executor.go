// Package executor dispatches validated tool calls against a persisted
// itinerary: read tools return a projection, mutating tools apply their
// change to a deep clone, validate the result against the aggregate's
// invariants, and persist atomically with one reload-and-retry on a
// version conflict — an apply-step/check-terminal-condition/loop-with-a-cap
// shape.
package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/exotic-travel-booking/backend/internal/itinerary"
	"github.com/exotic-travel-booking/backend/internal/store"
	"github.com/exotic-travel-booking/backend/internal/summarizer"
	"github.com/exotic-travel-booking/backend/internal/tools"
)

// Error codes surfaced in tool results, per the error handling design.
const (
	CodeToolValidationFailed = "TOOL_VALIDATION_FAILED"
	CodeToolExecutionFailed  = "TOOL_EXECUTION_FAILED"
	CodeConstraintViolation  = "CONSTRAINT_VIOLATION"
	CodeConcurrentModified   = "CONCURRENT_MODIFICATION"
	CodeItineraryNotFound    = "ITINERARY_NOT_FOUND"
	CodeUnknownTool          = "UNKNOWN_TOOL"
)

// constraintViolation is returned by mutation handlers to signal an
// all-or-nothing rollback, distinct from a generic execution failure.
type constraintViolation struct{ msg string }

func (e *constraintViolation) Error() string { return e.msg }

func isConstraintViolation(err error) bool {
	_, ok := err.(*constraintViolation)
	return ok
}

// handlerFunc mutates or reads a clone of the itinerary, returning the
// data to serialize as the tool result. Mutating handlers return
// mutated=true; the executor persists the clone only in that case.
type handlerFunc func(args map[string]interface{}, it *itinerary.Itinerary) (result interface{}, mutated bool, err error)

// Executor wires the validated trip-designer tool catalog to an
// itinerary store.
type Executor struct {
	store     store.ItineraryStore
	validator *tools.SchemaValidator
	rateLimit *tools.ToolRateLimiter
	handlers  map[string]handlerFunc
	log       *logrus.Entry
	tracer    trace.Tracer
}

// New returns an Executor backed by st, with its own schema validator
// and a search-tool rate limiter of rps requests/sec and the given
// burst.
func New(st store.ItineraryStore, rps float64, burst int) *Executor {
	e := &Executor{
		store:     st,
		validator: tools.NewSchemaValidator(),
		rateLimit: tools.NewToolRateLimiter(rps, burst),
		log:       logrus.WithField("component", "executor"),
		tracer:    otel.Tracer("trip_designer.executor"),
	}
	e.handlers = e.buildHandlers()
	return e
}

// Result is the envelope every tool call resolves to.
type Result struct {
	RawJSON json.RawMessage
	IsError bool
	Code    string
}

// Execute runs toolName with argsJSON against the itinerary itineraryID,
// implementing the four-step contract: lookup, validate, apply (with
// reload-and-retry-once on a version conflict), project.
func (e *Executor) Execute(ctx context.Context, toolName string, argsJSON []byte, itineraryID string) Result {
	ctx, span := e.tracer.Start(ctx, "executor.execute")
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", toolName), attribute.String("itinerary.id", itineraryID))

	handler, ok := e.handlers[toolName]
	if !ok {
		return e.errorResult(CodeUnknownTool, fmt.Sprintf("unknown tool: %s", toolName))
	}

	if !e.rateLimit.Allow(toolName) {
		return e.errorResult(CodeToolExecutionFailed, "rate limit exceeded for "+toolName)
	}

	args, err := e.validator.Validate(toolName, argsJSON)
	if err != nil {
		span.RecordError(err)
		return e.errorResult(CodeToolValidationFailed, err.Error())
	}

	def, _ := tools.ByName(toolName)
	if !def.Mutates {
		return e.executeRead(ctx, toolName, args, itineraryID, handler)
	}
	return e.executeMutation(ctx, toolName, args, itineraryID, handler)
}

func (e *Executor) executeRead(ctx context.Context, toolName string, args map[string]interface{}, itineraryID string, handler handlerFunc) Result {
	it, err := e.store.Load(ctx, itineraryID)
	if err != nil {
		if err == store.ErrNotFound {
			return e.errorResult(CodeItineraryNotFound, "itinerary not found: "+itineraryID)
		}
		return e.errorResult(CodeToolExecutionFailed, err.Error())
	}

	data, _, err := handler(args, it)
	if err != nil {
		return e.errorResult(CodeToolExecutionFailed, err.Error())
	}
	return e.successResult(data)
}

func (e *Executor) executeMutation(ctx context.Context, toolName string, args map[string]interface{}, itineraryID string, handler handlerFunc) Result {
	for attempt := 0; attempt < 2; attempt++ {
		it, err := e.store.Load(ctx, itineraryID)
		if err != nil {
			if err == store.ErrNotFound {
				return e.errorResult(CodeItineraryNotFound, "itinerary not found: "+itineraryID)
			}
			return e.errorResult(CodeToolExecutionFailed, err.Error())
		}

		clone := it.Clone()
		data, mutated, err := handler(args, clone)
		if err != nil {
			if isConstraintViolation(err) {
				return e.errorResult(CodeConstraintViolation, err.Error())
			}
			return e.errorResult(CodeToolExecutionFailed, err.Error())
		}

		if !mutated {
			return e.successResult(data)
		}

		if err := clone.Validate(); err != nil {
			return e.errorResult(CodeConstraintViolation, err.Error())
		}

		if err := e.store.Save(ctx, clone); err != nil {
			if err == store.ErrVersionConflict {
				e.log.WithField("tool", toolName).Warn("version conflict, retrying")
				continue
			}
			return e.errorResult(CodeToolExecutionFailed, err.Error())
		}

		return e.successResult(data)
	}

	return e.errorResult(CodeConcurrentModified, "itinerary modified concurrently, retry failed")
}

func (e *Executor) successResult(data interface{}) Result {
	wrapped := map[string]interface{}{"success": true}
	if data != nil {
		b, err := json.Marshal(data)
		if err == nil {
			var fields map[string]interface{}
			if json.Unmarshal(b, &fields) == nil {
				for k, v := range fields {
					wrapped[k] = v
				}
			} else {
				wrapped["data"] = data
			}
		}
	}

	raw, err := summarizer.MarshalToolResult(wrapped)
	if err != nil {
		return e.errorResult(CodeToolExecutionFailed, "failed to serialize result: "+err.Error())
	}
	return Result{RawJSON: raw}
}

func (e *Executor) errorResult(code, message string) Result {
	raw, _ := summarizer.MarshalToolResult(map[string]interface{}{
		"success": false,
		"error":   message,
		"code":    code,
	})
	return Result{RawJSON: raw, IsError: true, Code: code}
}

func newSegmentID() string {
	return uuid.NewString()
}
