package conversation

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exotic-travel-booking/backend/internal/session"
)

func TestToOpenAIMessages_ToolMessageCarriesCallIDAndName(t *testing.T) {
	messages := []session.Message{
		{Role: session.RoleTool, Content: `{"success":true}`, ToolCallID: "call-1", ToolName: "get_itinerary"},
	}

	out := toOpenAIMessages(messages)
	require.Len(t, out, 1)
	assert.Equal(t, "call-1", out[0].ToolCallID)
	assert.Equal(t, "get_itinerary", out[0].Name)
}

func TestToOpenAIMessages_AssistantToolCallsPreserved(t *testing.T) {
	messages := []session.Message{
		{
			Role: session.RoleAssistant,
			ToolCalls: []session.ToolCall{
				{ID: "call-1", ToolName: "add_flight", Arguments: []byte(`{"flightNumber":"AA100"}`)},
			},
		},
	}

	out := toOpenAIMessages(messages)
	require.Len(t, out, 1)
	require.Len(t, out[0].ToolCalls, 1)
	assert.Equal(t, "add_flight", out[0].ToolCalls[0].Function.Name)
	assert.Equal(t, `{"flightNumber":"AA100"}`, out[0].ToolCalls[0].Function.Arguments)
}

func TestToOpenAITools_MapsNameDescriptionParameters(t *testing.T) {
	specs := []ToolSpec{
		{Name: "get_itinerary", Description: "fetch it", Parameters: map[string]interface{}{"type": "object"}},
	}

	out := toOpenAITools(specs)
	require.Len(t, out, 1)
	assert.Equal(t, "get_itinerary", out[0].Function.Name)
	assert.Equal(t, "fetch it", out[0].Function.Description)
}

func TestBuildRequest_ToolChoiceAutoOnlyWhenToolsPresent(t *testing.T) {
	c := &LLMClient{}

	withTools := c.buildRequest(ChatRequest{Model: "gpt-4o", Tools: []ToolSpec{{Name: "x"}}})
	assert.Equal(t, "auto", withTools.ToolChoice)

	withoutTools := c.buildRequest(ChatRequest{Model: "gpt-4o"})
	assert.Nil(t, withoutTools.ToolChoice)
}

func TestBuildRequest_JSONResponseFormat(t *testing.T) {
	c := &LLMClient{}
	req := c.buildRequest(ChatRequest{Model: "gpt-4o", JSONResponse: true})
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
}

func TestFlushToolCalls_PreservesInsertionOrder(t *testing.T) {
	out := make(chan StreamDelta, 1)
	pending := map[int]*ToolCallDelta{
		1: {Index: 1, ID: "b", Name: "search_hotels"},
		0: {Index: 0, ID: "a", Name: "search_flights"},
	}
	order := []int{1, 0}

	flushToolCalls(out, pending, order, &Usage{PromptTokens: 10, CompletionTokens: 5})

	delta := <-out
	require.True(t, delta.Done)
	require.Len(t, delta.ToolCalls, 2)
	assert.Equal(t, "b", delta.ToolCalls[0].ID)
	assert.Equal(t, "a", delta.ToolCalls[1].ID)
	require.NotNil(t, delta.Usage)
	assert.Equal(t, 10, delta.Usage.PromptTokens)
}
