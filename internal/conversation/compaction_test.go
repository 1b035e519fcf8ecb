package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exotic-travel-booking/backend/internal/session"
)

func TestShouldCompact_BelowThreshold(t *testing.T) {
	history := []session.Message{
		{Role: session.RoleUser, Content: "short message"},
	}
	assert.False(t, ShouldCompact(history, 100, 128000, 0.5))
}

func TestShouldCompact_AboveThreshold(t *testing.T) {
	var history []session.Message
	for i := 0; i < 50; i++ {
		history = append(history, session.Message{Role: session.RoleUser, Content: strings.Repeat("x", 2000)})
	}
	assert.True(t, ShouldCompact(history, 0, 8000, 0.5))
}

func TestShouldCompact_CountsToolCallArguments(t *testing.T) {
	small := []session.Message{{Role: session.RoleUser, Content: "hi"}}
	withToolArgs := []session.Message{
		{
			Role: session.RoleAssistant,
			ToolCalls: []session.ToolCall{
				{ID: "1", ToolName: "get_itinerary", Arguments: []byte(strings.Repeat(`"x",`, 5000))},
			},
		},
	}

	assert.False(t, ShouldCompact(small, 0, 20000, 0.5))
	assert.True(t, ShouldCompact(withToolArgs, 0, 20000, 0.5))
}

func TestEstimateTokens_EmptyHistory(t *testing.T) {
	assert.Equal(t, 0, estimateTokens(nil))
}
