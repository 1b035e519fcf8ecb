package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFinalContent_PlainTextSingleQuestion(t *testing.T) {
	turn := parseFinalContent("What dates are you thinking of traveling?")
	assert.False(t, turn.ProtocolViolation)
	assert.Equal(t, "What dates are you thinking of traveling?", turn.Text)
}

func TestParseFinalContent_PlainTextMultipleQuestionsIsViolation(t *testing.T) {
	turn := parseFinalContent("What dates? And what's your budget?")
	assert.True(t, turn.ProtocolViolation)
	assert.NotEmpty(t, turn.ViolationDetail)
}

func TestParseFinalContent_EnvelopeWithOneStructuredQuestion(t *testing.T) {
	content := `{"message": "When are you traveling?", "structuredQuestions": [{"id": "q1", "question": "Pick your dates", "type": "date_range"}]}`
	turn := parseFinalContent(content)
	assert.False(t, turn.ProtocolViolation)
	assert.Equal(t, "When are you traveling?", turn.Text)
	assert.Len(t, turn.StructuredQuestions, 1)
}

func TestParseFinalContent_EnvelopeWithNoStructuredQuestions(t *testing.T) {
	content := `{"message": "Got it, I'll add that flight.", "structuredQuestions": []}`
	turn := parseFinalContent(content)
	assert.False(t, turn.ProtocolViolation)
	assert.Empty(t, turn.StructuredQuestions)
}

func TestParseFinalContent_EnvelopeWithTwoStructuredQuestionsIsViolation(t *testing.T) {
	content := `{"message": "A couple of questions.", "structuredQuestions": [{"id": "q1", "question": "Dates?", "type": "date_range"}, {"id": "q2", "question": "Budget?", "type": "text"}]}`
	turn := parseFinalContent(content)
	assert.True(t, turn.ProtocolViolation)
}

func TestParseFinalContent_MalformedJSONFallsBackToRawText(t *testing.T) {
	content := `{"message": "oops, not quite json`
	turn := parseFinalContent(content)
	assert.Equal(t, content, turn.Text)
	assert.False(t, turn.ProtocolViolation)
}

func TestParseFinalContent_EnvelopeMissingMessageFieldFallsBackToRawText(t *testing.T) {
	content := `{"structuredQuestions": []}`
	turn := parseFinalContent(content)
	assert.Equal(t, content, turn.Text)
}
