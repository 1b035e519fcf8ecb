package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/exotic-travel-booking/backend/internal/itinerary"
	"github.com/exotic-travel-booking/backend/internal/session"
)

func TestPromptForMode_TripDesignerIsDefault(t *testing.T) {
	assert.Equal(t, tripDesignerSystemPrompt, PromptForMode(session.ModeTripDesigner))
	assert.Equal(t, tripDesignerSystemPrompt, PromptForMode(session.AgentMode("unknown-mode")))
}

func TestPromptForMode_Help(t *testing.T) {
	assert.Equal(t, helpSystemPrompt, PromptForMode(session.ModeHelp))
}

func TestPromptForMode_TravelAgent(t *testing.T) {
	assert.Equal(t, travelAgentSystemPrompt, PromptForMode(session.ModeTravelAgent))
}

func TestContextPrimerMessage_EmptyItinerarySignalsDiscovery(t *testing.T) {
	it := &itinerary.Itinerary{}
	msg := ContextPrimerMessage(it, "2026-08-01", "JFK")

	assert.Contains(t, msg, "Today's date: 2026-08-01")
	assert.Contains(t, msg, "JFK")
	assert.Contains(t, msg, "Begin the discovery phase")
}

func TestContextPrimerMessage_NonEmptyItinerarySkipsDiscovery(t *testing.T) {
	it := &itinerary.Itinerary{
		Destinations: []itinerary.Destination{{City: "Paris"}},
	}
	msg := ContextPrimerMessage(it, "2026-08-01", "")

	assert.Contains(t, msg, "already has content")
	assert.NotContains(t, msg, "User's home airport")
}

func TestContextPrimerMessage_WarnsOnPastStartDate(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	it := &itinerary.Itinerary{StartDate: &past}
	msg := ContextPrimerMessage(it, "2026-08-01", "")

	assert.Contains(t, msg, "start date is in the past")
}

func TestContextPrimerMessage_NoWarningForFutureStartDate(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	it := &itinerary.Itinerary{StartDate: &future}
	msg := ContextPrimerMessage(it, "2026-08-01", "")

	assert.NotContains(t, msg, "start date is in the past")
}
