package conversation

import (
	"fmt"
	"time"

	"github.com/exotic-travel-booking/backend/internal/itinerary"
	"github.com/exotic-travel-booking/backend/internal/session"
	"github.com/exotic-travel-booking/backend/internal/summarizer"
)

const tripDesignerSystemPrompt = `You are the Trip Designer, a travel planning assistant that builds a structured itinerary through conversation.

Rules:
- If the itinerary already has bookings, call get_itinerary first and inspect the EXISTING BOOKINGS section or inferred_tier fields before asking the traveler anything. Skip any discovery question already answered by an existing booking's inferred tier.
- During discovery, ask exactly one question per turn. Respond with a JSON object: {"message": "<1-2 sentences>", "structuredQuestions": [<zero or one StructuredQuestion>]}.
- After the user answers a structured question, call update_preferences with the new information before asking the next question.
- Use the available tools to read and mutate the itinerary; never fabricate segment ids.
- Keep responses concise and focused on moving the trip plan forward.`

const helpSystemPrompt = `You are a help assistant for the trip planning application. Answer questions about how to use the app. You do not have access to itinerary-mutating tools.`

const travelAgentSystemPrompt = `You are a travel agent assistant. Help the traveler research and decide on trip options using the search tools available to you. You do not ask structured discovery questions.`

// PromptForMode maps an agent mode to its system prompt, per the
// mode -> prompt contract (trip-designer gets the full discovery +
// tool-use prompt; help and travel-agent get minimal prompts).
func PromptForMode(mode session.AgentMode) string {
	switch mode {
	case session.ModeHelp:
		return helpSystemPrompt
	case session.ModeTravelAgent:
		return travelAgentSystemPrompt
	default:
		return tripDesignerSystemPrompt
	}
}

// compactionSystemPrompt instructs the cheap model used for context
// compaction to preserve exactly the facts the engine needs to keep the
// conversation coherent after the prefix is dropped.
const compactionSystemPrompt = `Summarize the following conversation prefix. Preserve: facts stated by the user, decisions made, preferences set, and a list of any segment ids added or modified. Be concise; omit pleasantries and tool-call mechanics.`

// ContextPrimerMessage builds the initial, hidden user message injected
// at session creation: today's date, a trip summary, and state-derived
// instructions. It is never shown in the chat transcript but is part of
// the history sent to the LLM.
func ContextPrimerMessage(it *itinerary.Itinerary, today string, homeAirport string) string {
	summary := summarizer.Summarize(it)

	msg := fmt.Sprintf("Today's date: %s\n", today)
	if homeAirport != "" {
		msg += fmt.Sprintf("User's home airport: %s\n", homeAirport)
	}

	if len(it.Segments) == 0 && len(it.Destinations) == 0 {
		msg += "This itinerary is empty. Begin the discovery phase.\n"
	} else {
		msg += "This itinerary already has content; skip discovery questions already answered by it.\n"
	}

	if it.StartDate != nil && it.StartDate.Before(time.Now()) {
		msg += "Warning: the itinerary's start date is in the past.\n"
	}

	msg += "\n" + summary
	return msg
}
