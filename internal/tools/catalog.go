// Package tools describes the trip-designer tool catalog: the 18
// function-calling tools the LLM may invoke, their JSON schemas, and
// the rate limiting applied to the side-effect-free search tools.
//
// Tools are dispatched directly by internal/executor rather than
// through a generic registry, since each handler needs direct access
// to the itinerary store rather than generic map[string]interface{}
// I/O.
package tools

// Definition describes one LLM-callable tool: its name, the
// human-readable description shown to the model, its JSON schema for
// arguments, and whether invoking it mutates the itinerary.
type Definition struct {
	Name        string
	Description string
	Schema      map[string]interface{}
	Mutates     bool
}

func obj(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func strEnum(desc string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc, "enum": values}
}

func num(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": desc}
}

func integer(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": desc}
}

func arr(items map[string]interface{}, desc string) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": items, "description": desc}
}

// Catalog returns the full trip-designer tool catalog in a stable
// order, used both to build the LLM-facing tool list and to validate
// incoming tool-call arguments.
func Catalog() []Definition {
	return []Definition{
		{
			Name:        "get_itinerary",
			Description: "Return the current itinerary: dates, destinations, travelers, preferences, and a compact list of segments with inferred booking tiers.",
			Schema:      obj(map[string]interface{}{}),
			Mutates:     false,
		},
		{
			Name:        "get_segment",
			Description: "Return one segment by id with full detail.",
			Schema:      obj(map[string]interface{}{"segmentId": str("Segment id")}, "segmentId"),
			Mutates:     false,
		},
		{
			Name:        "update_itinerary",
			Description: "Update the itinerary's title, description, dates, or destinations.",
			Schema: obj(map[string]interface{}{
				"title":        str("New title"),
				"description":  str("New description"),
				"startDate":    str("Start date, YYYY-MM-DD"),
				"endDate":      str("End date, YYYY-MM-DD"),
				"destinations": arr(str("Destination name"), "Replacement destination list"),
			}),
			Mutates: true,
		},
		{
			Name:        "update_preferences",
			Description: "Merge fields into the trip's preferences. Only send the fields that changed; missing fields are left untouched.",
			Schema: obj(map[string]interface{}{
				"travelerType":          str("solo|couple|family|friends|business|group"),
				"tripPurpose":           str("Free text trip purpose"),
				"travelStyle":           strEnum("Travel style", "luxury", "moderate", "budget", "backpacker"),
				"pace":                  strEnum("Daily pace", "packed", "balanced", "leisurely"),
				"interests":             arr(str("Interest"), "List of interests"),
				"budgetFlexibility":     integer("1-5"),
				"dietaryRestrictions":   arr(str("Restriction"), "Dietary restrictions"),
				"mobilityRestrictions":  arr(str("Restriction"), "Mobility restrictions"),
				"origin":                str("Home departure city/airport"),
				"accommodationPreference": str("Accommodation preference"),
				"activityPreferences":   arr(str("Preference"), "Activity preferences"),
				"avoidances":            arr(str("Thing to avoid"), "Avoidances"),
			}),
			Mutates: true,
		},
		{
			Name:        "add_traveler",
			Description: "Append a traveler to the itinerary.",
			Schema: obj(map[string]interface{}{
				"firstName": str("First name"),
				"lastName":  str("Last name"),
				"type":      strEnum("Traveler type", "ADULT", "CHILD", "INFANT", "SENIOR"),
				"isPrimary": map[string]interface{}{"type": "boolean", "description": "Is this the primary traveler"},
			}, "firstName", "type"),
			Mutates: true,
		},
		{
			Name:        "add_flight",
			Description: "Append a flight segment.",
			Schema: obj(map[string]interface{}{
				"airlineName":      str("Airline name"),
				"airlineCode":      str("Airline code"),
				"flightNumber":     str("Flight number"),
				"originCode":       str("Origin airport code"),
				"originName":       str("Origin airport name"),
				"destinationCode":  str("Destination airport code"),
				"destinationName":  str("Destination airport name"),
				"cabinClass":       str("Cabin class, e.g. Economy, Business, First"),
				"startDatetime":    str("Departure date/time"),
				"endDatetime":      str("Arrival date/time"),
				"confirmationNumber": str("Confirmation number"),
			}, "flightNumber", "originCode", "destinationCode", "startDatetime", "endDatetime"),
			Mutates: true,
		},
		{
			Name:        "add_hotel",
			Description: "Append a hotel segment.",
			Schema: obj(map[string]interface{}{
				"property":   str("Hotel/property name"),
				"city":       str("City"),
				"country":    str("Country"),
				"checkIn":    str("Check-in date, YYYY-MM-DD"),
				"checkOut":   str("Check-out date, YYYY-MM-DD"),
				"rooms":      integer("Room count"),
				"roomType":   str("Room type"),
				"confirmationNumber": str("Confirmation number"),
			}, "property", "checkIn", "checkOut"),
			Mutates: true,
		},
		{
			Name:        "add_activity",
			Description: "Append an activity segment.",
			Schema: obj(map[string]interface{}{
				"name":          str("Activity name"),
				"location":      str("Location"),
				"category":      str("Category"),
				"startDatetime": str("Start date/time"),
				"endDatetime":   str("End date/time"),
			}, "name", "startDatetime", "endDatetime"),
			Mutates: true,
		},
		{
			Name:        "add_transfer",
			Description: "Append a ground-transfer segment.",
			Schema: obj(map[string]interface{}{
				"transferType":  strEnum("Transfer type", "PRIVATE", "SHUTTLE", "TAXI", "RENTAL"),
				"pickup":        str("Pickup location"),
				"dropoff":       str("Dropoff location"),
				"startDatetime": str("Start date/time"),
				"endDatetime":   str("End date/time"),
			}, "pickup", "dropoff", "startDatetime", "endDatetime"),
			Mutates: true,
		},
		{
			Name:        "add_meeting",
			Description: "Append a meeting/appointment segment.",
			Schema: obj(map[string]interface{}{
				"title":         str("Meeting title"),
				"location":      str("Location"),
				"attendees":     arr(str("Attendee"), "Attendee names"),
				"startDatetime": str("Start date/time"),
				"endDatetime":   str("End date/time"),
			}, "title", "startDatetime", "endDatetime"),
			Mutates: true,
		},
		{
			Name:        "update_segment",
			Description: "Patch fields of an existing segment by id. Only send fields that changed.",
			Schema: obj(map[string]interface{}{
				"segmentId":     str("Segment id"),
				"status":        strEnum("New status", "CONFIRMED", "TENTATIVE", "CANCELLED"),
				"startDatetime": str("New start date/time"),
				"endDatetime":   str("New end date/time"),
				"fields":        map[string]interface{}{"type": "object", "description": "Variant-specific fields to merge"},
			}, "segmentId"),
			Mutates: true,
		},
		{
			Name:        "delete_segment",
			Description: "Remove a segment by id.",
			Schema:      obj(map[string]interface{}{"segmentId": str("Segment id")}, "segmentId"),
			Mutates:     true,
		},
		{
			Name:        "move_segment",
			Description: "Shift a segment's start/end datetime, cascading the same shift to every later dependent segment.",
			Schema: obj(map[string]interface{}{
				"segmentId":     str("Segment id to move"),
				"newStartDatetime": str("New start date/time for the segment"),
			}, "segmentId", "newStartDatetime"),
			Mutates: true,
		},
		{
			Name:        "reorder_segments",
			Description: "Override the display order of segments.",
			Schema:      obj(map[string]interface{}{"segmentIds": arr(str("Segment id"), "Segment ids in desired order")}, "segmentIds"),
			Mutates:     true,
		},
		{
			Name:        "search_web",
			Description: "General-purpose web search for trip research.",
			Schema:      obj(map[string]interface{}{"query": str("Search query")}, "query"),
			Mutates:     false,
		},
		{
			Name:        "search_flights",
			Description: "Search for flight options between two airports.",
			Schema: obj(map[string]interface{}{
				"origin":      str("Origin airport code"),
				"destination": str("Destination airport code"),
				"date":        str("Departure date, YYYY-MM-DD"),
			}, "origin", "destination", "date"),
			Mutates: false,
		},
		{
			Name:        "search_hotels",
			Description: "Search for hotel options in a city.",
			Schema: obj(map[string]interface{}{
				"city":     str("City"),
				"checkIn":  str("Check-in date, YYYY-MM-DD"),
				"checkOut": str("Check-out date, YYYY-MM-DD"),
			}, "city", "checkIn", "checkOut"),
			Mutates: false,
		},
		{
			Name:        "search_transfers",
			Description: "Search for ground-transfer options between two locations.",
			Schema: obj(map[string]interface{}{
				"pickup":  str("Pickup location"),
				"dropoff": str("Dropoff location"),
				"date":    str("Date, YYYY-MM-DD"),
			}, "pickup", "dropoff", "date"),
			Mutates: false,
		},
	}
}

// searchToolNames lists the tools rate-limited as external search
// collaborators (see ToolRateLimiter).
var searchToolNames = map[string]bool{
	"search_web":       true,
	"search_flights":   true,
	"search_hotels":    true,
	"search_transfers": true,
}

// IsSearchTool reports whether name is one of the rate-limited search
// tools.
func IsSearchTool(name string) bool {
	return searchToolNames[name]
}

// ByName returns the tool definition named name, or false if unknown.
func ByName(name string) (Definition, bool) {
	for _, d := range Catalog() {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
