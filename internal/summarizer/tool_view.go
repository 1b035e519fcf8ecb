package summarizer

import (
	"encoding/json"

	"github.com/exotic-travel-booking/backend/internal/itinerary"
)

// maxToolResultBytes is the serialized-size ceiling for a tool result;
// MarshalToolResult truncates results above this.
const maxToolResultBytes = 2000

// dateRange is the {start, end} pair in the tool-view "dates" field.
type dateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// segmentView is the truncated, machine-readable projection of a
// segment used inside summarizeForTool results.
type segmentView struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	StartDatetime string `json:"startDatetime"`
	Name          string `json:"name"`
	InferredTier  string `json:"inferred_tier,omitempty"`
}

// travelerView is the compact traveler projection.
type travelerView struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Type      string `json:"type"`
}

// ToolView is the machine form returned by get_itinerary and embedded
// wherever a tool result needs to reference the whole itinerary.
type ToolView struct {
	ID             string                    `json:"id"`
	Title          string                    `json:"title"`
	Dates          dateRange                 `json:"dates"`
	Destinations   []string                  `json:"destinations"`
	SegmentCount   int                       `json:"segmentCount"`
	Segments       []segmentView             `json:"segments"`
	TripPreferences itinerary.TripPreferences `json:"tripPreferences"`
	Travelers      []travelerView            `json:"travelers"`
}

// SummarizeForTool builds the compact machine-readable projection
// handed back as the get_itinerary tool result.
func SummarizeForTool(it *itinerary.Itinerary) ToolView {
	view := ToolView{
		ID:              it.ID,
		Title:           it.Title,
		TripPreferences: it.Preferences,
	}

	if it.StartDate != nil {
		view.Dates.Start = itinerary.FormatDate(*it.StartDate)
	}
	if it.EndDate != nil {
		view.Dates.End = itinerary.FormatDate(*it.EndDate)
	}

	for _, d := range it.DestinationsOrFallback() {
		view.Destinations = append(view.Destinations, d.Name)
	}

	segments := it.SortedSegments()
	view.SegmentCount = len(segments)
	for _, seg := range segments {
		sv := segmentView{
			ID:            seg.ID,
			Type:          string(seg.Type),
			StartDatetime: seg.StartDatetime.Format("2006-01-02T15:04:05"),
			Name:          keyField(&seg),
		}
		if tier := inferredTier(&seg); tier != "" {
			sv.InferredTier = string(tier)
		}
		view.Segments = append(view.Segments, sv)
	}

	for _, tr := range it.Travelers {
		view.Travelers = append(view.Travelers, travelerView{
			ID: tr.ID, FirstName: tr.FirstName, LastName: tr.LastName, Type: string(tr.Type),
		})
	}

	return view
}

// MarshalToolResult serializes v to JSON and truncates it to the tool
// result size contract, appending a truncation sentinel if needed.
func MarshalToolResult(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(data) <= maxToolResultBytes {
		return data, nil
	}
	const suffix = `"... [truncated]"`
	cut := maxToolResultBytes - len(suffix)
	if cut < 0 {
		cut = 0
	}
	truncated := make([]byte, 0, cut+len(suffix)+1)
	truncated = append(truncated, data[:cut]...)
	truncated = append(truncated, []byte(suffix)...)
	return truncated, nil
}
