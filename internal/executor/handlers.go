package executor

import (
	"fmt"
	"time"

	"github.com/exotic-travel-booking/backend/internal/itinerary"
	"github.com/exotic-travel-booking/backend/internal/summarizer"
)

func (e *Executor) buildHandlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"get_itinerary":      handleGetItinerary,
		"get_segment":        handleGetSegment,
		"update_itinerary":   handleUpdateItinerary,
		"update_preferences": handleUpdatePreferences,
		"add_traveler":       handleAddTraveler,
		"add_flight":         handleAddFlight,
		"add_hotel":          handleAddHotel,
		"add_activity":       handleAddActivity,
		"add_transfer":       handleAddTransfer,
		"add_meeting":        handleAddMeeting,
		"update_segment":     handleUpdateSegment,
		"delete_segment":     handleDeleteSegment,
		"move_segment":       handleMoveSegment,
		"reorder_segments":   handleReorderSegments,
		"search_web":         handleSearchStub("search_web"),
		"search_flights":     handleSearchStub("search_flights"),
		"search_hotels":      handleSearchStub("search_hotels"),
		"search_transfers":   handleSearchStub("search_transfers"),
	}
}

func handleGetItinerary(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	return summarizer.SummarizeForTool(it), false, nil
}

func handleGetSegment(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	id, _ := args["segmentId"].(string)
	seg, _ := it.FindSegment(id)
	if seg == nil {
		return nil, false, fmt.Errorf("segment not found: %s", id)
	}
	return seg, false, nil
}

func handleUpdateItinerary(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	if title, ok := args["title"].(string); ok && title != "" {
		it.Title = title
	}
	if desc, ok := args["description"].(string); ok {
		it.Description = desc
	}
	if raw, ok := args["startDate"].(string); ok && raw != "" {
		t, err := itinerary.ParseLocalDate(raw)
		if err != nil {
			return nil, false, fmt.Errorf("invalid startDate: %w", err)
		}
		it.StartDate = &t
	}
	if raw, ok := args["endDate"].(string); ok && raw != "" {
		t, err := itinerary.ParseLocalDate(raw)
		if err != nil {
			return nil, false, fmt.Errorf("invalid endDate: %w", err)
		}
		it.EndDate = &t
	}
	if rawDests, ok := args["destinations"].([]interface{}); ok {
		dests := make([]itinerary.Destination, 0, len(rawDests))
		for _, d := range rawDests {
			if name, ok := d.(string); ok {
				dests = append(dests, itinerary.Destination{Name: name})
			}
		}
		it.Destinations = dests
	}
	return summarizer.SummarizeForTool(it), true, nil
}

func handleUpdatePreferences(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	p := &it.Preferences
	if v, ok := args["travelerType"].(string); ok {
		p.TravelerType = v
	}
	if v, ok := args["tripPurpose"].(string); ok {
		p.TripPurpose = v
	}
	if v, ok := args["travelStyle"].(string); ok {
		p.TravelStyle = itinerary.TravelStyle(v)
	}
	if v, ok := args["pace"].(string); ok {
		p.Pace = itinerary.Pace(v)
	}
	if v, ok := args["interests"].([]interface{}); ok {
		p.Interests = toStringSlice(v)
	}
	if v, ok := args["budgetFlexibility"].(float64); ok {
		p.BudgetFlexibility = int(v)
	}
	if v, ok := args["dietaryRestrictions"].([]interface{}); ok {
		p.DietaryRestrictions = toStringSlice(v)
	}
	if v, ok := args["mobilityRestrictions"].([]interface{}); ok {
		p.MobilityRestrictions = toStringSlice(v)
	}
	if v, ok := args["origin"].(string); ok {
		p.Origin = v
	}
	if v, ok := args["accommodationPreference"].(string); ok {
		p.AccommodationPreference = v
	}
	if v, ok := args["activityPreferences"].([]interface{}); ok {
		p.ActivityPreferences = toStringSlice(v)
	}
	if v, ok := args["avoidances"].([]interface{}); ok {
		p.Avoidances = toStringSlice(v)
	}
	return map[string]interface{}{"preferences": p}, true, nil
}

func handleAddTraveler(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	first, _ := args["firstName"].(string)
	typ, _ := args["type"].(string)
	traveler := itinerary.Traveler{
		ID:        newSegmentID(),
		FirstName: first,
		Type:      itinerary.TravelerType(typ),
	}
	if last, ok := args["lastName"].(string); ok {
		traveler.LastName = last
	}
	if primary, ok := args["isPrimary"].(bool); ok {
		traveler.Metadata.IsPrimary = primary
	}
	it.Travelers = append(it.Travelers, traveler)
	return traveler, true, nil
}

func baseSegment(segType itinerary.SegmentType, start, end time.Time) itinerary.Segment {
	return itinerary.Segment{
		ID:            newSegmentID(),
		Type:          segType,
		Status:        itinerary.StatusTentative,
		StartDatetime: start,
		EndDatetime:   end,
		Provenance: itinerary.Provenance{
			Source:    itinerary.SourceAgent,
			Timestamp: time.Now(),
		},
	}
}

func parseDatetimeArg(args map[string]interface{}, key string) (time.Time, error) {
	raw, _ := args[key].(string)
	return itinerary.ParseLocalDate(raw)
}

func handleAddFlight(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	start, err := parseDatetimeArg(args, "startDatetime")
	if err != nil {
		return nil, false, fmt.Errorf("invalid startDatetime: %w", err)
	}
	end, err := parseDatetimeArg(args, "endDatetime")
	if err != nil {
		return nil, false, fmt.Errorf("invalid endDatetime: %w", err)
	}
	if end.Before(start) {
		return nil, false, fmt.Errorf("endDatetime before startDatetime")
	}

	seg := baseSegment(itinerary.SegmentFlight, start, end)
	seg.ConfirmationNo, _ = args["confirmationNumber"].(string)
	flightNumber, _ := args["flightNumber"].(string)
	seg.Flight = &itinerary.FlightDetails{
		Airline: itinerary.Airline{
			Name: strArg(args, "airlineName"),
			Code: strArg(args, "airlineCode"),
		},
		FlightNumber: flightNumber,
		Origin: itinerary.Airport{
			Name: strArg(args, "originName"),
			Code: strArg(args, "originCode"),
		},
		Destination: itinerary.Airport{
			Name: strArg(args, "destinationName"),
			Code: strArg(args, "destinationCode"),
		},
		CabinClass: strArg(args, "cabinClass"),
	}

	it.Segments = append(it.Segments, seg)
	return seg, true, nil
}

func handleAddHotel(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	checkIn, err := parseDatetimeArg(args, "checkIn")
	if err != nil {
		return nil, false, fmt.Errorf("invalid checkIn: %w", err)
	}
	checkOut, err := parseDatetimeArg(args, "checkOut")
	if err != nil {
		return nil, false, fmt.Errorf("invalid checkOut: %w", err)
	}
	if checkOut.Before(checkIn) {
		return nil, false, fmt.Errorf("checkOut before checkIn")
	}

	seg := baseSegment(itinerary.SegmentHotel, checkIn, checkOut)
	seg.ConfirmationNo, _ = args["confirmationNumber"].(string)
	rooms := 1
	if v, ok := args["rooms"].(float64); ok && v > 0 {
		rooms = int(v)
	}
	seg.Hotel = &itinerary.HotelDetails{
		Property: strArg(args, "property"),
		Location: itinerary.HotelLocation{
			City:    strArg(args, "city"),
			Country: strArg(args, "country"),
		},
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Rooms:    rooms,
		RoomType: strArg(args, "roomType"),
	}

	it.Segments = append(it.Segments, seg)
	return seg, true, nil
}

func handleAddActivity(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	start, err := parseDatetimeArg(args, "startDatetime")
	if err != nil {
		return nil, false, fmt.Errorf("invalid startDatetime: %w", err)
	}
	end, err := parseDatetimeArg(args, "endDatetime")
	if err != nil {
		return nil, false, fmt.Errorf("invalid endDatetime: %w", err)
	}

	seg := baseSegment(itinerary.SegmentActivity, start, end)
	seg.Activity = &itinerary.ActivityDetails{
		Name:     strArg(args, "name"),
		Location: strArg(args, "location"),
		Category: strArg(args, "category"),
	}

	it.Segments = append(it.Segments, seg)
	return seg, true, nil
}

func handleAddTransfer(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	start, err := parseDatetimeArg(args, "startDatetime")
	if err != nil {
		return nil, false, fmt.Errorf("invalid startDatetime: %w", err)
	}
	end, err := parseDatetimeArg(args, "endDatetime")
	if err != nil {
		return nil, false, fmt.Errorf("invalid endDatetime: %w", err)
	}

	seg := baseSegment(itinerary.SegmentTransfer, start, end)
	seg.Transfer = &itinerary.TransferDetails{
		TransferType: itinerary.TransferType(strArg(args, "transferType")),
		Pickup:       strArg(args, "pickup"),
		Dropoff:      strArg(args, "dropoff"),
	}

	it.Segments = append(it.Segments, seg)
	return seg, true, nil
}

func handleAddMeeting(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	start, err := parseDatetimeArg(args, "startDatetime")
	if err != nil {
		return nil, false, fmt.Errorf("invalid startDatetime: %w", err)
	}
	end, err := parseDatetimeArg(args, "endDatetime")
	if err != nil {
		return nil, false, fmt.Errorf("invalid endDatetime: %w", err)
	}

	seg := baseSegment(itinerary.SegmentMeeting, start, end)
	seg.Meeting = &itinerary.MeetingDetails{
		Title:     strArg(args, "title"),
		Location:  strArg(args, "location"),
		Attendees: toStringSlice(asSlice(args["attendees"])),
	}

	it.Segments = append(it.Segments, seg)
	return seg, true, nil
}

func handleUpdateSegment(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	id, _ := args["segmentId"].(string)
	seg, _ := it.FindSegment(id)
	if seg == nil {
		return nil, false, fmt.Errorf("segment not found: %s", id)
	}

	if v, ok := args["status"].(string); ok && v != "" {
		seg.Status = itinerary.SegmentStatus(v)
	}
	if v, ok := args["startDatetime"].(string); ok && v != "" {
		t, err := itinerary.ParseLocalDate(v)
		if err != nil {
			return nil, false, fmt.Errorf("invalid startDatetime: %w", err)
		}
		seg.StartDatetime = t
	}
	if v, ok := args["endDatetime"].(string); ok && v != "" {
		t, err := itinerary.ParseLocalDate(v)
		if err != nil {
			return nil, false, fmt.Errorf("invalid endDatetime: %w", err)
		}
		seg.EndDatetime = t
	}
	if fields, ok := args["fields"].(map[string]interface{}); ok {
		mergeVariantFields(seg, fields)
	}

	return seg, true, nil
}

func handleDeleteSegment(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	id, _ := args["segmentId"].(string)
	_, idx := it.FindSegment(id)
	if idx < 0 {
		return nil, false, fmt.Errorf("segment not found: %s", id)
	}
	it.Segments = append(it.Segments[:idx], it.Segments[idx+1:]...)
	return map[string]interface{}{"deletedSegmentId": id}, true, nil
}

// handleMoveSegment implements the cascade semantics: the target shifts
// by delta, then every later segment whose start precedes the new
// target end shifts by the same delta. All-or-nothing: if any cascaded
// segment would cross the itinerary end date, the whole move fails.
func handleMoveSegment(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	id, _ := args["segmentId"].(string)
	target, _ := it.FindSegment(id)
	if target == nil {
		return nil, false, fmt.Errorf("segment not found: %s", id)
	}

	newStart, err := parseDatetimeArg(args, "newStartDatetime")
	if err != nil {
		return nil, false, fmt.Errorf("invalid newStartDatetime: %w", err)
	}

	delta := newStart.Sub(target.StartDatetime)
	if delta == 0 {
		return target, false, nil
	}

	newTargetEnd := target.EndDatetime.Add(delta)

	if it.EndDate != nil && newTargetEnd.After(*it.EndDate) {
		return nil, false, &constraintViolation{msg: fmt.Sprintf("moving segment %s would cross itinerary end date", id)}
	}

	type pending struct {
		seg   *itinerary.Segment
		shift time.Duration
	}
	var plan []pending

	for i := range it.Segments {
		seg := &it.Segments[i]
		if seg.ID == target.ID {
			plan = append(plan, pending{seg: seg, shift: delta})
			continue
		}
		if seg.StartDatetime.Before(target.StartDatetime) {
			continue
		}
		if seg.StartDatetime.Before(newTargetEnd) {
			plan = append(plan, pending{seg: seg, shift: delta})
		}
	}

	if it.EndDate != nil {
		for _, p := range plan {
			if p.seg.EndDatetime.Add(p.shift).After(*it.EndDate) {
				return nil, false, &constraintViolation{msg: fmt.Sprintf("cascaded shift of segment %s would cross itinerary end date", p.seg.ID)}
			}
		}
	}

	for _, p := range plan {
		p.seg.Shift(p.shift)
	}

	return map[string]interface{}{"movedSegmentId": id, "cascadedCount": len(plan) - 1}, true, nil
}

func handleReorderSegments(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
	ids := toStringSlice(asSlice(args["segmentIds"]))
	byID := make(map[string]itinerary.Segment, len(it.Segments))
	for _, seg := range it.Segments {
		byID[seg.ID] = seg
	}

	reordered := make([]itinerary.Segment, 0, len(it.Segments))
	seen := make(map[string]bool)
	for _, id := range ids {
		if seg, ok := byID[id]; ok {
			reordered = append(reordered, seg)
			seen[id] = true
		}
	}
	for _, seg := range it.Segments {
		if !seen[seg.ID] {
			reordered = append(reordered, seg)
		}
	}

	it.Segments = reordered
	return map[string]interface{}{"order": ids}, true, nil
}

// handleSearchStub returns a handler for the four external search
// collaborators. The core's obligation stops at exposing these as
// side-effect-free tools with rate limiting; the actual provider
// integration lives outside this module.
func handleSearchStub(name string) handlerFunc {
	return func(args map[string]interface{}, it *itinerary.Itinerary) (interface{}, bool, error) {
		return map[string]interface{}{
			"tool":    name,
			"query":   args,
			"results": []interface{}{},
			"note":    "external search collaborator not wired in this deployment",
		}, false, nil
	}
}

func mergeVariantFields(seg *itinerary.Segment, fields map[string]interface{}) {
	switch seg.Type {
	case itinerary.SegmentFlight:
		if seg.Flight == nil {
			seg.Flight = &itinerary.FlightDetails{}
		}
		if v, ok := fields["cabinClass"].(string); ok {
			seg.Flight.CabinClass = v
		}
		if v, ok := fields["flightNumber"].(string); ok {
			seg.Flight.FlightNumber = v
		}
	case itinerary.SegmentHotel:
		if seg.Hotel == nil {
			seg.Hotel = &itinerary.HotelDetails{}
		}
		if v, ok := fields["roomType"].(string); ok {
			seg.Hotel.RoomType = v
		}
		if v, ok := fields["rooms"].(float64); ok {
			seg.Hotel.Rooms = int(v)
		}
	case itinerary.SegmentActivity:
		if seg.Activity == nil {
			seg.Activity = &itinerary.ActivityDetails{}
		}
		if v, ok := fields["category"].(string); ok {
			seg.Activity.Category = v
		}
	}
}

func strArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func toStringSlice(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
