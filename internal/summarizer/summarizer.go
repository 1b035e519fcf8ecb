// Package summarizer reduces a full itinerary to a bounded, LLM-sized
// context block and infers booking tiers so the conversation engine's
// discovery prompt can skip questions already answered by an existing
// booking.
package summarizer

import (
	"fmt"
	"strings"

	"github.com/exotic-travel-booking/backend/internal/itinerary"
)

// maxDetailedSegments caps the number of segments listed one per line.
// Segments past the cap are not listed, not even by type or date; the
// summary adds one line giving how many were left out. The EXISTING
// BOOKINGS section lists every hotel and flight and is not capped.
const maxDetailedSegments = 20

// BookingTier classifies an existing booking so the discovery prompt can
// infer travel style without asking the user again.
type BookingTier string

const (
	TierLuxury   BookingTier = "LUXURY"
	TierModerate BookingTier = "MODERATE"
	TierStandard BookingTier = "STANDARD"
	TierPremium  BookingTier = "PREMIUM"
	TierEconomy  BookingTier = "ECONOMY"
)

// luxuryHotelBrands is the curated brand list from the booking-tier
// inference contract. Matching is case-insensitive substring match
// against the property name.
var luxuryHotelBrands = []string{
	"l'esplanade", "four seasons", "ritz", "st. regis", "aman", "belmond",
	"peninsula", "mandarin oriental", "rosewood", "park hyatt", "bulgari",
	"eden roc", "cheval blanc", "raffles", "six senses", "one&only",
	"berkeley", "claridge's", "dorchester", "savoy",
}

var moderateHotelBrands = []string{
	"marriott", "hilton", "hyatt", "sheraton", "westin", "holiday inn",
}

// HotelTier classifies a hotel property name into a booking tier.
func HotelTier(property string) BookingTier {
	lower := strings.ToLower(property)
	for _, brand := range luxuryHotelBrands {
		if strings.Contains(lower, brand) {
			return TierLuxury
		}
	}
	for _, brand := range moderateHotelBrands {
		if strings.Contains(lower, brand) {
			return TierModerate
		}
	}
	return TierStandard
}

// FlightTier classifies a cabin class string into a booking tier.
func FlightTier(cabinClass string) BookingTier {
	lower := strings.ToLower(cabinClass)
	switch {
	case strings.Contains(lower, "first"), strings.Contains(lower, "suite"):
		return TierLuxury
	case strings.Contains(lower, "business"), strings.Contains(lower, "premium economy"):
		return TierPremium
	default:
		return TierEconomy
	}
}

// inferredTier returns the booking tier for a segment, or "" if the
// segment type carries no tier (anything but hotel/flight).
func inferredTier(seg *itinerary.Segment) BookingTier {
	switch seg.Type {
	case itinerary.SegmentHotel:
		if seg.Hotel != nil {
			return HotelTier(seg.Hotel.Property)
		}
	case itinerary.SegmentFlight:
		if seg.Flight != nil {
			return FlightTier(seg.Flight.CabinClass)
		}
	}
	return ""
}

var segmentEmoji = map[itinerary.SegmentType]string{
	itinerary.SegmentFlight:   "✈️",
	itinerary.SegmentHotel:    "🏨",
	itinerary.SegmentActivity: "🎟️",
	itinerary.SegmentTransfer: "🚗",
	itinerary.SegmentMeeting:  "📅",
	itinerary.SegmentCustom:   "📌",
}

// Summarize renders a human-readable, LLM-consumable text block
// describing an itinerary, per the output layout contract.
func Summarize(it *itinerary.Itinerary) string {
	var b strings.Builder

	title := it.Title
	if title == "" {
		title = "Untitled trip"
	}
	fmt.Fprintf(&b, "Trip: %s\n", title)

	if it.StartDate != nil && it.EndDate != nil {
		days := int(it.EndDate.Sub(*it.StartDate).Hours()/24) + 1
		fmt.Fprintf(&b, "Dates: %s – %s (%d days)\n",
			itinerary.FormatDate(*it.StartDate), itinerary.FormatDate(*it.EndDate), days)
	}

	destinations := it.DestinationsOrFallback()
	if len(destinations) > 0 {
		names := make([]string, len(destinations))
		for i, d := range destinations {
			names[i] = d.Name
		}
		fmt.Fprintf(&b, "Destinations: %s\n", strings.Join(names, ", "))
	}

	if len(it.Travelers) > 0 || it.Preferences.TravelStyle != "" || it.Preferences.Pace != "" {
		fmt.Fprintf(&b, "Travelers: %d, style: %s, pace: %s, interests: %s\n",
			len(it.Travelers), orDash(string(it.Preferences.TravelStyle)),
			orDash(string(it.Preferences.Pace)), joinOrNone(it.Preferences.Interests))
	}

	segments := it.SortedSegments()
	if len(segments) > 0 {
		counts := make(map[itinerary.SegmentType]int)
		for _, seg := range segments {
			counts[seg.Type]++
		}
		fmt.Fprintf(&b, "Segments: %s (%d total)\n", formatCounts(counts), len(segments))

		detailed := segments
		elided := 0
		if len(segments) > maxDetailedSegments {
			detailed = segments[:maxDetailedSegments]
			elided = len(segments) - maxDetailedSegments
		}
		for _, seg := range detailed {
			fmt.Fprintf(&b, "  - %s: %s, %s\n", seg.Type, seg.StartDatetime.Format("2006-01-02 15:04"), keyField(&seg))
		}
		if elided > 0 {
			fmt.Fprintf(&b, "  ... and %d more segments (elided)\n", elided)
		}
	}

	var bookingLines []string
	for _, seg := range segments {
		tier := inferredTier(&seg)
		if tier == "" {
			continue
		}
		emoji := segmentEmoji[seg.Type]
		bookingLines = append(bookingLines, fmt.Sprintf("  - %s %s: %s → %s style", emoji, seg.Type, keyField(&seg), tier))
	}
	if len(bookingLines) > 0 {
		b.WriteString("⚠️ EXISTING BOOKINGS (use to infer preferences):\n")
		for _, line := range bookingLines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func formatCounts(counts map[itinerary.SegmentType]int) string {
	order := []itinerary.SegmentType{
		itinerary.SegmentFlight, itinerary.SegmentHotel, itinerary.SegmentActivity,
		itinerary.SegmentTransfer, itinerary.SegmentMeeting, itinerary.SegmentCustom,
	}
	var parts []string
	for _, t := range order {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(t))))
		}
	}
	return strings.Join(parts, ", ")
}

// keyField returns the single most identifying field for a segment,
// used in both the segment listing and the bookings section.
func keyField(seg *itinerary.Segment) string {
	switch seg.Type {
	case itinerary.SegmentFlight:
		if seg.Flight != nil {
			return fmt.Sprintf("%s %s → %s", seg.Flight.Airline.Name, seg.Flight.Origin.Code, seg.Flight.Destination.Code)
		}
	case itinerary.SegmentHotel:
		if seg.Hotel != nil {
			return seg.Hotel.Property
		}
	case itinerary.SegmentActivity:
		if seg.Activity != nil {
			return seg.Activity.Name
		}
	case itinerary.SegmentTransfer:
		if seg.Transfer != nil {
			return fmt.Sprintf("%s → %s", seg.Transfer.Pickup, seg.Transfer.Dropoff)
		}
	case itinerary.SegmentMeeting:
		if seg.Meeting != nil {
			return seg.Meeting.Title
		}
	case itinerary.SegmentCustom:
		if seg.Custom != nil {
			return seg.Custom.Title
		}
	}
	return seg.ID
}
