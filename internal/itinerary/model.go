// Package itinerary defines the trip itinerary aggregate: destinations,
// travelers, preferences and the tagged segment union, plus the
// invariants the tool executor enforces on every mutation.
package itinerary

import (
	"fmt"
	"sort"
	"time"
)

// SegmentType tags the discriminated segment union.
type SegmentType string

const (
	SegmentFlight   SegmentType = "FLIGHT"
	SegmentHotel    SegmentType = "HOTEL"
	SegmentActivity SegmentType = "ACTIVITY"
	SegmentTransfer SegmentType = "TRANSFER"
	SegmentMeeting  SegmentType = "MEETING"
	SegmentCustom   SegmentType = "CUSTOM"
)

// SegmentStatus is the lifecycle state of a booked or proposed segment.
type SegmentStatus string

const (
	StatusConfirmed SegmentStatus = "CONFIRMED"
	StatusTentative SegmentStatus = "TENTATIVE"
	StatusCancelled SegmentStatus = "CANCELLED"
)

// ProvenanceSource records who introduced a segment.
type ProvenanceSource string

const (
	SourceImport ProvenanceSource = "import"
	SourceUser   ProvenanceSource = "user"
	SourceAgent  ProvenanceSource = "agent"
)

// Provenance tracks where a segment (or field) came from.
type Provenance struct {
	Source        ProvenanceSource `json:"source"`
	Model         string           `json:"model,omitempty"`
	Confidence    float64          `json:"confidence,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
	SourceDetails string           `json:"sourceDetails,omitempty"`
}

// Airline identifies a carrier.
type Airline struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Airport identifies a flight endpoint.
type Airport struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// FlightDetails holds flight-variant fields.
type FlightDetails struct {
	Airline      Airline `json:"airline"`
	FlightNumber string  `json:"flightNumber"`
	Origin       Airport `json:"origin"`
	Destination  Airport `json:"destination"`
	CabinClass   string  `json:"cabinClass,omitempty"`
}

// HotelLocation is a hotel's city/country.
type HotelLocation struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// HotelDetails holds hotel-variant fields.
type HotelDetails struct {
	Property  string        `json:"property"`
	Location  HotelLocation `json:"location"`
	CheckIn   time.Time     `json:"checkIn"`
	CheckOut  time.Time     `json:"checkOut"`
	Rooms     int           `json:"rooms,omitempty"`
	RoomType  string        `json:"roomType,omitempty"`
}

// ActivityDetails holds activity-variant fields.
type ActivityDetails struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Category string `json:"category,omitempty"`
}

// TransferType enumerates ground-transfer kinds.
type TransferType string

const (
	TransferPrivate TransferType = "PRIVATE"
	TransferShuttle TransferType = "SHUTTLE"
	TransferTaxi    TransferType = "TAXI"
	TransferRental  TransferType = "RENTAL"
)

// TransferDetails holds transfer-variant fields.
type TransferDetails struct {
	TransferType TransferType `json:"transferType"`
	Pickup       string       `json:"pickup"`
	Dropoff      string       `json:"dropoff"`
}

// MeetingDetails holds meeting-variant fields.
type MeetingDetails struct {
	Title     string   `json:"title"`
	Location  string   `json:"location,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
}

// CustomDetails holds free-form custom-segment fields.
type CustomDetails struct {
	Title string                 `json:"title"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Segment is one atomic itinerary item. Exactly one of the *Details
// pointers is populated, matching Type.
type Segment struct {
	ID               string        `json:"id"`
	Type             SegmentType   `json:"type"`
	Status           SegmentStatus `json:"status"`
	StartDatetime    time.Time     `json:"startDatetime"`
	EndDatetime      time.Time     `json:"endDatetime"`
	TravelerIDs      []string      `json:"travelerIds,omitempty"`
	ConfirmationNo   string        `json:"confirmationNumber,omitempty"`
	Price            *Price        `json:"price,omitempty"`
	Provenance       Provenance    `json:"provenance"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	Inferred         bool          `json:"inferred,omitempty"`
	InferredReason   string        `json:"inferredReason,omitempty"`

	Flight   *FlightDetails   `json:"flight,omitempty"`
	Hotel    *HotelDetails    `json:"hotel,omitempty"`
	Activity *ActivityDetails `json:"activity,omitempty"`
	Transfer *TransferDetails `json:"transfer,omitempty"`
	Meeting  *MeetingDetails  `json:"meeting,omitempty"`
	Custom   *CustomDetails   `json:"custom,omitempty"`
}

// Price is a monetary amount.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Duration returns the segment's end-minus-start interval.
func (s *Segment) Duration() time.Duration {
	return s.EndDatetime.Sub(s.StartDatetime)
}

// Shift moves a segment's start/end by delta, preserving duration.
func (s *Segment) Shift(delta time.Duration) {
	s.StartDatetime = s.StartDatetime.Add(delta)
	s.EndDatetime = s.EndDatetime.Add(delta)
}

// TravelerType enumerates traveler categories.
type TravelerType string

const (
	TravelerAdult  TravelerType = "ADULT"
	TravelerChild  TravelerType = "CHILD"
	TravelerInfant TravelerType = "INFANT"
	TravelerSenior TravelerType = "SENIOR"
)

// TravelerMetadata carries optional relationship/primary flags.
type TravelerMetadata struct {
	Relationship string `json:"relationship,omitempty"`
	IsPrimary    bool   `json:"isPrimary,omitempty"`
}

// Traveler is one person named on the itinerary.
type Traveler struct {
	ID          string           `json:"id"`
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName,omitempty"`
	MiddleName  string           `json:"middleName,omitempty"`
	Type        TravelerType     `json:"type"`
	Email       string           `json:"email,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	DateOfBirth *time.Time       `json:"dateOfBirth,omitempty"`
	Age         int              `json:"age,omitempty"`
	Metadata    TravelerMetadata `json:"metadata,omitempty"`
}

// BudgetPeriod enumerates how a budget amount should be interpreted.
type BudgetPeriod string

const (
	BudgetPerDay    BudgetPeriod = "per_day"
	BudgetPerPerson BudgetPeriod = "per_person"
	BudgetTotal     BudgetPeriod = "total"
)

// Budget describes a trip budget constraint.
type Budget struct {
	Amount   float64      `json:"amount"`
	Currency string       `json:"currency"`
	Period   BudgetPeriod `json:"period"`
}

// TravelStyle enumerates the traveler's preferred comfort tier.
type TravelStyle string

const (
	StyleLuxury     TravelStyle = "luxury"
	StyleModerate   TravelStyle = "moderate"
	StyleBudget     TravelStyle = "budget"
	StyleBackpacker TravelStyle = "backpacker"
)

// Pace enumerates the traveler's preferred daily activity density.
type Pace string

const (
	PacePacked     Pace = "packed"
	PaceBalanced   Pace = "balanced"
	PaceLeisurely  Pace = "leisurely"
)

// TripPreferences captures everything the discovery phase elicits.
type TripPreferences struct {
	TravelerType          string      `json:"travelerType,omitempty"`
	TripPurpose           string      `json:"tripPurpose,omitempty"`
	Budget                *Budget     `json:"budget,omitempty"`
	TravelStyle           TravelStyle `json:"travelStyle,omitempty"`
	Pace                  Pace        `json:"pace,omitempty"`
	Interests             []string    `json:"interests,omitempty"`
	BudgetFlexibility     int         `json:"budgetFlexibility,omitempty"`
	DietaryRestrictions   []string    `json:"dietaryRestrictions,omitempty"`
	MobilityRestrictions  []string    `json:"mobilityRestrictions,omitempty"`
	Origin                string      `json:"origin,omitempty"`
	AccommodationPreference string    `json:"accommodationPreference,omitempty"`
	ActivityPreferences   []string    `json:"activityPreferences,omitempty"`
	Avoidances            []string    `json:"avoidances,omitempty"`
}

// Destination is an explicit trip destination.
type Destination struct {
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// Itinerary is the aggregate root: one trip, owned by one user.
type Itinerary struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	StartDate    *time.Time      `json:"startDate,omitempty"`
	EndDate      *time.Time      `json:"endDate,omitempty"`
	Destinations []Destination   `json:"destinations,omitempty"`
	Travelers    []Traveler      `json:"travelers,omitempty"`
	Preferences  TripPreferences `json:"preferences"`
	Segments     []Segment       `json:"segments,omitempty"`
	OwnerID      string          `json:"ownerId"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Version      int             `json:"version"`
}

// SortedSegments returns a copy of Segments ordered by StartDatetime, as
// required for display, continuity, and summarization (chronological,
// not insertion order).
func (it *Itinerary) SortedSegments() []Segment {
	out := make([]Segment, len(it.Segments))
	copy(out, it.Segments)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDatetime.Before(out[j].StartDatetime)
	})
	return out
}

// FindSegment returns a pointer into it.Segments for the given id.
func (it *Itinerary) FindSegment(id string) (*Segment, int) {
	for i := range it.Segments {
		if it.Segments[i].ID == id {
			return &it.Segments[i], i
		}
	}
	return nil, -1
}

// Clone returns a copy of the itinerary, used by the executor so a
// mutation can be validated before it is committed. The destination,
// traveler and segment slices, segment traveler ids and metadata, the
// flight, hotel and activity details, and the interests list are
// copied; transfer, meeting and custom details, pointer fields inside
// travelers, the budget and the other preference lists are shared with
// the original.
func (it *Itinerary) Clone() *Itinerary {
	clone := *it
	clone.Destinations = append([]Destination(nil), it.Destinations...)
	clone.Travelers = append([]Traveler(nil), it.Travelers...)
	clone.Segments = make([]Segment, len(it.Segments))
	for i, seg := range it.Segments {
		clone.Segments[i] = seg
		clone.Segments[i].TravelerIDs = append([]string(nil), seg.TravelerIDs...)
		if seg.Metadata != nil {
			md := make(map[string]interface{}, len(seg.Metadata))
			for k, v := range seg.Metadata {
				md[k] = v
			}
			clone.Segments[i].Metadata = md
		}
		if seg.Flight != nil {
			f := *seg.Flight
			clone.Segments[i].Flight = &f
		}
		if seg.Hotel != nil {
			h := *seg.Hotel
			clone.Segments[i].Hotel = &h
		}
		if seg.Activity != nil {
			a := *seg.Activity
			clone.Segments[i].Activity = &a
		}
	}
	if it.Preferences.Interests != nil {
		clone.Preferences.Interests = append([]string(nil), it.Preferences.Interests...)
	}
	return &clone
}

// Validate enforces the aggregate-level invariants:
// segment ids are unique, start<=end per segment, and segment datetimes
// fall within the itinerary's [start, end] window when both are set.
func (it *Itinerary) Validate() error {
	seen := make(map[string]bool, len(it.Segments))
	for _, seg := range it.Segments {
		if seg.ID == "" {
			return fmt.Errorf("segment missing id")
		}
		if seen[seg.ID] {
			return fmt.Errorf("duplicate segment id: %s", seg.ID)
		}
		seen[seg.ID] = true

		if seg.EndDatetime.Before(seg.StartDatetime) {
			return fmt.Errorf("segment %s: end before start", seg.ID)
		}

		if it.StartDate != nil && it.EndDate != nil {
			if seg.StartDatetime.Before(*it.StartDate) || seg.EndDatetime.After(*it.EndDate) {
				return fmt.Errorf("segment %s: outside itinerary date bounds", seg.ID)
			}
		}

		if err := validateVariant(&seg); err != nil {
			return fmt.Errorf("segment %s: %w", seg.ID, err)
		}
	}

	primaryCount := 0
	for _, tr := range it.Travelers {
		if tr.Metadata.IsPrimary {
			primaryCount++
		}
	}
	if primaryCount > 1 {
		return fmt.Errorf("more than one primary traveler")
	}

	return nil
}

func validateVariant(seg *Segment) error {
	switch seg.Type {
	case SegmentFlight:
		if seg.Flight == nil {
			return fmt.Errorf("flight segment missing flight details")
		}
	case SegmentHotel:
		if seg.Hotel == nil {
			return fmt.Errorf("hotel segment missing hotel details")
		}
	case SegmentActivity:
		if seg.Activity == nil {
			return fmt.Errorf("activity segment missing activity details")
		}
	case SegmentTransfer:
		if seg.Transfer == nil {
			return fmt.Errorf("transfer segment missing transfer details")
		}
	case SegmentMeeting:
		if seg.Meeting == nil {
			return fmt.Errorf("meeting segment missing meeting details")
		}
	case SegmentCustom:
		if seg.Custom == nil {
			return fmt.Errorf("custom segment missing custom details")
		}
	default:
		return fmt.Errorf("unknown segment type: %s", seg.Type)
	}
	return nil
}

// DestinationsOrFallback returns the explicit destination list, or — if
// empty — destinations derived from flight/hotel segments, deduped by
// city/airport code.
func (it *Itinerary) DestinationsOrFallback() []Destination {
	if len(it.Destinations) > 0 {
		return it.Destinations
	}

	seen := make(map[string]bool)
	var derived []Destination
	for _, seg := range it.SortedSegments() {
		switch seg.Type {
		case SegmentFlight:
			if seg.Flight == nil {
				continue
			}
			key := seg.Flight.Destination.Code
			if key == "" {
				key = seg.Flight.Destination.Name
			}
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			derived = append(derived, Destination{Name: seg.Flight.Destination.Name})
		case SegmentHotel:
			if seg.Hotel == nil {
				continue
			}
			key := seg.Hotel.Location.City
			if key == "" {
				key = seg.Hotel.Property
			}
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			derived = append(derived, Destination{
				Name:    seg.Hotel.Location.City,
				City:    seg.Hotel.Location.City,
				Country: seg.Hotel.Location.Country,
			})
		}
	}
	return derived
}
