package domain

import "time"

// HomeLabel is the display label used for the home base in transit titles.
const HomeLabel = "Home"

// TransitSegment is a synthesised travel block between two stops.
type TransitSegment struct {
	// ID is generated freshly for every synthesis run.
	ID string

	// Title is "<origin label> > <destination label>".
	Title string

	// Origin and Destination are address strings.
	Origin      string
	Destination string

	// Start and End bound the travel block.
	Start time.Time
	End   time.Time

	// Date is the YYYY-MM-DD calendar date of Start.
	Date string

	// CreatedAt is when the segment was persisted.
	CreatedAt time.Time
}

// Duration returns the length of the segment.
func (s TransitSegment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// TimeAnchor says whether a transit lookup time is the arrival or the departure.
type TimeAnchor int

const (
	// ArriveBy anchors the lookup on the arrival time (outbound legs).
	ArriveBy TimeAnchor = iota
	// DepartAt anchors the lookup on the departure time (return-home legs).
	DepartAt
)

// String returns the anchor name.
func (a TimeAnchor) String() string {
	switch a {
	case ArriveBy:
		return "arrive-by"
	case DepartAt:
		return "depart-at"
	default:
		return "unknown"
	}
}
