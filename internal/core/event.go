package core

// Kind identifies which record type a Record is.
type Kind int

const (
	KindPerformer Kind = iota
	KindVenue
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindPerformer:
		return "performer"
	case KindVenue:
		return "venue"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Record is implemented by the pointer types of every persisted entity.
// Save takes records by pointer so that assigned IDs land on the caller's value.
type Record interface {
	Kind() Kind
}

// Performer is an artist or act.
type Performer struct {
	// Assigned by the store on first save, zero before that
	ID    int64
	Name  string
	Genre string
}

func (*Performer) Kind() Kind { return KindPerformer }

// Venue is a physical place events happen at.
type Venue struct {
	ID   int64
	Name string
	// Always "<City>, <ST>" once normalized
	Location string
}

func (*Venue) Kind() Kind { return KindVenue }

// DatePlaceholder is shown instead of a missing event date.
const DatePlaceholder = "n/a"

// Event links one performer and one venue, optionally on a date.
type Event struct {
	ID          int64
	PerformerID int64
	VenueID     int64
	// YYYY-MM-DD, nil when unscheduled
	Date *string

	// Optional references. When set, Save takes the IDs from them, which lets a
	// single Save create a performer, a venue and their events together.
	Performer *Performer
	Venue     *Venue
}

func (*Event) Kind() Kind { return KindEvent }

// DateOrPlaceholder returns the raw date or DatePlaceholder when unscheduled.
func (e Event) DateOrPlaceholder() string {
	if e.Date == nil {
		return DatePlaceholder
	}
	return *e.Date
}

// StringPtr returns a pointer to s. Handy for building dates in literals.
func StringPtr(s string) *string {
	return &s
}
