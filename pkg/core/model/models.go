package model

import (
	"fmt"
	"slices"
	"time"
)

// DateLayout is the ISO calendar date format used for overlay dates and date records
const DateLayout = "2006-01-02"

type Weekday string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
)

// WorkWeek lists the days the centre operates, in order
var WorkWeek = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday}

func (d Weekday) IsValid() bool {
	return slices.Contains(WorkWeek, d)
}

// WeekdayOf returns the work-week day for t. Returns false for Friday and Saturday.
func WeekdayOf(t time.Time) (Weekday, bool) {
	d := Weekday(t.Weekday().String())
	if !d.IsValid() {
		return "", false
	}
	return d, true
}

// ParseDate parses an ISO calendar date (2006-01-02)
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

type RouteType string

const (
	RouteTypeTaxi    RouteType = "Taxi"
	RouteTypeMinibus RouteType = "Minibus"

	// TransportPrivate marks riders who arrive by their own means
	TransportPrivate = "private"
)

// Route is a scheduled transport unit (a "transport" document)
type Route struct {
	ID         string      `json:"id"`
	Type       RouteType   `json:"type" validate:"required"`
	Days       []Weekday   `json:"days" validate:"required,min=1,dive,weekday"`
	Cities     []string    `json:"cities" validate:"required,min=1,dive,required"`
	Passengers []Passenger `json:"passengers"`

	// AvailableSeats is derived from Passengers, Days and Type.
	// It is recomputed on every roster change and never treated as authoritative.
	AvailableSeats map[Weekday]int `json:"availableSeats"`

	// Revision is the optimistic-lock stamp of the stored document
	Revision string `json:"revision,omitempty"`
}

// RunsOn returns true if the route operates on the given weekday
func (r *Route) RunsOn(day Weekday) bool {
	return slices.Contains(r.Days, day)
}

// Serves returns true if the city is on the route
func (r *Route) Serves(city string) bool {
	return slices.Contains(r.Cities, city)
}

// FindPassenger returns the index of the passenger with the given rider ID, or -1
func (r *Route) FindPassenger(riderID string) int {
	return slices.IndexFunc(r.Passengers, func(p Passenger) bool {
		return p.ID == riderID
	})
}

// Clone returns a deep copy of the route so callers can mutate it freely
func (r Route) Clone() Route {
	clone := r
	clone.Days = slices.Clone(r.Days)
	clone.Cities = slices.Clone(r.Cities)
	clone.Passengers = make([]Passenger, len(r.Passengers))
	for i, p := range r.Passengers {
		clone.Passengers[i] = p
		clone.Passengers[i].ArrivalDays = slices.Clone(p.ArrivalDays)
	}
	if r.AvailableSeats != nil {
		clone.AvailableSeats = make(map[Weekday]int, len(r.AvailableSeats))
		for day, seats := range r.AvailableSeats {
			clone.AvailableSeats[day] = seats
		}
	}
	return clone
}

// Passenger is a regular (weekly) roster entry on a route
type Passenger struct {
	ID           string    `json:"id" validate:"required"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	HasCaregiver bool      `json:"hasCaregiver"`
	ArrivalDays  []Weekday `json:"arrivalDays" validate:"dive,weekday"`
}

// Seats returns the number of seats the passenger occupies
func (p Passenger) Seats() int {
	return SeatsFor(p.HasCaregiver)
}

// RidesOn returns true if the passenger travels on the given weekday
func (p Passenger) RidesOn(day Weekday) bool {
	return slices.Contains(p.ArrivalDays, day)
}

// SeatsFor returns 2 seats for a rider with a caregiver, 1 otherwise
func SeatsFor(hasCaregiver bool) int {
	if hasCaregiver {
		return 2
	}
	return 1
}

type OverlayType string

const (
	OverlayAddition OverlayType = "addition"
	OverlayRemoval  OverlayType = "removal"
)

func (t OverlayType) IsValid() bool {
	return t == OverlayAddition || t == OverlayRemoval
}

// OverlayEntry is a single-date exception on top of a route's regular roster
type OverlayEntry struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	HasCaregiver bool        `json:"hasCaregiver"`
	Date         string      `json:"date"`
	Type         OverlayType `json:"type"`
}

// RouteOverlay holds one route's temporary reservations inside a date record
type RouteOverlay struct {
	RouteID          string         `json:"routeId"`
	TempReservations []OverlayEntry `json:"tempReservations"`
}

// DateRecord holds the overlay entries of every route for one calendar date
type DateRecord struct {
	Date     string         `json:"date"`
	Routes   []RouteOverlay `json:"routes"`
	Revision string         `json:"revision,omitempty"`
}

// EntriesFor returns the overlay entries for a route (nil if the route has none)
func (d *DateRecord) EntriesFor(routeID string) []OverlayEntry {
	for _, ro := range d.Routes {
		if ro.RouteID == routeID {
			return ro.TempReservations
		}
	}
	return nil
}

// SetEntries replaces a route's overlay entries, adding the route if needed.
// Routes left with no entries are dropped from the record.
func (d *DateRecord) SetEntries(routeID string, entries []OverlayEntry) {
	idx := slices.IndexFunc(d.Routes, func(ro RouteOverlay) bool {
		return ro.RouteID == routeID
	})

	switch {
	case idx == -1 && len(entries) > 0:
		d.Routes = append(d.Routes, RouteOverlay{RouteID: routeID, TempReservations: entries})
	case idx >= 0 && len(entries) == 0:
		d.Routes = slices.Delete(d.Routes, idx, idx+1)
	case idx >= 0:
		d.Routes[idx].TempReservations = entries
	}
}

// Rider is a rider profile. Owned by the profiles subsystem; read-only here.
type Rider struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	Transport    string    `json:"transport"` // route type, "private" or empty
	ArrivalDays  []Weekday `json:"arrivalDays"`
	HasCaregiver bool      `json:"hasCaregiver"`
}

// NeedsTransport returns false for private transport or an unset preference
func (r Rider) NeedsTransport() bool {
	return r.Transport != "" && r.Transport != TransportPrivate
}

// AsPassenger builds a regular roster entry from the profile
func (r Rider) AsPassenger() Passenger {
	return Passenger{
		ID:           r.ID,
		Name:         r.Name,
		Phone:        r.Phone,
		City:         r.City,
		HasCaregiver: r.HasCaregiver,
		ArrivalDays:  slices.Clone(r.ArrivalDays),
	}
}
