package allocator

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned for route types with no configured capacity
	ErrConfiguration = errors.New("configuration error")

	// ErrRouteNotOperating is returned when a reservation targets a day the route doesn't run
	ErrRouteNotOperating = errors.New("route does not operate on that day")

	// ErrCapacityExceeded is returned when there aren't enough free seats
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrNotFound is returned when a required route, rider or entry doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidDate is returned for dates that aren't ISO calendar dates
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidInput is returned when a request fails validation
	ErrInvalidInput = errors.New("invalid input")
)

// CapacityError describes a rejected seat request
type CapacityError struct {
	RouteID   string
	Day       string
	Needed    int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("route %s on %s: %d seats needed but %d available", e.RouteID, e.Day, e.Needed, e.Available)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// UserMessage maps an error to the message shown to staff.
// Zero-match, capacity and day-mismatch failures get distinct messages.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCapacityExceeded):
		return "No seats available"
	case errors.Is(err, ErrRouteNotOperating):
		return "The route doesn't operate on that day"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrInvalidDate):
		return "Invalid date"
	case errors.Is(err, ErrInvalidInput):
		return "Invalid input"
	case errors.Is(err, ErrConfiguration):
		return "Unsupported route type"
	default:
		return "Something went wrong"
	}
}

// NoMatchMessage is shown when matching returns no candidate routes
const NoMatchMessage = "No matching route"
