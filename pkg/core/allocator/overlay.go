package allocator

import (
	"fmt"
	"slices"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

// RiderStatus is a rider's standing on a route for one calendar date
type RiderStatus string

const (
	StatusRegularPresent   RiderStatus = "regular_present"
	StatusRemovedByOverlay RiderStatus = "removed_by_overlay"
	StatusAddedByOverlay   RiderStatus = "added_by_overlay"
	StatusAbsent           RiderStatus = "absent"
)

// weekdayForDate parses an ISO date and resolves its work-week day.
// ok is false for Friday and Saturday.
func weekdayForDate(date string) (weekday model.Weekday, ok bool, err error) {
	t, err := model.ParseDate(date)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	weekday, ok = model.WeekdayOf(t)
	return weekday, ok, nil
}

// StatusFor reports where a rider stands on the route for the given date
func StatusFor(route model.Route, overlays []model.OverlayEntry, date, riderID string) (RiderStatus, error) {
	weekday, ok, err := weekdayForDate(date)
	if err != nil {
		return "", err
	}
	if !ok || !route.RunsOn(weekday) {
		return StatusAbsent, nil
	}

	forDate := OverlaysForDate(overlays, date)
	entryIdx := slices.IndexFunc(forDate, func(e model.OverlayEntry) bool {
		return e.ID == riderID
	})

	if isRegularOn(route, riderID, weekday) {
		if entryIdx >= 0 && forDate[entryIdx].Type == model.OverlayRemoval {
			return StatusRemovedByOverlay, nil
		}
		return StatusRegularPresent, nil
	}

	if entryIdx >= 0 && forDate[entryIdx].Type == model.OverlayAddition {
		return StatusAddedByOverlay, nil
	}

	return StatusAbsent, nil
}

// ReserveAddition lets a rider travel on the route for one date without touching the regular roster.
//
// Any earlier entry for the same rider and date is superseded. A regular rider who had been
// removed for that date gets the removal cancelled rather than an addition written.
// Fails with ErrRouteNotOperating if the route doesn't run that day and with
// ErrCapacityExceeded if there aren't enough free seats. The input slice is never modified.
func ReserveAddition(route model.Route, overlays []model.OverlayEntry, date string, rider model.Rider, caps Capacities) ([]model.OverlayEntry, error) {
	weekday, ok, err := weekdayForDate(date)
	if err != nil {
		return nil, err
	}
	if !ok || !route.RunsOn(weekday) {
		return nil, fmt.Errorf("%w: route %s on %s", ErrRouteNotOperating, route.ID, date)
	}

	// Drop any prior entry for this rider and date
	remaining := withoutRiderEntry(overlays, date, rider.ID)
	seatsNeeded := model.SeatsFor(rider.HasCaregiver)

	regular := isRegularOn(route, rider.ID, weekday)

	// A regular rider's seat is only free while their removal stands, so check against
	// the current overlays; anyone else is checked with their prior entry dropped.
	checkAgainst := remaining
	if regular {
		checkAgainst = overlays
	}

	available, err := AvailableSeatsForDate(route, OverlaysForDate(checkAgainst, date), weekday, caps)
	if err != nil {
		return nil, err
	}

	if regular {
		status, err := StatusFor(route, overlays, date, rider.ID)
		if err != nil {
			return nil, err
		}
		if status == StatusRemovedByOverlay && available < seatsNeeded {
			return nil, &CapacityError{RouteID: route.ID, Day: date, Needed: seatsNeeded, Available: available}
		}
		// Cancelling the removal restores the regular seat
		return remaining, nil
	}

	if available < seatsNeeded {
		return nil, &CapacityError{RouteID: route.ID, Day: date, Needed: seatsNeeded, Available: available}
	}

	return append(remaining, model.OverlayEntry{
		ID:           rider.ID,
		Name:         rider.Name,
		HasCaregiver: rider.HasCaregiver,
		Date:         date,
		Type:         model.OverlayAddition,
	}), nil
}

// ReserveRemoval stops a rider travelling on the route for one date.
//
// A regular rider gets a removal entry (superseding any earlier entry).
// A rider present only through an addition has that addition deleted; no removal is written.
// A rider who isn't travelling anyway is left as is.
func ReserveRemoval(route model.Route, overlays []model.OverlayEntry, date, riderID string) ([]model.OverlayEntry, error) {
	weekday, ok, err := weekdayForDate(date)
	if err != nil {
		return nil, err
	}

	remaining := withoutRiderEntry(overlays, date, riderID)

	if !ok || !isRegularOn(route, riderID, weekday) || !route.RunsOn(weekday) {
		// Absence is the default; removing the addition (if any) is enough
		return remaining, nil
	}

	var name string
	var hasCaregiver bool
	if idx := route.FindPassenger(riderID); idx >= 0 {
		name = route.Passengers[idx].Name
		hasCaregiver = route.Passengers[idx].HasCaregiver
	}

	return append(remaining, model.OverlayEntry{
		ID:           riderID,
		Name:         name,
		HasCaregiver: hasCaregiver,
		Date:         date,
		Type:         model.OverlayRemoval,
	}), nil
}

// isRegularOn returns true if the rider is on the regular roster for that weekday
func isRegularOn(route model.Route, riderID string, weekday model.Weekday) bool {
	idx := route.FindPassenger(riderID)
	return idx >= 0 && route.Passengers[idx].RidesOn(weekday)
}

// withoutRiderEntry copies the overlay list without the rider's entries for the date
func withoutRiderEntry(overlays []model.OverlayEntry, date, riderID string) []model.OverlayEntry {
	remaining := make([]model.OverlayEntry, 0, len(overlays)+1)
	for _, e := range overlays {
		if e.Date == date && e.ID == riderID {
			continue
		}
		remaining = append(remaining, e)
	}
	return remaining
}
