package allocator

import (
	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

// SeatsUsed sums the seats taken by a passenger list (2 per rider with a caregiver)
func SeatsUsed(passengers []model.Passenger) int {
	used := 0
	for _, p := range passengers {
		used += p.Seats()
	}
	return used
}

// AvailableSeatsByWeekday computes the regular (non-overlay) free seats for each day the route runs
func AvailableSeatsByWeekday(route model.Route, caps Capacities) (map[model.Weekday]int, error) {
	return availableSeatsExcluding(route, "", caps)
}

// availableSeatsExcluding is AvailableSeatsByWeekday ignoring one rider's own seat.
// Used when re-matching a rider so they don't block their own slot.
func availableSeatsExcluding(route model.Route, excludeRiderID string, caps Capacities) (map[model.Weekday]int, error) {
	capacity, err := caps.CapacityFor(route.Type)
	if err != nil {
		return nil, err
	}

	available := make(map[model.Weekday]int, len(route.Days))
	for _, day := range route.Days {
		used := 0
		for _, p := range route.Passengers {
			if excludeRiderID != "" && p.ID == excludeRiderID {
				continue
			}
			if p.RidesOn(day) {
				used += p.Seats()
			}
		}
		available[day] = capacity - used
	}

	return available, nil
}

// OverlaysForDate filters a route's overlay entries to those for one date
func OverlaysForDate(entries []model.OverlayEntry, date string) []model.OverlayEntry {
	filtered := make([]model.OverlayEntry, 0)
	for _, e := range entries {
		if e.Date == date {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// EffectivePassengersForDate applies a date's overlays to the regular roster:
//  1. regular passengers riding on weekday
//  2. minus riders with a removal entry
//  3. plus addition entries not already present
//
// Regular passengers come first, then additions. Each rider appears once.
// A route that doesn't run on weekday has no passengers, whatever the overlays say.
func EffectivePassengersForDate(route model.Route, overlays []model.OverlayEntry, weekday model.Weekday) []model.Passenger {
	effective := make([]model.Passenger, 0)
	if !route.RunsOn(weekday) {
		return effective
	}

	removed := make(map[string]bool)
	for _, e := range overlays {
		if e.Type == model.OverlayRemoval {
			removed[e.ID] = true
		}
	}

	present := make(map[string]bool)
	for _, p := range route.Passengers {
		if !p.RidesOn(weekday) || removed[p.ID] || present[p.ID] {
			continue
		}
		present[p.ID] = true
		effective = append(effective, p)
	}

	for _, e := range overlays {
		if e.Type != model.OverlayAddition || present[e.ID] {
			continue
		}
		present[e.ID] = true
		effective = append(effective, model.Passenger{
			ID:           e.ID,
			Name:         e.Name,
			HasCaregiver: e.HasCaregiver,
			ArrivalDays:  []model.Weekday{weekday},
		})
	}

	return effective
}

// AvailableSeatsForDate returns the free seats on a specific date after overlays.
// Returns 0 when the route doesn't run on weekday; that is a closed day, not an error.
func AvailableSeatsForDate(route model.Route, overlays []model.OverlayEntry, weekday model.Weekday, caps Capacities) (int, error) {
	capacity, err := caps.CapacityFor(route.Type)
	if err != nil {
		return 0, err
	}

	if !route.RunsOn(weekday) {
		return 0, nil
	}

	return capacity - SeatsUsed(EffectivePassengersForDate(route, overlays, weekday)), nil
}
