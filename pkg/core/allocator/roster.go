package allocator

import (
	"slices"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

// RecomputeAvailability returns a copy of the route with AvailableSeats refreshed.
// Call it whenever passengers, days or type change.
func RecomputeAvailability(route model.Route, caps Capacities) (model.Route, error) {
	updated := route.Clone()
	available, err := AvailableSeatsByWeekday(updated, caps)
	if err != nil {
		return model.Route{}, err
	}
	updated.AvailableSeats = available
	return updated, nil
}

// AssignRider adds a passenger to the regular roster, or replaces their entry if already present.
//
// No capacity check happens here: callers match (or check availability) before assigning.
func AssignRider(route model.Route, passenger model.Passenger, caps Capacities) (model.Route, error) {
	updated := route.Clone()
	passenger.ArrivalDays = slices.Clone(passenger.ArrivalDays)

	if idx := updated.FindPassenger(passenger.ID); idx >= 0 {
		updated.Passengers[idx] = mergePassenger(updated.Passengers[idx], passenger)
	} else {
		updated.Passengers = append(updated.Passengers, passenger)
	}

	return RecomputeAvailability(updated, caps)
}

// mergePassenger overlays the incoming entry on the existing one, keeping
// existing contact details where the incoming entry leaves them blank
func mergePassenger(existing, incoming model.Passenger) model.Passenger {
	merged := incoming
	if merged.Name == "" {
		merged.Name = existing.Name
	}
	if merged.Phone == "" {
		merged.Phone = existing.Phone
	}
	if merged.City == "" {
		merged.City = existing.City
	}
	return merged
}

// RemoveRider drops a rider from the regular roster. Removing an absent rider is a no-op.
func RemoveRider(route model.Route, riderID string, caps Capacities) (model.Route, error) {
	updated := route.Clone()
	updated.Passengers = slices.DeleteFunc(updated.Passengers, func(p model.Passenger) bool {
		return p.ID == riderID
	})
	return RecomputeAvailability(updated, caps)
}

// PassengerPatch holds the profile fields to propagate onto roster entries.
// Nil fields are left unchanged.
type PassengerPatch struct {
	Name         *string
	Phone        *string
	City         *string
	HasCaregiver *bool
	ArrivalDays  []model.Weekday
}

// IsEmpty returns true if the patch changes nothing
func (p PassengerPatch) IsEmpty() bool {
	return p.Name == nil && p.Phone == nil && p.City == nil && p.HasCaregiver == nil && p.ArrivalDays == nil
}

func (p PassengerPatch) apply(passenger model.Passenger) model.Passenger {
	if p.Name != nil {
		passenger.Name = *p.Name
	}
	if p.Phone != nil {
		passenger.Phone = *p.Phone
	}
	if p.City != nil {
		passenger.City = *p.City
	}
	if p.HasCaregiver != nil {
		passenger.HasCaregiver = *p.HasCaregiver
	}
	if p.ArrivalDays != nil {
		passenger.ArrivalDays = slices.Clone(p.ArrivalDays)
	}
	return passenger
}

// UpdateRiderFields patches the rider's entry on every route that carries them.
// Returns all routes (updated where affected) and the IDs of the routes that changed.
func UpdateRiderFields(routes []model.Route, riderID string, patch PassengerPatch, caps Capacities) ([]model.Route, []string, error) {
	result := make([]model.Route, len(routes))
	changedIDs := make([]string, 0)

	for i, route := range routes {
		idx := route.FindPassenger(riderID)
		if idx < 0 || patch.IsEmpty() {
			result[i] = route
			continue
		}

		updated := route.Clone()
		updated.Passengers[idx] = patch.apply(updated.Passengers[idx])

		updated, err := RecomputeAvailability(updated, caps)
		if err != nil {
			return nil, nil, err
		}

		result[i] = updated
		changedIDs = append(changedIDs, route.ID)
	}

	return result, changedIDs, nil
}
