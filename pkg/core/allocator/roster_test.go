package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

func TestAssignRider_Appends(t *testing.T) {
	route := taxiRoute(passenger("1", false, model.Sunday))

	updated, err := AssignRider(route, passenger("2", true, model.Sunday, model.Tuesday), DefaultCapacities)
	require.NoError(t, err)

	require.Len(t, updated.Passengers, 2)
	assert.Equal(t, "2", updated.Passengers[1].ID)
	assert.Equal(t, 1, updated.AvailableSeats[model.Sunday])
	assert.Equal(t, 2, updated.AvailableSeats[model.Tuesday])

	// Input is untouched
	assert.Len(t, route.Passengers, 1)
	assert.Nil(t, route.AvailableSeats)
}

func TestAssignRider_ReplacesExistingEntry(t *testing.T) {
	original := passenger("1", false, model.Sunday)
	original.Phone = "050-1234567"
	route := taxiRoute(original)

	// Same rider now needs a caregiver and rides Tuesday too; blank phone keeps the old one
	incoming := model.Passenger{
		ID:           "1",
		Name:         "Renamed",
		HasCaregiver: true,
		ArrivalDays:  []model.Weekday{model.Sunday, model.Tuesday},
	}

	updated, err := AssignRider(route, incoming, DefaultCapacities)
	require.NoError(t, err)

	require.Len(t, updated.Passengers, 1)
	p := updated.Passengers[0]
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, "050-1234567", p.Phone)
	assert.Equal(t, "CityX", p.City)
	assert.True(t, p.HasCaregiver)
	assert.Equal(t, 2, updated.AvailableSeats[model.Sunday])
	assert.Equal(t, 2, updated.AvailableSeats[model.Tuesday])
}

func TestAssignRider_DoesNotCheckCapacity(t *testing.T) {
	route := taxiRoute(
		passenger("1", true, model.Sunday),
		passenger("2", true, model.Sunday),
	)

	updated, err := AssignRider(route, passenger("3", false, model.Sunday), DefaultCapacities)
	require.NoError(t, err)
	assert.Equal(t, -1, updated.AvailableSeats[model.Sunday])
}

func TestRemoveRider_Idempotent(t *testing.T) {
	route := taxiRoute(
		passenger("1", false, model.Sunday),
		passenger("2", false, model.Sunday),
	)

	once, err := RemoveRider(route, "1", DefaultCapacities)
	require.NoError(t, err)
	twice, err := RemoveRider(once, "1", DefaultCapacities)
	require.NoError(t, err)

	assert.Equal(t, once.Passengers, twice.Passengers)
	assert.Equal(t, once.AvailableSeats, twice.AvailableSeats)
	assert.Equal(t, 3, twice.AvailableSeats[model.Sunday])
}

func TestRemoveRider_AbsentRiderIsNoOp(t *testing.T) {
	route := taxiRoute(passenger("1", false, model.Sunday))

	updated, err := RemoveRider(route, "missing", DefaultCapacities)
	require.NoError(t, err)
	assert.Equal(t, route.Passengers, updated.Passengers)
}

func TestAssignThenRemove_RoundTrip(t *testing.T) {
	route, err := RecomputeAvailability(taxiRoute(passenger("1", false, model.Sunday)), DefaultCapacities)
	require.NoError(t, err)
	before := route.AvailableSeats

	assigned, err := AssignRider(route, passenger("2", true, model.Sunday, model.Tuesday), DefaultCapacities)
	require.NoError(t, err)
	assert.NotEqual(t, before, assigned.AvailableSeats)

	removed, err := RemoveRider(assigned, "2", DefaultCapacities)
	require.NoError(t, err)
	assert.Equal(t, before, removed.AvailableSeats)
}

func TestRecomputeAvailability_AfterScheduleChange(t *testing.T) {
	route := taxiRoute(passenger("1", false, model.Sunday, model.Wednesday))
	route.Type = model.RouteTypeMinibus
	route.Days = []model.Weekday{model.Sunday, model.Wednesday}

	updated, err := RecomputeAvailability(route, DefaultCapacities)
	require.NoError(t, err)

	assert.Equal(t, map[model.Weekday]int{
		model.Sunday:    13,
		model.Wednesday: 13,
	}, updated.AvailableSeats)
}

func TestUpdateRiderFields(t *testing.T) {
	routeA := taxiRoute(passenger("1", false, model.Sunday), passenger("2", false, model.Sunday))
	routeA.ID = "A"
	routeB := taxiRoute(passenger("2", false, model.Tuesday))
	routeB.ID = "B"
	routeC := taxiRoute(passenger("3", false, model.Tuesday))
	routeC.ID = "C"

	newCity := "CityZ"
	caregiver := true
	patch := PassengerPatch{City: &newCity, HasCaregiver: &caregiver}

	updated, changed, err := UpdateRiderFields([]model.Route{routeA, routeB, routeC}, "2", patch, DefaultCapacities)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, changed)
	require.Len(t, updated, 3)

	assert.Equal(t, "CityZ", updated[0].Passengers[1].City)
	assert.True(t, updated[0].Passengers[1].HasCaregiver)
	assert.Equal(t, 1, updated[0].AvailableSeats[model.Sunday]) // 4 - (1 + 2)

	assert.True(t, updated[1].Passengers[0].HasCaregiver)
	assert.Equal(t, 2, updated[1].AvailableSeats[model.Tuesday])

	// Unaffected route is passed through
	assert.Equal(t, routeC, updated[2])

	// Inputs are untouched
	assert.Equal(t, "CityX", routeA.Passengers[1].City)
}

func TestUpdateRiderFields_EmptyPatch(t *testing.T) {
	route := taxiRoute(passenger("1", false, model.Sunday))

	_, changed, err := UpdateRiderFields([]model.Route{route}, "1", PassengerPatch{}, DefaultCapacities)
	require.NoError(t, err)
	assert.Empty(t, changed)
}
