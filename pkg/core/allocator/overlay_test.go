package allocator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

const (
	sundayDate  = "2024-01-07"
	mondayDate  = "2024-01-08"
	tuesdayDate = "2024-01-09"
	fridayDate  = "2024-01-12"
)

func rider(id string, caregiver bool) model.Rider {
	return model.Rider{ID: id, Name: "Rider " + id, City: "CityX", HasCaregiver: caregiver}
}

func TestReserveAddition_AppendsEntry(t *testing.T) {
	route := taxiRoute(passenger("1", false, model.Sunday))

	overlays, err := ReserveAddition(route, nil, sundayDate, rider("2", true), DefaultCapacities)
	require.NoError(t, err)

	require.Len(t, overlays, 1)
	assert.Equal(t, model.OverlayEntry{
		ID:           "2",
		Name:         "Rider 2",
		HasCaregiver: true,
		Date:         sundayDate,
		Type:         model.OverlayAddition,
	}, overlays[0])

	// Regular roster is untouched
	assert.Len(t, route.Passengers, 1)

	status, err := StatusFor(route, overlays, sundayDate, "2")
	require.NoError(t, err)
	assert.Equal(t, StatusAddedByOverlay, status)
}

func TestReserveAddition_RouteNotOperating(t *testing.T) {
	route := taxiRoute()

	for _, date := range []string{mondayDate, fridayDate} {
		_, err := ReserveAddition(route, nil, date, rider("2", false), DefaultCapacities)
		assert.ErrorIs(t, err, ErrRouteNotOperating, date)
	}
}

func TestReserveAddition_InvalidDate(t *testing.T) {
	_, err := ReserveAddition(taxiRoute(), nil, "07/01/2024", rider("2", false), DefaultCapacities)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestReserveAddition_CapacityExceeded(t *testing.T) {
	route := taxiRoute(
		passenger("1", true, model.Sunday),
		passenger("2", false, model.Sunday),
	)
	existing := []model.OverlayEntry{
		{ID: "3", Date: sundayDate, Type: model.OverlayAddition},
	}

	// 4 - (2 + 1 + 1) = 0 seats left
	overlays, err := ReserveAddition(route, existing, sundayDate, rider("4", false), DefaultCapacities)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Nil(t, overlays)

	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 1, capErr.Needed)
	assert.Equal(t, 0, capErr.Available)

	// Input unchanged
	assert.Len(t, existing, 1)
}

func TestReserveAddition_CapacityInvariantHolds(t *testing.T) {
	route := taxiRoute(passenger("1", false, model.Sunday))
	var overlays []model.OverlayEntry
	var err error

	riders := []model.Rider{rider("2", true), rider("3", false), rider("4", false), rider("5", true)}
	accepted := 0
	for _, r := range riders {
		next, reserveErr := ReserveAddition(route, overlays, sundayDate, r, DefaultCapacities)
		if reserveErr != nil {
			assert.ErrorIs(t, reserveErr, ErrCapacityExceeded)
			continue
		}
		overlays = next
		accepted++

		used := SeatsUsed(EffectivePassengersForDate(route, overlays, model.Sunday))
		assert.LessOrEqual(t, used, 4)
	}

	assert.Equal(t, 2, accepted) // Riders 2 (two seats) and 3 fill the taxi
	available, err := AvailableSeatsForDate(route, overlays, model.Sunday, DefaultCapacities)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestReserveAddition_Supersedes(t *testing.T) {
	route := taxiRoute()

	overlays, err := ReserveAddition(route, nil, sundayDate, rider("2", false), DefaultCapacities)
	require.NoError(t, err)
	overlays, err = ReserveAddition(route, overlays, sundayDate, rider("2", false), DefaultCapacities)
	require.NoError(t, err)

	require.Len(t, overlays, 1)
	assert.Equal(t, model.OverlayAddition, overlays[0].Type)
}

func TestReserveAddition_SupersedingFreesOwnSeats(t *testing.T) {
	// Taxi with 2 regular seats used and rider 3 added without a caregiver
	route := taxiRoute(passenger("1", true, model.Sunday))
	existing := []model.OverlayEntry{
		{ID: "3", Date: sundayDate, Type: model.OverlayAddition},
	}

	// Rider 3 now needs a caregiver: their old seat is released before checking
	overlays, err := ReserveAddition(route, existing, sundayDate, rider("3", true), DefaultCapacities)
	require.NoError(t, err)
	require.Len(t, overlays, 1)
	assert.True(t, overlays[0].HasCaregiver)
}

func TestReserveAddition_RegularRiderCancelsRemoval(t *testing.T) {
	route := taxiRoute(passenger("1", false, model.Sunday))
	overlays := []model.OverlayEntry{
		{ID: "1", Date: sundayDate, Type: model.OverlayRemoval},
	}

	updated, err := ReserveAddition(route, overlays, sundayDate, rider("1", false), DefaultCapacities)
	require.NoError(t, err)
	assert.Empty(t, updated)

	status, err := StatusFor(route, updated, sundayDate, "1")
	require.NoError(t, err)
	assert.Equal(t, StatusRegularPresent, status)
}

func TestReserveAddition_RegularRiderSeatTaken(t *testing.T) {
	// Rider 1 was removed and additions have since filled the taxi
	route := taxiRoute(passenger("1", false, model.Sunday))
	overlays := []model.OverlayEntry{
		{ID: "1", Date: sundayDate, Type: model.OverlayRemoval},
		{ID: "2", Date: sundayDate, HasCaregiver: true, Type: model.OverlayAddition},
		{ID: "3", Date: sundayDate, HasCaregiver: true, Type: model.OverlayAddition},
	}

	_, err := ReserveAddition(route, overlays, sundayDate, rider("1", false), DefaultCapacities)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestReserveRemoval_RegularRider(t *testing.T) {
	route := taxiRoute(passenger("1", true, model.Sunday))

	overlays, err := ReserveRemoval(route, nil, sundayDate, "1")
	require.NoError(t, err)

	require.Len(t, overlays, 1)
	assert.Equal(t, model.OverlayRemoval, overlays[0].Type)
	assert.Equal(t, "Rider 1", overlays[0].Name)
	assert.True(t, overlays[0].HasCaregiver)

	// Regular roster is untouched
	require.Len(t, route.Passengers, 1)

	effective := EffectivePassengersForDate(route, overlays, model.Sunday)
	assert.Empty(t, effective)

	// A second removal supersedes the first
	overlays, err = ReserveRemoval(route, overlays, sundayDate, "1")
	require.NoError(t, err)
	assert.Len(t, overlays, 1)
}

func TestReserveRemoval_CancelsAddition(t *testing.T) {
	route := taxiRoute(passenger("1", false, model.Sunday))

	overlays, err := ReserveAddition(route, nil, sundayDate, rider("2", false), DefaultCapacities)
	require.NoError(t, err)
	require.Len(t, overlays, 1)

	overlays, err = ReserveRemoval(route, overlays, sundayDate, "2")
	require.NoError(t, err)

	// No removal marker: absence is the default
	assert.Empty(t, overlays)

	status, err := StatusFor(route, overlays, sundayDate, "2")
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, status)
}

func TestReserveRemoval_AbsentRiderIsNoOp(t *testing.T) {
	route := taxiRoute(passenger("1", false, model.Tuesday))
	existing := []model.OverlayEntry{
		{ID: "5", Date: sundayDate, Type: model.OverlayAddition},
	}

	// Rider 1 doesn't ride on Sundays
	overlays, err := ReserveRemoval(route, existing, sundayDate, "1")
	require.NoError(t, err)
	assert.Equal(t, existing, overlays)
}

func TestReserveRemoval_OnlyTouchesGivenDate(t *testing.T) {
	route := taxiRoute(passenger("1", false, model.Sunday, model.Tuesday))
	existing := []model.OverlayEntry{
		{ID: "1", Date: tuesdayDate, Type: model.OverlayRemoval},
	}

	overlays, err := ReserveRemoval(route, existing, sundayDate, "1")
	require.NoError(t, err)

	require.Len(t, overlays, 2)
	assert.Equal(t, tuesdayDate, overlays[0].Date)
	assert.Equal(t, sundayDate, overlays[1].Date)
}

func TestStatusFor(t *testing.T) {
	route := taxiRoute(
		passenger("1", false, model.Sunday),
		passenger("2", false, model.Sunday),
	)
	overlays := []model.OverlayEntry{
		{ID: "2", Date: sundayDate, Type: model.OverlayRemoval},
		{ID: "3", Date: sundayDate, Type: model.OverlayAddition},
	}

	tests := []struct {
		riderID  string
		date     string
		expected RiderStatus
	}{
		{"1", sundayDate, StatusRegularPresent},
		{"2", sundayDate, StatusRemovedByOverlay},
		{"3", sundayDate, StatusAddedByOverlay},
		{"4", sundayDate, StatusAbsent},
		{"1", mondayDate, StatusAbsent},
		{"1", tuesdayDate, StatusAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.riderID+"_"+tt.date, func(t *testing.T) {
			status, err := StatusFor(route, overlays, tt.date, tt.riderID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestUserMessage(t *testing.T) {
	capErr := &CapacityError{RouteID: "1", Day: sundayDate, Needed: 2, Available: 1}

	assert.Equal(t, "No seats available", UserMessage(capErr))
	assert.Equal(t, "The route doesn't operate on that day", UserMessage(ErrRouteNotOperating))
	assert.Equal(t, "Not found", UserMessage(ErrNotFound))
	assert.Equal(t, "Unsupported route type", UserMessage(ErrConfiguration))
	assert.Empty(t, UserMessage(nil))
	assert.NotEqual(t, NoMatchMessage, UserMessage(capErr))
}
