package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

var sundayTuesday = []model.Weekday{model.Sunday, model.Tuesday}

func TestFindRoutesForRider(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore(testRider("r1", "Taxi", false, sundayTuesday...))

	// Full on Sunday
	full := []model.Passenger{
		testRider("a", "Taxi", true, model.Sunday).AsPassenger(),
		testRider("b", "Taxi", true, model.Sunday).AsPassenger(),
	}
	seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday, full...)
	open := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday)
	seedRoute(t, store, model.RouteTypeMinibus, sundayTuesday)

	result, err := FindRoutesForRider(ctx, store, zap.NewNop(), DefaultOptions(), "r1")
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, open, result.Matches[0].ID)
	assert.Equal(t, allocator.OutcomeSingleMatch, result.Outcome)
}

func TestFindRoutesForRider_PrivateTransport(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore(testRider("r1", model.TransportPrivate, false, model.Sunday))
	seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday)

	result, err := FindRoutesForRider(ctx, store, zap.NewNop(), DefaultOptions(), "r1")
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Equal(t, allocator.OutcomeNoRoute, result.Outcome)
}

func TestFindRoutesForRider_UnknownRider(t *testing.T) {
	_, err := FindRoutesForRider(context.Background(), db.NewMemoryStore(), zap.NewNop(), DefaultOptions(), "missing")
	assert.ErrorIs(t, err, allocator.ErrNotFound)
}

func TestAssignRider(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore(testRider("r1", "Taxi", true, sundayTuesday...))
	id := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday)

	route, err := AssignRider(ctx, store, zap.NewNop(), DefaultOptions(), id, "r1")
	require.NoError(t, err)

	require.Len(t, route.Passengers, 1)
	assert.Equal(t, "Rider r1", route.Passengers[0].Name)
	assert.Equal(t, 2, route.AvailableSeats[model.Sunday])

	// Assigning again refreshes rather than double-booking
	route, err = AssignRider(ctx, store, zap.NewNop(), DefaultOptions(), id, "r1")
	require.NoError(t, err)
	assert.Len(t, route.Passengers, 1)
	assert.Equal(t, 2, route.AvailableSeats[model.Sunday])
}

func TestAssignRider_StoresOnlyDaysOnRoute(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore(testRider("r1", "Taxi", false, model.Sunday, model.Monday, model.Tuesday))
	id := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday)

	route, err := AssignRider(ctx, store, zap.NewNop(), DefaultOptions(), id, "r1")
	require.NoError(t, err)

	require.Len(t, route.Passengers, 1)
	assert.Equal(t, sundayTuesday, route.Passengers[0].ArrivalDays)

	stored, err := store.GetRoute(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, sundayTuesday, stored.Passengers[0].ArrivalDays)
	assert.Equal(t, 3, stored.AvailableSeats[model.Sunday])
}

func TestAssignRider_CapacityEnforced(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore(testRider("r1", "Taxi", true, model.Sunday))
	id := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday,
		testRider("a", "Taxi", true, model.Sunday).AsPassenger(),
		testRider("b", "Taxi", false, model.Sunday).AsPassenger(),
	)

	_, err := AssignRider(ctx, store, zap.NewNop(), DefaultOptions(), id, "r1")
	assert.ErrorIs(t, err, allocator.ErrCapacityExceeded)

	stored, err := store.GetRoute(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.Passengers, 2)

	opts := DefaultOptions()
	opts.AllowOverbooking = true
	route, err := AssignRider(ctx, store, zap.NewNop(), opts, id, "r1")
	require.NoError(t, err)
	assert.Equal(t, -1, route.AvailableSeats[model.Sunday])
}

func TestAssignRider_NoSharedDays(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore(testRider("r1", "Taxi", false, model.Thursday))
	id := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday)

	_, err := AssignRider(ctx, store, zap.NewNop(), DefaultOptions(), id, "r1")
	assert.ErrorIs(t, err, allocator.ErrRouteNotOperating)
}

func TestAssignRider_PrivateTransport(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore(testRider("r1", model.TransportPrivate, false, model.Sunday))
	id := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday)

	_, err := AssignRider(ctx, store, zap.NewNop(), DefaultOptions(), id, "r1")
	assert.ErrorIs(t, err, allocator.ErrInvalidInput)
}

func TestAutoAssignRider(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore(
		testRider("r1", "Taxi", false, model.Sunday),
		testRider("r2", "Minibus", false, model.Sunday),
	)
	taxi := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday)
	seedRoute(t, store, model.RouteTypeMinibus, sundayTuesday)
	seedRoute(t, store, model.RouteTypeMinibus, sundayTuesday)

	single, err := AutoAssignRider(ctx, store, zap.NewNop(), DefaultOptions(), "r1")
	require.NoError(t, err)
	require.NotNil(t, single.Assigned)
	assert.Equal(t, taxi, single.Assigned.ID)

	multiple, err := AutoAssignRider(ctx, store, zap.NewNop(), DefaultOptions(), "r2")
	require.NoError(t, err)
	assert.Nil(t, multiple.Assigned)
	assert.Equal(t, allocator.OutcomeMultipleMatches, multiple.Match.Outcome)
	assert.Len(t, multiple.Match.Matches, 2)
}

func TestUnassignRider_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	id := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday,
		testRider("r1", "Taxi", true, model.Sunday).AsPassenger())

	route, err := UnassignRider(ctx, store, zap.NewNop(), DefaultOptions(), id, "r1")
	require.NoError(t, err)
	assert.Empty(t, route.Passengers)
	assert.Equal(t, 4, route.AvailableSeats[model.Sunday])

	again, err := UnassignRider(ctx, store, zap.NewNop(), DefaultOptions(), id, "r1")
	require.NoError(t, err)
	assert.Equal(t, route.Revision, again.Revision, "no-op shouldn't write")
}

func TestRemoveRiderFromAllRoutes(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	p := testRider("r1", "Taxi", false, model.Sunday).AsPassenger()
	first := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday, p)
	seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday)
	third := seedRoute(t, store, model.RouteTypeMinibus, sundayTuesday, p)

	removed, err := RemoveRiderFromAllRoutes(ctx, store, zap.NewNop(), DefaultOptions(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{first, third}, removed)

	routes, err := store.ListRoutes(ctx)
	require.NoError(t, err)
	for _, route := range routes {
		assert.Equal(t, -1, route.FindPassenger("r1"), route.ID)
	}
}

func TestSyncRiderProfile_PropagatesChanges(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	old := testRider("r1", "Taxi", false, model.Sunday)
	id := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday, old.AsPassenger())
	untouched := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday)

	updated := old
	updated.Name = "Dana"
	updated.HasCaregiver = true
	updated.ArrivalDays = []model.Weekday{model.Sunday, model.Monday, model.Tuesday}
	store.PutRider(updated)

	result, err := SyncRiderProfile(ctx, store, zap.NewNop(), DefaultOptions(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, result.Updated)
	assert.Empty(t, result.Removed)

	route, err := store.GetRoute(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dana", route.Passengers[0].Name)
	assert.Equal(t, sundayTuesday, route.Passengers[0].ArrivalDays, "Monday isn't on this route")
	assert.Equal(t, 2, route.AvailableSeats[model.Sunday])
	assert.Equal(t, 2, route.AvailableSeats[model.Tuesday])

	other, err := store.GetRoute(ctx, untouched)
	require.NoError(t, err)
	assert.Empty(t, other.Passengers)
}

func TestSyncRiderProfile_PrivateTransportRemoves(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore(testRider("r1", model.TransportPrivate, false, model.Sunday))
	id := seedRoute(t, store, model.RouteTypeTaxi, sundayTuesday,
		testRider("r1", "Taxi", false, model.Sunday).AsPassenger())

	result, err := SyncRiderProfile(ctx, store, zap.NewNop(), DefaultOptions(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, result.Removed)

	route, err := store.GetRoute(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, route.Passengers)
}
