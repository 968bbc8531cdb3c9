package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

const (
	sundayDate = "2024-01-07"
	fridayDate = "2024-01-12"
)

func testRider(id string, transport string, caregiver bool, days ...model.Weekday) model.Rider {
	return model.Rider{
		ID:           id,
		Name:         "Rider " + id,
		Phone:        "050-000000" + id,
		City:         "CityX",
		Transport:    transport,
		ArrivalDays:  days,
		HasCaregiver: caregiver,
	}
}

// seedRoute creates a route directly in the store and returns its ID
func seedRoute(t *testing.T, store *db.MemoryStore, routeType model.RouteType, days []model.Weekday, passengers ...model.Passenger) string {
	t.Helper()
	ctx := context.Background()

	id, err := store.NextRouteID(ctx)
	require.NoError(t, err)

	route := model.Route{
		ID:         id,
		Type:       routeType,
		Days:       days,
		Cities:     []string{"CityX"},
		Passengers: passengers,
	}
	require.NoError(t, store.SaveRoute(ctx, &route))
	return id
}

// conflictingStore fails the first N saves with a revision conflict
type conflictingStore struct {
	*db.MemoryStore
	routeConflicts  int
	recordConflicts int
	routeSaves      int
	recordSaves     int
}

func (c *conflictingStore) SaveRoute(ctx context.Context, route *model.Route) error {
	c.routeSaves++
	if c.routeConflicts > 0 {
		c.routeConflicts--
		return db.ErrConflict
	}
	return c.MemoryStore.SaveRoute(ctx, route)
}

func (c *conflictingStore) SaveDateRecord(ctx context.Context, record *model.DateRecord) error {
	c.recordSaves++
	if c.recordConflicts > 0 {
		c.recordConflicts--
		return db.ErrConflict
	}
	return c.MemoryStore.SaveDateRecord(ctx, record)
}
