package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

func TestMemoryStore_RouteLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	missing, err := store.GetRoute(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	id, err := store.NextRouteID(ctx)
	require.NoError(t, err)
	route := &model.Route{ID: id, Type: model.RouteTypeTaxi, Days: []model.Weekday{model.Sunday}}

	require.NoError(t, store.SaveRoute(ctx, route))
	assert.NotEmpty(t, route.Revision, "save should stamp a revision")

	stored, err := store.GetRoute(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, route.Revision, stored.Revision)

	// Mutating the returned copy doesn't leak into the store
	stored.Days[0] = model.Monday
	again, err := store.GetRoute(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.Sunday, again.Days[0])

	require.NoError(t, store.DeleteRoute(ctx, id))
	deleted, err := store.GetRoute(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	// Deleting again is fine
	require.NoError(t, store.DeleteRoute(ctx, id))
}

func TestMemoryStore_NextRouteIDNeverReused(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, err := store.NextRouteID(ctx)
	require.NoError(t, err)
	require.NoError(t, store.SaveRoute(ctx, &model.Route{ID: first}))
	require.NoError(t, store.DeleteRoute(ctx, first))

	second, err := store.NextRouteID(ctx)
	require.NoError(t, err)

	assert.Equal(t, "1", first)
	assert.Equal(t, "2", second)
}

func TestMemoryStore_ListRoutesInIDOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, id := range []string{"10", "2", "1"} {
		require.NoError(t, store.SaveRoute(ctx, &model.Route{ID: id}))
	}

	routes, err := store.ListRoutes(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.Equal(t, "1", routes[0].ID)
	assert.Equal(t, "2", routes[1].ID)
	assert.Equal(t, "10", routes[2].ID)
}

func TestMemoryStore_SaveRouteConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SaveRoute(ctx, &model.Route{ID: "1"}))

	// Two callers read the same revision
	first, err := store.GetRoute(ctx, "1")
	require.NoError(t, err)
	second, err := store.GetRoute(ctx, "1")
	require.NoError(t, err)

	require.NoError(t, store.SaveRoute(ctx, first))

	// Last writer loses instead of silently overwriting
	err = store.SaveRoute(ctx, second)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_DateRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	missing, err := store.GetDateRecord(ctx, "2024-01-07")
	require.NoError(t, err)
	assert.Nil(t, missing)

	record := &model.DateRecord{Date: "2024-01-07"}
	record.SetEntries("1", []model.OverlayEntry{{ID: "r1", Date: "2024-01-07", Type: model.OverlayAddition}})
	require.NoError(t, store.SaveDateRecord(ctx, record))

	stored, err := store.GetDateRecord(ctx, "2024-01-07")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.EntriesFor("1"), 1)
	assert.Empty(t, stored.EntriesFor("2"))

	// Stale revision is rejected
	stale := *stored
	require.NoError(t, store.SaveDateRecord(ctx, stored))
	err = store.SaveDateRecord(ctx, &stale)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_Riders(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(model.Rider{ID: "r1", Name: "Dana"})

	store.PutRider(model.Rider{ID: "r2", Name: "Avi"})
	store.PutRider(model.Rider{ID: "r1", Name: "Dana L."})

	riders, err := store.ListRiders(ctx)
	require.NoError(t, err)
	require.Len(t, riders, 2)
	assert.Equal(t, "Dana L.", riders[0].Name)
	assert.Equal(t, "Avi", riders[1].Name)
}

type staticRiders []model.Rider

func (s staticRiders) ListRiders(ctx context.Context) ([]model.Rider, error) {
	return s, nil
}

func TestWithRiders(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(model.Rider{ID: "local"})
	gw := WithRiders(store, staticRiders{{ID: "sheet"}})

	riders, err := gw.ListRiders(ctx)
	require.NoError(t, err)
	require.Len(t, riders, 1)
	assert.Equal(t, "sheet", riders[0].ID)

	// Routes still go to the wrapped store
	require.NoError(t, gw.SaveRoute(ctx, &model.Route{ID: "1"}))
	stored, err := store.GetRoute(ctx, "1")
	require.NoError(t, err)
	assert.NotNil(t, stored)
}
