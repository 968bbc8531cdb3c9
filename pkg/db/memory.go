package db

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

// MemoryStore is an in-memory Gateway. Used by tests, interactive sessions and the memory store driver.
type MemoryStore struct {
	mu          sync.Mutex
	routes      map[string]model.Route
	dateRecords map[string]model.DateRecord
	riders      []model.Rider
	lastRouteID int
}

// NewMemoryStore creates an empty store seeded with the given riders
func NewMemoryStore(riders ...model.Rider) *MemoryStore {
	return &MemoryStore{
		routes:      make(map[string]model.Route),
		dateRecords: make(map[string]model.DateRecord),
		riders:      riders,
	}
}

// ListRoutes returns routes ordered by numeric ID (creation order)
func (m *MemoryStore) ListRoutes(ctx context.Context) ([]model.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := make([]model.Route, 0, len(m.routes))
	for _, r := range m.routes {
		routes = append(routes, r.Clone())
	}
	sort.Slice(routes, func(i, j int) bool {
		return lessRouteID(routes[i].ID, routes[j].ID)
	})
	return routes, nil
}

func (m *MemoryStore) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.routes[id]
	if !ok {
		return nil, nil
	}
	clone := r.Clone()
	return &clone, nil
}

func (m *MemoryStore) SaveRoute(ctx context.Context, route *model.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.routes[route.ID]
	if (ok && existing.Revision != route.Revision) || (!ok && route.Revision != "") {
		return fmt.Errorf("failed to save route %s: %w", route.ID, ErrConflict)
	}

	route.Revision = uuid.New().String()
	m.routes[route.ID] = route.Clone()
	return nil
}

// DeleteRoute removes a route. Deleting a missing route is a no-op.
func (m *MemoryStore) DeleteRoute(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.routes, id)
	return nil
}

func (m *MemoryStore) NextRouteID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastRouteID++
	return strconv.Itoa(m.lastRouteID), nil
}

func (m *MemoryStore) GetDateRecord(ctx context.Context, date string) (*model.DateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.dateRecords[date]
	if !ok {
		return nil, nil
	}
	clone := cloneDateRecord(rec)
	return &clone, nil
}

func (m *MemoryStore) SaveDateRecord(ctx context.Context, record *model.DateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.dateRecords[record.Date]
	if (ok && existing.Revision != record.Revision) || (!ok && record.Revision != "") {
		return fmt.Errorf("failed to save date record %s: %w", record.Date, ErrConflict)
	}

	record.Revision = uuid.New().String()
	m.dateRecords[record.Date] = cloneDateRecord(*record)
	return nil
}

func (m *MemoryStore) ListRiders(ctx context.Context) ([]model.Rider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.riders), nil
}

// PutRider adds or replaces a rider profile
func (m *MemoryStore) PutRider(rider model.Rider) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx := slices.IndexFunc(m.riders, func(r model.Rider) bool { return r.ID == rider.ID }); idx >= 0 {
		m.riders[idx] = rider
		return
	}
	m.riders = append(m.riders, rider)
}

func cloneDateRecord(rec model.DateRecord) model.DateRecord {
	clone := rec
	clone.Routes = make([]model.RouteOverlay, len(rec.Routes))
	for i, ro := range rec.Routes {
		clone.Routes[i] = model.RouteOverlay{
			RouteID:          ro.RouteID,
			TempReservations: slices.Clone(ro.TempReservations),
		}
	}
	return clone
}

// lessRouteID orders numeric IDs numerically and anything else lexically
func lessRouteID(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return a < b
}
