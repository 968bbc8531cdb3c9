package db

import (
	"context"
	"errors"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
)

// ErrConflict is returned by saves when the stored revision no longer matches the one read.
// Callers re-read and retry the whole read-modify-write cycle.
var ErrConflict = errors.New("revision conflict: document was modified concurrently")

// RouteStore defines the route ("transport") document operations
type RouteStore interface {
	ListRoutes(ctx context.Context) ([]model.Route, error)
	// GetRoute returns nil, nil when the route doesn't exist
	GetRoute(ctx context.Context, id string) (*model.Route, error)
	// SaveRoute upserts the route, stamping a new revision on success
	SaveRoute(ctx context.Context, route *model.Route) error
	DeleteRoute(ctx context.Context, id string) error
	// NextRouteID returns the next value of a monotonic counter; IDs are never reused
	NextRouteID(ctx context.Context) (string, error)
}

// DateRecordStore defines the per-date overlay ("transport_dates") document operations
type DateRecordStore interface {
	// GetDateRecord returns nil, nil when no record exists for the date
	GetDateRecord(ctx context.Context, date string) (*model.DateRecord, error)
	// SaveDateRecord upserts the whole record, stamping a new revision on success
	SaveDateRecord(ctx context.Context, record *model.DateRecord) error
}

// RiderSource provides read-only rider profiles
type RiderSource interface {
	ListRiders(ctx context.Context) ([]model.Rider, error)
}

// Gateway defines every persistence operation the transport services use.
// The in-memory MemoryStore and postgres.DB implement it.
type Gateway interface {
	RouteStore
	DateRecordStore
	RiderSource
}

type gateway struct {
	RouteStore
	DateRecordStore
	RiderSource
}

// WithRiders returns a Gateway that keeps store's routes and date records
// but reads rider profiles from riders
func WithRiders(store Gateway, riders RiderSource) Gateway {
	return gateway{
		RouteStore:      store,
		DateRecordStore: store,
		RiderSource:     riders,
	}
}
