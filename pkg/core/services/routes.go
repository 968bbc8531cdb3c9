package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

// RouteInput describes a route's schedule: its type, operating days and served cities
type RouteInput struct {
	Type   model.RouteType `json:"type" validate:"required"`
	Days   []model.Weekday `json:"days" validate:"required,min=1,dive,weekday"`
	Cities []string        `json:"cities" validate:"required,min=1,dive,required"`
}

// ListRoutes returns every route with its availability cache refreshed
func ListRoutes(ctx context.Context, store db.RouteStore, logger *zap.Logger, opts Options) ([]model.Route, error) {
	routes, err := store.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	refreshed := make([]model.Route, 0, len(routes))
	for _, route := range routes {
		updated, err := allocator.RecomputeAvailability(route, opts.capacities())
		if err != nil {
			return nil, fmt.Errorf("failed to compute availability for route %s: %w", route.ID, err)
		}
		refreshed = append(refreshed, updated)
	}

	logger.Debug("Listed routes", zap.Int("count", len(refreshed)))
	return refreshed, nil
}

// CreateRoute allocates a new route ID and stores an empty route
func CreateRoute(ctx context.Context, store db.RouteStore, logger *zap.Logger, opts Options, input RouteInput) (*model.Route, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if _, err := opts.capacities().CapacityFor(input.Type); err != nil {
		return nil, err
	}

	id, err := store.NextRouteID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate route id: %w", err)
	}

	route := model.Route{
		ID:         id,
		Type:       input.Type,
		Days:       normalizeDays(input.Days),
		Cities:     uniqueCities(input.Cities),
		Passengers: []model.Passenger{},
	}
	route, err = allocator.RecomputeAvailability(route, opts.capacities())
	if err != nil {
		return nil, err
	}

	if err := store.SaveRoute(ctx, &route); err != nil {
		return nil, fmt.Errorf("failed to save route: %w", err)
	}

	logger.Info("Route created",
		zap.String("route_id", route.ID),
		zap.String("type", string(route.Type)),
		zap.Int("days", len(route.Days)))

	return &route, nil
}

// UpdateRouteSchedule changes a route's type, days and cities, keeping its roster.
// Shrinking the route below its current occupancy is refused unless overbooking is allowed.
func UpdateRouteSchedule(ctx context.Context, store db.RouteStore, logger *zap.Logger, opts Options, routeID string, input RouteInput) (*model.Route, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var saved model.Route
	err := withRetry(ctx, logger, opts, "update_route_schedule", func() error {
		route, err := getRoute(ctx, store, routeID)
		if err != nil {
			return err
		}

		route.Type = input.Type
		route.Days = normalizeDays(input.Days)
		route.Cities = uniqueCities(input.Cities)

		updated, err := allocator.RecomputeAvailability(*route, opts.capacities())
		if err != nil {
			return err
		}

		if !opts.AllowOverbooking {
			if err := checkNoOverbooking(updated); err != nil {
				return err
			}
		}

		if err := store.SaveRoute(ctx, &updated); err != nil {
			return fmt.Errorf("failed to save route: %w", err)
		}
		saved = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Route schedule updated", zap.String("route_id", routeID))
	return &saved, nil
}

// DeleteRoute removes a route. Overlay entries already recorded for it are left in their date records.
func DeleteRoute(ctx context.Context, store db.RouteStore, logger *zap.Logger, routeID string) error {
	if _, err := getRoute(ctx, store, routeID); err != nil {
		return err
	}

	if err := store.DeleteRoute(ctx, routeID); err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}

	logger.Info("Route deleted", zap.String("route_id", routeID))
	return nil
}

// normalizeDays orders days by the work week and drops duplicates
func normalizeDays(days []model.Weekday) []model.Weekday {
	normalized := make([]model.Weekday, 0, len(days))
	for _, day := range model.WorkWeek {
		if slices.Contains(days, day) {
			normalized = append(normalized, day)
		}
	}
	return normalized
}

// uniqueCities drops duplicate cities, keeping first-seen order
func uniqueCities(cities []string) []string {
	unique := make([]string, 0, len(cities))
	for _, city := range cities {
		if !slices.Contains(unique, city) {
			unique = append(unique, city)
		}
	}
	return unique
}

func checkNoOverbooking(route model.Route) error {
	for _, day := range route.Days {
		if available := route.AvailableSeats[day]; available < 0 {
			return &allocator.CapacityError{
				RouteID:   route.ID,
				Day:       string(day),
				Needed:    -available,
				Available: 0,
			}
		}
	}
	return nil
}
